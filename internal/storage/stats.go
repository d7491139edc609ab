package storage

import (
	"bufio"
	"context"
	"strconv"
	"strings"
)

// Stats status values.
const (
	StatsConnected = "connected"
	StatsError     = "error"
)

// Stats summarizes Redis INFO.
type Stats struct {
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	Commands    int64  `json:"commands"`
	Hits        int64  `json:"hits"`
	Misses      int64  `json:"misses"`
	Memory      int64  `json:"memory"`
	Bandwidth   int64  `json:"bandwidth"`
	Connections int64  `json:"connections"`
}

// Stats reads INFO. Failures come back as Status "error", never as an error.
func (s *RecordStore) Stats(ctx context.Context) Stats {
	info, err := s.client.Info(ctx).Result()
	if err != nil {
		return Stats{Status: StatsError, Error: err.Error()}
	}
	return ParseInfo(info)
}

// ParseInfo extracts the counters of interest from an INFO reply.
func ParseInfo(info string) Stats {
	stats := Stats{Status: StatsConnected}

	targets := map[string]*int64{
		"total_commands_processed": &stats.Commands,
		"keyspace_hits":            &stats.Hits,
		"keyspace_misses":          &stats.Misses,
		"used_memory":              &stats.Memory,
		"total_net_input_bytes":    &stats.Bandwidth,
		"connected_clients":        &stats.Connections,
	}

	scanner := bufio.NewScanner(strings.NewReader(info))
	for scanner.Scan() {
		name, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), ":")
		if !ok {
			continue
		}
		dst, wanted := targets[name]
		if !wanted {
			continue
		}
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			*dst = n
		}
	}
	return stats
}
