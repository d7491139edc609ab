package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/north-cloud/extracurricular/internal/storage"
)

func TestParseInfo(t *testing.T) {
	t.Parallel()

	info := "# Server\r\nredis_version:7.2.4\r\n# Clients\r\nconnected_clients:3\r\n" +
		"# Memory\r\nused_memory:1048576\r\n# Stats\r\ntotal_commands_processed:42\r\n" +
		"total_net_input_bytes:2048\r\nkeyspace_hits:7\r\nkeyspace_misses:2\r\n"

	stats := storage.ParseInfo(info)

	assert.Equal(t, storage.Stats{
		Status:      storage.StatsConnected,
		Commands:    42,
		Hits:        7,
		Misses:      2,
		Memory:      1048576,
		Bandwidth:   2048,
		Connections: 3,
	}, stats)
}

func TestParseInfo_IgnoresMalformedLines(t *testing.T) {
	t.Parallel()

	stats := storage.ParseInfo("garbage\nkeyspace_hits:abc\nconnected_clients:1\n")

	assert.Equal(t, int64(0), stats.Hits)
	assert.Equal(t, int64(1), stats.Connections)
}
