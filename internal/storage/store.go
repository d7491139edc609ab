// Package storage persists scraped records in Redis with category and label
// indexes and keeps the indexes consistent across concurrent writers.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/extracurricular/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/domain"
)

// DefaultMaxTxRetries bounds delete attempts against a record whose payload keeps changing.
const DefaultMaxTxRetries = 10

// ErrTxContention is returned when a record's payload changes under every delete attempt.
var ErrTxContention = errors.New("record changed during every delete attempt")

// Config configures a RecordStore.
type Config struct {
	Namespace    string
	MaxTxRetries int
	// Now and NewID default to the wall clock and random UUIDs.
	Now   func() time.Time
	NewID func() string
}

// RecordStore stores records and maintains their indexes.
type RecordStore struct {
	client       *redis.Client
	keys         keyspace
	maxTxRetries int
	now          func() time.Time
	newID        func() string
	logger       logger.Logger
}

// NewRecordStore creates a RecordStore on client.
func NewRecordStore(client *redis.Client, cfg Config, log logger.Logger) *RecordStore {
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}
	if cfg.MaxTxRetries <= 0 {
		cfg.MaxTxRetries = DefaultMaxTxRetries
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}
	if log == nil {
		log = logger.NewNop()
	}

	return &RecordStore{
		client:       client,
		keys:         keyspace{ns: cfg.Namespace},
		maxTxRetries: cfg.MaxTxRetries,
		now:          cfg.Now,
		newID:        cfg.NewID,
		logger:       log,
	}
}

// Store validates in, assigns an id and timestamp, and writes the record,
// its index memberships and universe entries in one MULTI/EXEC.
func (s *RecordStore) Store(ctx context.Context, in domain.NewRecord) (string, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return "", err
	}

	rec := in.WithIdentity(s.newID(), s.now().UnixMilli())
	payload, err := json.Marshal(rec)
	if err != nil {
		return "", &domain.StorageError{Op: "store", Err: fmt.Errorf("encode record: %w", err)}
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.keys.data(rec.ID), payload, 0)
		for _, ref := range s.keys.refs(rec.Category, rec.Labels) {
			pipe.SAdd(ctx, ref.key, rec.ID)
			pipe.SAdd(ctx, ref.universe, ref.name)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to store record",
			logger.String("id", rec.ID),
			logger.String("category", rec.Category),
			logger.Error(err),
		)
		return "", &domain.StorageError{Op: "store", Err: err}
	}

	s.logger.Debug("Record stored",
		logger.String("id", rec.ID),
		logger.String("category", rec.Category),
		logger.Int("labels", len(rec.Labels)),
	)
	return rec.ID, nil
}

// Get returns the record with id. The bool is false when no record exists.
func (s *RecordStore) Get(ctx context.Context, id string) (domain.Record, bool, error) {
	raw, err := s.client.Get(ctx, s.keys.data(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Record{}, false, nil
	}
	if err != nil {
		return domain.Record{}, false, &domain.StorageError{Op: "get", Err: err}
	}

	rec, err := domain.ParseRecord(raw)
	if err != nil {
		return domain.Record{}, false, &domain.StorageError{Op: "get", Err: fmt.Errorf("corrupt record %s: %w", id, err)}
	}
	return rec, true, nil
}

// deleteScript removes a record and its index memberships in one atomic step.
//
// KEYS[1] is the record key, followed by (index, universe) pairs.
// ARGV[1] is the id, ARGV[2] the payload the caller read, then one index name per pair.
// Returns 0 when the record is gone, -1 when its payload no longer matches, 1 on delete.
var deleteScript = redis.NewScript(`
	local payload = redis.call("GET", KEYS[1])
	if not payload then
		return 0
	end
	if payload ~= ARGV[2] then
		return -1
	end

	redis.call("DEL", KEYS[1])
	local name = 3
	for i = 2, #KEYS, 2 do
		redis.call("SREM", KEYS[i], ARGV[1])
		if redis.call("SCARD", KEYS[i]) == 0 then
			redis.call("DEL", KEYS[i])
			redis.call("SREM", KEYS[i + 1], ARGV[name])
		end
		name = name + 1
	end
	return 1
`)

const (
	deleteGone    = 0
	deleteStale   = -1
	deleteRemoved = 1
)

// Delete removes the record with id from primary storage and from every index
// it belongs to, pruning indexes that become empty together with their
// universe entries. The bool is false when no record exists.
//
// Index pruning runs inside a Lua script, so concurrent stores into the same
// index never make a delete fail. The script only re-runs if the stored
// payload changed between the read and the script.
func (s *RecordStore) Delete(ctx context.Context, id string) (bool, error) {
	dataKey := s.keys.data(id)

	for attempt := 1; attempt <= s.maxTxRetries; attempt++ {
		raw, err := s.client.Get(ctx, dataKey).Bytes()
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		if err != nil {
			return false, &domain.StorageError{Op: "delete", Err: err}
		}

		result, err := s.removeRecord(ctx, id, raw)
		if err != nil {
			return false, &domain.StorageError{Op: "delete", Err: err}
		}

		switch result {
		case deleteRemoved:
			s.logger.Debug("Record deleted", logger.String("id", id), logger.Int("attempt", attempt))
			return true, nil
		case deleteGone:
			return false, nil
		case deleteStale:
			s.logger.Debug("Record changed during delete, retrying",
				logger.String("id", id),
				logger.Int("attempt", attempt),
			)
		default:
			return false, &domain.StorageError{Op: "delete", Err: fmt.Errorf("unexpected delete result %d", result)}
		}
	}

	s.logger.Warn("Delete gave up on a record that kept changing",
		logger.String("id", id),
		logger.Int("max_retries", s.maxTxRetries),
	)
	return false, &domain.StorageError{Op: "delete", Err: ErrTxContention}
}

// removeRecord runs deleteScript for a record whose stored payload was raw.
func (s *RecordStore) removeRecord(ctx context.Context, id string, raw []byte) (int64, error) {
	refs := s.refsOf(id, raw)

	keys := make([]string, 0, 1+2*len(refs))
	keys = append(keys, s.keys.data(id))
	args := make([]any, 0, 2+len(refs))
	args = append(args, id, string(raw))
	for _, ref := range refs {
		keys = append(keys, ref.key, ref.universe)
		args = append(args, ref.name)
	}

	return deleteScript.Run(ctx, s.client, keys, args...).Int64()
}

// refsOf lists the indexes a stored payload references. A payload that no
// longer parses still yields whatever category and labels it carries.
func (s *RecordStore) refsOf(id string, raw []byte) []indexRef {
	rec, err := domain.ParseRecord(raw)
	if err == nil {
		return s.keys.refs(rec.Category, rec.Labels)
	}

	s.logger.Warn("Deleting record that fails validation",
		logger.String("id", id),
		logger.Error(err),
	)

	var partial struct {
		Category string   `json:"category"`
		Labels   []string `json:"labels"`
	}
	if json.Unmarshal(raw, &partial) != nil || partial.Category == "" {
		return nil
	}
	return s.keys.refs(partial.Category, partial.Labels)
}
