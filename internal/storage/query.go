package storage

import (
	"context"
	"slices"

	"github.com/jonesrussell/north-cloud/extracurricular/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/domain"
)

const (
	scanBatch   = 200
	deleteBatch = 500
)

// Dump is a full introspection of the namespace.
type Dump struct {
	Categories []string        `json:"categories"`
	Labels     []string        `json:"labels"`
	Records    []domain.Record `json:"records"`
	RawKeys    []string        `json:"rawKeys"`
	Stats      Stats           `json:"stats"`
}

// GetByCategory returns the records in category. Ids whose record is missing
// or fails validation are skipped. Order is unspecified.
func (s *RecordStore) GetByCategory(ctx context.Context, category string) ([]domain.Record, error) {
	return s.recordsInSet(ctx, "get_by_category", s.keys.category(category))
}

// GetByLabel returns the records carrying label, with the same tolerance as GetByCategory.
func (s *RecordStore) GetByLabel(ctx context.Context, label string) ([]domain.Record, error) {
	return s.recordsInSet(ctx, "get_by_label", s.keys.label(label))
}

// Categories lists the category universe.
func (s *RecordStore) Categories(ctx context.Context) ([]string, error) {
	return s.sortedMembers(ctx, "categories", s.keys.categories())
}

// Labels lists the label universe.
func (s *RecordStore) Labels(ctx context.Context) ([]string, error) {
	return s.sortedMembers(ctx, "labels", s.keys.labels())
}

// DumpAll gathers universes, every parseable record, all raw keys in the
// namespace and server stats. Stats failures are reported inside Stats.
func (s *RecordStore) DumpAll(ctx context.Context) (Dump, error) {
	categories, err := s.Categories(ctx)
	if err != nil {
		return Dump{}, err
	}
	labels, err := s.Labels(ctx)
	if err != nil {
		return Dump{}, err
	}

	rawKeys, err := s.scanKeys(ctx, s.keys.all())
	if err != nil {
		return Dump{}, &domain.StorageError{Op: "dump", Err: err}
	}
	slices.Sort(rawKeys)

	dataKeys, err := s.scanKeys(ctx, s.keys.dataPattern())
	if err != nil {
		return Dump{}, &domain.StorageError{Op: "dump", Err: err}
	}
	slices.Sort(dataKeys)

	records, err := s.loadRecords(ctx, "dump", dataKeys)
	if err != nil {
		return Dump{}, err
	}

	return Dump{
		Categories: categories,
		Labels:     labels,
		Records:    records,
		RawKeys:    rawKeys,
		Stats:      s.Stats(ctx),
	}, nil
}

// ClearAll deletes every key in the namespace.
func (s *RecordStore) ClearAll(ctx context.Context) (bool, error) {
	keys, err := s.scanKeys(ctx, s.keys.all())
	if err != nil {
		return false, &domain.StorageError{Op: "clear", Err: err}
	}

	for batch := range slices.Chunk(keys, deleteBatch) {
		if err := s.client.Del(ctx, batch...).Err(); err != nil {
			return false, &domain.StorageError{Op: "clear", Err: err}
		}
	}

	s.logger.Info("Namespace cleared",
		logger.String("namespace", s.keys.ns),
		logger.Int("keys", len(keys)),
	)
	return true, nil
}

func (s *RecordStore) recordsInSet(ctx context.Context, op, setKey string) ([]domain.Record, error) {
	ids, err := s.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, &domain.StorageError{Op: op, Err: err}
	}

	dataKeys := make([]string, len(ids))
	for i, id := range ids {
		dataKeys[i] = s.keys.data(id)
	}
	return s.loadRecords(ctx, op, dataKeys)
}

// loadRecords fetches dataKeys in one MGET and keeps the ones that parse.
func (s *RecordStore) loadRecords(ctx context.Context, op string, dataKeys []string) ([]domain.Record, error) {
	records := make([]domain.Record, 0, len(dataKeys))
	if len(dataKeys) == 0 {
		return records, nil
	}

	values, err := s.client.MGet(ctx, dataKeys...).Result()
	if err != nil {
		return nil, &domain.StorageError{Op: op, Err: err}
	}

	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			s.logger.Debug("Indexed record missing", logger.String("key", dataKeys[i]))
			continue
		}
		rec, err := domain.ParseRecord([]byte(raw))
		if err != nil {
			s.logger.Debug("Skipping invalid record",
				logger.String("key", dataKeys[i]),
				logger.Error(err),
			)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *RecordStore) sortedMembers(ctx context.Context, op, key string) ([]string, error) {
	members, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, &domain.StorageError{Op: op, Err: err}
	}
	slices.Sort(members)
	return members, nil
}

func (s *RecordStore) scanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

// Ping reports whether Redis answers.
func (s *RecordStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return &domain.StorageError{Op: "ping", Err: err}
	}
	return nil
}
