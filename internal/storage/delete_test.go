package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/extracurricular/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/domain"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/storage"
)

// touchBeforeScript rewrites a record payload just before every script call,
// as a concurrent writer racing the delete would.
type touchBeforeScript struct {
	mr  *miniredis.Miniredis
	key string
}

func (h *touchBeforeScript) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h *touchBeforeScript) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (h *touchBeforeScript) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if cmd.Name() == "evalsha" || cmd.Name() == "eval" {
			if raw, err := h.mr.Get(h.key); err == nil {
				_ = h.mr.Set(h.key, raw+" ")
			}
		}
		return next(ctx, cmd)
	}
}

func TestDelete_PayloadChangingEveryAttemptIsContention(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := storage.NewRecordStore(client, storage.Config{
		MaxTxRetries: 2,
		NewID:        func() string { return "r1" },
	}, logger.NewNop())

	id, err := store.Store(ctx, sampleRecord())
	require.NoError(t, err)

	client.AddHook(&touchBeforeScript{mr: mr, key: "scrape:data:" + id})

	deleted, err := store.Delete(ctx, id)
	assert.False(t, deleted)
	require.ErrorIs(t, err, storage.ErrTxContention)
	var storageErr *domain.StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "delete", storageErr.Op)

	_, ok, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("scrape:category:science"))
	assert.True(t, mr.Exists("scrape:label:bio"))
	assert.True(t, mr.Exists("scrape:label:lab"))

	categories, err := store.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"science"}, categories)
}

func TestDelete_PrunesOnlyIndexesLeftEmpty(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()

	shared := sampleRecord()
	shared.Labels = []string{"bio"}
	keep, err := f.store.Store(ctx, shared)
	require.NoError(t, err)

	gone := sampleRecord()
	gone.Labels = []string{"bio", "solo"}
	id, err := f.store.Store(ctx, gone)
	require.NoError(t, err)

	deleted, err := f.store.Delete(ctx, id)
	require.NoError(t, err)
	require.True(t, deleted)

	members, err := f.mr.Members("scrape:category:science")
	require.NoError(t, err)
	assert.Equal(t, []string{keep}, members)
	assert.False(t, f.mr.Exists("scrape:label:solo"))

	labels, err := f.store.Labels(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"bio"}, labels)
	assertIndexesConsistent(t, f)
}
