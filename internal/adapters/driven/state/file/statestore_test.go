package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinevault/cinesync/internal/core/domain"
)

func newTestStore(t *testing.T) *SyncStateStore {
	t.Helper()
	store, err := NewSyncStateStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	return store
}

func TestSyncStateStore_SaveAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	watermark := time.Date(2024, 3, 1, 10, 30, 0, 123456789, time.UTC)
	err := store.Save(ctx, domain.SyncState{
		Kind:      domain.KindFilmWork,
		Watermark: &watermark,
		LastSync:  watermark.Add(time.Second),
	})
	require.NoError(t, err)

	saved, err := store.Get(ctx, domain.KindFilmWork)
	require.NoError(t, err)
	require.NotNil(t, saved.Watermark)
	assert.True(t, watermark.Equal(*saved.Watermark))
	assert.True(t, watermark.Add(time.Second).Equal(saved.LastSync))
}

func TestSyncStateStore_Get_NeverRecorded(t *testing.T) {
	store := newTestStore(t)

	state, err := store.Get(context.Background(), domain.KindGenre)

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, state)
}

func TestSyncStateStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	first, err := NewSyncStateStore(path)
	require.NoError(t, err)

	watermark := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	require.NoError(t, first.Save(ctx, domain.SyncState{
		Kind: domain.KindPerson, Watermark: &watermark, LastSync: watermark,
	}))

	second, err := NewSyncStateStore(path)
	require.NoError(t, err)

	saved, err := second.Get(ctx, domain.KindPerson)
	require.NoError(t, err)
	require.NotNil(t, saved.Watermark)
	assert.True(t, watermark.Equal(*saved.Watermark))
}

func TestSyncStateStore_KindsAreIndependent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, kind := range domain.Kinds() {
		mark := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, store.Save(ctx, domain.SyncState{
			Kind: kind, Watermark: &mark, LastSync: mark,
		}))
	}

	for i, kind := range domain.Kinds() {
		saved, err := store.Get(ctx, kind)
		require.NoError(t, err)
		require.NotNil(t, saved.Watermark)
		assert.True(t, base.Add(time.Duration(i)*time.Hour).Equal(*saved.Watermark))
	}
}

func TestSyncStateStore_CorruptFileReadsAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	store, err := NewSyncStateStore(path)
	require.NoError(t, err)

	_, err = store.Get(context.Background(), domain.KindFilmWork)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// Saving over the corrupt file must work.
	watermark := time.Now().UTC()
	require.NoError(t, store.Save(context.Background(), domain.SyncState{
		Kind: domain.KindFilmWork, Watermark: &watermark, LastSync: watermark,
	}))

	saved, err := store.Get(context.Background(), domain.KindFilmWork)
	require.NoError(t, err)
	require.NotNil(t, saved.Watermark)
}

func TestSyncStateStore_FileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store, err := NewSyncStateStore(path)
	require.NoError(t, err)

	watermark := time.Date(2024, 3, 1, 10, 30, 0, 0, time.UTC)
	require.NoError(t, store.Save(context.Background(), domain.SyncState{
		Kind: domain.KindFilmWork, Watermark: &watermark, LastSync: watermark,
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries map[string]string
	require.NoError(t, json.Unmarshal(data, &entries))
	assert.Equal(t, "2024-03-01T10:30:00Z", entries["film_work_updated_at"])
}

func TestSyncStateStore_Delete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	watermark := time.Now().UTC()
	require.NoError(t, store.Save(ctx, domain.SyncState{
		Kind: domain.KindGenre, Watermark: &watermark, LastSync: watermark,
	}))

	require.NoError(t, store.Delete(ctx, domain.KindGenre))

	_, err := store.Get(ctx, domain.KindGenre)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSyncStateStore_NilWatermark(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.SyncState{
		Kind: domain.KindPerson, LastSync: time.Now().UTC(),
	}))

	saved, err := store.Get(ctx, domain.KindPerson)
	require.NoError(t, err)
	assert.Nil(t, saved.Watermark)
	assert.False(t, saved.LastSync.IsZero())
}
