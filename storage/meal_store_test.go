package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noamk2004/image-to-text/models"
)

func newTestStore(t *testing.T) (*MealStore, string) {
	t.Helper()
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	require.NoError(t, err)
	store := NewMealStore(kv, zap.NewNop())
	require.NoError(t, store.Load(context.Background()))
	return store, dir
}

func record(id string, calories int) models.MealRecord {
	return models.MealRecord{
		ID:        id,
		Timestamp: 1700000000000,
		Image:     "data:image/jpeg;base64,/9j/",
		Macros:    models.Macros{Calories: calories, Protein: 1, Carbs: 2, Fat: 3},
		RawText:   "# ⚡ 540 Calories",
	}
}

func TestLoadMissingKeyStartsEmpty(t *testing.T) {
	store, _ := newTestStore(t)
	assert.Empty(t, store.List())
}

func TestInsertPrependsNewestFirst(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, record("1", 100)))
	require.NoError(t, store.Insert(ctx, record("2", 200)))
	require.NoError(t, store.Insert(ctx, record("3", 300)))

	got := store.List()
	require.Len(t, got, 3)
	assert.Equal(t, "3", got[0].ID)
	assert.Equal(t, "2", got[1].ID)
	assert.Equal(t, "1", got[2].ID)
}

func TestRoundTrip(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, record("1", 100)))
	require.NoError(t, store.Insert(ctx, record("2", 200)))

	kv, err := NewFileKV(dir)
	require.NoError(t, err)
	reloaded := NewMealStore(kv, zap.NewNop())
	require.NoError(t, reloaded.Load(ctx))

	assert.Equal(t, store.List(), reloaded.List())
}

func TestDeleteRestoresPriorState(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, record("1", 100)))
	require.NoError(t, store.Insert(ctx, record("2", 200)))
	before := store.List()

	require.NoError(t, store.Insert(ctx, record("3", 300)))
	require.NoError(t, store.Delete(ctx, "3"))

	assert.Equal(t, before, store.List())
}

func TestDeletePreservesRelativeOrder(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, store.Insert(ctx, record(id, 100)))
	}
	require.NoError(t, store.Delete(ctx, "2"))

	got := store.List()
	require.Len(t, got, 2)
	assert.Equal(t, "3", got[0].ID)
	assert.Equal(t, "1", got[1].ID)
}

func TestDeleteAbsentIsNoOp(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, record("1", 100)))
	require.NoError(t, store.Delete(ctx, "does-not-exist"))
	assert.Len(t, store.List(), 1)
}

func TestLoadCorruptPayloadStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "meals.json"), []byte("{{{ not json"), 0o644))

	kv, err := NewFileKV(dir)
	require.NoError(t, err)
	store := NewMealStore(kv, zap.NewNop())

	require.NoError(t, store.Load(context.Background()))
	assert.Empty(t, store.List())
}

func TestLoadNonConformingShapeStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	// Valid JSON, but not an array of records.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "meals.json"), []byte(`{"meals":"nope"}`), 0o644))

	kv, err := NewFileKV(dir)
	require.NoError(t, err)
	store := NewMealStore(kv, zap.NewNop())

	require.NoError(t, store.Load(context.Background()))
	assert.Empty(t, store.List())
}

func TestHas(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, record("1", 100)))
	assert.True(t, store.Has("1"))
	assert.False(t, store.Has("2"))
}

func TestSaveOverwritesSingleKey(t *testing.T) {
	store, dir := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"1", "2", "3", "4", "5"} {
		require.NoError(t, store.Insert(ctx, record(id, 100)))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "repeated saves must not grow storage")
}

func TestFileKVGetAbsent(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)

	_, ok, err := kv.Get(context.Background(), "meals")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileKVPutOverwrites(t *testing.T) {
	kv, err := NewFileKV(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, kv.Put(ctx, "meals", []byte("one")))
	require.NoError(t, kv.Put(ctx, "meals", []byte("two")))

	data, ok, err := kv.Get(ctx, "meals")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("two"), data)
}
