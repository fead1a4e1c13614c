package storage

import (
	"context"
	"math/rand"
	"testing"

	"github.com/annel0/trial-chambers/internal/config"
	"github.com/annel0/trial-chambers/internal/spawner"
	"github.com/annel0/trial-chambers/internal/structure"
	"github.com/annel0/trial-chambers/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecord(t *testing.T, seed int64) structure.Record {
	t.Helper()

	cfg := config.Default()
	cfg.Generation.Seed = seed
	st := structure.NewGenerator(cfg).Generate(context.Background(), nil, vec.Vec3{Y: -25})
	return st.Serialize()
}

func TestStructureStorageSaveLoad(t *testing.T) {
	store, err := NewInMemoryStructureStorage()
	require.NoError(t, err)
	defer store.Close()

	rec := newTestRecord(t, 42)
	require.NoError(t, store.SaveStructure(rec))

	loaded, err := store.LoadStructure(rec.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, rec, *loaded, "Запись переживает сжатие и хранение без потерь")
}

func TestStructureStorageMissing(t *testing.T) {
	store, err := NewInMemoryStructureStorage()
	require.NoError(t, err)
	defer store.Close()

	loaded, err := store.LoadStructure("no-such-id")
	require.NoError(t, err, "Отсутствие записи — не ошибка")
	assert.Nil(t, loaded)

	snap, err := store.LoadSpawner("no-such-id")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestStructureStorageListIDs(t *testing.T) {
	store, err := NewInMemoryStructureStorage()
	require.NoError(t, err)
	defer store.Close()

	recA := newTestRecord(t, 1)
	recB := newTestRecord(t, 2)
	require.NoError(t, store.SaveStructure(recA))
	require.NoError(t, store.SaveStructure(recB))

	ids, err := store.ListStructureIDs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{recA.ID, recB.ID}, ids)
}

func TestStructureStorageSpawnerRoundTrip(t *testing.T) {
	store, err := NewInMemoryStructureStorage()
	require.NoError(t, err)
	defer store.Close()

	ts := spawner.NewTrialSpawner("sp-1", vec.Vec3{X: 1, Y: -20, Z: 2}, 3, 4,
		[]string{"zombie", "skeleton"}, rand.New(rand.NewSource(1)))
	snap := ts.Serialize()

	require.NoError(t, store.SaveSpawner(snap))

	loaded, err := store.LoadSpawner("sp-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, snap, *loaded)
}

func TestStructureStorageImplementsSnapshotStore(t *testing.T) {
	store, err := NewInMemoryStructureStorage()
	require.NoError(t, err)
	defer store.Close()

	var _ spawner.SnapshotStore = store

	ts := spawner.NewTrialSpawner("sp-2", vec.Vec3{}, 1, 1, []string{"zombie"}, rand.New(rand.NewSource(1)))
	require.NoError(t, store.SaveSnapshot(context.Background(), ts.Serialize()))

	loaded, err := store.LoadSpawner("sp-2")
	require.NoError(t, err)
	require.NotNil(t, loaded)
}

func TestStructureStorageClosedRejects(t *testing.T) {
	store, err := NewInMemoryStructureStorage()
	require.NoError(t, err)
	require.NoError(t, store.Close())

	assert.Error(t, store.SaveStructure(structure.Record{ID: "x"}), "Запись после Close отклоняется")
	_, err = store.LoadStructure("x")
	assert.Error(t, err)
	assert.NoError(t, store.Close(), "Повторный Close безопасен")
}

func TestMemorySnapshotRepo(t *testing.T) {
	repo := NewMemorySnapshotRepo()
	ctx := context.Background()

	ts := spawner.NewTrialSpawner("sp-1", vec.Vec3{X: 5, Y: -15, Z: 5}, 2, 2,
		[]string{"spider"}, rand.New(rand.NewSource(1)))

	require.NoError(t, repo.SaveSnapshot(ctx, ts.Serialize()))

	loaded, err := repo.GetSnapshot(ctx, "sp-1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, ts.Serialize(), *loaded)

	missing, err := repo.GetSnapshot(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, repo.DeleteSnapshot(ctx, "sp-1"))
	deleted, err := repo.GetSnapshot(ctx, "sp-1")
	require.NoError(t, err)
	assert.Nil(t, deleted)

	assert.NoError(t, repo.Close())
}
