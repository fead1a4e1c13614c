package world

import (
	"testing"

	"github.com/annel0/trial-chambers/internal/vec"
	"github.com/annel0/trial-chambers/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryWorldDefaultTerrain(t *testing.T) {
	w := NewMemoryWorld(vec.Vec3{})

	below, ok := w.GetBlock(vec.Vec3{X: 10, Y: -5, Z: 10})
	require.True(t, ok)
	assert.Equal(t, block.StoneBlockID, below.ID, "Под нулевой высотой — камень")

	above, ok := w.GetBlock(vec.Vec3{X: 10, Y: 5, Z: 10})
	require.True(t, ok)
	assert.Equal(t, block.AirBlockID, above.ID, "Над нулевой высотой — воздух")
}

func TestMemoryWorldSetGetBlock(t *testing.T) {
	w := NewMemoryWorld(vec.Vec3{})
	pos := vec.Vec3{X: 1, Y: -20, Z: 3}

	w.SetBlock(pos, Block{ID: block.ChestBlockID, Payload: map[string]interface{}{"chest_id": "c1"}})

	b, ok := w.GetBlock(pos)
	require.True(t, ok)
	assert.Equal(t, block.ChestBlockID, b.ID)
	assert.Equal(t, "c1", b.Payload["chest_id"])
}

func TestMemoryWorldSpawnAndKill(t *testing.T) {
	w := NewMemoryWorld(vec.Vec3{})

	var deaths []Mob
	w.SetDeathListener(func(mob Mob) { deaths = append(deaths, mob) })

	mob := w.SpawnMob("zombie", vec.Vec3{X: 1, Y: -20, Z: 1}, "sp-1")
	assert.Greater(t, mob.ID, uint64(1000), "ID сущностей начинаются после 1000")
	assert.Equal(t, 1, w.MobCount())

	require.True(t, w.KillMob(mob.ID))
	assert.Equal(t, 0, w.MobCount())
	require.Len(t, deaths, 1, "Слушатель гибели вызывается синхронно")
	assert.Equal(t, mob.ID, deaths[0].ID)
	assert.Equal(t, "sp-1", deaths[0].SpawnerID)

	// Повторное убийство того же моба — false без уведомления
	assert.False(t, w.KillMob(mob.ID))
	assert.Len(t, deaths, 1)
}

func TestMemoryWorldDespawnSilent(t *testing.T) {
	w := NewMemoryWorld(vec.Vec3{})

	called := false
	w.SetDeathListener(func(Mob) { called = true })

	mob := w.SpawnMob("spider", vec.Vec3{}, "sp-1")
	w.DespawnMob(mob.ID)

	assert.Equal(t, 0, w.MobCount())
	assert.False(t, called, "Деспавн не считается гибелью")
}

func TestMemoryWorldEntitiesInBox(t *testing.T) {
	w := NewMemoryWorld(vec.Vec3{})

	inside := w.SpawnMob("zombie", vec.Vec3{X: 2, Y: -20, Z: 2}, "sp-1")
	w.SpawnMob("zombie", vec.Vec3{X: 50, Y: -20, Z: 50}, "sp-1")

	found := w.GetEntitiesInBox(vec.Vec3{X: 0, Y: -30, Z: 0}, vec.Vec3{X: 10, Y: -10, Z: 10})
	require.Len(t, found, 1)
	assert.Equal(t, inside.ID, found[0].ID)
}

func TestMemoryWorldMobsBySpawner(t *testing.T) {
	w := NewMemoryWorld(vec.Vec3{})

	w.SpawnMob("zombie", vec.Vec3{}, "sp-1")
	w.SpawnMob("spider", vec.Vec3{}, "sp-1")
	w.SpawnMob("zombie", vec.Vec3{}, "sp-2")

	assert.Len(t, w.MobsBySpawner("sp-1"), 2)
	assert.Len(t, w.MobsBySpawner("sp-2"), 1)
	assert.Empty(t, w.MobsBySpawner("missing"))
}
