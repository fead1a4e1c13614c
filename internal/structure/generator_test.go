package structure

import (
	"context"
	"testing"

	"github.com/annel0/trial-chambers/internal/config"
	"github.com/annel0/trial-chambers/internal/vec"
	"github.com/annel0/trial-chambers/internal/world"
	"github.com/annel0/trial-chambers/internal/world/block"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(seed int64) *config.Config {
	cfg := config.Default()
	cfg.Generation.Seed = seed
	return cfg
}

func TestGenerateFullPipeline(t *testing.T) {
	w := world.NewMemoryWorld(vec.Vec3{})
	g := NewGenerator(testConfig(42))

	st := g.Generate(context.Background(), w, vec.Vec3{X: 0, Y: -25, Z: 0})
	require.NotNil(t, st)
	require.NotEmpty(t, st.ID)

	assert.Equal(t, KindChamber, st.Kind)
	assert.NotEmpty(t, st.Rooms, "Должна быть хотя бы входная комната")
	assert.True(t, Connected(st), "Каждая комната достижима из входа")

	// Границы структуры охватывают все комнаты
	for i, room := range st.Rooms {
		bounds := room.Bounds()
		assert.True(t, st.Bounds.Contains(bounds.Min), "Границы не охватывают комнату %d", i)
		assert.True(t, st.Bounds.Contains(bounds.Max), "Границы не охватывают комнату %d", i)
	}

	// Материализация: блоки спаунеров стоят в мире
	for _, ts := range st.Spawners {
		blk, _ := w.GetBlock(ts.Position)
		assert.Equal(t, block.TrialSpawnerBlockID, blk.ID)
	}
	for _, chest := range st.Chests {
		blk, _ := w.GetBlock(chest.Position)
		assert.Equal(t, block.ChestBlockID, blk.ID)
	}
}

func TestGenerateDeterministicBySeed(t *testing.T) {
	origin := vec.Vec3{X: 0, Y: -25, Z: 0}

	stA := NewGenerator(testConfig(777)).Generate(context.Background(), nil, origin)
	stB := NewGenerator(testConfig(777)).Generate(context.Background(), nil, origin)

	require.Equal(t, len(stA.Rooms), len(stB.Rooms), "Один сид — одинаковая планировка")
	for i := range stA.Rooms {
		assert.Equal(t, stA.Rooms[i].Center, stB.Rooms[i].Center)
		assert.Equal(t, stA.Rooms[i].Width, stB.Rooms[i].Width)
		assert.Equal(t, stA.Rooms[i].Special, stB.Rooms[i].Special)
	}

	require.Equal(t, len(stA.Spawners), len(stB.Spawners))
	for i := range stA.Spawners {
		assert.Equal(t, stA.Spawners[i].Position, stB.Spawners[i].Position)
		assert.Equal(t, stA.Spawners[i].TotalWaves, stB.Spawners[i].TotalWaves)
		assert.Equal(t, stA.Spawners[i].MobTypes, stB.Spawners[i].MobTypes)
	}
	assert.Equal(t, len(stA.Chests), len(stB.Chests))
}

func TestGenerateRuinsKind(t *testing.T) {
	cfg := testConfig(7)
	cfg.Generation.Kind = "ruins"

	st := NewGenerator(cfg).Generate(context.Background(), nil, vec.Vec3{Y: -25})
	assert.Equal(t, KindRuins, st.Kind)
}

func TestFindSiteUnderground(t *testing.T) {
	// Точка спавна на поверхности; под Y=0 мир по умолчанию сплошной камень
	w := world.NewMemoryWorld(vec.Vec3{X: 0, Y: 10, Z: 0})
	g := NewGenerator(testConfig(5))

	site := g.FindSite(w)
	require.NotNil(t, site, "В сплошной породе позиция находится с первой пробы")

	blk, _ := w.GetBlock(*site)
	assert.True(t, block.IsSolid(blk.ID), "Позиция должна лежать в толще породы")
	assert.GreaterOrEqual(t, site.Y, g.cfg.Generation.YMin)
	assert.LessOrEqual(t, site.Y, g.cfg.Generation.YMax)
}

func TestFindSiteNilWorld(t *testing.T) {
	g := NewGenerator(testConfig(5))
	assert.Nil(t, g.FindSite(nil))
}

func TestFindSiteFallback(t *testing.T) {
	cfg := testConfig(5)
	cfg.Generation.YMin = 5 // весь диапазон проб — в воздухе
	cfg.Generation.YMax = 40
	cfg.Generation.SiteFallback = true

	w := world.NewMemoryWorld(vec.Vec3{X: 3, Y: 10, Z: 4})
	site := NewGenerator(cfg).FindSite(w)

	require.NotNil(t, site, "Fallback даёт позицию даже без подходящей породы")
	assert.Equal(t, 3, site.X)
	assert.Equal(t, 4, site.Z)
}

func TestFindSiteSoftFailure(t *testing.T) {
	cfg := testConfig(5)
	cfg.Generation.YMin = 5
	cfg.Generation.YMax = 40
	cfg.Generation.SiteFallback = false

	w := world.NewMemoryWorld(vec.Vec3{X: 0, Y: 10, Z: 0})
	assert.Nil(t, NewGenerator(cfg).FindSite(w), "Без fallback исчерпание проб возвращает nil")
}

func TestNewGeneratorSeedFromClock(t *testing.T) {
	g := NewGenerator(testConfig(0))
	assert.NotZero(t, g.Seed(), "Нулевой сид заменяется временем")
}

func BenchmarkGenerate(b *testing.B) {
	cfg := testConfig(42)
	origin := vec.Vec3{X: 0, Y: -25, Z: 0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g := NewGenerator(cfg)
		g.Generate(context.Background(), nil, origin)
	}
}

func BenchmarkGenerateWithWorld(b *testing.B) {
	cfg := testConfig(42)
	origin := vec.Vec3{X: 0, Y: -25, Z: 0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := world.NewMemoryWorld(vec.Vec3{})
		NewGenerator(cfg).Generate(context.Background(), w, origin)
	}
}
