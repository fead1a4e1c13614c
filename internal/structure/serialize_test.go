package structure

import (
	"context"
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/annel0/trial-chambers/internal/spawner"
	"github.com/annel0/trial-chambers/internal/vec"
	"github.com/annel0/trial-chambers/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStructureSerializeRoundTrip(t *testing.T) {
	g := NewGenerator(testConfig(123))
	st := g.Generate(context.Background(), nil, vec.Vec3{X: 0, Y: -25, Z: 0})

	rec := st.Serialize()

	// Запись переживает JSON round-trip
	data, err := json.Marshal(rec)
	require.NoError(t, err)
	var decoded Record
	require.NoError(t, json.Unmarshal(data, &decoded))

	restored := Deserialize(decoded, rand.New(rand.NewSource(1)))
	assert.Equal(t, st.ID, restored.ID)
	assert.Equal(t, st.Kind, restored.Kind)
	assert.Equal(t, st.Origin, restored.Origin)
	assert.Equal(t, st.Bounds, restored.Bounds)

	require.Equal(t, len(st.Rooms), len(restored.Rooms))
	for i := range st.Rooms {
		assert.Equal(t, *st.Rooms[i], *restored.Rooms[i], "Комната %d", i)
	}

	require.Equal(t, len(st.Corridors), len(restored.Corridors))
	for i := range st.Corridors {
		assert.Equal(t, *st.Corridors[i], *restored.Corridors[i], "Коридор %d", i)
	}

	require.Equal(t, len(st.Spawners), len(restored.Spawners))
	for i := range st.Spawners {
		assert.Equal(t, st.Spawners[i].Serialize(), restored.Spawners[i].Serialize(), "Спаунер %d", i)
	}

	require.Equal(t, len(st.Chests), len(restored.Chests))
	for i := range st.Chests {
		assert.Equal(t, *st.Chests[i], *restored.Chests[i], "Сундук %d", i)
	}
}

func TestStructureRecordFieldNames(t *testing.T) {
	g := NewGenerator(testConfig(123))
	st := g.Generate(context.Background(), nil, vec.Vec3{Y: -25})

	data, err := json.Marshal(st.Serialize())
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))

	for _, field := range []string{"id", "kind", "origin", "bounds", "rooms", "corridors", "spawners", "chests"} {
		assert.Contains(t, raw, field, "Поле контракта сериализации")
	}
}

func TestDeserializedStructureRunsTrial(t *testing.T) {
	// Сохранённая структура остаётся играбельной после восстановления
	cfg := testConfig(55)
	cfg.Population.SpawnerChance = 1.0

	st := NewGenerator(cfg).Generate(context.Background(), nil, vec.Vec3{Y: -25})
	require.NotEmpty(t, st.Spawners, "Для теста нужна структура со спаунерами")

	rec := st.Serialize()
	restored := Deserialize(rec, rand.New(rand.NewSource(9)))

	w := world.NewMemoryWorld(vec.Vec3{})
	ts := restored.Spawners[0]
	require.Equal(t, spawner.StateIdle, ts.State)
	require.True(t, ts.Activate(w), "Восстановленный Idle-спаунер активируется")
	assert.Positive(t, ts.CurrentMobCount)
	assert.Equal(t, ts.CurrentMobCount, w.MobCount())
}
