package loot

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetKnownTables(t *testing.T) {
	for _, name := range []string{TableCommon, TableRich, TableTreasure} {
		table, exists := Get(name)
		require.True(t, exists, "Таблица %s должна существовать", name)
		assert.Equal(t, name, table.Name)
		assert.NotEmpty(t, table.Entries)
	}

	_, exists := Get("trial/unknown")
	assert.False(t, exists)
}

func TestRollCountsWithinBounds(t *testing.T) {
	table, _ := Get(TableCommon)
	rng := rand.New(rand.NewSource(1))

	limits := make(map[string]Entry)
	for _, entry := range table.Entries {
		limits[entry.Item] = entry
	}

	for i := 0; i < 200; i++ {
		for _, stack := range table.Roll(rng) {
			entry, known := limits[stack.Item]
			require.True(t, known, "Выпал предмет вне таблицы: %s", stack.Item)
			assert.GreaterOrEqual(t, stack.Count, entry.MinCount)
			assert.LessOrEqual(t, stack.Count, entry.MaxCount)
		}
	}
}

func TestRollDeterministic(t *testing.T) {
	table, _ := Get(TableRich)

	a := table.Roll(rand.New(rand.NewSource(77)))
	b := table.Roll(rand.New(rand.NewSource(77)))
	assert.Equal(t, a, b, "Один сид — одинаковый лут")
}

func TestRollEmptyTable(t *testing.T) {
	empty := &Table{Name: "empty"}
	assert.Nil(t, empty.Roll(rand.New(rand.NewSource(1))), "Пустая таблица даёт пустой результат")
}
