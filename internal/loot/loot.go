package loot

import (
	"math/rand"
)

// Идентификаторы таблиц лута по уровням наград
const (
	TableCommon   = "trial/common"   // обычные сундуки вокруг спаунера
	TableRich     = "trial/rich"     // спаунеры с длинными испытаниями
	TableTreasure = "trial/treasure" // сокровищница
)

// Entry представляет одну позицию в таблице лута
type Entry struct {
	Item     string // идентификатор предмета
	Weight   int    // вес при розыгрыше
	MinCount int
	MaxCount int
}

// Table определяет таблицу возможных предметов и их шансов
type Table struct {
	Name    string
	Entries []Entry
}

// Stack — выпавший предмет с количеством
type Stack struct {
	Item  string `json:"item"`
	Count int    `json:"count"`
}

var tables = map[string]*Table{
	TableCommon: {
		Name: TableCommon,
		Entries: []Entry{
			{Item: "bread", Weight: 30, MinCount: 1, MaxCount: 4},
			{Item: "arrow", Weight: 25, MinCount: 2, MaxCount: 8},
			{Item: "iron_ingot", Weight: 15, MinCount: 1, MaxCount: 3},
			{Item: "emerald", Weight: 10, MinCount: 1, MaxCount: 2},
			{Item: "honey_bottle", Weight: 10, MinCount: 1, MaxCount: 1},
		},
	},
	TableRich: {
		Name: TableRich,
		Entries: []Entry{
			{Item: "emerald", Weight: 25, MinCount: 2, MaxCount: 6},
			{Item: "iron_ingot", Weight: 20, MinCount: 2, MaxCount: 5},
			{Item: "golden_apple", Weight: 10, MinCount: 1, MaxCount: 1},
			{Item: "enchanted_book", Weight: 8, MinCount: 1, MaxCount: 1},
			{Item: "diamond", Weight: 5, MinCount: 1, MaxCount: 2},
		},
	},
	TableTreasure: {
		Name: TableTreasure,
		Entries: []Entry{
			{Item: "diamond", Weight: 25, MinCount: 1, MaxCount: 3},
			{Item: "enchanted_book", Weight: 20, MinCount: 1, MaxCount: 2},
			{Item: "golden_apple", Weight: 15, MinCount: 1, MaxCount: 2},
			{Item: "emerald_block", Weight: 10, MinCount: 1, MaxCount: 1},
			{Item: "trial_key", Weight: 10, MinCount: 1, MaxCount: 1},
		},
	},
}

// Get возвращает таблицу по имени
func Get(name string) (*Table, bool) {
	t, exists := tables[name]
	return t, exists
}

// Roll разыгрывает таблицу: каждая позиция выпадает с шансом weight/totalWeight,
// количество равномерно из [MinCount, MaxCount]. Пустой результат допустим.
func (t *Table) Roll(rng *rand.Rand) []Stack {
	totalWeight := 0
	for _, entry := range t.Entries {
		totalWeight += entry.Weight
	}
	if totalWeight <= 0 {
		return nil
	}

	var stacks []Stack
	for _, entry := range t.Entries {
		if rng.Intn(totalWeight) >= entry.Weight {
			continue
		}

		count := entry.MinCount
		if entry.MaxCount > entry.MinCount {
			count += rng.Intn(entry.MaxCount - entry.MinCount + 1)
		}
		if count > 0 {
			stacks = append(stacks, Stack{Item: entry.Item, Count: count})
		}
	}

	return stacks
}
