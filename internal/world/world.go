package world

import (
	"github.com/annel0/trial-chambers/internal/vec"
	"github.com/annel0/trial-chambers/internal/world/block"
)

// Block представляет блок в мире: идентификатор плюс произвольные метаданные
type Block struct {
	ID      block.BlockID          `json:"id"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// Mob представляет заспавненного моба.
// SpawnerID ненулевой, если моб принадлежит спаунеру испытания.
type Mob struct {
	ID        uint64   `json:"id"`
	Type      string   `json:"type"`
	Position  vec.Vec3 `json:"position"`
	SpawnerID string   `json:"spawner_id,omitempty"`
}

// World определяет контракт мира, который потребляет генератор структур
// и спаунеры испытаний. Реализация отвечает за хранение блоков и сущностей.
type World interface {
	// GetBlock возвращает блок по координатам; false — если блок не загружен
	GetBlock(pos vec.Vec3) (Block, bool)

	// SetBlock устанавливает блок по координатам
	SetBlock(pos vec.Vec3, b Block)

	// SpawnMob создаёт моба указанного типа и возвращает его дескриптор
	SpawnMob(mobType string, pos vec.Vec3, spawnerID string) Mob

	// DespawnMob удаляет моба из мира
	DespawnMob(id uint64)

	// GetEntitiesInBox возвращает мобов внутри прямоугольной области (включительно)
	GetEntitiesInBox(min, max vec.Vec3) []Mob

	// GetSpawnPosition возвращает точку спавна мира
	GetSpawnPosition() vec.Vec3
}
