package world

import (
	"sync"

	"github.com/annel0/trial-chambers/internal/vec"
	"github.com/annel0/trial-chambers/internal/world/block"
)

// DeathListener вызывается синхронно при гибели моба
type DeathListener func(mob Mob)

// MemoryWorld — in-memory реализация World для тестов и демо-сервера.
// Блоки хранятся в плоской карте; незаписанные координаты считаются камнем
// ниже нулевой высоты и воздухом выше (упрощённый «ландшафт»).
type MemoryWorld struct {
	mu            sync.RWMutex
	blocks        map[vec.Vec3]Block
	mobs          map[uint64]*Mob
	nextEntityID  uint64
	spawnPos      vec.Vec3
	deathListener DeathListener
}

// NewMemoryWorld создаёт пустой мир с указанной точкой спавна
func NewMemoryWorld(spawnPos vec.Vec3) *MemoryWorld {
	return &MemoryWorld{
		blocks:       make(map[vec.Vec3]Block),
		mobs:         make(map[uint64]*Mob),
		nextEntityID: 1000, // Начинаем с 1000, чтобы избежать конфликтов с малыми ID
		spawnPos:     spawnPos,
	}
}

// SetDeathListener устанавливает обработчик гибели мобов.
// Вызывается из KillMob синхронно, в потоке тикающего кода.
func (mw *MemoryWorld) SetDeathListener(l DeathListener) {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	mw.deathListener = l
}

// GetBlock возвращает блок по координатам
func (mw *MemoryWorld) GetBlock(pos vec.Vec3) (Block, bool) {
	mw.mu.RLock()
	defer mw.mu.RUnlock()

	if b, exists := mw.blocks[pos]; exists {
		return b, true
	}

	// Незаписанные координаты: сплошной камень под Y=0, воздух выше
	if pos.Y < 0 {
		return Block{ID: block.StoneBlockID}, true
	}
	return Block{ID: block.AirBlockID}, true
}

// SetBlock устанавливает блок по координатам
func (mw *MemoryWorld) SetBlock(pos vec.Vec3, b Block) {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	mw.blocks[pos] = b
}

// SpawnMob создаёт моба указанного типа
func (mw *MemoryWorld) SpawnMob(mobType string, pos vec.Vec3, spawnerID string) Mob {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	mw.nextEntityID++
	mob := &Mob{
		ID:        mw.nextEntityID,
		Type:      mobType,
		Position:  pos,
		SpawnerID: spawnerID,
	}
	mw.mobs[mob.ID] = mob
	return *mob
}

// DespawnMob удаляет моба без уведомления о гибели
func (mw *MemoryWorld) DespawnMob(id uint64) {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	delete(mw.mobs, id)
}

// KillMob удаляет моба и уведомляет слушателя гибели.
// Возвращает false, если моб не найден (уже убит или не существовал).
func (mw *MemoryWorld) KillMob(id uint64) bool {
	mw.mu.Lock()
	mob, exists := mw.mobs[id]
	if exists {
		delete(mw.mobs, id)
	}
	listener := mw.deathListener
	mw.mu.Unlock()

	if !exists {
		return false
	}
	if listener != nil {
		listener(*mob)
	}
	return true
}

// GetEntitiesInBox возвращает мобов внутри области (границы включительно)
func (mw *MemoryWorld) GetEntitiesInBox(min, max vec.Vec3) []Mob {
	mw.mu.RLock()
	defer mw.mu.RUnlock()

	var result []Mob
	for _, mob := range mw.mobs {
		p := mob.Position
		if p.X >= min.X && p.X <= max.X &&
			p.Y >= min.Y && p.Y <= max.Y &&
			p.Z >= min.Z && p.Z <= max.Z {
			result = append(result, *mob)
		}
	}
	return result
}

// GetSpawnPosition возвращает точку спавна мира
func (mw *MemoryWorld) GetSpawnPosition() vec.Vec3 {
	return mw.spawnPos
}

// MobCount возвращает количество живых мобов (для тестов)
func (mw *MemoryWorld) MobCount() int {
	mw.mu.RLock()
	defer mw.mu.RUnlock()
	return len(mw.mobs)
}

// MobsBySpawner возвращает живых мобов, принадлежащих спаунеру (для тестов)
func (mw *MemoryWorld) MobsBySpawner(spawnerID string) []Mob {
	mw.mu.RLock()
	defer mw.mu.RUnlock()

	var result []Mob
	for _, mob := range mw.mobs {
		if mob.SpawnerID == spawnerID {
			result = append(result, *mob)
		}
	}
	return result
}
