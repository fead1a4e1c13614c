package structure

import (
	"math/rand"

	"github.com/annel0/trial-chambers/internal/config"
	"github.com/annel0/trial-chambers/internal/logging"
	"github.com/annel0/trial-chambers/internal/loot"
	"github.com/annel0/trial-chambers/internal/vec"
	"github.com/annel0/trial-chambers/internal/world"
	"github.com/annel0/trial-chambers/internal/world/block"
	"github.com/aquilax/go-perlin"
)

// Builder переводит абстрактный граф комнат/коридоров в записи блоков
// мира. Чисто трансляционный слой: вся планировка уже решена.
type Builder struct {
	world world.World
	cfg   *config.GenerationConfig
	rng   *rand.Rand
	noise *perlin.Perlin
	log   *logging.Logger
}

// NewBuilder создаёт строителя. w может быть nil — тогда Build будет no-op,
// что позволяет использовать генерацию для планирования без материализации.
func NewBuilder(w world.World, cfg *config.GenerationConfig, rng *rand.Rand, seed int64) *Builder {
	return &Builder{
		world: w,
		cfg:   cfg,
		rng:   rng,
		noise: perlin.NewPerlin(2.0, 2.0, 3, seed),
		log:   logging.GetGenLogger(),
	}
}

// Build выдаёт записи блоков для всех элементов структуры.
// Отсутствие мира — мягкий отказ, не ошибка.
func (b *Builder) Build(st *Structure) {
	if b.world == nil {
		b.log.Warn("Строитель: мир не задан, материализация структуры %s пропущена", st.ID)
		return
	}

	for _, room := range st.Rooms {
		b.buildRoom(st, room)
	}
	for _, corridor := range st.Corridors {
		for _, seg := range corridor.Segments {
			b.carveSegment(st, seg)
		}
	}
	for _, ts := range st.Spawners {
		b.setBlock(st, ts.Position, world.Block{
			ID: block.TrialSpawnerBlockID,
			Payload: map[string]interface{}{
				"spawner_id": ts.ID,
				"active":     false,
			},
		})
	}
	for _, chest := range st.Chests {
		b.placeChest(st, chest)
	}

	b.log.Info("Структура %s материализована: комнат=%d, коридоров=%d", st.ID, len(st.Rooms), len(st.Corridors))
}

// buildRoom вырезает интерьер комнаты и возводит пол, стены и потолок
func (b *Builder) buildRoom(st *Structure, room *Room) {
	bounds := room.Bounds()
	shell := bounds.Expand(1)

	for x := shell.Min.X; x <= shell.Max.X; x++ {
		for y := shell.Min.Y; y <= shell.Max.Y; y++ {
			for z := shell.Min.Z; z <= shell.Max.Z; z++ {
				pos := vec.Vec3{X: x, Y: y, Z: z}
				if bounds.Contains(pos) {
					b.setBlock(st, pos, world.Block{ID: block.AirBlockID})
				} else {
					b.setBlock(st, pos, world.Block{ID: b.wallBlock()})
				}
			}
		}
	}
}

// carveSegment вырезает проём отрезка коридора с полом под ним
func (b *Builder) carveSegment(st *Structure, seg Segment) {
	bounds := seg.Bounds()

	for x := bounds.Min.X; x <= bounds.Max.X; x++ {
		for z := bounds.Min.Z; z <= bounds.Max.Z; z++ {
			// Пол под проёмом
			b.setBlock(st, vec.Vec3{X: x, Y: bounds.Min.Y - 1, Z: z}, world.Block{ID: b.wallBlock()})
			for y := bounds.Min.Y; y <= bounds.Max.Y; y++ {
				b.setBlock(st, vec.Vec3{X: x, Y: y, Z: z}, world.Block{ID: block.AirBlockID})
			}
		}
	}
}

// placeChest ставит блок сундука; особые сундуки заполняются сразу,
// сундуки награды остаются пустыми до завершения испытания
func (b *Builder) placeChest(st *Structure, chest *Chest) {
	payload := map[string]interface{}{
		"chest_id":   chest.ID,
		"loot_table": chest.LootTable,
	}
	if chest.SpawnerID != "" {
		payload["spawner_id"] = chest.SpawnerID
	}

	if chest.IsSpecial {
		if table, exists := loot.Get(chest.LootTable); exists {
			payload["items"] = table.Roll(b.rng)
		}
	}

	b.setBlock(st, chest.Position, world.Block{ID: block.ChestBlockID, Payload: payload})
}

// wallBlock возвращает блок кладки: целая, изредка замшелая или треснувшая
func (b *Builder) wallBlock() block.BlockID {
	switch roll := b.rng.Float64(); {
	case roll < 0.1:
		return block.MossyBricksBlockID
	case roll < 0.2:
		return block.CrackedBricksBlockID
	default:
		return block.BricksBlockID
	}
}

// setBlock пишет блок в мир с учётом эрозии руин: для KindRuins часть
// записей опускается по полю шума Перлина, имитируя возраст постройки
func (b *Builder) setBlock(st *Structure, pos vec.Vec3, blk world.Block) {
	if st.Kind == KindRuins && blk.ID != block.TrialSpawnerBlockID && blk.ID != block.ChestBlockID {
		if b.erodedAt(pos) {
			return
		}
	}
	b.world.SetBlock(pos, blk)
}

// erodedAt возвращает true, если блок в этой точке «съеден» эрозией
func (b *Builder) erodedAt(pos vec.Vec3) bool {
	scale := b.cfg.ErosionScale
	if scale <= 0 {
		return false
	}

	// Noise3D возвращает [-1, 1]; приводим к [0, 1]
	n := (b.noise.Noise3D(float64(pos.X)*scale, float64(pos.Y)*scale, float64(pos.Z)*scale) + 1) / 2
	return n < b.cfg.ErosionLevel
}
