package structure

import (
	"math"
	"math/rand"

	"github.com/annel0/trial-chambers/internal/config"
	"github.com/annel0/trial-chambers/internal/logging"
	"github.com/annel0/trial-chambers/internal/loot"
	"github.com/annel0/trial-chambers/internal/spawner"
	"github.com/annel0/trial-chambers/internal/vec"
	"github.com/google/uuid"
)

// Пороги сложности, разблокирующие более сильных мобов
const (
	skeletonThreshold = 0.3
	huskThreshold     = 0.55
	breezeThreshold   = 0.8
)

// Радиус кольца сундуков вокруг спаунера
const chestRingRadius = 2

// Populator расставляет спаунеры и сундуки по комнатам,
// масштабируя испытания по удалённости от входа.
type Populator struct {
	cfg *config.PopulationConfig
	rng *rand.Rand
	log *logging.Logger
}

// NewPopulator создаёт планировщик населения
func NewPopulator(cfg *config.PopulationConfig, rng *rand.Rand) *Populator {
	return &Populator{
		cfg: cfg,
		rng: rng,
		log: logging.GetGenLogger(),
	}
}

// Populate мутирует структуру: в обычные комнаты (кроме входа) с настроенной
// вероятностью ставится спаунер с кольцом сундуков награды, в сокровищницы —
// сундуки верхнего уровня лута без спаунера.
func (p *Populator) Populate(st *Structure) {
	entrance := st.Entrance()
	if entrance == nil {
		return
	}

	for i, room := range st.Rooms {
		if room.IsSpecial() {
			p.populateTreasureRoom(st, room)
			continue
		}
		if i == 0 {
			continue // вход остаётся пустым
		}
		if p.rng.Float64() >= p.cfg.SpawnerChance {
			continue
		}
		p.placeSpawner(st, entrance, room)
	}

	p.log.Info("Население: спаунеров=%d, сундуков=%d", len(st.Spawners), len(st.Chests))
}

// placeSpawner ставит спаунер в центр комнаты и окружает его сундуками награды
func (p *Populator) placeSpawner(st *Structure, entrance, room *Room) {
	pos := room.Center
	difficulty := p.difficultyAt(entrance, pos)

	totalWaves := p.cfg.BaseWaves + int(difficulty*float64(p.cfg.WaveBonus))
	maxMobs := p.cfg.BaseMobs + int(difficulty*float64(p.cfg.MobBonus))

	ts := spawner.NewTrialSpawner(
		uuid.NewString(),
		pos,
		totalWaves,
		maxMobs,
		p.mobPool(difficulty),
		rand.New(rand.NewSource(p.rng.Int63())),
	)

	// Кольцо сундуков награды: количество растёт со сложностью,
	// позиции — равные углы вокруг спаунера
	table := loot.TableCommon
	if totalWaves > p.cfg.RichLootWaves {
		table = loot.TableRich
	}

	chestCount := 1 + int(difficulty*2)
	for k := 0; k < chestCount; k++ {
		angle := 2 * math.Pi * float64(k) / float64(chestCount)
		chestPos := pos.Offset(
			int(math.Round(chestRingRadius*math.Cos(angle))),
			0,
			int(math.Round(chestRingRadius*math.Sin(angle))),
		)

		chest := &Chest{
			ID:        uuid.NewString(),
			Position:  chestPos,
			LootTable: table,
			IsReward:  true,
			SpawnerID: ts.ID,
		}
		st.AddChest(chest, room)
		ts.RewardChests = append(ts.RewardChests, spawner.RewardChest{
			Position:  chestPos,
			LootTable: table,
		})
	}

	st.AddSpawner(ts, room)
	p.log.Debug("Спаунер %s: сложность=%.2f, волн=%d, мобов=%d, сундуков=%d",
		ts.ID, difficulty, totalWaves, maxMobs, chestCount)
}

// populateTreasureRoom ставит в сокровищницу сундуки верхнего уровня лута
func (p *Populator) populateTreasureRoom(st *Structure, room *Room) {
	count := p.cfg.TreasureChests
	if count < 1 {
		count = 1
	}

	for k := 0; k < count; k++ {
		angle := 2 * math.Pi * float64(k) / float64(count)
		chest := &Chest{
			ID: uuid.NewString(),
			Position: room.Center.Offset(
				int(math.Round(chestRingRadius*math.Cos(angle))),
				0,
				int(math.Round(chestRingRadius*math.Sin(angle))),
			),
			LootTable: loot.TableTreasure,
			IsSpecial: true,
		}
		st.AddChest(chest, room)
	}
}

// difficultyAt возвращает скаляр сложности 0..1 по дистанции от входа
func (p *Populator) difficultyAt(entrance *Room, pos vec.Vec3) float64 {
	if p.cfg.DistanceNorm <= 0 {
		return 1
	}
	d := entrance.Center.DistanceTo(pos) / p.cfg.DistanceNorm
	return math.Min(1, d)
}

// mobPool возвращает пул мобов для указанной сложности.
// Слабые мобы доступны всегда, сильные разблокируются порогами,
// финальный тип дополнительно закрыт случайным шансом.
func (p *Populator) mobPool(difficulty float64) []string {
	pool := []string{"zombie", "spider"}
	if difficulty >= skeletonThreshold {
		pool = append(pool, "skeleton")
	}
	if difficulty >= huskThreshold {
		pool = append(pool, "husk")
	}
	if difficulty >= breezeThreshold && p.rng.Float64() < p.cfg.OminousChance {
		pool = append(pool, "breeze")
	}
	return pool
}
