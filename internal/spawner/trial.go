package spawner

import (
	"math"
	"math/rand"

	"github.com/annel0/trial-chambers/internal/logging"
	"github.com/annel0/trial-chambers/internal/loot"
	"github.com/annel0/trial-chambers/internal/vec"
	"github.com/annel0/trial-chambers/internal/world"
	"github.com/annel0/trial-chambers/internal/world/block"
)

// TrialState представляет состояние спаунера испытания
type TrialState int

const (
	StateIdle TrialState = iota
	StateActive
	StateCompleted
	StateFailed
)

// String возвращает строковое представление состояния
func (s TrialState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ParseTrialState восстанавливает состояние из строковой формы
func ParseTrialState(s string) TrialState {
	switch s {
	case "active":
		return StateActive
	case "completed":
		return StateCompleted
	case "failed":
		return StateFailed
	default:
		return StateIdle
	}
}

// RewardChest — сундук награды, привязанный к спаунеру.
// Заполняется лутом только после завершения испытания.
type RewardChest struct {
	Position  vec.Vec3 `json:"position"`
	LootTable string   `json:"loot_table"`
}

// TrialSpawner — конечный автомат одного спаунера испытаний.
// Idle -> Active(wave=1..TotalWaves) -> Completed | Failed.
//
// Не потокобезопасен: спаунер продвигается строго один раз за тик мира,
// гибель мобов доставляется через очередь EnqueueMobDeath и потребляется
// в Update в том же потоке.
type TrialSpawner struct {
	// Конфигурация, фиксируется при генерации
	ID             string   // уникальный идентификатор
	Position       vec.Vec3 // позиция блока спаунера
	TotalWaves     int      // количество волн, >= 1
	MaxMobsPerWave int      // мобов в волне, >= 1
	MobTypes       []string // доступный пул мобов, непустой
	RewardChests   []RewardChest

	// Рантайм-состояние
	State           TrialState
	WaveCount       int  // 0..TotalWaves, монотонно неубывающий
	CurrentMobCount int  // живых мобов текущей волны
	RewardGenerated bool // переходит false->true ровно один раз

	rng           *rand.Rand
	liveMobs      map[uint64]struct{} // ID заспавненных и ещё не погибших мобов
	pendingDeaths []uint64            // очередь гибелей, потребляется раз за тик
	needRespawn   bool                // после Deserialize: мобы волны потеряны при выгрузке
	log           *logging.Logger
}

// NewTrialSpawner создаёт спаунер в состоянии Idle.
// Все случайные решения (выбор мобов, разброс позиций, лут) берутся из rng.
func NewTrialSpawner(id string, pos vec.Vec3, totalWaves, maxMobsPerWave int, mobTypes []string, rng *rand.Rand) *TrialSpawner {
	if totalWaves < 1 {
		totalWaves = 1
	}
	if maxMobsPerWave < 1 {
		maxMobsPerWave = 1
	}

	return &TrialSpawner{
		ID:             id,
		Position:       pos,
		TotalWaves:     totalWaves,
		MaxMobsPerWave: maxMobsPerWave,
		MobTypes:       mobTypes,
		State:          StateIdle,
		rng:            rng,
		liveMobs:       make(map[uint64]struct{}),
		log:            logging.GetSpawnerLogger(),
	}
}

// Activate переводит спаунер Idle -> Active и спавнит первую волну.
// Возвращает false без побочных эффектов, если спаунер уже активирован
// или испытание завершено.
func (ts *TrialSpawner) Activate(w world.World) bool {
	if ts.State != StateIdle {
		return false
	}

	ts.State = StateActive
	ts.WaveCount = 1
	ts.spawnWave(w)
	ts.setBlockActive(w, true)

	ts.log.Info("Спаунер %s активирован: волн=%d, мобов в волне=%d", ts.ID, ts.TotalWaves, ts.MaxMobsPerWave)
	return true
}

// Interact обрабатывает взаимодействие игрока со спаунером.
// Принимается только в состоянии Idle; в остальных состояниях — no-op.
func (ts *TrialSpawner) Interact(w world.World) bool {
	return ts.Activate(w)
}

// EnqueueMobDeath ставит гибель моба в очередь текущего тика.
// Повторная доставка одного и того же ID безопасна: дубликаты
// отбрасываются при потреблении очереди.
func (ts *TrialSpawner) EnqueueMobDeath(mobID uint64) {
	ts.pendingDeaths = append(ts.pendingDeaths, mobID)
}

// Update продвигает автомат на один тик мира: потребляет очередь гибелей,
// переключает волны и завершает испытание. Вызывается строго один раз за тик.
func (ts *TrialSpawner) Update(w world.World, currentTick uint64) {
	if ts.State != StateActive {
		ts.pendingDeaths = ts.pendingDeaths[:0]
		return
	}

	// Восстановление после загрузки: мобы волны были выгружены вместе с миром
	if ts.needRespawn {
		ts.needRespawn = false
		ts.respawnCurrentWave(w)
	}

	for _, mobID := range ts.pendingDeaths {
		if _, ours := ts.liveMobs[mobID]; !ours {
			// Дубликат или чужой моб — не считаем
			ts.log.Debug("Спаунер %s: отброшена гибель неизвестного моба %d", ts.ID, mobID)
			continue
		}
		delete(ts.liveMobs, mobID)
		ts.CurrentMobCount--
	}
	ts.pendingDeaths = ts.pendingDeaths[:0]

	if ts.CurrentMobCount < 0 {
		// Учёт гибелей разошёлся со спавном — принудительный провал без награды
		ts.log.Error("Спаунер %s: отрицательный счётчик мобов (%d), испытание провалено", ts.ID, ts.CurrentMobCount)
		ts.fail(w)
		return
	}

	if ts.CurrentMobCount == 0 {
		if ts.WaveCount < ts.TotalWaves {
			ts.WaveCount++
			ts.spawnWave(w)
			ts.log.Info("Спаунер %s: волна %d/%d", ts.ID, ts.WaveCount, ts.TotalWaves)
		} else {
			ts.complete(w)
		}
	}
}

// spawnWave спавнит до MaxMobsPerWave мобов вокруг спаунера
func (ts *TrialSpawner) spawnWave(w world.World) {
	for i := 0; i < ts.MaxMobsPerWave; i++ {
		mobType := ts.MobTypes[ts.rng.Intn(len(ts.MobTypes))]

		// Разброс в радиусе 2 блоков вокруг спаунера
		angle := ts.rng.Float64() * 2 * math.Pi
		dist := 1.0 + ts.rng.Float64()
		pos := ts.Position.Offset(
			int(math.Round(dist*math.Cos(angle))),
			0,
			int(math.Round(dist*math.Sin(angle))),
		)

		mob := w.SpawnMob(mobType, pos, ts.ID)
		ts.liveMobs[mob.ID] = struct{}{}
		ts.CurrentMobCount++
	}
}

// respawnCurrentWave доспавнивает мобов текущей волны после загрузки
func (ts *TrialSpawner) respawnCurrentWave(w world.World) {
	missing := ts.CurrentMobCount
	ts.CurrentMobCount = 0
	for i := 0; i < missing; i++ {
		mobType := ts.MobTypes[ts.rng.Intn(len(ts.MobTypes))]
		mob := w.SpawnMob(mobType, ts.Position.Offset(1, 0, 0), ts.ID)
		ts.liveMobs[mob.ID] = struct{}{}
		ts.CurrentMobCount++
	}
}

// complete завершает испытание и генерирует награду ровно один раз
func (ts *TrialSpawner) complete(w world.World) {
	ts.State = StateCompleted
	ts.setBlockActive(w, false)

	if ts.RewardGenerated {
		return
	}
	ts.RewardGenerated = true
	ts.fillRewardChests(w)
	ts.log.Info("Спаунер %s: испытание завершено, наград=%d", ts.ID, len(ts.RewardChests))
}

// fail переводит спаунер в Failed: деактивация без награды
func (ts *TrialSpawner) fail(w world.World) {
	ts.State = StateFailed
	ts.setBlockActive(w, false)

	// Оставшиеся мобы волны убираются из мира
	if w != nil {
		for mobID := range ts.liveMobs {
			w.DespawnMob(mobID)
		}
	}
	ts.liveMobs = make(map[uint64]struct{})
	ts.CurrentMobCount = 0
}

// fillRewardChests заполняет сундуки награды по их таблицам лута
func (ts *TrialSpawner) fillRewardChests(w world.World) {
	if w == nil {
		return
	}

	for _, chest := range ts.RewardChests {
		table, exists := loot.Get(chest.LootTable)
		if !exists {
			ts.log.Warn("Спаунер %s: неизвестная таблица лута %s", ts.ID, chest.LootTable)
			continue
		}

		b, _ := w.GetBlock(chest.Position)
		if b.ID != block.ChestBlockID {
			// Сундук разрушен или не был построен — пропускаем
			continue
		}
		if b.Payload == nil {
			b.Payload = make(map[string]interface{})
		}
		b.Payload["items"] = table.Roll(ts.rng)
		w.SetBlock(chest.Position, b)
	}
}

// setBlockActive обновляет визуальное состояние блока спаунера
func (ts *TrialSpawner) setBlockActive(w world.World, active bool) {
	if w == nil {
		return
	}

	def, _ := block.Get(block.TrialSpawnerBlockID)
	light := def.LightLevel
	if active {
		light = 15
	}

	w.SetBlock(ts.Position, world.Block{
		ID: block.TrialSpawnerBlockID,
		Payload: map[string]interface{}{
			"spawner_id": ts.ID,
			"active":     active,
			"light":      light,
		},
	})
}
