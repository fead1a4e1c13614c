package spawner

import (
	"math/rand"

	"github.com/annel0/trial-chambers/internal/logging"
	"github.com/annel0/trial-chambers/internal/vec"
)

// Snapshot — сериализуемая форма спаунера (JSON-совместимая).
// Поля именованы по контракту world-to-core.
type Snapshot struct {
	ID              string        `json:"id"`
	Position        vec.Vec3      `json:"position"`
	State           string        `json:"state"`
	Active          bool          `json:"active"`
	WaveCount       int           `json:"waveCount"`
	TotalWaves      int           `json:"totalWaves"`
	MaxMobsPerWave  int           `json:"maxMobsPerWave"`
	MobTypes        []string      `json:"mobTypes"`
	CurrentMobCount int           `json:"currentMobCount"`
	RewardGenerated bool          `json:"rewardGenerated"`
	RewardChests    []RewardChest `json:"rewardChests,omitempty"`
}

// Serialize возвращает снапшот текущего состояния спаунера
func (ts *TrialSpawner) Serialize() Snapshot {
	return Snapshot{
		ID:              ts.ID,
		Position:        ts.Position,
		State:           ts.State.String(),
		Active:          ts.State == StateActive,
		WaveCount:       ts.WaveCount,
		TotalWaves:      ts.TotalWaves,
		MaxMobsPerWave:  ts.MaxMobsPerWave,
		MobTypes:        ts.MobTypes,
		CurrentMobCount: ts.CurrentMobCount,
		RewardGenerated: ts.RewardGenerated,
		RewardChests:    ts.RewardChests,
	}
}

// Deserialize восстанавливает спаунер из снапшота.
// Мобы активной волны при выгрузке теряются, поэтому активный спаунер
// доспавнит недостающих мобов на первом Update.
func Deserialize(snap Snapshot, rng *rand.Rand) *TrialSpawner {
	ts := &TrialSpawner{
		ID:              snap.ID,
		Position:        snap.Position,
		TotalWaves:      snap.TotalWaves,
		MaxMobsPerWave:  snap.MaxMobsPerWave,
		MobTypes:        snap.MobTypes,
		RewardChests:    snap.RewardChests,
		State:           ParseTrialState(snap.State),
		WaveCount:       snap.WaveCount,
		CurrentMobCount: snap.CurrentMobCount,
		RewardGenerated: snap.RewardGenerated,
		rng:             rng,
		liveMobs:        make(map[uint64]struct{}),
		log:             logging.GetSpawnerLogger(),
	}

	if ts.State == StateActive && ts.CurrentMobCount > 0 {
		ts.needRespawn = true
	}

	return ts
}
