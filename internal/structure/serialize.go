package structure

import (
	"math/rand"

	"github.com/annel0/trial-chambers/internal/spawner"
	"github.com/annel0/trial-chambers/internal/vec"
)

// Record — сериализуемая форма структуры (JSON-совместимая).
// Поля именованы по контракту world-to-core: спаунеры хранятся
// как снапшоты, геометрия — как есть.
type Record struct {
	ID        string             `json:"id"`
	Kind      Kind               `json:"kind"`
	Origin    vec.Vec3           `json:"origin"`
	Bounds    Bounds             `json:"bounds"`
	Rooms     []*Room            `json:"rooms"`
	Corridors []*Corridor        `json:"corridors"`
	Spawners  []spawner.Snapshot `json:"spawners"`
	Chests    []*Chest           `json:"chests"`
}

// Serialize возвращает запись текущего состояния структуры
func (st *Structure) Serialize() Record {
	snaps := make([]spawner.Snapshot, 0, len(st.Spawners))
	for _, ts := range st.Spawners {
		snaps = append(snaps, ts.Serialize())
	}

	return Record{
		ID:        st.ID,
		Kind:      st.Kind,
		Origin:    st.Origin,
		Bounds:    st.Bounds,
		Rooms:     st.Rooms,
		Corridors: st.Corridors,
		Spawners:  snaps,
		Chests:    st.Chests,
	}
}

// Deserialize восстанавливает структуру из записи. Спаунеры получают
// дочерние ГПСЧ от rng, поэтому восстановление с тем же rng даёт ту же
// последовательность спавнов.
func Deserialize(rec Record, rng *rand.Rand) *Structure {
	st := &Structure{
		ID:        rec.ID,
		Kind:      rec.Kind,
		Origin:    rec.Origin,
		Bounds:    rec.Bounds,
		Rooms:     rec.Rooms,
		Corridors: rec.Corridors,
		Chests:    rec.Chests,
		hasBounds: true,
	}

	st.Spawners = make([]*spawner.TrialSpawner, 0, len(rec.Spawners))
	for _, snap := range rec.Spawners {
		child := rand.New(rand.NewSource(rng.Int63()))
		st.Spawners = append(st.Spawners, spawner.Deserialize(snap, child))
	}

	return st
}
