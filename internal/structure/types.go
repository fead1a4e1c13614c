package structure

import (
	"github.com/annel0/trial-chambers/internal/spawner"
	"github.com/annel0/trial-chambers/internal/vec"
)

// Kind представляет разновидность генерируемой структуры
type Kind string

const (
	KindChamber Kind = "chamber" // камера испытаний, кладка без эрозии
	KindRuins   Kind = "ruins"   // погребённые руины, часть блоков опущена
)

// SpecialType помечает особые комнаты
type SpecialType string

const (
	SpecialNone     SpecialType = ""
	SpecialTreasure SpecialType = "treasure"
)

// Bounds — осевыравненный параллелепипед (границы включительно)
type Bounds struct {
	Min vec.Vec3 `json:"min"`
	Max vec.Vec3 `json:"max"`
}

// Expand возвращает границы, расширенные на pad блоков по всем осям
func (b Bounds) Expand(pad int) Bounds {
	return Bounds{
		Min: b.Min.Offset(-pad, -pad, -pad),
		Max: b.Max.Offset(pad, pad, pad),
	}
}

// Intersects проверяет пересечение с другими границами
func (b Bounds) Intersects(other Bounds) bool {
	return b.Min.X <= other.Max.X && b.Max.X >= other.Min.X &&
		b.Min.Y <= other.Max.Y && b.Max.Y >= other.Min.Y &&
		b.Min.Z <= other.Max.Z && b.Max.Z >= other.Min.Z
}

// Extend расширяет границы так, чтобы они включали other.
// Возвращает охватывающий параллелепипед обеих областей.
func (b Bounds) Extend(other Bounds) Bounds {
	return Bounds{
		Min: vec.Vec3{X: minInt(b.Min.X, other.Min.X), Y: minInt(b.Min.Y, other.Min.Y), Z: minInt(b.Min.Z, other.Min.Z)},
		Max: vec.Vec3{X: maxInt(b.Max.X, other.Max.X), Y: maxInt(b.Max.Y, other.Max.Y), Z: maxInt(b.Max.Z, other.Max.Z)},
	}
}

// Contains проверяет, лежит ли точка внутри границ
func (b Bounds) Contains(p vec.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Room — прямоугольная комната. Center лежит в центре пола.
// После генерации комната не мутирует, кроме добавления ссылок
// на спаунеры и сундуки.
type Room struct {
	Center     vec.Vec3    `json:"center"`
	Width      int         `json:"width"`  // размер по X
	Length     int         `json:"length"` // размер по Z
	Height     int         `json:"height"` // размер по Y
	Special    SpecialType `json:"special,omitempty"`
	SpawnerIDs []string    `json:"spawnerIds,omitempty"`
	ChestIDs   []string    `json:"chestIds,omitempty"`
}

// Bounds возвращает границы комнаты, производные от центра и размеров
func (r *Room) Bounds() Bounds {
	min := vec.Vec3{
		X: r.Center.X - r.Width/2,
		Y: r.Center.Y,
		Z: r.Center.Z - r.Length/2,
	}
	return Bounds{
		Min: min,
		Max: vec.Vec3{X: min.X + r.Width - 1, Y: min.Y + r.Height - 1, Z: min.Z + r.Length - 1},
	}
}

// IsSpecial возвращает true для особых комнат
func (r *Room) IsSpecial() bool {
	return r.Special != SpecialNone
}

// Segment — прямой отрезок коридора
type Segment struct {
	Start  vec.Vec3 `json:"start"`
	End    vec.Vec3 `json:"end"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
}

// Bounds возвращает границы отрезка с учётом ширины и высоты
func (s Segment) Bounds() Bounds {
	half := s.Width / 2
	min := vec.Vec3{
		X: minInt(s.Start.X, s.End.X) - half,
		Y: minInt(s.Start.Y, s.End.Y),
		Z: minInt(s.Start.Z, s.End.Z) - half,
	}
	max := vec.Vec3{
		X: maxInt(s.Start.X, s.End.X) + half,
		Y: maxInt(s.Start.Y, s.End.Y) + s.Height - 1,
		Z: maxInt(s.Start.Z, s.End.Z) + half,
	}
	return Bounds{Min: min, Max: max}
}

// Corridor соединяет две комнаты (индексы в Structure.Rooms).
// Инвариант: сегменты образуют непрерывный путь, первая точка лежит
// на якоре комнаты RoomA, последняя — на якоре RoomB.
type Corridor struct {
	Segments []Segment `json:"segments"`
	RoomA    int       `json:"roomA"`
	RoomB    int       `json:"roomB"`
}

// Chest — размещённый сундук. Неизменяем после расстановки.
type Chest struct {
	ID        string   `json:"id"`
	Position  vec.Vec3 `json:"position"`
	LootTable string   `json:"lootTable"`
	IsReward  bool     `json:"isReward"`
	IsSpecial bool     `json:"isSpecial"`
	SpawnerID string   `json:"spawnerId,omitempty"` // невладеющая обратная ссылка
}

// Structure агрегирует все элементы камеры/руин.
// Bounds пересчитываются инкрементально при добавлении элементов
// и всегда охватывают каждый размещённый элемент.
type Structure struct {
	ID        string
	Kind      Kind
	Origin    vec.Vec3
	Bounds    Bounds
	Rooms     []*Room
	Corridors []*Corridor
	Spawners  []*spawner.TrialSpawner
	Chests    []*Chest

	hasBounds bool
}

// NewStructure создаёт пустую структуру с указанным началом координат
func NewStructure(id string, kind Kind, origin vec.Vec3) *Structure {
	return &Structure{
		ID:     id,
		Kind:   kind,
		Origin: origin,
	}
}

// Entrance возвращает входную комнату (первую размещённую) или nil
func (st *Structure) Entrance() *Room {
	if len(st.Rooms) == 0 {
		return nil
	}
	return st.Rooms[0]
}

// AddRoom добавляет комнату и расширяет границы структуры
func (st *Structure) AddRoom(r *Room) {
	st.Rooms = append(st.Rooms, r)
	st.extendBounds(r.Bounds())
}

// AddCorridor добавляет коридор и расширяет границы структуры
func (st *Structure) AddCorridor(c *Corridor) {
	st.Corridors = append(st.Corridors, c)
	for _, seg := range c.Segments {
		st.extendBounds(seg.Bounds())
	}
}

// AddSpawner добавляет спаунер и ссылку на него в комнату
func (st *Structure) AddSpawner(ts *spawner.TrialSpawner, room *Room) {
	st.Spawners = append(st.Spawners, ts)
	room.SpawnerIDs = append(room.SpawnerIDs, ts.ID)
	st.extendBounds(Bounds{Min: ts.Position, Max: ts.Position})
}

// AddChest добавляет сундук и ссылку на него в комнату
func (st *Structure) AddChest(c *Chest, room *Room) {
	st.Chests = append(st.Chests, c)
	room.ChestIDs = append(room.ChestIDs, c.ID)
	st.extendBounds(Bounds{Min: c.Position, Max: c.Position})
}

func (st *Structure) extendBounds(b Bounds) {
	if !st.hasBounds {
		st.Bounds = b
		st.hasBounds = true
		return
	}
	st.Bounds = st.Bounds.Extend(b)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
