package structure

import (
	"math/rand"

	"github.com/annel0/trial-chambers/internal/config"
	"github.com/annel0/trial-chambers/internal/logging"
	"github.com/annel0/trial-chambers/internal/vec"
)

// Кардинальные направления ветвления в горизонтальной плоскости
var cardinals = []vec.Vec3{
	{X: 1, Y: 0, Z: 0},  // восток
	{X: -1, Y: 0, Z: 0}, // запад
	{X: 0, Y: 0, Z: 1},  // юг
	{X: 0, Y: 0, Z: -1}, // север
}

// LayoutPlanner размещает непересекающиеся комнаты ветвлением
// от уже существующих в случайных кардинальных направлениях.
type LayoutPlanner struct {
	cfg *config.GenerationConfig
	rng *rand.Rand
	log *logging.Logger
}

// NewLayoutPlanner создаёт планировщик с указанной конфигурацией и ГСЧ
func NewLayoutPlanner(cfg *config.GenerationConfig, rng *rand.Rand) *LayoutPlanner {
	return &LayoutPlanner{
		cfg: cfg,
		rng: rng,
		log: logging.GetGenLogger(),
	}
}

// LayoutRooms размещает до TargetRooms комнат, начиная с origin.
// Возвращает комнаты и рёбра ветвления (пары индексов комнат),
// по которым коннектор построит коридоры.
//
// Исчерпание MaxAttempts — мягкий отказ: возвращается то, что успело
// разместиться (возможно, меньше TargetRooms).
func (lp *LayoutPlanner) LayoutRooms(origin vec.Vec3) ([]*Room, [][2]int) {
	entrance := lp.randomRoom(vec.Vec3{
		X: origin.X,
		Y: clampInt(origin.Y, lp.cfg.YMin, lp.cfg.YMax),
		Z: origin.Z,
	})

	rooms := []*Room{entrance}
	var edges [][2]int

	attempts := 0
	for len(rooms) < lp.cfg.TargetRooms && attempts < lp.cfg.MaxAttempts {
		attempts++

		// Равновероятно выбираем исходную комнату и направление ветвления
		sourceIdx := lp.rng.Intn(len(rooms))
		source := rooms[sourceIdx]
		dir := cardinals[lp.rng.Intn(len(cardinals))]
		dist := lp.cfg.BranchDistMin + lp.rng.Intn(lp.cfg.BranchDistMax-lp.cfg.BranchDistMin+1)

		candidate := lp.randomRoom(vec.Vec3{})
		candidate.Center = lp.branchCenter(source, candidate, dir, dist)

		if lp.overlapsAny(candidate, rooms) {
			continue
		}

		rooms = append(rooms, candidate)
		edges = append(edges, [2]int{sourceIdx, len(rooms) - 1})
	}

	if len(rooms) < lp.cfg.TargetRooms {
		lp.log.Warn("Планировка: размещено %d/%d комнат, попытки исчерпаны", len(rooms), lp.cfg.TargetRooms)
	}

	lp.markTreasureRoom(rooms)
	return rooms, edges
}

// randomRoom создаёт комнату со случайными размерами из настроенных диапазонов
func (lp *LayoutPlanner) randomRoom(center vec.Vec3) *Room {
	return &Room{
		Center: center,
		Width:  lp.cfg.RoomSizeMin + lp.rng.Intn(lp.cfg.RoomSizeMax-lp.cfg.RoomSizeMin+1),
		Length: lp.cfg.RoomSizeMin + lp.rng.Intn(lp.cfg.RoomSizeMax-lp.cfg.RoomSizeMin+1),
		Height: lp.cfg.RoomHeightMin + lp.rng.Intn(lp.cfg.RoomHeightMax-lp.cfg.RoomHeightMin+1),
	}
}

// branchCenter вычисляет центр кандидата: полуразмер источника плюс
// дистанция плюс полуразмер кандидата вдоль выбранной оси,
// с небольшим вертикальным разбросом в пределах [YMin, YMax].
func (lp *LayoutPlanner) branchCenter(source, candidate *Room, dir vec.Vec3, dist int) vec.Vec3 {
	sourceHalf := source.Width / 2
	candHalf := candidate.Width / 2
	if dir.Z != 0 {
		sourceHalf = source.Length / 2
		candHalf = candidate.Length / 2
	}

	offset := sourceHalf + dist + candHalf
	jitter := 0
	if lp.cfg.YJitter > 0 {
		jitter = lp.rng.Intn(2*lp.cfg.YJitter+1) - lp.cfg.YJitter
	}

	return vec.Vec3{
		X: source.Center.X + dir.X*offset,
		Y: clampInt(source.Center.Y+jitter, lp.cfg.YMin, lp.cfg.YMax),
		Z: source.Center.Z + dir.Z*offset,
	}
}

// overlapsAny проверяет пересечение расширенных границ кандидата
// с расширенными границами всех существующих комнат
func (lp *LayoutPlanner) overlapsAny(candidate *Room, rooms []*Room) bool {
	pad := lp.cfg.Padding
	if pad < 1 {
		pad = 1
	}

	candBounds := candidate.Bounds().Expand(pad)
	for _, room := range rooms {
		if candBounds.Intersects(room.Bounds().Expand(pad)) {
			return true
		}
	}
	return false
}

// markTreasureRoom помечает сокровищницей самую дальнюю от входа комнату.
// Требуется минимум 3 комнаты; пометка вероятностная.
func (lp *LayoutPlanner) markTreasureRoom(rooms []*Room) {
	if len(rooms) < 3 {
		return
	}
	if lp.rng.Float64() >= lp.cfg.TreasureRoomChance {
		return
	}

	entrance := rooms[0]
	farthestIdx := 1
	farthestDist := entrance.Center.DistanceTo(rooms[1].Center)
	for i := 2; i < len(rooms); i++ {
		if d := entrance.Center.DistanceTo(rooms[i].Center); d > farthestDist {
			farthestDist = d
			farthestIdx = i
		}
	}

	rooms[farthestIdx].Special = SpecialTreasure
	lp.log.Debug("Комната %d помечена сокровищницей (дистанция %.1f)", farthestIdx, farthestDist)
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
