package structure

import (
	"github.com/annel0/trial-chambers/internal/config"
	"github.com/annel0/trial-chambers/internal/logging"
	"github.com/annel0/trial-chambers/internal/metrics"
	"github.com/annel0/trial-chambers/internal/vec"
)

// Высота проёма коридора в блоках
const corridorHeight = 3

// Connector строит Г-образные коридоры между комнатами
// и чинит связность графа комнат.
type Connector struct {
	cfg *config.GenerationConfig
	log *logging.Logger
}

// NewConnector создаёт коннектор коридоров
func NewConnector(cfg *config.GenerationConfig) *Connector {
	return &Connector{
		cfg: cfg,
		log: logging.GetGenLogger(),
	}
}

// Connect строит коридор между комнатами a и b (индексы в rooms).
// Путь из трёх прямых отрезков: горизонтальный по X до X центра b,
// вертикальная интерполяция высоты, горизонтальный по Z до центра b.
// Вырожденные отрезки (нулевой длины) опускаются; первая точка пути
// всегда лежит на якоре комнаты a, последняя — на якоре b.
func (c *Connector) Connect(rooms []*Room, a, b int) *Corridor {
	from := rooms[a].Center
	to := rooms[b].Center

	waypoints := []vec.Vec3{
		from,
		{X: to.X, Y: from.Y, Z: from.Z},
		{X: to.X, Y: to.Y, Z: from.Z},
		to,
	}

	corridor := &Corridor{RoomA: a, RoomB: b}
	for i := 0; i < len(waypoints)-1; i++ {
		if waypoints[i].Equals(waypoints[i+1]) {
			continue
		}
		corridor.Segments = append(corridor.Segments, Segment{
			Start:  waypoints[i],
			End:    waypoints[i+1],
			Width:  c.cfg.CorridorWidth,
			Height: corridorHeight,
		})
	}

	return corridor
}

// Repair гарантирует связность графа комнат: каждая комната, недостижимая
// из входа по существующим коридорам, соединяется с ближайшей уже
// достижимой комнатой. Ветвление в планировщике может оставлять разрывы,
// когда отбраковка пересечений съедает попытки.
//
// Возвращает добавленные коридоры (уже дописанные в corridors).
func (c *Connector) Repair(rooms []*Room, corridors []*Corridor) []*Corridor {
	if len(rooms) < 2 {
		return corridors
	}

	reached := reachableFrom(0, len(rooms), corridors)

	var added int
	for idx := 1; idx < len(rooms); idx++ {
		if reached[idx] {
			continue
		}

		// Ближайшая достижимая комната по дистанции центров
		nearest := -1
		nearestDist := 0.0
		for j := 0; j < len(rooms); j++ {
			if !reached[j] {
				continue
			}
			d := rooms[idx].Center.DistanceTo(rooms[j].Center)
			if nearest == -1 || d < nearestDist {
				nearest = j
				nearestDist = d
			}
		}

		corridors = append(corridors, c.Connect(rooms, nearest, idx))
		added++
		// Комната могла притянуть за собой целый островок
		reached = reachableFrom(0, len(rooms), corridors)
	}

	if added > 0 {
		c.log.Debug("Починка связности: добавлено коридоров — %d", added)
		metrics.CorridorsRepaired.Add(float64(added))
	}

	return corridors
}

// reachableFrom возвращает множество комнат, достижимых из start
// по рёбрам коридоров (поиск в ширину)
func reachableFrom(start, roomCount int, corridors []*Corridor) []bool {
	adjacency := make([][]int, roomCount)
	for _, corridor := range corridors {
		if corridor.RoomA >= roomCount || corridor.RoomB >= roomCount {
			continue
		}
		adjacency[corridor.RoomA] = append(adjacency[corridor.RoomA], corridor.RoomB)
		adjacency[corridor.RoomB] = append(adjacency[corridor.RoomB], corridor.RoomA)
	}

	reached := make([]bool, roomCount)
	reached[start] = true
	queue := []int{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adjacency[cur] {
			if !reached[next] {
				reached[next] = true
				queue = append(queue, next)
			}
		}
	}
	return reached
}

// Connected проверяет, достижима ли каждая комната структуры из входа
func Connected(st *Structure) bool {
	if len(st.Rooms) < 2 {
		return true
	}
	reached := reachableFrom(0, len(st.Rooms), st.Corridors)
	for _, ok := range reached {
		if !ok {
			return false
		}
	}
	return true
}
