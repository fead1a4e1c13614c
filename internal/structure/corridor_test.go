package structure

import (
	"math/rand"
	"testing"

	"github.com/annel0/trial-chambers/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectAnchorsAtRoomCenters(t *testing.T) {
	cfg := testGenConfig()
	rooms := []*Room{
		{Center: vec.Vec3{X: 0, Y: -20, Z: 0}, Width: 7, Length: 7, Height: 4},
		{Center: vec.Vec3{X: 15, Y: -18, Z: 12}, Width: 7, Length: 7, Height: 4},
	}

	corridor := NewConnector(cfg).Connect(rooms, 0, 1)
	require.NotEmpty(t, corridor.Segments)

	first := corridor.Segments[0]
	last := corridor.Segments[len(corridor.Segments)-1]
	assert.Equal(t, rooms[0].Center, first.Start, "Путь начинается в якоре первой комнаты")
	assert.Equal(t, rooms[1].Center, last.End, "Путь заканчивается в якоре второй комнаты")

	// Отрезки образуют непрерывную цепочку
	for i := 0; i < len(corridor.Segments)-1; i++ {
		assert.Equal(t, corridor.Segments[i].End, corridor.Segments[i+1].Start,
			"Разрыв между отрезками %d и %d", i, i+1)
	}
}

func TestConnectAxisAlignedSegments(t *testing.T) {
	cfg := testGenConfig()
	rooms := []*Room{
		{Center: vec.Vec3{X: 0, Y: -20, Z: 0}, Width: 7, Length: 7, Height: 4},
		{Center: vec.Vec3{X: 20, Y: -15, Z: -9}, Width: 7, Length: 7, Height: 4},
	}

	corridor := NewConnector(cfg).Connect(rooms, 0, 1)
	require.Len(t, corridor.Segments, 3, "Полная Г-образная трасса: X, Y, Z")

	for i, seg := range corridor.Segments {
		diffAxes := 0
		if seg.Start.X != seg.End.X {
			diffAxes++
		}
		if seg.Start.Y != seg.End.Y {
			diffAxes++
		}
		if seg.Start.Z != seg.End.Z {
			diffAxes++
		}
		assert.Equal(t, 1, diffAxes, "Отрезок %d должен идти строго вдоль одной оси", i)
	}
}

func TestConnectSkipsDegenerateSegments(t *testing.T) {
	cfg := testGenConfig()
	// Комнаты на одной высоте и одном Z: остаётся только X-отрезок
	rooms := []*Room{
		{Center: vec.Vec3{X: 0, Y: -20, Z: 0}, Width: 7, Length: 7, Height: 4},
		{Center: vec.Vec3{X: 14, Y: -20, Z: 0}, Width: 7, Length: 7, Height: 4},
	}

	corridor := NewConnector(cfg).Connect(rooms, 0, 1)
	require.Len(t, corridor.Segments, 1, "Вырожденные отрезки опускаются")
	assert.Equal(t, rooms[0].Center, corridor.Segments[0].Start)
	assert.Equal(t, rooms[1].Center, corridor.Segments[0].End)
}

func TestRepairConnectsIsolatedRooms(t *testing.T) {
	cfg := testGenConfig()
	connector := NewConnector(cfg)

	rooms := []*Room{
		{Center: vec.Vec3{X: 0, Y: -20, Z: 0}, Width: 7, Length: 7, Height: 4},
		{Center: vec.Vec3{X: 14, Y: -20, Z: 0}, Width: 7, Length: 7, Height: 4},
		{Center: vec.Vec3{X: 0, Y: -20, Z: 30}, Width: 7, Length: 7, Height: 4},
		{Center: vec.Vec3{X: 14, Y: -20, Z: 30}, Width: 7, Length: 7, Height: 4},
	}

	// Два островка: {0,1} и {2,3}, вход в комнате 0
	corridors := []*Corridor{
		connector.Connect(rooms, 0, 1),
		connector.Connect(rooms, 2, 3),
	}

	st := &Structure{Rooms: rooms, Corridors: corridors}
	require.False(t, Connected(st), "До починки граф разорван")

	corridors = connector.Repair(rooms, corridors)
	st.Corridors = corridors

	assert.True(t, Connected(st), "После починки все комнаты достижимы из входа")
	assert.Len(t, corridors, 3, "Для соединения двух островков достаточно одного коридора")
}

func TestRepairNoopWhenConnected(t *testing.T) {
	cfg := testGenConfig()
	connector := NewConnector(cfg)
	planner := NewLayoutPlanner(cfg, rand.New(rand.NewSource(11)))

	rooms, edges := planner.LayoutRooms(vec.Vec3{Y: -25})
	corridors := make([]*Corridor, 0, len(edges))
	for _, edge := range edges {
		corridors = append(corridors, connector.Connect(rooms, edge[0], edge[1]))
	}

	// Рёбра ветвления уже образуют дерево — чинить нечего
	before := len(corridors)
	corridors = connector.Repair(rooms, corridors)
	assert.Equal(t, before, len(corridors), "Связный граф не требует новых коридоров")
	assert.True(t, Connected(&Structure{Rooms: rooms, Corridors: corridors}))
}

func TestConnectedTrivialCases(t *testing.T) {
	assert.True(t, Connected(&Structure{}), "Пустая структура связна")
	assert.True(t, Connected(&Structure{Rooms: []*Room{{}}}), "Одна комната связна")
}
