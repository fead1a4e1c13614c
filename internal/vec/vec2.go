package vec

import "math"

// Vec2 представляет двухмерный вектор с целочисленными координатами.
// Используется для горизонтальных проекций (X — восток, Y — юг).
type Vec2 struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add складывает два вектора
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{
		X: v.X + other.X,
		Y: v.Y + other.Y,
	}
}

// Equals проверяет равенство векторов
func (v Vec2) Equals(other Vec2) bool {
	return v.X == other.X && v.Y == other.Y
}

// DistanceTo возвращает евклидово расстояние до другого вектора
func (v Vec2) DistanceTo(other Vec2) float64 {
	dx := float64(v.X - other.X)
	dy := float64(v.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}
