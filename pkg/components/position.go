package components

// PositionComponent 实体在屏幕上的位置（像素，Y 轴向下）
type PositionComponent struct {
	X float64
	Y float64
}
