package components

// LaneComponent 记录实体所在的车道
type LaneComponent struct {
	Index int // 车道索引，从 0 开始
}
