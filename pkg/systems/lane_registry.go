package systems

import "fmt"

// LaneRegistry 车道登记表
//
// 车道数量和间距在关卡开始时固定。
// WorldX(i) = (i - centerLane) * laneOffset，centerLane = (laneCount-1)/2，
// 偶数车道时中心位于两条车道之间，布局保持对称。
type LaneRegistry struct {
	count      int
	offset     float64
	centerLane float64
}

// NewLaneRegistry 创建车道登记表
// 参数:
//   - laneCount: 车道数量（>= 1）
//   - laneOffset: 相邻车道中心的水平间距（> 0）
//
// 返回:
//   - 参数非法时返回包装了 ErrInvalidLanes 的错误
func NewLaneRegistry(laneCount int, laneOffset float64) (*LaneRegistry, error) {
	if laneCount < 1 {
		return nil, fmt.Errorf("%w: laneCount must be at least 1, got %d", ErrInvalidLanes, laneCount)
	}
	if laneOffset <= 0 {
		return nil, fmt.Errorf("%w: laneOffset must be positive, got %.2f", ErrInvalidLanes, laneOffset)
	}
	return &LaneRegistry{
		count:      laneCount,
		offset:     laneOffset,
		centerLane: float64(laneCount-1) / 2,
	}, nil
}

// Count 返回车道数量
func (r *LaneRegistry) Count() int { return r.count }

// Offset 返回车道间距
func (r *LaneRegistry) Offset() float64 { return r.offset }

// WorldX 返回车道中心的世界 X 坐标（相对中间车道）
func (r *LaneRegistry) WorldX(lane int) float64 {
	return (float64(lane) - r.centerLane) * r.offset
}

// Contains 检查车道索引是否有效
func (r *LaneRegistry) Contains(lane int) bool {
	return lane >= 0 && lane < r.count
}

// Clamp 将车道索引限制在 [0, laneCount-1]
func (r *LaneRegistry) Clamp(lane int) int {
	if lane < 0 {
		return 0
	}
	if lane >= r.count {
		return r.count - 1
	}
	return lane
}

// CenterLane 返回离中心最近的车道（偶数车道时取左侧）
func (r *LaneRegistry) CenterLane() int {
	return (r.count - 1) / 2
}
