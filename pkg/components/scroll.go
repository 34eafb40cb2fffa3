package components

// ScrollComponent 使实体随赛道向下滚动
//
// FollowWorldSpeed 为 true 时每帧读取当前世界速度；
// 否则使用生成时捕获的 StampedSpeed。
type ScrollComponent struct {
	StampedSpeed     float64 // 生成时的世界速度（像素/秒）
	FollowWorldSpeed bool    // 是否持续跟随世界速度
}
