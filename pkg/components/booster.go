package components

// BoosterComponent 生效中的道具计时器
//
// 每个生效中的道具对应一个实体，Remaining 归零时实体被销毁。
type BoosterComponent struct {
	Type      string  // 道具类型："timeFreeze", "speedBoost"
	Duration  float64 // 总持续时间（秒）
	Remaining float64 // 剩余时间（秒）
}
