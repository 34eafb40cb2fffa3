package components

// PlayerComponent 玩家状态
type PlayerComponent struct {
	Lane      int     // 当前车道
	Coins     int     // 已拾取金币
	Fragments int     // 已拾取碎片
	Stars     int     // 已拾取星星
	Hits      int     // 被障碍物撞击次数
	HitTimer  float64 // 撞击后的无敌剩余时间（秒）
}
