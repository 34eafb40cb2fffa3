package components

// ObstacleComponent 标记实体为障碍物（行星）
type ObstacleComponent struct {
	Prototype string  // 原型名称，如 "planet_rock"
	SpawnTime float64 // 生成时间（游戏时间，秒）
	Hit       bool    // 是否已与玩家碰撞
}
