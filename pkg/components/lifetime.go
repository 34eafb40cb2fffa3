package components

// LifetimeComponent 管理实体的生命周期
// 用于自动清理离开屏幕或存在时间超过上限的实体（如障碍物、金币）
type LifetimeComponent struct {
	MaxLifetime     float64 // 最大生命周期(秒)，0 表示不限制
	CurrentLifetime float64 // 当前已存在时间(秒)
	DespawnBelowY   float64 // Y 超过此值时过期，0 表示不检查
	IsExpired       bool    // 是否已过期
}
