package tasks

// Clock 提供游戏时间（秒）
//
// 生成器只通过 Clock 读取时间，测试中可以用 GameClock 精确推进虚拟时间，
// 无需真实等待。
type Clock interface {
	Now() float64
}

// GameClock 由帧更新驱动的虚拟时钟
//
// 每帧调用 Advance(deltaTime) 累加时间；暂停期间不调用 Advance 即可冻结时间。
type GameClock struct {
	now float64
}

// NewGameClock 创建从 start 秒开始的虚拟时钟
func NewGameClock(start float64) *GameClock {
	return &GameClock{now: start}
}

// Now 返回当前游戏时间（秒）
func (c *GameClock) Now() float64 {
	return c.now
}

// Advance 推进时间，负值被忽略
func (c *GameClock) Advance(deltaTime float64) {
	if deltaTime <= 0 {
		return
	}
	c.now += deltaTime
}

// Set 直接设置当前时间（仅测试和会话重置使用）
func (c *GameClock) Set(now float64) {
	c.now = now
}
