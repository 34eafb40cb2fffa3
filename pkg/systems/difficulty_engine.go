package systems

import (
	"math"

	"github.com/decker502/cosmorun/pkg/config"
)

// DifficultyEngine 难度引擎
// 负责计算世界滚动速度，为生成调度器和滚动系统提供速度数据
//
// 速度公式: speed = min(base + rampPerSecond * elapsed, max)，加速道具生效时再乘以 boostMultiplier
type DifficultyEngine struct {
	cfg     config.SpeedConfig
	effects EffectSource
	elapsed float64
}

// NewDifficultyEngine 创建新的难度引擎实例
// 参数:
//
//	cfg - 速度配置
//	effects - 道具状态（可为 nil，表示没有加速）
func NewDifficultyEngine(cfg config.SpeedConfig, effects EffectSource) *DifficultyEngine {
	return &DifficultyEngine{
		cfg:     cfg,
		effects: effects,
	}
}

// Update 推进难度时间
// 时间冻结期间速度不增长
func (d *DifficultyEngine) Update(deltaTime float64) {
	if deltaTime <= 0 {
		return
	}
	if d.effects != nil && d.effects.IsTimeFreezeActive() {
		return
	}
	d.elapsed += deltaTime
}

// BaseSpeed 计算不含道具加成的速度
func (d *DifficultyEngine) BaseSpeed() float64 {
	return math.Min(d.cfg.Base+d.cfg.RampPerSecond*d.elapsed, d.cfg.Max)
}

// CurrentWorldSpeed 实现 SpeedSource
func (d *DifficultyEngine) CurrentWorldSpeed() (float64, bool) {
	speed := d.BaseSpeed()
	if d.effects != nil && d.effects.IsSpeedBoostActive() {
		speed *= d.cfg.BoostMultiplier
	}
	return speed, true
}

// Elapsed 返回参与难度计算的累计时间
func (d *DifficultyEngine) Elapsed() float64 {
	return d.elapsed
}

// Reset 重置难度时间
func (d *DifficultyEngine) Reset() {
	d.elapsed = 0
}
