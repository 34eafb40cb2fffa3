package utils

import "math"

// 缓动函数：输入进度 t ∈ [0, 1]，返回缓动后的进度

// EaseOutCubic 三次方缓出，开始快结束慢
// f(t) = 1 - (1-t)³
func EaseOutCubic(t float64) float64 {
	return 1 - math.Pow(1-t, 3)
}

// EaseOutBack 缓出并略微越过终点后回弹，用于星星拾取的弹出效果
func EaseOutBack(t float64) float64 {
	const c1 = 1.70158
	const c3 = c1 + 1
	return 1 + c3*math.Pow(t-1, 3) + c1*math.Pow(t-1, 2)
}

// Lerp 线性插值，t=0 返回 a，t=1 返回 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Tween 从当前值缓动到目标值
//
// 玩家换道时屏幕 X 坐标由 Tween 平滑过渡；中途改变目标时从当前位置重新开始。
type Tween struct {
	from, to float64
	duration float64
	elapsed  float64
	ease     func(float64) float64
}

// NewTween 创建停在 value 的 Tween
func NewTween(value, duration float64, ease func(float64) float64) *Tween {
	if ease == nil {
		ease = EaseOutCubic
	}
	return &Tween{from: value, to: value, duration: duration, elapsed: duration, ease: ease}
}

// Retarget 从当前值开始向新目标过渡，目标不变时不重置进度
func (tw *Tween) Retarget(to float64) {
	if to == tw.to {
		return
	}
	tw.from = tw.Value()
	tw.to = to
	tw.elapsed = 0
}

// Update 推进 dt 秒
func (tw *Tween) Update(dt float64) {
	tw.elapsed = math.Min(tw.elapsed+dt, tw.duration)
}

// Value 返回当前值
func (tw *Tween) Value() float64 {
	if tw.duration <= 0 || tw.elapsed >= tw.duration {
		return tw.to
	}
	return Lerp(tw.from, tw.to, tw.ease(tw.elapsed/tw.duration))
}

// Done 是否已到达目标
func (tw *Tween) Done() bool {
	return tw.duration <= 0 || tw.elapsed >= tw.duration
}
