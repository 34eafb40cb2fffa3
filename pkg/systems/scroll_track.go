package systems

// ScrollTrack 赛道里程计
//
// 所有实体随赛道以相同的世界速度向下滚动。记录累计滚动距离后，
// 屏幕坐标可以换算为不随时间变化的赛道坐标：trackY = screenY - distance。
// 车道占用状态用赛道坐标比较不同时刻放置的实体。
type ScrollTrack struct {
	distance float64
}

// Advance 按速度推进里程
func (t *ScrollTrack) Advance(speed, deltaTime float64) {
	if speed <= 0 || deltaTime <= 0 {
		return
	}
	t.distance += speed * deltaTime
}

// Distance 返回累计滚动距离
func (t *ScrollTrack) Distance() float64 { return t.distance }

// TrackY 屏幕坐标转赛道坐标
func (t *ScrollTrack) TrackY(screenY float64) float64 { return screenY - t.distance }

// ScreenY 赛道坐标转当前屏幕坐标
func (t *ScrollTrack) ScreenY(trackY float64) float64 { return trackY + t.distance }

// Reset 归零
func (t *ScrollTrack) Reset() { t.distance = 0 }
