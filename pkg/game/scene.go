package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene 一个场景（关卡选择、跑酷、结算）
// 同一时刻只有一个场景被更新和绘制
type Scene interface {
	// Update 推进场景逻辑，deltaTime 为本帧经过的秒数
	Update(deltaTime float64)

	// Draw 绘制场景
	Draw(screen *ebiten.Image)
}

// Saveable 可选接口：场景被切走或程序退出时保存状态
//
// 跑酷场景实现此接口，在窗口关闭或切换场景时结束本局并写入星星记录。
type Saveable interface {
	// SaveOnExit 返回 false 表示保存失败（不阻止退出）
	SaveOnExit() bool
}
