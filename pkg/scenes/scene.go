package scenes

import (
	"github.com/decker502/cosmorun/pkg/game"
)

// Scene 场景接口，等同于 game.Scene
type Scene = game.Scene

// 逻辑屏幕尺寸（竖屏），与 data/spawner.yaml 的坐标系一致
const (
	ScreenWidth  = 480
	ScreenHeight = 800
)
