package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/cosmorun/pkg/app"
	"github.com/decker502/cosmorun/pkg/embedded"
	"github.com/decker502/cosmorun/pkg/scenes"
)

var (
	verbose   = flag.Bool("verbose", false, "显示详细日志")
	level     = flag.String("level", "", "直接进入指定关卡（如 1-2），为空时显示关卡选择")
	autopilot = flag.Bool("autopilot", false, "启用自动驾驶演示")
	timeScale = flag.Float64("timescale", 0, "模拟时间倍率，0 表示使用已保存的设置")
)

func main() {
	flag.Parse()

	embedded.Init(dataFS)

	a, err := app.NewApp(app.Config{
		Verbose:   *verbose,
		Level:     *level,
		Autopilot: *autopilot,
		TimeScale: *timeScale,
	})
	if err != nil {
		log.Fatalf("启动失败: %v", err)
	}

	ebiten.SetWindowSize(scenes.ScreenWidth, scenes.ScreenHeight)
	ebiten.SetWindowTitle("Cosmo Run")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)

	if err := ebiten.RunGame(a); err != nil && err != ebiten.Termination {
		log.Fatal(err)
	}
}
