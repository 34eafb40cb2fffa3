// Package app 提供客户端的核心包装器
//
// 负责加载嵌入的配置、创建场景管理器并实现 ebiten.Game。
// 调用 NewApp 前必须先调用 embedded.Init()。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/decker502/cosmorun/pkg/embedded"
	"github.com/decker502/cosmorun/pkg/game"
	"github.com/decker502/cosmorun/pkg/scenes"
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Level 直接进入的关卡（如 "1-2"），为空时显示关卡选择
	Level string
	// Autopilot 启用自动驾驶（覆盖已保存的设置）
	Autopilot bool
	// TimeScale 模拟时间倍率，0 表示使用已保存的设置
	TimeScale float64
}

// App 客户端核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager *game.SceneManager
	gameState    *game.GameState
	verbose      bool
}

// NewApp 创建并初始化客户端
func NewApp(cfg Config) (*App, error) {
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	dataFS, err := embedded.FS()
	if err != nil {
		return nil, err
	}
	data, err := scenes.LoadLevelData(dataFS)
	if err != nil {
		return nil, fmt.Errorf("配置加载失败: %w", err)
	}
	log.Printf("[App] Loaded %d levels, %d patterns", len(data.Levels), len(data.Patterns.Patterns))

	gameState := game.GetGameState()
	settings := gameState.GetSettingsManager()
	if cfg.Autopilot {
		settings.SetAutopilot(true)
	}
	if cfg.TimeScale > 0 {
		settings.SetTimeScale(cfg.TimeScale)
	}
	if settings.GetSettings().Fullscreen {
		ebiten.SetFullscreen(true)
	}

	sceneManager := game.NewSceneManager()
	sceneManager.SetSceneFactory(func(levelID string) game.Scene {
		scene, err := scenes.NewRunScene(sceneManager, gameState, data, levelID)
		if err != nil {
			log.Printf("[App] ERROR: cannot start level %s: %v", levelID, err)
			return nil
		}
		return scene
	})
	sceneManager.SetMenuFactory(func() game.Scene {
		return scenes.NewLevelSelectScene(sceneManager, gameState, data)
	})

	if cfg.Level == "" || !sceneManager.LoadLevel(cfg.Level) {
		sceneManager.ShowMenu()
	}

	return &App{
		sceneManager: sceneManager,
		gameState:    gameState,
		verbose:      cfg.Verbose,
	}, nil
}

// Update 更新逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	if ebiten.IsWindowBeingClosed() {
		a.saveOnExit()
		return ebiten.Termination
	}

	// F11 切换全屏并记住选择
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		fullscreen := !ebiten.IsFullscreen()
		ebiten.SetFullscreen(fullscreen)
		settings := a.gameState.GetSettingsManager()
		settings.SetFullscreen(fullscreen)
		if err := settings.Save(); err != nil {
			log.Printf("[App] Warning: failed to save settings: %v", err)
		}
	}

	a.sceneManager.Update(1.0 / float64(ebiten.TPS()))
	return nil
}

// saveOnExit 关闭窗口前保存当前场景
func (a *App) saveOnExit() {
	if s, ok := a.sceneManager.GetCurrentScene().(game.Saveable); ok {
		if !s.SaveOnExit() {
			log.Printf("[App] Warning: current scene failed to save on exit")
		}
	}
}

// Draw 绘制画面
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 ebiten.FinalScreenDrawer
// 全屏时两侧填充黑色，并使用线性滤波缩放
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return scenes.ScreenWidth, scenes.ScreenHeight
}

// GetSceneManager 返回场景管理器
func (a *App) GetSceneManager() *game.SceneManager {
	return a.sceneManager
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}
