package scenes

import (
	"fmt"
	"image/color"
	"log"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/decker502/cosmorun/pkg/components"
	"github.com/decker502/cosmorun/pkg/config"
	"github.com/decker502/cosmorun/pkg/ecs"
	"github.com/decker502/cosmorun/pkg/game"
	"github.com/decker502/cosmorun/pkg/modules"
	"github.com/decker502/cosmorun/pkg/utils"
)

// MaxHits 一局允许的撞击次数，达到后本局结束
const MaxHits = 3

// autopilotLookahead 演示模式的前方检查距离（像素）
const autopilotLookahead = 260

// 动画时长（秒）
const (
	laneSlideTime = 0.12
	starPopTime   = 0.6
)

var (
	spaceColor      = color.RGBA{8, 8, 24, 255}
	laneStripeColor = color.RGBA{20, 20, 44, 255}
	playerColor     = color.RGBA{90, 220, 255, 255}
	playerHitColor  = color.RGBA{255, 120, 120, 255}
	coinColor       = color.RGBA{250, 210, 60, 255}
	starColor       = color.RGBA{255, 255, 255, 255}
	overlayColor    = color.RGBA{0, 0, 0, 160}
	blockedColor    = color.RGBA{200, 90, 200, 90}
)

// planetColors 障碍物原型颜色，未知原型使用 planetDefaultColor
var planetColors = map[string]color.RGBA{
	"planet_rock": {170, 120, 90, 255},
	"planet_gas":  {220, 140, 70, 255},
	"planet_ice":  {150, 200, 240, 255},
}

var planetDefaultColor = color.RGBA{220, 70, 60, 255}

// fragmentColors 碎片变体颜色
var fragmentColors = map[string]color.RGBA{
	"blue":  {70, 140, 255, 255},
	"red":   {255, 90, 120, 255},
	"gold":  {255, 180, 40, 255},
	"green": {80, 220, 120, 255},
}

// runInput 一帧的按键输入
type runInput struct {
	left, right bool
	pause       bool
	overlay     bool
	autopilot   bool
	back        bool
	restart     bool
	confirm     bool
}

// readRunInput 读取本帧刚按下的按键
func readRunInput() runInput {
	pressed := func(keys ...ebiten.Key) bool {
		for _, k := range keys {
			if inpututil.IsKeyJustPressed(k) {
				return true
			}
		}
		return false
	}
	return runInput{
		left:      pressed(ebiten.KeyArrowLeft, ebiten.KeyA),
		right:     pressed(ebiten.KeyArrowRight, ebiten.KeyD),
		pause:     pressed(ebiten.KeyP, ebiten.KeySpace),
		overlay:   pressed(ebiten.KeyTab),
		autopilot: pressed(ebiten.KeyF1),
		back:      pressed(ebiten.KeyEscape),
		restart:   pressed(ebiten.KeyR),
		confirm:   pressed(ebiten.KeyEnter),
	}
}

// RunScene 跑酷场景
//
// 每帧推进一局 modules.RunSession，并把 ECS 世界绘制为车道、行星和收集物。
// 撞击次数达到 MaxHits，或任务完成且星星链结束时本局结束，显示结算面板。
type RunScene struct {
	sceneManager *game.SceneManager
	gameState    *game.GameState
	level        *config.LevelConfig

	session *modules.RunSession
	pilot   *modules.Autopilot

	paused   bool
	result   *game.RunResult
	improved bool

	playerX   *utils.Tween
	lastStars [3]bool
	starPop   float64 // 星星拾取提示的剩余时间
}

// NewRunScene 创建并开始一局
func NewRunScene(sm *game.SceneManager, gs *game.GameState, data *LevelData, levelID string) (*RunScene, error) {
	level, ok := data.Level(levelID)
	if !ok {
		return nil, fmt.Errorf("unknown level %q", levelID)
	}

	session, err := modules.NewRunSession(modules.RunSessionConfig{
		Spawner:  data.Spawner,
		Patterns: data.Patterns,
		Level:    level,
		CenterX:  ScreenWidth / 2,
		Rand:     rand.New(rand.NewSource(time.Now().UnixNano())),
		Records:  gs.GetStarRecords(),
	})
	if err != nil {
		return nil, err
	}

	gs.SetCurrentLevel(levelID)
	log.Printf("[RunScene] Level %s (%s) started", level.ID, level.Name)

	s := &RunScene{
		sceneManager: sm,
		gameState:    gs,
		level:        level,
		session:      session,
		pilot:        modules.NewAutopilot(session, autopilotLookahead),
	}
	s.playerX = utils.NewTween(s.playerTargetX(), laneSlideTime, utils.EaseOutCubic)
	return s, nil
}

// playerTargetX 玩家当前车道的屏幕 X 坐标
func (s *RunScene) playerTargetX() float64 {
	lane := 0
	if p, ok := s.session.Player().Player(); ok {
		lane = p.Lane
	}
	return s.session.CenterX() + s.session.Spawner().LanePositionX(lane)
}

// Session 返回本局会话
func (s *RunScene) Session() *modules.RunSession { return s.session }

// Result 返回结算成绩，本局未结束时为 nil
func (s *RunScene) Result() *game.RunResult { return s.result }

// Paused 是否暂停
func (s *RunScene) Paused() bool { return s.paused }

// Update 实现 game.Scene
func (s *RunScene) Update(deltaTime float64) {
	s.apply(readRunInput(), deltaTime)
}

// apply 处理输入并推进一帧
func (s *RunScene) apply(in runInput, deltaTime float64) {
	settings := s.gameState.GetSettingsManager()

	if s.result != nil {
		switch {
		case in.restart:
			s.sceneManager.LoadLevel(s.level.ID)
		case in.confirm || in.back:
			s.sceneManager.ShowMenu()
		}
		return
	}

	if in.back {
		s.sceneManager.ShowMenu()
		return
	}
	if in.pause {
		s.paused = !s.paused
	}
	if in.overlay {
		settings.SetShowLaneOverlay(!settings.GetSettings().ShowLaneOverlay)
		s.saveSettings()
	}
	if in.autopilot {
		settings.SetAutopilot(!settings.GetSettings().Autopilot)
		s.saveSettings()
	}
	if s.paused {
		return
	}

	player := s.session.Player()
	if in.left {
		player.MoveLeft()
	}
	if in.right {
		player.MoveRight()
	}
	if settings.GetSettings().Autopilot {
		s.pilot.Steer()
	}

	s.session.Update(deltaTime * settings.GetSettings().TimeScale)
	s.animate(deltaTime)

	if s.runOver() {
		s.finish()
	}
}

// animate 推进换道过渡和星星提示（使用真实帧长，不受时间倍率影响）
func (s *RunScene) animate(deltaTime float64) {
	s.playerX.Retarget(s.playerTargetX())
	s.playerX.Update(deltaTime)

	if stars := s.session.StarsCollected(); stars != s.lastStars {
		s.lastStars = stars
		s.starPop = starPopTime
	} else if s.starPop > 0 {
		s.starPop -= deltaTime
	}
}

// runOver 本局是否应结束
func (s *RunScene) runOver() bool {
	if p, ok := s.session.Player().Player(); ok && p.Hits >= MaxHits {
		return true
	}
	return s.session.Mission().Complete() && s.session.Spawner().StarState().Terminal()
}

// finish 结束本局并记录成绩（可重复调用）
func (s *RunScene) finish() {
	if s.result != nil {
		return
	}
	result, improved := s.session.Finish()
	s.result = &result
	s.improved = improved
	s.gameState.RecordResult(result)
}

func (s *RunScene) saveSettings() {
	if err := s.gameState.GetSettingsManager().Save(); err != nil {
		log.Printf("[RunScene] Warning: failed to save settings: %v", err)
	}
}

// SaveOnExit 实现 game.Saveable：离开场景或关闭窗口时结束本局
func (s *RunScene) SaveOnExit() bool {
	s.finish()
	return true
}

// Draw 实现 game.Scene
func (s *RunScene) Draw(screen *ebiten.Image) {
	screen.Fill(spaceColor)
	s.drawLanes(screen)
	if s.gameState.GetSettingsManager().GetSettings().ShowLaneOverlay {
		s.drawLaneOverlay(screen)
	}
	s.drawEntities(screen)
	s.drawPlayer(screen)
	s.drawHUD(screen)

	if s.result != nil {
		s.drawResult(screen)
	} else if s.paused {
		drawCenteredText(screen, "PAUSED", ScreenWidth/2, ScreenHeight/2, hudTextColor)
	}
}

func (s *RunScene) drawLanes(screen *ebiten.Image) {
	spawner := s.session.Spawner()
	centerX := s.session.CenterX()
	w := s.session.Config().Lanes.Offset
	if spawner.LaneCount() > 1 {
		w = spawner.LanePositionX(1) - spawner.LanePositionX(0)
	}
	for lane := 0; lane < spawner.LaneCount(); lane += 2 {
		x := centerX + spawner.LanePositionX(lane) - w/2
		vector.DrawFilledRect(screen, float32(x), 0, float32(w), ScreenHeight, laneStripeColor, false)
	}
}

// drawLaneOverlay 车道调试层：阻塞中的车道着色并显示最近一次行星生成位置
func (s *RunScene) drawLaneOverlay(screen *ebiten.Image) {
	spawner := s.session.Spawner()
	centerX := s.session.CenterX()
	now := spawner.Now()

	for _, snap := range spawner.Lanes() {
		x := centerX + spawner.LanePositionX(snap.Lane)
		if snap.BlockedUntil != nil && *snap.BlockedUntil > now {
			vector.DrawFilledRect(screen, float32(x-20), 0, 40, ScreenHeight, blockedColor, false)
		}
		label := fmt.Sprintf("L%d", snap.Lane)
		if snap.LastPlanetSpawnTime != nil {
			label += fmt.Sprintf("\n%.1fs", now-*snap.LastPlanetSpawnTime)
		}
		drawCenteredText(screen, label, x, ScreenHeight-60, hudDimColor)
	}
}

func (s *RunScene) drawEntities(screen *ebiten.Image) {
	em := s.session.EntityManager()

	for _, id := range ecs.GetEntitiesWith2[*components.ObstacleComponent, *components.PositionComponent](em) {
		o, _ := ecs.GetComponent[*components.ObstacleComponent](em, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		clr, ok := planetColors[o.Prototype]
		if !ok {
			clr = planetDefaultColor
		}
		vector.DrawFilledCircle(screen, float32(pos.X), float32(pos.Y), 30, clr, true)
	}

	for _, id := range ecs.GetEntitiesWith2[*components.CollectibleComponent, *components.PositionComponent](em) {
		c, _ := ecs.GetComponent[*components.CollectibleComponent](em, id)
		if c.Collected {
			continue
		}
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		x, y := float32(pos.X), float32(pos.Y)

		switch c.Kind {
		case components.CollectibleCoin:
			vector.DrawFilledCircle(screen, x, y, 8, coinColor, true)
		case components.CollectibleFragment:
			clr, ok := fragmentColors[c.Variant]
			if !ok {
				clr = color.RGBA{60, 220, 220, 255}
			}
			vector.DrawFilledRect(screen, x-9, y-9, 18, 18, clr, false)
		case components.CollectibleStar:
			vector.DrawFilledCircle(screen, x, y, 14, starColor, true)
			vector.StrokeCircle(screen, x, y, 18, 2, hudAccentColor, true)
		}
	}
}

func (s *RunScene) drawPlayer(screen *ebiten.Image) {
	p, ok := s.session.Player().Player()
	if !ok {
		return
	}
	x := float32(s.playerX.Value())
	y := float32(s.session.Config().Player.Y)

	clr := playerColor
	if p.HitTimer > 0 {
		clr = playerHitColor
	}
	vector.DrawFilledRect(screen, x-16, y-22, 32, 44, clr, false)
}

func (s *RunScene) drawHUD(screen *ebiten.Image) {
	spawner := s.session.Spawner()
	speed, _ := s.session.Difficulty().CurrentWorldSpeed()

	drawText(screen, fmt.Sprintf("%s  %s", s.level.ID, s.level.Name), 8, 8, hudTextColor)
	drawText(screen, fmt.Sprintf("t %.1fs  dist %.0f  speed %.0f", spawner.Now(), spawner.Distance(), speed), 8, 8+hudLineHeight, hudDimColor)

	if p, ok := s.session.Player().Player(); ok {
		hitColor := color.Color(hudTextColor)
		if p.Hits > 0 {
			hitColor = hudAlertColor
		}
		drawText(screen, fmt.Sprintf("coins %d", p.Coins), 8, 8+2*hudLineHeight, hudAccentColor)
		drawText(screen, fmt.Sprintf("hits %d/%d", p.Hits, MaxHits), 120, 8+2*hudLineHeight, hitColor)
	}

	y := 8.0 + 3*hudLineHeight
	for _, r := range s.session.Mission().Snapshot() {
		drawText(screen, fmt.Sprintf("%s %s %d/%d", r.Variant, r.Type, r.Collected, r.Required), 8, y, hudTextColor)
		y += hudLineHeight
	}

	drawText(screen, "stars "+starString(s.session.StarsCollected()), ScreenWidth-140, 8, hudAccentColor)
	if s.gameState.GetSettingsManager().GetSettings().Autopilot {
		drawText(screen, "AUTO", ScreenWidth-48, 8+hudLineHeight, hudDimColor)
	}

	if s.starPop > 0 {
		scale := utils.EaseOutBack(1 - s.starPop/starPopTime)
		cx := float32(ScreenWidth) / 2
		vector.DrawFilledCircle(screen, cx, 140, float32(28*scale), starColor, true)
		drawCenteredText(screen, "STAR!", float64(cx), 176, hudAccentColor)
	}
}

func (s *RunScene) drawResult(screen *ebiten.Image) {
	vector.DrawFilledRect(screen, 40, 260, ScreenWidth-80, 240, overlayColor, false)

	r := s.result
	title := "RUN OVER"
	if r.Complete {
		title = "MISSION COMPLETE"
	}
	cx := float64(ScreenWidth) / 2
	drawCenteredText(screen, title, cx, 280, hudAccentColor)
	drawCenteredText(screen, "stars "+starString(r.Stars), cx, 320, hudTextColor)
	drawCenteredText(screen, fmt.Sprintf("coins %d  distance %.0f", r.Coins, r.Distance), cx, 340, hudTextColor)
	if s.improved {
		drawCenteredText(screen, "NEW RECORD", cx, 380, hudAlertColor)
	}
	drawCenteredText(screen, "ENTER: levels   R: retry", cx, 460, hudDimColor)
}
