package scenes

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/decker502/cosmorun/pkg/game"
)

var cursorColor = color.RGBA{40, 40, 90, 255}

// menuInput 关卡选择的按键输入
type menuInput struct {
	up, down bool
	confirm  bool
}

func readMenuInput() menuInput {
	return menuInput{
		up:      inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) || inpututil.IsKeyJustPressed(ebiten.KeyW),
		down:    inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) || inpututil.IsKeyJustPressed(ebiten.KeyS),
		confirm: inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeySpace),
	}
}

// LevelSelectScene 关卡选择
// 列出所有关卡和已获得的星星，光标初始停在上次游玩的关卡
type LevelSelectScene struct {
	sceneManager *game.SceneManager
	gameState    *game.GameState
	data         *LevelData
	cursor       int
}

// NewLevelSelectScene 创建关卡选择场景
func NewLevelSelectScene(sm *game.SceneManager, gs *game.GameState, data *LevelData) *LevelSelectScene {
	s := &LevelSelectScene{sceneManager: sm, gameState: gs, data: data}
	for i, l := range data.Levels {
		if l.ID == gs.CurrentLevel {
			s.cursor = i
		}
	}
	return s
}

// Cursor 返回当前选中的关卡索引
func (s *LevelSelectScene) Cursor() int { return s.cursor }

// Update 实现 game.Scene
func (s *LevelSelectScene) Update(deltaTime float64) {
	s.apply(readMenuInput())
}

// apply 移动光标（首尾循环）或进入选中的关卡
func (s *LevelSelectScene) apply(in menuInput) {
	n := len(s.data.Levels)
	if n == 0 {
		return
	}
	switch {
	case in.up:
		s.cursor = (s.cursor - 1 + n) % n
	case in.down:
		s.cursor = (s.cursor + 1) % n
	case in.confirm:
		s.sceneManager.LoadLevel(s.data.Levels[s.cursor].ID)
	}
}

// Draw 实现 game.Scene
func (s *LevelSelectScene) Draw(screen *ebiten.Image) {
	screen.Fill(spaceColor)
	cx := float64(ScreenWidth) / 2
	records := s.gameState.GetStarRecords()

	drawCenteredText(screen, "COSMO RUN", cx, 80, hudAccentColor)
	drawCenteredText(screen, fmt.Sprintf("total stars %d", records.TotalStars()), cx, 110, hudDimColor)

	y := 180.0
	for i, l := range s.data.Levels {
		if i == s.cursor {
			vector.DrawFilledRect(screen, 40, float32(y-6), ScreenWidth-80, 44, cursorColor, false)
		}
		rec, _ := records.Get(l.ID)
		drawText(screen, fmt.Sprintf("%s  %s", l.ID, l.Name), 56, y, hudTextColor)
		drawText(screen, starString(rec.Stars)+"  "+starCountString(rec.StarCount()), 56, y+hudLineHeight, hudAccentColor)
		if rec.BestCoins > 0 {
			drawText(screen, fmt.Sprintf("best %d", rec.BestCoins), ScreenWidth-130, y+hudLineHeight, hudDimColor)
		}
		y += 56
	}

	if r := s.gameState.LastResult; r != nil {
		drawCenteredText(screen, fmt.Sprintf("last run %s: %s coins %d", r.LevelID, starString(r.Stars), r.Coins), cx, ScreenHeight-120, hudDimColor)
	}
	drawCenteredText(screen, "UP/DOWN select   ENTER play", cx, ScreenHeight-60, hudDimColor)
	drawCenteredText(screen, "in run: LEFT/RIGHT  P pause  TAB lanes  F1 auto", cx, ScreenHeight-40, hudDimColor)
}
