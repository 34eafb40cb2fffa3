// Package preview 把一局模拟的生成事件渲染成 PNG 时间条
//
// 横向为车道，纵向为游戏时间（自上而下），便于检查车道占用和图案形状。
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/fogleman/gg"

	"github.com/decker502/cosmorun/pkg/systems"
)

// ErrNoLanes 车道数量非法
var ErrNoLanes = errors.New("preview needs at least one lane")

// Options 渲染参数
type Options struct {
	LaneWidth       float64 // 每条车道的像素宽度
	PixelsPerSecond float64 // 每秒对应的像素高度
	Margin          float64 // 四周留白（左侧留白用于时间标签）
	MaxSeconds      float64 // 最长渲染时间，0 表示按事件自动计算
}

// DefaultOptions 返回默认渲染参数
func DefaultOptions() Options {
	return Options{
		LaneWidth:       48,
		PixelsPerSecond: 40,
		Margin:          36,
	}
}

var (
	backgroundColor = color.RGBA{12, 12, 28, 255}
	laneColor       = color.RGBA{28, 28, 52, 255}
	gridColor       = color.RGBA{60, 60, 80, 255}
	obstacleColor   = color.RGBA{220, 70, 60, 255}
	coinColor       = color.RGBA{250, 210, 60, 255}
	starColor       = color.RGBA{255, 255, 255, 255}
	missedColor     = color.RGBA{140, 140, 140, 255}
	pressureColor   = color.RGBA{200, 90, 200, 255}
)

// variantColors 碎片变体颜色，未知变体使用青色
var variantColors = map[string]color.RGBA{
	"blue":  {70, 140, 255, 255},
	"red":   {255, 90, 120, 255},
	"gold":  {255, 180, 40, 255},
	"green": {80, 220, 120, 255},
}

// Recorder 收集生成事件，实现 systems.SpawnListener
type Recorder struct {
	events []systems.SpawnEvent
}

// OnSpawnEvent 实现 systems.SpawnListener
func (r *Recorder) OnSpawnEvent(ev systems.SpawnEvent) {
	r.events = append(r.events, ev)
}

// Events 返回已记录的事件
func (r *Recorder) Events() []systems.SpawnEvent {
	return r.events
}

// Render 绘制事件时间条
func Render(events []systems.SpawnEvent, laneCount int, opts Options) (image.Image, error) {
	dc, err := draw(events, laneCount, opts)
	if err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// RenderPNG 绘制事件时间条并以 PNG 写入 w
func RenderPNG(w io.Writer, events []systems.SpawnEvent, laneCount int, opts Options) error {
	dc, err := draw(events, laneCount, opts)
	if err != nil {
		return err
	}
	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return nil
}

// SavePNG 绘制事件时间条并保存到文件
func SavePNG(path string, events []systems.SpawnEvent, laneCount int, opts Options) error {
	dc, err := draw(events, laneCount, opts)
	if err != nil {
		return err
	}
	if err := dc.SavePNG(path); err != nil {
		return fmt.Errorf("save preview %s: %w", path, err)
	}
	return nil
}

// layout 像素坐标换算
type layout struct {
	opts      Options
	laneCount int
	seconds   float64
}

func (l layout) width() int {
	return int(math.Ceil(float64(l.laneCount)*l.opts.LaneWidth + 2*l.opts.Margin))
}

func (l layout) height() int {
	return int(math.Ceil(l.seconds*l.opts.PixelsPerSecond + 2*l.opts.Margin))
}

func (l layout) laneX(lane int) float64 {
	return l.opts.Margin + (float64(lane)+0.5)*l.opts.LaneWidth
}

func (l layout) timeY(t float64) float64 {
	return l.opts.Margin + t*l.opts.PixelsPerSecond
}

func draw(events []systems.SpawnEvent, laneCount int, opts Options) (*gg.Context, error) {
	if laneCount < 1 {
		return nil, ErrNoLanes
	}
	def := DefaultOptions()
	if opts.LaneWidth <= 0 {
		opts.LaneWidth = def.LaneWidth
	}
	if opts.PixelsPerSecond <= 0 {
		opts.PixelsPerSecond = def.PixelsPerSecond
	}
	if opts.Margin < 0 {
		opts.Margin = 0
	}

	seconds := opts.MaxSeconds
	if seconds <= 0 {
		for _, ev := range events {
			seconds = math.Max(seconds, ev.Time)
		}
		seconds = math.Ceil(seconds) + 1
	}

	l := layout{opts: opts, laneCount: laneCount, seconds: seconds}
	dc := gg.NewContext(l.width(), l.height())

	drawBackground(dc, l)
	for _, ev := range events {
		if ev.Time > seconds {
			continue
		}
		drawEvent(dc, l, ev)
	}
	return dc, nil
}

func drawBackground(dc *gg.Context, l layout) {
	dc.SetColor(backgroundColor)
	dc.DrawRectangle(0, 0, float64(l.width()), float64(l.height()))
	dc.Fill()

	// 车道，间隔着色
	for lane := 0; lane < l.laneCount; lane += 2 {
		dc.SetColor(laneColor)
		dc.DrawRectangle(l.laneX(lane)-l.opts.LaneWidth/2, l.opts.Margin, l.opts.LaneWidth, l.seconds*l.opts.PixelsPerSecond)
		dc.Fill()
	}

	// 每秒一条细线，每 10 秒一条粗线和标签
	dc.SetColor(gridColor)
	for s := 0; float64(s) <= l.seconds; s++ {
		y := l.timeY(float64(s))
		width := 0.5
		if s%10 == 0 {
			width = 1.5
			dc.DrawStringAnchored(fmt.Sprintf("%ds", s), l.opts.Margin/2, y, 0.5, 0.5)
		}
		dc.SetLineWidth(width)
		dc.DrawLine(l.opts.Margin, y, float64(l.width())-l.opts.Margin, y)
		dc.Stroke()
	}
}

func drawEvent(dc *gg.Context, l layout, ev systems.SpawnEvent) {
	y := l.timeY(ev.Time)
	r := l.opts.LaneWidth / 6

	switch ev.Kind {
	case systems.EventObstacle:
		x := l.laneX(ev.Lane)
		dc.SetColor(obstacleColor)
		dc.DrawCircle(x, y, r*1.6)
		if ev.Double {
			dc.SetLineWidth(2)
			dc.Stroke()
		} else {
			dc.Fill()
		}

	case systems.EventCoin:
		dc.SetColor(coinColor)
		dc.DrawCircle(l.laneX(ev.Lane), y, r*0.8)
		dc.Fill()

	case systems.EventFragment:
		c, ok := variantColors[ev.Variant]
		if !ok {
			c = color.RGBA{60, 220, 220, 255}
		}
		dc.SetColor(c)
		dc.DrawRegularPolygon(4, l.laneX(ev.Lane), y, r, 0)
		dc.Fill()

	case systems.EventStar:
		dc.SetColor(starColor)
		dc.DrawRegularPolygon(5, l.laneX(ev.Lane), y, r*1.4, -math.Pi/2)
		dc.Fill()

	case systems.EventStarMissed:
		// 横跨所有车道的虚线
		dc.SetColor(missedColor)
		dc.SetLineWidth(1)
		dc.SetDash(4, 4)
		dc.DrawLine(l.opts.Margin, y, float64(l.width())-l.opts.Margin, y)
		dc.Stroke()
		dc.SetDash()

	case systems.EventBackpressure:
		// 右侧留白中的短标记
		x := float64(l.width()) - l.opts.Margin/2
		dc.SetColor(pressureColor)
		dc.SetLineWidth(1)
		dc.DrawLine(x-4, y, x+4, y)
		dc.Stroke()
	}
}
