package scenes

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/bitmapfont/v4"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// hudLineHeight bitmapfont 的行高
const hudLineHeight = 16

var hudFace = text.NewGoXFace(bitmapfont.Face)

var (
	hudTextColor   = color.RGBA{230, 230, 240, 255}
	hudDimColor    = color.RGBA{140, 140, 160, 255}
	hudAccentColor = color.RGBA{250, 210, 60, 255}
	hudAlertColor  = color.RGBA{255, 90, 80, 255}
)

// drawText 在 (x, y) 处绘制文本，y 为文字顶部
func drawText(screen *ebiten.Image, s string, x, y float64, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	op.LineSpacing = hudLineHeight
	text.Draw(screen, s, hudFace, op)
}

// drawCenteredText 以 cx 为中心水平居中绘制
func drawCenteredText(screen *ebiten.Image, s string, cx, y float64, clr color.Color) {
	w, _ := text.Measure(s, hudFace, hudLineHeight)
	drawText(screen, s, cx-w/2, y, clr)
}

// starString 把星星标记格式化为 "[*][ ][*]"
func starString(flags [3]bool) string {
	var b strings.Builder
	for _, f := range flags {
		if f {
			b.WriteString("[*]")
		} else {
			b.WriteString("[ ]")
		}
	}
	return b.String()
}

// starCountString 形如 "2/3"
func starCountString(n int) string {
	return fmt.Sprintf("%d/3", n)
}
