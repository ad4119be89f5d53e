package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

const pagerTitle = "*eval-output*"

// headerColors derives the header foreground and its dimmed hint variant
// from one base color.
func headerColors() (tcell.Color, tcell.Color) {
	base, err := colorful.Hex("#87d7ff")
	if err != nil {
		return tcell.ColorTeal, tcell.ColorGray
	}
	dim := base.BlendRgb(colorful.Color{}, 0.45)
	return toTcell(base), toTcell(dim)
}

func toTcell(c colorful.Color) tcell.Color {
	r, g, b := c.RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

// pageText takes over the terminal with a read-only scrollable view of
// text, dismissed with q, Escape, or Enter.
func pageText(text string) (err error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	lines := strings.Split(text, "\n")
	top := 0

	titleColor, hintColor := headerColors()
	titleStyle := tcell.StyleDefault.Foreground(titleColor).Bold(true)
	hintStyle := tcell.StyleDefault.Foreground(hintColor)
	bodyStyle := tcell.StyleDefault

	draw := func() {
		screen.Clear()
		_, height := screen.Size()
		drawLine(screen, 0, 0, pagerTitle, titleStyle)
		drawLine(screen, uniseg.StringWidth(pagerTitle)+2, 0, "q to close, j/k to scroll", hintStyle)
		for i := 0; i < height-1 && top+i < len(lines); i++ {
			drawLine(screen, 0, i+1, lines[top+i], bodyStyle)
		}
		screen.Show()
	}

	maxTop := func() int {
		_, height := screen.Size()
		m := len(lines) - (height - 1)
		if m < 0 {
			m = 0
		}
		return m
	}

	draw()
	for {
		switch ev := screen.PollEvent().(type) {
		case *tcell.EventResize:
			screen.Sync()
			draw()
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyEnter || ev.Rune() == 'q':
				return nil
			case ev.Key() == tcell.KeyUp || ev.Rune() == 'k':
				top = max(top-1, 0)
			case ev.Key() == tcell.KeyDown || ev.Rune() == 'j':
				top = min(top+1, maxTop())
			case ev.Key() == tcell.KeyPgUp:
				_, height := screen.Size()
				top = max(top-(height-1), 0)
			case ev.Key() == tcell.KeyPgDn || ev.Rune() == ' ':
				_, height := screen.Size()
				top = min(top+(height-1), maxTop())
			case ev.Rune() == 'g':
				top = 0
			case ev.Rune() == 'G':
				top = maxTop()
			}
			draw()
		}
	}
}

// drawLine writes s starting at (x, y), advancing by grapheme display
// width so wide runes stay aligned.
func drawLine(screen tcell.Screen, x, y int, s string, style tcell.Style) {
	width, _ := screen.Size()
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		if x >= width {
			return
		}
		runes := gr.Runes()
		if len(runes) == 0 {
			continue
		}
		screen.SetContent(x, y, runes[0], runes[1:], style)
		x += gr.Width()
	}
}
