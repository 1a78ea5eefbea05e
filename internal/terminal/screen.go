// Package terminal plays the game in a text terminal with tcell.
package terminal

import (
	"math"

	"github.com/gdamore/tcell/v2"

	"space-rocks/internal/game"
	"space-rocks/internal/render"
)

var (
	styleDefault = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	styleShip    = styleDefault.Foreground(tcell.ColorAqua).Bold(true)
	styleFlame   = styleDefault.Foreground(tcell.ColorOrange)
	styleRock    = styleDefault.Foreground(tcell.ColorSilver)
	styleSaucer  = styleDefault.Foreground(tcell.ColorFuchsia)
	styleBullet  = styleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleHostile = styleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleDebris  = styleDefault.Foreground(tcell.ColorDarkGray)
	styleBanner  = styleDefault.Foreground(tcell.ColorYellow).Bold(true)
	stylePrompt  = styleDefault.Foreground(tcell.ColorGray)
	styleScore   = styleDefault.Foreground(tcell.ColorLime)
)

// Renderer draws frames onto a tcell screen, scaling the playfield to the
// terminal. It implements game.Renderer. Call Show to flush a frame.
type Renderer struct {
	screen tcell.Screen
	worldW float64
	worldH float64
}

// NewRenderer creates a renderer for a worldW x worldH playfield.
func NewRenderer(screen tcell.Screen, worldW, worldH float64) *Renderer {
	return &Renderer{screen: screen, worldW: worldW, worldH: worldH}
}

// Clear blanks the screen.
func (r *Renderer) Clear() {
	r.screen.SetStyle(styleDefault)
	r.screen.Clear()
}

// Show flushes the frame to the terminal.
func (r *Renderer) Show() {
	r.screen.Show()
}

// cell maps a world point to a screen cell.
func (r *Renderer) cell(x, y float64) (int, int) {
	w, h := r.screen.Size()
	cx := int(math.Floor(x / r.worldW * float64(w)))
	cy := int(math.Floor(y / r.worldH * float64(h)))
	return cx, cy
}

func (r *Renderer) put(x, y int, ch rune, style tcell.Style) {
	w, h := r.screen.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return
	}
	r.screen.SetContent(x, y, ch, nil, style)
}

// Draw rasterizes a sprite.
func (r *Renderer) Draw(s game.Sprite) {
	switch s.Kind {
	case game.KindShip:
		if s.Thrusting {
			r.outline(render.FlameOutline(s.X, s.Y, s.Heading, s.RX), '*', styleFlame)
		}
		r.outline(render.ShipOutline(s.X, s.Y, s.Heading, s.RX), '#', styleShip)
		x, y := r.cell(s.X, s.Y)
		r.put(x, y, shipGlyph(s.Heading), styleShip)
	case game.KindAsteroid:
		r.outline(render.AsteroidOutline(s.Shape, s.X, s.Y, s.RX), 'o', styleRock)
	case game.KindSaucer:
		r.outline(render.SaucerOutline(s.X, s.Y, s.RX, s.RY), '=', styleSaucer)
	case game.KindBullet:
		x, y := r.cell(s.X, s.Y)
		if s.Hostile {
			r.put(x, y, '•', styleHostile)
		} else {
			r.put(x, y, '•', styleBullet)
		}
	case game.KindDebris:
		x, y := r.cell(s.X, s.Y)
		r.put(x, y, '.', styleDebris)
	}
}

// shipGlyph picks an arrow close to the heading.
func shipGlyph(heading float64) rune {
	arrows := [...]rune{'→', '↗', '↑', '↖', '←', '↙', '↓', '↘'}
	h := math.Mod(heading, 360)
	if h < 0 {
		h += 360
	}
	return arrows[int(math.Round(h/45))%len(arrows)]
}

// outline strokes a polyline cell by cell with Bresenham's algorithm.
func (r *Renderer) outline(pts []render.Point, ch rune, style tcell.Style) {
	for i := 1; i < len(pts); i++ {
		x0, y0 := r.cell(pts[i-1].X, pts[i-1].Y)
		x1, y1 := r.cell(pts[i].X, pts[i].Y)
		r.line(x0, y0, x1, y1, ch, style)
	}
}

func (r *Renderer) line(x0, y0, x1, y1 int, ch rune, style tcell.Style) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		r.put(x0, y0, ch, style)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// DrawText writes a string at its anchor.
func (r *Renderer) DrawText(t game.Text) {
	w, h := r.screen.Size()
	text := []rune(t.Value)
	style := styleDefault
	switch t.Kind {
	case game.TextScore, game.TextHighScore:
		style = styleScore
	case game.TextBanner, game.TextEntry:
		style = styleBanner
	case game.TextPrompt:
		style = stylePrompt
	case game.TextLives:
		text = []rune(livesString(t.Value))
		style = styleShip
	}

	var x, y int
	switch t.Anchor {
	case game.AnchorTopLeft:
		x, y = 1, 0
	case game.AnchorTopCenter:
		x, y = (w-len(text))/2, 0
	case game.AnchorTopRight:
		x, y = w-len(text)-1, 0
	case game.AnchorCenter:
		x, y = (w-len(text))/2, h/2
	case game.AnchorBottomCenter:
		x, y = (w-len(text))/2, h-2
	}
	y += t.Row

	for i, ch := range text {
		r.put(x+i, y, ch, style)
	}
}

// livesString draws remaining lives as ship marks.
func livesString(value string) string {
	n := 0
	for _, c := range value {
		if c < '0' || c > '9' {
			return value
		}
		n = n*10 + int(c-'0')
	}
	out := make([]rune, 0, n)
	for i := 0; i < n && i < 10; i++ {
		out = append(out, '▲')
	}
	return string(out)
}

// RenderSnapshot draws a published frame and shows it.
func (r *Renderer) RenderSnapshot(snap *game.GameSnapshot) {
	r.Clear()
	for _, s := range snap.Sprites {
		r.Draw(s)
	}
	for _, t := range snap.Texts {
		r.DrawText(t)
	}
	r.Show()
}
