package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"space-rocks/internal/game"
)

var (
	colorBackground = color.Black
	colorVector     = color.RGBA{230, 230, 230, 255}
	colorHostile    = color.RGBA{255, 120, 90, 255}
	colorFlame      = color.RGBA{255, 180, 60, 255}
	colorDim        = color.RGBA{150, 150, 150, 255}
)

const (
	textMargin  = 12.0
	lineSpacing = 1.4
)

// Canvas rasterizes frames with gg. It implements game.Renderer so a Game
// can draw into it directly, or it can replay a published snapshot.
// A Canvas is not safe for concurrent use.
type Canvas struct {
	dc     *gg.Context
	width  int
	height int
	scaleX float64 // World units to pixels
	scaleY float64

	fontSmall   font.Face
	fontLarge   font.Face
	fontsLoaded bool
}

// NewCanvas creates a width x height canvas showing a worldW x worldH
// playfield.
func NewCanvas(width, height int, worldW, worldH float64) *Canvas {
	c := &Canvas{
		dc:     gg.NewContext(width, height),
		width:  width,
		height: height,
		scaleX: 1,
		scaleY: 1,
	}
	if worldW > 0 && worldH > 0 {
		c.scaleX = float64(width) / worldW
		c.scaleY = float64(height) / worldH
	}
	c.Clear()
	return c
}

// LoadFonts parses a TrueType font and caches the faces used for text.
// An empty path searches common system locations. Without a font the
// canvas keeps gg's built-in bitmap face.
func (c *Canvas) LoadFonts(path string) error {
	if path == "" {
		path = findFontPath()
	}
	if path == "" {
		return fmt.Errorf("no font found")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font: %w", err)
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font: %w", err)
	}

	small, err := opentype.NewFace(parsed, &opentype.FaceOptions{Size: 16, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return fmt.Errorf("small face: %w", err)
	}
	large, err := opentype.NewFace(parsed, &opentype.FaceOptions{Size: 32, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return fmt.Errorf("large face: %w", err)
	}

	c.fontSmall, c.fontLarge = small, large
	c.fontsLoaded = true
	log.Printf("✅ Fonts loaded from: %s", path)
	return nil
}

func findFontPath() string {
	paths := []string{
		"/usr/share/fonts/truetype/dejavu/DejaVuSansMono.ttf",
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/System/Library/Fonts/Menlo.ttc",
		"C:\\Windows\\Fonts\\consola.ttf",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if matches, _ := filepath.Glob("*.ttf"); len(matches) > 0 {
		return matches[0]
	}
	return ""
}

// Clear paints the background.
func (c *Canvas) Clear() {
	c.dc.SetColor(colorBackground)
	c.dc.Clear()
}

// Draw renders one sprite as vector outlines.
func (c *Canvas) Draw(s game.Sprite) {
	dc := c.dc
	dc.SetLineWidth(1.5)

	switch s.Kind {
	case game.KindShip:
		if s.Thrusting {
			dc.SetColor(colorFlame)
			c.polyline(FlameOutline(s.X, s.Y, s.Heading, s.RX), true)
		}
		dc.SetColor(colorVector)
		c.polyline(ShipOutline(s.X, s.Y, s.Heading, s.RX), false)

	case game.KindAsteroid:
		dc.SetColor(colorVector)
		c.polyline(AsteroidOutline(s.Shape, s.X, s.Y, s.RX), false)

	case game.KindSaucer:
		dc.SetColor(colorVector)
		c.polyline(SaucerOutline(s.X, s.Y, s.RX, s.RY), false)

	case game.KindBullet:
		if s.Hostile {
			dc.SetColor(colorHostile)
		} else {
			dc.SetColor(colorVector)
		}
		dc.DrawCircle(s.X*c.scaleX, s.Y*c.scaleY, max(s.RX*c.scaleX, 1))
		dc.Fill()

	case game.KindDebris:
		dc.SetColor(colorDim)
		dc.DrawRectangle(s.X*c.scaleX, s.Y*c.scaleY, 2, 2)
		dc.Fill()
	}
}

// polyline strokes (or fills) pts scaled to pixels.
func (c *Canvas) polyline(pts []Point, fill bool) {
	if len(pts) == 0 {
		return
	}
	dc := c.dc
	dc.MoveTo(pts[0].X*c.scaleX, pts[0].Y*c.scaleY)
	for _, p := range pts[1:] {
		dc.LineTo(p.X*c.scaleX, p.Y*c.scaleY)
	}
	if fill {
		dc.ClosePath()
		dc.Fill()
		return
	}
	dc.Stroke()
}

// DrawText renders a HUD or banner string at its anchor.
func (c *Canvas) DrawText(t game.Text) {
	dc := c.dc
	large := t.Kind == game.TextBanner || t.Kind == game.TextEntry
	if c.fontsLoaded {
		if large {
			dc.SetFontFace(c.fontLarge)
		} else {
			dc.SetFontFace(c.fontSmall)
		}
	}
	lineH := dc.FontHeight() * lineSpacing

	w, h := float64(c.width), float64(c.height)
	var x, y, ax float64
	switch t.Anchor {
	case game.AnchorTopLeft:
		x, y, ax = textMargin, textMargin+lineH/2, 0
	case game.AnchorTopCenter:
		x, y, ax = w/2, textMargin+lineH/2, 0.5
	case game.AnchorTopRight:
		x, y, ax = w-textMargin, textMargin+lineH/2, 1
	case game.AnchorCenter:
		x, y, ax = w/2, h/2, 0.5
	case game.AnchorBottomCenter:
		x, y, ax = w/2, h-textMargin-lineH/2, 0.5
	}
	y += float64(t.Row) * lineH

	if t.Kind == game.TextLives {
		c.drawLives(t.Value, x, y, lineH)
		return
	}
	if t.Kind == game.TextPrompt {
		dc.SetColor(colorDim)
	} else {
		dc.SetColor(colorVector)
	}
	dc.DrawStringAnchored(t.Value, x, y, ax, 0.5)
}

// drawLives shows the remaining lives as small ships.
func (c *Canvas) drawLives(value string, x, y, size float64) {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return
	}
	r := size / 2.5
	c.dc.SetColor(colorVector)
	c.dc.SetLineWidth(1)
	for i := 0; i < n && i < 10; i++ {
		cx := x + r + float64(i)*r*2.4
		pts := ShipOutline(cx, y, 90, r)
		c.dc.MoveTo(pts[0].X, pts[0].Y)
		for _, p := range pts[1:] {
			c.dc.LineTo(p.X, p.Y)
		}
		c.dc.Stroke()
	}
}

// RenderSnapshot replays a published frame onto the canvas.
func (c *Canvas) RenderSnapshot(snap *game.GameSnapshot) {
	c.Clear()
	for _, s := range snap.Sprites {
		c.Draw(s)
	}
	for _, t := range snap.Texts {
		c.DrawText(t)
	}
}

// Image returns the canvas backing image.
func (c *Canvas) Image() image.Image {
	return c.dc.Image()
}

// EncodePNG writes the current frame as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	return c.dc.EncodePNG(w)
}

// Size returns the canvas dimensions in pixels.
func (c *Canvas) Size() (int, int) {
	return c.width, c.height
}
