package game

import "time"

// TextKind classifies HUD and banner strings so a renderer can style them.
type TextKind uint8

const (
	TextScore TextKind = iota
	TextHighScore
	TextLives
	TextBanner
	TextPrompt
	TextTableRow
	TextEntry
)

// Anchor positions a text relative to the screen.
type Anchor uint8

const (
	AnchorTopLeft Anchor = iota
	AnchorTopCenter
	AnchorTopRight
	AnchorCenter
	AnchorBottomCenter
)

// Text is a string draw request. Row offsets stacked lines such as
// high-score table rows.
type Text struct {
	Kind   TextKind `json:"kind"`
	Value  string   `json:"value"`
	Anchor Anchor   `json:"anchor"`
	Row    int      `json:"row,omitempty"`
}

// Renderer receives one frame per tick: Clear, then any number of draws.
type Renderer interface {
	Clear()
	Draw(s Sprite)
	DrawText(t Text)
}

// Input exposes held controls and one-shot presses. Presses are consumed
// by the read that observes them.
type Input interface {
	RotateLeft() bool
	RotateRight() bool
	Thrust() bool
	Fire() bool
	ConfirmPressed() bool
	HyperspacePressed() bool
	StartPressed() bool
}

// Clock supplies monotonic milliseconds.
type Clock interface {
	Now() int64
}

// SystemClock counts milliseconds since it was created.
type SystemClock struct {
	start time.Time
}

// NewSystemClock creates a clock starting at zero.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Now returns elapsed milliseconds.
func (c *SystemClock) Now() int64 {
	return time.Since(c.start).Milliseconds()
}

// ManualClock is advanced explicitly. Used by tests and replays.
type ManualClock struct {
	T int64
}

// Now returns the current manual time.
func (c *ManualClock) Now() int64 { return c.T }

// Advance moves the clock forward by ms.
func (c *ManualClock) Advance(ms int64) { c.T += ms }

// controls is the per-tick view of the input. Presses are read exactly once
// per tick so that a press not used by the current mode does not linger.
type controls struct {
	left, right, thrust, fire  bool
	confirm, hyperspace, start bool
}

func pollInput(in Input) controls {
	if in == nil {
		return controls{}
	}
	return controls{
		left:       in.RotateLeft(),
		right:      in.RotateRight(),
		thrust:     in.Thrust(),
		fire:       in.Fire(),
		confirm:    in.ConfirmPressed(),
		hyperspace: in.HyperspacePressed(),
		start:      in.StartPressed(),
	}
}

type nopRenderer struct{}

func (nopRenderer) Clear()        {}
func (nopRenderer) Draw(Sprite)   {}
func (nopRenderer) DrawText(Text) {}

// FrameRecorder is a Renderer that keeps the last frame in memory.
type FrameRecorder struct {
	Sprites []Sprite
	Texts   []Text
}

// Clear resets the frame, keeping capacity.
func (f *FrameRecorder) Clear() {
	f.Sprites = f.Sprites[:0]
	f.Texts = f.Texts[:0]
}

// Draw records a sprite.
func (f *FrameRecorder) Draw(s Sprite) {
	f.Sprites = append(f.Sprites, s)
}

// DrawText records a text.
func (f *FrameRecorder) DrawText(t Text) {
	f.Texts = append(f.Texts, t)
}

// Count returns how many sprites of kind k were drawn.
func (f *FrameRecorder) Count(k Kind) int {
	n := 0
	for _, s := range f.Sprites {
		if s.Kind == k {
			n++
		}
	}
	return n
}
