package terminal

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"

	"space-rocks/internal/game"
	"space-rocks/internal/input"
)

// HoldFor is how long a key press keeps a held control down. Terminals
// report repeats but never releases, so it must outlast the repeat delay.
const HoldFor = 180 * time.Millisecond

// HandleKey routes a key event into controls. It reports whether the
// player asked to quit.
//
//	←/a  rotate left     →/d  rotate right    ↑/w  thrust
//	space fire           ↓/s  hyperspace      enter confirm / start
//	1     start          esc/q quit
func HandleKey(ev *tcell.EventKey, c *input.Controls) (quit bool) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyLeft:
		c.Pulse(input.RotateLeft, HoldFor)
	case tcell.KeyRight:
		c.Pulse(input.RotateRight, HoldFor)
	case tcell.KeyUp:
		c.Pulse(input.Thrust, HoldFor)
	case tcell.KeyDown:
		c.Press(input.Hyperspace)
	case tcell.KeyEnter:
		c.Press(input.Confirm)
		c.Press(input.Start)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return true
		case 'a', 'A':
			c.Pulse(input.RotateLeft, HoldFor)
		case 'd', 'D':
			c.Pulse(input.RotateRight, HoldFor)
		case 'w', 'W':
			c.Pulse(input.Thrust, HoldFor)
		case 's', 'S':
			c.Press(input.Hyperspace)
		case ' ':
			c.Pulse(input.Fire, HoldFor)
		case '1':
			c.Press(input.Start)
		}
	}
	return false
}

// Source is the engine surface the client drives.
type Source interface {
	GetSnapshot() *game.GameSnapshot
	Controls() *input.Controls
}

// Client renders snapshots and feeds keys back as controls.
type Client struct {
	screen   tcell.Screen
	source   Source
	renderer *Renderer
	fps      int

	// OnFrame, if set, is called with each rendered snapshot.
	OnFrame func(*game.GameSnapshot)
}

// NewClient creates a client drawing at fps frames per second.
func NewClient(screen tcell.Screen, source Source, fps int) *Client {
	if fps <= 0 {
		fps = 30
	}
	snap := source.GetSnapshot()
	w, h := snap.Width, snap.Height
	if w <= 0 || h <= 0 {
		w, h = 1024, 768
	}
	return &Client{
		screen:   screen,
		source:   source,
		renderer: NewRenderer(screen, w, h),
		fps:      fps,
	}
}

// Run draws frames until ctx is done or the player quits.
// The screen must already be initialized; Run does not finalize it.
func (c *Client) Run(ctx context.Context) {
	events := make(chan tcell.Event, 64)
	quit := make(chan struct{})
	go func() {
		for {
			ev := c.screen.PollEvent()
			if ev == nil {
				return // Screen finalized
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()
	defer close(quit)

	ticker := time.NewTicker(time.Second / time.Duration(c.fps))
	defer ticker.Stop()

	var lastSeq uint64
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if HandleKey(ev, c.source.Controls()) {
					return
				}
			case *tcell.EventResize:
				c.screen.Sync()
			}
		case <-ticker.C:
			snap := c.source.GetSnapshot()
			if snap.Sequence == lastSeq {
				continue
			}
			lastSeq = snap.Sequence
			c.renderer.RenderSnapshot(snap)
			if c.OnFrame != nil {
				c.OnFrame(snap)
			}
		}
	}
}
