// Package input collects player controls from any number of producers
// (HTTP handlers, WebSocket clients, a terminal) and exposes them to the
// simulation as a single Input.
package input

import (
	"strings"
	"sync"
	"time"
)

// Control is a held control.
type Control uint8

const (
	RotateLeft Control = iota
	RotateRight
	Thrust
	Fire
	controlCount
)

// Press is a one-shot control, consumed by the first read.
type Press uint8

const (
	Confirm Press = iota
	Hyperspace
	Start
	pressCount
)

var controlNames = map[string]Control{
	"left":   RotateLeft,
	"right":  RotateRight,
	"thrust": Thrust,
	"fire":   Fire,
}

var pressNames = map[string]Press{
	"confirm":    Confirm,
	"hyperspace": Hyperspace,
	"start":      Start,
}

// ParseControl maps a wire name ("left", "right", "thrust", "fire").
func ParseControl(name string) (Control, bool) {
	c, ok := controlNames[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// ParsePress maps a wire name ("confirm", "hyperspace", "start").
func ParsePress(name string) (Press, bool) {
	p, ok := pressNames[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// String returns the wire name
func (c Control) String() string {
	for name, v := range controlNames {
		if v == c {
			return name
		}
	}
	return "unknown"
}

// String returns the wire name
func (p Press) String() string {
	for name, v := range pressNames {
		if v == p {
			return name
		}
	}
	return "unknown"
}

// Controls is a thread-safe control state.
//
// Held controls are either latched (Set) or pulsed (Pulse). A pulse keeps
// the control held until its deadline, which suits sources that only
// report key-down such as terminals.
type Controls struct {
	mu      sync.Mutex
	held    [controlCount]bool
	until   [controlCount]time.Time
	pressed [pressCount]bool
	now     func() time.Time
}

// NewControls creates an idle control state.
func NewControls() *Controls {
	return &Controls{now: time.Now}
}

// Set latches a held control on or off.
func (c *Controls) Set(ctl Control, down bool) {
	if ctl >= controlCount {
		return
	}
	c.mu.Lock()
	c.held[ctl] = down
	if !down {
		c.until[ctl] = time.Time{}
	}
	c.mu.Unlock()
}

// Pulse holds ctl for d from now.
func (c *Controls) Pulse(ctl Control, d time.Duration) {
	if ctl >= controlCount {
		return
	}
	c.mu.Lock()
	c.until[ctl] = c.now().Add(d)
	c.mu.Unlock()
}

// Press records a one-shot control.
func (c *Controls) Press(p Press) {
	if p >= pressCount {
		return
	}
	c.mu.Lock()
	c.pressed[p] = true
	c.mu.Unlock()
}

// Reset releases every control and discards pending presses.
func (c *Controls) Reset() {
	c.mu.Lock()
	c.held = [controlCount]bool{}
	c.until = [controlCount]time.Time{}
	c.pressed = [pressCount]bool{}
	c.mu.Unlock()
}

// Held reports whether ctl is currently down.
func (c *Controls) Held(ctl Control) bool {
	if ctl >= controlCount {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.held[ctl] || c.now().Before(c.until[ctl])
}

// consume reads and clears a press.
func (c *Controls) consume(p Press) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.pressed[p]
	c.pressed[p] = false
	return v
}

// RotateLeft reports the rotate-left control.
func (c *Controls) RotateLeft() bool { return c.Held(RotateLeft) }

// RotateRight reports the rotate-right control.
func (c *Controls) RotateRight() bool { return c.Held(RotateRight) }

// Thrust reports the thrust control.
func (c *Controls) Thrust() bool { return c.Held(Thrust) }

// Fire reports the fire control.
func (c *Controls) Fire() bool { return c.Held(Fire) }

// ConfirmPressed consumes a confirm press.
func (c *Controls) ConfirmPressed() bool { return c.consume(Confirm) }

// HyperspacePressed consumes a hyperspace press.
func (c *Controls) HyperspacePressed() bool { return c.consume(Hyperspace) }

// StartPressed consumes a start press.
func (c *Controls) StartPressed() bool { return c.consume(Start) }
