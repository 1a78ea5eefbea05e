package game

import "math"

// Wrap maps v onto the toroidal axis [0, m).
// Any finite v is accepted; magnitude does not matter.
func Wrap(v, m float64) float64 {
	if m <= 0 {
		return 0
	}
	r := math.Mod(math.Mod(v, m)+m, m)
	// Mod can round up to m for tiny negative inputs.
	if r >= m || r < 0 {
		return 0
	}
	return r
}

// Body is the kinematic state shared by every entity: center, per-tick
// velocity and the half-extents of its axis-aligned hitbox.
type Body struct {
	X, Y   float64
	DX, DY float64
	RX, RY float64
}

// Advance moves the body one tick and wraps it onto the torus.
func (b *Body) Advance(width, height float64) {
	b.X = Wrap(b.X+b.DX, width)
	b.Y = Wrap(b.Y+b.DY, height)
}

// Contains reports whether (px, py) lies inside the body's box.
// Edges are inclusive. The test does not account for wrap.
func (b *Body) Contains(px, py float64) bool {
	return math.Abs(b.X-px) <= b.RX && math.Abs(b.Y-py) <= b.RY
}

// Overlaps reports whether two boxes intersect (edges inclusive).
func (b *Body) Overlaps(o *Body) bool {
	return math.Abs(b.X-o.X) <= b.RX+o.RX && math.Abs(b.Y-o.Y) <= b.RY+o.RY
}

// Speed returns the velocity magnitude.
func (b *Body) Speed() float64 {
	return math.Hypot(b.DX, b.DY)
}

// headingVector converts a heading in degrees (0 = right, counter-clockwise
// on screen) into a unit vector in y-down screen coordinates.
func headingVector(deg float64) (float64, float64) {
	rad := deg * math.Pi / 180
	return math.Cos(rad), -math.Sin(rad)
}
