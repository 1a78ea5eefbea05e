package game

import "math"

// Explosion is a short-lived burst of debris. It never collides.
type Explosion struct {
	X, Y   float64
	Debris []Body
	Until  int64 // Game time at which the explosion ends
}

// Tick moves the debris outward and reports expiry.
func (e *Explosion) Tick(g *Game) bool {
	for i := range e.Debris {
		e.Debris[i].Advance(g.cfg.Width, g.cfg.Height)
	}
	return g.now >= e.Until
}

// Hit is a no-op; explosions are not targets.
func (e *Explosion) Hit(*Game) HitResult { return HitResult{} }

// Contains is always false.
func (e *Explosion) Contains(float64, float64) bool { return false }

// Draw emits one sprite per debris particle.
func (e *Explosion) Draw(r Renderer) {
	for i := range e.Debris {
		d := &e.Debris[i]
		r.Draw(Sprite{Kind: KindDebris, X: d.X, Y: d.Y, RX: d.RX, RY: d.RY})
	}
}

// newExplosion builds debris spread evenly around (x, y) with a little
// random variance in speed.
func (g *Game) newExplosion(x, y float64) *Explosion {
	n := g.cfg.DebrisCount
	e := &Explosion{
		X:      x,
		Y:      y,
		Debris: make([]Body, n),
		Until:  g.now + g.cfg.ExplosionMs,
	}
	for i := 0; i < n; i++ {
		angle := 2 * math.Pi * float64(i) / float64(n)
		speed := g.cfg.DebrisSpeed * (0.5 + g.rng.Float64())
		e.Debris[i] = Body{
			X:  x,
			Y:  y,
			DX: math.Cos(angle) * speed,
			DY: math.Sin(angle) * speed,
			RX: 1,
			RY: 1,
		}
	}
	return e
}
