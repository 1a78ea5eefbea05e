package game

import "math"

// Ship is the player's craft.
type Ship struct {
	Body
	Heading   float64 // Degrees in [0, 360), 0 = facing right
	LastFire  int64   // Time of the last shot (ms)
	Thrusting bool
	Dead      bool
}

// NewShip creates a stationary ship facing up, ready to fire.
func NewShip(x, y, radius float64, now, cooldown int64) *Ship {
	return &Ship{
		Body:     Body{X: x, Y: y, RX: radius, RY: radius},
		Heading:  90,
		LastFire: now - cooldown,
	}
}

// Rotate turns the ship by deg, keeping the heading in [0, 360).
func (s *Ship) Rotate(deg float64) {
	s.Heading = Wrap(s.Heading+deg, 360)
}

// Thrust accelerates along the heading. maxSpeed <= 0 leaves speed unbounded.
func (s *Ship) Thrust(accel, maxSpeed float64) {
	hx, hy := headingVector(s.Heading)
	s.DX += hx * accel
	s.DY += hy * accel
	if maxSpeed > 0 {
		if v := s.Speed(); v > maxSpeed {
			s.DX *= maxSpeed / v
			s.DY *= maxSpeed / v
		}
	}
}

// Fire emits a bullet from the nose once cooldown ms have passed since the
// last shot.
// The bullet inherits the ship's velocity.
func (s *Ship) Fire(now, cooldown int64, speed float64) *Bullet {
	if now-s.LastFire < cooldown {
		return nil
	}
	s.LastFire = now
	hx, hy := headingVector(s.Heading)
	nx, ny := s.nose()
	return NewBullet(nx, ny, hx*speed+s.DX, hy*speed+s.DY, false)
}

// Hyperspace drops the ship at (x, y) with zero velocity.
func (s *Ship) Hyperspace(x, y float64) {
	s.X, s.Y = x, y
	s.DX, s.DY = 0, 0
}

// Tick moves the ship. Input is applied by the game before Tick.
func (s *Ship) Tick(g *Game) bool {
	s.Advance(g.cfg.Width, g.cfg.Height)
	return s.Dead
}

// Hit destroys the ship. Lives are the game's concern.
func (s *Ship) Hit(g *Game) HitResult {
	s.Dead = true
	return HitResult{Explosion: g.newExplosion(s.X, s.Y)}
}

// Draw emits the ship sprite.
func (s *Ship) Draw(r Renderer) {
	r.Draw(Sprite{
		Kind:      KindShip,
		X:         s.X,
		Y:         s.Y,
		Heading:   s.Heading,
		RX:        s.RX,
		RY:        s.RY,
		Thrusting: s.Thrusting,
	})
}

// nose returns the tip of the ship outline.
func (s *Ship) nose() (float64, float64) {
	rad := s.Heading * math.Pi / 180
	return s.X + math.Cos(rad)*s.RX, s.Y - math.Sin(rad)*s.RY
}
