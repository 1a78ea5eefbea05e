package game

import "math"

// SaucerSize is the saucer variant.
type SaucerSize int

const (
	SaucerSmall SaucerSize = 1
	SaucerLarge SaucerSize = 2
)

// Extents returns the half-width and half-height of the saucer's hitbox.
func (s SaucerSize) Extents() (float64, float64) {
	if s == SaucerLarge {
		return 20, 10
	}
	return 10, 5
}

// Points returns the score for destroying the saucer.
func (s SaucerSize) Points() int {
	if s == SaucerLarge {
		return 200
	}
	return 1000
}

// String returns human-readable size
func (s SaucerSize) String() string {
	if s == SaucerLarge {
		return "large"
	}
	return "small"
}

// Saucer crosses the screen horizontally, changing vertical direction at
// intervals and firing from its own bounded bullet queue.
type Saucer struct {
	Body
	Size      SaucerSize
	Bullets   []*Bullet
	NextSteer int64
	NextFire  int64
	Travelled float64 // Horizontal distance covered since appearing
	Dead      bool
}

// NewSaucer creates a saucer at the left edge moving right.
func NewSaucer(y, speed float64, size SaucerSize, now int64) *Saucer {
	rx, ry := size.Extents()
	return &Saucer{
		Body:      Body{X: 0, Y: y, DX: speed, RX: rx, RY: ry},
		Size:      size,
		NextSteer: now,
		NextFire:  now,
	}
}

// Tick steers, moves and fires. The saucer leaves once it has travelled
// one world width.
func (s *Saucer) Tick(g *Game) bool {
	if g.now >= s.NextSteer {
		s.DY = float64(g.rng.Intn(3)-1) * g.cfg.SaucerSpeed
		s.NextSteer = g.now + g.cfg.SaucerSteerMs
	}
	s.Advance(g.cfg.Width, g.cfg.Height)
	s.Travelled += math.Abs(s.DX)

	if g.now >= s.NextFire {
		s.fire(g)
		s.NextFire = g.now + g.cfg.SaucerFireMs
	}
	return s.Dead || s.Travelled >= g.cfg.Width
}

// fire aims a shot. The large saucer fires in a random direction; the
// small one aims at the ship with a jitter that tightens at high scores.
func (s *Saucer) fire(g *Game) {
	angle := g.rng.Float64() * 2 * math.Pi
	if s.Size == SaucerSmall && g.ship != nil {
		jitter := g.cfg.SaucerJitter
		if g.score >= g.cfg.SaucerSharpScore {
			jitter = g.cfg.SaucerSharpJitter
		}
		angle = math.Atan2(g.ship.Y-s.Y, g.ship.X-s.X) + (g.rng.Float64()*2-1)*jitter
	}
	speed := g.cfg.SaucerBulletSpeed
	b := NewBullet(s.X, s.Y, math.Cos(angle)*speed, math.Sin(angle)*speed, true)
	s.Bullets = pushBullet(s.Bullets, b, g.cfg.MaxSaucerBullets)
}

// Hit destroys the saucer and drops its bullets.
func (s *Saucer) Hit(g *Game) HitResult {
	s.Dead = true
	for i := range s.Bullets {
		s.Bullets[i] = nil
	}
	s.Bullets = s.Bullets[:0]
	return HitResult{
		Points:    s.Size.Points(),
		Explosion: g.newExplosion(s.X, s.Y),
	}
}

// Draw emits the saucer sprite.
func (s *Saucer) Draw(r Renderer) {
	r.Draw(Sprite{
		Kind: KindSaucer,
		X:    s.X,
		Y:    s.Y,
		RX:   s.RX,
		RY:   s.RY,
		Size: int(s.Size),
	})
}
