package game

// AsteroidSize is the asteroid tier. Larger values are bigger rocks.
type AsteroidSize int

const (
	AsteroidSmall  AsteroidSize = 1
	AsteroidMedium AsteroidSize = 2
	AsteroidLarge  AsteroidSize = 3
)

// AsteroidShapes is the number of outline profiles an asteroid can use.
const AsteroidShapes = 3

// Radius returns the half-extent of the tier's hitbox.
func (s AsteroidSize) Radius() float64 {
	switch s {
	case AsteroidLarge:
		return 40
	case AsteroidMedium:
		return 20
	default:
		return 10
	}
}

// Points returns the score for destroying the tier.
func (s AsteroidSize) Points() int {
	switch s {
	case AsteroidLarge:
		return 20
	case AsteroidMedium:
		return 50
	default:
		return 100
	}
}

// Child returns the tier produced when s breaks, if any.
func (s AsteroidSize) Child() (AsteroidSize, bool) {
	if s <= AsteroidSmall {
		return 0, false
	}
	return s - 1, true
}

// String returns human-readable size
func (s AsteroidSize) String() string {
	switch s {
	case AsteroidLarge:
		return "large"
	case AsteroidMedium:
		return "medium"
	case AsteroidSmall:
		return "small"
	default:
		return "unknown"
	}
}

// Asteroid is a drifting rock.
type Asteroid struct {
	Body
	Size  AsteroidSize
	Shape int
	Dead  bool
}

// NewAsteroid creates an asteroid of the given tier.
func NewAsteroid(x, y, dx, dy float64, size AsteroidSize, shape int) *Asteroid {
	r := size.Radius()
	return &Asteroid{
		Body:  Body{X: x, Y: y, DX: dx, DY: dy, RX: r, RY: r},
		Size:  size,
		Shape: shape,
	}
}

// Tick moves the asteroid.
func (a *Asteroid) Tick(g *Game) bool {
	a.Advance(g.cfg.Width, g.cfg.Height)
	return a.Dead
}

// Hit destroys the asteroid. Anything above the smallest tier breaks into
// two children of the next tier at the same position with fresh velocities.
func (a *Asteroid) Hit(g *Game) HitResult {
	a.Dead = true
	res := HitResult{
		Points:    a.Size.Points(),
		Explosion: g.newExplosion(a.X, a.Y),
	}
	if child, ok := a.Size.Child(); ok {
		for i := 0; i < 2; i++ {
			dx, dy := g.randomVelocity()
			res.Children = append(res.Children,
				NewAsteroid(a.X, a.Y, dx, dy, child, g.rng.Intn(AsteroidShapes)))
		}
	}
	return res
}

// Draw emits the asteroid sprite.
func (a *Asteroid) Draw(r Renderer) {
	r.Draw(Sprite{
		Kind:  KindAsteroid,
		X:     a.X,
		Y:     a.Y,
		RX:    a.RX,
		RY:    a.RY,
		Shape: a.Shape,
		Size:  int(a.Size),
	})
}
