package game

import "slices"

// Kind tags the entity variant a sprite was produced from.
type Kind uint8

const (
	KindShip Kind = iota
	KindBullet
	KindAsteroid
	KindSaucer
	KindDebris
)

// String returns human-readable kind
func (k Kind) String() string {
	switch k {
	case KindShip:
		return "ship"
	case KindBullet:
		return "bullet"
	case KindAsteroid:
		return "asteroid"
	case KindSaucer:
		return "saucer"
	case KindDebris:
		return "debris"
	default:
		return "unknown"
	}
}

// Sprite is the draw descriptor handed to a Renderer.
// Size carries the asteroid tier (1..3) or saucer size (1 small, 2 large).
type Sprite struct {
	Kind      Kind    `json:"kind"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Heading   float64 `json:"heading,omitempty"` // Degrees, ship only
	RX        float64 `json:"rx"`
	RY        float64 `json:"ry"`
	Shape     int     `json:"shape,omitempty"` // Outline profile, asteroids only
	Size      int     `json:"size,omitempty"`
	Thrusting bool    `json:"thrusting,omitempty"`
	Hostile   bool    `json:"hostile,omitempty"` // Bullet fired by a saucer
}

// HitResult collects the side effects of destroying an entity.
// The caller applies them to the game; entities never touch shared lists.
type HitResult struct {
	Points    int
	Children  []*Asteroid
	Explosion *Explosion
}

// Entity is the behavior every live object provides.
// Tick advances one step and reports whether the entity is finished.
type Entity interface {
	Tick(g *Game) bool
	Hit(g *Game) HitResult
	Contains(x, y float64) bool
	Draw(r Renderer)
}

// updateEntities ticks and draws a list, dropping entries that finished.
// Removal decrements the index so the element shifted into the slot is
// still processed this tick.
func updateEntities[T Entity](g *Game, list []T, r Renderer) []T {
	for i := 0; i < len(list); i++ {
		if list[i].Tick(g) {
			list = slices.Delete(list, i, i+1)
			i--
			continue
		}
		list[i].Draw(r)
	}
	return list
}
