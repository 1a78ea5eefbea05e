package game

// BulletRadius is the half-extent used when drawing bullets. Bullets are
// treated as points for collision.
const BulletRadius = 2.0

// Bullet is a projectile fired by the ship or a saucer. Bullets have no
// lifetime; they leave play only when they hit something or are pushed out
// of their bounded queue.
type Bullet struct {
	Body
	FiredBySaucer bool
	Dead          bool
}

// NewBullet creates a bullet at (x, y) moving (dx, dy) per tick.
func NewBullet(x, y, dx, dy float64, bySaucer bool) *Bullet {
	return &Bullet{
		Body:          Body{X: x, Y: y, DX: dx, DY: dy, RX: BulletRadius, RY: BulletRadius},
		FiredBySaucer: bySaucer,
	}
}

// Tick moves the bullet.
func (b *Bullet) Tick(g *Game) bool {
	b.Advance(g.cfg.Width, g.cfg.Height)
	return b.Dead
}

// Hit retires the bullet. Bullets carry no score.
func (b *Bullet) Hit(*Game) HitResult {
	b.Dead = true
	return HitResult{}
}

// Draw emits the bullet sprite.
func (b *Bullet) Draw(r Renderer) {
	r.Draw(Sprite{
		Kind:    KindBullet,
		X:       b.X,
		Y:       b.Y,
		RX:      b.RX,
		RY:      b.RY,
		Hostile: b.FiredBySaucer,
	})
}

// pushBullet appends b to a queue bounded at limit, evicting the oldest
// entries first.
func pushBullet(queue []*Bullet, b *Bullet, limit int) []*Bullet {
	if limit <= 0 {
		return queue
	}
	for len(queue) >= limit {
		queue[0].Dead = true
		copy(queue, queue[1:])
		queue[len(queue)-1] = nil
		queue = queue[:len(queue)-1]
	}
	return append(queue, b)
}
