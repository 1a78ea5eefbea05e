package game

import (
	"log"
	"math/rand"
	"time"

	"space-rocks/internal/config"
	"space-rocks/internal/highscore"
)

// Options carries the collaborators a Game needs. Zero values are replaced
// with sensible defaults.
type Options struct {
	Clock Clock
	Store highscore.Store
	Rand  *rand.Rand
}

// Game owns every entity list and the session state. It is driven by Tick
// and is not safe for concurrent use; Engine adds locking.
type Game struct {
	cfg   config.GameConfig
	clock Clock
	rng   *rand.Rand
	store highscore.Store
	table *highscore.Table
	sched *Scheduler

	now       int64
	tickCount uint64
	mode      Mode
	epoch     uint64 // Bumped on every mode change; stale timers compare against it

	score         int
	scoreInterval int // Points accrued toward the next extra life
	lives         int

	ship       *Ship
	bullets    []*Bullet // Ship bullets, bounded by MaxShipBullets
	asteroids  []*Asteroid
	saucer     *Saucer
	explosions []*Explosion

	lastAsteroidKill int64
	saucerDue        int64
	respawn          TimerHandle

	// Intro
	showPrompt bool
	nextPrompt int64
	showTable  bool
	nextTable  int64

	// GameOver
	gameOverUntil int64

	// HighScoreEntry
	entry nameEntry

	events []Event
}

// New creates a game in Intro mode.
func New(cfg config.GameConfig, opts Options) *Game {
	if opts.Clock == nil {
		opts.Clock = NewSystemClock()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Store == nil {
		opts.Store = highscore.NewMemoryStore()
	}

	entries, err := opts.Store.Load()
	if err != nil {
		log.Printf("⚠️ High score table unreadable, starting empty: %v", err)
		entries = nil
	}

	g := &Game{
		cfg:        cfg,
		clock:      opts.Clock,
		rng:        opts.Rand,
		store:      opts.Store,
		table:      highscore.NewTable(cfg.HighScoreSlots, entries),
		sched:      NewScheduler(),
		bullets:    make([]*Bullet, 0, cfg.MaxShipBullets),
		asteroids:  make([]*Asteroid, 0, 64),
		explosions: make([]*Explosion, 0, 16),
	}
	g.now = g.clock.Now()
	g.saucerDue = g.now + cfg.SaucerIntervalMs
	g.enterIntro(false)
	return g
}

// Tick runs one simulation step. The order is fixed: timers, explosions,
// asteroids, bullets, saucer, ship, mode, spawner.
func (g *Game) Tick(in Input, r Renderer) {
	if r == nil {
		r = nopRenderer{}
	}
	g.now = g.clock.Now()
	g.tickCount++
	ctl := pollInput(in)

	g.sched.Run(g.now)

	r.Clear()
	g.explosions = updateEntities(g, g.explosions, r)
	g.asteroids = updateEntities(g, g.asteroids, r)
	g.updateBullets(r)
	g.updateSaucer(r)
	g.updateShip(ctl, r)
	g.updateMode(ctl, r)
	g.spawn()
}

// updateBullets moves both bullet queues and resolves their hits.
// The saucer's queue is read after the ship's since a ship bullet may
// destroy the saucer.
func (g *Game) updateBullets(r Renderer) {
	g.bullets = g.tickBullets(g.bullets, r)
	if g.saucer != nil {
		g.saucer.Bullets = g.tickBullets(g.saucer.Bullets, r)
	}
}

func (g *Game) tickBullets(list []*Bullet, r Renderer) []*Bullet {
	for i := 0; i < len(list); i++ {
		b := list[i]
		if b.Tick(g) || g.resolveBullet(b) {
			list = deleteBullet(list, i)
			i--
			continue
		}
		b.Draw(r)
	}
	return list
}

func deleteBullet(list []*Bullet, i int) []*Bullet {
	copy(list[i:], list[i+1:])
	list[len(list)-1] = nil
	return list[:len(list)-1]
}

func (g *Game) updateSaucer(r Renderer) {
	s := g.saucer
	if s == nil {
		return
	}
	if s.Tick(g) {
		// Departed without being hit.
		g.saucer = nil
		g.saucerDue = g.now + g.cfg.SaucerIntervalMs
		return
	}
	s.Draw(r)
}

// updateShip applies the held controls, moves the ship and checks for a
// collision with a rock or the saucer.
func (g *Game) updateShip(ctl controls, r Renderer) {
	s := g.ship
	if s == nil || g.mode != ModePlaying {
		return
	}

	if ctl.left {
		s.Rotate(g.cfg.RotateStep)
	}
	if ctl.right {
		s.Rotate(-g.cfg.RotateStep)
	}
	s.Thrusting = ctl.thrust
	if ctl.thrust {
		s.Thrust(g.cfg.ThrustAccel, g.cfg.MaxShipSpeed)
	}
	if ctl.hyperspace {
		s.Hyperspace(g.rng.Float64()*g.cfg.Width, g.rng.Float64()*g.cfg.Height)
		g.emit(EventTypeHyperspace, ShipPayload{X: s.X, Y: s.Y, Lives: g.lives})
	}
	if ctl.fire {
		if b := s.Fire(g.now, g.cfg.FireCooldownMs, g.cfg.BulletSpeed); b != nil {
			b.X = Wrap(b.X, g.cfg.Width)
			b.Y = Wrap(b.Y, g.cfg.Height)
			g.bullets = pushBullet(g.bullets, b, g.cfg.MaxShipBullets)
			g.emit(EventTypeShipFired, nil)
		}
	}

	s.Tick(g)

	for i, a := range g.asteroids {
		if s.Overlaps(&a.Body) {
			g.destroyAsteroid(i, true)
			g.killShip()
			return
		}
	}
	if g.saucer != nil && s.Overlaps(&g.saucer.Body) {
		g.destroySaucer(true)
		g.killShip()
		return
	}
	s.Draw(r)
}

// addScore credits points. Points only count while a game is in progress.
func (g *Game) addScore(points int) {
	if g.mode != ModePlaying || points <= 0 {
		return
	}
	g.score += points
	g.scoreInterval += points
}

// randomVelocity returns a velocity with each component uniform in
// [-MaxAsteroidSpeed, MaxAsteroidSpeed].
func (g *Game) randomVelocity() (float64, float64) {
	v := g.cfg.MaxAsteroidSpeed
	return (g.rng.Float64()*2 - 1) * v, (g.rng.Float64()*2 - 1) * v
}

// Accessors. These are read by the engine while it holds its lock.

// Mode returns the current mode.
func (g *Game) Mode() Mode { return g.mode }

// Score returns the current score.
func (g *Game) Score() int { return g.score }

// Lives returns the remaining lives.
func (g *Game) Lives() int { return g.lives }

// Now returns the game time of the last tick.
func (g *Game) Now() int64 { return g.now }

// Asteroids returns the live asteroid list. Callers must not modify it.
func (g *Game) Asteroids() []*Asteroid { return g.asteroids }

// Bullets returns the ship's bullet queue. Callers must not modify it.
func (g *Game) Bullets() []*Bullet { return g.bullets }

// HighScores returns the table rows, highest first.
func (g *Game) HighScores() []highscore.Entry { return g.table.Entries() }

// HighScore returns the best score on the table.
func (g *Game) HighScore() int {
	if best := g.table.Best(); best > g.score {
		return best
	}
	return g.score
}
