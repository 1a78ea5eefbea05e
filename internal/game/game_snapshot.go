package game

import (
	"sync/atomic"
	"time"
)

// ResourceLimits caps how much a single frame may carry.
type ResourceLimits struct {
	MaxSprites int // Per frame sprite limit
	MaxTexts   int // Per frame text limit
}

// DefaultLimits provides production-safe default limits
var DefaultLimits = ResourceLimits{
	MaxSprites: 512,
	MaxTexts:   32,
}

// GameSnapshot is a complete game frame for rendering and the API.
// All slices are pre-allocated and capped.
type GameSnapshot struct {
	Sequence   uint64    `json:"sequence"`  // Monotonic sequence for ordering
	Timestamp  time.Time `json:"timestamp"` // When snapshot was created
	TickNumber uint64    `json:"tick"`      // Game tick this represents
	GameTime   int64     `json:"gameTime"`  // Game clock (ms)

	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Mode      string `json:"mode"`
	Score     int    `json:"score"`
	HighScore int    `json:"highScore"`
	Lives     int    `json:"lives"`

	Sprites []Sprite `json:"sprites"`
	Texts   []Text   `json:"texts"`

	// Aggregate stats
	AsteroidCount int  `json:"asteroidCount"`
	BulletCount   int  `json:"bulletCount"`
	ShipAlive     bool `json:"shipAlive"`
	SaucerAlive   bool `json:"saucerAlive"`
	Dropped       int  `json:"dropped,omitempty"` // Draws discarded by the caps
}

// Clone returns a deep copy that is safe to hold past the next tick.
func (s *GameSnapshot) Clone() *GameSnapshot {
	c := *s
	c.Sprites = append([]Sprite(nil), s.Sprites...)
	c.Texts = append([]Text(nil), s.Texts...)
	return &c
}

// SnapshotPool pre-allocates snapshots to avoid GC pressure
// Uses triple buffering; the engine lock serializes writers and readers.
type SnapshotPool struct {
	snapshots [3]GameSnapshot // Triple buffer
	writeIdx  uint32          // atomic - producer index
	readIdx   uint32          // atomic - consumer index
	sequence  uint64          // atomic - monotonic sequence
}

// NewSnapshotPool creates a pool with pre-allocated slices
func NewSnapshotPool(limits ResourceLimits) *SnapshotPool {
	pool := &SnapshotPool{}

	for i := 0; i < 3; i++ {
		pool.snapshots[i] = GameSnapshot{
			Sprites: make([]Sprite, 0, limits.MaxSprites),
			Texts:   make([]Text, 0, limits.MaxTexts),
		}
	}

	return pool
}

// AcquireWrite gets the next write slot (producer only, called from game tick)
// Returns a snapshot with reset slices but preserved capacity
func (p *SnapshotPool) AcquireWrite() *GameSnapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % 3
	snap := &p.snapshots[idx]

	snap.Sprites = snap.Sprites[:0]
	snap.Texts = snap.Texts[:0]
	snap.Dropped = 0

	snap.Sequence = atomic.AddUint64(&p.sequence, 1)
	snap.Timestamp = time.Now()

	return snap
}

// PublishWrite marks write complete and advances read pointer
// Called after snapshot is fully populated
func (p *SnapshotPool) PublishWrite() {
	atomic.StoreUint32(&p.readIdx, atomic.LoadUint32(&p.writeIdx))
}

// AcquireRead gets the latest complete snapshot
func (p *SnapshotPool) AcquireRead() *GameSnapshot {
	idx := atomic.LoadUint32(&p.readIdx) % 3
	return &p.snapshots[idx]
}

// snapshotRenderer records a frame into a snapshot, honoring the caps.
type snapshotRenderer struct {
	snap   *GameSnapshot
	limits ResourceLimits
}

func (r *snapshotRenderer) Clear() {
	r.snap.Sprites = r.snap.Sprites[:0]
	r.snap.Texts = r.snap.Texts[:0]
}

func (r *snapshotRenderer) Draw(s Sprite) {
	if len(r.snap.Sprites) >= r.limits.MaxSprites {
		r.snap.Dropped++
		return
	}
	r.snap.Sprites = append(r.snap.Sprites, s)
}

func (r *snapshotRenderer) DrawText(t Text) {
	if len(r.snap.Texts) >= r.limits.MaxTexts {
		r.snap.Dropped++
		return
	}
	r.snap.Texts = append(r.snap.Texts, t)
}

// fillStats copies the session state into snap.
func (g *Game) fillStats(snap *GameSnapshot) {
	snap.TickNumber = g.tickCount
	snap.GameTime = g.now
	snap.Width = g.cfg.Width
	snap.Height = g.cfg.Height
	snap.Mode = g.mode.String()
	snap.Score = g.score
	snap.HighScore = g.HighScore()
	snap.Lives = g.lives
	snap.AsteroidCount = len(g.asteroids)
	snap.BulletCount = len(g.bullets)
	if g.saucer != nil {
		snap.BulletCount += len(g.saucer.Bullets)
	}
	snap.ShipAlive = g.ship != nil
	snap.SaucerAlive = g.saucer != nil
}
