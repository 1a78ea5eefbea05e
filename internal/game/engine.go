package game

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"space-rocks/internal/config"
	"space-rocks/internal/highscore"
	"space-rocks/internal/input"
)

// EngineConfig configures an Engine.
type EngineConfig struct {
	Game   config.GameConfig
	Store  highscore.Store
	Clock  Clock
	Seed   int64 // 0 picks a time-based seed
	Limits ResourceLimits
}

// TickStats summarizes one tick for metrics callbacks.
type TickStats struct {
	Duration    time.Duration
	Mode        Mode
	Score       int
	Lives       int
	Asteroids   int
	Bullets     int
	Explosions  int
	SaucerAlive bool
	Thrusting   bool
	Dropped     int
}

// Engine runs a Game on a fixed-rate ticker and publishes snapshots for
// concurrent readers (HTTP, WebSocket, renderers).
type Engine struct {
	mu   sync.RWMutex
	game *Game

	controls *input.Controls

	tickRate int
	running  bool
	ticker   *time.Ticker
	stopChan chan struct{}

	// DoS Protection: Resource limits
	limits ResourceLimits

	// Snapshot system for render separation
	snapshotPool *SnapshotPool

	// Event sourcing for replay and debugging
	eventLog *EventLog

	// Callbacks, invoked outside the lock
	onEvent func(Event)
	onTick  func(TickStats)

	rngSeed int64
}

// NewEngine creates a new game engine
func NewEngine(cfg EngineConfig) *Engine {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	limits := cfg.Limits
	if limits.MaxSprites <= 0 || limits.MaxTexts <= 0 {
		limits = DefaultLimits
	}
	tickRate := cfg.Game.TickRate
	if tickRate <= 0 {
		tickRate = 60
	}

	g := New(cfg.Game, Options{
		Clock: cfg.Clock,
		Store: cfg.Store,
		Rand:  rand.New(rand.NewSource(seed)),
	})

	return &Engine{
		game:         g,
		controls:     input.NewControls(),
		tickRate:     tickRate,
		stopChan:     make(chan struct{}),
		limits:       limits,
		snapshotPool: NewSnapshotPool(limits),
		eventLog:     NewEventLog(),
		rngSeed:      seed,
	}
}

// Start begins the game loop
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.mu.Unlock()

	e.ticker = time.NewTicker(time.Second / time.Duration(e.tickRate))

	go func() {
		for {
			select {
			case <-e.ticker.C:
				e.tick()
			case <-e.stopChan:
				return
			}
		}
	}()

	log.Printf("🎮 Game engine started at %d TPS (seed %d)", e.tickRate, e.rngSeed)
}

// Stop stops the game loop
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.running {
		return
	}

	e.running = false
	if e.ticker != nil {
		e.ticker.Stop()
	}
	close(e.stopChan)
	log.Println("🛑 Game engine stopped")
}

// tick advances the game once and publishes the frame.
func (e *Engine) tick() {
	start := time.Now()

	e.mu.Lock()
	snap := e.snapshotPool.AcquireWrite()
	e.game.Tick(e.controls, &snapshotRenderer{snap: snap, limits: e.limits})
	e.game.fillStats(snap)
	e.snapshotPool.PublishWrite()

	events := e.game.DrainEvents()
	stats := TickStats{
		Mode:        e.game.mode,
		Score:       e.game.score,
		Lives:       e.game.lives,
		Asteroids:   snap.AsteroidCount,
		Bullets:     snap.BulletCount,
		Explosions:  len(e.game.explosions),
		SaucerAlive: snap.SaucerAlive,
		Thrusting:   e.game.ship != nil && e.game.ship.Thrusting,
		Dropped:     snap.Dropped,
	}
	onEvent, onTick := e.onEvent, e.onTick
	e.mu.Unlock()

	for _, ev := range events {
		e.eventLog.Emit(ev)
		if onEvent != nil {
			onEvent(ev)
		}
	}
	if onTick != nil {
		stats.Duration = time.Since(start)
		onTick(stats)
	}
}

// Step runs a single tick synchronously. Useful when the caller owns the
// clock, as in tests and replays.
func (e *Engine) Step() {
	e.tick()
}

// SetCallbacks sets event callbacks
func (e *Engine) SetCallbacks(onEvent func(Event), onTick func(TickStats)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onEvent = onEvent
	e.onTick = onTick
}

// Controls returns the shared input state.
func (e *Engine) Controls() *input.Controls {
	return e.controls
}

// GetSnapshot returns a copy of the latest published frame.
func (e *Engine) GetSnapshot() *GameSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotPool.AcquireRead().Clone()
}

// HighScores returns the high-score table, highest first.
func (e *Engine) HighScores() []highscore.Entry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.game.HighScores()
}

// Mode returns the current game mode.
func (e *Engine) Mode() Mode {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.game.mode
}

// StartEventLog initializes the event logging system
func (e *Engine) StartEventLog(filePath string) error {
	return e.eventLog.Start(filePath)
}

// StopEventLog gracefully stops the event logging system
func (e *Engine) StopEventLog() {
	e.eventLog.Stop()
}

// GetEventLogStats returns event log statistics for monitoring
func (e *Engine) GetEventLogStats() map[string]interface{} {
	return e.eventLog.GetStats()
}

// GetLimits returns the current resource limits
func (e *Engine) GetLimits() ResourceLimits {
	return e.limits
}
