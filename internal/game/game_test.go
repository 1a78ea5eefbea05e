package game

import (
	"math"
	"math/rand"
	"testing"

	"space-rocks/internal/config"
	"space-rocks/internal/highscore"
)

// fakeInput is a scripted Input. Press fields clear when read.
type fakeInput struct {
	left, right, thrust, fire  bool
	confirm, hyperspace, start bool
}

func (f *fakeInput) RotateLeft() bool  { return f.left }
func (f *fakeInput) RotateRight() bool { return f.right }
func (f *fakeInput) Thrust() bool      { return f.thrust }
func (f *fakeInput) Fire() bool        { return f.fire }

func (f *fakeInput) ConfirmPressed() bool {
	v := f.confirm
	f.confirm = false
	return v
}

func (f *fakeInput) HyperspacePressed() bool {
	v := f.hyperspace
	f.hyperspace = false
	return v
}

func (f *fakeInput) StartPressed() bool {
	v := f.start
	f.start = false
	return v
}

func newTestGame(t *testing.T, seed int64) (*Game, *ManualClock, *highscore.MemoryStore) {
	t.Helper()
	clock := &ManualClock{T: 1000}
	store := highscore.NewMemoryStore()
	g := New(config.DefaultGame(), Options{
		Clock: clock,
		Store: store,
		Rand:  rand.New(rand.NewSource(seed)),
	})
	return g, clock, store
}

// startPlaying starts a game and clears the first wave so tests control
// the field.
func startPlaying(t *testing.T, g *Game) {
	t.Helper()
	g.startGame()
	if g.ship == nil {
		t.Fatal("Expected ship after start")
	}
	g.asteroids = g.asteroids[:0]
	g.lastAsteroidKill = g.now
}

func TestWrap(t *testing.T) {
	tests := []struct {
		v, m, want float64
	}{
		{5, 100, 5},
		{100, 100, 0},
		{-5, 100, 95},
		{250, 100, 50},
		{-1e-18, 100, 0},
		{1e12 + 3, 100, 3},
	}
	for _, tt := range tests {
		got := Wrap(tt.v, tt.m)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Wrap(%v, %v) = %v, want %v", tt.v, tt.m, got, tt.want)
		}
		if got < 0 || got >= tt.m {
			t.Errorf("Wrap(%v, %v) = %v is outside [0, m)", tt.v, tt.m, got)
		}
	}
}

func TestBodyContainsInclusive(t *testing.T) {
	b := Body{X: 50, Y: 50, RX: 10, RY: 5}
	if !b.Contains(60, 55) {
		t.Error("Corner of the box should be contained")
	}
	if b.Contains(60.01, 50) {
		t.Error("Point past the right edge should not be contained")
	}
}

func TestAsteroidSplitConservation(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		g, _, _ := newTestGame(t, seed)
		a := NewAsteroid(300, 200, 1, 1, AsteroidLarge, 0)
		res := a.Hit(g)

		if res.Points != 20 {
			t.Fatalf("Large asteroid should score 20, got %d", res.Points)
		}
		if len(res.Children) != 2 {
			t.Fatalf("Large asteroid should split into 2, got %d", len(res.Children))
		}
		for _, c := range res.Children {
			if c.Size != AsteroidMedium {
				t.Errorf("Expected medium child, got %s", c.Size)
			}
			if c.X != a.X || c.Y != a.Y {
				t.Errorf("Child should start at parent position, got (%v, %v)", c.X, c.Y)
			}
			if math.Abs(c.DX) > g.cfg.MaxAsteroidSpeed || math.Abs(c.DY) > g.cfg.MaxAsteroidSpeed {
				t.Errorf("Child velocity (%v, %v) exceeds bound", c.DX, c.DY)
			}
		}

		small := NewAsteroid(0, 0, 0, 0, AsteroidSmall, 1).Hit(g)
		if len(small.Children) != 0 || small.Points != 100 {
			t.Errorf("Small asteroid: children=%d points=%d", len(small.Children), small.Points)
		}
		if res.Explosion == nil || len(res.Explosion.Debris) != g.cfg.DebrisCount {
			t.Error("Hit should produce an explosion with full debris")
		}
	}
}

func TestPointsOnlyWhilePlaying(t *testing.T) {
	g, _, _ := newTestGame(t, 1)
	g.asteroids = append(g.asteroids, NewAsteroid(100, 100, 0, 0, AsteroidSmall, 0))
	g.destroyAsteroid(0, true)
	if g.score != 0 {
		t.Errorf("Intro kill should not score, got %d", g.score)
	}

	startPlaying(t, g)
	g.asteroids = append(g.asteroids, NewAsteroid(100, 100, 0, 0, AsteroidMedium, 0))
	g.destroyAsteroid(0, true)
	if g.score != 50 {
		t.Errorf("Expected 50 points, got %d", g.score)
	}
	if len(g.asteroids) != 2 {
		t.Errorf("Expected 2 children in play, got %d", len(g.asteroids))
	}
}

func TestExtraLifeCarriesRemainder(t *testing.T) {
	g, _, _ := newTestGame(t, 1)
	startPlaying(t, g)
	lives := g.lives

	g.addScore(10050)
	g.awardExtraLives()

	if g.lives != lives+1 {
		t.Errorf("Expected %d lives, got %d", lives+1, g.lives)
	}
	if g.scoreInterval != 50 {
		t.Errorf("Expected remainder 50, got %d", g.scoreInterval)
	}

	g.addScore(20000)
	g.awardExtraLives()
	if g.lives != lives+3 {
		t.Errorf("Expected one life per 10000 crossed, got %d lives", g.lives)
	}
}

func TestBulletImmunity(t *testing.T) {
	g, _, _ := newTestGame(t, 1)
	startPlaying(t, g)
	g.saucer = NewSaucer(400, 2, SaucerLarge, g.now)

	own := NewBullet(g.saucer.X, g.saucer.Y, 0, 0, true)
	if g.resolveBullet(own) {
		t.Error("Saucer bullet must not hit its saucer")
	}

	shipShot := NewBullet(g.ship.X, g.ship.Y, 0, 0, false)
	if g.resolveBullet(shipShot) {
		t.Error("Ship bullet must not hit the ship")
	}

	hostile := NewBullet(g.ship.X, g.ship.Y, 0, 0, true)
	if !g.resolveBullet(hostile) {
		t.Error("Saucer bullet should hit the ship")
	}
	if g.ship != nil {
		t.Error("Ship should be destroyed")
	}
}

func TestSaucerShotAsteroidScoresNothing(t *testing.T) {
	g, _, _ := newTestGame(t, 1)
	startPlaying(t, g)
	g.ship.X, g.ship.Y = 50, 50
	g.asteroids = append(g.asteroids, NewAsteroid(600, 400, 0, 0, AsteroidLarge, 0))

	if !g.resolveBullet(NewBullet(600, 400, 0, 0, true)) {
		t.Fatal("Saucer bullet should hit the asteroid")
	}
	if g.score != 0 {
		t.Errorf("Saucer kills should not score, got %d", g.score)
	}
	if len(g.asteroids) != 2 {
		t.Errorf("Asteroid should still split, got %d", len(g.asteroids))
	}
}

func TestShipDeathClearsBullets(t *testing.T) {
	g, _, _ := newTestGame(t, 1)
	startPlaying(t, g)
	g.bullets = append(g.bullets, NewBullet(10, 10, 1, 0, false), NewBullet(20, 20, 1, 0, false))

	g.killShip()

	if len(g.bullets) != 0 {
		t.Errorf("Expected ship bullets cleared, got %d", len(g.bullets))
	}
	if g.lives != g.cfg.StartLives-1 {
		t.Errorf("Expected %d lives, got %d", g.cfg.StartLives-1, g.lives)
	}
	if !g.RespawnPending() {
		t.Error("Expected respawn to be scheduled")
	}
}

func TestSafeRespawnRetries(t *testing.T) {
	g, clock, _ := newTestGame(t, 1)
	startPlaying(t, g)

	cx, cy := g.cfg.Width/2, g.cfg.Height/2
	g.asteroids = append(g.asteroids, NewAsteroid(cx, cy, 0, 0, AsteroidLarge, 0))
	g.killShip()

	clock.Advance(g.cfg.RespawnDelayMs)
	g.Tick(nil, nil)
	if g.ship != nil {
		t.Fatal("Ship must not spawn under an asteroid")
	}
	if !g.RespawnPending() {
		t.Fatal("Expected a retry to be scheduled")
	}

	g.asteroids = g.asteroids[:0]
	clock.Advance(g.cfg.RespawnRetryMs)
	g.Tick(nil, nil)
	if g.ship == nil {
		t.Fatal("Ship should spawn once the center is clear")
	}
	if g.ship.X != cx || g.ship.Y != cy {
		t.Errorf("Ship spawned at (%v, %v), want center", g.ship.X, g.ship.Y)
	}
}

func TestStaleRespawnIgnored(t *testing.T) {
	g, clock, _ := newTestGame(t, 1)
	startPlaying(t, g)
	g.killShip()
	g.enterGameOver()
	g.startGame()
	first := g.ship

	clock.Advance(g.cfg.RespawnDelayMs)
	g.Tick(nil, nil)
	if g.ship != first {
		t.Error("Respawn from the previous game should not replace the ship")
	}
	if g.RespawnPending() {
		t.Error("No respawn should remain pending")
	}
}

func TestRammingDestroysBoth(t *testing.T) {
	g, clock, _ := newTestGame(t, 1)
	startPlaying(t, g)
	g.asteroids = append(g.asteroids, NewAsteroid(g.ship.X, g.ship.Y, 0, 0, AsteroidLarge, 0))

	clock.Advance(16)
	g.Tick(nil, nil)

	if g.ship != nil {
		t.Error("Ship should be destroyed by the collision")
	}
	if g.lives != g.cfg.StartLives-1 {
		t.Errorf("Expected a life lost, got %d", g.lives)
	}
	if len(g.asteroids) != 2 {
		t.Errorf("Rammed asteroid should split, got %d asteroids", len(g.asteroids))
	}
	if g.score != AsteroidLarge.Points() {
		t.Errorf("Ramming should score, got %d", g.score)
	}
}

func TestFireRespectsCooldownAndQueue(t *testing.T) {
	g, clock, _ := newTestGame(t, 1)
	startPlaying(t, g)
	g.lastAsteroidKill = math.MaxInt64 / 2 // hold off the wave
	in := &fakeInput{fire: true}

	g.Tick(in, nil)
	if len(g.bullets) != 1 {
		t.Fatalf("Expected 1 bullet, got %d", len(g.bullets))
	}
	clock.Advance(50)
	g.Tick(in, nil)
	if len(g.bullets) != 1 {
		t.Errorf("Cooldown should block a second shot, got %d", len(g.bullets))
	}

	for i := 0; i < 20; i++ {
		clock.Advance(g.cfg.FireCooldownMs + 1)
		g.Tick(in, nil)
		if len(g.bullets) > g.cfg.MaxShipBullets {
			t.Fatalf("Bullet queue exceeded %d: %d", g.cfg.MaxShipBullets, len(g.bullets))
		}
	}
	if len(g.bullets) != g.cfg.MaxShipBullets {
		t.Errorf("Expected a full queue of %d, got %d", g.cfg.MaxShipBullets, len(g.bullets))
	}
}

func TestFireCooldownBoundary(t *testing.T) {
	s := NewShip(100, 100, 15, 1000, 100)
	if s.Fire(1000, 100, 10) == nil {
		t.Fatal("A new ship should fire at once")
	}
	if s.Fire(1099, 100, 10) != nil {
		t.Error("Shot at 99 ms should be blocked")
	}
	if s.Fire(1100, 100, 10) == nil {
		t.Error("Shot at exactly 100 ms should fire")
	}
}

func TestBulletVelocityInheritsShip(t *testing.T) {
	s := NewShip(100, 100, 15, 0, 100)
	s.DX, s.DY = 1, 2
	b := s.Fire(1000, 100, 10)
	if b == nil {
		t.Fatal("Expected a bullet")
	}
	// Heading 90 faces up in screen coordinates.
	if math.Abs(b.DX-1) > 1e-9 || math.Abs(b.DY-(-10+2)) > 1e-9 {
		t.Errorf("Bullet velocity = (%v, %v), want (1, -8)", b.DX, b.DY)
	}
	if math.Abs(b.Y-85) > 1e-9 {
		t.Errorf("Bullet should leave from the nose, got y=%v", b.Y)
	}
}

func TestShipControls(t *testing.T) {
	s := NewShip(0, 0, 15, 0, 100)
	s.Rotate(-95)
	if s.Heading != 355 {
		t.Errorf("Expected heading 355, got %v", s.Heading)
	}
	s.Heading = 0
	s.Thrust(0.5, 1)
	s.Thrust(0.5, 1)
	s.Thrust(0.5, 1)
	if v := s.Speed(); math.Abs(v-1) > 1e-9 {
		t.Errorf("Speed should be capped at 1, got %v", v)
	}
	s.Hyperspace(10, 20)
	if s.DX != 0 || s.DY != 0 || s.X != 10 || s.Y != 20 {
		t.Errorf("Hyperspace should relocate and stop, got %+v", s.Body)
	}
}

func TestIntroFillsToTarget(t *testing.T) {
	g, clock, _ := newTestGame(t, 3)
	for i := 0; i < 30; i++ {
		before := len(g.asteroids)
		clock.Advance(16)
		g.Tick(nil, nil)
		if len(g.asteroids) > g.cfg.IntroAsteroids {
			t.Fatalf("Intro population exceeded %d", g.cfg.IntroAsteroids)
		}
		if before < g.cfg.IntroAsteroids && len(g.asteroids) <= before {
			t.Fatalf("Tick %d: expected population to grow from %d", i, before)
		}
	}
	if len(g.asteroids) != g.cfg.IntroAsteroids {
		t.Errorf("Expected %d asteroids, got %d", g.cfg.IntroAsteroids, len(g.asteroids))
	}
}

func TestIntroFillPausedBySaucer(t *testing.T) {
	g, clock, _ := newTestGame(t, 3)
	g.saucer = NewSaucer(100, 2, SaucerLarge, g.now)
	clock.Advance(16)
	g.Tick(nil, nil)
	if len(g.asteroids) != 0 {
		t.Errorf("No asteroids should arrive while a saucer is on screen, got %d", len(g.asteroids))
	}
}

func TestWaveAfterDelay(t *testing.T) {
	g, clock, _ := newTestGame(t, 5)
	startPlaying(t, g)

	clock.Advance(g.cfg.WaveDelayMs - 1)
	g.Tick(nil, nil)
	if len(g.asteroids) != 0 {
		t.Fatalf("Wave arrived early with %d asteroids", len(g.asteroids))
	}

	clock.Advance(1)
	g.Tick(nil, nil)
	n := len(g.asteroids)
	if n < g.cfg.MinAsteroids || n > g.cfg.MaxAsteroids {
		t.Errorf("Wave size %d outside [%d, %d]", n, g.cfg.MinAsteroids, g.cfg.MaxAsteroids)
	}
	for _, a := range g.asteroids {
		if a.Size != AsteroidLarge {
			t.Errorf("Wave should be large asteroids, got %s", a.Size)
		}
	}
}

func TestSmallSaucersOnlyAtHighScore(t *testing.T) {
	g, _, _ := newTestGame(t, 9)
	startPlaying(t, g)
	g.score = g.cfg.SmallSaucerScore

	for i := 0; i < 50; i++ {
		g.saucer = nil
		g.saucerDue = g.now
		g.maybeSpawnSaucer()
		if g.saucer == nil {
			t.Fatal("Expected a saucer")
		}
		if g.saucer.Size != SaucerSmall {
			t.Fatalf("Expected small saucer at score %d", g.score)
		}
	}
}

func TestSaucerDeparts(t *testing.T) {
	cfg := config.DefaultGame()
	cfg.Width = 100
	clock := &ManualClock{T: 1000}
	g := New(cfg, Options{Clock: clock, Rand: rand.New(rand.NewSource(2))})
	g.saucer = NewSaucer(50, 2, SaucerLarge, g.now)

	for i := 0; i < 50; i++ {
		clock.Advance(16)
		g.Tick(nil, nil)
	}
	if g.saucer != nil {
		t.Error("Saucer should leave after one world width")
	}
	if g.saucerDue <= g.now {
		t.Error("Saucer timer should restart on departure")
	}
}

func TestSaucerDeathDropsBullets(t *testing.T) {
	g, _, _ := newTestGame(t, 1)
	startPlaying(t, g)
	g.saucer = NewSaucer(300, 2, SaucerSmall, g.now)
	g.saucer.fire(g)
	if len(g.saucer.Bullets) != 1 {
		t.Fatalf("Expected saucer bullet, got %d", len(g.saucer.Bullets))
	}

	shot := NewBullet(g.saucer.X, g.saucer.Y, 0, 0, false)
	if !g.resolveBullet(shot) {
		t.Fatal("Ship bullet should hit the saucer")
	}
	if g.saucer != nil {
		t.Error("Saucer should be gone")
	}
	if g.score != SaucerSmall.Points() {
		t.Errorf("Expected %d points, got %d", SaucerSmall.Points(), g.score)
	}
}

func TestExplosionExpires(t *testing.T) {
	g, clock, _ := newTestGame(t, 1)
	g.explosions = append(g.explosions, g.newExplosion(100, 100))

	clock.Advance(g.cfg.ExplosionMs - 1)
	g.Tick(nil, nil)
	if len(g.explosions) != 1 {
		t.Fatal("Explosion ended early")
	}
	clock.Advance(1)
	g.Tick(nil, nil)
	if len(g.explosions) != 0 {
		t.Error("Explosion should have ended")
	}
}

func TestUpdateEntitiesVisitsShiftedElement(t *testing.T) {
	g, _, _ := newTestGame(t, 1)
	a := NewAsteroid(10, 10, 0, 0, AsteroidSmall, 0)
	b := NewAsteroid(20, 20, 0, 0, AsteroidSmall, 0)
	c := NewAsteroid(30, 30, 0, 0, AsteroidSmall, 0)
	a.Dead = true
	b.Dead = true

	rec := &FrameRecorder{}
	list := updateEntities(g, []*Asteroid{a, b, c}, rec)

	if len(list) != 1 || list[0] != c {
		t.Fatalf("Expected only the live asteroid to remain, got %d", len(list))
	}
	if rec.Count(KindAsteroid) != 1 {
		t.Errorf("Expected 1 asteroid drawn, got %d", rec.Count(KindAsteroid))
	}
}

func TestModeFlowWithHighScoreEntry(t *testing.T) {
	g, clock, store := newTestGame(t, 4)
	in := &fakeInput{start: true}

	clock.Advance(16)
	g.Tick(in, nil)
	if g.mode != ModePlaying {
		t.Fatalf("Expected playing, got %s", g.mode)
	}
	if g.lives != g.cfg.StartLives || g.ship == nil {
		t.Fatalf("New game should have %d lives and a ship", g.cfg.StartLives)
	}

	g.score = 500
	for g.mode == ModePlaying {
		if g.ship == nil {
			g.ship = NewShip(10, 10, g.cfg.ShipRadius, g.now, 0)
		}
		g.killShip()
	}
	if g.mode != ModeGameOver {
		t.Fatalf("Expected game over, got %s", g.mode)
	}

	clock.Advance(g.cfg.GameOverMs)
	g.Tick(nil, nil)
	if g.mode != ModeHighScoreEntry {
		t.Fatalf("Expected high score entry, got %s", g.mode)
	}

	// Hold left: one step immediately, another after the repeat delay.
	in = &fakeInput{left: true}
	clock.Advance(16)
	g.Tick(in, nil)
	clock.Advance(16)
	g.Tick(in, nil)
	clock.Advance(g.cfg.LetterRepeatMs)
	g.Tick(in, nil)
	if got := g.entry.letters[0]; got != 'c' {
		t.Errorf("Expected 'c' after two steps, got %q", got)
	}

	in = &fakeInput{confirm: true}
	g.Tick(in, nil)
	in = &fakeInput{right: true}
	clock.Advance(16)
	g.Tick(in, nil)
	in = &fakeInput{confirm: true}
	g.Tick(in, nil)
	in.confirm = true
	g.Tick(in, nil)

	if g.mode != ModeIntro {
		t.Fatalf("Expected intro after entry, got %s", g.mode)
	}
	entries := g.HighScores()
	if len(entries) != 1 || entries[0].Name != "cza" || entries[0].Score != 500 {
		t.Errorf("Unexpected table %v", entries)
	}
	if store.Saves != 1 {
		t.Errorf("Expected table saved once, got %d", store.Saves)
	}
	if !g.showTable {
		t.Error("Intro should show the table after an entry")
	}
	if g.score != 0 {
		t.Errorf("Intro score should be pinned at 0, got %d", g.score)
	}
}

func TestGameOverWithoutQualifying(t *testing.T) {
	clock := &ManualClock{T: 0}
	seed := make([]highscore.Entry, 0, 10)
	for i := 0; i < 10; i++ {
		seed = append(seed, highscore.Entry{Name: "aaa", Score: 1000})
	}
	g := New(config.DefaultGame(), Options{
		Clock: clock,
		Store: highscore.NewMemoryStore(seed...),
		Rand:  rand.New(rand.NewSource(1)),
	})
	startPlaying(t, g)
	g.score = 10
	g.lives = 1
	g.killShip()

	clock.Advance(g.cfg.GameOverMs)
	g.Tick(nil, nil)
	if g.mode != ModeIntro {
		t.Errorf("Non-qualifying score should return to intro, got %s", g.mode)
	}
}

func TestPromptBlinks(t *testing.T) {
	g, clock, _ := newTestGame(t, 1)
	rec := &FrameRecorder{}
	prompts := func() int {
		n := 0
		for _, txt := range rec.Texts {
			if txt.Kind == TextPrompt {
				n++
			}
		}
		return n
	}

	g.Tick(nil, rec)
	first := prompts()
	clock.Advance(g.cfg.PromptToggleMs)
	g.Tick(nil, rec)
	if prompts() == first {
		t.Error("Prompt should toggle after the blink interval")
	}
}

func TestEventsDrained(t *testing.T) {
	g, clock, _ := newTestGame(t, 1)
	clock.Advance(16)
	g.Tick(&fakeInput{start: true}, nil)

	events := g.DrainEvents()
	found := false
	for _, ev := range events {
		if ev.Type == EventTypeModeChange {
			found = true
		}
	}
	if !found {
		t.Error("Expected a mode change event")
	}
	if len(g.DrainEvents()) != 0 {
		t.Error("Second drain should be empty")
	}
}

type brokenStore struct{}

func (brokenStore) Load() ([]highscore.Entry, error) {
	return []highscore.Entry{{Name: "BAD", Score: 1}}, highscore.ErrCorrupt
}

func (brokenStore) Save([]highscore.Entry) error { return nil }

func TestCorruptStoreStartsEmpty(t *testing.T) {
	g := New(config.DefaultGame(), Options{
		Clock: &ManualClock{T: 1000},
		Store: brokenStore{},
		Rand:  rand.New(rand.NewSource(1)),
	})
	if n := len(g.HighScores()); n != 0 {
		t.Errorf("Expected empty table from a corrupt store, got %d entries", n)
	}
	if g.Mode() != ModeIntro {
		t.Errorf("Expected Intro, got %v", g.Mode())
	}
}
