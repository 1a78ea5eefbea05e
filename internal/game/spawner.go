package game

import "log"

// spawn runs the conditional population rules for the current mode.
func (g *Game) spawn() {
	switch g.mode {
	case ModeIntro:
		g.fillIntro()
		g.maybeSpawnSaucer()
	case ModePlaying:
		g.awardExtraLives()
		g.maybeSpawnWave()
		g.maybeSpawnSaucer()
	}
}

// fillIntro adds one rock per tick until the attract screen is populated.
// Rocks stop arriving while a saucer is on screen.
func (g *Game) fillIntro() {
	if g.saucer != nil || len(g.asteroids) >= g.cfg.IntroAsteroids {
		return
	}
	g.asteroids = append(g.asteroids, g.edgeAsteroid(AsteroidLarge))
}

// awardExtraLives grants one life per ExtraLifeScore points accrued,
// carrying the remainder.
func (g *Game) awardExtraLives() {
	if g.cfg.ExtraLifeScore <= 0 {
		return
	}
	for g.scoreInterval >= g.cfg.ExtraLifeScore {
		g.scoreInterval -= g.cfg.ExtraLifeScore
		g.lives++
		g.emit(EventTypeExtraLife, ExtraLifePayload{Lives: g.lives, Score: g.score})
	}
}

// maybeSpawnWave starts a new wave once the field is clear and the last
// kill is WaveDelayMs old.
func (g *Game) maybeSpawnWave() {
	if len(g.asteroids) > 0 || g.now-g.lastAsteroidKill < g.cfg.WaveDelayMs {
		return
	}
	n := g.cfg.MinAsteroids
	if span := g.cfg.MaxAsteroids - g.cfg.MinAsteroids; span > 0 {
		n += g.rng.Intn(span + 1)
	}
	for i := 0; i < n; i++ {
		g.asteroids = append(g.asteroids, g.edgeAsteroid(AsteroidLarge))
	}
	g.emit(EventTypeWave, WavePayload{Count: n})
}

// edgeAsteroid creates a rock on a random screen edge.
func (g *Game) edgeAsteroid(size AsteroidSize) *Asteroid {
	var x, y float64
	switch g.rng.Intn(4) {
	case 0: // top
		x, y = g.rng.Float64()*g.cfg.Width, 0
	case 1: // bottom
		x, y = g.rng.Float64()*g.cfg.Width, Wrap(g.cfg.Height-1, g.cfg.Height)
	case 2: // left
		x, y = 0, g.rng.Float64()*g.cfg.Height
	default: // right
		x, y = Wrap(g.cfg.Width-1, g.cfg.Width), g.rng.Float64()*g.cfg.Height
	}
	dx, dy := g.randomVelocity()
	return NewAsteroid(x, y, dx, dy, size, g.rng.Intn(AsteroidShapes))
}

// maybeSpawnSaucer brings in a saucer when none is alive and the interval
// has elapsed. Past SmallSaucerScore only small saucers appear.
func (g *Game) maybeSpawnSaucer() {
	if g.saucer != nil || g.now < g.saucerDue {
		return
	}
	size := SaucerLarge
	if g.score >= g.cfg.SmallSaucerScore || g.rng.Intn(2) == 0 {
		size = SaucerSmall
	}
	g.saucer = NewSaucer(g.rng.Float64()*g.cfg.Height, g.cfg.SaucerSpeed, size, g.now)
	g.saucerDue = g.now + g.cfg.SaucerIntervalMs
	g.emit(EventTypeSaucerSpawned, SaucerPayload{Size: size.String(), Score: g.score})
}

// spawnShip places the ship at the center if no rock or saucer covers
// that point. Otherwise it retries after RespawnRetryMs.
func (g *Game) spawnShip() bool {
	cx, cy := g.cfg.Width/2, g.cfg.Height/2
	if !g.isClear(cx, cy) {
		g.scheduleRespawn(g.cfg.RespawnRetryMs)
		return false
	}
	g.ship = NewShip(cx, cy, g.cfg.ShipRadius, g.now, g.cfg.FireCooldownMs)
	g.emit(EventTypeShipSpawned, ShipPayload{X: cx, Y: cy, Lives: g.lives})
	return true
}

func (g *Game) isClear(x, y float64) bool {
	for _, a := range g.asteroids {
		if a.Contains(x, y) {
			return false
		}
	}
	return g.saucer == nil || !g.saucer.Contains(x, y)
}

// scheduleRespawn arms the respawn timer, replacing any pending one. The
// timer is ignored if the mode changed in the meantime.
func (g *Game) scheduleRespawn(delay int64) {
	g.cancelRespawn()
	epoch := g.epoch
	g.respawn = g.sched.Schedule(g.now+delay, func() {
		g.respawn = 0
		if g.epoch != epoch || g.mode != ModePlaying || g.ship != nil {
			log.Printf("⏭️ Dropping stale respawn")
			return
		}
		g.spawnShip()
	})
}

func (g *Game) cancelRespawn() {
	if g.respawn != 0 {
		g.sched.Cancel(g.respawn)
		g.respawn = 0
	}
}

// RespawnPending reports whether a respawn is scheduled.
func (g *Game) RespawnPending() bool {
	return g.respawn != 0 && g.sched.Pending(g.respawn)
}
