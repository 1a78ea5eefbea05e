package game

// resolveBullet tests b against every target it may hit and applies the
// first hit found. Asteroids are tested first, then the saucer (ship
// bullets only), then the ship (saucer bullets only). Reports whether the
// bullet was consumed.
func (g *Game) resolveBullet(b *Bullet) bool {
	for i, a := range g.asteroids {
		if a.Contains(b.X, b.Y) {
			g.destroyAsteroid(i, !b.FiredBySaucer)
			b.Dead = true
			return true
		}
	}
	if !b.FiredBySaucer && g.saucer != nil && g.saucer.Contains(b.X, b.Y) {
		g.destroySaucer(true)
		b.Dead = true
		return true
	}
	if b.FiredBySaucer && g.ship != nil && g.mode == ModePlaying && g.ship.Contains(b.X, b.Y) {
		g.killShip()
		b.Dead = true
		return true
	}
	return false
}

// destroyAsteroid removes the asteroid at index i and applies its hit
// result: children join the list, an explosion starts, points are scored.
func (g *Game) destroyAsteroid(i int, byShip bool) {
	a := g.asteroids[i]
	res := a.Hit(g)

	copy(g.asteroids[i:], g.asteroids[i+1:])
	g.asteroids[len(g.asteroids)-1] = nil
	g.asteroids = g.asteroids[:len(g.asteroids)-1]
	g.asteroids = append(g.asteroids, res.Children...)

	g.explosions = append(g.explosions, res.Explosion)
	g.lastAsteroidKill = g.now
	if byShip {
		g.addScore(res.Points)
	}
	g.emit(EventTypeAsteroidDestroyed, AsteroidPayload{
		Size:   a.Size.String(),
		Points: res.Points,
		Score:  g.score,
		ByShip: byShip,
	})
}

// destroySaucer removes the saucer and restarts its spawn timer.
func (g *Game) destroySaucer(byShip bool) {
	s := g.saucer
	if s == nil {
		return
	}
	res := s.Hit(g)
	g.saucer = nil
	g.saucerDue = g.now + g.cfg.SaucerIntervalMs
	g.explosions = append(g.explosions, res.Explosion)
	if byShip {
		g.addScore(res.Points)
	}
	g.emit(EventTypeSaucerDestroyed, SaucerPayload{
		Size:   s.Size.String(),
		Points: res.Points,
		Score:  g.score,
	})
}

// killShip destroys the ship, clears its bullets and either schedules a
// respawn or ends the game.
func (g *Game) killShip() {
	s := g.ship
	if s == nil {
		return
	}
	res := s.Hit(g)
	g.ship = nil
	for i := range g.bullets {
		g.bullets[i] = nil
	}
	g.bullets = g.bullets[:0]
	g.explosions = append(g.explosions, res.Explosion)

	g.lives--
	g.emit(EventTypeShipDestroyed, ShipPayload{X: s.X, Y: s.Y, Lives: g.lives})
	if g.lives > 0 {
		g.scheduleRespawn(g.cfg.RespawnDelayMs)
		return
	}
	g.enterGameOver()
}
