package game

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"space-rocks/internal/highscore"
)

// Mode is the top-level game state.
type Mode uint8

const (
	ModeIntro Mode = iota
	ModePlaying
	ModeGameOver
	ModeHighScoreEntry
)

// String returns human-readable mode
func (m Mode) String() string {
	switch m {
	case ModeIntro:
		return "intro"
	case ModePlaying:
		return "playing"
	case ModeGameOver:
		return "game_over"
	case ModeHighScoreEntry:
		return "high_score_entry"
	default:
		return "unknown"
	}
}

// nameEntry is the initials editor state.
type nameEntry struct {
	letters  [highscore.NameLength]byte
	slot     int
	nextStep int64 // Earliest time a held rotate control advances the letter again
	rank     int
}

func (e *nameEntry) reset() {
	for i := range e.letters {
		e.letters[i] = 'a'
	}
	e.slot = 0
	e.nextStep = 0
	e.rank = 0
}

// step cycles the current letter through a..z in either direction.
func (e *nameEntry) step(delta int) {
	c := int(e.letters[e.slot]-'a') + delta
	c = ((c % 26) + 26) % 26
	e.letters[e.slot] = byte('a' + c)
}

func (e *nameEntry) name() string {
	return string(e.letters[:])
}

// setMode switches modes and invalidates timers armed in the previous one.
func (g *Game) setMode(m Mode) {
	if g.mode != m {
		g.emit(EventTypeModeChange, ModeChangePayload{From: g.mode.String(), To: m.String()})
	}
	g.mode = m
	g.epoch++
}

func (g *Game) enterIntro(showTable bool) {
	g.setMode(ModeIntro)
	g.score = 0
	g.scoreInterval = 0
	g.lives = 0
	g.ship = nil
	g.clearShipBullets()
	g.cancelRespawn()

	g.showPrompt = true
	g.nextPrompt = g.now + g.cfg.PromptToggleMs
	g.showTable = showTable
	g.nextTable = g.now + g.cfg.TableToggleMs
}

// startGame resets the session and places the first ship.
func (g *Game) startGame() {
	g.setMode(ModePlaying)
	g.score = 0
	g.scoreInterval = 0
	g.lives = g.cfg.StartLives

	for i := range g.asteroids {
		g.asteroids[i] = nil
	}
	g.asteroids = g.asteroids[:0]
	g.clearShipBullets()
	if g.saucer != nil {
		g.saucer = nil
	}
	g.saucerDue = g.now + g.cfg.SaucerIntervalMs
	// The first wave arrives on this tick's spawner pass.
	g.lastAsteroidKill = g.now - g.cfg.WaveDelayMs

	log.Printf("🚀 New game started with %d lives", g.lives)
	g.spawnShip()
}

func (g *Game) enterGameOver() {
	g.setMode(ModeGameOver)
	g.ship = nil
	g.cancelRespawn()
	g.gameOverUntil = g.now + g.cfg.GameOverMs
	log.Printf("💀 Game over with %d points", g.score)
}

func (g *Game) enterHighScoreEntry() {
	g.setMode(ModeHighScoreEntry)
	g.entry.reset()
	g.entry.rank = g.table.Rank(g.score)
}

// commitEntry writes the initials to the table and persists it.
func (g *Game) commitEntry() {
	name := g.entry.name()
	rank := g.table.Insert(highscore.Entry{Name: name, Score: g.score})
	if err := g.store.Save(g.table.Entries()); err != nil {
		log.Printf("⚠️ Failed to save high scores: %v", err)
	}
	g.emit(EventTypeHighScore, HighScorePayload{Name: name, Score: g.score, Rank: rank})
	log.Printf("🏆 High score #%d: %s %d", rank, name, g.score)
	g.enterIntro(true)
}

func (g *Game) clearShipBullets() {
	for i := range g.bullets {
		g.bullets[i] = nil
	}
	g.bullets = g.bullets[:0]
}

// updateMode runs the per-mode logic and draws the HUD.
func (g *Game) updateMode(ctl controls, r Renderer) {
	switch g.mode {
	case ModeIntro:
		g.updateIntro(ctl, r)
	case ModePlaying:
		g.drawHUD(r)
	case ModeGameOver:
		g.updateGameOver(r)
	case ModeHighScoreEntry:
		g.updateHighScoreEntry(ctl, r)
	}
}

func (g *Game) updateIntro(ctl controls, r Renderer) {
	if g.now >= g.nextPrompt {
		g.showPrompt = !g.showPrompt
		g.nextPrompt = g.now + g.cfg.PromptToggleMs
	}
	if g.now >= g.nextTable {
		g.showTable = !g.showTable
		g.nextTable = g.now + g.cfg.TableToggleMs
	}

	if ctl.start || ctl.confirm {
		g.startGame()
		g.drawHUD(r)
		return
	}

	g.drawScores(r)
	if g.showTable {
		g.drawTable(r)
	} else {
		r.DrawText(Text{Kind: TextBanner, Value: "SPACE ROCKS", Anchor: AnchorCenter})
	}
	if g.showPrompt {
		r.DrawText(Text{Kind: TextPrompt, Value: "PUSH START", Anchor: AnchorBottomCenter})
	}
}

func (g *Game) updateGameOver(r Renderer) {
	if g.now >= g.gameOverUntil {
		if g.table.Qualifies(g.score) {
			g.enterHighScoreEntry()
			g.drawEntry(r)
		} else {
			g.enterIntro(false)
			g.drawScores(r)
		}
		return
	}
	g.drawScores(r)
	r.DrawText(Text{Kind: TextBanner, Value: "GAME OVER", Anchor: AnchorCenter})
}

func (g *Game) updateHighScoreEntry(ctl controls, r Renderer) {
	e := &g.entry
	switch {
	case ctl.left == ctl.right:
		e.nextStep = 0
	case g.now >= e.nextStep:
		if ctl.left {
			e.step(1)
		} else {
			e.step(-1)
		}
		e.nextStep = g.now + g.cfg.LetterRepeatMs
	}

	if ctl.confirm {
		e.slot++
		e.nextStep = 0
		if e.slot >= len(e.letters) {
			g.commitEntry()
			g.drawScores(r)
			g.drawTable(r)
			return
		}
	}
	g.drawEntry(r)
}

func (g *Game) drawScores(r Renderer) {
	r.DrawText(Text{Kind: TextScore, Value: strconv.Itoa(g.score), Anchor: AnchorTopLeft})
	r.DrawText(Text{Kind: TextHighScore, Value: strconv.Itoa(g.HighScore()), Anchor: AnchorTopCenter})
}

func (g *Game) drawHUD(r Renderer) {
	g.drawScores(r)
	r.DrawText(Text{Kind: TextLives, Value: strconv.Itoa(g.lives), Anchor: AnchorTopLeft, Row: 1})
}

func (g *Game) drawTable(r Renderer) {
	r.DrawText(Text{Kind: TextBanner, Value: "HIGH SCORES", Anchor: AnchorCenter, Row: -6})
	for i, e := range g.table.Entries() {
		r.DrawText(Text{
			Kind:   TextTableRow,
			Value:  fmt.Sprintf("%2d. %-3s %6d", i+1, strings.ToUpper(e.Name), e.Score),
			Anchor: AnchorCenter,
			Row:    i - 4,
		})
	}
}

func (g *Game) drawEntry(r Renderer) {
	g.drawScores(r)
	r.DrawText(Text{Kind: TextBanner, Value: "YOUR SCORE IS ONE OF THE TEN BEST", Anchor: AnchorCenter, Row: -2})
	r.DrawText(Text{Kind: TextBanner, Value: "PLEASE ENTER YOUR INITIALS", Anchor: AnchorCenter, Row: -1})
	e := &g.entry
	shown := strings.ToUpper(string(e.letters[:e.slot+1]))
	shown += strings.Repeat("_", len(e.letters)-e.slot-1)
	r.DrawText(Text{Kind: TextEntry, Value: shown, Anchor: AnchorCenter, Row: 1})
}
