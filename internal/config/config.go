// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for gameplay tunables and process settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
	"strings"
)

// =============================================================================
// GAME CONFIGURATION
// =============================================================================

// GameConfig holds the world dimensions and every gameplay tunable.
// Durations are in milliseconds because the core runs on a millisecond clock.
type GameConfig struct {
	Width    float64 // World width in pixels
	Height   float64 // World height in pixels
	TickRate int     // Ticks per second

	// Ship
	ShipRadius     float64
	RotateStep     float64 // Degrees per tick while a rotate control is held
	ThrustAccel    float64 // Velocity added per tick while thrusting
	MaxShipSpeed   float64 // 0 = unbounded
	FireCooldownMs int64
	MaxShipBullets int
	BulletSpeed    float64
	StartLives     int

	// Asteroids
	MaxAsteroidSpeed float64 // Velocity components are uniform in [-v, v]
	MinAsteroids     int     // Wave size lower bound
	MaxAsteroids     int     // Wave size upper bound
	WaveDelayMs      int64   // Minimum quiet time after the last kill
	IntroAsteroids   int     // Attract-mode population target

	// Saucers
	SaucerIntervalMs  int64
	SaucerSpeed       float64
	SaucerSteerMs     int64
	SaucerFireMs      int64
	MaxSaucerBullets  int
	SmallSaucerScore  int     // Score from which only small saucers appear
	SaucerSharpScore  int     // Score from which the small saucer's aim tightens
	SaucerJitter      float64 // Aim jitter in radians
	SaucerSharpJitter float64 // Aim jitter in radians past SaucerSharpScore
	SaucerBulletSpeed float64

	// Lifecycle
	RespawnDelayMs int64
	RespawnRetryMs int64
	ExplosionMs    int64
	DebrisCount    int
	DebrisSpeed    float64
	ExtraLifeScore int
	GameOverMs     int64
	PromptToggleMs int64
	TableToggleMs  int64
	LetterRepeatMs int64
	HighScoreSlots int
}

// DefaultGame returns the default gameplay configuration.
func DefaultGame() GameConfig {
	return GameConfig{
		Width:    1280,
		Height:   720,
		TickRate: 60,

		ShipRadius:     15,
		RotateStep:     5,
		ThrustAccel:    0.1,
		MaxShipSpeed:   0,
		FireCooldownMs: 100,
		MaxShipBullets: 4,
		BulletSpeed:    10,
		StartLives:     3,

		MaxAsteroidSpeed: 2,
		MinAsteroids:     4,
		MaxAsteroids:     6,
		WaveDelayMs:      2000,
		IntroAsteroids:   10,

		SaucerIntervalMs:  15000,
		SaucerSpeed:       2,
		SaucerSteerMs:     1000,
		SaucerFireMs:      1000,
		MaxSaucerBullets:  2,
		SmallSaucerScore:  40000,
		SaucerSharpScore:  35000,
		SaucerJitter:      0.35,
		SaucerSharpJitter: 0.10,
		SaucerBulletSpeed: 6,

		RespawnDelayMs: 3000,
		RespawnRetryMs: 500,
		ExplosionMs:    1000,
		DebrisCount:    8,
		DebrisSpeed:    1.5,
		ExtraLifeScore: 10000,
		GameOverMs:     3000,
		PromptToggleMs: 500,
		TableToggleMs:  5000,
		LetterRepeatMs: 150,
		HighScoreSlots: 10,
	}
}

// GameFromEnv returns the game configuration with environment variable overrides.
func GameFromEnv() GameConfig {
	cfg := DefaultGame()

	if w := getEnvInt("WORLD_WIDTH", 0); w > 0 {
		cfg.Width = float64(w)
	}
	if h := getEnvInt("WORLD_HEIGHT", 0); h > 0 {
		cfg.Height = float64(h)
	}
	if tps := getEnvInt("TICK_RATE", 0); tps > 0 {
		cfg.TickRate = tps
	}
	if lives := getEnvInt("START_LIVES", 0); lives > 0 {
		cfg.StartLives = lives
	}
	if v := getEnvFloat("MAX_SHIP_SPEED", -1); v >= 0 {
		cfg.MaxShipSpeed = v
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        int
	CORSOrigins []string
	StaticDir   string
	FontPath    string // TTF for rendered frames; empty searches system paths
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:      3000,
		StaticDir: "./admin-panel",
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}
	if dir := os.Getenv("STATIC_DIR"); dir != "" {
		cfg.StaticDir = dir
	}
	if fp := os.Getenv("FONT_PATH"); fp != "" {
		cfg.FontPath = fp
	}

	return cfg
}

// =============================================================================
// STORAGE CONFIGURATION
// =============================================================================

// StorageConfig holds file locations for persisted data.
type StorageConfig struct {
	HighScorePath string // JSON high-score table
	EventLogPath  string // Newline-delimited JSON event log ("" disables)
}

// DefaultStorage returns the default storage configuration.
func DefaultStorage() StorageConfig {
	return StorageConfig{
		HighScorePath: "highscores.json",
		EventLogPath:  "events.jsonl",
	}
}

// StorageFromEnv returns storage configuration with environment variable overrides.
func StorageFromEnv() StorageConfig {
	cfg := DefaultStorage()

	if p := os.Getenv("HIGHSCORE_PATH"); p != "" {
		cfg.HighScorePath = p
	}
	if p, ok := os.LookupEnv("EVENT_LOG_PATH"); ok {
		cfg.EventLogPath = p
	}

	return cfg
}

// =============================================================================
// AUDIO CONFIGURATION
// =============================================================================

// AudioConfig holds sound cue settings.
type AudioConfig struct {
	SampleRate int     // Audio sample rate in Hz
	Volume     float64 // Master volume (0.0 to 1.0)
	Enabled    bool    // Whether sound cues are played
	MusicPath  string  // Optional OGG Vorbis background loop
}

// DefaultAudio returns the default audio configuration.
func DefaultAudio() AudioConfig {
	return AudioConfig{
		SampleRate: 44100,
		Volume:     0.3,
		Enabled:    true,
	}
}

// AudioFromEnv returns audio configuration with environment variable overrides.
func AudioFromEnv() AudioConfig {
	cfg := DefaultAudio()

	if v := getEnvFloat("SOUND_VOLUME", -1); v >= 0 {
		cfg.Volume = v
	}
	if os.Getenv("SOUND_ENABLED") == "false" {
		cfg.Enabled = false
	}
	cfg.MusicPath = os.Getenv("MUSIC_PATH")

	return cfg
}

// =============================================================================
// OBSERVABILITY CONFIGURATION
// =============================================================================

// DebugConfig holds the internal debug server settings.
type DebugConfig struct {
	Enabled       bool
	ListenAddr    string // Localhost unless ALLOW_DEBUG_EXTERNAL=true
	BasicAuthUser string // Optional basic auth
	BasicAuthPass string
}

// DefaultDebug returns the default debug server configuration.
func DefaultDebug() DebugConfig {
	return DebugConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:6060",
	}
}

// DebugFromEnv returns debug configuration with environment variable overrides.
func DebugFromEnv() DebugConfig {
	cfg := DefaultDebug()

	if os.Getenv("DISABLE_DEBUG_SERVER") == "true" {
		cfg.Enabled = false
	}
	if addr := os.Getenv("DEBUG_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	cfg.BasicAuthUser = os.Getenv("DEBUG_USER")
	cfg.BasicAuthPass = os.Getenv("DEBUG_PASS")

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Game    GameConfig
	Server  ServerConfig
	Storage StorageConfig
	Audio   AudioConfig
	Debug   DebugConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Game:    GameFromEnv(),
		Server:  ServerFromEnv(),
		Storage: StorageFromEnv(),
		Audio:   AudioFromEnv(),
		Debug:   DebugFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
