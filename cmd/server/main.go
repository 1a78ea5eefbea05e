package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"space-rocks/internal/api"
	"space-rocks/internal/audio"
	"space-rocks/internal/config"
	"space-rocks/internal/game"
	"space-rocks/internal/highscore"
	"space-rocks/internal/render"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file from parent directory
	if err := godotenv.Load("../.env"); err != nil {
		// Try current directory as fallback
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	} else {
		log.Println("✅ Loaded environment from ../.env")
	}

	log.Println("🎮 ================================")
	log.Println("🎮  SPACE ROCKS - GO ENGINE")
	log.Println("🎮 ================================")

	appConfig := config.Load()
	gameCfg := appConfig.Game
	serverCfg := appConfig.Server
	storageCfg := appConfig.Storage

	log.Printf("🎮 Config: %d TPS, %.0fx%.0f playfield", gameCfg.TickRate, gameCfg.Width, gameCfg.Height)

	store := highscore.NewFileStore(storageCfg.HighScorePath)
	log.Printf("🏆 High scores: %s", store.Path())

	engine := game.NewEngine(game.EngineConfig{
		Game:  gameCfg,
		Store: store,
	})
	limits := engine.GetLimits()
	log.Printf("🛡️ Resource limits: %d sprites, %d texts per frame", limits.MaxSprites, limits.MaxTexts)

	if storageCfg.EventLogPath != "" {
		if err := engine.StartEventLog(storageCfg.EventLogPath); err != nil {
			log.Printf("⚠️ Event log disabled: %v", err)
		} else {
			log.Printf("📝 Event log: %s", storageCfg.EventLogPath)
		}
	}

	if err := api.StartDebugServer(appConfig.Debug); err != nil {
		log.Printf("⚠️ Debug server disabled: %v", err)
	}

	player := audio.NewPlayer(appConfig.Audio)
	if err := player.Init(); err != nil {
		log.Printf("⚠️ Sound disabled: %v", err)
	}

	canvas := render.NewCanvas(int(gameCfg.Width), int(gameCfg.Height), gameCfg.Width, gameCfg.Height)
	if err := canvas.LoadFonts(serverCfg.FontPath); err != nil {
		log.Printf("⚠️ Using built-in font for frames: %v", err)
	}

	server := api.NewServer(engine, serverCfg, canvas)
	hub := server.Hub()

	engine.SetCallbacks(
		func(ev game.Event) {
			api.ObserveEvent(ev)
			player.OnEvent(ev)
			hub.BroadcastEvent(ev)
		},
		func(stats game.TickStats) {
			api.ObserveTick(stats)
			player.SetThrust(stats.Thrusting)
		},
	)

	engine.Start()
	log.Println("✅ Game Engine started")

	stopStats := make(chan struct{})
	go exportEventLogStats(engine, stopStats)

	go func() {
		addr := ":" + strconv.Itoa(serverCfg.Port)
		if err := server.Start(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	<-quit

	log.Println("🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️ HTTP shutdown: %v", err)
	}
	close(stopStats)
	engine.Stop()
	engine.StopEventLog()
	player.Close()
	log.Println("👋 Goodbye!")
}

// exportEventLogStats mirrors the event log counters into Prometheus.
func exportEventLogStats(engine *game.Engine, stop <-chan struct{}) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			stats := engine.GetEventLogStats()
			total, _ := stats["total"].(uint64)
			dropped, _ := stats["dropped"].(uint64)
			api.UpdateEventLogStats(total, dropped)
		}
	}
}
