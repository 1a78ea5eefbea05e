package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"space-rocks/internal/audio"
	"space-rocks/internal/config"
	"space-rocks/internal/game"
	"space-rocks/internal/highscore"
	"space-rocks/internal/terminal"

	"github.com/gdamore/tcell/v2"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
	}

	appConfig := config.Load()

	// The screen owns the terminal; send logs elsewhere while playing.
	logOut := io.Discard
	if path := os.Getenv("TERMINAL_LOG"); path != "" {
		if f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
			defer f.Close()
			logOut = f
		}
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("Failed to create screen: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("Failed to initialize screen: %v", err)
	}
	log.SetOutput(logOut)
	defer func() {
		screen.Fini()
		log.SetOutput(os.Stderr)
		log.Println("👋 Goodbye!")
	}()

	engine := game.NewEngine(game.EngineConfig{
		Game:  appConfig.Game,
		Store: highscore.NewFileStore(appConfig.Storage.HighScorePath),
	})

	player := audio.NewPlayer(appConfig.Audio)
	if err := player.Init(); err != nil {
		log.Printf("⚠️ Sound disabled: %v", err)
	}
	defer player.Close()

	engine.SetCallbacks(player.OnEvent, func(stats game.TickStats) {
		player.SetThrust(stats.Thrusting)
	})
	engine.Start()
	defer engine.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	terminal.NewClient(screen, engine, 30).Run(ctx)
}
