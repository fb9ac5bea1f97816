package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/getupyang/geo-guess-diy/internal/api"
	"github.com/getupyang/geo-guess-diy/internal/config"
	"github.com/getupyang/geo-guess-diy/internal/db"
	"github.com/getupyang/geo-guess-diy/internal/notify"
	"github.com/getupyang/geo-guess-diy/internal/progress"
	"github.com/getupyang/geo-guess-diy/internal/registry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Connect to the record store
	database, err := db.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.RunMigrations(context.Background()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Open the local progress checkpoint store
	progressStore, err := progress.Open(cfg.ProgressDBPath)
	if err != nil {
		log.Fatalf("Failed to open progress store: %v", err)
	}
	defer progressStore.Close()

	// Discord announcements are optional
	var announcer notify.Announcer = notify.Nop{}
	if cfg.DiscordToken != "" && cfg.DiscordAnnounceChannel != "" {
		discord, err := notify.NewDiscord(cfg.DiscordToken, cfg.DiscordAnnounceChannel)
		if err != nil {
			log.Fatalf("Failed to create discord announcer: %v", err)
		}
		announcer = discord
	}

	reg := registry.New(database, progressStore)
	apiServer := api.New(cfg, database, reg, announcer)

	// Start API server
	go func() {
		if err := apiServer.Start(); err != nil {
			log.Printf("API server error: %v", err)
		}
	}()

	// Wait for signal to stop
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
}
