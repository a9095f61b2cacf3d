package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/logivations/zulip-reminder/internal/bot"
	"github.com/logivations/zulip-reminder/internal/config"
	"github.com/logivations/zulip-reminder/internal/database"
	"github.com/logivations/zulip-reminder/internal/repository"
	"github.com/logivations/zulip-reminder/internal/scheduler"
	"github.com/logivations/zulip-reminder/internal/server"
	"github.com/logivations/zulip-reminder/internal/zulip"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Validate required config
	if cfg.DatabaseURI == "" {
		log.Fatal("DATABASE_URI is required")
	}
	if cfg.ZulipSite == "" || cfg.ZulipEmail == "" || cfg.ZulipAPIKey == "" {
		log.Fatal("ZULIP_SITE, ZULIP_EMAIL and ZULIP_API_KEY are required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Connect to database
	db, err := database.New(ctx, cfg.DatabaseURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	// Run migrations
	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	client := zulip.New(cfg.ZulipSite, cfg.ZulipEmail, cfg.ZulipAPIKey)

	// Create and start scheduler
	sched := scheduler.New(client, repository.NewReminderRepository(db))
	go sched.Start(ctx)

	// Start the HTTP API
	srv := &http.Server{
		Addr:    cfg.ServerAddr,
		Handler: server.New(db, sched).Router(),
	}
	go func() {
		log.Printf("HTTP API listening on %s", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP shutdown error: %v", err)
		}
		cancel()
	}()

	// Create and start bot
	b := bot.New(client, db, sched, cfg.ZulipEmail)
	log.Println("Starting bot...")
	if err := b.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Bot error: %v", err)
	}
}
