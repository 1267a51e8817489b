package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/stagedoor/backend/internal/auth"
	"github.com/stagedoor/backend/internal/automation"
	"github.com/stagedoor/backend/internal/cache"
	"github.com/stagedoor/backend/internal/config"
	"github.com/stagedoor/backend/internal/metrics"
	"github.com/stagedoor/backend/internal/models"
	"github.com/stagedoor/backend/internal/scoring"
	"github.com/stagedoor/backend/internal/server"
	"github.com/stagedoor/backend/internal/services"
	"github.com/stagedoor/backend/internal/store"
	"github.com/stagedoor/backend/internal/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		utils.Log.Info("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.New()
	if !utils.SetLogLevel(cfg.LogLevel) {
		utils.Log.Warnf("Unknown LOG_LEVEL %q, keeping info", cfg.LogLevel)
	}
	if cfg.Env == "production" {
		utils.UseJSON()
	}

	// Initialize database
	db, err := models.InitDB(cfg)
	if err != nil {
		utils.Log.Fatalf("Failed to initialize database: %v", err)
	}

	// Run migrations
	if err := models.Migrate(db); err != nil {
		utils.Log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize Redis
	redisClient := models.InitRedis(cfg)
	defer redisClient.Close()
	kv := cache.NewRedis(redisClient)

	profiles, err := scoring.LoadProfiles(cfg.RankingProfilePath)
	if err != nil {
		utils.Log.Fatalf("Failed to load ranking profiles: %v", err)
	}

	verifier, err := auth.NewBcryptVerifier(cfg.AdminUsername, cfg.AdminPasswordHash, cfg.AdminPassword)
	if err != nil {
		utils.Log.Fatalf("Failed to set up admin login: %v", err)
	}

	// Initialize services
	automationClient := automation.NewClient(cfg)
	songs := store.NewGormSongStore(db)
	svc := server.Services{
		Bands:      services.NewBandService(automationClient, kv, profiles, cfg),
		BandStatus: services.NewBandStatusService(db, automationClient, kv),
		DJ:         services.NewDJService(songs, cfg),
		Auth:       services.NewAuthService(verifier, cfg),
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.Register(registry)

	// Sweep expired cooldowns so the table does not grow between snapshots
	go func() {
		for {
			deleted, err := songs.DeleteExpiredCooldowns(context.Background(), time.Now())
			if err != nil {
				utils.Log.WithError(err).Warn("Cooldown sweep failed")
			} else if deleted > 0 {
				utils.Log.WithField("deleted", deleted).Debug("Cooldown sweep")
			}
			time.Sleep(5 * time.Minute)
		}
	}()

	// Start server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.New(cfg, svc, kv, registry).Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		utils.Log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		utils.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	utils.Log.Info("Server exited")
}
