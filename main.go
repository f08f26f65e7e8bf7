package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/polinaozhigova/eqmon-be/internal/api"
	"github.com/polinaozhigova/eqmon-be/internal/config"
	"github.com/polinaozhigova/eqmon-be/internal/database"
	"github.com/polinaozhigova/eqmon-be/internal/logger"
	"github.com/polinaozhigova/eqmon-be/internal/monitoring"
	"github.com/polinaozhigova/eqmon-be/internal/services"
	"github.com/polinaozhigova/eqmon-be/internal/storage"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(cfg.Verbose)

	// Ensure the upload directory exists
	fileStore, err := storage.NewStore(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize file storage")
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up services
	eventService := services.NewEventService(db)
	userService := services.NewUserService(db, eventService)
	uploadService := services.NewUploadService(db, fileStore, eventService)

	// Set up and run the background disk monitor
	diskMonitor := monitoring.NewDiskMonitor(cfg.UploadDir, eventService)
	go diskMonitor.Run()

	// Set up and run the event retention scheduler
	scheduler := monitoring.NewScheduler(eventService, cfg.EventRetentionDays)
	if err := scheduler.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	// Set up router
	router := api.NewRouter(uploadService, userService, eventService, cfg.UploadDir)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Server starting")
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	diskMonitor.Stop()
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
