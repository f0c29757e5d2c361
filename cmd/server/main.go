package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"agri-dashboard/internal/config"
	"agri-dashboard/internal/handlers"
	"agri-dashboard/internal/services"
)

const (
	AppVersion = "1.0.0"
)

func main() {
	log.Printf("Starting Agriculture Dashboard v%s", AppVersion)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	dataPath := cfg.DataFilePath()
	if _, err := os.Stat(dataPath); os.IsNotExist(err) {
		log.Fatalf("Dataset not found at: %s", dataPath)
	}
	log.Printf("Using dataset at: %s", dataPath)

	// Initialize services and handlers
	dataset, err := services.LoadDataset(dataPath, cfg.Data.Sheet)
	if err != nil {
		log.Fatalf("Error loading dataset: %v", err)
	}
	selection, err := services.NewSelectionService(dataset)
	if err != nil {
		log.Fatalf("Error preparing selectors: %v", err)
	}
	regions, err := services.NewRegionService()
	if err != nil {
		log.Fatalf("Error loading region catalog: %v", err)
	}

	router, err := handlers.NewRouter(handlers.Deps{
		Dataset:   dataset,
		Selection: selection,
		Regions:   regions,
		Dashboard: cfg.Dashboard,
		Version:   AppVersion,
	})
	if err != nil {
		log.Fatalf("Error setting up routes: %v", err)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("Server starting on port %s...", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Error shutting down server: %v", err)
	}
	log.Printf("Server stopped")
}
