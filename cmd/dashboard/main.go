package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"immunotrial/adapters/chart"
	"immunotrial/adapters/db"
	"immunotrial/app"
	"immunotrial/domain/trial"
	"immunotrial/internal/config"
	"immunotrial/ui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	store, err := db.Open(cfg.Database.DSN, db.Options{ReadOnly: true})
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	ctx := context.Background()
	if err := store.Ping(ctx); err != nil {
		log.Fatalf("Store %s is not reachable: %v", cfg.Database.DSN, err)
	}

	cohorts := db.NewCohortRepository(store)
	snapshot, err := ui.BuildSnapshot(ctx, ui.Dependencies{
		Subjects: db.NewSubjectRepository(store),
		Samples:  db.NewSampleRepository(store),
		Analysis: app.NewAnalysisService(cohorts),
		Subset:   app.NewSubsetService(cohorts),
		Renderer: chart.NewRenderer(),
	}, trial.TrialCohort(), cfg.Analysis.Alpha)
	if err != nil {
		log.Fatalf("Failed to build snapshot: %v", err)
	}

	// The snapshot is complete; the dashboard never touches the store again.
	if err := store.Close(); err != nil {
		log.Printf("Closing store: %v", err)
	}

	dashboard, err := ui.NewApp(snapshot)
	if err != nil {
		log.Fatalf("Failed to create dashboard: %v", err)
	}

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      dashboard.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Dashboard listening on http://%s (%d subjects, %d samples)",
			cfg.Server.Addr(), len(snapshot.Subjects), len(snapshot.Samples))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Forced shutdown: %v", err)
	}
	log.Println("Dashboard stopped")
}
