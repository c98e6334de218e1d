package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"immunotrial/internal"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// App serves the analysis dashboard from a prebuilt snapshot. Every request
// reads the snapshot, never the store, so the dashboard stays consistent for
// its whole lifetime.
type App struct {
	router    *chi.Mux
	snapshot  *Snapshot
	templates *template.Template
	logger    *internal.Logger
}

// NewApp builds the dashboard application over the snapshot.
func NewApp(snapshot *Snapshot) (*App, error) {
	funcMap := template.FuncMap{
		"pct":   func(v float64) string { return fmt.Sprintf("%.2f", v) },
		"pval":  func(v float64) string { return fmt.Sprintf("%.4g", v) },
		"tstat": func(v float64) string { return fmt.Sprintf("%.3f", v) },
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	a := &App{
		router:    chi.NewRouter(),
		snapshot:  snapshot,
		templates: templates,
		logger:    internal.DefaultLogger.With("ui"),
	}

	a.setupMiddleware()
	a.setupRoutes()

	return a, nil
}

// Router exposes the HTTP handler; the caller owns the server lifecycle.
func (a *App) Router() http.Handler {
	return a.router
}

func (a *App) setupMiddleware() {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))

	a.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	a.router.Handle("/static/*", http.FileServer(http.FS(embeddedFiles)))
}

func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Get("/health", a.handleHealth)

	a.router.Get("/charts/box/{population}.png", a.handleBoxPlot)
	a.router.Get("/charts/bar/{breakdown}.png", a.handleBarChart)

	a.router.Get("/api/subjects", a.handleSubjects)
	a.router.Get("/api/samples", a.handleSamples)
	a.router.Get("/api/frequencies", a.handleFrequencies)
	a.router.Get("/api/comparison", a.handleComparison)
	a.router.Get("/api/subset", a.handleSubset)
}
