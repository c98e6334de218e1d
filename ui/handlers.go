package ui

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"immunotrial/domain/trial"
)

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, "index.html", a.snapshot)
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, map[string]interface{}{
		"status":    "ok",
		"loaded_at": a.snapshot.LoadedAt,
		"subjects":  len(a.snapshot.Subjects),
		"samples":   len(a.snapshot.Samples),
	})
}

func (a *App) handleBoxPlot(w http.ResponseWriter, r *http.Request) {
	population := trial.Population(chi.URLParam(r, "population"))
	png, ok := a.snapshot.BoxPlots[population]
	if !ok {
		http.NotFound(w, r)
		return
	}
	a.servePNG(w, png)
}

func (a *App) handleBarChart(w http.ResponseWriter, r *http.Request) {
	breakdown := chi.URLParam(r, "breakdown")
	png, ok := a.snapshot.BarCharts[breakdown]
	if !ok {
		http.NotFound(w, r)
		return
	}
	a.servePNG(w, png)
}

func (a *App) handleSubjects(w http.ResponseWriter, r *http.Request) {
	subjects := a.snapshot.Subjects
	if subjects == nil {
		subjects = []trial.Subject{}
	}
	a.respondJSON(w, map[string]interface{}{
		"count":    len(subjects),
		"subjects": subjects,
	})
}

func (a *App) handleSamples(w http.ResponseWriter, r *http.Request) {
	samples := a.snapshot.Samples
	if samples == nil {
		samples = []trial.Sample{}
	}
	a.respondJSON(w, map[string]interface{}{
		"count":   len(samples),
		"samples": samples,
	})
}

func (a *App) handleFrequencies(w http.ResponseWriter, r *http.Request) {
	frequencies := a.snapshot.Frequencies
	if frequencies == nil {
		frequencies = []trial.PopulationFrequency{}
	}
	a.respondJSON(w, map[string]interface{}{
		"count":              len(frequencies),
		"zero_total_skipped": a.snapshot.ZeroTotal,
		"frequencies":        frequencies,
	})
}

func (a *App) handleComparison(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, a.snapshot.Comparison)
}

func (a *App) handleSubset(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, a.snapshot.Subset)
}

func (a *App) renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	w.Header().Set("Content-Type", "text/html")
	if err := a.templates.ExecuteTemplate(w, name, data); err != nil {
		a.logger.Error("template %s: %v", name, err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

func (a *App) respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		a.logger.Error("failed to encode response: %v", err)
	}
}

func (a *App) servePNG(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(png); err != nil {
		a.logger.Error("failed to write chart: %v", err)
	}
}
