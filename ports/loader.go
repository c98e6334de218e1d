package ports

import (
	"context"
	"time"

	"immunotrial/domain/trial"
)

// LoadReport summarizes one completed load. It lives in memory only; the
// store keeps the trial data, not the bookkeeping about how it got there.
type LoadReport struct {
	RunID       string        `json:"run_id"`
	Source      string        `json:"source"`
	RowsStaged  int           `json:"rows_staged"`
	Subjects    int           `json:"subjects"`
	Samples     int           `json:"samples"`
	ZeroTotal   int           `json:"zero_total"`
	Duration    time.Duration `json:"duration"`
	CompletedAt time.Time     `json:"completed_at"`
}

// SampleLoader ingests staged rows into the store. The load is atomic: on any
// error the store is left exactly as it was.
type SampleLoader interface {
	Load(ctx context.Context, source string, rows []trial.StagingRow) (*LoadReport, error)
}
