package db

import (
	"context"
	"fmt"

	"immunotrial/domain/trial"
	"immunotrial/ports"
)

// sampleRepository implements the SampleRepository interface
type sampleRepository struct {
	store *Store
}

// NewSampleRepository creates a new sample repository
func NewSampleRepository(store *Store) ports.SampleRepository {
	return &sampleRepository{store: store}
}

// List returns all loaded samples ordered by sample code.
func (r *sampleRepository) List(ctx context.Context) ([]trial.Sample, error) {
	query := `SELECT subject, sample, sample_type, time_from_treatment,
			b_cell, cd8_t_cell, cd4_t_cell, nk_cell, monocyte
		FROM samples
		ORDER BY sample`

	var samples []trial.Sample
	if err := r.store.db.SelectContext(ctx, &samples, query); err != nil {
		return nil, fmt.Errorf("failed to list samples: %w", err)
	}
	return samples, nil
}

// Count returns the number of loaded samples.
func (r *sampleRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.store.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM samples`); err != nil {
		return 0, fmt.Errorf("failed to count samples: %w", err)
	}
	return count, nil
}
