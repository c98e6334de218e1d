package db

import (
	"context"
	"fmt"

	"immunotrial/domain/trial"
	"immunotrial/ports"
)

// subjectRepository implements the SubjectRepository interface
type subjectRepository struct {
	store *Store
}

// NewSubjectRepository creates a new subject repository
func NewSubjectRepository(store *Store) ports.SubjectRepository {
	return &subjectRepository{store: store}
}

// List returns all loaded subjects ordered by subject code.
func (r *subjectRepository) List(ctx context.Context) ([]trial.Subject, error) {
	query := `SELECT project, subject, condition, age, sex, treatment, response
		FROM subjects
		ORDER BY subject`

	var subjects []trial.Subject
	if err := r.store.db.SelectContext(ctx, &subjects, query); err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	return subjects, nil
}

// Count returns the number of loaded subjects.
func (r *subjectRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.store.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM subjects`); err != nil {
		return 0, fmt.Errorf("failed to count subjects: %w", err)
	}
	return count, nil
}
