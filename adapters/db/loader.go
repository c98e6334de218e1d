package db

import (
	"context"
	"time"

	"github.com/google/uuid"

	"immunotrial/domain/trial"
	"immunotrial/internal"
	apperrors "immunotrial/internal/errors"
	"immunotrial/ports"
)

// loader implements ports.SampleLoader on top of the relational store.
type loader struct {
	store  *Store
	logger *internal.Logger
}

// NewLoader creates the transactional sample loader.
func NewLoader(store *Store) ports.SampleLoader {
	return &loader{
		store:  store,
		logger: internal.DefaultLogger.With("loader"),
	}
}

// Load stages every row verbatim, then normalizes distinct subjects and
// samples out of the staged set, all inside one transaction. Any failure
// rolls the whole load back. Repeated rows must agree: two rows claiming the
// same subject or sample with different attributes abort the load by name.
func (l *loader) Load(ctx context.Context, source string, rows []trial.StagingRow) (*ports.LoadReport, error) {
	start := time.Now()

	subjects, samples, zeroTotal, err := normalize(rows)
	if err != nil {
		return nil, apperrors.LoadError("failed to normalize staged rows", err)
	}

	tx, err := l.store.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, apperrors.LoadError("failed to begin load transaction", err)
	}
	defer tx.Rollback()

	insertStaging := `INSERT INTO staging_rows (
		project, subject, condition, age, sex, treatment, response,
		sample, sample_type, time_from_treatment,
		b_cell, cd8_t_cell, cd4_t_cell, nk_cell, monocyte
	) VALUES (
		:project, :subject, :condition, :age, :sex, :treatment, :response,
		:sample, :sample_type, :time_from_treatment,
		:b_cell, :cd8_t_cell, :cd4_t_cell, :nk_cell, :monocyte
	)`
	for _, row := range rows {
		if _, err := tx.NamedExecContext(ctx, insertStaging, row); err != nil {
			return nil, apperrors.LoadError("failed to stage input row", err)
		}
	}

	insertSubject := `INSERT INTO subjects (
		project, subject, condition, age, sex, treatment, response
	) VALUES (
		:project, :subject, :condition, :age, :sex, :treatment, :response
	)`
	for _, subject := range subjects {
		if _, err := tx.NamedExecContext(ctx, insertSubject, subject); err != nil {
			return nil, apperrors.LoadError("key violation inserting subject "+subject.ID+" (store not clean?)", err)
		}
	}

	insertSample := `INSERT INTO samples (
		subject, sample, sample_type, time_from_treatment,
		b_cell, cd8_t_cell, cd4_t_cell, nk_cell, monocyte
	) VALUES (
		:subject, :sample, :sample_type, :time_from_treatment,
		:b_cell, :cd8_t_cell, :cd4_t_cell, :nk_cell, :monocyte
	)`
	for _, sample := range samples {
		if _, err := tx.NamedExecContext(ctx, insertSample, sample); err != nil {
			return nil, apperrors.LoadError("key violation inserting sample "+sample.ID+" (store not clean?)", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.LoadError("failed to commit load transaction", err)
	}

	report := &ports.LoadReport{
		RunID:       uuid.NewString(),
		Source:      source,
		RowsStaged:  len(rows),
		Subjects:    len(subjects),
		Samples:     len(samples),
		ZeroTotal:   zeroTotal,
		Duration:    time.Since(start),
		CompletedAt: time.Now(),
	}

	l.logger.Info("load %s complete: %d rows staged, %d subjects, %d samples in %.2fms",
		report.RunID, report.RowsStaged, report.Subjects, report.Samples,
		float64(report.Duration.Nanoseconds())/1e6)
	if zeroTotal > 0 {
		l.logger.Warn("%d sample(s) have zero total cell count and will carry no frequencies", zeroTotal)
	}

	return report, nil
}

// normalize projects distinct subjects and samples out of the staged rows,
// preserving first-seen order. Exact duplicate rows collapse; conflicting
// duplicates are an error.
func normalize(rows []trial.StagingRow) ([]trial.Subject, []trial.Sample, int, error) {
	var subjects []trial.Subject
	var samples []trial.Sample
	subjectSeen := make(map[string]trial.Subject)
	sampleSeen := make(map[string]trial.Sample)
	zeroTotal := 0

	for _, row := range rows {
		subject := row.ToSubject()
		if prev, ok := subjectSeen[subject.ID]; ok {
			if prev != subject {
				return nil, nil, 0, trial.NewDuplicateSubjectError(subject.ID)
			}
		} else {
			subjectSeen[subject.ID] = subject
			subjects = append(subjects, subject)
		}

		sample := row.ToSample()
		if prev, ok := sampleSeen[sample.ID]; ok {
			if prev != sample {
				return nil, nil, 0, trial.NewDuplicateSampleError(sample.ID)
			}
		} else {
			sampleSeen[sample.ID] = sample
			samples = append(samples, sample)
			if sample.Total() == 0 {
				zeroTotal++
			}
		}
	}

	return subjects, samples, zeroTotal, nil
}
