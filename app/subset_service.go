package app

import (
	"context"

	"immunotrial/domain/report"
	"immunotrial/domain/trial"
	"immunotrial/internal"
	apperrors "immunotrial/internal/errors"
	"immunotrial/ports"
)

// SubsetService assembles the baseline subset report.
type SubsetService struct {
	cohorts ports.CohortRepository
	logger  *internal.Logger
}

// NewSubsetService creates a subset service over the cohort repository.
func NewSubsetService(cohorts ports.CohortRepository) *SubsetService {
	return &SubsetService{
		cohorts: cohorts,
		logger:  internal.DefaultLogger.With("subset"),
	}
}

// BaselineReport builds the baseline view of the filtered cohort: the raw
// sample rows, the three breakdowns, and the supplemental mean B cell count.
// The filter is forced to baseline regardless of the caller's flag.
func (s *SubsetService) BaselineReport(ctx context.Context, f trial.CohortFilter) (*report.SubsetReport, error) {
	baseline := f.Baseline()

	rows, err := s.cohorts.BaselineRows(ctx, baseline)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load baseline rows")
	}
	perProject, err := s.cohorts.SamplesPerProject(ctx, baseline)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to count samples per project")
	}
	perResponse, err := s.cohorts.SubjectsPerResponse(ctx, baseline)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to count subjects per response")
	}
	perSex, err := s.cohorts.SubjectsPerSex(ctx, baseline)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to count subjects per sex")
	}

	// The supplemental average covers male responders with the cohort's
	// condition across every treatment, not just the trial arm.
	meanCount, err := s.cohorts.MeanCount(ctx, report.CountFilter{
		Population:   trial.PopulationBCell,
		Condition:    baseline.Condition,
		Response:     trial.ResponseYes,
		Sex:          "M",
		BaselineOnly: true,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to compute mean B cell count")
	}

	s.logger.Debug("baseline subset: %d rows across %d project(s)", len(rows), len(perProject))

	return &report.SubsetReport{
		Filter:              baseline,
		Rows:                rows,
		SamplesPerProject:   perProject,
		SubjectsPerResponse: perResponse,
		SubjectsPerSex:      perSex,
		BaselineBCellMean:   meanCount,
	}, nil
}
