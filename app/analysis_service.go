package app

import (
	"context"

	"github.com/montanaflynn/stats"

	"immunotrial/domain/report"
	"immunotrial/domain/trial"
	"immunotrial/internal"
	"immunotrial/internal/analysis"
	apperrors "immunotrial/internal/errors"
	"immunotrial/ports"
)

// AnalysisService runs the responder vs non-responder frequency comparison.
type AnalysisService struct {
	cohorts ports.CohortRepository
	logger  *internal.Logger
}

// NewAnalysisService creates an analysis service over the cohort repository.
func NewAnalysisService(cohorts ports.CohortRepository) *AnalysisService {
	return &AnalysisService{
		cohorts: cohorts,
		logger:  internal.DefaultLogger.With("analysis"),
	}
}

// CompareCohort tests every panel population's relative frequency between
// responders and non-responders in the filtered cohort. A population that
// cannot be tested (too few samples, zero variance) carries a skip reason
// instead of failing the comparison; every population always gets a row.
func (s *AnalysisService) CompareCohort(ctx context.Context, f trial.CohortFilter, alpha float64) (*report.ComparisonReport, error) {
	responseSamples, err := s.cohorts.ResponseSamples(ctx, f)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load cohort samples")
	}

	samples := make([]trial.Sample, len(responseSamples))
	responses := make(map[string]string, len(responseSamples))
	for i, rs := range responseSamples {
		samples[i] = rs.Sample
		responses[rs.ID] = rs.Response
	}

	frequencies, zeroTotal := trial.DeriveFrequencies(samples)
	if zeroTotal > 0 {
		s.logger.Warn("%d sample(s) with zero total cell count excluded from comparison", zeroTotal)
	}

	split := make(map[trial.Population]map[string][]float64)
	for _, p := range trial.Populations() {
		split[p] = map[string][]float64{}
	}
	for _, pf := range frequencies {
		arm := responses[pf.SampleID]
		split[pf.Population][arm] = append(split[pf.Population][arm], pf.Percentage)
	}

	populations := make([]report.PopulationComparison, 0, len(trial.Populations()))
	for _, p := range trial.Populations() {
		responders := split[p][trial.ResponseYes]
		nonResponders := split[p][trial.ResponseNo]

		comparison := report.PopulationComparison{
			Population:    p,
			Label:         p.Label(),
			Responders:    newGroup(responders),
			NonResponders: newGroup(nonResponders),
		}

		result, err := analysis.StudentTTest(responders, nonResponders)
		switch {
		case err == nil:
			comparison.Result = &result
		case trial.IsStatisticalCondition(err):
			comparison.SkipReason = err.Error()
			s.logger.Warn("population %s not tested: %v", p, err)
		default:
			return nil, apperrors.StatsError("failed to test population "+string(p), err)
		}
		populations = append(populations, comparison)
	}

	return &report.ComparisonReport{
		Filter:           f,
		Alpha:            alpha,
		SampleCount:      len(samples),
		ZeroTotalSkipped: zeroTotal,
		Populations:      populations,
	}, nil
}

// newGroup summarizes one response arm, keeping the raw percentages for the
// box plots downstream.
func newGroup(values []float64) report.Group {
	g := report.Group{N: len(values), Values: values}
	if len(values) > 0 {
		mean, _ := stats.Mean(values)
		g.Mean = mean
	}
	return g
}
