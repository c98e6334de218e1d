package analysis

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"immunotrial/domain/report"
	"immunotrial/domain/trial"
)

// StudentTTest runs a two-sided two-sample Student's t-test with pooled
// variance on the two groups. Groups this small make the equal-variance
// pooled form the standard choice.
//
// Degenerate inputs come back as typed errors rather than NaN or Inf in the
// result: fewer than two values in either group is trial.ErrInsufficientData,
// and a pooled variance of zero is trial.ErrZeroVariance.
func StudentTTest(a, b []float64) (report.TTestResult, error) {
	if len(a) < 2 || len(b) < 2 {
		return report.TTestResult{}, fmt.Errorf("%w: need at least 2 values per group, got %d and %d",
			trial.ErrInsufficientData, len(a), len(b))
	}

	meanA, err := stats.Mean(a)
	if err != nil {
		return report.TTestResult{}, fmt.Errorf("failed to compute group mean: %w", err)
	}
	meanB, err := stats.Mean(b)
	if err != nil {
		return report.TTestResult{}, fmt.Errorf("failed to compute group mean: %w", err)
	}
	varA, err := stats.SampleVariance(a)
	if err != nil {
		return report.TTestResult{}, fmt.Errorf("failed to compute group variance: %w", err)
	}
	varB, err := stats.SampleVariance(b)
	if err != nil {
		return report.TTestResult{}, fmt.Errorf("failed to compute group variance: %w", err)
	}

	na, nb := float64(len(a)), float64(len(b))
	pooled := ((na-1)*varA + (nb-1)*varB) / (na + nb - 2)
	if pooled == 0 {
		return report.TTestResult{}, fmt.Errorf("%w: every value identical within each group",
			trial.ErrZeroVariance)
	}

	tStatistic := (meanA - meanB) / math.Sqrt(pooled*(1/na+1/nb))
	df := na + nb - 2

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	pValue := 2 * (1 - tDist.CDF(math.Abs(tStatistic)))

	return report.TTestResult{
		NA:               len(a),
		NB:               len(b),
		MeanA:            meanA,
		MeanB:            meanB,
		TStatistic:       tStatistic,
		DegreesOfFreedom: df,
		PValue:           pValue,
	}, nil
}
