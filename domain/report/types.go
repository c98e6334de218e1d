package report

import (
	"immunotrial/domain/trial"
)

// TTestResult holds the output of a two-sided pooled-variance Student's
// t-test between two groups.
// INVARIANTS:
// - NA and NB are both >= 2
// - PValue is in [0.0, 1.0], never NaN
type TTestResult struct {
	NA               int     `json:"n_a"`
	NB               int     `json:"n_b"`
	MeanA            float64 `json:"mean_a"`
	MeanB            float64 `json:"mean_b"`
	TStatistic       float64 `json:"t_statistic"`
	DegreesOfFreedom float64 `json:"degrees_of_freedom"`
	PValue           float64 `json:"p_value"`
}

// Significant reports whether the difference is significant at level alpha.
func (r TTestResult) Significant(alpha float64) bool {
	return r.PValue < alpha
}

// Group summarizes one response arm of a population comparison. Values keeps
// the raw percentages so downstream rendering (box plots) works from the same
// split the test ran on.
type Group struct {
	N      int       `json:"n"`
	Mean   float64   `json:"mean"`
	Values []float64 `json:"values,omitempty"`
}

// PopulationComparison is one population's row of the response comparison.
// Either Result is set, or SkipReason names the condition (insufficient
// sample size, zero variance) that kept this population from being tested.
type PopulationComparison struct {
	Population    trial.Population `json:"population"`
	Label         string           `json:"label"`
	Responders    Group            `json:"responders"`
	NonResponders Group            `json:"non_responders"`
	Result        *TTestResult     `json:"result,omitempty"`
	SkipReason    string           `json:"skip_reason,omitempty"`
}

// Tested reports whether the t-test actually ran for this population.
func (c PopulationComparison) Tested() bool {
	return c.Result != nil
}

// Significant reports whether this population was tested and came out
// significant at level alpha.
func (c PopulationComparison) Significant(alpha float64) bool {
	return c.Result != nil && c.Result.Significant(alpha)
}

// ComparisonReport is the complete responder vs non-responder comparison for
// one cohort, one row per panel population in canonical order.
type ComparisonReport struct {
	Filter           trial.CohortFilter     `json:"filter"`
	Alpha            float64                `json:"alpha"`
	SampleCount      int                    `json:"sample_count"`
	ZeroTotalSkipped int                    `json:"zero_total_skipped"`
	Populations      []PopulationComparison `json:"populations"`
}

// SignificantPopulations returns the rows significant at the report's alpha,
// in canonical order.
func (r ComparisonReport) SignificantPopulations() []PopulationComparison {
	var out []PopulationComparison
	for _, c := range r.Populations {
		if c.Significant(r.Alpha) {
			out = append(out, c)
		}
	}
	return out
}

// SkippedPopulations returns the rows that could not be tested.
func (r ComparisonReport) SkippedPopulations() []PopulationComparison {
	var out []PopulationComparison
	for _, c := range r.Populations {
		if !c.Tested() {
			out = append(out, c)
		}
	}
	return out
}

// SubsetRow is one raw row of the baseline subset report.
type SubsetRow struct {
	SampleID  string `db:"sample" json:"sample"`
	SubjectID string `db:"subject" json:"subject"`
	Project   string `db:"project" json:"project"`
	Response  string `db:"response" json:"response"`
	Sex       string `db:"sex" json:"sex"`
}

// GroupCount is one row of a grouped aggregation, e.g. samples per project.
type GroupCount struct {
	Key   string `db:"key" json:"key"`
	Count int    `db:"count" json:"count"`
}

// CountFilter selects samples for the supplemental mean raw-count query.
// Empty string fields are not filtered on.
type CountFilter struct {
	Population   trial.Population `json:"population"`
	Condition    string           `json:"condition"`
	Response     string           `json:"response"`
	Sex          string           `json:"sex"`
	BaselineOnly bool             `json:"baseline_only"`
}

// MeanCount is the supplemental query result: the mean raw count of one
// population over the filtered samples. N is the number of samples averaged;
// Mean is zero when N is zero.
type MeanCount struct {
	Filter CountFilter `json:"filter"`
	N      int         `json:"n"`
	Mean   float64     `json:"mean"`
}

// SubsetReport is the baseline subset analysis: the raw rows plus the three
// breakdowns and the supplemental mean count.
type SubsetReport struct {
	Filter              trial.CohortFilter `json:"filter"`
	Rows                []SubsetRow        `json:"rows"`
	SamplesPerProject   []GroupCount       `json:"samples_per_project"`
	SubjectsPerResponse []GroupCount       `json:"subjects_per_response"`
	SubjectsPerSex      []GroupCount       `json:"subjects_per_sex"`
	BaselineBCellMean   MeanCount          `json:"baseline_b_cell_mean"`
}
