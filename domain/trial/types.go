package trial

import "fmt"

// Population identifies one of the immune cell populations counted by the
// cytometry panel.
type Population string

const (
	PopulationBCell    Population = "b_cell"
	PopulationCD8TCell Population = "cd8_t_cell"
	PopulationCD4TCell Population = "cd4_t_cell"
	PopulationNKCell   Population = "nk_cell"
	PopulationMonocyte Population = "monocyte"
)

// Populations returns the five panel populations in canonical order. All
// per-population iteration in the system walks this slice so that tables,
// tests, and charts agree on ordering.
func Populations() []Population {
	return []Population{
		PopulationBCell,
		PopulationCD8TCell,
		PopulationCD4TCell,
		PopulationNKCell,
		PopulationMonocyte,
	}
}

// Label returns the human-readable name used in reports and chart titles.
func (p Population) Label() string {
	switch p {
	case PopulationBCell:
		return "B Cell"
	case PopulationCD8TCell:
		return "CD8 T Cell"
	case PopulationCD4TCell:
		return "CD4 T Cell"
	case PopulationNKCell:
		return "NK Cell"
	case PopulationMonocyte:
		return "Monocyte"
	}
	return string(p)
}

// Valid reports whether p is one of the five panel populations.
func (p Population) Valid() bool {
	switch p {
	case PopulationBCell, PopulationCD8TCell, PopulationCD4TCell,
		PopulationNKCell, PopulationMonocyte:
		return true
	}
	return false
}

// Response values recorded for treated subjects. Subjects without an
// assessment carry an empty response and are excluded from comparisons.
const (
	ResponseYes = "yes"
	ResponseNo  = "no"
)

// Subject represents one trial participant. Subject-level attributes repeat
// on every CSV row for that participant and are normalized out at load time.
type Subject struct {
	Project   string `db:"project" json:"project"`
	ID        string `db:"subject" json:"subject"`
	Condition string `db:"condition" json:"condition"`
	Age       int    `db:"age" json:"age"`
	Sex       string `db:"sex" json:"sex"`
	Treatment string `db:"treatment" json:"treatment"`
	Response  string `db:"response" json:"response"`
}

// Validate checks the structural constraints on a subject record.
func (s Subject) Validate() error {
	if s.ID == "" {
		return NewFieldError("subject", "must not be empty")
	}
	if s.Project == "" {
		return NewFieldError("project", "must not be empty")
	}
	if s.Condition == "" {
		return NewFieldError("condition", "must not be empty")
	}
	if s.Treatment == "" {
		return NewFieldError("treatment", "must not be empty")
	}
	if s.Age < 0 {
		return NewFieldError("age", fmt.Sprintf("must be non-negative, got %d", s.Age))
	}
	if s.Response != "" && s.Response != ResponseYes && s.Response != ResponseNo {
		return NewFieldError("response", fmt.Sprintf("must be %q, %q, or empty, got %q", ResponseYes, ResponseNo, s.Response))
	}
	return nil
}

// CellCounts holds the five population counts measured for one sample.
type CellCounts struct {
	BCell    int `db:"b_cell" json:"b_cell"`
	CD8TCell int `db:"cd8_t_cell" json:"cd8_t_cell"`
	CD4TCell int `db:"cd4_t_cell" json:"cd4_t_cell"`
	NKCell   int `db:"nk_cell" json:"nk_cell"`
	Monocyte int `db:"monocyte" json:"monocyte"`
}

// Total returns the sum of all five population counts.
func (c CellCounts) Total() int {
	return c.BCell + c.CD8TCell + c.CD4TCell + c.NKCell + c.Monocyte
}

// Get returns the count for a single population.
func (c CellCounts) Get(p Population) int {
	switch p {
	case PopulationBCell:
		return c.BCell
	case PopulationCD8TCell:
		return c.CD8TCell
	case PopulationCD4TCell:
		return c.CD4TCell
	case PopulationNKCell:
		return c.NKCell
	case PopulationMonocyte:
		return c.Monocyte
	}
	return 0
}

// Validate checks that no count is negative.
func (c CellCounts) Validate() error {
	for _, p := range Populations() {
		if c.Get(p) < 0 {
			return NewFieldError(string(p), fmt.Sprintf("count must be non-negative, got %d", c.Get(p)))
		}
	}
	return nil
}

// Sample represents one blood draw from a subject with its cytometry counts.
type Sample struct {
	SubjectID         string `db:"subject" json:"subject"`
	ID                string `db:"sample" json:"sample"`
	Type              string `db:"sample_type" json:"sample_type"`
	TimeFromTreatment int    `db:"time_from_treatment" json:"time_from_treatment"`
	CellCounts
}

// Validate checks the structural constraints on a sample record.
func (s Sample) Validate() error {
	if s.ID == "" {
		return NewFieldError("sample", "must not be empty")
	}
	if s.SubjectID == "" {
		return NewFieldError("subject", "must not be empty")
	}
	if s.Type == "" {
		return NewFieldError("sample_type", "must not be empty")
	}
	if s.TimeFromTreatment < 0 {
		return NewFieldError("time_from_treatment", fmt.Sprintf("must be non-negative, got %d", s.TimeFromTreatment))
	}
	return s.CellCounts.Validate()
}

// CohortFilter selects the samples a comparison or report runs over. String
// fields match exactly; BaselineOnly additionally restricts to samples taken
// at time_from_treatment zero.
type CohortFilter struct {
	Treatment    string `json:"treatment"`
	Condition    string `json:"condition"`
	SampleType   string `json:"sample_type"`
	BaselineOnly bool   `json:"baseline_only"`
}

// TrialCohort is the primary analysis cohort: melanoma subjects treated with
// miraclib, PBMC samples at any time point.
func TrialCohort() CohortFilter {
	return CohortFilter{
		Treatment:  "miraclib",
		Condition:  "melanoma",
		SampleType: "PBMC",
	}
}

// Baseline returns a copy of the filter restricted to baseline samples.
func (f CohortFilter) Baseline() CohortFilter {
	f.BaselineOnly = true
	return f
}

// Describe renders the filter for report headings, e.g.
// "treatment=miraclib, condition=melanoma, sample_type=PBMC, baseline".
func (f CohortFilter) Describe() string {
	s := fmt.Sprintf("treatment=%s, condition=%s, sample_type=%s", f.Treatment, f.Condition, f.SampleType)
	if f.BaselineOnly {
		s += ", baseline"
	}
	return s
}
