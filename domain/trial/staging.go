package trial

// StagingRow is one verbatim record of the input file: subject attributes
// repeated next to one sample's counts. The loader stages these rows before
// normalizing them into subjects and samples.
type StagingRow struct {
	Project           string `csv:"project" db:"project" json:"project"`
	Subject           string `csv:"subject" db:"subject" json:"subject"`
	Condition         string `csv:"condition" db:"condition" json:"condition"`
	Age               int    `csv:"age" db:"age" json:"age"`
	Sex               string `csv:"sex" db:"sex" json:"sex"`
	Treatment         string `csv:"treatment" db:"treatment" json:"treatment"`
	Response          string `csv:"response" db:"response" json:"response"`
	Sample            string `csv:"sample" db:"sample" json:"sample"`
	SampleType        string `csv:"sample_type" db:"sample_type" json:"sample_type"`
	TimeFromTreatment int    `csv:"time_from_treatment" db:"time_from_treatment" json:"time_from_treatment"`
	BCell             int    `csv:"b_cell" db:"b_cell" json:"b_cell"`
	CD8TCell          int    `csv:"cd8_t_cell" db:"cd8_t_cell" json:"cd8_t_cell"`
	CD4TCell          int    `csv:"cd4_t_cell" db:"cd4_t_cell" json:"cd4_t_cell"`
	NKCell            int    `csv:"nk_cell" db:"nk_cell" json:"nk_cell"`
	Monocyte          int    `csv:"monocyte" db:"monocyte" json:"monocyte"`
}

// ExpectedHeaders returns the fifteen column headers of the input file in
// their required order.
func ExpectedHeaders() []string {
	return []string{
		"project", "subject", "condition", "age", "sex", "treatment", "response",
		"sample", "sample_type", "time_from_treatment",
		"b_cell", "cd8_t_cell", "cd4_t_cell", "nk_cell", "monocyte",
	}
}

// ToSubject projects the subject-level attributes out of the row.
func (r StagingRow) ToSubject() Subject {
	return Subject{
		Project:   r.Project,
		ID:        r.Subject,
		Condition: r.Condition,
		Age:       r.Age,
		Sex:       r.Sex,
		Treatment: r.Treatment,
		Response:  r.Response,
	}
}

// ToSample projects the sample-level attributes out of the row.
func (r StagingRow) ToSample() Sample {
	return Sample{
		SubjectID:         r.Subject,
		ID:                r.Sample,
		Type:              r.SampleType,
		TimeFromTreatment: r.TimeFromTreatment,
		CellCounts: CellCounts{
			BCell:    r.BCell,
			CD8TCell: r.CD8TCell,
			CD4TCell: r.CD4TCell,
			NKCell:   r.NKCell,
			Monocyte: r.Monocyte,
		},
	}
}

// Validate checks the row through both of its projections.
func (r StagingRow) Validate() error {
	if err := r.ToSubject().Validate(); err != nil {
		return err
	}
	return r.ToSample().Validate()
}
