package ports

import (
	"context"

	"immunotrial/domain/report"
	"immunotrial/domain/trial"
)

// SubjectRepository provides read access to loaded subjects.
type SubjectRepository interface {
	List(ctx context.Context) ([]trial.Subject, error)
	Count(ctx context.Context) (int, error)
}

// SampleRepository provides read access to loaded samples.
type SampleRepository interface {
	List(ctx context.Context) ([]trial.Sample, error)
	Count(ctx context.Context) (int, error)
}

// ResponseSample pairs a sample with its subject's recorded response.
type ResponseSample struct {
	trial.Sample
	Response string `db:"response" json:"response"`
}

// CohortRepository answers the filtered questions the analysis asks of the
// store. Every method is parameterized by a filter; none of them bake cohort
// values into their SQL.
type CohortRepository interface {
	// ResponseSamples returns the filter's samples whose subject has a
	// recorded response, with that response attached.
	ResponseSamples(ctx context.Context, f trial.CohortFilter) ([]ResponseSample, error)

	// BaselineRows returns the raw subset-report rows for the filter.
	BaselineRows(ctx context.Context, f trial.CohortFilter) ([]report.SubsetRow, error)

	// SamplesPerProject counts the filter's samples grouped by project.
	SamplesPerProject(ctx context.Context, f trial.CohortFilter) ([]report.GroupCount, error)

	// SubjectsPerResponse counts distinct subjects grouped by response.
	SubjectsPerResponse(ctx context.Context, f trial.CohortFilter) ([]report.GroupCount, error)

	// SubjectsPerSex counts distinct subjects grouped by sex.
	SubjectsPerSex(ctx context.Context, f trial.CohortFilter) ([]report.GroupCount, error)

	// MeanCount averages one population's raw count over the filtered samples.
	MeanCount(ctx context.Context, f report.CountFilter) (report.MeanCount, error)
}
