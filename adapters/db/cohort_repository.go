package db

import (
	"context"
	"fmt"

	"immunotrial/domain/report"
	"immunotrial/domain/trial"
	apperrors "immunotrial/internal/errors"
	"immunotrial/ports"
)

// cohortRepository implements the CohortRepository interface. Every query is
// built from the caller's filter with bound parameters; the SQL below never
// embeds a cohort value.
type cohortRepository struct {
	store *Store
}

// NewCohortRepository creates a new cohort repository
func NewCohortRepository(store *Store) ports.CohortRepository {
	return &cohortRepository{store: store}
}

// cohortWhere renders the shared filter clause. The returned SQL uses ?
// placeholders; callers pass it through Rebind before executing.
func cohortWhere(f trial.CohortFilter) (string, []interface{}) {
	clause := `subj.treatment = ? AND subj.condition = ? AND s.sample_type = ?`
	args := []interface{}{f.Treatment, f.Condition, f.SampleType}
	if f.BaselineOnly {
		clause += ` AND s.time_from_treatment = 0`
	}
	return clause, args
}

// ResponseSamples returns the filter's samples whose subject has a recorded
// response, ordered by sample code.
func (r *cohortRepository) ResponseSamples(ctx context.Context, f trial.CohortFilter) ([]ports.ResponseSample, error) {
	where, args := cohortWhere(f)
	query := r.store.db.Rebind(`SELECT
			s.subject, s.sample, s.sample_type, s.time_from_treatment,
			s.b_cell, s.cd8_t_cell, s.cd4_t_cell, s.nk_cell, s.monocyte,
			subj.response
		FROM samples s
		JOIN subjects subj ON subj.subject = s.subject
		WHERE ` + where + ` AND subj.response IN (?, ?)
		ORDER BY s.sample`)
	args = append(args, trial.ResponseYes, trial.ResponseNo)

	var samples []ports.ResponseSample
	if err := r.store.db.SelectContext(ctx, &samples, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query cohort samples: %w", err)
	}
	return samples, nil
}

// BaselineRows returns the raw subset-report rows for the filter.
func (r *cohortRepository) BaselineRows(ctx context.Context, f trial.CohortFilter) ([]report.SubsetRow, error) {
	where, args := cohortWhere(f)
	query := r.store.db.Rebind(`SELECT
			s.sample, subj.subject, subj.project, subj.response, subj.sex
		FROM samples s
		JOIN subjects subj ON subj.subject = s.subject
		WHERE ` + where + `
		ORDER BY s.sample`)

	var rows []report.SubsetRow
	if err := r.store.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query subset rows: %w", err)
	}
	return rows, nil
}

// SamplesPerProject counts the filter's samples grouped by project.
func (r *cohortRepository) SamplesPerProject(ctx context.Context, f trial.CohortFilter) ([]report.GroupCount, error) {
	where, args := cohortWhere(f)
	query := r.store.db.Rebind(`SELECT
			subj.project AS key, COUNT(s.sample) AS count
		FROM samples s
		JOIN subjects subj ON subj.subject = s.subject
		WHERE ` + where + `
		GROUP BY subj.project
		ORDER BY subj.project`)

	return r.groupCounts(ctx, query, args, "samples per project")
}

// SubjectsPerResponse counts distinct subjects grouped by response.
func (r *cohortRepository) SubjectsPerResponse(ctx context.Context, f trial.CohortFilter) ([]report.GroupCount, error) {
	where, args := cohortWhere(f)
	query := r.store.db.Rebind(`SELECT
			subj.response AS key, COUNT(DISTINCT subj.subject) AS count
		FROM samples s
		JOIN subjects subj ON subj.subject = s.subject
		WHERE ` + where + `
		GROUP BY subj.response
		ORDER BY subj.response`)

	return r.groupCounts(ctx, query, args, "subjects per response")
}

// SubjectsPerSex counts distinct subjects grouped by sex.
func (r *cohortRepository) SubjectsPerSex(ctx context.Context, f trial.CohortFilter) ([]report.GroupCount, error) {
	where, args := cohortWhere(f)
	query := r.store.db.Rebind(`SELECT
			subj.sex AS key, COUNT(DISTINCT subj.subject) AS count
		FROM samples s
		JOIN subjects subj ON subj.subject = s.subject
		WHERE ` + where + `
		GROUP BY subj.sex
		ORDER BY subj.sex`)

	return r.groupCounts(ctx, query, args, "subjects per sex")
}

func (r *cohortRepository) groupCounts(ctx context.Context, query string, args []interface{}, what string) ([]report.GroupCount, error) {
	var counts []report.GroupCount
	if err := r.store.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", what, err)
	}
	return counts, nil
}

// MeanCount averages one population's raw count over the filtered samples.
// The population picks the column; it is checked against the enum before it
// goes anywhere near the SQL text. All filter values are bound parameters.
func (r *cohortRepository) MeanCount(ctx context.Context, f report.CountFilter) (report.MeanCount, error) {
	if !f.Population.Valid() {
		return report.MeanCount{}, apperrors.ValidationError(fmt.Sprintf("unknown population: %s", f.Population))
	}

	clause := `1 = 1`
	var args []interface{}
	if f.Condition != "" {
		clause += ` AND subj.condition = ?`
		args = append(args, f.Condition)
	}
	if f.Response != "" {
		clause += ` AND subj.response = ?`
		args = append(args, f.Response)
	}
	if f.Sex != "" {
		clause += ` AND subj.sex = ?`
		args = append(args, f.Sex)
	}
	if f.BaselineOnly {
		clause += ` AND s.time_from_treatment = 0`
	}

	query := r.store.db.Rebind(fmt.Sprintf(`SELECT
			COALESCE(AVG(s.%s), 0) AS mean, COUNT(*) AS n
		FROM samples s
		JOIN subjects subj ON subj.subject = s.subject
		WHERE `+clause, f.Population))

	var row struct {
		Mean float64 `db:"mean"`
		N    int     `db:"n"`
	}
	if err := r.store.db.GetContext(ctx, &row, query, args...); err != nil {
		return report.MeanCount{}, fmt.Errorf("failed to query mean count: %w", err)
	}

	return report.MeanCount{Filter: f, N: row.N, Mean: row.Mean}, nil
}
