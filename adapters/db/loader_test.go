package db

import (
	"context"
	"errors"
	"strings"
	"testing"

	"immunotrial/domain/trial"
	apperrors "immunotrial/internal/errors"
)

func TestLoader_Load(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	loadReport, err := NewLoader(store).Load(ctx, "cell-count.csv", fixtureRows())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loadReport.RunID == "" {
		t.Error("Expected a run ID, got empty string")
	}
	if loadReport.Source != "cell-count.csv" {
		t.Errorf("Expected source cell-count.csv, got %s", loadReport.Source)
	}
	if loadReport.RowsStaged != 10 {
		t.Errorf("Expected 10 rows staged, got %d", loadReport.RowsStaged)
	}
	if loadReport.Subjects != 7 {
		t.Errorf("Expected 7 subjects, got %d", loadReport.Subjects)
	}
	if loadReport.Samples != 10 {
		t.Errorf("Expected 10 samples, got %d", loadReport.Samples)
	}
	if loadReport.ZeroTotal != 0 {
		t.Errorf("Expected no zero-total samples, got %d", loadReport.ZeroTotal)
	}

	subjects, err := NewSubjectRepository(store).List(ctx)
	if err != nil {
		t.Fatalf("Failed to list subjects: %v", err)
	}
	if len(subjects) != 7 {
		t.Fatalf("Expected 7 subjects in store, got %d", len(subjects))
	}
	var sbj1 *trial.Subject
	for i := range subjects {
		if subjects[i].ID == "sbj1" {
			sbj1 = &subjects[i]
		}
	}
	if sbj1 == nil {
		t.Fatal("Expected sbj1 in store")
	}
	if sbj1.Project != "prj1" || sbj1.Age != 62 || sbj1.Response != trial.ResponseYes {
		t.Errorf("Unexpected sbj1 attributes: %+v", sbj1)
	}

	samples, err := NewSampleRepository(store).List(ctx)
	if err != nil {
		t.Fatalf("Failed to list samples: %v", err)
	}
	if len(samples) != 10 {
		t.Fatalf("Expected 10 samples in store, got %d", len(samples))
	}
	for _, s := range samples {
		if s.ID != "s4" {
			continue
		}
		if s.SubjectID != "sbj3" || s.BCell != 8000 || s.Monocyte != 20000 {
			t.Errorf("Unexpected s4 attributes: %+v", s)
		}
	}
}

func TestLoader_ZeroTotalCounted(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	rows := append(fixtureRows(), trial.StagingRow{
		Project: "prj1", Subject: "sbj8", Condition: "melanoma", Age: 59,
		Sex: "F", Treatment: "miraclib", Response: "no",
		Sample: "s11", SampleType: "PBMC", TimeFromTreatment: 0,
	})

	loadReport, err := NewLoader(store).Load(ctx, "fixture", rows)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loadReport.ZeroTotal != 1 {
		t.Errorf("Expected 1 zero-total sample, got %d", loadReport.ZeroTotal)
	}
	if loadReport.Samples != 11 {
		t.Errorf("Expected 11 samples, got %d", loadReport.Samples)
	}
}

func TestLoader_ExactDuplicateRowCollapses(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	rows := fixtureRows()
	rows = append(rows, rows[0])

	loadReport, err := NewLoader(store).Load(ctx, "fixture", rows)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loadReport.RowsStaged != 11 {
		t.Errorf("Expected 11 rows staged, got %d", loadReport.RowsStaged)
	}
	if loadReport.Subjects != 7 || loadReport.Samples != 10 {
		t.Errorf("Expected duplicate row to collapse to 7 subjects and 10 samples, got %d and %d",
			loadReport.Subjects, loadReport.Samples)
	}
}

func TestLoader_ConflictingRows(t *testing.T) {
	conflictingSubject := fixtureRows()[0]
	conflictingSubject.Age = 99
	conflictingSubject.Sample = "s99"

	conflictingSample := fixtureRows()[0]
	conflictingSample.BCell = 1

	tests := []struct {
		name    string
		extra   trial.StagingRow
		wantErr error
	}{
		{"Subject with conflicting attributes", conflictingSubject, trial.ErrDuplicateSubject},
		{"Sample with conflicting counts", conflictingSample, trial.ErrDuplicateSample},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := newTestStore(t)

			_, err := NewLoader(store).Load(ctx, "fixture", append(fixtureRows(), tt.extra))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Expected %v, got %v", tt.wantErr, err)
			}

			count, err := NewSubjectRepository(store).Count(ctx)
			if err != nil {
				t.Fatalf("Count failed: %v", err)
			}
			if count != 0 {
				t.Errorf("Expected nothing loaded after conflict, got %d subjects", count)
			}
		})
	}
}

func TestLoader_SecondLoadWithoutResetFails(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	loader := NewLoader(store)

	if _, err := loader.Load(ctx, "fixture", fixtureRows()); err != nil {
		t.Fatalf("First load failed: %v", err)
	}

	_, err := loader.Load(ctx, "fixture", fixtureRows())
	if err == nil {
		t.Fatal("Expected second load into a non-clean store to fail")
	}
	if apperrors.GetCode(err) != apperrors.CodeLoadError {
		t.Errorf("Expected code %s, got %s", apperrors.CodeLoadError, apperrors.GetCode(err))
	}
	if !strings.Contains(err.Error(), "store not clean") {
		t.Errorf("Expected key-violation message, got %q", err.Error())
	}

	// The failed load must roll back completely, staged rows included.
	var staged int
	if err := store.db.GetContext(ctx, &staged, `SELECT COUNT(*) FROM staging_rows`); err != nil {
		t.Fatalf("Failed to count staged rows: %v", err)
	}
	if staged != 10 {
		t.Errorf("Expected 10 staged rows after rollback, got %d", staged)
	}
}

func TestLoader_ResetThenReload(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	loader := NewLoader(store)

	first, err := loader.Load(ctx, "fixture", fixtureRows())
	if err != nil {
		t.Fatalf("First load failed: %v", err)
	}

	if err := store.ResetSchema(ctx); err != nil {
		t.Fatalf("ResetSchema failed: %v", err)
	}

	second, err := loader.Load(ctx, "fixture", fixtureRows())
	if err != nil {
		t.Fatalf("Reload failed: %v", err)
	}

	if first.Subjects != second.Subjects || first.Samples != second.Samples {
		t.Errorf("Expected identical counts across reload, got %d/%d then %d/%d",
			first.Subjects, first.Samples, second.Subjects, second.Samples)
	}
	if first.RunID == second.RunID {
		t.Error("Expected each load to carry its own run ID")
	}
}
