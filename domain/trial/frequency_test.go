package trial

import (
	"math"
	"testing"
)

func TestDeriveFrequencies_PercentagesSumTo100(t *testing.T) {
	samples := []Sample{
		{SubjectID: "sbj1", ID: "s1", Type: "PBMC", CellCounts: CellCounts{BCell: 36000, CD8TCell: 19000, CD4TCell: 35000, NKCell: 6000, Monocyte: 9000}},
		{SubjectID: "sbj2", ID: "s2", Type: "PBMC", CellCounts: CellCounts{BCell: 1, CD8TCell: 2, CD4TCell: 3, NKCell: 4, Monocyte: 5}},
		{SubjectID: "sbj3", ID: "s3", Type: "WB", CellCounts: CellCounts{BCell: 7, CD8TCell: 0, CD4TCell: 0, NKCell: 0, Monocyte: 0}},
	}

	rows, skipped := DeriveFrequencies(samples)
	if skipped != 0 {
		t.Fatalf("Expected no skipped samples, got %d", skipped)
	}
	if len(rows) != len(samples)*5 {
		t.Fatalf("Expected %d rows, got %d", len(samples)*5, len(rows))
	}

	sums := make(map[string]float64)
	for _, row := range rows {
		sums[row.SampleID] += row.Percentage
	}
	for sampleID, sum := range sums {
		if math.Abs(sum-100) > 1e-6 {
			t.Errorf("Sample %s: percentages sum to %.9f, expected 100", sampleID, sum)
		}
	}
}

func TestDeriveFrequencies_EqualCountsGiveTwentyPercent(t *testing.T) {
	samples := []Sample{
		{SubjectID: "sbj1", ID: "s1", Type: "PBMC", CellCounts: CellCounts{BCell: 10, CD8TCell: 10, CD4TCell: 10, NKCell: 10, Monocyte: 10}},
	}

	rows, _ := DeriveFrequencies(samples)
	if len(rows) != 5 {
		t.Fatalf("Expected 5 rows, got %d", len(rows))
	}
	for _, row := range rows {
		if row.Percentage != 20.0 {
			t.Errorf("Population %s: expected exactly 20.0, got %v", row.Population, row.Percentage)
		}
		if row.TotalCount != 50 {
			t.Errorf("Population %s: expected total 50, got %d", row.Population, row.TotalCount)
		}
	}
}

func TestDeriveFrequencies_ZeroTotalSampleSkipped(t *testing.T) {
	samples := []Sample{
		{SubjectID: "sbj1", ID: "s1", Type: "PBMC", CellCounts: CellCounts{BCell: 10, CD8TCell: 10, CD4TCell: 10, NKCell: 10, Monocyte: 10}},
		{SubjectID: "sbj2", ID: "s2", Type: "PBMC"},
	}

	rows, skipped := DeriveFrequencies(samples)
	if skipped != 1 {
		t.Fatalf("Expected 1 skipped sample, got %d", skipped)
	}
	if len(rows) != 5 {
		t.Fatalf("Expected 5 rows for the remaining sample, got %d", len(rows))
	}
	for _, row := range rows {
		if row.SampleID == "s2" {
			t.Errorf("Zero-total sample s2 must not produce rows, got %+v", row)
		}
		if math.IsNaN(row.Percentage) || math.IsInf(row.Percentage, 0) {
			t.Errorf("Row %s/%s: non-finite percentage %v", row.SampleID, row.Population, row.Percentage)
		}
	}
}

func TestDeriveFrequencies_DeterministicOrder(t *testing.T) {
	samples := []Sample{
		{SubjectID: "sbj2", ID: "s9", Type: "PBMC", CellCounts: CellCounts{BCell: 1, CD8TCell: 1, CD4TCell: 1, NKCell: 1, Monocyte: 1}},
		{SubjectID: "sbj1", ID: "s1", Type: "PBMC", CellCounts: CellCounts{BCell: 2, CD8TCell: 2, CD4TCell: 2, NKCell: 2, Monocyte: 2}},
	}

	rows, _ := DeriveFrequencies(samples)

	wantSamples := []string{"s9", "s9", "s9", "s9", "s9", "s1", "s1", "s1", "s1", "s1"}
	for i, row := range rows {
		if row.SampleID != wantSamples[i] {
			t.Fatalf("Row %d: expected sample %s, got %s", i, wantSamples[i], row.SampleID)
		}
		if row.Population != Populations()[i%5] {
			t.Fatalf("Row %d: expected population %s, got %s", i, Populations()[i%5], row.Population)
		}
	}
}

func TestFrequencyOf(t *testing.T) {
	s := Sample{ID: "s1", CellCounts: CellCounts{BCell: 25, CD8TCell: 25, CD4TCell: 25, NKCell: 25, Monocyte: 0}}

	pct, ok := FrequencyOf(s, PopulationBCell)
	if !ok {
		t.Fatal("Expected ok for non-zero total")
	}
	if pct != 25.0 {
		t.Errorf("Expected 25.0, got %v", pct)
	}

	if _, ok := FrequencyOf(Sample{ID: "s2"}, PopulationBCell); ok {
		t.Error("Expected not ok for zero-total sample")
	}
}
