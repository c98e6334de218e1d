package trial

// PopulationFrequency is one row of the long-format frequency table: a single
// population's share of a single sample's total cell count.
type PopulationFrequency struct {
	SampleID   string     `db:"sample" json:"sample"`
	TotalCount int        `db:"total_count" json:"total_count"`
	Population Population `db:"population" json:"population"`
	Count      int        `db:"count" json:"count"`
	Percentage float64    `db:"percentage" json:"percentage"`
}

// DeriveFrequencies reshapes wide per-sample counts into long per-population
// rows, one row per population per sample, with the population's percentage
// of the sample total.
//
// A sample whose five counts sum to zero yields no rows; the second return
// value reports how many samples were skipped that way. This keeps NaN out of
// the table entirely. Output order is sample-major (input order), population
// order within each sample, so the table is deterministic.
func DeriveFrequencies(samples []Sample) ([]PopulationFrequency, int) {
	populations := Populations()
	rows := make([]PopulationFrequency, 0, len(samples)*len(populations))
	skipped := 0

	for _, s := range samples {
		total := s.Total()
		if total == 0 {
			skipped++
			continue
		}
		for _, p := range populations {
			count := s.Get(p)
			rows = append(rows, PopulationFrequency{
				SampleID:   s.ID,
				TotalCount: total,
				Population: p,
				Count:      count,
				Percentage: 100 * float64(count) / float64(total),
			})
		}
	}

	return rows, skipped
}

// FrequencyOf computes one population's percentage for a single sample.
// The boolean is false when the sample total is zero.
func FrequencyOf(s Sample, p Population) (float64, bool) {
	total := s.Total()
	if total == 0 {
		return 0, false
	}
	return 100 * float64(s.Get(p)) / float64(total), true
}
