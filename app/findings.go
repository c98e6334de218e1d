package app

import (
	"fmt"
	"strings"

	"immunotrial/domain/report"
	"immunotrial/domain/trial"
)

// Findings writes the analysis conclusion in Markdown. Every sentence is
// derived from the reports in hand; nothing is canned per dataset, so the
// text stays honest when the input file changes.
func Findings(comparison *report.ComparisonReport, subset *report.SubsetReport) string {
	var b strings.Builder

	writeComparisonFindings(&b, comparison)
	if subset != nil {
		b.WriteString("\n")
		writeSubsetFindings(&b, subset)
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

func writeComparisonFindings(b *strings.Builder, cr *report.ComparisonReport) {
	if cr == nil {
		return
	}
	if cr.SampleCount == 0 {
		fmt.Fprintf(b, "No samples with a recorded response match the cohort (%s); no comparison was possible.\n",
			cr.Filter.Describe())
		return
	}

	significant := cr.SignificantPopulations()
	if len(significant) == 0 {
		fmt.Fprintf(b,
			"Across %d samples (%s), none of the %d panel populations shows a significant relative-frequency difference between responders and non-responders at p < %g.\n",
			cr.SampleCount, cr.Filter.Describe(), len(cr.Populations), cr.Alpha)
	} else {
		fmt.Fprintf(b,
			"Across %d samples (%s), %d of %d panel populations differ significantly between responders and non-responders at p < %g:\n\n",
			cr.SampleCount, cr.Filter.Describe(), len(significant), len(cr.Populations), cr.Alpha)
		for _, c := range significant {
			direction := "higher"
			if c.Result.MeanA < c.Result.MeanB {
				direction = "lower"
			}
			fmt.Fprintf(b, "- **%s** runs %s in responders: mean %.2f%% vs %.2f%% (t = %.2f, p = %.4g)\n",
				c.Label, direction, c.Result.MeanA, c.Result.MeanB, c.Result.TStatistic, c.Result.PValue)
		}
	}

	if skipped := cr.SkippedPopulations(); len(skipped) > 0 {
		names := make([]string, len(skipped))
		for i, c := range skipped {
			names[i] = fmt.Sprintf("%s (%s)", c.Label, c.SkipReason)
		}
		fmt.Fprintf(b, "\nNot tested: %s.\n", strings.Join(names, "; "))
	}
	if cr.ZeroTotalSkipped > 0 {
		fmt.Fprintf(b, "\n%d sample(s) with zero total cell count carried no frequencies and were excluded.\n",
			cr.ZeroTotalSkipped)
	}
}

func writeSubsetFindings(b *strings.Builder, sr *report.SubsetReport) {
	if len(sr.Rows) == 0 {
		fmt.Fprintf(b, "The baseline subset (%s) holds no samples.\n", sr.Filter.Describe())
		return
	}

	responders := countFor(sr.SubjectsPerResponse, trial.ResponseYes)
	nonResponders := countFor(sr.SubjectsPerResponse, trial.ResponseNo)
	males := countFor(sr.SubjectsPerSex, "M")
	females := countFor(sr.SubjectsPerSex, "F")

	fmt.Fprintf(b,
		"The baseline subset (%s) holds %d samples across %d project(s), with %d responder(s) and %d non-responder(s) among the subjects (%d male, %d female).\n",
		sr.Filter.Describe(), len(sr.Rows), len(sr.SamplesPerProject),
		responders, nonResponders, males, females)

	if mc := sr.BaselineBCellMean; mc.N > 0 {
		fmt.Fprintf(b, "Male %s responders average %.2f %s cells per baseline sample (n = %d).\n",
			sr.Filter.Condition, mc.Mean, mc.Filter.Population.Label(), mc.N)
	}
}

func countFor(groups []report.GroupCount, key string) int {
	for _, g := range groups {
		if g.Key == key {
			return g.Count
		}
	}
	return 0
}
