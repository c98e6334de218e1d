package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"immunotrial/adapters/db"
	"immunotrial/adapters/ingest"
	"immunotrial/app"
	"immunotrial/domain/report"
	"immunotrial/domain/trial"
	"immunotrial/internal/config"
	"immunotrial/internal/console"
	"immunotrial/ports"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	var (
		input    = flag.String("input", cfg.Paths.InputFile, "cell count CSV or XLSX file to load")
		dsn      = flag.String("db", cfg.Database.DSN, "store DSN: SQLite file path or postgres:// URL")
		reset    = flag.Bool("reset", true, "drop and recreate the schema before loading")
		all      = flag.Bool("all", false, "print every frequency row instead of the preview")
		baseline = flag.Bool("baseline", false, "restrict the response comparison to baseline samples")
	)
	flag.Parse()

	if err := run(context.Background(), cfg, *input, *dsn, *reset, *all, *baseline); err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, input, dsn string, reset, all, baseline bool) error {
	store, err := db.Open(dsn, db.Options{})
	if err != nil {
		return err
	}
	defer store.Close()

	if reset {
		if err := store.ResetSchema(ctx); err != nil {
			return err
		}
	} else if err := store.EnsureSchema(ctx); err != nil {
		return err
	}

	rows, err := ingest.NewDataReader(input).Read()
	if err != nil {
		return err
	}

	loadReport, err := db.NewLoader(store).Load(ctx, input, rows)
	if err != nil {
		return err
	}

	out := console.NewWriter(os.Stdout)
	printLoadReport(out, loadReport)

	samples, err := db.NewSampleRepository(store).List(ctx)
	if err != nil {
		return err
	}
	printFrequencies(out, samples, all, cfg.Analysis.FrequencyPreview)

	cohorts := db.NewCohortRepository(store)

	filter := trial.TrialCohort()
	if baseline {
		filter = filter.Baseline()
	}
	comparison, err := app.NewAnalysisService(cohorts).CompareCohort(ctx, filter, cfg.Analysis.Alpha)
	if err != nil {
		return err
	}
	printComparison(out, comparison)

	subset, err := app.NewSubsetService(cohorts).BaselineReport(ctx, trial.TrialCohort())
	if err != nil {
		return err
	}
	printSubset(out, subset)

	return nil
}

func printLoadReport(out *console.Writer, r *ports.LoadReport) {
	out.Section("Data Loading")
	out.Line("Run ID:      %s", r.RunID)
	out.Line("Source:      %s", r.Source)
	out.Line("Rows staged: %d", r.RowsStaged)
	out.Line("Subjects:    %d", r.Subjects)
	out.Line("Samples:     %d", r.Samples)
	if r.ZeroTotal > 0 {
		out.Line("Zero-total samples: %d (excluded from frequency analysis)", r.ZeroTotal)
	}
	out.Line("Completed in %s", r.Duration.Round(time.Millisecond))
}

func printFrequencies(out *console.Writer, samples []trial.Sample, all bool, preview int) {
	frequencies, zeroTotal := trial.DeriveFrequencies(samples)

	out.Section("Population Frequencies")

	shown := len(frequencies)
	if !all && shown > preview {
		shown = preview
	}
	rows := make([][]string, 0, shown)
	for _, f := range frequencies[:shown] {
		rows = append(rows, []string{
			f.SampleID,
			strconv.Itoa(f.TotalCount),
			f.Population.Label(),
			strconv.Itoa(f.Count),
			fmt.Sprintf("%.2f", f.Percentage),
		})
	}
	out.Table([]string{"sample", "total_count", "population", "count", "percentage"}, rows)

	if shown < len(frequencies) {
		out.Line("... %d more rows (-all prints everything)", len(frequencies)-shown)
	}
	if zeroTotal > 0 {
		out.Line("%d sample(s) with zero total count carry no frequencies", zeroTotal)
	}
}

func printComparison(out *console.Writer, c *report.ComparisonReport) {
	out.Section("Response Comparison")
	out.Line("Cohort: %s", c.Filter.Describe())
	out.Line("Samples with recorded response: %d", c.SampleCount)
	out.Blank()

	rows := make([][]string, 0, len(c.Populations))
	for _, p := range c.Populations {
		row := []string{
			p.Label,
			strconv.Itoa(p.Responders.N),
			fmt.Sprintf("%.2f", p.Responders.Mean),
			strconv.Itoa(p.NonResponders.N),
			fmt.Sprintf("%.2f", p.NonResponders.Mean),
		}
		if p.Tested() {
			outcome := "not significant"
			if p.Significant(c.Alpha) {
				outcome = "significant"
			}
			row = append(row,
				fmt.Sprintf("%.3f", p.Result.TStatistic),
				fmt.Sprintf("%.4g", p.Result.PValue),
				outcome,
			)
		} else {
			row = append(row, "-", "-", p.SkipReason)
		}
		rows = append(rows, row)
	}
	out.Table([]string{"population", "n_yes", "mean_yes", "n_no", "mean_no", "t", "p", "outcome"}, rows)

	out.Blank()
	if c.SampleCount == 0 {
		out.Line("No samples with a recorded response match the cohort.")
		return
	}
	significant := c.SignificantPopulations()
	if len(significant) == 0 {
		out.Line("No population differs significantly between responders and non-responders at p < %g.", c.Alpha)
		return
	}
	for _, p := range significant {
		direction := "higher"
		if p.Result.MeanA < p.Result.MeanB {
			direction = "lower"
		}
		out.Line("%s relative frequency runs %s in responders: %.2f%% vs %.2f%% (t = %.3f, p = %.4g)",
			p.Label, direction, p.Result.MeanA, p.Result.MeanB, p.Result.TStatistic, p.Result.PValue)
	}
}

func printSubset(out *console.Writer, s *report.SubsetReport) {
	out.Section("Baseline Subset")
	out.Line("Filter: %s", s.Filter.Describe())
	out.Blank()

	rows := make([][]string, 0, len(s.Rows))
	for _, r := range s.Rows {
		rows = append(rows, []string{r.SampleID, r.SubjectID, r.Project, r.Response, r.Sex})
	}
	out.Table([]string{"sample", "subject", "project", "response", "sex"}, rows)

	printBreakdown(out, "Samples per project", "project", "samples", s.SamplesPerProject)
	printBreakdown(out, "Subjects per response", "response", "subjects", s.SubjectsPerResponse)
	printBreakdown(out, "Subjects per sex", "sex", "subjects", s.SubjectsPerSex)

	if mc := s.BaselineBCellMean; mc.N > 0 {
		out.Blank()
		out.Line("Mean %s count, male %s responders at baseline: %.2f (n = %d)",
			mc.Filter.Population.Label(), mc.Filter.Condition, mc.Mean, mc.N)
	}
}

func printBreakdown(out *console.Writer, title, keyHeader, countHeader string, groups []report.GroupCount) {
	out.Blank()
	out.Line("%s:", title)

	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		key := g.Key
		if key == "" {
			key = "(none)"
		}
		rows = append(rows, []string{key, strconv.Itoa(g.Count)})
	}
	out.Table([]string{keyHeader, countHeader}, rows)
}
