package ui

import (
	"context"
	"html/template"
	"sync"
	"time"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"golang.org/x/sync/errgroup"

	"immunotrial/adapters/chart"
	"immunotrial/app"
	"immunotrial/domain/report"
	"immunotrial/domain/trial"
	apperrors "immunotrial/internal/errors"
	"immunotrial/ports"
)

// Chart breakdown keys served under /charts/bar/.
const (
	BreakdownProject  = "project"
	BreakdownResponse = "response"
	BreakdownSex      = "sex"
)

// Snapshot is everything the dashboard serves, read once from the store at
// startup. The store sees no further queries after the snapshot is built.
type Snapshot struct {
	LoadedAt     time.Time
	Subjects     []trial.Subject
	Samples      []trial.Sample
	Frequencies  []trial.PopulationFrequency
	ZeroTotal    int
	Comparison   *report.ComparisonReport
	Subset       *report.SubsetReport
	Findings     string
	FindingsHTML template.HTML
	BoxPlots     map[trial.Population][]byte
	BarCharts    map[string][]byte
}

// Dependencies carries what BuildSnapshot reads and renders with.
type Dependencies struct {
	Subjects ports.SubjectRepository
	Samples  ports.SampleRepository
	Analysis *app.AnalysisService
	Subset   *app.SubsetService
	Renderer *chart.Renderer
}

// BuildSnapshot loads the trial data, runs both analyses, and prerenders
// every chart. Chart rendering fans out since each image is independent.
func BuildSnapshot(ctx context.Context, deps Dependencies, filter trial.CohortFilter, alpha float64) (*Snapshot, error) {
	subjects, err := deps.Subjects.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load subjects")
	}
	samples, err := deps.Samples.List(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to load samples")
	}
	frequencies, zeroTotal := trial.DeriveFrequencies(samples)

	comparison, err := deps.Analysis.CompareCohort(ctx, filter, alpha)
	if err != nil {
		return nil, err
	}
	subset, err := deps.Subset.BaselineReport(ctx, filter)
	if err != nil {
		return nil, err
	}

	findings := app.Findings(comparison, subset)

	snapshot := &Snapshot{
		LoadedAt:     time.Now(),
		Subjects:     subjects,
		Samples:      samples,
		Frequencies:  frequencies,
		ZeroTotal:    zeroTotal,
		Comparison:   comparison,
		Subset:       subset,
		Findings:     findings,
		FindingsHTML: renderMarkdown(findings),
		BoxPlots:     make(map[trial.Population][]byte, len(comparison.Populations)),
		BarCharts:    make(map[string][]byte, 3),
	}

	var g errgroup.Group
	var mu sync.Mutex

	for _, c := range comparison.Populations {
		c := c
		g.Go(func() error {
			png, err := deps.Renderer.BoxPlot(c)
			if err != nil {
				return err
			}
			mu.Lock()
			snapshot.BoxPlots[c.Population] = png
			mu.Unlock()
			return nil
		})
	}

	bars := []struct {
		key    string
		title  string
		yLabel string
		groups []report.GroupCount
	}{
		{BreakdownProject, "Baseline Samples per Project", "Samples", subset.SamplesPerProject},
		{BreakdownResponse, "Baseline Subjects per Response", "Subjects", subset.SubjectsPerResponse},
		{BreakdownSex, "Baseline Subjects per Sex", "Subjects", subset.SubjectsPerSex},
	}
	for _, bar := range bars {
		bar := bar
		g.Go(func() error {
			png, err := deps.Renderer.BarChart(bar.title, bar.yLabel, bar.groups)
			if err != nil {
				return err
			}
			mu.Lock()
			snapshot.BarCharts[bar.key] = png
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, apperrors.RenderError("failed to prerender charts", err)
	}

	return snapshot, nil
}

// renderMarkdown converts the findings text to HTML for the dashboard.
func renderMarkdown(md string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse([]byte(md))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return template.HTML(markdown.Render(doc, renderer))
}
