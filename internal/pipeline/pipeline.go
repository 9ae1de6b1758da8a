// Package pipeline runs one report: load, aggregate, derive, compare,
// then write charts, the summary workbook and run metrics.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"regionstats/internal/aggregate"
	"regionstats/internal/analysis"
	"regionstats/internal/chart"
	"regionstats/internal/compare"
	"regionstats/internal/config"
	"regionstats/internal/dataset"
	"regionstats/internal/export"
	"regionstats/internal/infrastructure"
)

var (
	// ErrNoUsableRows is returned when every input row was rejected.
	ErrNoUsableRows = errors.New("no usable rows in input")
	// ErrOutput wraps failures writing charts, the workbook or metrics.
	ErrOutput = errors.New("output failed")
)

// Deps are the collaborators of a run. Zero values are replaced with the
// production defaults; a nil Stdout suppresses the console overview.
type Deps struct {
	Renderer chart.Renderer
	Logger   *slog.Logger
	Metrics  *infrastructure.Metrics
	Stdout   io.Writer
}

// Result summarises a completed run.
type Result struct {
	Stats      dataset.LoadStats
	LatestYear int
	Reference  string
	// ReferencePresent is false when the reference region has no rows;
	// the run still succeeds with the national charts only.
	ReferencePresent bool
	Selected         []string
	Charts           []string
	Skipped          []chart.Skip
	Workbook         string
	MetricsFile      string
}

// Run executes the report for a validated configuration.
func Run(cfg *config.Config, deps Deps) (*Result, error) {
	start := time.Now()
	deps = withDefaults(deps)
	logger := deps.Logger.With(slog.String("component", "pipeline"))

	ds, err := dataset.Load(cfg.InputPath, dataset.LoadOptions{
		Delimiter: cfg.DelimiterRune(),
		Logger:    deps.Logger.With(slog.String("component", "dataset")),
	})
	if err != nil {
		return nil, err
	}
	deps.Metrics.RowsLoaded.Add(float64(ds.Stats.Loaded))
	deps.Metrics.RowsRejected.Add(float64(ds.Stats.Rejected))
	if len(ds.Records) == 0 {
		return nil, fmt.Errorf("%w: %s (%d rows read)", ErrNoUsableRows, cfg.InputPath, ds.Stats.Total)
	}

	tables := aggregate.Build(ds.Records)
	latest, _ := tables.LatestYear()
	deps.Metrics.LatestYear.Set(float64(latest))

	res := &Result{
		Stats:            ds.Stats,
		LatestYear:       latest,
		Reference:        cfg.ReferenceRegion,
		ReferencePresent: tables.HasRegion(cfg.ReferenceRegion),
	}

	ranking := analysis.RankYear(tables, latest)
	res.Selected = compare.SelectRegions(ranking, tables.Regions(), cfg.ReferenceRegion, cfg.CompareRegions)

	if rank, ok := analysis.RankOf(ranking, cfg.ReferenceRegion); ok {
		logger.Info("reference region ranked",
			slog.String("region", cfg.ReferenceRegion),
			slog.Int("year", latest),
			slog.Int("rank", rank),
			slog.Int("of", len(ranking)))
	} else if !res.ReferencePresent {
		logger.Warn("reference region not in data; reference charts will be skipped",
			slog.String("region", cfg.ReferenceRegion))
	}
	logger.Info("comparison set selected", slog.Any("regions", res.Selected))

	regionGrowth := analysis.RegionGrowth(tables)
	yoy := analysis.YoYByRegion(tables)
	mix := compare.CategoryMix(tables, cfg.ReferenceRegion, latest)

	plan := chart.Build(chart.Input{
		Reference:      cfg.ReferenceRegion,
		TopN:           cfg.TopN,
		HeadlineCode:   cfg.HeadlineCategory,
		LatestYear:     latest,
		Tables:         tables,
		Latest:         ranking,
		Selected:       res.Selected,
		YoY:            yoy,
		RegionGrowth:   regionGrowth,
		CategoryGrowth: analysis.CategoryGrowth(tables, cfg.ReferenceRegion),
		Mix:            mix,
		RegionMix:      compare.RegionMix(tables, cfg.ReferenceRegion, latest),
		Trajectory:     analysis.RankTrajectory(tables, cfg.ReferenceRegion),
		Headline:       aggregate.NationalByCode(ds.Records, cfg.HeadlineCategory),
	})

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutput, err)
	}

	for _, c := range plan.Charts {
		path := filepath.Join(cfg.OutputDir, c.Name)
		if err := deps.Renderer.Render(c, path); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrOutput, err)
		}
		deps.Metrics.ChartsWritten.Inc()
		res.Charts = append(res.Charts, path)
		logger.Debug("chart written", slog.String("path", path), slog.String("kind", c.Kind.String()))
	}
	for _, s := range plan.Skipped {
		deps.Metrics.ChartsSkipped.Inc()
		logger.Info("chart skipped", slog.String("chart", s.Name), slog.String("reason", s.Reason))
	}
	res.Skipped = plan.Skipped

	if cfg.Workbook {
		res.Workbook = filepath.Join(cfg.OutputDir, export.WorkbookName(cfg.ReferenceRegion, latest))
		err := export.WriteWorkbook(res.Workbook, export.Summary{
			Reference:    cfg.ReferenceRegion,
			LatestYear:   latest,
			Tables:       tables,
			Ranking:      ranking,
			Mix:          mix,
			RegionGrowth: regionGrowth,
			YoY:          yoy,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrOutput, err)
		}
		logger.Info("workbook written", slog.String("path", res.Workbook))
	}

	if deps.Stdout != nil {
		export.PrintOverview(deps.Stdout, export.Overview{
			Stats:      ds.Stats,
			Years:      ds.Years(),
			Regions:    ds.Regions(),
			Categories: ds.Categories(),
			LatestYear: latest,
			Reference:  cfg.ReferenceRegion,
			Ranking:    ranking,
			Selected:   res.Selected,
			TopN:       cfg.TopN,
			Written:    len(res.Charts),
			Skipped:    len(res.Skipped),
		})
	}

	deps.Metrics.ObserveRun(start)
	if cfg.MetricsFile != "" {
		res.MetricsFile = outputPath(cfg.OutputDir, cfg.MetricsFile)
		if err := deps.Metrics.WriteTextfile(res.MetricsFile); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrOutput, err)
		}
	}

	logger.Info("run complete",
		slog.Int("charts_written", len(res.Charts)),
		slog.Int("charts_skipped", len(res.Skipped)),
		slog.Duration("elapsed", time.Since(start)))
	return res, nil
}

func withDefaults(deps Deps) Deps {
	if deps.Renderer == nil {
		deps.Renderer = chart.NewPlotRenderer()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = infrastructure.NewMetrics()
	}
	return deps
}

func outputPath(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
