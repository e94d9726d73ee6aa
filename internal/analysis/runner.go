package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/dotcommander/outline/internal/outline"
)

// ChapterInput is one chapter's scene snapshot queued for analysis.
type ChapterInput struct {
	ChapterID uuid.UUID
	Title     string
	Scenes    []*outline.Scene
}

// ChapterResult pairs both reports for a chapter.
type ChapterResult struct {
	ChapterID uuid.UUID           `json:"chapter_id"`
	Title     string              `json:"title"`
	Pacing    ChapterPacingReport `json:"pacing"`
	Health    ChapterHealthReport `json:"health"`
}

// Runner analyses many chapters concurrently. Each chapter is handled by the
// pure analysis functions; the runner adds only scheduling and logging.
type Runner struct {
	workers int
	limiter *rate.Limiter
	logger  *slog.Logger
}

// RunnerOption allows customization of runner behavior
type RunnerOption func(*runnerConfig)

type runnerConfig struct {
	workers int
	perSec  float64
	burst   int
	logger  *slog.Logger
}

// WithWorkers sets the number of chapters analysed at once
func WithWorkers(workers int) RunnerOption {
	return func(c *runnerConfig) {
		if workers > 0 {
			c.workers = workers
		}
	}
}

// WithRateLimit caps how many chapters start per second. Zero disables the cap.
func WithRateLimit(perSecond float64, burst int) RunnerOption {
	return func(c *runnerConfig) {
		if perSecond > 0 {
			c.perSec = perSecond
			c.burst = max(burst, 1)
		}
	}
}

func WithLogger(logger *slog.Logger) RunnerOption {
	return func(c *runnerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewRunner(options ...RunnerOption) *Runner {
	config := runnerConfig{
		workers: 4,
		logger:  slog.Default(),
	}
	for _, option := range options {
		option(&config)
	}

	r := &Runner{
		workers: config.workers,
		logger:  config.logger.With("component", "analysis_runner"),
	}
	if config.perSec > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(config.perSec), config.burst)
	}
	return r
}

// Analyze runs both analyses on a single chapter.
func Analyze(in ChapterInput) ChapterResult {
	return ChapterResult{
		ChapterID: in.ChapterID,
		Title:     in.Title,
		Pacing:    CalculateChapterPacing(in.ChapterID, in.Scenes),
		Health:    AnalyzeChapterStructure(in.ChapterID, in.Scenes),
	}
}

// Run analyses every input and returns results in input order. The first
// cancellation or limiter failure stops the batch.
func (r *Runner) Run(ctx context.Context, inputs []ChapterInput) ([]ChapterResult, error) {
	if len(inputs) == 0 {
		r.logger.Debug("No chapters to analyse")
		return []ChapterResult{}, nil
	}

	start := time.Now()
	r.logger.Info("Starting chapter analysis",
		"worker_count", r.workers,
		"chapter_count", len(inputs),
		"rate_limited", r.limiter != nil,
	)

	results := make([]ChapterResult, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			if r.limiter != nil {
				if err := r.limiter.Wait(ctx); err != nil {
					return fmt.Errorf("waiting to analyse chapter %s: %w", in.ChapterID, err)
				}
			}
			if err := ctx.Err(); err != nil {
				r.logger.Warn("Chapter analysis cancelled",
					"chapter_id", in.ChapterID,
				)
				return err
			}

			results[i] = Analyze(in)

			r.logger.Debug("Chapter analysed",
				"chapter_id", in.ChapterID,
				"scene_count", len(in.Scenes),
				"health", results[i].Health.HealthScore,
				"pacing_issues", len(results[i].Pacing.Issues),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.logger.Error("Chapter analysis failed",
			"error", err,
		)
		return nil, err
	}

	r.logger.Info("Chapter analysis completed",
		"chapter_count", len(results),
		"duration", time.Since(start),
	)
	return results, nil
}

// ChapterInputs builds one input per chapter of o, in chapter order.
func ChapterInputs(o *outline.Outline) []ChapterInput {
	chapters := o.Story.Chapters()
	inputs := make([]ChapterInput, 0, len(chapters))
	for _, c := range chapters {
		inputs = append(inputs, ChapterInput{
			ChapterID: c.ID,
			Title:     c.Title,
			Scenes:    o.ChapterScenes(c.ID),
		})
	}
	return inputs
}
