package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"

	"github.com/google/uuid"

	"github.com/dotcommander/outline/internal/analysis"
	"github.com/dotcommander/outline/internal/config"
	"github.com/dotcommander/outline/internal/outline"
	"github.com/dotcommander/outline/internal/storage"
)

const usage = `Usage:
  outline analyze <outline.yaml>   analyse an outline file without saving it
  outline import <outline.yaml>    validate an outline file and save it to the data directory
  outline report <story-id>        analyse a saved story
  outline init <config.yaml>       write the effective configuration to a new file`

func main() {
	if len(os.Args) < 3 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Logging, os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := newApp(cfg, logger)

	command, arg := os.Args[1], os.Args[2]
	switch command {
	case "analyze":
		err = app.analyzeFile(ctx, arg, os.Stdout)
	case "import":
		err = app.importFile(ctx, arg, os.Stdout)
	case "report":
		err = app.report(ctx, arg, os.Stdout)
	case "init":
		err = app.writeConfig(arg, os.Stdout)
	default:
		fmt.Printf("Unknown command: %s\n%s\n", command, usage)
		os.Exit(1)
	}

	if err != nil {
		logger.Error("Command failed", "command", command, "error", err)
		os.Exit(1)
	}
}

type app struct {
	cfg    *config.Config
	logger *slog.Logger
	runner *analysis.Runner

	stories       storage.Repository[*outline.Story]
	scenes        storage.Repository[*outline.Scene]
	conflicts     storage.Repository[*outline.Conflict]
	plotlines     storage.Repository[*outline.Plotline]
	foreshadowing storage.Repository[*outline.Foreshadowing]
}

func newApp(cfg *config.Config, logger *slog.Logger) *app {
	store := storage.NewFileSystem(cfg.Paths.DataDir)
	return &app{
		cfg:    cfg,
		logger: logger,
		runner: analysis.NewRunner(
			analysis.WithWorkers(cfg.Limits.MaxConcurrentAnalyses),
			analysis.WithRateLimit(cfg.Limits.RateLimit.ChaptersPerSecond, cfg.Limits.RateLimit.BurstSize),
			analysis.WithLogger(logger),
		),
		stories:       storage.NewDocumentRepository(store, "stories", func() *outline.Story { return new(outline.Story) }),
		scenes:        storage.NewDocumentRepository(store, "scenes", func() *outline.Scene { return new(outline.Scene) }),
		conflicts:     storage.NewDocumentRepository(store, "conflicts", func() *outline.Conflict { return new(outline.Conflict) }),
		plotlines:     storage.NewDocumentRepository(store, "plotlines", func() *outline.Plotline { return new(outline.Plotline) }),
		foreshadowing: storage.NewDocumentRepository(store, "foreshadowing", func() *outline.Foreshadowing { return new(outline.Foreshadowing) }),
	}
}

func loadOutline(path string) (*outline.Outline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading outline: %w", err)
	}
	doc, err := outline.ParseDocument(data)
	if err != nil {
		return nil, err
	}
	o, err := doc.Build()
	if err != nil {
		return nil, fmt.Errorf("building outline: %w", err)
	}
	return o, nil
}

func (a *app) analyzeFile(ctx context.Context, path string, w io.Writer) error {
	o, err := loadOutline(path)
	if err != nil {
		return err
	}
	return a.analyze(ctx, o, w)
}

func (a *app) analyze(ctx context.Context, o *outline.Outline, w io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Limits.AnalysisTimeout)
	defer cancel()

	results, err := a.runner.Run(ctx, analysis.ChapterInputs(o))
	if err != nil {
		return fmt.Errorf("analysing story %s: %w", o.Story.ID, err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		StoryID  uuid.UUID                `json:"story_id"`
		Title    string                   `json:"title"`
		Chapters []analysis.ChapterResult `json:"chapters"`
	}{o.Story.ID, o.Story.Title, results})
}

func (a *app) importFile(ctx context.Context, path string, w io.Writer) error {
	o, err := loadOutline(path)
	if err != nil {
		return err
	}

	if err := a.stories.Save(ctx, o.Story); err != nil {
		return err
	}
	for _, s := range o.Scenes {
		if err := a.scenes.Save(ctx, s); err != nil {
			return err
		}
	}
	for _, c := range o.Conflicts {
		if err := a.conflicts.Save(ctx, c); err != nil {
			return err
		}
	}
	for _, p := range o.Plotlines {
		if err := a.plotlines.Save(ctx, p); err != nil {
			return err
		}
	}
	for _, f := range o.Foreshadowing {
		if err := a.foreshadowing.Save(ctx, f); err != nil {
			return err
		}
	}

	a.logger.Info("Outline imported",
		"story_id", o.Story.ID,
		"chapters", o.Story.ChapterCount(),
		"scenes", len(o.Scenes),
		"data_dir", a.cfg.Paths.DataDir,
	)
	_, err = fmt.Fprintln(w, o.Story.ID)
	return err
}

func (a *app) report(ctx context.Context, rawID string, w io.Writer) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("parsing story id: %w", err)
	}

	story, err := a.stories.Get(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("story %s has not been imported", id)
	}
	if err != nil {
		return err
	}

	all, err := a.scenes.List(ctx)
	if err != nil {
		return err
	}
	o := &outline.Outline{Story: story}
	for _, s := range all {
		if _, ok := story.Chapter(s.ChapterID); ok {
			o.Scenes = append(o.Scenes, s)
		}
	}

	return a.analyze(ctx, o, w)
}

// writeConfig saves the loaded configuration to path. An existing file is
// left untouched.
func (a *app) writeConfig(path string, w io.Writer) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %s already exists", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking config file: %w", err)
	}

	if err := config.Save(a.cfg, path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	a.logger.Info("Config written", "path", path)
	_, err := fmt.Fprintln(w, path)
	return err
}
