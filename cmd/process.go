package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lukestiles/voice-memo-to-doc/internal/formatter"
	"github.com/lukestiles/voice-memo-to-doc/internal/models"
	"github.com/lukestiles/voice-memo-to-doc/internal/repositories"
	"github.com/lukestiles/voice-memo-to-doc/internal/shared"
	"github.com/lukestiles/voice-memo-to-doc/internal/tasks"
	"github.com/lukestiles/voice-memo-to-doc/internal/ui"
	"github.com/urfave/cli/v3"
)

// Process runs the full pipeline: transcribe each file, clean the text, and
// append the formatted entries to one new Google Doc.
func (r *Runner) Process(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	config, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	directory := cmd.String("directory")
	info, err := os.Stat(directory)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: directory not found: %s", shared.ErrInvalidArgument, directory)
	}

	requested := cmd.StringSlice("files")
	files := make([]string, 0, len(requested))
	for _, file := range requested {
		if _, err := os.Stat(filepath.Join(directory, file)); err != nil {
			r.logger.Warn("skipping missing file", "file", file, "directory", directory)
			continue
		}
		files = append(files, file)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no valid files to process", shared.ErrMissingArgument)
	}

	engine, err := r.buildEngine(ctx, config)
	if err != nil {
		return err
	}

	r.logger.Info("starting run", "files", len(files), "directory", directory)

	title := cmd.String("output")
	startedAt := time.Now()

	var result *tasks.RunResult
	if cmd.Bool("ui") {
		result, err = r.runWithUI(ctx, engine, files, directory, title)
	} else {
		result, err = r.runWithProgress(ctx, engine, files, directory, title)
	}
	if err != nil {
		if cmd.Bool("save") {
			r.saveFailedRun(config, directory, title, len(files), startedAt)
		}
		return err
	}

	if cmd.Bool("json") {
		if err := r.writeJSON(result.Results, true); err != nil {
			return err
		}
	} else {
		r.writePlainln("%s", formatter.RenderSummary(result.Document, result.Results, time.Since(startedAt)))
	}

	if cmd.Bool("save") {
		r.saveRun(config, directory, result)
	}

	return nil
}

// buildEngine wires the transcription and document services into a pipeline
// engine, preferring injected dependencies.
func (r *Runner) buildEngine(ctx context.Context, config *shared.Config) (tasks.Engine, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	transcription, err := r.transcriptionService(config)
	if err != nil {
		return nil, err
	}

	documents, err := r.documentService(ctx, config)
	if err != nil {
		return nil, err
	}

	return tasks.NewProcessor(transcription, documents, r.logger), nil
}

// runWithProgress executes the engine while printing progress lines.
func (r *Runner) runWithProgress(ctx context.Context, engine tasks.Engine, files []string, directory, title string) (*tasks.RunResult, error) {
	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.CreateDocument:
				r.writePlain("📄 %s\n", update.Message)
			case tasks.Transcribe:
				r.writePlain("\n🎙 %s\n", update.Message)
			case tasks.CleanText, tasks.AppendText:
				r.writePlain("   %s\n", update.Message)
			case tasks.FileDone:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	result, err := engine.Run(ctx, progressCh, files, directory, title)
	close(progressCh)
	<-done

	return result, err
}

// runWithUI executes the engine inside the interactive progress view.
func (r *Runner) runWithUI(ctx context.Context, engine tasks.Engine, files []string, directory, title string) (*tasks.RunResult, error) {
	model := ui.NewModel(ctx, engine, files, directory, title)
	program := tea.NewProgram(model)

	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("progress view failed: %w", err)
	}

	return final.(*ui.Model).Result()
}

// saveRun records a completed run in the history database.
//
// History is best effort: the document already exists, so a failed write is
// logged rather than surfaced as a run failure.
func (r *Runner) saveRun(config *shared.Config, directory string, result *tasks.RunResult) {
	db, err := r.openDatabase(config)
	if err != nil {
		r.logger.Warn("run history unavailable", "err", err)
		return
	}
	defer db.Close()

	repo := repositories.NewRunRepository(db)
	run := models.NewPersistedRun(
		result.Title,
		result.Document,
		directory,
		len(result.Results),
		models.RunStatusCompleted,
		result.StartedAt,
		result.FinishedAt,
	)

	if err := repo.Create(run); err != nil {
		r.logger.Warn("failed to record run", "err", err)
		return
	}
	if err := repo.SaveResults(run.ID(), result.Results); err != nil {
		r.logger.Warn("failed to record run results", "run_id", run.ID(), "err", err)
		return
	}

	r.logger.Info("recorded run", "id", run.ID(), "sequence", run.Sequence())
}

// saveFailedRun records an aborted run so failures show up in history.
//
// No document handle survives a failure, so only the run metadata is stored.
// Best effort, same as saveRun.
func (r *Runner) saveFailedRun(config *shared.Config, directory, title string, fileCount int, startedAt time.Time) {
	db, err := r.openDatabase(config)
	if err != nil {
		r.logger.Warn("run history unavailable", "err", err)
		return
	}
	defer db.Close()

	if title == "" {
		title = formatter.DefaultTitle(startedAt)
	}

	run := models.NewPersistedRun(
		title,
		models.DocumentHandle{},
		directory,
		fileCount,
		models.RunStatusFailed,
		startedAt,
		time.Now(),
	)

	repo := repositories.NewRunRepository(db)
	if err := repo.Create(run); err != nil {
		r.logger.Warn("failed to record failed run", "err", err)
		return
	}

	r.logger.Info("recorded failed run", "id", run.ID(), "sequence", run.Sequence())
}
