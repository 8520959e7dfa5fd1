package main

import (
	"context"
	"fmt"

	"github.com/lukestiles/voice-memo-to-doc/internal/formatter"
	"github.com/lukestiles/voice-memo-to-doc/internal/models"
	"github.com/lukestiles/voice-memo-to-doc/internal/repositories"
	"github.com/lukestiles/voice-memo-to-doc/internal/shared"
	"github.com/urfave/cli/v3"
)

// RunsList lists recorded runs, newest first.
func (r *Runner) RunsList(ctx context.Context, cmd *cli.Command) error {
	config, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewRunRepository(db)

	criteria := map[string]any{}
	if status := cmd.String("status"); status != "" {
		criteria["status"] = status
	}

	runs, err := repo.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		payload := make([]map[string]any, 0, len(runs))
		for _, run := range runs {
			payload = append(payload, runPayload(run))
		}
		return r.writeJSON(payload, true)
	}

	if len(runs) == 0 {
		return r.writePlain("No runs recorded.\n")
	}

	for _, run := range runs {
		r.writePlain("#%d  %s  %q  %d files  %s\n", run.Sequence(), run.ID(), run.Title(), run.FileCount(), run.Status())
		r.writePlain("    %s\n", run.DocURL())
	}

	return nil
}

// RunsShow prints one run with its per-file results.
func (r *Runner) RunsShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: run id", shared.ErrMissingArgument)
	}

	config, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewRunRepository(db)

	run, err := repo.Get(id)
	if err != nil {
		return err
	}

	results, err := repo.GetResults(id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		payload := runPayload(run)
		payload["results"] = results
		return r.writeJSON(payload, true)
	}

	r.writePlain("Run #%d (%s)\n", run.Sequence(), run.ID())
	r.writePlain("Title:     %s\n", run.Title())
	r.writePlain("Status:    %s\n", run.Status())
	r.writePlain("Directory: %s\n", run.Directory())
	r.writePlain("Document:  %s\n", run.DocURL())
	r.writePlain("Started:   %s\n", run.StartedAt().Format(formatter.DefaultDateFormat))
	if !run.FinishedAt().IsZero() {
		r.writePlain("Finished:  %s\n", run.FinishedAt().Format(formatter.DefaultDateFormat))
	}

	if len(results) > 0 {
		r.writePlain("\nFiles:\n")
		for i, result := range results {
			r.writePlain("  %d. %s (%d characters)\n", i+1, result.File, len(result.Text))
		}
	}

	return nil
}

// runPayload flattens a run record for JSON output.
func runPayload(run *models.PersistedRun) map[string]any {
	return map[string]any{
		"id":          run.ID(),
		"sequence":    run.Sequence(),
		"title":       run.Title(),
		"doc_id":      run.DocID(),
		"doc_url":     run.DocURL(),
		"directory":   run.Directory(),
		"file_count":  run.FileCount(),
		"status":      run.Status(),
		"started_at":  run.StartedAt(),
		"finished_at": run.FinishedAt(),
	}
}
