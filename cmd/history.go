package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/oneshot/internal/formatter"
	"github.com/desertthunder/oneshot/internal/models"
	"github.com/desertthunder/oneshot/internal/repositories"
	"github.com/desertthunder/oneshot/internal/shared"
	"github.com/urfave/cli/v3"
)

// runJSON is the JSON shape of a recorded run.
type runJSON struct {
	ID         string     `json:"id"`
	Address    string     `json:"address"`
	Path       string     `json:"path"`
	Outcome    string     `json:"outcome"`
	ErrorCode  string     `json:"error_code,omitempty"`
	Detail     string     `json:"detail,omitempty"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func newRunJSON(run *models.Run) runJSON {
	outcome := "pending"
	if run.Finished() {
		outcome = run.Kind().String()
	}
	return runJSON{
		ID:         run.ID(),
		Address:    run.Address(),
		Path:       run.Path(),
		Outcome:    outcome,
		ErrorCode:  run.ErrorCode(),
		Detail:     run.Detail(),
		StartedAt:  run.CreatedAt(),
		FinishedAt: run.FinishedAt(),
	}
}

// History lists recorded runs, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	criteria := map[string]any{"limit": int(cmd.Int("limit"))}
	if cmd.IsSet("outcome") {
		kind, err := models.ParseOutcomeKind(cmd.String("outcome"))
		if err != nil {
			return fmt.Errorf("%w: --outcome: %v", shared.ErrInvalidFlag, err)
		}
		criteria["kind"] = kind
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: --format: %v", shared.ErrInvalidFlag, err)
	}

	db, err := shared.OpenHistory(config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	runs, err := repositories.NewRunRepository(db).List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	r.logger.Debug("loaded runs", "count", len(runs), "database", config.Database.Path)

	if cmd.Bool("json") {
		out := make([]runJSON, 0, len(runs))
		for _, run := range runs {
			out = append(out, newRunJSON(run))
		}
		return r.writeJSON(out, true)
	}

	if cmd.IsSet("output") {
		path, err := formatter.WriteExport(runs, format, cmd.String("output"))
		if err != nil {
			return err
		}
		return r.writePlain("Exported %d runs to %s\n", len(runs), path)
	}

	data, err := formatter.Export(runs, format)
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}

// HistoryPrune deletes finished runs older than --older-than.
func (r *Runner) HistoryPrune(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	age := cmd.Duration("older-than")
	if age < 0 {
		return fmt.Errorf("%w: --older-than must not be negative", shared.ErrInvalidFlag)
	}

	db, err := shared.OpenHistory(config.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	deleted, err := repositories.NewRunRepository(db).Prune(time.Now().UTC().Add(-age))
	if err != nil {
		return fmt.Errorf("failed to prune runs: %w", err)
	}

	r.logger.Info("pruned run history", "deleted", deleted, "older_than", age)
	return r.writePlain("Deleted %d runs\n", deleted)
}
