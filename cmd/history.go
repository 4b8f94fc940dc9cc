package main

import (
	"context"
	"fmt"

	"github.com/sobatea/chartsync/internal/models"
	"github.com/sobatea/chartsync/internal/repositories"
	"github.com/sobatea/chartsync/internal/shared"
	"github.com/urfave/cli/v3"
)

// HistoryList prints recent sync runs, newest first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	runs, err := repositories.NewRunRepository(db).List(int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		return r.writePlain("No sync runs recorded yet.\n")
	}

	if cmd.Bool("json") {
		return r.writeJSON(runsToRows(runs), true)
	}

	r.writePlainHeader("Sync History")
	for _, run := range runs {
		r.writePlain("%s  %s\n", run.StartedAt().Format("2006-01-02 15:04"), run.RootPath())
		r.writePlain("  ID: %s\n", run.ID())
		r.writePlain("  Playlist: %s\n", run.PlaylistName())
		r.writePlain("  Added: %d | Duplicates: %d | Skipped: %d\n\n",
			run.AddedCount(), run.DuplicateCount(), run.SkippedCount())
	}

	return nil
}

// HistoryShow prints the per-file records of one run.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	runID := cmd.StringArg("id")
	if runID == "" {
		return fmt.Errorf("%w: run id is required", shared.ErrMissingArgument)
	}

	db, err := r.openDatabase()
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer db.Close()

	run, err := repositories.NewRunRepository(db).Get(runID)
	if err != nil {
		return err
	}

	records, err := repositories.NewRecordRepository(db).ListByRun(runID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(recordsToRows(records), true)
	}

	r.writePlainHeader(fmt.Sprintf("Run %s", run.ID()))
	r.writePlain("Path: %s\n", run.RootPath())
	r.writePlain("Playlist: %s\n", run.PlaylistName())
	r.writePlain("Started: %s\n\n", run.StartedAt().Format("2006-01-02 15:04:05"))

	for _, record := range records {
		marker := "✓"
		switch record.Status() {
		case models.StatusDuplicate:
			marker = "⚠"
		case models.StatusSkipped:
			marker = "✗"
		}

		r.writePlain("%s [%s] %s - %s\n", marker, record.Status(), record.Artist(), record.Title())
		r.writePlain("    File: %s\n", record.FilePath())
		if record.ExternalURL() != "" {
			r.writePlain("    URL: %s\n", record.ExternalURL())
		}
		if record.Reason() != "" {
			r.writePlain("    Reason: %s\n", record.Reason())
		}
	}

	return nil
}

// runRow is the JSON projection of a SyncRun.
type runRow struct {
	ID           string `json:"id"`
	RootPath     string `json:"root_path"`
	PlaylistID   string `json:"playlist_id,omitempty"`
	PlaylistName string `json:"playlist_name,omitempty"`
	Added        int    `json:"added"`
	Duplicates   int    `json:"duplicates"`
	Skipped      int    `json:"skipped"`
	StartedAt    string `json:"started_at"`
	FinishedAt   string `json:"finished_at"`
}

func runsToRows(runs []*models.SyncRun) []runRow {
	rows := make([]runRow, len(runs))
	for i, run := range runs {
		rows[i] = runRow{
			ID:           run.ID(),
			RootPath:     run.RootPath(),
			PlaylistID:   run.PlaylistID(),
			PlaylistName: run.PlaylistName(),
			Added:        run.AddedCount(),
			Duplicates:   run.DuplicateCount(),
			Skipped:      run.SkippedCount(),
			StartedAt:    run.StartedAt().Format("2006-01-02T15:04:05Z07:00"),
			FinishedAt:   run.FinishedAt().Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	return rows
}

// recordRow is the JSON projection of a TrackRecord.
type recordRow struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	FilePath    string `json:"file_path"`
	TrackID     string `json:"track_id,omitempty"`
	ExternalURL string `json:"external_url,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

func recordsToRows(records []*models.TrackRecord) []recordRow {
	rows := make([]recordRow, len(records))
	for i, record := range records {
		rows[i] = recordRow{
			ID:          record.ID(),
			Status:      record.Status(),
			Title:       record.Title(),
			Artist:      record.Artist(),
			FilePath:    record.FilePath(),
			TrackID:     record.TrackID(),
			ExternalURL: record.ExternalURL(),
			Reason:      record.Reason(),
		}
	}
	return rows
}
