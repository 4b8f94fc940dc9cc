package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sobatea/chartsync/internal/formatter"
	"github.com/sobatea/chartsync/internal/repositories"
	"github.com/sobatea/chartsync/internal/shared"
	"github.com/sobatea/chartsync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// buildEngine assembles a single-use engine from config and command flags.
// The returned database handle is nil when history persistence is unavailable.
func (r *Runner) buildEngine(cmd *cli.Command) (*tasks.SyncEngine, *sql.DB, error) {
	if err := r.requireCatalog(); err != nil {
		return nil, nil, err
	}

	playlist := cmd.String("playlist")
	if playlist == "" {
		playlist = r.config.Sync.Playlist
	}

	checkDuplicates := r.config.Sync.CheckDuplicates && !cmd.Bool("no-duplicate-check")

	var recorder tasks.Recorder
	db, err := r.openDatabase()
	if err != nil {
		r.logger.Warn("run history disabled", "error", err)
		db = nil
	} else {
		recorder = repositories.NewHistoryRecorder(db)
	}

	engine, err := tasks.NewSyncEngine(tasks.EngineOpts{
		Catalog:         r.spotify,
		PlaylistName:    playlist,
		CheckDuplicates: checkDuplicates,
		RateLimit:       r.config.Sync.RateLimit,
		Recorder:        recorder,
		Logger:          r.logger,
	})
	if err != nil {
		if db != nil {
			db.Close()
		}
		return nil, nil, err
	}

	return engine, db, nil
}

// resolveRecursive prefers an explicit flag over the configured default.
func (r *Runner) resolveRecursive(cmd *cli.Command) bool {
	if cmd.IsSet("recursive") {
		return cmd.Bool("recursive")
	}
	return r.config.Sync.Recursive
}

// Sync runs the chart-to-playlist pipeline for the given path.
func (r *Runner) Sync(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path to a chart file or directory is required", shared.ErrMissingArgument)
	}

	engine, db, err := r.buildEngine(cmd)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	recursive := r.resolveRecursive(cmd)

	r.logger.Info("starting sync", "path", path, "playlist", engine.PlaylistName(), "recursive", recursive)
	r.writePlain("Syncing charts to '%s'...\n\n", engine.PlaylistName())

	// Create progress channel and goroutine to handle updates
	progressCh := make(chan tasks.ProgressUpdate, 50)
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for update := range progressCh {
			switch update.Phase {
			case tasks.DiscoverCharts:
				r.writePlain("📂 %s\n\n", update.Message)
			case tasks.ResolvePlaylist:
				r.writePlain("📝 %s\n", update.Message)
			case tasks.SearchCatalog:
				r.writePlain("🔍 (%d/%d) %s\n", update.Step, update.Total, update.Message)
			case tasks.AddTrack:
				r.writePlain("   ➕ %s\n", update.Message)
			}
		}
	}()

	added, runErr := engine.RunBatch(ctx, progressCh, path, recursive)
	close(progressCh)
	<-printed

	report := engine.Report()
	if report.Total() == 0 && runErr != nil {
		return runErr
	}

	r.logger.Info("sync finished", "added", added, "total", report.Total())

	if cmd.Bool("json") {
		if err := r.writeJSON(report, true); err != nil {
			return err
		}
	} else {
		r.printSummary(report)
	}

	if reportPath := cmd.String("report"); reportPath != "" {
		if err := formatter.WriteReport(report, cmd.String("format"), reportPath); err != nil {
			return err
		}
		r.writePlain("\nReport written to %s\n", reportPath)
	}

	if runErr != nil {
		r.writePlainln("⚠ Run stopped early: %v", runErr)
	}

	return nil
}

// printSummary writes the human-readable outcome lists.
func (r *Runner) printSummary(report *tasks.RunReport) {
	r.writePlain("\n")
	r.writePlainHeader("Sync Complete!")
	r.writePlain("Processed: %d files\n", report.Total())
	r.writePlain("Added: %d | Duplicates: %d | Skipped: %d\n",
		len(report.Added), len(report.Duplicates), len(report.Skipped))

	if len(report.Added) > 0 {
		r.writePlain("\n✓ Added:\n")
		for _, outcome := range report.Added {
			r.writePlain("  - %s - %s\n", outcome.Metadata.Artist, outcome.Metadata.Title)
			if outcome.Track != nil && outcome.Track.ExternalURL != "" {
				r.writePlain("    %s\n", outcome.Track.ExternalURL)
			}
		}
	}

	if len(report.Duplicates) > 0 {
		r.writePlain("\n⚠ Already in playlist:\n")
		for _, outcome := range report.Duplicates {
			r.writePlain("  - %s - %s\n", outcome.Metadata.Artist, outcome.Metadata.Title)
		}
	}

	if len(report.Skipped) > 0 {
		r.writePlain("\n✗ Skipped:\n")
		for _, outcome := range report.Skipped {
			r.writePlain("  - %s: %s\n", outcome.FilePath, outcome.Reason)
		}
	}
}
