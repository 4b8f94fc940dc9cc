package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/sobatea/chartsync/internal/catalog"
	"github.com/sobatea/chartsync/internal/models"
	"github.com/sobatea/chartsync/internal/tasks"
)

// HistoryRecorder implements tasks.Recorder by writing a finished run and its
// track records in a single transaction.
type HistoryRecorder struct {
	db      *sql.DB
	runs    *RunRepository
	records *RecordRepository
}

// NewHistoryRecorder creates a recorder backed by the given database connection
func NewHistoryRecorder(db *sql.DB) *HistoryRecorder {
	return &HistoryRecorder{
		db:      db,
		runs:    NewRunRepository(db),
		records: NewRecordRepository(db),
	}
}

// RecordRun persists one finished run. The playlist may be nil when the run
// never resolved one.
func (h *HistoryRecorder) RecordRun(root string, playlist *catalog.Playlist, startedAt, finishedAt time.Time, report *tasks.RunReport) error {
	var playlistID, playlistName string
	if playlist != nil {
		playlistID = playlist.ID
		playlistName = playlist.Name
	}

	run := models.NewSyncRun(root, playlistID, playlistName,
		len(report.Added), len(report.Duplicates), len(report.Skipped),
		startedAt, finishedAt)

	if err := h.runs.Create(run); err != nil {
		return err
	}

	tx, err := h.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, outcomes := range [][]tasks.Outcome{report.Added, report.Duplicates, report.Skipped} {
		for _, outcome := range outcomes {
			record := recordFromOutcome(run.ID(), outcome)
			if err := h.records.createTx(tx, record); err != nil {
				tx.Rollback()
				return err
			}
		}
	}

	return tx.Commit()
}

func recordFromOutcome(runID string, outcome tasks.Outcome) *models.TrackRecord {
	var trackID, externalURL string
	if outcome.Track != nil {
		trackID = outcome.Track.ID
		externalURL = outcome.Track.ExternalURL
	}

	return models.NewTrackRecord(
		runID,
		outcome.Status.String(),
		outcome.Metadata.Title,
		outcome.Metadata.Artist,
		outcome.FilePath,
		trackID,
		externalURL,
		outcome.Reason,
	)
}
