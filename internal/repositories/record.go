package repositories

import (
	"database/sql"
	"fmt"

	"github.com/sobatea/chartsync/internal/models"
	"github.com/sobatea/chartsync/internal/shared"
)

// RecordRepository persists the per-file track records belonging to sync runs.
type RecordRepository struct {
	db *sql.DB
}

// NewRecordRepository creates a new RecordRepository with the given database connection
func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// Create inserts a new track record into the database with a generated ID
func (r *RecordRepository) Create(record *models.TrackRecord) error {
	return r.create(r.db, record)
}

// createTx inserts a track record within an existing transaction
func (r *RecordRepository) createTx(tx *sql.Tx, record *models.TrackRecord) error {
	return r.create(tx, record)
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func (r *RecordRepository) create(db execer, record *models.TrackRecord) error {
	id := shared.GenerateID()
	record.SetID(id)

	if err := record.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO track_records (
			id, run_id, status, title, artist, file_path,
			track_id, external_url, reason, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var trackID any = record.TrackID()
	if trackID == "" {
		trackID = nil
	}

	var externalURL any = record.ExternalURL()
	if externalURL == "" {
		externalURL = nil
	}

	var reason any = record.Reason()
	if reason == "" {
		reason = nil
	}

	_, err := db.Exec(query,
		id,
		record.RunID(),
		record.Status(),
		record.Title(),
		record.Artist(),
		record.FilePath(),
		trackID,
		externalURL,
		reason,
		record.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert track record: %w", err)
	}

	return nil
}

// ListByRun retrieves all track records for a run in insertion order
func (r *RecordRepository) ListByRun(runID string) ([]*models.TrackRecord, error) {
	query := `
		SELECT id, run_id, status, title, artist, file_path,
			track_id, external_url, reason, created_at
		FROM track_records
		WHERE run_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query track records: %w", err)
	}
	defer rows.Close()

	var records []*models.TrackRecord
	for rows.Next() {
		var (
			id, runID, status, title, artist, filePath string
			trackID, externalURL, reason               sql.NullString
			createdAt                                  sql.NullTime
		)

		if err := rows.Scan(&id, &runID, &status, &title, &artist, &filePath,
			&trackID, &externalURL, &reason, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan track record: %w", err)
		}

		record := models.NewTrackRecord(runID, status, title, artist, filePath,
			trackID.String, externalURL.String, reason.String)
		record.SetID(id)
		record.SetCreatedAt(createdAt.Time)
		records = append(records, record)
	}

	return records, rows.Err()
}
