package repositories

import (
	"database/sql"
	"fmt"

	"github.com/sobatea/chartsync/internal/models"
	"github.com/sobatea/chartsync/internal/shared"
)

// RunRepository implements models.Repository[*models.SyncRun] for run history.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new sync run into the database with a generated ID
func (r *RunRepository) Create(run *models.SyncRun) error {
	id := shared.GenerateID()
	run.SetID(id)

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO sync_runs (
			id, root_path, playlist_id, playlist_name, added_count,
			duplicate_count, skipped_count, started_at, finished_at, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		id,
		run.RootPath(),
		run.PlaylistID(),
		run.PlaylistName(),
		run.AddedCount(),
		run.DuplicateCount(),
		run.SkippedCount(),
		run.StartedAt(),
		run.FinishedAt(),
		run.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync run: %w", err)
	}

	return nil
}

// Get retrieves a sync run by ID
func (r *RunRepository) Get(id string) (*models.SyncRun, error) {
	query := `
		SELECT id, root_path, playlist_id, playlist_name, added_count,
			duplicate_count, skipped_count, started_at, finished_at, created_at
		FROM sync_runs
		WHERE id = ?
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// List retrieves the most recent sync runs, newest first, up to limit
func (r *RunRepository) List(limit int) ([]*models.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, root_path, playlist_id, playlist_name, added_count,
			duplicate_count, skipped_count, started_at, finished_at, created_at
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SyncRun
	for rows.Next() {
		run, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *RunRepository) scanOne(row *sql.Row) (*models.SyncRun, error) {
	run, err := r.scanRow(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sync run not found")
	}
	return run, err
}

func (r *RunRepository) scanRow(row scanner) (*models.SyncRun, error) {
	var (
		id, rootPath, playlistID, playlistName string
		added, duplicates, skipped             int
		startedAt, finishedAt, createdAt       sql.NullTime
	)

	if err := row.Scan(&id, &rootPath, &playlistID, &playlistName,
		&added, &duplicates, &skipped, &startedAt, &finishedAt, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan sync run: %w", err)
	}

	run := models.NewSyncRun(rootPath, playlistID, playlistName,
		added, duplicates, skipped, startedAt.Time, finishedAt.Time)
	run.SetID(id)
	run.SetCreatedAt(createdAt.Time)

	return run, nil
}
