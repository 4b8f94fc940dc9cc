package models

import (
	"fmt"
	"time"
)

// Model defines the base interface for all persistent models in the run history.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error        // Create inserts a new model into the database
	Get(id string) (T, error)    // Get retrieves a model by its ID
	List(limit int) ([]T, error) // List retrieves the most recent models up to limit
}

// Track record statuses.
const (
	StatusAdded     = "added"
	StatusDuplicate = "duplicate"
	StatusSkipped   = "skipped"
)

// SyncRun records one execution of the sync pipeline: the scanned root, the
// target playlist, and the sizes of the three outcome lists.
type SyncRun struct {
	id             string
	rootPath       string
	playlistID     string
	playlistName   string
	addedCount     int
	duplicateCount int
	skippedCount   int
	startedAt      time.Time
	finishedAt     time.Time
	createdAt      time.Time
}

// NewSyncRun creates a SyncRun entity. The ID is assigned by the repository
// on Create.
func NewSyncRun(rootPath, playlistID, playlistName string, added, duplicates, skipped int, startedAt, finishedAt time.Time) *SyncRun {
	return &SyncRun{
		rootPath:       rootPath,
		playlistID:     playlistID,
		playlistName:   playlistName,
		addedCount:     added,
		duplicateCount: duplicates,
		skippedCount:   skipped,
		startedAt:      startedAt,
		finishedAt:     finishedAt,
		createdAt:      time.Now(),
	}
}

func (r *SyncRun) ID() string            { return r.id }
func (r *SyncRun) RootPath() string      { return r.rootPath }
func (r *SyncRun) PlaylistID() string    { return r.playlistID }
func (r *SyncRun) PlaylistName() string  { return r.playlistName }
func (r *SyncRun) AddedCount() int       { return r.addedCount }
func (r *SyncRun) DuplicateCount() int   { return r.duplicateCount }
func (r *SyncRun) SkippedCount() int     { return r.skippedCount }
func (r *SyncRun) StartedAt() time.Time  { return r.startedAt }
func (r *SyncRun) FinishedAt() time.Time { return r.finishedAt }
func (r *SyncRun) CreatedAt() time.Time  { return r.createdAt }

func (r *SyncRun) SetID(id string)          { r.id = id }
func (r *SyncRun) SetCreatedAt(t time.Time) { r.createdAt = t }

// Validate checks that the run references a scanned path and that its counts
// are not negative.
func (r *SyncRun) Validate() error {
	if r.rootPath == "" {
		return fmt.Errorf("sync run requires a root path")
	}
	if r.addedCount < 0 || r.duplicateCount < 0 || r.skippedCount < 0 {
		return fmt.Errorf("sync run counts must not be negative")
	}
	if r.finishedAt.Before(r.startedAt) {
		return fmt.Errorf("sync run finished before it started")
	}
	return nil
}

// TrackRecord records one per-file outcome within a run. TrackID and
// ExternalURL are empty for outcomes that never matched a catalog track, and
// Reason is empty for added and duplicate outcomes.
type TrackRecord struct {
	id          string
	runID       string
	status      string
	title       string
	artist      string
	filePath    string
	trackID     string
	externalURL string
	reason      string
	createdAt   time.Time
}

// NewTrackRecord creates a TrackRecord entity. The ID is assigned by the
// repository on Create.
func NewTrackRecord(runID, status, title, artist, filePath, trackID, externalURL, reason string) *TrackRecord {
	return &TrackRecord{
		runID:       runID,
		status:      status,
		title:       title,
		artist:      artist,
		filePath:    filePath,
		trackID:     trackID,
		externalURL: externalURL,
		reason:      reason,
		createdAt:   time.Now(),
	}
}

func (t *TrackRecord) ID() string           { return t.id }
func (t *TrackRecord) RunID() string        { return t.runID }
func (t *TrackRecord) Status() string       { return t.status }
func (t *TrackRecord) Title() string        { return t.title }
func (t *TrackRecord) Artist() string       { return t.artist }
func (t *TrackRecord) FilePath() string     { return t.filePath }
func (t *TrackRecord) TrackID() string      { return t.trackID }
func (t *TrackRecord) ExternalURL() string  { return t.externalURL }
func (t *TrackRecord) Reason() string       { return t.reason }
func (t *TrackRecord) CreatedAt() time.Time { return t.createdAt }

func (t *TrackRecord) SetID(id string)           { t.id = id }
func (t *TrackRecord) SetCreatedAt(tm time.Time) { t.createdAt = tm }

// Validate checks that the record belongs to a run and carries a known status.
func (t *TrackRecord) Validate() error {
	if t.runID == "" {
		return fmt.Errorf("track record requires a run id")
	}
	switch t.status {
	case StatusAdded, StatusDuplicate, StatusSkipped:
	default:
		return fmt.Errorf("track record has unknown status %q", t.status)
	}
	if t.status == StatusSkipped && t.reason == "" {
		return fmt.Errorf("skipped track record requires a reason")
	}
	return nil
}
