package repositories

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sobatea/chartsync/internal/catalog"
	"github.com/sobatea/chartsync/internal/chart"
	"github.com/sobatea/chartsync/internal/models"
	"github.com/sobatea/chartsync/internal/shared"
	"github.com/sobatea/chartsync/internal/tasks"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return db
}

func TestRunRepository(t *testing.T) {
	db := setupDB(t)
	repo := NewRunRepository(db)

	started := time.Now().Add(-time.Minute)
	finished := time.Now()

	run := models.NewSyncRun("/songs", "pl1", "osu! Song Library", 3, 2, 1, started, finished)
	if err := repo.Create(run); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if run.ID() == "" {
		t.Fatal("Create() did not assign an ID")
	}

	got, err := repo.Get(run.ID())
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	if got.RootPath() != "/songs" || got.PlaylistName() != "osu! Song Library" {
		t.Errorf("Get() = %q/%q", got.RootPath(), got.PlaylistName())
	}
	if got.AddedCount() != 3 || got.DuplicateCount() != 2 || got.SkippedCount() != 1 {
		t.Errorf("Get() counts = %d/%d/%d, want 3/2/1",
			got.AddedCount(), got.DuplicateCount(), got.SkippedCount())
	}
}

func TestRunRepositoryGetMissing(t *testing.T) {
	repo := NewRunRepository(setupDB(t))
	if _, err := repo.Get("does-not-exist"); err == nil {
		t.Error("Get() expected error for missing run")
	}
}

func TestRunRepositoryValidation(t *testing.T) {
	repo := NewRunRepository(setupDB(t))

	run := models.NewSyncRun("", "pl1", "name", 0, 0, 0, time.Now(), time.Now())
	if err := repo.Create(run); err == nil {
		t.Error("Create() expected validation error for empty root path")
	}
}

func TestRunRepositoryListOrdersByStartTime(t *testing.T) {
	db := setupDB(t)
	repo := NewRunRepository(db)

	base := time.Now()
	for i, root := range []string{"/first", "/second", "/third"} {
		started := base.Add(time.Duration(i) * time.Hour)
		run := models.NewSyncRun(root, "pl1", "name", 0, 0, 0, started, started.Add(time.Minute))
		if err := repo.Create(run); err != nil {
			t.Fatalf("Create(%s) error: %v", root, err)
		}
	}

	runs, err := repo.List(2)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("List(2) returned %d runs", len(runs))
	}
	if runs[0].RootPath() != "/third" || runs[1].RootPath() != "/second" {
		t.Errorf("List() order = %q, %q, want newest first", runs[0].RootPath(), runs[1].RootPath())
	}
}

func TestRecordRepository(t *testing.T) {
	db := setupDB(t)
	runs := NewRunRepository(db)
	records := NewRecordRepository(db)

	run := models.NewSyncRun("/songs", "pl1", "name", 1, 0, 1, time.Now(), time.Now())
	if err := runs.Create(run); err != nil {
		t.Fatalf("Create(run) error: %v", err)
	}

	added := models.NewTrackRecord(run.ID(), models.StatusAdded,
		"Freedom Dive", "xi", "/songs/a.osu", "t1", "https://open.spotify.com/track/t1", "")
	skipped := models.NewTrackRecord(run.ID(), models.StatusSkipped,
		"Unknown", "nobody", "/songs/b.osu", "", "", "no catalog match")

	for _, record := range []*models.TrackRecord{added, skipped} {
		if err := records.Create(record); err != nil {
			t.Fatalf("Create(record) error: %v", err)
		}
	}

	got, err := records.ListByRun(run.ID())
	if err != nil {
		t.Fatalf("ListByRun() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListByRun() returned %d records, want 2", len(got))
	}

	if got[0].Status() != models.StatusAdded || got[0].TrackID() != "t1" {
		t.Errorf("first record = %q/%q", got[0].Status(), got[0].TrackID())
	}
	if got[1].Status() != models.StatusSkipped || got[1].Reason() != "no catalog match" {
		t.Errorf("second record = %q/%q", got[1].Status(), got[1].Reason())
	}
}

func TestRecordRepositoryValidation(t *testing.T) {
	records := NewRecordRepository(setupDB(t))

	bad := models.NewTrackRecord("run1", "exploded", "t", "a", "/p", "", "", "")
	if err := records.Create(bad); err == nil {
		t.Error("Create() expected validation error for unknown status")
	}
}

func TestHistoryRecorder(t *testing.T) {
	db := setupDB(t)
	recorder := NewHistoryRecorder(db)

	report := &tasks.RunReport{}
	report.Added = append(report.Added, tasks.Outcome{
		Status:   tasks.Added,
		Metadata: chart.Metadata{Title: "Freedom Dive", Artist: "xi"},
		Track:    &catalog.Track{ID: "t1", Name: "Freedom Dive", ArtistName: "xi", ExternalURL: "https://open.spotify.com/track/t1"},
		FilePath: "/songs/a.osu",
	})
	report.Duplicates = append(report.Duplicates, tasks.Outcome{
		Status:   tasks.Duplicate,
		Metadata: chart.Metadata{Title: "Blue Zenith", Artist: "xi"},
		Track:    &catalog.Track{ID: "t2", Name: "Blue Zenith", ArtistName: "xi"},
		FilePath: "/songs/b.osu",
	})
	report.Skipped = append(report.Skipped, tasks.Outcome{
		Status:   tasks.Skipped,
		Metadata: chart.Metadata{Title: "Unknown", Artist: "nobody"},
		FilePath: "/songs/c.osu",
		Reason:   "no catalog match",
	})

	started := time.Now().Add(-time.Minute)
	playlist := &catalog.Playlist{ID: "pl1", Name: "osu! Song Library"}

	if err := recorder.RecordRun("/songs", playlist, started, time.Now(), report); err != nil {
		t.Fatalf("RecordRun() error: %v", err)
	}

	runs, err := NewRunRepository(db).List(10)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("List() returned %d runs, want 1", len(runs))
	}

	run := runs[0]
	if run.AddedCount() != 1 || run.DuplicateCount() != 1 || run.SkippedCount() != 1 {
		t.Errorf("run counts = %d/%d/%d, want 1/1/1",
			run.AddedCount(), run.DuplicateCount(), run.SkippedCount())
	}
	if run.PlaylistID() != "pl1" {
		t.Errorf("run playlist = %q, want pl1", run.PlaylistID())
	}

	records, err := NewRecordRepository(db).ListByRun(run.ID())
	if err != nil {
		t.Fatalf("ListByRun() error: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("ListByRun() returned %d records, want 3", len(records))
	}
}

func TestHistoryRecorderNilPlaylist(t *testing.T) {
	db := setupDB(t)
	recorder := NewHistoryRecorder(db)

	report := &tasks.RunReport{}
	report.Skipped = append(report.Skipped, tasks.Outcome{
		Status:   tasks.Skipped,
		FilePath: "/songs/a.osu",
		Reason:   "playlist resolution failed",
	})

	if err := recorder.RecordRun("/songs", nil, time.Now(), time.Now(), report); err != nil {
		t.Fatalf("RecordRun() error: %v", err)
	}

	runs, err := NewRunRepository(db).List(1)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if runs[0].PlaylistID() != "" {
		t.Errorf("run playlist = %q, want empty for unresolved playlist", runs[0].PlaylistID())
	}
}
