// package tasks implements the chart-to-playlist sync pipeline.
//
// The core abstraction is SyncEngine, which walks chart files, matches their
// metadata against the catalog, and reconciles the target playlist.
// Operations emit progress updates via channels for non-blocking status
// reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sobatea/chartsync/internal/catalog"
	"github.com/sobatea/chartsync/internal/chart"
	"github.com/sobatea/chartsync/internal/shared"
	"golang.org/x/time/rate"
)

// Recorder persists the results of a completed run. Implementations must not
// influence pipeline behavior; persistence failures are logged and discarded.
type Recorder interface {
	RecordRun(root string, playlist *catalog.Playlist, startedAt, finishedAt time.Time, report *RunReport) error
}

// SyncEngine orchestrates one sync run: discovery, extraction, catalog
// matching, and playlist reconciliation, strictly one file at a time.
//
// An engine is single-use. Each run constructs a fresh engine with a fresh
// report; playlist identity and membership learned during a run are never
// carried into the next one.
type SyncEngine struct {
	catalog    catalog.Client
	reconciler *Reconciler
	recorder   Recorder
	logger     *log.Logger
	limiter    *rate.Limiter

	playlistName    string
	checkDuplicates bool

	playlist   *catalog.Playlist
	membership *Membership
	report     *RunReport
}

// EngineOpts configures a SyncEngine.
type EngineOpts struct {
	Catalog         catalog.Client
	PlaylistName    string  // Target playlist, defaults to catalog.DefaultPlaylistName
	CheckDuplicates bool    // Check membership before each addition
	RateLimit       float64 // Catalog searches per second, 0 disables throttling
	Recorder        Recorder
	Logger          *log.Logger
}

// NewSyncEngine creates a single-use engine for one run.
func NewSyncEngine(opts EngineOpts) (*SyncEngine, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("%w: catalog client is required", shared.ErrInvalidArgument)
	}

	name := opts.PlaylistName
	if name == "" {
		name = catalog.DefaultPlaylistName
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &SyncEngine{
		catalog:         opts.Catalog,
		reconciler:      NewReconciler(opts.Catalog),
		recorder:        opts.Recorder,
		logger:          logger,
		limiter:         limiter,
		playlistName:    name,
		checkDuplicates: opts.CheckDuplicates,
		report:          &RunReport{},
	}, nil
}

// Report returns the run's accumulated outcomes. Outcomes recorded before a
// cancellation remain intact.
func (e *SyncEngine) Report() *RunReport {
	return e.report
}

// PlaylistName returns the configured target playlist name.
func (e *SyncEngine) PlaylistName() string {
	return e.playlistName
}

// Playlist returns the resolved target playlist, or nil before resolution.
func (e *SyncEngine) Playlist() *catalog.Playlist {
	return e.playlist
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *SyncEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// targetPlaylist resolves the configured playlist, caching the result for the
// remainder of the run.
func (e *SyncEngine) targetPlaylist(ctx context.Context, progress chan<- ProgressUpdate) (*catalog.Playlist, error) {
	if e.playlist != nil {
		return e.playlist, nil
	}

	e.sendProgress(progress, resolvePlaylistUpdate(e.playlistName))

	playlist, err := e.catalog.EnsurePlaylist(ctx, e.playlistName)
	if err != nil {
		return nil, err
	}

	e.playlist = playlist
	return playlist, nil
}

// ProcessFile runs the full pipeline for one chart file and returns its
// terminal outcome. The outcome is also appended to the run report. A failure
// at any stage skips the file without affecting the rest of the run.
func (e *SyncEngine) ProcessFile(ctx context.Context, progress chan<- ProgressUpdate, path string) Outcome {
	outcome := e.processFile(ctx, progress, path, 1, 1)
	e.report.record(outcome)
	return outcome
}

func (e *SyncEngine) processFile(ctx context.Context, progress chan<- ProgressUpdate, path string, step, total int) Outcome {
	e.sendProgress(progress, extractChartUpdate(step, total, path))

	content, err := os.ReadFile(path)
	if err != nil {
		return Outcome{Status: Skipped, FilePath: path, Reason: ReasonParseFailed}
	}

	meta, err := chart.Extract(string(content))
	if err != nil {
		return Outcome{Status: Skipped, FilePath: path, Reason: ReasonParseFailed}
	}

	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			return Outcome{Status: Skipped, Metadata: meta, FilePath: path, Reason: err.Error()}
		}
	}

	e.sendProgress(progress, searchCatalogUpdate(step, total, meta))

	track, err := e.catalog.SearchTrack(ctx, meta.Title, meta.Artist)
	if err != nil {
		return Outcome{Status: Skipped, Metadata: meta, FilePath: path, Reason: err.Error()}
	}
	if track == nil {
		return Outcome{Status: Skipped, Metadata: meta, FilePath: path, Reason: ReasonNoMatch}
	}

	playlist, err := e.targetPlaylist(ctx, progress)
	if err != nil {
		return Outcome{Status: Skipped, Metadata: meta, Track: track, FilePath: path, Reason: ReasonPlaylistUnresolved}
	}

	if e.checkDuplicates {
		e.sendProgress(progress, checkDuplicateUpdate(step, total, track))

		member, err := e.isMember(ctx, playlist.ID, track.ID)
		if err != nil {
			return Outcome{Status: Skipped, Metadata: meta, Track: track, FilePath: path, Reason: err.Error()}
		}
		if member {
			return Outcome{Status: Duplicate, Metadata: meta, Track: track, FilePath: path}
		}
	}

	e.sendProgress(progress, addTrackUpdate(step, total, track))

	if err := e.catalog.AddTrack(ctx, playlist.ID, track.ID); err != nil {
		return Outcome{Status: Skipped, Metadata: meta, Track: track, FilePath: path, Reason: err.Error()}
	}

	if e.membership != nil {
		e.membership.Add(track.ID)
	}

	return Outcome{Status: Added, Metadata: meta, Track: track, FilePath: path}
}

// isMember consults the batch membership snapshot when one exists, falling
// back to a live listing otherwise.
func (e *SyncEngine) isMember(ctx context.Context, playlistID, trackID string) (bool, error) {
	if e.membership != nil {
		return e.membership.Contains(trackID), nil
	}
	return e.reconciler.IsMember(ctx, playlistID, trackID)
}

// RunBatch discovers chart files under root and processes them sequentially,
// returning the number of tracks added. Cancellation between files stops the
// run; outcomes recorded so far stay in the report and the returned error is
// the context's.
func (e *SyncEngine) RunBatch(ctx context.Context, progress chan<- ProgressUpdate, root string, recursive bool) (int, error) {
	startedAt := time.Now()

	paths, err := e.discover(root, recursive)
	if err != nil {
		return 0, err
	}

	e.sendProgress(progress, discoveredChartsUpdate(len(paths), root))

	// Resolve the playlist once up front so a healthy run makes a single
	// resolution call. On failure the cache stays empty and each file skips
	// with a playlist resolution reason, same as resolving lazily.
	if playlist, err := e.targetPlaylist(ctx, progress); err == nil && e.checkDuplicates {
		if membership, err := e.reconciler.Snapshot(ctx, playlist.ID); err == nil {
			e.membership = membership
		} else {
			e.logger.Warn("membership snapshot failed, falling back to per-file checks", "error", err)
		}
	}

	var runErr error

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		outcome := e.processFile(ctx, progress, path, i+1, len(paths))
		e.report.record(outcome)
	}

	e.sendProgress(progress, summaryUpdate(e.report))
	e.recordRun(root, startedAt)

	return len(e.report.Added), runErr
}

// discover collects the chart file paths for one run in deterministic order.
func (e *SyncEngine) discover(root string, recursive bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrNoCharts, err)
	}

	if !info.IsDir() {
		if !strings.EqualFold(filepath.Ext(root), chart.Extension) {
			return nil, fmt.Errorf("%w: %s is not a chart file", shared.ErrNoCharts, root)
		}
		return []string{root}, nil
	}

	var paths []string

	if recursive {
		err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.EqualFold(filepath.Ext(path), chart.Extension) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrNoCharts, err)
		}
	} else {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrNoCharts, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), chart.Extension) {
				paths = append(paths, filepath.Join(root, entry.Name()))
			}
		}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no %s files under %s", shared.ErrNoCharts, chart.Extension, root)
	}

	sort.Strings(paths)
	return paths, nil
}

// recordRun persists the finished run when a recorder is configured. History
// is best-effort and never fails the run.
func (e *SyncEngine) recordRun(root string, startedAt time.Time) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.RecordRun(root, e.playlist, startedAt, time.Now(), e.report); err != nil {
		e.logger.Warn("failed to record run history", "error", err)
	}
}
