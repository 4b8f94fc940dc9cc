package tasks

import (
	"fmt"

	"github.com/sobatea/chartsync/internal/catalog"
	"github.com/sobatea/chartsync/internal/chart"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	DiscoverCharts Phase = iota
	ExtractChart
	SearchCatalog
	ResolvePlaylist
	CheckDuplicate
	AddTrack
	Summary
)

func (p Phase) String() string {
	switch p {
	case DiscoverCharts:
		return "discover_charts"
	case ExtractChart:
		return "extract_chart"
	case SearchCatalog:
		return "search_catalog"
	case ResolvePlaylist:
		return "resolve_playlist"
	case CheckDuplicate:
		return "check_duplicate"
	case AddTrack:
		return "add_track"
	case Summary:
		return "summary"
	default:
		return ""
	}
}

func discoveredChartsUpdate(total int, root string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DiscoverCharts,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Found %d chart files under %s", total, root),
	}
}

func extractChartUpdate(step, total int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExtractChart,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Reading %s", path),
		Data:    path,
	}
}

func searchCatalogUpdate(step, total int, meta chart.Metadata) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchCatalog,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Searching for %s by %s...", meta.Title, meta.Artist),
		Data:    meta,
	}
}

func resolvePlaylistUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolvePlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Resolving playlist %q...", name),
	}
}

func checkDuplicateUpdate(step, total int, track *catalog.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CheckDuplicate,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Checking playlist for %s...", track.Name),
		Data:    track,
	}
}

func addTrackUpdate(step, total int, track *catalog.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AddTrack,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Adding %s by %s", track.Name, track.ArtistName),
		Data:    track,
	}
}

func summaryUpdate(report *RunReport) ProgressUpdate {
	return ProgressUpdate{
		Phase: Summary,
		Step:  1,
		Total: 1,
		Message: fmt.Sprintf("%d added, %d duplicates, %d skipped",
			len(report.Added), len(report.Duplicates), len(report.Skipped)),
		Data: report,
	}
}
