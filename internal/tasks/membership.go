package tasks

import (
	"context"

	"github.com/sobatea/chartsync/internal/catalog"
)

// Reconciler answers playlist membership questions against the live catalog.
//
// Membership is always derived from the catalog listing at the time of the
// call; nothing is cached across runs, so edits made through other clients
// between runs are honored.
type Reconciler struct {
	catalog catalog.Client
}

// NewReconciler creates a Reconciler backed by the given catalog client.
func NewReconciler(client catalog.Client) *Reconciler {
	return &Reconciler{catalog: client}
}

// IsMember reports whether trackID is currently in the playlist. Each call
// re-fetches the full listing, which is O(playlist size) per check; batch
// callers should take a [Snapshot] instead.
func (r *Reconciler) IsMember(ctx context.Context, playlistID, trackID string) (bool, error) {
	ids, err := r.catalog.PlaylistTrackIDs(ctx, playlistID)
	if err != nil {
		return false, err
	}

	for _, id := range ids {
		if id == trackID {
			return true, nil
		}
	}
	return false, nil
}

// Snapshot fetches the playlist's current membership once for reuse across a
// batch. The snapshot is updated locally after each confirmed addition rather
// than re-fetched, trading one listing per run for the possibility of missing
// concurrent external edits during the run.
func (r *Reconciler) Snapshot(ctx context.Context, playlistID string) (*Membership, error) {
	ids, err := r.catalog.PlaylistTrackIDs(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	m := &Membership{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		m.ids[id] = struct{}{}
	}
	return m, nil
}

// Membership is a point-in-time set of the track ids in one playlist.
type Membership struct {
	ids map[string]struct{}
}

// Contains reports whether the track id was in the playlist at snapshot time
// or has been added through this membership since.
func (m *Membership) Contains(trackID string) bool {
	_, ok := m.ids[trackID]
	return ok
}

// Add marks the track id as a member after a confirmed catalog addition.
func (m *Membership) Add(trackID string) {
	m.ids[trackID] = struct{}{}
}

// Len returns the number of known member track ids.
func (m *Membership) Len() int {
	return len(m.ids)
}
