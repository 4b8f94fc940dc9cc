// package catalog defines the remote music catalog surface used by the sync
// pipeline and its Spotify implementation.
package catalog

import (
	"context"
)

// DefaultPlaylistName is the playlist used when the caller does not supply one.
const DefaultPlaylistName = "osu! Song Library"

// Track is a read-only copy of a catalog track record.
type Track struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ArtistName  string `json:"artist_name"`
	ExternalURL string `json:"external_url"`
}

// Playlist identifies a playlist owned by the authenticated user.
type Playlist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User is the authenticated catalog user's profile.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Client defines the catalog operations the sync pipeline depends on.
//
// All operations may fail with an error wrapping [shared.ErrCatalog] on
// network or auth failure; the pipeline recovers these per file, never
// retrying within a run.
type Client interface {
	// SearchTrack issues a structured query with title and artist as separate
	// filter terms and returns the first result of the result page, or
	// (nil, nil) when the result set is empty. First-result selection is a
	// deliberate simplicity tradeoff: when several tracks share a title and
	// artist there is no disambiguation.
	SearchTrack(ctx context.Context, title, artist string) (*Track, error)

	// EnsurePlaylist returns the first of the user's playlists whose name
	// matches exactly (case-sensitive), creating a new playlist with a fixed
	// default description when none matches.
	EnsurePlaylist(ctx context.Context, name string) (*Playlist, error)

	// PlaylistTrackIDs returns every track id in the playlist, following
	// pagination until the catalog reports no further page. Entries whose
	// track reference has been removed from the catalog are skipped.
	PlaylistTrackIDs(ctx context.Context, playlistID string) ([]string, error)

	// AddTrack appends one track id to the playlist. The operation is not
	// assumed idempotent: callers must check membership first unless
	// duplicate entries are acceptable.
	AddTrack(ctx context.Context, playlistID, trackID string) error
}
