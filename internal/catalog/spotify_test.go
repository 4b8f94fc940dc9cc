package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sobatea/chartsync/internal/shared"
	internaltest "github.com/sobatea/chartsync/internal/testing"
)

// newTestClient returns an authenticated client pointed at the test server.
func newTestClient(t *testing.T, server *httptest.Server) *SpotifyClient {
	t.Helper()

	client, err := NewSpotifyClient(map[string]string{
		"client_id":     "test_client_id",
		"client_secret": "test_client_secret",
	})
	if err != nil {
		t.Fatalf("NewSpotifyClient() error: %v", err)
	}

	if err := client.Authenticate(context.Background(), map[string]string{
		"access_token": "test_access_token",
	}); err != nil {
		t.Fatalf("Authenticate() error: %v", err)
	}

	client.SetBaseURL(server.URL)
	client.SetHTTPClient(server.Client())
	return client
}

func TestNewSpotifyClient(t *testing.T) {
	tests := []struct {
		name        string
		credentials map[string]string
		wantErr     bool
	}{
		{
			name: "valid credentials",
			credentials: map[string]string{
				"client_id":     "id",
				"client_secret": "secret",
			},
		},
		{
			name:        "missing client_id",
			credentials: map[string]string{"client_secret": "secret"},
			wantErr:     true,
		},
		{
			name:        "missing client_secret",
			credentials: map[string]string{"client_id": "id"},
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewSpotifyClient(tt.credentials)
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewSpotifyClient() expected error")
				}
				if !errors.Is(err, shared.ErrMissingCredentials) {
					t.Errorf("NewSpotifyClient() error = %v, want ErrMissingCredentials", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewSpotifyClient() unexpected error: %v", err)
			}
			if client == nil {
				t.Fatal("NewSpotifyClient() returned nil client")
			}
		})
	}
}

func TestAuthenticateRequiresCredentials(t *testing.T) {
	client, err := NewSpotifyClient(map[string]string{
		"client_id":     "id",
		"client_secret": "secret",
	})
	if err != nil {
		t.Fatalf("NewSpotifyClient() error: %v", err)
	}

	err = client.Authenticate(context.Background(), map[string]string{})
	if !errors.Is(err, shared.ErrMissingCredentials) {
		t.Errorf("Authenticate() error = %v, want ErrMissingCredentials", err)
	}
}

func TestRequestsWithoutTokenFail(t *testing.T) {
	client, err := NewSpotifyClient(map[string]string{
		"client_id":     "id",
		"client_secret": "secret",
	})
	if err != nil {
		t.Fatalf("NewSpotifyClient() error: %v", err)
	}

	_, err = client.SearchTrack(context.Background(), "title", "artist")
	if !errors.Is(err, shared.ErrNotAuthenticated) {
		t.Errorf("SearchTrack() error = %v, want ErrNotAuthenticated", err)
	}
}

func TestGetAuthURL(t *testing.T) {
	client, err := NewSpotifyClient(map[string]string{
		"client_id":     "id",
		"client_secret": "secret",
		"redirect_uri":  "http://127.0.0.1:9999/callback",
	})
	if err != nil {
		t.Fatalf("NewSpotifyClient() error: %v", err)
	}

	authURL := client.GetAuthURL("some-state")
	for _, fragment := range []string{"accounts.spotify.com", "client_id=id", "state=some-state"} {
		if !strings.Contains(authURL, fragment) {
			t.Errorf("GetAuthURL() = %q, missing %q", authURL, fragment)
		}
	}
}

func TestSearchTrack(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")

		json.NewEncoder(w).Encode(map[string]any{
			"tracks": map[string]any{
				"items": []map[string]any{
					{
						"id":   "track1",
						"name": "Freedom Dive",
						"artists": []map[string]any{
							{"id": "artist1", "name": "xi"},
							{"id": "artist2", "name": "someone else"},
						},
						"external_urls": map[string]string{"spotify": "https://open.spotify.com/track/track1"},
					},
					{"id": "track2", "name": "Freedom Dive (cover)"},
				},
			},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server)

	track, err := client.SearchTrack(context.Background(), "Freedom Dive", "xi")
	if err != nil {
		t.Fatalf("SearchTrack() error: %v", err)
	}
	if track == nil {
		t.Fatal("SearchTrack() returned nil track")
	}

	if gotQuery != "track:Freedom Dive artist:xi" {
		t.Errorf("SearchTrack() query = %q, want structured track/artist filter", gotQuery)
	}
	if track.ID != "track1" {
		t.Errorf("SearchTrack() id = %q, want first result track1", track.ID)
	}
	if track.ArtistName != "xi" {
		t.Errorf("SearchTrack() artist = %q, want xi", track.ArtistName)
	}
	if track.ExternalURL != "https://open.spotify.com/track/track1" {
		t.Errorf("SearchTrack() url = %q", track.ExternalURL)
	}
}

func TestSearchTrackNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"tracks": map[string]any{"items": []any{}},
		})
	}))
	defer server.Close()

	client := newTestClient(t, server)

	track, err := client.SearchTrack(context.Background(), "does not exist", "nobody")
	if err != nil {
		t.Fatalf("SearchTrack() error: %v", err)
	}
	if track != nil {
		t.Errorf("SearchTrack() = %+v, want nil for empty result set", track)
	}
}

func TestSearchTrackServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server)

	_, err := client.SearchTrack(context.Background(), "title", "artist")
	if !errors.Is(err, shared.ErrCatalog) {
		t.Errorf("SearchTrack() error = %v, want ErrCatalog", err)
	}
}

func TestSearchTrackExpiredToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server)

	_, err := client.SearchTrack(context.Background(), "title", "artist")
	if !errors.Is(err, shared.ErrTokenExpired) {
		t.Errorf("SearchTrack() error = %v, want ErrTokenExpired", err)
	}
}

func TestSearchTrackTransportError(t *testing.T) {
	client, err := NewSpotifyClient(map[string]string{
		"client_id":     "id",
		"client_secret": "secret",
	})
	if err != nil {
		t.Fatalf("NewSpotifyClient() error: %v", err)
	}
	if err := client.Authenticate(context.Background(), map[string]string{
		"access_token": "token",
	}); err != nil {
		t.Fatalf("Authenticate() error: %v", err)
	}

	client.SetHTTPClient(&http.Client{
		Transport: internaltest.NewMockRoundTripper(nil, errors.New("connection refused")),
	})

	_, err = client.SearchTrack(context.Background(), "title", "artist")
	if !errors.Is(err, shared.ErrCatalog) {
		t.Errorf("SearchTrack() error = %v, want ErrCatalog", err)
	}
}

func TestEnsurePlaylistFindsExisting(t *testing.T) {
	created := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/me/playlists":
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{
					{"id": "pl1", "name": "Other Playlist"},
					{"id": "pl2", "name": "osu! Song Library"},
				},
				"next": nil,
			})
		case r.Method == http.MethodPost:
			created = true
			w.WriteHeader(http.StatusCreated)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server)

	playlist, err := client.EnsurePlaylist(context.Background(), "osu! Song Library")
	if err != nil {
		t.Fatalf("EnsurePlaylist() error: %v", err)
	}
	if playlist.ID != "pl2" {
		t.Errorf("EnsurePlaylist() id = %q, want pl2", playlist.ID)
	}
	if created {
		t.Error("EnsurePlaylist() created a playlist despite an exact name match")
	}
}

func TestEnsurePlaylistIsCaseSensitive(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/me/playlists":
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{{"id": "pl1", "name": "OSU! SONG LIBRARY"}},
				"next":  nil,
			})
		case r.URL.Path == "/me":
			json.NewEncoder(w).Encode(map[string]string{"id": "user1", "display_name": "Test User"})
		case r.Method == http.MethodPost:
			json.NewEncoder(w).Encode(map[string]string{"id": "new_pl", "name": "osu! Song Library"})
		}
	}))
	defer server.Close()

	client := newTestClient(t, server)

	playlist, err := client.EnsurePlaylist(context.Background(), "osu! Song Library")
	if err != nil {
		t.Fatalf("EnsurePlaylist() error: %v", err)
	}
	if playlist.ID != "new_pl" {
		t.Errorf("EnsurePlaylist() id = %q, want a newly created playlist", playlist.ID)
	}
}

func TestEnsurePlaylistCreates(t *testing.T) {
	var createBody struct {
		Name        string `json:"name"`
		Public      bool   `json:"public"`
		Description string `json:"description"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/me/playlists":
			json.NewEncoder(w).Encode(map[string]any{"items": []any{}, "next": nil})
		case r.URL.Path == "/me":
			json.NewEncoder(w).Encode(map[string]string{"id": "user1", "display_name": "Test User"})
		case r.URL.Path == "/users/user1/playlists" && r.Method == http.MethodPost:
			json.NewDecoder(r.Body).Decode(&createBody)
			json.NewEncoder(w).Encode(map[string]string{"id": "new_pl", "name": createBody.Name})
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server)

	playlist, err := client.EnsurePlaylist(context.Background(), "My Charts")
	if err != nil {
		t.Fatalf("EnsurePlaylist() error: %v", err)
	}

	if playlist.ID != "new_pl" || playlist.Name != "My Charts" {
		t.Errorf("EnsurePlaylist() = %+v", playlist)
	}
	if createBody.Name != "My Charts" {
		t.Errorf("create request name = %q", createBody.Name)
	}
	if !createBody.Public {
		t.Error("create request should mark the playlist public")
	}
	if createBody.Description == "" {
		t.Error("create request should carry the default description")
	}
}

func TestEnsurePlaylistFollowsPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset := r.URL.Query().Get("offset")
		switch offset {
		case "0", "":
			next := "/me/playlists?limit=50&offset=50"
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{{"id": "pl1", "name": "First Page"}},
				"next":  next,
			})
		case "50":
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{{"id": "pl2", "name": "Second Page"}},
				"next":  nil,
			})
		default:
			t.Errorf("unexpected offset %q", offset)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server)

	playlist, err := client.EnsurePlaylist(context.Background(), "Second Page")
	if err != nil {
		t.Fatalf("EnsurePlaylist() error: %v", err)
	}
	if playlist.ID != "pl2" {
		t.Errorf("EnsurePlaylist() id = %q, want pl2 from the second page", playlist.ID)
	}
}

func TestPlaylistTrackIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset := r.URL.Query().Get("offset")
		switch offset {
		case "0", "":
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{
					{"track": map[string]string{"id": "t1"}},
					{"track": nil},
					{"track": map[string]string{"id": "t2"}},
				},
				"next": "/playlists/pl1/tracks?limit=100&offset=100",
			})
		case "100":
			json.NewEncoder(w).Encode(map[string]any{
				"items": []map[string]any{
					{"track": map[string]string{"id": "t3"}},
				},
				"next": nil,
			})
		default:
			t.Errorf("unexpected offset %q", offset)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server)

	ids, err := client.PlaylistTrackIDs(context.Background(), "pl1")
	if err != nil {
		t.Fatalf("PlaylistTrackIDs() error: %v", err)
	}

	want := []string{"t1", "t2", "t3"}
	if len(ids) != len(want) {
		t.Fatalf("PlaylistTrackIDs() = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("PlaylistTrackIDs()[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestAddTrack(t *testing.T) {
	var gotPath string
	var gotBody struct {
		URIs []string `json:"uris"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := newTestClient(t, server)

	if err := client.AddTrack(context.Background(), "pl1", "track42"); err != nil {
		t.Fatalf("AddTrack() error: %v", err)
	}

	if gotPath != "/playlists/pl1/tracks" {
		t.Errorf("AddTrack() path = %q", gotPath)
	}
	if len(gotBody.URIs) != 1 || gotBody.URIs[0] != "spotify:track:track42" {
		t.Errorf("AddTrack() uris = %v, want spotify:track:track42", gotBody.URIs)
	}
}

func TestCurrentUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/me" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "user1", "display_name": "Chart Enjoyer"})
	}))
	defer server.Close()

	client := newTestClient(t, server)

	user, err := client.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser() error: %v", err)
	}
	if user.ID != "user1" || user.DisplayName != "Chart Enjoyer" {
		t.Errorf("CurrentUser() = %+v", user)
	}
}
