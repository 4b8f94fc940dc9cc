// Spotify implementation of [Client]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sobatea/chartsync/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// Description attached to playlists created by EnsurePlaylist.
	defaultPlaylistDescription = "Songs collected from osu! chart files"
)

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// spotifyArtist is an artist reference within a track object.
type spotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// spotifyTrack is a track object as returned by search and playlist listings.
type spotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []spotifyArtist `json:"artists"`
	ExternalURLs externalURLs    `json:"external_urls"`
	URI          string          `json:"uri"`
}

// spotifyPlaylist is a playlist object (full or simplified).
type spotifyPlaylist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// pagedPlaylists is a paginated response of the user's playlists.
type pagedPlaylists struct {
	Items []spotifyPlaylist `json:"items"`
	Next  *string           `json:"next"`
}

// pagedPlaylistTracks is a paginated response of playlist entries. Track is a
// pointer because the catalog returns null for entries whose underlying track
// has been removed.
type pagedPlaylistTracks struct {
	Items []struct {
		Track *spotifyTrack `json:"track"`
	} `json:"items"`
	Next *string `json:"next"`
}

// SpotifyClient implements [Client] against the Spotify Web API.
//
// The client is an explicit object constructed once and passed by reference
// into every component that issues network calls; there is no ambient
// process-wide instance. Uses [oauth2] for authentication.
type SpotifyClient struct {
	config     *oauth2.Config
	token      *oauth2.Token
	httpClient *http.Client
	baseURL    string

	// userID caches the authenticated user's id after the first profile fetch.
	userID string
}

// NewSpotifyClient creates a new Spotify client with the given OAuth2 credentials.
func NewSpotifyClient(credentials map[string]string) (*SpotifyClient, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://127.0.0.1:8888/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"playlist-read-private",
			"playlist-modify-public",
			"playlist-modify-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyClient{
		config:     config,
		httpClient: http.DefaultClient,
		baseURL:    spotifyBaseURL,
	}, nil
}

// Authenticate installs credentials on the client. Expects either an
// "access_token" (with optional "refresh_token") or an "auth_code" to exchange.
func (s *SpotifyClient) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken, ok := credentials["access_token"]; ok && accessToken != "" {
		s.token = &oauth2.Token{
			AccessToken:  accessToken,
			RefreshToken: credentials["refresh_token"],
		}
		s.httpClient = s.config.Client(ctx, s.token)
		return nil
	}

	if authCode, ok := credentials["auth_code"]; ok && authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("failed to exchange auth code: %w", err)
		}
		s.token = token
		s.httpClient = s.config.Client(ctx, s.token)
		return nil
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyClient) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// OAuthConfig exposes the OAuth2 config for the callback server's code exchange.
func (s *SpotifyClient) OAuthConfig() *oauth2.Config {
	return s.config
}

// SetBaseURL overrides the API base URL. Used by tests.
func (s *SpotifyClient) SetBaseURL(u string) {
	s.baseURL = u
}

// SetHTTPClient overrides the HTTP client. Used by tests.
func (s *SpotifyClient) SetHTTPClient(c *http.Client) {
	s.httpClient = c
}

// doRequest performs an authenticated HTTP request against the Spotify API,
// JSON-encoding body when present and decoding the response into result.
func (s *SpotifyClient) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	apiURL := s.baseURL + endpoint

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrCatalog, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: status %d", shared.ErrTokenExpired, resp.StatusCode)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrCatalog, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// CurrentUser retrieves the authenticated user's profile.
func (s *SpotifyClient) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	s.userID = user.ID
	return &user, nil
}

// SearchTrack searches for a track with title and artist as separate filter
// terms, returning the first result or (nil, nil) when nothing matched.
func (s *SpotifyClient) SearchTrack(ctx context.Context, title, artist string) (*Track, error) {
	query := fmt.Sprintf("track:%s artist:%s", title, artist)
	endpoint := fmt.Sprintf("/search?q=%s&type=track&limit=10", url.QueryEscape(query))

	var response struct {
		Tracks struct {
			Items []spotifyTrack `json:"items"`
		} `json:"tracks"`
	}

	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &response); err != nil {
		return nil, err
	}

	if len(response.Tracks.Items) == 0 {
		return nil, nil
	}

	first := response.Tracks.Items[0]
	track := &Track{
		ID:          first.ID,
		Name:        first.Name,
		ExternalURL: first.ExternalURLs.Spotify,
	}
	if len(first.Artists) > 0 {
		track.ArtistName = first.Artists[0].Name
	}

	return track, nil
}

// EnsurePlaylist returns the user's playlist with the exact given name,
// creating it when absent. Name matching is exact-string and case-sensitive,
// a client-side convention rather than a catalog guarantee.
func (s *SpotifyClient) EnsurePlaylist(ctx context.Context, name string) (*Playlist, error) {
	limit := 50
	offset := 0

	for {
		endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", limit, offset)

		var page pagedPlaylists
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, pl := range page.Items {
			if pl.Name == name {
				return &Playlist{ID: pl.ID, Name: pl.Name}, nil
			}
		}

		if page.Next == nil {
			break
		}
		offset += limit
	}

	return s.createPlaylist(ctx, name)
}

// createPlaylist creates a new public playlist with the default description.
func (s *SpotifyClient) createPlaylist(ctx context.Context, name string) (*Playlist, error) {
	if s.userID == "" {
		if _, err := s.CurrentUser(ctx); err != nil {
			return nil, err
		}
	}

	body := struct {
		Name        string `json:"name"`
		Public      bool   `json:"public"`
		Description string `json:"description"`
	}{
		Name:        name,
		Public:      true,
		Description: defaultPlaylistDescription,
	}

	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(s.userID))

	var created spotifyPlaylist
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &created); err != nil {
		return nil, err
	}

	return &Playlist{ID: created.ID, Name: created.Name}, nil
}

// PlaylistTrackIDs lists every track id in the playlist, following pagination
// to exhaustion. Entries with a removed track reference are skipped.
func (s *SpotifyClient) PlaylistTrackIDs(ctx context.Context, playlistID string) ([]string, error) {
	limit := 100
	offset := 0

	var ids []string

	for {
		endpoint := fmt.Sprintf("/playlists/%s/tracks?fields=items(track(id)),next&limit=%d&offset=%d",
			url.PathEscape(playlistID), limit, offset)

		var page pagedPlaylistTracks
		if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if item.Track != nil && item.Track.ID != "" {
				ids = append(ids, item.Track.ID)
			}
		}

		if page.Next == nil {
			break
		}
		offset += limit
	}

	return ids, nil
}

// AddTrack appends one track to the playlist.
func (s *SpotifyClient) AddTrack(ctx context.Context, playlistID, trackID string) error {
	body := struct {
		URIs []string `json:"uris"`
	}{
		URIs: []string{"spotify:track:" + trackID},
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistID))
	return s.doRequest(ctx, http.MethodPost, endpoint, body, nil)
}
