package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sobatea/chartsync/internal/server"
	"github.com/sobatea/chartsync/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// AuthLogin runs the OAuth2 authorization code flow and stores the resulting
// tokens in the config file.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	token, err := r.doOAuth()
	if err != nil {
		return err
	}

	if err := r.spotify.Authenticate(ctx, map[string]string{
		"access_token":  token.AccessToken,
		"refresh_token": token.RefreshToken,
	}); err != nil {
		return err
	}

	configPath := cmd.String("config")
	if configPath == "" {
		configPath = "config.toml"
	}

	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return err
	}

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Warn("config file not found, tokens not persisted", "path", configPath)
	} else if err := shared.SaveConfig(configPath, r.config); err != nil {
		return fmt.Errorf("failed to save tokens: %w", err)
	}

	user, err := r.spotify.CurrentUser(ctx)
	if err != nil {
		r.logger.Warn("could not fetch user profile", "error", err)
		return r.writePlain("✓ Authentication successful\n")
	}

	return r.writePlain("✓ Authenticated as %s (%s)\n", user.DisplayName, user.ID)
}

// AuthStatus shows the authenticated Spotify user.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	user, err := r.spotify.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("%w: run 'chartsync auth login'", shared.ErrNotAuthenticated)
	}

	r.writePlain("✓ Authenticated\n")
	r.writePlain("User: %s\n", user.DisplayName)
	r.writePlain("ID: %s\n", user.ID)
	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth() (*oauth2.Token, error) {
	state := shared.GenerateState()
	authURL := r.spotify.GetAuthURL(state)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	callback := server.NewCallbackServer(serverAddr, r.spotify.OAuthConfig(), state)

	r.logger.Info("starting OAuth callback server", "addr", serverAddr)
	callback.Start()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.AuthResult

	select {
	case result = <-callback.Result():
		// Got result from callback
	case err := <-callback.Errors():
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := callback.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("no token received")
	}

	return result.Token, nil
}
