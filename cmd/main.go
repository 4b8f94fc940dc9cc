package main

import (
	"context"
	"os"

	"github.com/sobatea/chartsync/internal/catalog"
	"github.com/sobatea/chartsync/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var spotify *catalog.SpotifyClient
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if client, err := catalog.NewSpotifyClient(config.Credentials.Spotify.Map()); err == nil {
			spotify = client
			if config.Credentials.Spotify.AccessToken != "" {
				if err := spotify.Authenticate(context.Background(), config.Credentials.Spotify.Map()); err != nil {
					logger.Warn("stored token could not be applied", "error", err)
				}
			}
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Spotify: spotify,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "chartsync",
		Usage:    "Sync songs from osu! chart files to a Spotify playlist",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
