package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/justestif/spotify-track-popularity/internal/auth"
	"github.com/justestif/spotify-track-popularity/internal/config"
	"github.com/justestif/spotify-track-popularity/internal/logging"
	"github.com/justestif/spotify-track-popularity/internal/spotify"
	"github.com/justestif/spotify-track-popularity/internal/web"
	webfs "github.com/justestif/spotify-track-popularity/web"
)

var errMissingTrack = errors.New("a track id, URI or URL is required")

// Runner holds the I/O used by command actions.
type Runner struct {
	output    io.Writer
	logOutput io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Output    io.Writer
	LogOutput io.Writer
}

// NewRunner creates a new Runner, defaulting to stdout and stderr.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.LogOutput == nil {
		opts.LogOutput = os.Stderr
	}
	return &Runner{output: opts.Output, logOutput: opts.LogOutput}
}

// Serve runs the web server until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	cfg, logger, err := r.setup(cmd)
	if err != nil {
		return err
	}

	templates, err := fs.Sub(webfs.TemplatesFS, "templates")
	if err != nil {
		return fmt.Errorf("creating templates filesystem: %w", err)
	}

	static, err := fs.Sub(webfs.StaticFS, "static")
	if err != nil {
		return fmt.Errorf("creating static filesystem: %w", err)
	}

	server, err := web.NewServer(web.ServerConfig{
		Addr:                  cfg.Addr(),
		Tracks:                newClient(cfg, logger),
		TemplatesFS:           templates,
		StaticFS:              static,
		Logger:                logger,
		CredentialsConfigured: cfg.HasCredentials(),
		RateLimit:             cfg.Server.RateLimit,
		RateBurst:             cfg.Server.RateBurst,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run()
}

// Track fetches one track and writes it as indented JSON.
func (r *Runner) Track(ctx context.Context, cmd *cli.Command) error {
	input := cmd.Args().First()
	if input == "" {
		return errMissingTrack
	}

	cfg, logger, err := r.setup(cmd)
	if err != nil {
		return err
	}

	id, err := spotify.ParseTrackID(input)
	if err != nil {
		return err
	}

	track, err := newClient(cfg, logger).GetTrackInfo(ctx, string(id))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(r.output)
	enc.SetIndent("", "  ")
	return enc.Encode(track)
}

// setup loads configuration, applies flag overrides and builds the logger.
func (r *Runner) setup(cmd *cli.Command) (*config.Config, *log.Logger, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, nil, err
	}

	if cmd.IsSet("port") {
		cfg.Server.Port = int(cmd.Int("port"))
	}
	if cmd.IsSet("host") {
		cfg.Server.Host = cmd.String("host")
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.New(r.logOutput, cfg.Logging.Level, cfg.Logging.Format)
	if !cfg.HasCredentials() {
		logger.Warn("Spotify credentials are not configured; set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET")
	}

	return cfg, logger, nil
}

// newClient wires the token provider and track client from configuration.
func newClient(cfg *config.Config, logger *log.Logger) *spotify.Client {
	httpClient := &http.Client{Timeout: cfg.Timeout()}

	provider := auth.NewTokenProvider(
		auth.Credentials{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
		},
		auth.WithTokenURL(cfg.Spotify.TokenURL),
		auth.WithHTTPClient(httpClient),
		auth.WithLogger(logger),
	)

	return spotify.New(provider,
		spotify.WithBaseURL(cfg.Spotify.APIBaseURL),
		spotify.WithHTTPClient(httpClient),
		spotify.WithLogger(logger),
	)
}
