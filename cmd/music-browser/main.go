// Command music-browser runs the music browser API server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/justestif/go-music-browser/internal/auth"
	"github.com/justestif/go-music-browser/internal/config"
	"github.com/justestif/go-music-browser/internal/db"
	"github.com/justestif/go-music-browser/internal/library"
	"github.com/justestif/go-music-browser/internal/logging"
	"github.com/justestif/go-music-browser/internal/lyrics"
	"github.com/justestif/go-music-browser/internal/spotify"
	"github.com/justestif/go-music-browser/internal/web"
)

func main() {
	app := &cli.Command{
		Name:  "music-browser",
		Usage: "Browse the Spotify catalog through a small JSON API",
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API server",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (overrides config)",
			},
		},
		Action: serve,
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:   "migrate",
		Usage:  "Apply the database schema",
		Flags:  []cli.Flag{configFlag()},
		Action: migrate,
	}
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	if addr := cmd.String("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	logger := logging.New(os.Stderr, cfg.Log.Level)
	if cfg.Spotify.ClientID == "" || cfg.Spotify.ClientSecret == "" {
		logger.Warn("spotify credentials not set; catalog requests will fail")
	}

	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	tokens := auth.NewTokenManager(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret,
		auth.WithTokenURL(cfg.Spotify.TokenURL),
	)

	gateway := spotify.New(tokens,
		spotify.WithBaseURL(cfg.Spotify.APIBaseURL),
		spotify.WithMarket(cfg.Spotify.Market),
		spotify.WithRateLimit(cfg.Spotify.RateLimit),
		spotify.WithLogger(logger.WithPrefix("spotify")),
	)

	server, err := web.NewServer(web.ServerConfig{
		Addr:    cfg.Server.Addr,
		Secure:  cfg.Production(),
		Catalog: gateway,
		Auth: auth.NewAuthenticator(auth.AuthenticatorConfig{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
			RedirectURI:  cfg.Spotify.RedirectURI,
			AuthURL:      cfg.Spotify.AuthURL,
			TokenURL:     cfg.Spotify.TokenURL,
		}),
		Lyrics: lyrics.NewClient(lyrics.WithBaseURL(cfg.Lyrics.BaseURL)),
		Store:  store,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	return server.Run(ctx)
}

// openStore picks the library store: PostgreSQL when a database URL is
// configured, memory otherwise.
func openStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (library.Store, func(), error) {
	if cfg.Database.URL == "" {
		logger.Info("no database configured; library is kept in memory")
		return library.NewMemoryStore(), func() {}, nil
	}

	database, err := db.New(ctx, cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	return library.NewDBStore(database), database.Close, nil
}

func migrate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}

	logger := logging.New(os.Stderr, cfg.Log.Level)

	database, err := db.New(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}
	logger.Info("schema applied")
	return nil
}
