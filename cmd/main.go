package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/spotfolio/cache"
	"github.com/xeptore/spotfolio/config"
	"github.com/xeptore/spotfolio/constant"
	"github.com/xeptore/spotfolio/log"
	"github.com/xeptore/spotfolio/playlist"
	"github.com/xeptore/spotfolio/server"
	"github.com/xeptore/spotfolio/spotify/auth"
	"github.com/xeptore/spotfolio/spotify/fetch"
	"github.com/xeptore/spotfolio/spotify/fs"
)

const (
	flagConfigFilePath = "config"
)

func main() {
	logger := log.NewPretty(os.Stdout).Level(zerolog.TraceLevel)
	if err := godotenv.Load(); nil != err {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn().Msg(".env file was not found")
		} else {
			logger.Fatal().Err(err).Msg("Failed to load .env file")
		}
	}

	configFlag := &cli.StringFlag{ //nolint:exhaustruct
		Name:     flagConfigFilePath,
		Aliases:  []string{"c"},
		Usage:    "Config file path",
		Required: false,
	}

	//nolint:exhaustruct
	app := &cli.App{
		Name:     "spotfolio",
		Version:  constant.Version,
		Compiled: constant.CompileTime,
		Suggest:  true,
		Usage:    "Spotify listening data for the portfolio site",
		Commands: []*cli.Command{
			//nolint:exhaustruct
			{
				Name:    "run",
				Aliases: []string{"r"},
				Usage:   "Serve the HTTP API",
				Action:  run,
				Flags:   []cli.Flag{configFlag},
			},
			//nolint:exhaustruct
			{
				Name:    "backup",
				Aliases: []string{"b"},
				Usage:   "Fetch the configured playlist and overwrite its backup",
				Action:  backup,
				Flags:   []cli.Flag{configFlag},
			},
		},
	}

	if err := app.Run(os.Args); nil != err {
		if errors.Is(err, context.Canceled) {
			logger.Trace().Msg("Application was canceled")
			return
		}
		if flawErr := new(flaw.Flaw); errors.As(err, &flawErr) {
			logger.Fatal().Func(log.Flaw(flawErr)).Msg("Application exited with flaw")
			return
		}
		logger.Fatal().Err(err).Msg("Application exited with error")
	}
}

func loadConfig(cliCtx *cli.Context, logger zerolog.Logger) (*config.Config, error) {
	cfgEnv := os.Getenv("CONFIG")
	cfgFilePath := cliCtx.String(flagConfigFilePath)
	switch {
	case cfgFilePath != "" && cfgEnv != "":
		return nil, errors.New("config file path and config environment variable are both set. specify only one")
	case cfgFilePath == "" && cfgEnv == "":
		return nil, errors.New("config file path and config environment variable are both empty. specify one")
	case cfgFilePath != "":
		logger.Debug().Str("config_file_path", cfgFilePath).Msg("Loading config from file")
		cfg, err := config.FromFile(cfgFilePath)
		if nil != err {
			return nil, fmt.Errorf("failed to load config file: %v", err)
		}
		return cfg, nil
	default:
		logger.Debug().Msg("Loading config from environment variable")
		cfg, err := config.FromString(cfgEnv)
		if nil != err {
			return nil, fmt.Errorf("failed to load config from environment variable: %v", err)
		}
		return cfg, nil
	}
}

type deps struct {
	cfg       *config.Config
	secrets   *config.Secrets
	logger    zerolog.Logger
	client    *fetch.Client
	playlists *playlist.Service
}

func setup(cliCtx *cli.Context) (*deps, error) {
	bootLogger := log.NewPretty(os.Stdout).Level(zerolog.TraceLevel)
	cfg, err := loadConfig(cliCtx, bootLogger)
	if nil != err {
		return nil, err
	}

	secrets, err := config.SecretsFromEnv()
	if nil != err {
		return nil, fmt.Errorf("failed to load secrets: %v", err)
	}

	logger := log.New(cfg.LogFormat, os.Stdout).Level(zerolog.TraceLevel)
	logger.
		Debug().
		Str("playlist_id", cfg.PlaylistID).
		Str("backup_dir", cfg.BackupDir).
		Dur("playlist_cache_ttl", cfg.PlaylistCacheTTL).
		Bool("reuse_access_token", cfg.ReuseAccessToken).
		Str("client_id", log.RedactString(secrets.ClientID)).
		Bool("backup_api_key_set", secrets.BackupAPIKey != "").
		Msg("Configuration loaded")

	tokens := auth.New(
		auth.Credentials{
			ClientID:     secrets.ClientID,
			ClientSecret: secrets.ClientSecret,
			RefreshToken: secrets.RefreshToken,
		},
		auth.DefaultTokenURL,
		cfg.ReuseAccessToken,
		log.Module(logger, "auth"),
	)
	client := fetch.NewClient(tokens, fetch.DefaultBaseURL, log.Module(logger, "fetch"))
	store := fs.NewStore(cfg.BackupDir, log.Module(logger, "backup"))
	playlists := playlist.NewService(
		client,
		store,
		&cache.New().Playlists,
		cfg.PlaylistID,
		cfg.PlaylistCacheTTL,
		log.Module(logger, "playlist"),
	)

	return &deps{
		cfg:       cfg,
		secrets:   secrets,
		logger:    logger,
		client:    client,
		playlists: playlists,
	}, nil
}

func run(cliCtx *cli.Context) error {
	ctx, cancel := signal.NotifyContext(cliCtx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := setup(cliCtx)
	if nil != err {
		return err
	}

	srv := server.New(a.client, a.playlists, a.secrets.BackupAPIKey, log.Module(a.logger, "server"))
	return srv.Run(ctx, a.cfg.ListenAddress)
}

func backup(cliCtx *cli.Context) error {
	ctx, cancel := signal.NotifyContext(cliCtx.Context, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := setup(cliCtx)
	if nil != err {
		return err
	}

	b, err := a.playlists.Backup(ctx)
	if nil != err {
		return err
	}
	a.logger.
		Info().
		Str("playlist_id", a.playlists.PlaylistID()).
		Int("tracks", b.Metadata.TrackCount).
		Time("saved_at", b.Metadata.SavedAt).
		Str("path", a.playlists.BackupPath()).
		Msg("Backup created successfully")

	return nil
}
