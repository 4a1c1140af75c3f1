package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"phrasecounter/internal/config"
	"phrasecounter/internal/history"
	"phrasecounter/internal/logging"
	"phrasecounter/internal/metrics"
	"phrasecounter/internal/phrase"
	"phrasecounter/internal/storage"
	"phrasecounter/internal/storage/bolt"
	"phrasecounter/internal/storage/file"
	"phrasecounter/internal/storage/memory"
	"phrasecounter/internal/storage/redis"
	"phrasecounter/internal/tally"
)

var version = "dev"

type rootOptions struct {
	configPath string
	ephemeral  bool
}

// Execute runs the command line and returns the process exit code
func Execute() int {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "phrasecounter",
		Short: "Count how often phrases come up, one keystroke at a time",
		Long: `phrasecounter tracks a list of phrases, each with a single-key hotkey.
Run without a subcommand to open the interactive counter; the subcommands
work on the same data from scripts.`,
		Version:      version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to configuration file (default: ./config.yaml or ~/.config/phrasecounter/config.yaml)")
	cmd.PersistentFlags().BoolVar(&opts.ephemeral, "ephemeral", false, "Keep everything in memory and discard it on exit")

	cmd.AddCommand(
		newAddCmd(opts),
		newListCmd(opts),
		newPressCmd(opts),
		newIncCmd(opts),
		newDecCmd(opts),
		newHotkeyCmd(opts),
		newRmCmd(opts),
		newResetCmd(opts),
		newSaveCmd(opts),
		newHistoryCmd(opts),
	)

	return cmd
}

// app holds everything a command needs, opened from the configuration
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	backend   storage.Backend
	fileStore *file.Store // Set for the file driver only
	ctrl      *tally.Controller
	metrics   *metrics.Server

	logCloser io.Closer
}

// loadConfig reads the configuration named on the command line, or the
// default locations
func loadConfig(opts *rootOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.Load(opts.configPath)
	} else {
		cfg, err = config.LoadFromDefaultPath()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if opts.ephemeral {
		cfg.Storage.Driver = "memory"
	}
	return cfg, nil
}

// openApp loads the configuration, sets up logging and opens the stores.
// logOut receives logs when no log file is configured.
func openApp(cmd *cobra.Command, opts *rootOptions, logOut io.Writer) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger, logCloser, err := logging.Setup(cfg.Logging, logOut)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, logCloser: logCloser}

	a.backend, a.fileStore, err = openBackend(cfg.Storage)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	logger.Debug().Str("driver", cfg.Storage.Driver).Msg("Storage opened")

	ctx := cmd.Context()
	phrases, err := phrase.NewStore(ctx, a.backend.Collection(storage.CollectionPhrases), phrase.Options{
		ClampAtZero: !cfg.Counting.AllowNegative,
		Palette:     phrase.ThemePalette(cfg.Theme),
		Logger:      logger,
	})
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	hist, err := history.NewStore(ctx, a.backend.Collection(storage.CollectionHistory), logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.ctrl = tally.New(phrases, hist, tally.Options{
		WindowSize: cfg.WindowSize(),
		Logger:     logger,
	})
	return a, nil
}

// openBackend opens the configured storage driver. The file store is also
// returned for the file driver so callers can watch it.
func openBackend(cfg config.StorageConfig) (storage.Backend, *file.Store, error) {
	switch cfg.Driver {
	case "", "file":
		s, err := file.Open(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case "bolt":
		s, err := bolt.Open(filepath.Join(cfg.DataDir, bolt.FileName))
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	case "redis":
		s, err := redis.Open(cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	case "memory":
		return memory.New(), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}

// startMetrics serves Prometheus metrics when an address is configured
func (a *app) startMetrics() error {
	if a.cfg.Metrics.Addr == "" {
		return nil
	}
	srv := metrics.NewServer(a.cfg.Metrics.Addr, a.logger)
	if err := srv.Start(); err != nil {
		return fmt.Errorf("start metrics server: %w", err)
	}
	a.metrics = srv
	return nil
}

// Close stops the metrics server and releases the storage and log file
func (a *app) Close() error {
	var errs []error
	if a.metrics != nil {
		errs = append(errs, a.metrics.Stop())
	}
	if a.backend != nil {
		errs = append(errs, a.backend.Close())
	}
	if a.logCloser != nil {
		errs = append(errs, a.logCloser.Close())
	}
	return errors.Join(errs...)
}

// withApp opens the app for a one-shot subcommand, logging to stderr
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(a *app) error) error {
	a, err := openApp(cmd, opts, os.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()
	return fn(a)
}
