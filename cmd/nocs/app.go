package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/canoeh/nocs/internal/catalog"
	"github.com/canoeh/nocs/internal/config"
	"github.com/canoeh/nocs/internal/models"
	"github.com/canoeh/nocs/internal/storage"
	"github.com/canoeh/nocs/pkg/utils"
)

const defaultConfigPath = "/usr/local/etc/nocs/config.yaml"

// app carries the state shared by all subcommands once the root command has run its
// persistent pre-run.
type app struct {
	configPath string
	debug      bool

	cfg          *config.Config
	resolvedPath string
	logger       *zap.Logger
}

// loadConfig loads config from path. When path is the default, config.yaml in the current
// directory wins if it exists, so running nocs from a project directory uses its config.
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				path = fallback
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, resolved, err := loadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	debugMode := cfg.Debug || a.debug
	cfg.Debug = debugMode
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.cfg = cfg
	a.resolvedPath = resolved
	a.logger = logger
	logger.Debug("config loaded",
		zap.String("config_path", resolved),
		zap.String("snapshot_path", cfg.Dataset.SnapshotPath),
		zap.Bool("debug", debugMode),
	)
	return nil
}

func (a *app) teardown(*cobra.Command, []string) {
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// newCatalog returns a catalog service that lazily loads the configured snapshot.
func (a *app) newCatalog() *catalog.Service {
	return catalog.New(snapshotLoader(a.cfg.Dataset.SnapshotPath),
		catalog.WithLogger(a.logger),
		catalog.WithLimits(a.cfg.Query.DefaultLimit, a.cfg.Query.MaxLimit),
		catalog.WithSuggestLimit(a.cfg.Query.SuggestLimit),
	)
}

// snapshotLoader reads the snapshot at path with the store matching its extension.
func snapshotLoader(path string) catalog.LoaderFunc {
	return func(ctx context.Context) (*models.Snapshot, error) {
		store, err := storage.NewStore(path)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Load(ctx)
	}
}
