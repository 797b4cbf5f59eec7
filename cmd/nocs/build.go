package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/canoeh/nocs/internal/builder"
	"github.com/canoeh/nocs/internal/extract"
	"github.com/canoeh/nocs/internal/storage"
	"github.com/canoeh/nocs/internal/watcher"
)

func buildCmd(a *app) *cobra.Command {
	var (
		source string
		out    string
		watch  bool
	)
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the occupation snapshot from the classification table",
		Long: `Build reads the published classification table (.csv or .xlsx), assembles one record per
unit group with its TEER category and ancestor groups, and writes the snapshot to a .json or
.db/.sqlite file. With --watch it keeps running and rebuilds whenever the source changes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if source == "" {
				source = a.cfg.Dataset.SourcePath
			}
			if out == "" {
				out = a.cfg.Dataset.SnapshotPath
			}
			if source == "" {
				return errors.New("no source table: pass --source or set dataset.source_path")
			}
			if _, err := storage.KindFor(out); err != nil {
				return err
			}

			b := &snapshotBuilder{
				opts: builder.Options{
					Version:      a.cfg.Dataset.Version,
					Source:       a.cfg.Dataset.Source,
					LinkTemplate: a.cfg.Dataset.ReferenceLinkTemplate,
					Logger:       a.logger,
				},
				logger: a.logger,
				out:    cmd.OutOrStdout(),
			}
			err := b.build(cmd.Context(), source, out)
			if !watch {
				return err
			}
			if err != nil {
				a.logger.Warn("initial build failed, waiting for changes", zap.Error(err))
			}
			return b.watch(cmd.Context(), source, out)
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "classification table (.csv or .xlsx); defaults to dataset.source_path")
	cmd.Flags().StringVar(&out, "out", "", "snapshot file (.json, .db or .sqlite); defaults to dataset.snapshot_path")
	cmd.Flags().BoolVar(&watch, "watch", false, "rebuild when the source file changes")
	return cmd
}

// snapshotBuilder runs the extract, build and save pipeline.
type snapshotBuilder struct {
	opts   builder.Options
	logger *zap.Logger
	out    io.Writer
}

func (b *snapshotBuilder) build(ctx context.Context, source, out string) error {
	start := time.Now()
	rows, err := extract.NewExtractor().Extract(source)
	if err != nil {
		return fmt.Errorf("read %s: %w", source, err)
	}
	snap, report, err := builder.Build(rows, b.opts)
	if err != nil {
		return fmt.Errorf("build %s: %w", source, err)
	}

	store, err := storage.NewStore(out)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Save(ctx, snap); err != nil {
		return fmt.Errorf("save %s: %w", out, err)
	}

	b.logger.Info("snapshot written",
		zap.String("source", source),
		zap.String("out", out),
		zap.Int("rows", report.Rows),
		zap.Int("records", report.Records),
		zap.Int("skipped", report.Skipped),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("missing_ancestors", report.MissingAncestors),
		zap.Duration("duration", time.Since(start)),
	)
	fmt.Fprintf(b.out, "Wrote %d occupations to %s (%d rows read, %d skipped, %d duplicates)\n",
		report.Records, out, report.Rows, report.Skipped, report.Duplicates)
	return nil
}

// watch rebuilds out whenever source is written, until ctx is done.
func (b *snapshotBuilder) watch(ctx context.Context, source, out string) error {
	w := watcher.NewWatcher([]string{source},
		func(path string) {
			if err := b.build(ctx, path, out); err != nil {
				b.logger.Warn("rebuild failed", zap.String("source", path), zap.Error(err))
			}
		},
		watcher.WithLogger(b.logger),
		watcher.WithRemoveHandler(func(path string) {
			b.logger.Warn("source removed, keeping the last snapshot", zap.String("source", path))
		}),
	)
	if err := w.Start(ctx); err != nil {
		return fmt.Errorf("watch %s: %w", source, err)
	}
	defer w.Stop()
	b.logger.Info("watching source for changes", zap.String("source", source))
	<-ctx.Done()
	return nil
}
