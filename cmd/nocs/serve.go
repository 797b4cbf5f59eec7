package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/canoeh/nocs/internal/server"
)

func serveCmd(a *app) *cobra.Command {
	var (
		host string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the occupation API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			svc := a.newCatalog()
			defer svc.Close()

			if cfg.Dataset.Preload {
				if err := svc.Preload(cmd.Context()); err != nil {
					return fmt.Errorf("preload %s: %w", cfg.Dataset.SnapshotPath, err)
				}
			}

			a.logger.Info("serving occupation snapshot",
				zap.String("config_path", a.resolvedPath),
				zap.String("snapshot_path", cfg.Dataset.SnapshotPath),
				zap.Bool("preload", cfg.Dataset.Preload),
			)
			srv := server.NewServer(svc, cfg, a.logger, server.WithVersion(version))
			return srv.Run(cmd.Context(), nil)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides config)")
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")
	return cmd
}
