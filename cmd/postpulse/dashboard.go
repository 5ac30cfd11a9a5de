package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/IshaanNene/PostPulse/internal/dashboard"
	"github.com/IshaanNene/PostPulse/internal/observability"
)

var dashboardPort int

// dashboardCmd creates the "dashboard" subcommand.
func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Serve charts and the labelled comment table",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if dashboardPort > 0 {
				cfg.Dashboard.Port = dashboardPort
			}
			dir := inputDir
			if dir == "" {
				dir = cfg.Dashboard.DataDir
			}

			data, err := dashboard.Load(dir)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var metrics *observability.Metrics
			if cfg.Metrics.Enabled {
				metrics = observability.NewMetrics(logger)
			}
			return dashboard.New(cfg.Dashboard, data, metrics, logger).Serve(ctx)
		},
	}

	cmd.Flags().StringVarP(&inputDir, "input", "i", "", "directory with analyze output (default: dashboard.data_dir)")
	cmd.Flags().IntVarP(&dashboardPort, "port", "p", 0, "listen port (default: dashboard.port)")

	return cmd
}
