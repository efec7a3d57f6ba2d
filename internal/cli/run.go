package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/webapi/internal/app"
	"github.com/samvad-hq/webapi/internal/config"
	"github.com/samvad-hq/webapi/internal/logger"
	"github.com/spf13/cobra"
)

type runFlags struct {
	requestsFile   string
	publishersFile string
	interval       int64
}

func newRunCommand() *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute the request plan",
		Long: `Execute every enabled request in the plan, record each outcome and
publish it to the configured sinks. With a run interval the plan repeats
until interrupted.

Examples:
  webapi run
  webapi run --requests ./configs/requests.yaml --publishers ./configs/publishers.yaml
  webapi run --interval 60`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlan(cmd, f)
		},
	}
	cmd.Flags().StringVar(&f.requestsFile, "requests", "", "Requests plan file or URL (default from config)")
	cmd.Flags().StringVar(&f.publishersFile, "publishers", "", "Publishers file (default from config)")
	cmd.Flags().Int64Var(&f.interval, "interval", -1, "Seconds between passes; 0 runs once (default from config)")
	return cmd
}

func runPlan(cmd *cobra.Command, f *runFlags) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applyRunFlags(cfg, f); err != nil {
		return err
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("webapi runner starting", "config", cfg)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, err := app.NewRunner(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize runner", "error", err.Error())
		return err
	}

	if err := runner.Run(ctx); err != nil {
		return fmt.Errorf("runner run: %w", err)
	}
	return nil
}

func applyRunFlags(cfg *config.Config, f *runFlags) error {
	if f.requestsFile != "" {
		cfg.RequestsFile = f.requestsFile
	}
	if f.publishersFile != "" {
		cfg.PublishersFile = f.publishersFile
	}
	if f.interval >= 0 {
		cfg.RunIntervalSeconds = f.interval
		if err := cfg.ApplyDurations(); err != nil {
			return err
		}
	}
	return nil
}
