package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"MorningDigest/internal/app"
	"MorningDigest/internal/config"
	"MorningDigest/internal/logging"
)

var (
	runConfigPath string
	runOutputPath string
	runLogLevel   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build today's digest once",
	Long:  `Run the full pipeline once: fetch, filter, enrich, analyze and write the HTML page.`,
	RunE:  runDigest,
}

func init() {
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "Path to YAML config (defaults to $MORNING_DIGEST_CONFIG)")
	runCmd.Flags().StringVarP(&runOutputPath, "output", "o", "", "Output HTML path (overrides config)")
	runCmd.Flags().StringVar(&runLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.AddCommand(runCmd)
}

func runDigest(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(runConfigPath)
	if err != nil {
		return err
	}
	if runOutputPath != "" {
		cfg.Run.OutputPath = runOutputPath
	}
	if runLogLevel != "" {
		cfg.Logging.Level = runLogLevel
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	ctx := cmd.Context()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application setup failed", "error", err)
		return err
	}
	defer application.Close()

	if err := application.Run(ctx); err != nil {
		logger.Error("digest run failed", "error", err)
		return fmt.Errorf("run digest: %w", err)
	}
	return nil
}
