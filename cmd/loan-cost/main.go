package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iwvelando/loan-cost/internal/config"
	"github.com/iwvelando/loan-cost/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

type rootOptions struct {
	configPath string
	logLevel   string
}

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// CLI override takes precedence
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
	case "json":
		zapConfig = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

// loadConfiguration reads the application config and builds the logger,
// reporting any configuration warnings through it.
func loadConfiguration(opts *rootOptions, loggingOverride *config.LoggingConfig) (*config.Configuration, *zap.Logger, error) {
	conf, err := config.LoadConfiguration(opts.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration at %s: %w", opts.configPath, err)
	}

	loggingConfig := conf.Logging
	if loggingOverride != nil {
		loggingConfig = mergeLogging(loggingConfig, *loggingOverride)
	}

	logger, err := initializeLogger(loggingConfig, opts.logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}
	return conf, logger, nil
}

// mergeLogging overlays the non-empty fields of override onto base.
func mergeLogging(base, override config.LoggingConfig) config.LoggingConfig {
	if override.Level != "" {
		base.Level = override.Level
	}
	if override.Format != "" {
		base.Format = override.Format
	}
	if override.OutputFile != "" {
		base.OutputFile = override.OutputFile
	}
	return base
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "loan-cost",
		Short:         "Calculate the total cost and repayment schedule of a short-term loan",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", constants.DefaultConfigFile, "path to configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(calculateCmd(opts))
	rootCmd.AddCommand(serveCmd(opts))
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": %q}\n", err.Error())
		os.Exit(1)
	}
}
