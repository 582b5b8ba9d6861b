package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/loan-cost/internal/quotecache"
	"github.com/iwvelando/loan-cost/internal/server"
	"github.com/iwvelando/loan-cost/pkg/constants"
	"github.com/iwvelando/loan-cost/pkg/loans"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func serveCmd(root *rootOptions) *cobra.Command {
	var serverConfigPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the quote and fee schedule HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(root, serverConfigPath)
		},
	}
	cmd.Flags().StringVar(&serverConfigPath, "server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	return cmd
}

func runServe(root *rootOptions, serverConfigPath string) error {
	serverConf, err := server.LoadConfig(serverConfigPath)
	if err != nil {
		return err
	}

	conf, logger, err := loadConfiguration(root, &serverConf.Logging)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openFeeStore(ctx, logger, conf)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close fee store",
				zap.String("op", "main.runServe"),
				zap.Error(err),
			)
		}
	}()

	cache, err := openQuoteCache(ctx, conf)
	if err != nil {
		return err
	}
	if cache != nil {
		defer func() {
			_ = cache.Close()
		}()
	}

	calc := quotecache.NewCachedCalculator(logger,
		loans.NewCalculator(logger, conf.CalculatorLimits()),
		cache, conf.Cache.KeyPrefix, conf.Cache.TTL)

	handler := server.NewHandler(logger, server.Dependencies{
		Calculator:  calc,
		Fees:        store,
		DefaultFees: conf.Fees,
	}, serverConf, Version)

	srv := &http.Server{
		Addr:              serverConf.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("listening on %s", serverConf.Address),
			zap.String("op", "main.runServe"),
			zap.String("store", conf.Store.Backend),
			zap.String("cache", conf.Cache.Backend),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down",
		zap.String("op", "main.runServe"),
	)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
