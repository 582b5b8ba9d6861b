package main

import (
	"context"
	"fmt"

	"github.com/iwvelando/loan-cost/internal/config"
	"github.com/iwvelando/loan-cost/internal/feestore"
	"github.com/iwvelando/loan-cost/internal/quotecache"
	"github.com/iwvelando/loan-cost/pkg/constants"
	"go.uber.org/zap"
)

// openFeeStore opens the configured fee store and seeds it with the
// configured fees when empty.
func openFeeStore(ctx context.Context, logger *zap.Logger, conf *config.Configuration) (feestore.Store, error) {
	var store feestore.Store
	switch conf.Store.Backend {
	case constants.BackendSQLite:
		path := conf.Store.Path
		if path == "" {
			path = constants.DefaultStorePath
		}
		sqlite, err := feestore.NewSQLite(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open fee store at %s: %w", path, err)
		}
		store = sqlite
	default:
		store = feestore.NewMemory()
	}

	if err := feestore.Seed(ctx, logger, store, conf.Fees); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// openQuoteCache returns the configured cache, or nil when caching is off.
func openQuoteCache(ctx context.Context, conf *config.Configuration) (quotecache.Cache, error) {
	switch conf.Cache.Backend {
	case constants.BackendRedis:
		cache, err := quotecache.NewRedis(ctx, conf.Cache.RedisAddress, conf.Cache.RedisPassword, conf.Cache.RedisDB)
		if err != nil {
			return nil, err
		}
		return cache, nil
	case constants.BackendMemory, "":
		return quotecache.NewMemory(), nil
	default:
		return nil, nil
	}
}
