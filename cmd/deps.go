package cmd

import (
	"context"
	"time"

	"github.com/Tiliavir/paymo-paybot/internal/cache"
	"github.com/Tiliavir/paymo-paybot/internal/config"
	"github.com/Tiliavir/paymo-paybot/internal/paymo"
	"github.com/Tiliavir/paymo-paybot/internal/service"
)

// newPaymoClient builds the Paymo client, with the Redis user-id cache when
// REDIS_ADDR is set. The returned func releases the cache connection.
func newPaymoClient(ctx context.Context) (*paymo.Client, func(), error) {
	opts := paymo.Options{
		BaseURL:     cfg.Paymo.BaseURL,
		APIKey:      cfg.Paymo.APIKey,
		AccessToken: cfg.Paymo.AccessToken,
		Timeout:     cfg.Paymo.Timeout,
		Logger:      log,
	}
	closeFn := func() {}

	if cfg.Redis.Addr != "" && cfg.Paymo.CredentialsSet() {
		rdb, err := cache.Connect(ctx, cache.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, user id cache disabled")
		} else {
			credential := cfg.Paymo.AccessToken
			if credential == "" {
				credential = cfg.Paymo.APIKey
			}
			opts.Cache = cache.NewUserIDs(rdb, cfg.Redis.CacheTTL)
			opts.CacheKey = cache.Key(credential)
			closeFn = func() { _ = rdb.Close() }
		}
	}

	client, err := paymo.NewClient(ctx, opts)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return client, closeFn, nil
}

func newReporter(client *paymo.Client) *service.Reporter {
	return service.NewReporter(client, client, config.NewPayLoader(nil), time.Now, log)
}
