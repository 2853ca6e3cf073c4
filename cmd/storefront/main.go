package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/wisebet-storefront-poc/internal/api"
	"github.com/radieske/wisebet-storefront-poc/internal/auth"
	"github.com/radieske/wisebet-storefront-poc/internal/bets"
	"github.com/radieske/wisebet-storefront-poc/internal/markets"
	"github.com/radieske/wisebet-storefront-poc/internal/prefs"
	"github.com/radieske/wisebet-storefront-poc/internal/session"
	"github.com/radieske/wisebet-storefront-poc/internal/shared/cache"
	"github.com/radieske/wisebet-storefront-poc/internal/shared/config"
	"github.com/radieske/wisebet-storefront-poc/internal/shared/logger"
	"github.com/radieske/wisebet-storefront-poc/internal/shared/metrics"
	"github.com/radieske/wisebet-storefront-poc/internal/slip"
	"github.com/radieske/wisebet-storefront-poc/internal/storefront"
)

func main() {
	// carrega config
	cfg := config.Load()

	// inicia logger
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting storefront", zap.String("api", cfg.APIBaseURL))

	// Redis é opcional: sem ele o storefront só perde o cache de mercados
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = cache.ConnectRedis(cfg.RedisAddr)
		if err != nil {
			log.Warn("redis unavailable, market cache disabled", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
			log.Info("redis connected")
		}
	}

	// deps
	store := prefs.New(cfg.StateDir, log)

	authCli, err := auth.New(cfg.APIBaseURL, cfg.HTTPTimeout, log)
	if err != nil {
		log.Fatal("auth client", zap.Error(err))
	}
	sess := session.NewManager(authCli, store, log)

	apiCli := api.New(cfg.APIBaseURL, cfg.HTTPTimeout, log, sess)
	marketCli := markets.New(apiCli, markets.NewCache(rdb), log)
	betCli := bets.New(apiCli, log)
	betSlip := slip.New(sess, betCli, log)

	// metrics/health
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if rdb != nil {
			return rdb.Ping(ctx).Err()
		}
		return nil
	})
	defer metricsSrv.Close()
	log.Info("metrics/health", zap.String("addr", metricsSrv.Addr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// refresh silencioso resolve o estado inicial antes do primeiro render
	if sess.Bootstrap(ctx) {
		log.Info("session restored", zap.String("username", sess.User().Username))
	}

	app := storefront.New(sess, betSlip, marketCli, betCli, store, log)
	if err := app.Run(ctx, os.Stdin, os.Stdout); err != nil {
		log.Fatal("storefront", zap.Error(err))
	}
}
