package cmd

import (
	"context"
	"fmt"

	"mediastat/config"
	"mediastat/pkg/cache"
	"mediastat/pkg/codec"
	"mediastat/pkg/database"
	"mediastat/pkg/lock"
	"mediastat/pkg/logger"
	"mediastat/pkg/metrics"
	appMiddleware "mediastat/pkg/middleware"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type AppDependency struct {
	db        *database.DB
	cfg       *config.Config
	log       *logger.Logger
	validator *goValidator.Validate
	echo      *echo.Echo
	cache     cache.Cache
	codec     codec.Codec
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	locker    lock.Locker
	redis     redis.UniversalClient
}

func NewAppDependency(ctx context.Context) (*AppDependency, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Encoding, logger.WithAlertWebhook(cfg.Log.AlertWebhookURL, cfg.Log.AlertTimeout))
	if err != nil {
		return nil, err
	}

	db, err := database.NewDB(cfg.DB, log)
	if err != nil {
		log.Error("Failed to connect to database", zap.Error(err))
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	dep := &AppDependency{
		cfg:       cfg,
		log:       log,
		validator: goValidator.New(),
		db:        db,
		echo:      newEcho(cfg),
		cache:     cache.NewCache(cfg.Cache.DefaultExpiration, cfg.Cache.CleanupInterval),
		codec:     codec.NewJSON(),
		registry:  registry,
		metrics:   metrics.New(registry),
		locker:    lock.NewMemoryLocker(),
	}

	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			_ = db.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		dep.redis = client
		dep.locker = lock.NewRedisLocker(client, cfg.Redis.Prefix, log)
		log.Info("Using redis job locks", zap.String("addr", cfg.Redis.Addr))
	}

	return dep, nil
}

func newEcho(cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(appMiddleware.NewRateLimiterMiddleware(
		cfg.API.RateLimit,
		cfg.API.RateLimitBurst,
		cfg.API.RateLimitExpire,
		func(c echo.Context) bool {
			// long lived observer connections and scrapes are not rate limited
			return c.Path() == "/api/ws" || c.Path() == "/metrics"
		},
	))
	return e
}

func (d *AppDependency) Close() error {
	d.log.Info("Closing app dependency")
	if d.redis != nil {
		if err := d.redis.Close(); err != nil {
			d.log.Error("Failed to close redis client", zap.Error(err))
		}
	}
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
