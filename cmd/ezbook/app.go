package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/sheetcache"
	"github.com/unkn0wn-root/sheetcache/config"
	"github.com/unkn0wn-root/sheetcache/genstore"
	asynchook "github.com/unkn0wn-root/sheetcache/hooks/async"
	promhooks "github.com/unkn0wn-root/sheetcache/hooks/prom"
	zaplog "github.com/unkn0wn-root/sheetcache/log/zap"
	"github.com/unkn0wn-root/sheetcache/provider"
	bcprov "github.com/unkn0wn-root/sheetcache/provider/bigcache"
	redisprov "github.com/unkn0wn-root/sheetcache/provider/redis"
	rprov "github.com/unkn0wn-root/sheetcache/provider/ristretto"
	"github.com/unkn0wn-root/sheetcache/purchase"
	"github.com/unkn0wn-root/sheetcache/sheets"
	"github.com/unkn0wn-root/sheetcache/sloghooks"
)

// clientOpener builds the order-sheet client and the optional audit client.
// A nil audit client disables the audit log.
type clientOpener func(ctx context.Context, cfg *config.Config) (client, audit sheets.GridClient, err error)

func googleClients(ctx context.Context, cfg *config.Config) (sheets.GridClient, sheets.GridClient, error) {
	gc, err := sheets.NewGoogleClient(ctx, sheets.Config{
		SpreadsheetID:     cfg.Sheets.SpreadsheetID,
		ClientEmail:       cfg.Sheets.ClientEmail,
		PrivateKey:        cfg.Sheets.PrivateKey,
		RequestsPerSecond: cfg.Sheets.RequestsPerSecond,
		Burst:             cfg.Sheets.Burst,
	})
	if err != nil {
		return nil, nil, err
	}
	if cfg.Sheets.LogsSpreadsheetID == "" {
		return gc, nil, nil
	}
	return gc, gc.WithSpreadsheet(cfg.Sheets.LogsSpreadsheetID), nil
}

// app holds everything one command invocation needs.
type app struct {
	cfg  *config.Config
	zl   *zap.Logger
	svc  *sheetcache.Service
	repo *purchase.Repository

	async    *asynchook.Hooks
	registry *prometheus.Registry
	rdb      redis.UniversalClient
}

func newLogger(level string) (*zap.Logger, zapcore.Level, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, lvl, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zl, err := zc.Build()
	if err != nil {
		return nil, lvl, err
	}
	return zl, lvl, nil
}

func newApp(ctx context.Context, cfg *config.Config, zl *zap.Logger, lvl zapcore.Level, open clientOpener) (a *app, err error) {
	a = &app{cfg: cfg, zl: zl}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	var hooks []sheetcache.Hooks
	if cfg.Cache.MetricsFile != "" {
		a.registry = prometheus.NewRegistry()
		ph, err := promhooks.New(a.registry, "ezbook")
		if err != nil {
			return a, err
		}
		hooks = append(hooks, ph)
	}
	if lvl <= zapcore.DebugLevel {
		sl := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		a.async = asynchook.New(sloghooks.New(sl, sloghooks.Options{}), 1, 256)
		hooks = append(hooks, a.async)
	}

	if cfg.UsesRedis() {
		a.rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.rdb.Ping(ctx).Err(); err != nil {
			return a, fmt.Errorf("redis %s: %w", cfg.Redis.Addr, err)
		}
	}

	gs, err := newGenStore(cfg, a.rdb)
	if err != nil {
		return a, err
	}
	mirror, err := newMirror(ctx, cfg, a.rdb)
	if err != nil {
		return a, err
	}

	a.svc, err = sheetcache.New(sheetcache.ServiceOptions{
		Namespace: cfg.Cache.Namespace,
		GenStore:  gs,
		Provider:  mirror,
		Logger:    zaplog.New(zl.Named("cache")),
		Hooks:     sheetcache.TeeHooks(hooks...),
		MaxStale:  cfg.Cache.MaxStale,
		Disabled:  cfg.Cache.Disabled,
	})
	if err != nil {
		return a, err
	}

	client, audit, err := open(ctx, cfg)
	if err != nil {
		return a, err
	}
	layout := purchase.DefaultLayout()
	layout.BaseSheet = cfg.Sheets.BaseSheet
	layout.BooksSheet = cfg.Sheets.BooksSheet
	layout.OrdersSheet = cfg.Sheets.OrdersSheet

	a.repo, err = purchase.New(client, audit, a.svc, purchase.Options{
		Layout:      layout,
		BooksTTL:    cfg.Cache.BooksTTL,
		StudentsTTL: cfg.Cache.StudentsTTL,
		OrdersTTL:   cfg.Cache.OrdersTTL,
		MaxStale:    cfg.Cache.MaxStale,
		Logger:      zaplog.New(zl.Named("purchase")),
	})
	if err != nil {
		return a, err
	}
	return a, nil
}

func newGenStore(cfg *config.Config, rdb redis.UniversalClient) (genstore.GenStore, error) {
	switch cfg.Cache.GenStore {
	case config.GenStoreRedis:
		return genstore.NewRedisGenStore(rdb, cfg.Cache.Namespace, false), nil
	case config.GenStoreLocal:
		return genstore.NewLocalGenStore(), nil
	}
	return nil, fmt.Errorf("unknown gen store %q", cfg.Cache.GenStore)
}

func newMirror(ctx context.Context, cfg *config.Config, rdb redis.UniversalClient) (provider.Provider, error) {
	switch cfg.Cache.Mirror {
	case config.MirrorNone:
		return nil, nil
	case config.MirrorRistretto:
		return rprov.New(rprov.DefaultConfig())
	case config.MirrorBigcache:
		life := cfg.Cache.MaxStale
		if life <= 0 {
			life = 24 * time.Hour
		}
		return bcprov.New(ctx, bcprov.Config{LifeWindow: life})
	case config.MirrorRedis:
		return redisprov.New(redisprov.Config{Client: rdb})
	}
	return nil, fmt.Errorf("unknown mirror %q", cfg.Cache.Mirror)
}

// Close releases the cache, flushes hook queues and writes the metrics file.
func (a *app) Close(ctx context.Context) error {
	var errs []error
	if a.svc != nil {
		errs = append(errs, a.svc.Close(ctx))
	}
	if a.async != nil {
		a.async.Close()
	}
	if a.rdb != nil {
		errs = append(errs, a.rdb.Close())
	}
	if a.registry != nil {
		if err := prometheus.WriteToTextfile(a.cfg.Cache.MetricsFile, a.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	return errors.Join(errs...)
}
