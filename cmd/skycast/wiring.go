package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/i474232898/skycast/internal/config"
	"github.com/i474232898/skycast/internal/store"
	"github.com/i474232898/skycast/internal/weather"
	"github.com/i474232898/skycast/internal/weather/providers"
)

// memoryCacheEntries bounds the in-memory snapshot cache.
const memoryCacheEntries = 256

// deps is the wired service plus whatever must be closed on exit.
type deps struct {
	service *weather.Service
	closers []func() error
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		_ = d.closers[i]()
	}
}

// buildService wires providers, stores and the cache from cfg.
func buildService(ctx context.Context, cfg *config.AppConfig, log *zap.SugaredLogger) (*deps, error) {
	d := &deps{}

	// Shared HTTP client for outbound provider calls.
	httpCfg := providers.DefaultHTTPClientConfig(&http.Client{Timeout: cfg.HTTPTimeout}, cfg.HTTPMaxRetries)

	var geo weather.Geocoder = providers.NewPhotonGeocoder(httpCfg, "")
	if cfg.GeocoderAPIKey != "" {
		geo = providers.NewGoogleGeocoder(cfg.GeocoderAPIKey, log)
		log.Info("geocoding with Google")
	}

	var kv weather.KeyValueStore = store.NewMemoryKV()
	if cfg.DatabasePath != "" {
		db, err := store.NewSQLiteKV(cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, db.Close)
		kv = db
		log.Infow("settings database opened", "path", cfg.DatabasePath)
	}

	var cache weather.SnapshotCache = store.NewMemoryCache(memoryCacheEntries, weather.CacheTTL)
	if cfg.RedisAddr != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		rc, err := store.NewRedisCache(pingCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, weather.CacheTTL)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("snapshot cache: %w", err)
		}
		d.closers = append(d.closers, rc.Close)
		cache = rc
		log.Infow("snapshot cache connected", "addr", cfg.RedisAddr)
	}

	d.service = weather.NewService(
		geo,
		providers.NewOpenMeteoProvider(httpCfg, ""),
		providers.NewAirQualityProvider(httpCfg, ""),
		kv,
		weather.WithCache(cache),
		weather.WithDefaultCity(cfg.DefaultCity),
		weather.WithLogger(log),
	)
	return d, nil
}
