package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/skycast/internal/weather"
)

type AppConfig struct {
	Port     string
	LogLevel string

	// Outbound HTTP.
	HTTPTimeout    time.Duration
	HTTPMaxRetries int

	// DefaultCity is the last fallback of an initial location detection.
	DefaultCity string

	// GeocoderAPIKey switches geocoding from Photon to Google.
	GeocoderAPIKey string

	// DatabasePath is the SQLite settings file; empty keeps settings in memory.
	DatabasePath string

	// Redis snapshot cache; an empty address keeps snapshots in memory.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Cities whose snapshots are refreshed in the background.
	PrefetchCities   []string
	PrefetchInterval time.Duration

	// EnvFileLoaded reports whether a .env file was read.
	EnvFileLoaded bool
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{}
	cfg.EnvFileLoaded = godotenv.Load() == nil

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")

	timeout, err := getenvDuration("HTTP_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	cfg.HTTPTimeout = timeout
	cfg.HTTPMaxRetries = getenvInt("HTTP_MAX_RETRIES", 0)
	if cfg.HTTPMaxRetries < 0 {
		return nil, fmt.Errorf("invalid HTTP_MAX_RETRIES: %d", cfg.HTTPMaxRetries)
	}

	cfg.DefaultCity = getenvDefault("DEFAULT_CITY", weather.DefaultCity)
	cfg.GeocoderAPIKey = os.Getenv("GEOCODER_API_KEY")
	cfg.DatabasePath = os.Getenv("DATABASE_PATH")

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.RedisDB = getenvInt("REDIS_DB", 0)

	cfg.PrefetchCities = splitList(os.Getenv("PREFETCH_CITIES"))
	interval, err := getenvDuration("PREFETCH_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.PrefetchInterval = interval

	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
