package weather

import (
	"context"
	"time"
)

// Geocoder resolves place names and coordinates.
// A nil Location with a nil error means no match.
type Geocoder interface {
	Search(ctx context.Context, text string) (*Location, error)
	Reverse(ctx context.Context, lat, lon float64) (*Location, error)
}

// ForecastProvider fetches current, hourly and daily weather for coordinates.
type ForecastProvider interface {
	FetchForecast(ctx context.Context, lat, lon float64) (Forecast, error)
}

// AirQualityProvider fetches the current European AQI for coordinates.
type AirQualityProvider interface {
	FetchAQI(ctx context.Context, lat, lon float64) (int, error)
}

// Locator yields the device position. Failures should wrap
// ErrPermissionDenied or ErrLocationUnavailable.
type Locator interface {
	Locate(ctx context.Context) (lat, lon float64, err error)
}

// KeyValueStore persists serialized settings records per profile.
type KeyValueStore interface {
	Get(ctx context.Context, profile, key string) ([]byte, bool, error)
	Put(ctx context.Context, profile, key string, value []byte) error
}

// SnapshotCache keeps recently fetched snapshots; entries older than the
// cache's TTL are reported as missing.
type SnapshotCache interface {
	Get(ctx context.Context, key string) (Snapshot, bool, error)
	Set(ctx context.Context, key string, snapshot Snapshot) error
}

// Clock returns the current time; tests replace it.
type Clock func() time.Time
