package weather

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultCity is searched when an initial detection fails and the profile
// has no last location.
const DefaultCity = "London"

// Reverse geocoding fallbacks for a detected position.
const (
	DetectedLocationName    = "Detected Location"
	DetectedLocationCountry = "Nearby"
)

// Result is what a search or detection hands back: the fetched snapshot and
// the profile's settings after bookkeeping.
type Result struct {
	Snapshot Snapshot `json:"snapshot"`
	Settings Settings `json:"settings"`
}

// Service orchestrates geocoding, forecast fetching and the per-profile
// settings lifecycle.
type Service struct {
	geocoder    Geocoder
	forecast    ForecastProvider
	airQuality  AirQualityProvider
	kv          KeyValueStore
	cache       SnapshotCache
	log         *zap.SugaredLogger
	defaultCity string
	now         Clock
}

// Option customizes a Service.
type Option func(*Service)

// WithCache makes FetchSnapshot reuse snapshots younger than CacheTTL.
func WithCache(c SnapshotCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithDefaultCity replaces DefaultCity as the last fallback of Detect.
func WithDefaultCity(name string) Option {
	return func(s *Service) {
		if strings.TrimSpace(name) != "" {
			s.defaultCity = name
		}
	}
}

// WithClock replaces time.Now.
func WithClock(c Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.now = c
		}
	}
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

// NewService creates a new Service.
func NewService(geo Geocoder, fc ForecastProvider, aq AirQualityProvider, kv KeyValueStore, opts ...Option) *Service {
	s := &Service{
		geocoder:    geo,
		forecast:    fc,
		airQuality:  aq,
		kv:          kv,
		log:         zap.NewNop().Sugar(),
		defaultCity: DefaultCity,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search geocodes term, fetches its snapshot and records it as the most
// recent location of profile. A blank term returns ErrEmptyQuery without
// calling anything.
func (s *Service) Search(ctx context.Context, profile, term string) (*Result, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrEmptyQuery
	}

	settings, err := LoadSettings(ctx, s.kv, profile)
	if err != nil {
		return nil, err
	}

	loc, err := s.geocode(ctx, term)
	if err != nil {
		return nil, err
	}

	snap, err := s.fetch(ctx, *loc)
	if err != nil {
		return nil, err
	}

	settings.PushRecent(*loc)
	settings.LastLocation = loc
	if err := settings.Save(ctx, s.kv, profile); err != nil {
		return nil, err
	}

	return &Result{Snapshot: snap, Settings: settings}, nil
}

// FetchSnapshot fetches forecast and air quality for the coordinates.
// The returned snapshot carries an unnamed location.
func (s *Service) FetchSnapshot(ctx context.Context, lat, lon float64) (Snapshot, error) {
	return s.fetch(ctx, Location{Latitude: lat, Longitude: lon})
}

// Detect asks locator for the device position and fetches its snapshot.
//
// When the locator fails on the initial load, Detect fetches the profile's
// last location by its stored coordinates, or searches the default city when
// there is none. A user-triggered retry (initial == false) returns
// ErrPermissionDenied instead.
func (s *Service) Detect(ctx context.Context, profile string, locator Locator, initial bool) (*Result, error) {
	lat, lon, err := locator.Locate(ctx)
	if err != nil {
		if !initial {
			s.log.Infow("location detection refused", "profile", profile, "error", err)
			return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
		return s.fallback(ctx, profile, err)
	}

	settings, err := LoadSettings(ctx, s.kv, profile)
	if err != nil {
		return nil, err
	}

	loc := s.reverse(ctx, lat, lon)
	snap, err := s.fetch(ctx, loc)
	if err != nil {
		return nil, err
	}

	settings.LastLocation = &loc
	if err := settings.Save(ctx, s.kv, profile); err != nil {
		return nil, err
	}
	return &Result{Snapshot: snap, Settings: settings}, nil
}

func (s *Service) fallback(ctx context.Context, profile string, cause error) (*Result, error) {
	settings, err := LoadSettings(ctx, s.kv, profile)
	if err != nil {
		return nil, err
	}

	if settings.LastLocation == nil {
		s.log.Infow("location detection failed on initial load, falling back",
			"profile", profile, "fallback", s.defaultCity, "error", cause)
		return s.Search(ctx, profile, s.defaultCity)
	}

	// The stored coordinates are authoritative; the name may be a placeholder
	// such as DetectedLocationName that no geocoder can resolve.
	loc := *settings.LastLocation
	s.log.Infow("location detection failed on initial load, falling back",
		"profile", profile, "fallback", loc.Name, "error", cause)

	snap, err := s.fetch(ctx, loc)
	if err != nil {
		return nil, err
	}
	if err := settings.Save(ctx, s.kv, profile); err != nil {
		return nil, err
	}
	return &Result{Snapshot: snap, Settings: settings}, nil
}

// Prefetch geocodes name and fetches its snapshot without touching any
// profile. It only warms the snapshot cache.
func (s *Service) Prefetch(ctx context.Context, name string) error {
	loc, err := s.geocode(ctx, name)
	if err != nil {
		return err
	}
	_, err = s.fetch(ctx, *loc)
	return err
}

// Settings loads the settings of profile.
func (s *Service) Settings(ctx context.Context, profile string) (Settings, error) {
	return LoadSettings(ctx, s.kv, profile)
}

// ToggleFavorite adds loc to the favorites of profile, or removes it when a
// favorite with the same name exists.
func (s *Service) ToggleFavorite(ctx context.Context, profile string, loc Location) (Settings, error) {
	return s.update(ctx, profile, func(st *Settings) { st.ToggleFavorite(loc) })
}

// SetUnit stores the display unit of profile.
func (s *Service) SetUnit(ctx context.Context, profile string, unit Unit) (Settings, error) {
	return s.update(ctx, profile, func(st *Settings) { st.Unit = unit })
}

// SetTheme stores the colour theme of profile.
func (s *Service) SetTheme(ctx context.Context, profile string, theme Theme) (Settings, error) {
	return s.update(ctx, profile, func(st *Settings) { st.Theme = theme })
}

func (s *Service) update(ctx context.Context, profile string, apply func(*Settings)) (Settings, error) {
	settings, err := LoadSettings(ctx, s.kv, profile)
	if err != nil {
		return Settings{}, err
	}
	apply(&settings)
	if err := settings.Save(ctx, s.kv, profile); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

func (s *Service) geocode(ctx context.Context, term string) (*Location, error) {
	loc, err := s.geocoder.Search(ctx, term)
	if err != nil {
		s.log.Warnw("geocoding failed", "term", term, "error", err)
		return nil, fmt.Errorf("%w: %q", ErrNotFound, term)
	}
	if loc == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, term)
	}
	return loc, nil
}

func (s *Service) reverse(ctx context.Context, lat, lon float64) Location {
	loc, err := s.geocoder.Reverse(ctx, lat, lon)
	if err != nil {
		s.log.Warnw("reverse geocoding failed", "lat", lat, "lon", lon, "error", err)
	}
	if err != nil || loc == nil {
		return Location{
			Name:      DetectedLocationName,
			Country:   DetectedLocationCountry,
			Latitude:  lat,
			Longitude: lon,
		}
	}
	// Keep the device coordinates rather than the geocoder's match.
	out := *loc
	out.Latitude, out.Longitude = lat, lon
	return out
}

func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("%.4f,%.4f", lat, lon)
}

// fetch runs the forecast and air-quality requests concurrently and joins
// them into a snapshot for loc.
func (s *Service) fetch(ctx context.Context, loc Location) (Snapshot, error) {
	key := cacheKey(loc.Latitude, loc.Longitude)
	if s.cache != nil {
		snap, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			s.log.Warnw("snapshot cache read failed", "key", key, "error", err)
		case ok && snap.Fresh(s.now()):
			s.log.Debugw("snapshot cache hit", "key", key)
			snap.Location = loc
			return snap, nil
		}
	}

	var (
		wg     sync.WaitGroup
		fc     Forecast
		fcErr  error
		aqi    int
		aqiErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		fc, fcErr = s.forecast.FetchForecast(ctx, loc.Latitude, loc.Longitude)
	}()
	go func() {
		defer wg.Done()
		aqi, aqiErr = s.airQuality.FetchAQI(ctx, loc.Latitude, loc.Longitude)
	}()
	wg.Wait()

	if fcErr != nil {
		s.log.Errorw("forecast fetch failed", "location", loc.Name, "key", key, "error", fcErr)
		return Snapshot{}, fmt.Errorf("%w: %v", ErrConnectivity, fcErr)
	}
	if aqiErr != nil {
		s.log.Warnw("air quality unavailable, using 0", "location", loc.Name, "key", key, "error", aqiErr)
		aqi = 0
	}

	snap, err := AssembleSnapshot(loc, fc, aqi, s.now())
	if err != nil {
		s.log.Errorw("forecast payload rejected", "location", loc.Name, "key", key, "error", err)
		return Snapshot{}, fmt.Errorf("%w: %v", ErrConnectivity, err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, snap); err != nil {
			s.log.Warnw("snapshot cache write failed", "key", key, "error", err)
		}
	}
	return snap, nil
}
