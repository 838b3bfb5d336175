package weather

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type mapKV struct {
	mu     sync.Mutex
	data   map[string][]byte
	putErr error
}

func newMapKV() *mapKV { return &mapKV{data: make(map[string][]byte)} }

func (m *mapKV) Get(_ context.Context, profile, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[profile+"/"+key]
	return v, ok, nil
}

func (m *mapKV) Put(_ context.Context, profile, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.data[profile+"/"+key] = value
	return nil
}

type fakeGeocoder struct {
	places     map[string]Location
	searchErr  error
	reverse    *Location
	reverseErr error
	searches   int32
}

func (g *fakeGeocoder) Search(_ context.Context, text string) (*Location, error) {
	atomic.AddInt32(&g.searches, 1)
	if g.searchErr != nil {
		return nil, g.searchErr
	}
	l, ok := g.places[text]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (g *fakeGeocoder) Reverse(context.Context, float64, float64) (*Location, error) {
	return g.reverse, g.reverseErr
}

type fakeForecast struct {
	fc    Forecast
	err   error
	calls int32
}

func (f *fakeForecast) FetchForecast(context.Context, float64, float64) (Forecast, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.fc, f.err
}

type fakeAQ struct {
	aqi int
	err error
}

func (f fakeAQ) FetchAQI(context.Context, float64, float64) (int, error) {
	return f.aqi, f.err
}

type mapCache struct {
	mu   sync.Mutex
	data map[string]Snapshot
}

func (c *mapCache) Get(_ context.Context, key string) (Snapshot, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.data[key]
	return s, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, s Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = s
	return nil
}

var (
	london = Location{Name: "London", Country: "United Kingdom", Latitude: 51.5074, Longitude: -0.1278}
	paris  = Location{Name: "Paris", Country: "France", Latitude: 48.8566, Longitude: 2.3522}
)

var fixedNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func names(locs []Location) []string {
	out := make([]string, len(locs))
	for i, l := range locs {
		out[i] = l.Name
	}
	return out
}

// sampleForecast has 30 hourly samples and 7 days, observed at 12:00 UTC.
func sampleForecast() Forecast {
	var fc Forecast
	fc.Current = CurrentConditions{
		Temperature: 21.4, FeelsLike: 20.6, Humidity: 50, WindSpeed: 10,
		WeatherCode: 2, IsDay: true, Time: fixedNow,
	}
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		fc.Hourly.Time = append(fc.Hourly.Time, start.Add(time.Duration(i)*time.Hour))
		fc.Hourly.Temperature = append(fc.Hourly.Temperature, 15+float64(i%10))
		fc.Hourly.WeatherCode = append(fc.Hourly.WeatherCode, 3)
		fc.Hourly.PrecipitationProbability = append(fc.Hourly.PrecipitationProbability, i)
	}
	for d := 0; d < 7; d++ {
		day := start.AddDate(0, 0, d)
		fc.Daily.Date = append(fc.Daily.Date, day)
		fc.Daily.TempMax = append(fc.Daily.TempMax, 24)
		fc.Daily.TempMin = append(fc.Daily.TempMin, 12)
		fc.Daily.WeatherCode = append(fc.Daily.WeatherCode, 61)
		fc.Daily.Sunrise = append(fc.Daily.Sunrise, day.Add(5*time.Hour))
		fc.Daily.Sunset = append(fc.Daily.Sunset, day.Add(21*time.Hour))
		fc.Daily.UVIndexMax = append(fc.Daily.UVIndexMax, 8)
		fc.Daily.PrecipitationProbabilityMax = append(fc.Daily.PrecipitationProbabilityMax, 10*d)
	}
	return fc
}

type fixture struct {
	svc *Service
	geo *fakeGeocoder
	fc  *fakeForecast
	kv  *mapKV
}

func newFixture(aq AirQualityProvider, opts ...Option) *fixture {
	f := &fixture{
		geo: &fakeGeocoder{places: map[string]Location{"London": london, "Paris": paris}},
		fc:  &fakeForecast{fc: sampleForecast()},
		kv:  newMapKV(),
	}
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	f.svc = NewService(f.geo, f.fc, aq, f.kv, opts...)
	return f
}

func TestSearchBlankTermCallsNothing(t *testing.T) {
	f := newFixture(fakeAQ{aqi: 10})

	for _, term := range []string{"", "   ", "\t\n"} {
		if _, err := f.svc.Search(context.Background(), "p", term); !errors.Is(err, ErrEmptyQuery) {
			t.Fatalf("term %q: expected ErrEmptyQuery, got %v", term, err)
		}
	}
	if f.geo.searches != 0 || f.fc.calls != 0 {
		t.Fatalf("expected no collaborator calls, got %d searches and %d fetches", f.geo.searches, f.fc.calls)
	}
}

func TestSearchRecordsRecentAndLastLocation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(fakeAQ{aqi: 35})

	res, err := f.svc.Search(ctx, "p", " Paris ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Snapshot.Location != paris || res.Snapshot.Current.AQI != 35 {
		t.Fatalf("unexpected snapshot %+v", res.Snapshot)
	}

	if _, err := f.svc.Search(ctx, "p", "London"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s, err := f.svc.Settings(ctx, "p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := names(s.Recents); !reflect.DeepEqual(got, []string{"London", "Paris"}) {
		t.Fatalf("unexpected recents %v", got)
	}
	if s.LastLocation == nil || *s.LastLocation != london {
		t.Fatalf("unexpected last location %+v", s.LastLocation)
	}
}

func TestSearchNotFound(t *testing.T) {
	f := newFixture(fakeAQ{})

	if _, err := f.svc.Search(context.Background(), "p", "Atlantis"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	f.geo.searchErr = errors.New("upstream down")
	if _, err := f.svc.Search(context.Background(), "p", "London"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected geocoder failures to surface as ErrNotFound, got %v", err)
	}
}

func TestSearchForecastFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(fakeAQ{})

	if _, err := f.svc.Search(ctx, "p", "London"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.fc.err = errors.New("timeout")
	if _, err := f.svc.Search(ctx, "p", "Paris"); !errors.Is(err, ErrConnectivity) {
		t.Fatalf("expected ErrConnectivity, got %v", err)
	}

	s, _ := f.svc.Settings(ctx, "p")
	if got := names(s.Recents); !reflect.DeepEqual(got, []string{"London"}) {
		t.Fatalf("expected recents untouched, got %v", got)
	}
	if s.LastLocation == nil || s.LastLocation.Name != "London" {
		t.Fatalf("expected last location untouched, got %+v", s.LastLocation)
	}
}

func TestFetchSnapshotAirQualityFailureIsZero(t *testing.T) {
	f := newFixture(fakeAQ{aqi: 70, err: errors.New("503")})

	snap, err := f.svc.FetchSnapshot(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.Current.AQI != 0 {
		t.Fatalf("expected aqi 0, got %d", snap.Current.AQI)
	}
	if snap.Hourly.Len() != HourlyLimit || snap.Daily.Len() != 7 {
		t.Fatalf("expected a complete snapshot, got %d hours and %d days", snap.Hourly.Len(), snap.Daily.Len())
	}
}

func TestFetchSnapshotRejectsMisalignedSeries(t *testing.T) {
	f := newFixture(fakeAQ{})
	f.fc.fc.Daily.Sunset = f.fc.fc.Daily.Sunset[:3]

	if _, err := f.svc.FetchSnapshot(context.Background(), 1, 2); !errors.Is(err, ErrConnectivity) {
		t.Fatalf("expected ErrConnectivity, got %v", err)
	}
}

func TestFetchSnapshotUsesFreshCache(t *testing.T) {
	cache := &mapCache{data: make(map[string]Snapshot)}
	f := newFixture(fakeAQ{}, WithCache(cache))
	ctx := context.Background()

	if _, err := f.svc.FetchSnapshot(ctx, 1, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.FetchSnapshot(ctx, 1, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.fc.calls != 1 {
		t.Fatalf("expected 1 forecast call, got %d", f.fc.calls)
	}

	// An entry older than CacheTTL is refetched.
	stale := cache.data[cacheKey(1, 2)]
	stale.FetchedAt = fixedNow.Add(-CacheTTL)
	cache.data[cacheKey(1, 2)] = stale
	if _, err := f.svc.FetchSnapshot(ctx, 1, 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.fc.calls != 2 {
		t.Fatalf("expected a refetch for a stale entry, got %d calls", f.fc.calls)
	}
}

func TestDetectSuccessPersistsLastLocationOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(fakeAQ{})
	f.geo.reverse = &Location{Name: "Camden", Country: "United Kingdom", Latitude: 9, Longitude: 9}

	res, err := f.svc.Detect(ctx, "p", Position{Latitude: 51.54, Longitude: -0.14}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Location{Name: "Camden", Country: "United Kingdom", Latitude: 51.54, Longitude: -0.14}
	if res.Snapshot.Location != want {
		t.Fatalf("unexpected location %+v", res.Snapshot.Location)
	}

	s, _ := f.svc.Settings(ctx, "p")
	if s.LastLocation == nil || *s.LastLocation != want {
		t.Fatalf("unexpected last location %+v", s.LastLocation)
	}
	if len(s.Recents) != 0 {
		t.Fatalf("detection must not push recents, got %v", names(s.Recents))
	}
}

func TestDetectReverseFallbackNames(t *testing.T) {
	f := newFixture(fakeAQ{})
	f.geo.reverseErr = errors.New("boom")

	res, err := f.svc.Detect(context.Background(), "p", Position{Latitude: 3, Longitude: 4}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Snapshot.Location.Name != DetectedLocationName || res.Snapshot.Location.Country != DetectedLocationCountry {
		t.Fatalf("unexpected location %+v", res.Snapshot.Location)
	}
}

func TestDetectInitialFallsBackToDefaultCity(t *testing.T) {
	f := newFixture(fakeAQ{})
	denied := LocatorError{Err: ErrPermissionDenied, Reason: "User denied Geolocation"}

	res, err := f.svc.Detect(context.Background(), "p", denied, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Snapshot.Location.Name != "London" {
		t.Fatalf("expected London, got %+v", res.Snapshot.Location)
	}
}

func TestDetectInitialFallsBackToLastLocation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(fakeAQ{})

	if _, err := f.svc.Search(ctx, "p", "Paris"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := f.svc.Detect(ctx, "p", LocatorError{}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Snapshot.Location.Name != "Paris" {
		t.Fatalf("expected Paris, got %+v", res.Snapshot.Location)
	}
}

func TestDetectInitialFallsBackToDetectedCoordinates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(fakeAQ{})

	if _, err := f.svc.Detect(ctx, "p", Position{Latitude: 48.1, Longitude: 11.5}, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	searches := f.geo.searches

	denied := LocatorError{Err: ErrPermissionDenied, Reason: "User denied Geolocation"}
	res, err := f.svc.Detect(ctx, "p", denied, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Location{Name: DetectedLocationName, Country: DetectedLocationCountry, Latitude: 48.1, Longitude: 11.5}
	if res.Snapshot.Location != want {
		t.Fatalf("expected %+v, got %+v", want, res.Snapshot.Location)
	}
	if f.geo.searches != searches {
		t.Fatal("the stored last location must not be geocoded again")
	}
	if res.Settings.LastLocation == nil || *res.Settings.LastLocation != want {
		t.Fatalf("unexpected last location %+v", res.Settings.LastLocation)
	}
}

func TestDetectInitialLastLocationForecastFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(fakeAQ{})

	if _, err := f.svc.Search(ctx, "p", "Paris"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.fc.err = errors.New("timeout")

	if _, err := f.svc.Detect(ctx, "p", LocatorError{}, true); !errors.Is(err, ErrConnectivity) {
		t.Fatalf("expected ErrConnectivity, got %v", err)
	}
}

func TestDetectInitialUsesConfiguredDefault(t *testing.T) {
	f := newFixture(fakeAQ{}, WithDefaultCity("Paris"))

	res, err := f.svc.Detect(context.Background(), "p", LocatorError{}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Snapshot.Location.Name != "Paris" {
		t.Fatalf("expected Paris, got %+v", res.Snapshot.Location)
	}
}

func TestDetectRetrySurfacesPermissionDenied(t *testing.T) {
	ctx := context.Background()
	f := newFixture(fakeAQ{})

	if _, err := f.svc.Search(ctx, "p", "Paris"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	searches := f.geo.searches

	for _, l := range []Locator{
		LocatorError{Err: ErrPermissionDenied},
		LocatorError{Err: ErrLocationUnavailable, Reason: "timeout"},
	} {
		if _, err := f.svc.Detect(ctx, "p", l, false); !errors.Is(err, ErrPermissionDenied) {
			t.Fatalf("expected ErrPermissionDenied, got %v", err)
		}
	}
	if f.geo.searches != searches {
		t.Fatal("a retry must not fall back to a search")
	}
}

func TestSettingsBookkeeping(t *testing.T) {
	ctx := context.Background()
	f := newFixture(fakeAQ{})

	if _, err := f.svc.SetUnit(ctx, "p", Fahrenheit); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.svc.SetTheme(ctx, "p", ThemeDark); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, err := f.svc.ToggleFavorite(ctx, "p", paris)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Unit != Fahrenheit || s.Theme != ThemeDark || !s.IsFavorite("Paris") {
		t.Fatalf("unexpected settings %+v", s)
	}

	other, _ := f.svc.Settings(ctx, "q")
	if other.Unit != Celsius || len(other.Favorites) != 0 {
		t.Fatalf("profiles must not share settings, got %+v", other)
	}
}

func TestPrefetchDoesNotTouchProfiles(t *testing.T) {
	cache := &mapCache{data: make(map[string]Snapshot)}
	f := newFixture(fakeAQ{}, WithCache(cache))

	if err := f.svc.Prefetch(context.Background(), "London"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := cache.data[cacheKey(london.Latitude, london.Longitude)]; !ok {
		t.Fatal("expected the snapshot to be cached")
	}
	if len(f.kv.data) != 0 {
		t.Fatalf("expected no settings writes, got %v", f.kv.data)
	}

	if err := f.svc.Prefetch(context.Background(), "Atlantis"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
