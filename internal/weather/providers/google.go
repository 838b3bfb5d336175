package providers

import (
	"context"
	"strings"
	"sync"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/i474232898/skycast/internal/weather"
)

// geocoder keeps its API key in a package variable.
var googleKeyMu sync.Mutex

// GoogleGeocoder implements weather.Geocoder with the Google Geocoding API.
type GoogleGeocoder struct {
	apiKey  string
	circuit *gobreaker.CircuitBreaker
	title   cases.Caser
	log     *zap.SugaredLogger

	// replaced in tests
	geocode func(geocoder.Address) (geocoder.Location, error)
	reverse func(geocoder.Location) ([]geocoder.Address, error)
}

func NewGoogleGeocoder(apiKey string, log *zap.SugaredLogger) *GoogleGeocoder {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &GoogleGeocoder{
		apiKey:  apiKey,
		log:     log,
		circuit: newBreaker("google-geocoder"),
		title:   cases.Title(language.English),
		geocode: geocoder.Geocoding,
		reverse: geocoder.GeocodingReverse,
	}
}

type googleResult struct {
	loc   geocoder.Location
	addrs []geocoder.Address
	err   error

	// reverse lookup failure during Search; the country falls back to "Unknown"
	reverseErr error
}

// Search resolves text to coordinates and names the result after the
// title-cased query, since Google returns no short place name.
func (g *GoogleGeocoder) Search(ctx context.Context, text string) (*weather.Location, error) {
	res, err := g.call(ctx, func() googleResult {
		loc, err := g.geocode(geocoder.Address{City: text})
		if err != nil {
			return googleResult{err: err}
		}
		addrs, err := g.reverse(loc)
		return googleResult{loc: loc, addrs: addrs, reverseErr: err}
	})
	if err != nil {
		return nil, err
	}
	if res.reverseErr != nil {
		g.log.Warnw("google reverse lookup failed, country unknown", "query", text, "error", res.reverseErr)
	}

	country := "Unknown"
	if len(res.addrs) > 0 {
		country = firstNonEmpty(res.addrs[0].Country, res.addrs[0].State, country)
	}
	return &weather.Location{
		Name:      g.title.String(strings.TrimSpace(text)),
		Country:   country,
		Latitude:  res.loc.Latitude,
		Longitude: res.loc.Longitude,
	}, nil
}

// Reverse names the place at lat/lon, or returns nil when Google has nothing.
func (g *GoogleGeocoder) Reverse(ctx context.Context, lat, lon float64) (*weather.Location, error) {
	res, err := g.call(ctx, func() googleResult {
		addrs, err := g.reverse(geocoder.Location{Latitude: lat, Longitude: lon})
		return googleResult{addrs: addrs, err: err}
	})
	if err != nil {
		return nil, err
	}
	if len(res.addrs) == 0 {
		return nil, nil
	}

	a := res.addrs[0]
	return &weather.Location{
		Name:      firstNonEmpty(a.City, a.District, a.County, "Current Location"),
		Country:   firstNonEmpty(a.Country, weather.DetectedLocationCountry),
		Latitude:  lat,
		Longitude: lon,
	}, nil
}

// call runs fn behind the breaker. The geocoder package takes no context, so
// ctx only bounds how long the caller waits.
func (g *GoogleGeocoder) call(ctx context.Context, fn func() googleResult) (googleResult, error) {
	done := make(chan googleResult, 1)
	go func() {
		out, err := g.circuit.Execute(func() (interface{}, error) {
			googleKeyMu.Lock()
			geocoder.ApiKey = g.apiKey
			res := fn()
			googleKeyMu.Unlock()
			return res, res.err
		})
		if err != nil {
			done <- googleResult{err: err}
			return
		}
		done <- out.(googleResult)
	}()

	select {
	case <-ctx.Done():
		return googleResult{}, ctx.Err()
	case res := <-done:
		return res, res.err
	}
}
