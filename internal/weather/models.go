package weather

import (
	"time"
)

// CacheTTL is how long a fetched snapshot stays fresh for a caching collaborator.
const CacheTTL = 30 * time.Minute

// HourlyLimit is the number of hourly samples kept in a snapshot.
const HourlyLimit = 24

// Location is a named place resolved by a geocoder.
// Name is the identity used for favorites/recents dedup (case-sensitive).
type Location struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// CurrentConditions is the "now" block of a snapshot. Temperatures are °C.
type CurrentConditions struct {
	Temperature   float64   `json:"temp"`
	FeelsLike     float64   `json:"feelsLike"`
	Humidity      float64   `json:"humidity"`
	WindSpeed     float64   `json:"windSpeed"` // km/h
	WindDirection float64   `json:"windDirection"`
	WeatherCode   int       `json:"weatherCode"`
	UVIndex       float64   `json:"uvIndex"` // estimated, see EstimateUV
	AQI           int       `json:"aqi"`
	IsDay         bool      `json:"isDay"`
	Time          time.Time `json:"time"`
}

// HourlySeries holds index-aligned hourly samples.
type HourlySeries struct {
	Time                     []time.Time `json:"time"`
	Temperature              []float64   `json:"temp"`
	WeatherCode              []int       `json:"weatherCode"`
	PrecipitationProbability []int       `json:"precipitationProbability"`
}

// Len returns the number of samples, assuming the series are aligned.
func (h HourlySeries) Len() int {
	return len(h.Time)
}

func (h HourlySeries) aligned() bool {
	n := len(h.Time)
	return len(h.Temperature) == n && len(h.WeatherCode) == n && len(h.PrecipitationProbability) == n
}

func (h HourlySeries) truncate(n int) HourlySeries {
	if h.Len() <= n {
		return h
	}
	return HourlySeries{
		Time:                     h.Time[:n],
		Temperature:              h.Temperature[:n],
		WeatherCode:              h.WeatherCode[:n],
		PrecipitationProbability: h.PrecipitationProbability[:n],
	}
}

// DailySeries holds index-aligned per-day samples, typically 7 entries.
type DailySeries struct {
	Date                        []time.Time `json:"time"`
	TempMax                     []float64   `json:"tempMax"`
	TempMin                     []float64   `json:"tempMin"`
	WeatherCode                 []int       `json:"weatherCode"`
	Sunrise                     []time.Time `json:"sunrise"`
	Sunset                      []time.Time `json:"sunset"`
	UVIndexMax                  []float64   `json:"uvIndexMax"`
	PrecipitationProbabilityMax []int       `json:"precipitationProbabilityMax"`
}

// Len returns the number of days, assuming the series are aligned.
func (d DailySeries) Len() int {
	return len(d.Date)
}

func (d DailySeries) aligned() bool {
	n := len(d.Date)
	return len(d.TempMax) == n &&
		len(d.TempMin) == n &&
		len(d.WeatherCode) == n &&
		len(d.Sunrise) == n &&
		len(d.Sunset) == n &&
		len(d.UVIndexMax) == n &&
		len(d.PrecipitationProbabilityMax) == n
}

// Snapshot is everything fetched for one location at one point in time.
type Snapshot struct {
	Location  Location          `json:"location"`
	Current   CurrentConditions `json:"current"`
	Hourly    HourlySeries      `json:"hourly"`
	Daily     DailySeries       `json:"daily"`
	FetchedAt time.Time         `json:"fetchedAt"` // always UTC
}

// Fresh reports whether the snapshot is younger than CacheTTL at now.
func (s Snapshot) Fresh(now time.Time) bool {
	return !s.FetchedAt.IsZero() && now.Sub(s.FetchedAt) < CacheTTL
}

// Forecast is the normalized forecast payload before it becomes a Snapshot.
// UVIndex and AQI of Current are left zero by providers.
type Forecast struct {
	Current CurrentConditions
	Hourly  HourlySeries
	Daily   DailySeries
}
