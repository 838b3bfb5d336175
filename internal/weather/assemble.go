package weather

import (
	"fmt"
	"math"
	"time"
)

// EstimateUV approximates the UV index at a given hour of the day from the
// daily maximum, using a half-sine over 06:00–18:00:
//
//	UV(h) = max(0, maxUV * sin((h-6) * π/12))  for 6 < h < 18, else 0
//
// This is a rough model, not a measurement; it ignores cloud cover and
// the real solar noon of the location.
func EstimateUV(maxUV float64, hour int) float64 {
	if hour <= 6 || hour >= 18 {
		return 0
	}
	return math.Max(0, maxUV*math.Sin(float64(hour-6)*math.Pi/12))
}

// AssembleSnapshot turns a forecast plus an AQI value into a Snapshot.
// Hourly series are cut to HourlyLimit entries and the current UV index is
// estimated from today's maximum at the observation's local hour.
func AssembleSnapshot(loc Location, fc Forecast, aqi int, fetchedAt time.Time) (Snapshot, error) {
	if !fc.Hourly.aligned() {
		return Snapshot{}, fmt.Errorf("hourly: %w", errMisaligned)
	}
	if !fc.Daily.aligned() {
		return Snapshot{}, fmt.Errorf("daily: %w", errMisaligned)
	}

	current := fc.Current
	current.AQI = aqi
	if fc.Daily.Len() > 0 {
		uv := EstimateUV(fc.Daily.UVIndexMax[0], current.Time.Hour())
		current.UVIndex = math.Round(uv*10) / 10
	}

	return Snapshot{
		Location:  loc,
		Current:   current,
		Hourly:    fc.Hourly.truncate(HourlyLimit),
		Daily:     fc.Daily,
		FetchedAt: fetchedAt.UTC(),
	}, nil
}
