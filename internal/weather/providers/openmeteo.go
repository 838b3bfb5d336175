package providers

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/i474232898/skycast/internal/weather"
)

const (
	openMeteoForecastURL = "https://api.open-meteo.com/v1/forecast"

	openMeteoCurrent = "temperature_2m,relative_humidity_2m,apparent_temperature,is_day,weather_code,wind_speed_10m,wind_direction_10m"
	openMeteoHourly  = "temperature_2m,weather_code,precipitation_probability"
	openMeteoDaily   = "weather_code,temperature_2m_max,temperature_2m_min,sunrise,sunset,uv_index_max,precipitation_probability_max"
)

// OpenMeteoProvider implements weather.ForecastProvider for Open-Meteo.
type OpenMeteoProvider struct {
	upstream
}

// NewOpenMeteoProvider creates a forecast provider. An empty baseURL uses the
// public Open-Meteo endpoint.
func NewOpenMeteoProvider(cfg HTTPClientConfig, baseURL string) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = openMeteoForecastURL
	}
	return &OpenMeteoProvider{upstream: newUpstream("openmeteo", baseURL, cfg)}
}

type openMeteoPayload struct {
	Timezone         string `json:"timezone"`
	UTCOffsetSeconds int    `json:"utc_offset_seconds"`
	Current          struct {
		Time                string  `json:"time"`
		Temperature         float64 `json:"temperature_2m"`
		RelativeHumidity    float64 `json:"relative_humidity_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		IsDay               int     `json:"is_day"`
		WeatherCode         int     `json:"weather_code"`
		WindSpeed           float64 `json:"wind_speed_10m"`
		WindDirection       float64 `json:"wind_direction_10m"`
	} `json:"current"`
	Hourly struct {
		Time                     []string   `json:"time"`
		Temperature              []*float64 `json:"temperature_2m"`
		WeatherCode              []*int     `json:"weather_code"`
		PrecipitationProbability []*float64 `json:"precipitation_probability"`
	} `json:"hourly"`
	Daily struct {
		Time                        []string   `json:"time"`
		WeatherCode                 []*int     `json:"weather_code"`
		TemperatureMax              []*float64 `json:"temperature_2m_max"`
		TemperatureMin              []*float64 `json:"temperature_2m_min"`
		Sunrise                     []string   `json:"sunrise"`
		Sunset                      []string   `json:"sunset"`
		UVIndexMax                  []*float64 `json:"uv_index_max"`
		PrecipitationProbabilityMax []*float64 `json:"precipitation_probability_max"`
	} `json:"daily"`
}

func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, lat, lon float64) (weather.Forecast, error) {
	values := url.Values{}
	values.Set("latitude", formatCoord(lat))
	values.Set("longitude", formatCoord(lon))
	values.Set("current", openMeteoCurrent)
	values.Set("hourly", openMeteoHourly)
	values.Set("daily", openMeteoDaily)
	values.Set("timezone", "auto")

	var payload openMeteoPayload
	if err := p.getJSON(ctx, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), &payload); err != nil {
		return weather.Forecast{}, err
	}
	return payload.toForecast()
}

func (payload openMeteoPayload) toForecast() (weather.Forecast, error) {
	loc := openMeteoLocation(payload.Timezone, payload.UTCOffsetSeconds)

	observed, err := parseOpenMeteoTime(payload.Current.Time, loc)
	if err != nil {
		return weather.Forecast{}, fmt.Errorf("openmeteo: current time: %w", err)
	}

	fc := weather.Forecast{
		Current: weather.CurrentConditions{
			Temperature:   payload.Current.Temperature,
			FeelsLike:     payload.Current.ApparentTemperature,
			Humidity:      payload.Current.RelativeHumidity,
			WindSpeed:     payload.Current.WindSpeed,
			WindDirection: payload.Current.WindDirection,
			WeatherCode:   payload.Current.WeatherCode,
			IsDay:         payload.Current.IsDay == 1,
			Time:          observed,
		},
	}

	h := payload.Hourly
	if len(h.Temperature) != len(h.Time) || len(h.WeatherCode) != len(h.Time) || len(h.PrecipitationProbability) != len(h.Time) {
		return weather.Forecast{}, fmt.Errorf("openmeteo: hourly series lengths differ")
	}
	for i, raw := range h.Time {
		t, err := parseOpenMeteoTime(raw, loc)
		if err != nil {
			return weather.Forecast{}, fmt.Errorf("openmeteo: hourly time %d: %w", i, err)
		}
		fc.Hourly.Time = append(fc.Hourly.Time, t)
		fc.Hourly.Temperature = append(fc.Hourly.Temperature, floatOrZero(h.Temperature[i]))
		fc.Hourly.WeatherCode = append(fc.Hourly.WeatherCode, intOrZero(h.WeatherCode[i]))
		fc.Hourly.PrecipitationProbability = append(fc.Hourly.PrecipitationProbability, roundOrZero(h.PrecipitationProbability[i]))
	}

	d := payload.Daily
	n := len(d.Time)
	if len(d.WeatherCode) != n || len(d.TemperatureMax) != n || len(d.TemperatureMin) != n ||
		len(d.Sunrise) != n || len(d.Sunset) != n || len(d.UVIndexMax) != n {
		return weather.Forecast{}, fmt.Errorf("openmeteo: daily series lengths differ")
	}
	for i, raw := range d.Time {
		date, err := time.ParseInLocation("2006-01-02", raw, loc)
		if err != nil {
			return weather.Forecast{}, fmt.Errorf("openmeteo: daily date %d: %w", i, err)
		}
		sunrise, err := parseOpenMeteoTime(d.Sunrise[i], loc)
		if err != nil {
			return weather.Forecast{}, fmt.Errorf("openmeteo: sunrise %d: %w", i, err)
		}
		sunset, err := parseOpenMeteoTime(d.Sunset[i], loc)
		if err != nil {
			return weather.Forecast{}, fmt.Errorf("openmeteo: sunset %d: %w", i, err)
		}

		// Older responses may lack the precipitation maximum entirely.
		var rain *float64
		if i < len(d.PrecipitationProbabilityMax) {
			rain = d.PrecipitationProbabilityMax[i]
		}

		fc.Daily.Date = append(fc.Daily.Date, date)
		fc.Daily.WeatherCode = append(fc.Daily.WeatherCode, intOrZero(d.WeatherCode[i]))
		fc.Daily.TempMax = append(fc.Daily.TempMax, floatOrZero(d.TemperatureMax[i]))
		fc.Daily.TempMin = append(fc.Daily.TempMin, floatOrZero(d.TemperatureMin[i]))
		fc.Daily.Sunrise = append(fc.Daily.Sunrise, sunrise)
		fc.Daily.Sunset = append(fc.Daily.Sunset, sunset)
		fc.Daily.UVIndexMax = append(fc.Daily.UVIndexMax, floatOrZero(d.UVIndexMax[i]))
		fc.Daily.PrecipitationProbabilityMax = append(fc.Daily.PrecipitationProbabilityMax, roundOrZero(rain))
	}

	return fc, nil
}

// openMeteoLocation resolves the IANA zone of a payload, falling back to its
// fixed UTC offset when the zone database does not know it.
func openMeteoLocation(timezone string, offsetSeconds int) *time.Location {
	if name := strings.TrimSpace(timezone); name != "" {
		if loc, err := time.LoadLocation(name); err == nil {
			return loc
		}
	}
	if offsetSeconds == 0 {
		return time.UTC
	}
	return time.FixedZone(timezone, offsetSeconds)
}

func parseOpenMeteoTime(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02T15:04", value, loc); err == nil {
		return t, nil
	}
	return time.ParseInLocation(time.RFC3339, value, loc)
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func intOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func roundOrZero(v *float64) int {
	if v == nil {
		return 0
	}
	return int(math.Round(*v))
}
