package providers

import (
	"context"
	"fmt"
	"net/url"
)

const openMeteoAirQualityURL = "https://air-quality-api.open-meteo.com/v1/air-quality"

// AirQualityProvider implements weather.AirQualityProvider with the
// Open-Meteo air quality API.
type AirQualityProvider struct {
	upstream
}

// NewAirQualityProvider creates an air quality provider. An empty baseURL uses
// the public endpoint.
func NewAirQualityProvider(cfg HTTPClientConfig, baseURL string) *AirQualityProvider {
	if baseURL == "" {
		baseURL = openMeteoAirQualityURL
	}
	return &AirQualityProvider{upstream: newUpstream("airquality", baseURL, cfg)}
}

// FetchAQI returns the current European AQI, rounded. A null index is 0.
func (p *AirQualityProvider) FetchAQI(ctx context.Context, lat, lon float64) (int, error) {
	values := url.Values{}
	values.Set("latitude", formatCoord(lat))
	values.Set("longitude", formatCoord(lon))
	values.Set("current", "european_aqi")
	values.Set("timezone", "auto")

	var payload struct {
		Current struct {
			EuropeanAQI *float64 `json:"european_aqi"`
		} `json:"current"`
	}
	if err := p.getJSON(ctx, fmt.Sprintf("%s?%s", p.baseURL, values.Encode()), &payload); err != nil {
		return 0, err
	}
	return roundOrZero(payload.Current.EuropeanAQI), nil
}
