package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/i474232898/skycast/internal/weather"
)

const photonURL = "https://photon.komoot.io"

// PhotonGeocoder implements weather.Geocoder with the Komoot Photon API.
type PhotonGeocoder struct {
	upstream
}

// NewPhotonGeocoder creates a geocoder. An empty baseURL uses the public
// Photon instance.
func NewPhotonGeocoder(cfg HTTPClientConfig, baseURL string) *PhotonGeocoder {
	if baseURL == "" {
		baseURL = photonURL
	}
	return &PhotonGeocoder{upstream: newUpstream("photon", strings.TrimRight(baseURL, "/"), cfg)}
}

type photonResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"` // lon, lat
		} `json:"geometry"`
		Properties struct {
			Name    string `json:"name"`
			City    string `json:"city"`
			State   string `json:"state"`
			Country string `json:"country"`
		} `json:"properties"`
	} `json:"features"`
}

// Search returns the best match for text, or nil when there is none.
func (g *PhotonGeocoder) Search(ctx context.Context, text string) (*weather.Location, error) {
	values := url.Values{}
	values.Set("q", text)
	values.Set("limit", "1")

	var resp photonResponse
	if err := g.getJSON(ctx, fmt.Sprintf("%s/api/?%s", g.baseURL, values.Encode()), &resp); err != nil {
		return nil, err
	}
	if len(resp.Features) == 0 {
		return nil, nil
	}

	f := resp.Features[0]
	if len(f.Geometry.Coordinates) < 2 {
		return nil, fmt.Errorf("photon: feature without coordinates")
	}
	return &weather.Location{
		Name:      f.Properties.Name,
		Country:   firstNonEmpty(f.Properties.Country, f.Properties.State, "Unknown"),
		Latitude:  f.Geometry.Coordinates[1],
		Longitude: f.Geometry.Coordinates[0],
	}, nil
}

// Reverse names the place at lat/lon, or returns nil when Photon has nothing.
// The returned location keeps the queried coordinates.
func (g *PhotonGeocoder) Reverse(ctx context.Context, lat, lon float64) (*weather.Location, error) {
	values := url.Values{}
	values.Set("lon", formatCoord(lon))
	values.Set("lat", formatCoord(lat))

	var resp photonResponse
	if err := g.getJSON(ctx, fmt.Sprintf("%s/reverse?%s", g.baseURL, values.Encode()), &resp); err != nil {
		return nil, err
	}
	if len(resp.Features) == 0 {
		return nil, nil
	}

	p := resp.Features[0].Properties
	return &weather.Location{
		Name:      firstNonEmpty(p.Name, p.City, "Current Location"),
		Country:   firstNonEmpty(p.Country, weather.DetectedLocationCountry),
		Latitude:  lat,
		Longitude: lon,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
