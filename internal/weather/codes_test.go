package weather

import "testing"

func TestClassifyWeatherCodeUnknownFallback(t *testing.T) {
	for _, code := range []int{-1, 4, 52, 99, 1000} {
		if got := ClassifyWeatherCode(code); got != UnknownWeather {
			t.Errorf("code %d: expected Unknown, got %+v", code, got)
		}
	}

	if got := ClassifyWeatherCode(95); got.Label != "Thunderstorm" || got.Icon != IconLightning {
		t.Fatalf("unexpected thunderstorm info: %+v", got)
	}
}

func TestWeatherInfoGradient(t *testing.T) {
	info := ClassifyWeatherCode(0)
	if info.Gradient(ThemeLight) != info.LightGradient {
		t.Fatal("expected light gradient")
	}
	if info.Gradient(ThemeDark) != info.DarkGradient {
		t.Fatal("expected dark gradient")
	}
}

func TestClassifyAQIBoundaries(t *testing.T) {
	cases := map[int]string{
		0:   "Good",
		20:  "Good",
		21:  "Fair",
		40:  "Fair",
		41:  "Moderate",
		60:  "Moderate",
		61:  "Poor",
		80:  "Poor",
		81:  "Very Poor",
		500: "Very Poor",
	}
	for aqi, want := range cases {
		if got := ClassifyAQI(aqi).Label; got != want {
			t.Errorf("aqi %d: expected %s, got %s", aqi, want, got)
		}
	}
}

func TestClassifyAQIIsExhaustive(t *testing.T) {
	labels := map[string]bool{"Good": true, "Fair": true, "Moderate": true, "Poor": true, "Very Poor": true}
	prev := ""
	changes := 0
	for aqi := 0; aqi <= 200; aqi++ {
		label := ClassifyAQI(aqi).Label
		if !labels[label] {
			t.Fatalf("aqi %d: unexpected label %q", aqi, label)
		}
		if label != prev {
			changes++
			prev = label
		}
	}
	// Bands are contiguous: each label appears in one run only.
	if changes != len(labels) {
		t.Fatalf("expected %d contiguous bands, got %d", len(labels), changes)
	}
}

func TestClassifyUVBoundaries(t *testing.T) {
	cases := []struct {
		uv   float64
		want string
	}{
		{0, "Low"},
		{2, "Low"},
		{2.01, "Moderate"},
		{5, "Moderate"},
		{7, "High"},
		{7.01, "Extreme"},
		{11, "Extreme"},
	}
	for _, tc := range cases {
		if got := ClassifyUV(tc.uv).Label; got != tc.want {
			t.Errorf("uv %v: expected %s, got %s", tc.uv, tc.want, got)
		}
	}
}
