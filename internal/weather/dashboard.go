package weather

import (
	"math"
	"time"
)

// Dashboard is a snapshot rendered for one profile: temperatures in the
// profile's unit, classifications resolved and the gradient of its theme.
type Dashboard struct {
	Location    Location      `json:"location"`
	Favorite    bool          `json:"favorite"`
	Unit        Unit          `json:"unit"`
	Theme       Theme         `json:"theme"`
	Current     CurrentView   `json:"current"`
	AirQuality  AQIView       `json:"airQuality"`
	UV          UVView        `json:"uv"`
	Celestial   CelestialView `json:"celestial"`
	Tips        []Tip         `json:"tips"`
	Hourly      []HourlyView  `json:"hourly"`
	Daily       []DailyView   `json:"daily"`
	Favorites   []Location    `json:"favorites"`
	Recents     []Location    `json:"recents"`
	GeneratedAt time.Time     `json:"generatedAt"`
}

type CurrentView struct {
	Temperature   string  `json:"temp"`
	FeelsLike     string  `json:"feelsLike"`
	Humidity      float64 `json:"humidity"`
	WindSpeed     float64 `json:"windSpeed"`
	WindDirection float64 `json:"windDirection"`
	Label         string  `json:"label"`
	Icon          Icon    `json:"icon"`
	Gradient      string  `json:"gradient"`
	IsDay         bool    `json:"isDay"`
}

type AQIView struct {
	AQIInfo
	Value      int     `json:"value"`
	BarPercent float64 `json:"barPercent"`
}

type UVView struct {
	UVInfo
	Value      float64 `json:"value"`
	BarPercent float64 `json:"barPercent"`
}

type CelestialView struct {
	Sunrise     time.Time `json:"sunrise"`
	Sunset      time.Time `json:"sunset"`
	SunProgress float64   `json:"sunProgress"`
	Status      string    `json:"status"`
	MoonPhase   MoonPhase `json:"moonPhase"`
}

type HourlyView struct {
	Time                     time.Time `json:"time"`
	Temperature              int       `json:"temp"`
	PrecipitationProbability int       `json:"rain"`
	Icon                     Icon      `json:"icon"`
}

type DailyView struct {
	Day                      string    `json:"day"`
	Date                     time.Time `json:"date"`
	Max                      string    `json:"max"`
	Min                      string    `json:"min"`
	Label                    string    `json:"label"`
	Icon                     Icon      `json:"icon"`
	PrecipitationProbability int       `json:"rain"`
}

// BuildDashboard renders snap with the settings of a profile at now.
func BuildDashboard(snap Snapshot, settings Settings, now time.Time) Dashboard {
	unit := settings.Unit
	if unit == "" {
		unit = Celsius
	}
	theme := settings.Theme
	if theme == "" {
		theme = ThemeLight
	}

	c := snap.Current
	info := ClassifyWeatherCode(c.WeatherCode)

	d := Dashboard{
		Location: snap.Location,
		Favorite: settings.IsFavorite(snap.Location.Name),
		Unit:     unit,
		Theme:    theme,
		Current: CurrentView{
			Temperature:   FormatTemp(c.Temperature, unit),
			FeelsLike:     FormatTemp(c.FeelsLike, unit),
			Humidity:      c.Humidity,
			WindSpeed:     c.WindSpeed,
			WindDirection: c.WindDirection,
			Label:         info.Label,
			Icon:          info.Icon,
			Gradient:      info.Gradient(theme),
			IsDay:         c.IsDay,
		},
		AirQuality: AQIView{
			AQIInfo:    ClassifyAQI(c.AQI),
			Value:      c.AQI,
			BarPercent: AQIBarPercent(c.AQI),
		},
		UV: UVView{
			UVInfo:     ClassifyUV(c.UVIndex),
			Value:      c.UVIndex,
			BarPercent: UVBarPercent(c.UVIndex),
		},
		Celestial: CelestialView{
			Status:    celestialStatus(c.IsDay),
			MoonPhase: CalculateMoonPhase(now),
		},
		Tips:        GenerateTips(c),
		Hourly:      make([]HourlyView, 0, snap.Hourly.Len()),
		Daily:       make([]DailyView, 0, snap.Daily.Len()),
		Favorites:   settings.Favorites,
		Recents:     settings.Recents,
		GeneratedAt: now.UTC(),
	}

	if snap.Daily.Len() > 0 {
		sr, ss := snap.Daily.Sunrise[0], snap.Daily.Sunset[0]
		d.Celestial.Sunrise = sr
		d.Celestial.Sunset = ss
		d.Celestial.SunProgress = SunProgress(sr, ss, now)
	}

	for i := 0; i < snap.Hourly.Len(); i++ {
		d.Hourly = append(d.Hourly, HourlyView{
			Time:                     snap.Hourly.Time[i],
			Temperature:              ToDisplayTemp(snap.Hourly.Temperature[i], unit),
			PrecipitationProbability: snap.Hourly.PrecipitationProbability[i],
			Icon:                     ClassifyWeatherCode(snap.Hourly.WeatherCode[i]).Icon,
		})
	}

	for i := 0; i < snap.Daily.Len(); i++ {
		day := ClassifyWeatherCode(snap.Daily.WeatherCode[i])
		d.Daily = append(d.Daily, DailyView{
			Day:                      dayLabel(i, snap.Daily.Date[i]),
			Date:                     snap.Daily.Date[i],
			Max:                      FormatTemp(snap.Daily.TempMax[i], unit),
			Min:                      FormatTemp(snap.Daily.TempMin[i], unit),
			Label:                    day.Label,
			Icon:                     day.Icon,
			PrecipitationProbability: snap.Daily.PrecipitationProbabilityMax[i],
		})
	}

	return d
}

// AQIBarPercent scales an AQI value to a 0-100 bar width.
func AQIBarPercent(aqi int) float64 {
	return math.Max(0, math.Min(100, float64(aqi)*1.5))
}

// UVBarPercent scales a UV index to a bar width where 12 is full.
func UVBarPercent(uv float64) float64 {
	return math.Max(0, math.Min(100, uv/12*100))
}

// SunProgress is how far now lies between sunrise and sunset, in percent,
// clamped to 0-100.
func SunProgress(sunrise, sunset, now time.Time) float64 {
	span := sunset.Sub(sunrise)
	if span <= 0 {
		return 0
	}
	p := float64(now.Sub(sunrise)) / float64(span) * 100
	return math.Max(0, math.Min(100, p))
}

func celestialStatus(isDay bool) string {
	if isDay {
		return "Golden Hour"
	}
	return "Starry Night"
}

func dayLabel(i int, date time.Time) string {
	if i == 0 {
		return "Today"
	}
	return date.Format("Mon")
}
