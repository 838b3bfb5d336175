package weather

// Icon is the visual kind associated with a weather code or tip.
type Icon string

const (
	IconSun       Icon = "sun"
	IconCloud     Icon = "cloud"
	IconFog       Icon = "cloud-fog"
	IconDrizzle   Icon = "cloud-drizzle"
	IconRain      Icon = "cloud-rain"
	IconSnow      Icon = "cloud-snow"
	IconLightning Icon = "cloud-lightning"
	IconWind      Icon = "wind"
)

// WeatherInfo is the UI classification of a WMO weather code.
type WeatherInfo struct {
	Label         string `json:"label"`
	Icon          Icon   `json:"icon"`
	LightGradient string `json:"lightGradient"`
	DarkGradient  string `json:"darkGradient"`
}

// Gradient returns the background gradient for the given theme.
func (w WeatherInfo) Gradient(theme Theme) string {
	if theme == ThemeDark {
		return w.DarkGradient
	}
	return w.LightGradient
}

// UnknownWeather is returned for codes missing from the table.
var UnknownWeather = WeatherInfo{
	Label:         "Unknown",
	Icon:          IconWind,
	LightGradient: "from-gray-400 to-gray-600",
	DarkGradient:  "from-gray-800 to-slate-950",
}

var weatherCodes = map[int]WeatherInfo{
	0:  {Label: "Clear Sky", Icon: IconSun, LightGradient: "from-blue-400 to-blue-600", DarkGradient: "from-blue-900 to-slate-900"},
	1:  {Label: "Mainly Clear", Icon: IconSun, LightGradient: "from-blue-300 to-blue-500", DarkGradient: "from-blue-800 to-slate-900"},
	2:  {Label: "Partly Cloudy", Icon: IconCloud, LightGradient: "from-blue-400 to-gray-400", DarkGradient: "from-slate-700 to-slate-900"},
	3:  {Label: "Overcast", Icon: IconCloud, LightGradient: "from-gray-400 to-gray-600", DarkGradient: "from-gray-800 to-slate-950"},
	45: {Label: "Foggy", Icon: IconFog, LightGradient: "from-gray-300 to-gray-500", DarkGradient: "from-gray-900 to-slate-900"},
	48: {Label: "Rime Fog", Icon: IconFog, LightGradient: "from-gray-300 to-gray-500", DarkGradient: "from-gray-900 to-slate-900"},
	51: {Label: "Light Drizzle", Icon: IconDrizzle, LightGradient: "from-blue-400 to-indigo-500", DarkGradient: "from-indigo-900 to-slate-950"},
	61: {Label: "Slight Rain", Icon: IconRain, LightGradient: "from-blue-500 to-indigo-600", DarkGradient: "from-blue-900 to-indigo-950"},
	63: {Label: "Rain", Icon: IconRain, LightGradient: "from-blue-600 to-indigo-700", DarkGradient: "from-blue-950 to-indigo-950"},
	71: {Label: "Slight Snow", Icon: IconSnow, LightGradient: "from-blue-100 to-gray-300", DarkGradient: "from-slate-600 to-slate-900"},
	80: {Label: "Rain Showers", Icon: IconRain, LightGradient: "from-blue-600 to-indigo-800", DarkGradient: "from-indigo-950 to-slate-950"},
	95: {Label: "Thunderstorm", Icon: IconLightning, LightGradient: "from-indigo-700 to-purple-900", DarkGradient: "from-indigo-950 to-purple-950"},
}

// ClassifyWeatherCode maps a WMO code to its label, icon and gradients.
func ClassifyWeatherCode(code int) WeatherInfo {
	if info, ok := weatherCodes[code]; ok {
		return info
	}
	return UnknownWeather
}

// AQIInfo is the band of a European AQI value.
type AQIInfo struct {
	Label       string `json:"label"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// ClassifyAQI bands a European AQI value. Upper bounds are inclusive.
func ClassifyAQI(aqi int) AQIInfo {
	switch {
	case aqi <= 20:
		return AQIInfo{Label: "Good", Color: "text-emerald-400", Description: "Air is fresh."}
	case aqi <= 40:
		return AQIInfo{Label: "Fair", Color: "text-green-400", Description: "Acceptable quality."}
	case aqi <= 60:
		return AQIInfo{Label: "Moderate", Color: "text-yellow-400", Description: "Moderate pollution."}
	case aqi <= 80:
		return AQIInfo{Label: "Poor", Color: "text-orange-400", Description: "Sensitive groups watch out."}
	default:
		return AQIInfo{Label: "Very Poor", Color: "text-red-400", Description: "Health warning issued."}
	}
}

// UVInfo is the band of a UV index value.
type UVInfo struct {
	Label string `json:"label"`
	Color string `json:"color"`
	Risk  string `json:"risk"`
}

// ClassifyUV bands a UV index. Upper bounds are inclusive.
func ClassifyUV(uv float64) UVInfo {
	switch {
	case uv <= 2:
		return UVInfo{Label: "Low", Color: "text-emerald-400", Risk: "Low risk."}
	case uv <= 5:
		return UVInfo{Label: "Moderate", Color: "text-yellow-400", Risk: "Sunscreen needed."}
	case uv <= 7:
		return UVInfo{Label: "High", Color: "text-orange-400", Risk: "Seek shade."}
	default:
		return UVInfo{Label: "Extreme", Color: "text-red-500", Risk: "Extreme danger."}
	}
}

func isPrecipitating(code int) bool {
	switch code {
	case 51, 53, 55, 61, 63, 65, 80, 81, 82, 95, 96, 99:
		return true
	}
	return false
}

func isSnowing(code int) bool {
	switch code {
	case 71, 73, 75, 77, 85, 86:
		return true
	}
	return false
}

func isClearSky(code int) bool {
	return code == 0 || code == 1
}
