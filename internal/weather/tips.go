package weather

// TipCategory groups tips for presentation.
type TipCategory string

const (
	TipClothing  TipCategory = "clothing"
	TipActivity  TipCategory = "activity"
	TipWarning   TipCategory = "warning"
	TipLifestyle TipCategory = "lifestyle"
)

// Tip icons, in addition to the weather icons.
const (
	IconUmbrella Icon = "umbrella"
	IconHome     Icon = "home"
	IconWaves    Icon = "waves"
	IconShirt    Icon = "shirt"
	IconSparkles Icon = "sparkles"
	IconUtensils Icon = "utensils"
	IconGlasses  Icon = "glasses"
	IconDroplets Icon = "droplets"
	IconBug      Icon = "bug"
)

// Tip is a single advisory derived from current conditions.
type Tip struct {
	Category TipCategory `json:"type"`
	Icon     Icon        `json:"icon"`
	Message  string      `json:"text"`
}

// Humidity below this gets a moisturizer note in cool weather.
const dryAirHumidity = 35

// windyThreshold is in the wind unit of CurrentConditions (km/h).
const windyThreshold = 25

// GenerateTips evaluates the advisory rules against c, in a fixed order.
// Every group runs; the result is empty when nothing applies.
func GenerateTips(c CurrentConditions) []Tip {
	var tips []Tip
	add := func(cat TipCategory, icon Icon, msg string) {
		tips = append(tips, Tip{Category: cat, Icon: icon, Message: msg})
	}

	temp, humidity := c.Temperature, c.Humidity
	raining := isPrecipitating(c.WeatherCode)
	snowing := isSnowing(c.WeatherCode)

	// Precipitation.
	if raining {
		add(TipWarning, IconUmbrella, "Carry an umbrella or raincoat.")
		add(TipLifestyle, IconHome, "Perfect day for indoor activities.")
	} else if snowing {
		add(TipClothing, IconWaves, "Wear waterproof boots and gloves.")
	}

	// Temperature bands.
	switch {
	case temp <= 0:
		add(TipClothing, IconShirt, "Heavy winter gear is a must.")
		add(TipLifestyle, IconSparkles, "Dry air alert! Use moisturizer.")
	case temp <= 12:
		add(TipClothing, IconShirt, "Grab a warm sweater or jacket.")
		if humidity < dryAirHumidity {
			add(TipLifestyle, IconSparkles, "Low humidity. Use moisturizer.")
		}
	case temp <= 22:
		add(TipClothing, IconShirt, "Perfect for light layers.")
	case temp <= 32:
		add(TipClothing, IconShirt, "Wear breathable cotton outfits.")
	case temp > 32:
		add(TipWarning, IconSun, "Extreme heat! Use sun protection.")
		add(TipLifestyle, IconUtensils, "Stay hydrated! Carry a water bottle.")
	}

	// Sun protection.
	if isClearSky(c.WeatherCode) {
		add(TipWarning, IconSun, "UV levels high. Apply sunscreen.")
		add(TipActivity, IconGlasses, "Bright day! Wear your sunglasses.")
	}

	// Laundry.
	if !raining && !snowing {
		if temp > 18 && humidity < 55 {
			add(TipLifestyle, IconShirt, "Great for laundry! Clothes will dry fast.")
		} else if humidity > 75 {
			add(TipLifestyle, IconDroplets, "High humidity. Laundry may stay damp.")
		}
	} else {
		add(TipLifestyle, IconShirt, "Rainy! Avoid washing clothes today.")
	}

	if c.WindSpeed > windyThreshold {
		add(TipWarning, IconWind, "Breezy. Avoid light hats or umbrellas.")
	}

	if temp > 22 && humidity > 70 {
		add(TipLifestyle, IconBug, "Humid & Warm. Use mosquito repellent.")
	}
	if temp > 28 && humidity > 80 {
		add(TipLifestyle, IconUtensils, "Sultry day. Keep extra water handy.")
	}

	return tips
}
