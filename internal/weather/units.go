package weather

import (
	"fmt"
	"math"
	"strings"
)

// Unit is the temperature unit a profile displays.
type Unit string

const (
	Celsius    Unit = "celsius"
	Fahrenheit Unit = "fahrenheit"
)

// Symbol returns the unit letter used after the degree sign.
func (u Unit) Symbol() string {
	if u == Fahrenheit {
		return "F"
	}
	return "C"
}

// ParseUnit accepts "celsius"/"fahrenheit" (or "c"/"f"), case-insensitive.
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "celsius", "c":
		return Celsius, nil
	case "fahrenheit", "f":
		return Fahrenheit, nil
	}
	return "", fmt.Errorf("unknown unit %q", s)
}

// Theme is the colour scheme a profile displays.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// ParseTheme accepts "light" or "dark", case-insensitive.
func ParseTheme(s string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "light":
		return ThemeLight, nil
	case "dark":
		return ThemeDark, nil
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

// ToDisplayTemp converts celsius into unit and rounds half away from zero.
// Rounding happens once, on the converted value.
func ToDisplayTemp(celsius float64, unit Unit) int {
	value := celsius
	if unit == Fahrenheit {
		value = celsius*9/5 + 32
	}
	return int(math.Round(value))
}

// FormatTemp renders a temperature like "21°C".
func FormatTemp(celsius float64, unit Unit) string {
	return fmt.Sprintf("%d°%s", ToDisplayTemp(celsius, unit), unit.Symbol())
}
