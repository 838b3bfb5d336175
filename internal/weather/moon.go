package weather

import "time"

// SynodicMonth is the mean length of a lunar cycle in seconds.
const SynodicMonth int64 = 2551443

// referenceNewMoon is a known new moon used as the phase origin.
var referenceNewMoon = time.Date(1970, time.January, 7, 20, 35, 0, 0, time.UTC)

// MoonPhase is one of the eight named phases of the lunar cycle.
type MoonPhase int

const (
	NewMoon MoonPhase = iota
	WaxingCrescent
	FirstQuarter
	WaxingGibbous
	FullMoon
	WaningGibbous
	LastQuarter
	WaningCrescent
)

var moonPhaseNames = [...]string{
	"New Moon",
	"Waxing Crescent",
	"First Quarter",
	"Waxing Gibbous",
	"Full Moon",
	"Waning Gibbous",
	"Last Quarter",
	"Waning Crescent",
}

func (p MoonPhase) String() string {
	if p < 0 || int(p) >= len(moonPhaseNames) {
		return "Unknown"
	}
	return moonPhaseNames[p]
}

// MarshalText renders the phase by name in JSON.
func (p MoonPhase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// CalculateMoonPhase returns the phase of the moon at t.
// Instants before the reference new moon are handled by normalizing the
// remainder into [0, SynodicMonth).
func CalculateMoonPhase(t time.Time) MoonPhase {
	elapsed := t.Unix() - referenceNewMoon.Unix()
	rem := ((elapsed % SynodicMonth) + SynodicMonth) % SynodicMonth

	phase := float64(rem) + float64(t.Nanosecond())/1e9
	bucket := int(phase*8/float64(SynodicMonth)) % 8
	return MoonPhase(bucket)
}
