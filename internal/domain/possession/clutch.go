package possession

import "math"

const (
	RegulationPeriods  = 4
	ClutchClockSeconds = 300.0
	ClutchMarginPoints = 5
)

// IsOvertime reports whether period is past regulation.
func IsOvertime(period int) bool {
	return period > RegulationPeriods
}

// IsClutch reports the last five minutes of the fourth period or any overtime
// with the score within five points. An unknown margin is never clutch.
func IsClutch(period int, clockSeconds float64, margin int, marginKnown bool) bool {
	if !marginKnown || period < RegulationPeriods {
		return false
	}
	if clockSeconds < 0 || clockSeconds > ClutchClockSeconds {
		return false
	}
	return math.Abs(float64(margin)) <= ClutchMarginPoints
}
