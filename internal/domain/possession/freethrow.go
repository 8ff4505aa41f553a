package possession

import (
	"regexp"
	"strconv"

	"github.com/riskibarqy/possession-tracker/internal/domain/pbp"
)

var freeThrowAttemptRegex = regexp.MustCompile(`(?i)\b(\d)\s+of\s+(\d)\b`)

// FreeThrowAttempt is the "N of M" position of a free throw within its trip.
type FreeThrowAttempt struct {
	Number int
	Total  int
}

// Final reports whether this is the last attempt of the trip.
func (a FreeThrowAttempt) Final() bool {
	return a.Total > 0 && a.Number == a.Total
}

// ParseFreeThrowAttempt reads the attempt counter from the description.
// ok is false when the counter is missing or inconsistent.
func ParseFreeThrowAttempt(event pbp.Event) (FreeThrowAttempt, bool) {
	matches := freeThrowAttemptRegex.FindAllStringSubmatch(pbp.Describe(event), -1)
	if len(matches) != 1 {
		return FreeThrowAttempt{}, false
	}
	number, errN := strconv.Atoi(matches[0][1])
	total, errT := strconv.Atoi(matches[0][2])
	if errN != nil || errT != nil || number < 1 || total < 1 || number > total {
		return FreeThrowAttempt{}, false
	}
	return FreeThrowAttempt{Number: number, Total: total}, true
}
