package android

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// timeTokenRe matches one component of a relative-time string, e.g. the
// "8h" in "+2d8h5m20s". The "ms" alternative comes first so milliseconds
// are not misread as minutes.
var timeTokenRe = regexp.MustCompile(`(\d+(?:\.\d+)?)(ms|[dhms])`)

var timeUnits = map[string]time.Duration{
	"d":  24 * time.Hour,
	"h":  time.Hour,
	"m":  time.Minute,
	"s":  time.Second,
	"ms": time.Millisecond,
}

// unit order within a relative-time string: days, hours, minutes,
// seconds, milliseconds
var timeUnitRank = map[string]int{"d": 0, "h": 1, "m": 2, "s": 3, "ms": 4}

// ParseTimeAgo parses app-ops relative-time strings such as "+2d8h5m20s"
// or "+16m12s788ms" into a duration. Every component is optional but they
// must appear in day-to-millisecond order; anything after an out-of-order
// unit is ignored. A string with no recognizable component at all returns
// ErrUnparseableTime, wrapped with the offending input.
func ParseTimeAgo(s string) (time.Duration, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "+")

	var total time.Duration
	matched := false
	lastRank := -1
	for _, tok := range timeTokenRe.FindAllStringSubmatch(trimmed, -1) {
		unit := tok[2]
		rank := timeUnitRank[unit]
		if rank <= lastRank {
			break
		}
		value, err := strconv.ParseFloat(tok[1], 64)
		if err != nil {
			continue
		}
		total += time.Duration(value * float64(timeUnits[unit]))
		matched = true
		lastRank = rank
	}
	if !matched {
		return 0, fmt.Errorf("%w in %q (valid examples: +8h, +2d8h5m20s, +2m4s)", ErrUnparseableTime, s)
	}
	return total, nil
}
