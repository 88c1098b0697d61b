package analyzer

import (
	"net/http"
	"strings"
	"time"
)

// Freshness is the age bucket of a posting, derived once per analysis.
type Freshness string

const (
	FreshnessFresh   Freshness = "fresh"
	FreshnessAging   Freshness = "aging"
	FreshnessStale   Freshness = "stale"
	FreshnessMissing Freshness = "missing"
)

// Bucket boundaries in whole days, inclusive.
const (
	FreshMaxDays = 45
	AgingMaxDays = 90
)

// Scores per bucket. Clients key their labels off these exact values.
const (
	ScoreFresh = 85
	ScoreAging = 55
	ScoreOther = 25
)

const day = 24 * time.Hour

// lastModifiedLayouts are tried after http.ParseTime. Origins in the wild send
// numeric zones, ISO timestamps and bare dates in Last-Modified.
var lastModifiedLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseLastModified parses a Last-Modified header value. ok is false when the
// header is empty or no known layout matches.
func ParseLastModified(value string) (t time.Time, ok bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	if t, err := http.ParseTime(value); err == nil {
		return t, true
	}
	for _, layout := range lastModifiedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DaysOld returns the whole days elapsed from detected to now, rounded toward
// negative infinity. A date in the future yields a negative count.
func DaysOld(now, detected time.Time) int {
	d := now.Sub(detected)
	days := d / day
	if d < 0 && d%day != 0 {
		days--
	}
	return int(days)
}

// FreshnessBucket maps an age in days to its bucket; nil means no date was detected.
func FreshnessBucket(daysOld *int) Freshness {
	switch {
	case daysOld == nil:
		return FreshnessMissing
	case *daysOld <= FreshMaxDays:
		return FreshnessFresh
	case *daysOld <= AgingMaxDays:
		return FreshnessAging
	default:
		return FreshnessStale
	}
}

// ScoreFor is a lookup, not a formula: stale and missing share the floor score.
func ScoreFor(f Freshness) int {
	switch f {
	case FreshnessFresh:
		return ScoreFresh
	case FreshnessAging:
		return ScoreAging
	default:
		return ScoreOther
	}
}

// Label returns the result band clients show next to a score.
func Label(score int) string {
	switch {
	case score >= 75:
		return "Likely Active"
	case score >= 55:
		return "Possibly Active"
	case score >= 40:
		return "Uncertain"
	default:
		return "Likely Ghost"
	}
}
