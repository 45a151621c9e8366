package events

import (
	"strings"
	"time"
)

var units = map[byte]time.Duration{
	's': time.Second,
	'm': time.Minute,
	'h': time.Hour,
	'd': 24 * time.Hour,
	'y': 365 * 24 * time.Hour,
}

// ParseLastSeen turns a "Last Seen" cell into an instant. Relative ages as the
// API server renders them ("45s", "5m10s", "2d4h", "1y30d") are subtracted
// from now; RFC 3339 timestamps are taken as is. Anything else ("<unknown>")
// yields the zero time so it sorts first. Repeated events carry a suffix
// ("2m (x3 over 10m)"); only the leading value is parsed.
func ParseLastSeen(s string, now time.Time) time.Time {
	s, _, _ = strings.Cut(strings.TrimSpace(s), " ")
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if age, ok := parseAge(s); ok {
		return now.Add(-age)
	}
	return time.Time{}
}

func parseAge(s string) (time.Duration, bool) {
	if s == "" {
		return 0, false
	}

	var total time.Duration
	var n int64
	digits := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			n = n*10 + int64(c-'0')
			digits++
			continue
		}
		unit, ok := units[c]
		if !ok || digits == 0 {
			return 0, false
		}
		total += time.Duration(n) * unit
		n, digits = 0, 0
	}
	if digits != 0 {
		return 0, false
	}
	return total, true
}
