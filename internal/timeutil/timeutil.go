package timeutil

import (
	"fmt"
	"strings"
	"time"

	// Embedded zone database for images without /usr/share/zoneinfo.
	_ "time/tzdata"
)

// DateLayout defines the canonical date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// DefaultTimezone is used when a query omits one.
const DefaultTimezone = "UTC"

// ParseDate parses a YYYY-MM-DD date string.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(value))
}

// CanonicalTimezone trims tz, substitutes DefaultTimezone when empty and
// checks that the zone database knows it. UTC matches in any case; "Local"
// is rejected because it names the server's zone, not a real one.
func CanonicalTimezone(tz string) (string, error) {
	tz = strings.TrimSpace(tz)
	switch {
	case tz == "":
		return DefaultTimezone, nil
	case strings.EqualFold(tz, DefaultTimezone):
		return DefaultTimezone, nil
	case strings.EqualFold(tz, "Local"):
		return "", fmt.Errorf("unknown timezone %q", tz)
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return "", fmt.Errorf("unknown timezone %q", tz)
	}
	return tz, nil
}
