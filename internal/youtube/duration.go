package youtube

import (
	"fmt"
	"regexp"
	"strconv"
)

// DurationParts is the structured breakdown of a video duration.
type DurationParts struct {
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// isoDurationRe matches the ISO-8601 durations upstream returns, e.g.
// "PT1H2M3S", "PT45S", "P1DT2H".
var isoDurationRe = regexp.MustCompile(`^P(?:(\d+)D)?T?(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISODuration converts an ISO-8601 duration to whole seconds. Malformed
// input parses to zero; upstream occasionally returns empty durations for
// live streams.
func parseISODuration(iso string) int {
	m := isoDurationRe.FindStringSubmatch(iso)
	if m == nil {
		return 0
	}
	days := atoiOrZero(m[1])
	hours := atoiOrZero(m[2])
	minutes := atoiOrZero(m[3])
	seconds := atoiOrZero(m[4])
	return ((days*24+hours)*60+minutes)*60 + seconds
}

// durationParts splits a duration into hours, minutes and seconds.
func durationParts(iso string) *DurationParts {
	total := parseISODuration(iso)
	return &DurationParts{
		Hours:   total / 3600,
		Minutes: (total % 3600) / 60,
		Seconds: total % 60,
	}
}

// readableDuration renders a duration as mm:ss, or hh:mm:ss once it passes
// the hour mark.
func readableDuration(iso string) string {
	p := durationParts(iso)
	if p.Hours == 0 {
		return fmt.Sprintf("%02d:%02d", p.Minutes, p.Seconds)
	}
	return fmt.Sprintf("%02d:%02d:%02d", p.Hours, p.Minutes, p.Seconds)
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
