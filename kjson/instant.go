package kjson

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Instants are absolute points in time stored as signed 64-bit nanoseconds
// since the Unix epoch, always UTC. The representable range is roughly
// 1678-01-01 through 2261-12-31.

const (
	nanosPerSecond = int64(time.Second)
	nanosPerMinute = int64(time.Minute)
	nanosPerHour   = int64(time.Hour)
	nanosPerDay    = 24 * nanosPerHour
)

// instantLayouts are tried in order; all but the date-only form accept an
// explicit offset, which is converted to UTC.
var instantLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseInstantText parses an ISO-8601 instant into epoch nanoseconds.
func parseInstantText(s string) (int64, error) {
	for _, layout := range instantLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		// UnixNano is only defined inside the int64 nanosecond range.
		if y := t.Year(); y < 1678 || y > 2261 {
			return 0, fmt.Errorf("kjson: instant %q outside nanosecond range", s)
		}
		return t.UnixNano(), nil
	}
	return 0, fmt.Errorf("kjson: invalid instant %q", s)
}

// formatInstant renders epoch nanoseconds as ISO-8601 with trailing Z.
// Whole seconds carry no fractional part; otherwise all nine digits are
// emitted so sub-second precision is never silently truncated.
func formatInstant(nanos int64) string {
	t := time.Unix(0, nanos).UTC()
	if nanos%nanosPerSecond == 0 {
		return t.Format("2006-01-02T15:04:05Z")
	}
	return t.Format("2006-01-02T15:04:05.000000000Z07:00")
}

// durationRe matches the accepted ISO-8601 duration subset:
// P[nD][T[nH][nM][n[.fff]S]], optionally preceded by a minus sign.
var durationRe = regexp.MustCompile(
	`^(-)?P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)(?:\.(\d+))?S)?)?$`)

// parseDurationText parses an ISO-8601 duration into signed nanoseconds.
func parseDurationText(s string) (int64, error) {
	m := durationRe.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("kjson: invalid duration %q", s)
	}
	if m[2] == "" && m[3] == "" && m[4] == "" && m[5] == "" {
		// Bare "P", "PT", or "-PT" carry no components.
		return 0, fmt.Errorf("kjson: empty duration %q", s)
	}

	// Accumulate the magnitude unsigned so the negative range's extra
	// nanosecond is representable.
	neg := m[1] == "-"
	limit := uint64(math.MaxInt64)
	if neg {
		limit++
	}

	var total uint64
	add := func(digits string, scale uint64) error {
		if digits == "" {
			return nil
		}
		n, err := strconv.ParseUint(digits, 10, 64)
		if err != nil || (n != 0 && n > limit/scale) {
			return fmt.Errorf("kjson: duration overflow in %q", s)
		}
		n *= scale
		if total > limit-n {
			return fmt.Errorf("kjson: duration overflow in %q", s)
		}
		total += n
		return nil
	}

	if err := add(m[2], uint64(nanosPerDay)); err != nil {
		return 0, err
	}
	if err := add(m[3], uint64(nanosPerHour)); err != nil {
		return 0, err
	}
	if err := add(m[4], uint64(nanosPerMinute)); err != nil {
		return 0, err
	}
	if err := add(m[5], uint64(nanosPerSecond)); err != nil {
		return 0, err
	}
	if frac := m[6]; frac != "" {
		if len(frac) > 9 {
			frac = frac[:9]
		}
		if err := add(frac+strings.Repeat("0", 9-len(frac)), 1); err != nil {
			return 0, err
		}
	}

	if neg {
		return -int64(total), nil
	}
	return int64(total), nil
}

// formatDuration renders signed nanoseconds in ISO-8601 duration form.
// Zero is "PT0S"; negative durations carry a leading minus.
func formatDuration(nanos int64) string {
	var b strings.Builder
	n := nanos
	if n < 0 {
		b.WriteByte('-')
		// MinInt64 would overflow plain negation; peel one nanosecond off
		// and restore it in the fraction below.
		if n == math.MinInt64 {
			n = math.MaxInt64
			return formatDurationParts(&b, n/nanosPerSecond, int(n%nanosPerSecond)+1)
		}
		n = -n
	}
	return formatDurationParts(&b, n/nanosPerSecond, int(n%nanosPerSecond))
}

func formatDurationParts(b *strings.Builder, secs int64, frac int) string {
	days := secs / 86400
	secs %= 86400
	hours := secs / 3600
	secs %= 3600
	mins := secs / 60
	secs %= 60

	b.WriteByte('P')
	if days > 0 {
		fmt.Fprintf(b, "%dD", days)
	}
	if hours > 0 || mins > 0 || secs > 0 || frac > 0 || days == 0 {
		b.WriteByte('T')
		if hours > 0 {
			fmt.Fprintf(b, "%dH", hours)
		}
		if mins > 0 {
			fmt.Fprintf(b, "%dM", mins)
		}
		if frac > 0 {
			fracStr := strings.TrimRight(fmt.Sprintf("%09d", frac), "0")
			fmt.Fprintf(b, "%d.%sS", secs, fracStr)
		} else if secs > 0 || (hours == 0 && mins == 0 && days == 0) {
			fmt.Fprintf(b, "%dS", secs)
		}
	}
	return b.String()
}
