package sessions

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// AtomLayout always renders a numeric offset, "+00:00" rather than "Z".
const AtomLayout = "2006-01-02T15:04:05-07:00"

const (
	defaultHour   = 9
	defaultMinute = 0
)

// The IMS export is day-first; a generic parser would read 05/03 or 05.03
// as May 3. Both separators of a date must match.
var dayFirstPattern = regexp.MustCompile(`^(\d{1,2})([/.-])(\d{1,2})([/.-])(\d{4})(?:\s+(\d{1,2}):(\d{2}))?$`)

type DateNormalizer struct {
	loc *time.Location
}

func NewDateNormalizer(loc *time.Location) *DateNormalizer {
	return &DateNormalizer{loc: loc}
}

// Parse returns false for empty or unparseable input.
func (d *DateNormalizer) Parse(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if m := dayFirstPattern.FindStringSubmatch(s); m != nil {
		return d.parseDayFirst(m)
	}

	t, err := dateparse.ParseIn(s, d.loc)
	if err != nil {
		return time.Time{}, false
	}

	return t.In(d.loc), true
}

func (d *DateNormalizer) parseDayFirst(m []string) (time.Time, bool) {
	if m[2] != m[4] {
		return time.Time{}, false
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[3])
	year, _ := strconv.Atoi(m[5])

	hour, minute := defaultHour, defaultMinute
	if m[6] != "" {
		hour, _ = strconv.Atoi(m[6])
		minute, _ = strconv.Atoi(m[7])
	}

	if month < 1 || month > 12 || hour > 23 || minute > 59 {
		return time.Time{}, false
	}

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, d.loc)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}

	return t, true
}

func FormatTimestamp(t time.Time) string {
	return t.Format(AtomLayout)
}
