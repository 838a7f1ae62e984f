// internal/calendar/calendar.go
package calendar

import (
	"fmt"
	"strings"
	"time"
)

// Day is the length of a calendar day away from daylight saving transitions.
const Day = 24 * time.Hour

// maxProbes bounds the forward scan in NextBusinessDay. A week always
// contains every weekday once.
const maxProbes = 7

// WeekdayCode is an abbreviated English weekday label, Mon..Sun.
type WeekdayCode string

const (
	Mon WeekdayCode = "Mon"
	Tue WeekdayCode = "Tue"
	Wed WeekdayCode = "Wed"
	Thu WeekdayCode = "Thu"
	Fri WeekdayCode = "Fri"
	Sat WeekdayCode = "Sat"
	Sun WeekdayCode = "Sun"
)

// AllWeekdays lists codes in ISO order (Monday first).
var AllWeekdays = []WeekdayCode{Mon, Tue, Wed, Thu, Fri, Sat, Sun}

// CodeOf returns the code for a time.Weekday.
func CodeOf(d time.Weekday) WeekdayCode {
	return WeekdayCode(d.String()[:3])
}

// ParseWeekdayCode accepts "mon", "Mon", "monday" and similar.
func ParseWeekdayCode(s string) (WeekdayCode, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, c := range AllWeekdays {
		if v == strings.ToLower(string(c)) || v == strings.ToLower(fullName(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown weekday code %q", s)
}

// ParseWeekdayCodes parses a list of codes, dropping blanks and duplicates.
func ParseWeekdayCodes(values []string) ([]WeekdayCode, error) {
	out := make([]WeekdayCode, 0, len(values))
	seen := make(map[WeekdayCode]bool, len(values))
	for _, raw := range values {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		c, err := ParseWeekdayCode(raw)
		if err != nil {
			return nil, err
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, nil
}

func fullName(c WeekdayCode) string {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if CodeOf(d) == c {
			return d.String()
		}
	}
	return string(c)
}

// Calendar evaluates weekdays in a fixed location and knows which weekdays
// are non-business days.
type Calendar struct {
	loc     *time.Location
	weekend map[WeekdayCode]bool
}

// New builds a Calendar. A nil location means UTC.
func New(loc *time.Location, weekend ...WeekdayCode) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	w := make(map[WeekdayCode]bool, len(weekend))
	for _, c := range weekend {
		w[c] = true
	}
	return &Calendar{loc: loc, weekend: w}
}

// Location returns the calendar's fixed timezone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Weekend returns the weekend codes in ISO order.
func (c *Calendar) Weekend() []WeekdayCode {
	out := make([]WeekdayCode, 0, len(c.weekend))
	for _, d := range AllWeekdays {
		if c.weekend[d] {
			out = append(out, d)
		}
	}
	return out
}

// CurrentWeekday returns the weekday code of now in the calendar location.
func (c *Calendar) CurrentWeekday(now time.Time) WeekdayCode {
	return CodeOf(now.In(c.loc).Weekday())
}

// IsWeekend reports whether t falls on a weekend day in the calendar location.
func (c *Calendar) IsWeekend(t time.Time) bool {
	return c.weekend[c.CurrentWeekday(t)]
}

// AddDays shifts t by n calendar days in the calendar location, keeping the
// local clock time, and normalizes to UTC. Without daylight saving in the
// location this is exactly n*24h.
func (c *Calendar) AddDays(t time.Time, n int) time.Time {
	return t.In(c.loc).AddDate(0, 0, n).UTC()
}

// NextBusinessDay returns the first instant t+1d..t+7d that is not on a
// weekend day. If every weekday is a weekend day it falls back to t+1d.
func (c *Calendar) NextBusinessDay(t time.Time) time.Time {
	for i := 1; i <= maxProbes; i++ {
		candidate := c.AddDays(t, i)
		if !c.IsWeekend(candidate) {
			return candidate
		}
	}
	return c.AddDays(t, 1)
}

// AddDaysISO is AddDays over RFC 3339 strings.
func (c *Calendar) AddDaysISO(iso string, n int) (string, error) {
	t, err := time.Parse(time.RFC3339Nano, iso)
	if err != nil {
		return "", fmt.Errorf("invalid timestamp %q: %w", iso, err)
	}
	return c.AddDays(t, n).Format(time.RFC3339), nil
}

// NextBusinessDayISO is NextBusinessDay over RFC 3339 strings.
func (c *Calendar) NextBusinessDayISO(iso string) (string, error) {
	t, err := time.Parse(time.RFC3339Nano, iso)
	if err != nil {
		return "", fmt.Errorf("invalid timestamp %q: %w", iso, err)
	}
	return c.NextBusinessDay(t).Format(time.RFC3339), nil
}
