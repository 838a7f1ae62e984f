package calendar

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	v, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return v
}

func TestNextBusinessDay_FridaySkipsWeekend(t *testing.T) {
	t.Parallel()
	cal := New(time.UTC, Sat, Sun)

	got := cal.NextBusinessDay(mustTime(t, "2024-03-08T09:00:00Z"))

	assert.Equal(t, "2024-03-11T09:00:00Z", got.Format(time.RFC3339))
}

func TestNextBusinessDayISO(t *testing.T) {
	t.Parallel()
	cal := New(time.UTC, Sat, Sun)

	got, err := cal.NextBusinessDayISO("2024-03-08T09:00:00Z")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-11T09:00:00Z", got)

	_, err = cal.NextBusinessDayISO("not-a-time")
	assert.Error(t, err)
}

func TestNextBusinessDay_UsesCalendarLocation(t *testing.T) {
	t.Parallel()
	tokyo := time.FixedZone("JST", 9*60*60)
	cal := New(tokyo, Sat, Sun)

	// Thursday 20:00 UTC is already Friday 05:00 in Tokyo, so one day later
	// is Saturday there and must be skipped.
	got := cal.NextBusinessDay(mustTime(t, "2024-03-07T20:00:00Z"))

	assert.Equal(t, "2024-03-10T20:00:00Z", got.Format(time.RFC3339))
	assert.Equal(t, Mon, cal.CurrentWeekday(got))
}

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}

func clockOf(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("15:04:05")
}

// sameClockOn is the local clock time of from on the local date of day. A
// clock time skipped by a daylight saving change is normalized by time.Date.
func sameClockOn(from, day time.Time, loc *time.Location) time.Time {
	f, d := from.In(loc), day.In(loc)
	return time.Date(d.Year(), d.Month(), d.Day(), f.Hour(), f.Minute(), f.Second(), f.Nanosecond(), loc)
}

func TestNextBusinessDay_NeverLandsOnWeekend(t *testing.T) {
	t.Parallel()
	zones := []*time.Location{
		time.UTC,
		time.FixedZone("JST", 9*3600),
		time.FixedZone("PST", -8*3600),
		mustLocation(t, "Europe/Berlin"),
		mustLocation(t, "America/New_York"),
	}
	// Spans the March daylight saving changes in Europe and North America.
	start := mustTime(t, "2024-03-01T00:00:00Z")

	for i := 0; i < len(AllWeekdays); i++ {
		for j := i + 1; j < len(AllWeekdays); j++ {
			for _, loc := range zones {
				cal := New(loc, AllWeekdays[i], AllWeekdays[j])
				for h := 0; h < 35*24; h += 5 {
					in := start.Add(time.Duration(h) * time.Hour)
					out := cal.NextBusinessDay(in)
					if cal.IsWeekend(out) {
						t.Fatalf("weekend %v/%v in %s: %s -> %s is a weekend day", AllWeekdays[i], AllWeekdays[j], loc, in, out)
					}
					if !out.After(in) {
						t.Fatalf("%s -> %s did not advance", in, out)
					}
					if !out.Equal(sameClockOn(in, out, loc)) {
						t.Fatalf("%s -> %s changed the local time of day in %s", in, out, loc)
					}
				}
			}
		}
	}
}

func TestNextBusinessDay_AllDaysWeekendFallsBack(t *testing.T) {
	t.Parallel()
	cal := New(time.UTC, AllWeekdays...)
	in := mustTime(t, "2024-03-08T09:00:00Z")

	assert.Equal(t, cal.AddDays(in, 1), cal.NextBusinessDay(in))
}

func TestAddDays_WeeklyPeriodicity(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		loc  *time.Location
		in   string
	}{
		{name: "half hour offset", loc: time.FixedZone("X", -3*3600+1800), in: "2024-02-26T23:45:00Z"},
		{name: "berlin across spring forward", loc: mustLocation(t, "Europe/Berlin"), in: "2024-03-20T22:30:00Z"},
		{name: "berlin across fall back", loc: mustLocation(t, "Europe/Berlin"), in: "2024-10-20T21:30:00Z"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cal := New(tt.loc)
			in := mustTime(t, tt.in)
			for i := 0; i < 30; i++ {
				ti := in.Add(time.Duration(i) * 7 * time.Hour)
				assert.Equal(t, cal.CurrentWeekday(ti), cal.CurrentWeekday(cal.AddDays(ti, 7)), "from %s", ti)
			}
		})
	}
}

func TestAddDays_KeepsLocalClockAcrossDaylightSaving(t *testing.T) {
	t.Parallel()
	berlin := mustLocation(t, "Europe/Berlin")
	cal := New(berlin, Sat, Sun)

	// Saturday 23:30 CET; a week later is Saturday 23:30 CEST, one hour less of absolute time.
	out := cal.AddDays(time.Date(2024, 3, 30, 23, 30, 0, 0, berlin), 7)
	assert.Equal(t, "2024-04-06T21:30:00Z", out.Format(time.RFC3339))
	assert.Equal(t, Sat, cal.CurrentWeekday(out))

	// Friday 09:00 CET moves to Monday 09:00 CEST.
	next := cal.NextBusinessDay(time.Date(2024, 3, 29, 9, 0, 0, 0, berlin))
	assert.Equal(t, "2024-04-01T07:00:00Z", next.Format(time.RFC3339))
	assert.Equal(t, "09:00:00", clockOf(next, berlin))
}

func TestAddDays_NormalizesToUTC(t *testing.T) {
	t.Parallel()
	cal := New(nil)
	in := time.Date(2024, 3, 30, 10, 0, 0, 0, time.FixedZone("CET", 3600))

	out := cal.AddDays(in, 2)

	assert.Equal(t, time.UTC, out.Location())
	assert.Equal(t, "2024-04-01T09:00:00Z", out.Format(time.RFC3339))

	iso, err := cal.AddDaysISO("2024-03-30T10:00:00+01:00", 2)
	require.NoError(t, err)
	assert.Equal(t, "2024-04-01T09:00:00Z", iso)
}

func TestCurrentWeekday(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		loc  *time.Location
		now  string
		want WeekdayCode
	}{
		{name: "utc friday", loc: time.UTC, now: "2024-03-08T09:00:00Z", want: Fri},
		{name: "tokyo rolls to saturday", loc: time.FixedZone("JST", 9*3600), now: "2024-03-08T18:00:00Z", want: Sat},
		{name: "west coast still sunday", loc: time.FixedZone("PST", -8*3600), now: "2024-03-11T03:00:00Z", want: Sun},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, New(tt.loc).CurrentWeekday(mustTime(t, tt.now)))
		})
	}
}

func TestParseWeekdayCodes(t *testing.T) {
	t.Parallel()
	got, err := ParseWeekdayCodes([]string{"sat", " Sunday ", "", "SAT"})
	require.NoError(t, err)
	assert.Equal(t, []WeekdayCode{Sat, Sun}, got)

	_, err = ParseWeekdayCodes([]string{"Funday"})
	assert.Error(t, err)
}

func TestWeekend_ISOOrder(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []WeekdayCode{Fri, Sat}, New(nil, Sat, Fri).Weekend())
}
