package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/bstrong/door-access/internal/domain"
)

var testDurations = map[string]time.Duration{
	"weekend warrior":        48 * time.Hour,
	"1 week pass":            7 * 24 * time.Hour,
	"1 month gym membership": 30 * 24 * time.Hour,
	"day pass":               0,
}

func facility(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestAccessWindowStartsSameDayBeforeClose(t *testing.T) {
	loc := facility(t)
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, loc)

	start, _, err := domain.AccessWindow(now, loc, "1 month gym membership", testDurations)
	if err != nil {
		t.Fatalf("AccessWindow: %v", err)
	}

	want := time.Date(2026, 6, 1, 4, 0, 0, 0, loc)
	if !start.Equal(want) {
		t.Fatalf("start = %v, want %v", start, want)
	}
	if start.Location() != time.UTC {
		t.Fatalf("start not in UTC: %v", start.Location())
	}
}

func TestAccessWindowRollsToTomorrowAfterClose(t *testing.T) {
	loc := facility(t)
	now := time.Date(2026, 6, 1, 22, 30, 0, 0, loc)

	start, end, err := domain.AccessWindow(now, loc, "day pass", testDurations)
	if err != nil {
		t.Fatalf("AccessWindow: %v", err)
	}

	wantStart := time.Date(2026, 6, 2, 4, 0, 0, 0, loc)
	wantEnd := time.Date(2026, 6, 2, 22, 0, 0, 0, loc)
	if !start.Equal(wantStart) {
		t.Fatalf("start = %v, want %v", start, wantStart)
	}
	if !end.Equal(wantEnd) {
		t.Fatalf("end = %v, want %v", end, wantEnd)
	}
}

func TestAccessWindowDayPassEndsSameDay(t *testing.T) {
	loc := facility(t)
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, loc)

	// Any label mentioning a day pass gets the single-day window,
	// whatever its exact wording.
	start, end, err := domain.AccessWindow(now, loc, "Day Pass (not a class) - 4am-10pm for one individual, for one calendar day.", testDurations)
	if err != nil {
		t.Fatalf("AccessWindow: %v", err)
	}

	if !end.Equal(time.Date(2026, 6, 1, 22, 0, 0, 0, loc)) {
		t.Fatalf("end = %v, want same-day close", end)
	}
	if !start.Before(end) {
		t.Fatalf("start %v not before end %v", start, end)
	}
}

func TestAccessWindowSnapsToCloseOnEndDay(t *testing.T) {
	loc := facility(t)
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, loc)

	cases := []struct {
		label   string
		wantDay time.Time
	}{
		{"weekend warrior", time.Date(2026, 6, 3, 22, 0, 0, 0, loc)},
		{"1 week pass", time.Date(2026, 6, 8, 22, 0, 0, 0, loc)},
		{"1 month gym membership", time.Date(2026, 7, 1, 22, 0, 0, 0, loc)},
	}

	for _, tc := range cases {
		_, end, err := domain.AccessWindow(now, loc, tc.label, testDurations)
		if err != nil {
			t.Fatalf("AccessWindow(%q): %v", tc.label, err)
		}
		if !end.Equal(tc.wantDay) {
			t.Errorf("end for %q = %v, want %v", tc.label, end, tc.wantDay)
		}
	}
}

func TestAccessWindowAlwaysEndsAtClose(t *testing.T) {
	loc := facility(t)

	for _, label := range []string{"weekend warrior", "1 week pass", "1 month gym membership", "day pass"} {
		for hour := 0; hour < 24; hour++ {
			now := time.Date(2026, 6, 15, hour, 13, 0, 0, loc)
			start, end, err := domain.AccessWindow(now, loc, label, testDurations)
			if err != nil {
				t.Fatalf("AccessWindow(%q, hour %d): %v", label, hour, err)
			}
			if got := end.In(loc).Hour(); got != 22 {
				t.Fatalf("end hour for %q at %d = %d, want 22", label, hour, got)
			}
			if got := start.In(loc).Hour(); got != 4 {
				t.Fatalf("start hour for %q at %d = %d, want 4", label, hour, got)
			}
			if !end.After(start) {
				t.Fatalf("window inverted for %q at %d: %v .. %v", label, hour, start, end)
			}
		}
	}
}

func TestAccessWindowLabelMatchIsCaseInsensitive(t *testing.T) {
	loc := facility(t)
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, loc)

	_, end, err := domain.AccessWindow(now, loc, "1 Month Gym Membership", testDurations)
	if err != nil {
		t.Fatalf("AccessWindow: %v", err)
	}
	if !end.Equal(time.Date(2026, 7, 1, 22, 0, 0, 0, loc)) {
		t.Fatalf("end = %v", end)
	}
}

func TestAccessWindowUnknownLabelRejected(t *testing.T) {
	loc := facility(t)
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, loc)

	_, _, err := domain.AccessWindow(now, loc, "mystery promo", testDurations)
	if !errors.Is(err, domain.ErrUnknownMembership) {
		t.Fatalf("err = %v, want ErrUnknownMembership", err)
	}
}
