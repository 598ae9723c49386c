package domain

import (
	"errors"
	"strings"
	"time"
)

// Facility hours: doors open 04:00 and close 22:00 local time. Every
// grant starts at open and ends at close on some calendar day.
const (
	facilityOpenHour  = 4
	facilityCloseHour = 22
)

// ErrUnknownMembership is returned for a non-day-pass label missing from
// the configured duration table. Such purchases are rejected rather than
// granted a zero-length window.
var ErrUnknownMembership = errors.New("unknown membership label")

// AccessGrant is the outcome of door-code issuance.
type AccessGrant struct {
	PIN      string
	GuestID  string
	StartsAt time.Time
	EndsAt   time.Time
	Notified bool
}

// AccessWindow computes the validity window for a membership label in the
// facility's local time, returned in UTC.
//
// The window starts at 04:00 local on the current day, rolling to the next
// day once the local clock passes closing time so a late purchase never
// gets a window that started in the past. Day passes end at closing time
// the same day. Everything else ends at closing time on the calendar day
// reached by start plus the configured duration.
func AccessWindow(now time.Time, loc *time.Location, label string, durations map[string]time.Duration) (start, end time.Time, err error) {
	local := now.In(loc)

	day := local
	if local.Hour() >= facilityCloseHour {
		day = local.AddDate(0, 0, 1)
	}

	start = time.Date(day.Year(), day.Month(), day.Day(), facilityOpenHour, 0, 0, 0, loc)

	if IsDayPassLabel(label) {
		end = time.Date(day.Year(), day.Month(), day.Day(), facilityCloseHour, 0, 0, 0, loc)
		return start.UTC(), end.UTC(), nil
	}

	duration, ok := durations[strings.ToLower(label)]
	if !ok {
		return time.Time{}, time.Time{}, ErrUnknownMembership
	}

	nominal := start.Add(duration).In(loc)
	end = time.Date(nominal.Year(), nominal.Month(), nominal.Day(), facilityCloseHour, 0, 0, 0, loc)
	return start.UTC(), end.UTC(), nil
}
