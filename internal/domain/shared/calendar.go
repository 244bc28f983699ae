package shared

import (
	"fmt"
	"sync/atomic"
	"time"
)

// DefaultBusinessTimezone is the zone "today" is evaluated in unless configured otherwise.
const DefaultBusinessTimezone = "America/Argentina/Buenos_Aires"

// ISODate is the wire layout for calendar dates.
const ISODate = "2006-01-02"

var businessLocation atomic.Pointer[time.Location]

// SetBusinessLocation sets the zone used by Today. A nil loc resets to UTC.
func SetBusinessLocation(loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	businessLocation.Store(loc)
}

// LoadBusinessLocation resolves name and installs it as the business zone.
func LoadBusinessLocation(name string) (*time.Location, error) {
	if name == "" {
		name = DefaultBusinessTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	SetBusinessLocation(loc)
	return loc, nil
}

// BusinessLocation returns the configured business zone.
func BusinessLocation() *time.Location {
	if loc := businessLocation.Load(); loc != nil {
		return loc
	}
	return time.UTC
}

// Today returns the current calendar date in the business zone.
func Today() time.Time {
	return DateOf(time.Now().In(BusinessLocation()))
}

// DateOf truncates t to its calendar date, expressed as midnight UTC.
// Calendar dates are stored and compared in this normalized form.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DatePtr normalizes an optional date.
func DatePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := DateOf(*t)
	return &d
}

// NewDate builds a calendar date and rejects days that do not exist
// in the given month (31/02 does not roll over into March).
func NewDate(year, month, day int) (time.Time, error) {
	if month < 1 || month > 12 {
		return time.Time{}, NewDomainError("INVALID_DATE", "El mes debe estar entre 1 y 12")
	}
	if day < 1 || day > 31 {
		return time.Time{}, NewDomainError("INVALID_DATE", "El día debe estar entre 1 y 31")
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || int(d.Month()) != month {
		return time.Time{}, NewDomainError("INVALID_DATE",
			fmt.Sprintf("La fecha %d/%d/%d no existe", day, month, year))
	}
	return d, nil
}

// DayBounds returns the first and last instant of the calendar day of d.
func DayBounds(d time.Time) (time.Time, time.Time) {
	start := DateOf(d)
	return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// MonthBounds returns the first and last calendar date of a month.
func MonthBounds(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, -1)
}

// FormatDMY renders a date as d/m/yyyy without zero padding.
func FormatDMY(d time.Time) string {
	return fmt.Sprintf("%d/%d/%d", d.Day(), int(d.Month()), d.Year())
}
