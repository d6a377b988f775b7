// Package dayboundary maps instants to reward day ids. A reward day is a civil calendar day in a
// fixed time zone whose start is shifted from midnight to a cutoff time of the previous evening.
package dayboundary

import (
	"time"

	"github.com/questx-lab/ledger/config"
)

const DayLayout = "2006-01-02"

type Resolver struct {
	loc    *time.Location
	cutoff time.Duration
}

// NewResolver never fails. When the zone cannot be loaded it uses a fixed zone of
// fallbackOffsetMinutes, and UTC if that offset is zero.
func NewResolver(timezone string, cutoffMinutes, fallbackOffsetMinutes int) *Resolver {
	return &Resolver{
		loc:    loadLocation(timezone, fallbackOffsetMinutes),
		cutoff: time.Duration(normalizeCutoff(cutoffMinutes)) * time.Minute,
	}
}

func loadLocation(timezone string, fallbackOffsetMinutes int) *time.Location {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err == nil {
			return loc
		}
	}

	if fallbackOffsetMinutes != 0 {
		return time.FixedZone("fallback", fallbackOffsetMinutes*60)
	}

	return time.UTC
}

func normalizeCutoff(m int) int {
	if m < 0 || m >= 24*60 {
		return 0
	}
	return m
}

func (r *Resolver) Location() *time.Location {
	return r.loc
}

// DayID returns the reward day of t. Instants at or after the cutoff belong to the next
// calendar day. The cutoff is compared as an instant so ids stay monotonic across DST changes.
func (r *Resolver) DayID(t time.Time) string {
	local := t.In(r.loc)
	year, month, day := local.Date()

	if r.cutoff > 0 && !t.Before(r.boundary(year, month, day)) {
		day++
	}

	// time.Date normalizes overflowing days into the next month or year.
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(DayLayout)
}

// boundary is the cutoff instant on the given calendar date.
func (r *Resolver) boundary(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day,
		int(r.cutoff/time.Hour), int((r.cutoff%time.Hour)/time.Minute), 0, 0, r.loc)
}

// DayStart returns the first instant of the reward day dayID.
func (r *Resolver) DayStart(dayID string) (time.Time, error) {
	d, err := time.Parse(DayLayout, dayID)
	if err != nil {
		return time.Time{}, err
	}

	if r.cutoff == 0 {
		return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, r.loc), nil
	}

	prev := d.AddDate(0, 0, -1)
	return r.boundary(prev.Year(), prev.Month(), prev.Day()), nil
}

// PreviousDayID returns the day before dayID in calendar terms.
func PreviousDayID(dayID string) (string, error) {
	return shift(dayID, -1)
}

func NextDayID(dayID string) (string, error) {
	return shift(dayID, 1)
}

func shift(dayID string, days int) (string, error) {
	d, err := time.Parse(DayLayout, dayID)
	if err != nil {
		return "", err
	}

	return d.AddDate(0, 0, days).Format(DayLayout), nil
}

// Season is the month of a reward day, formatted as YYYY-MM.
func Season(dayID string) string {
	if len(dayID) < 7 {
		return dayID
	}
	return dayID[:7]
}

func NewResolverFromConfigs(cfg config.LedgerConfigs) *Resolver {
	return NewResolver(cfg.TimeZone, cfg.CutoffMinutes, cfg.FallbackOffsetMinutes)
}
