// Package draw defines the weekly draw calendar and the winning-number set
// that governs all tickets assigned to one draw instant.
package draw

import "time"

// Clock abstracts wall-clock access so time-gated behavior stays
// deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Schedule describes the fixed weekly draw slot.
type Schedule struct {
	Weekday  time.Weekday
	Hour     int
	Minute   int
	Location *time.Location
}

// DefaultSchedule is the reference slot: Saturday 12:00 UTC.
func DefaultSchedule() Schedule {
	return Schedule{
		Weekday:  time.Saturday,
		Hour:     12,
		Location: time.UTC,
	}
}

func (s Schedule) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

// Next returns the first occurrence of the draw slot strictly after from.
// A ticket submitted exactly at the draw instant belongs to the following
// draw.
func (s Schedule) Next(from time.Time) time.Time {
	loc := s.location()
	local := from.In(loc)

	candidate := time.Date(local.Year(), local.Month(), local.Day(), s.Hour, s.Minute, 0, 0, loc)
	days := (int(s.Weekday) - int(local.Weekday()) + 7) % 7
	candidate = candidate.AddDate(0, 0, days)
	if !candidate.After(local) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}

// Previous returns the most recent draw instant at or before from.
func (s Schedule) Previous(from time.Time) time.Time {
	return s.Next(from).AddDate(0, 0, -7)
}
