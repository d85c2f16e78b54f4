// Package calendar models dates without a time of day and the single clock the
// rest of the service reads "today" from.
package calendar

import (
	"sort"
	"time"
)

// Layout is the wire format for dates.
const Layout = "2006-01-02"

// Clock supplies the current date.
type Clock interface {
	Today() time.Time
}

// SystemClock reads the wall clock in the given location.
type SystemClock struct {
	Location *time.Location
}

// Today returns the current date in the clock's location.
func (c SystemClock) Today() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return Truncate(time.Now().In(loc))
}

// FixedClock always reports the same day. Used in tests and for replaying jobs.
type FixedClock struct {
	Day time.Time
}

// Today returns the fixed day.
func (c FixedClock) Today() time.Time {
	return Truncate(c.Day)
}

// Date builds a normalized date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Truncate drops the time of day, keeping the calendar date as seen in t's location.
func Truncate(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// AddDays moves a date by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	d := Truncate(t)
	return d.AddDate(0, 0, n)
}

// Equal reports whether a and b fall on the same calendar date.
func Equal(a, b time.Time) bool {
	return Truncate(a).Equal(Truncate(b))
}

// EqualPtr compares two optional dates. Two nils are equal.
func EqualPtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Equal(*a, *b)
}

// After reports whether a is a later date than b.
func After(a, b time.Time) bool {
	return Truncate(a).After(Truncate(b))
}

// Before reports whether a is an earlier date than b.
func Before(a, b time.Time) bool {
	return Truncate(a).Before(Truncate(b))
}

// Parse reads a YYYY-MM-DD date.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Truncate(t), nil
}

// Format renders a date as YYYY-MM-DD.
func Format(t time.Time) string {
	return Truncate(t).Format(Layout)
}

// FormatPtr renders an optional date, returning nil for nil.
func FormatPtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := Format(*t)
	return &s
}

// StartOfWeek returns the Monday of t's week.
func StartOfWeek(t time.Time) time.Time {
	d := Truncate(t)
	offset := (int(d.Weekday()) + 6) % 7
	return AddDays(d, -offset)
}

// EndOfWeek returns the Sunday of t's week.
func EndOfWeek(t time.Time) time.Time {
	return AddDays(StartOfWeek(t), 6)
}

// InCurrentWeek reports whether d lies in [today, end of today's week].
func InCurrentWeek(d, today time.Time) bool {
	return !Before(d, today) && !After(d, EndOfWeek(today))
}

// Set is an unordered collection of dates.
type Set map[time.Time]struct{}

// NewSet builds a set from the given dates.
func NewSet(dates ...time.Time) Set {
	s := make(Set, len(dates))
	for _, d := range dates {
		s.Add(d)
	}
	return s
}

// Add inserts d, reporting whether it was absent.
func (s Set) Add(d time.Time) bool {
	key := Truncate(d)
	if _, ok := s[key]; ok {
		return false
	}
	s[key] = struct{}{}
	return true
}

// Remove deletes d, reporting whether it was present.
func (s Set) Remove(d time.Time) bool {
	key := Truncate(d)
	if _, ok := s[key]; !ok {
		return false
	}
	delete(s, key)
	return true
}

// Contains reports whether d is in the set.
func (s Set) Contains(d time.Time) bool {
	_, ok := s[Truncate(d)]
	return ok
}

// Len returns the number of dates in the set.
func (s Set) Len() int {
	return len(s)
}

// Sorted returns the dates in ascending order.
func (s Set) Sorted() []time.Time {
	out := make([]time.Time, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
