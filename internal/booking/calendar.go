package booking

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

const day = 24 * time.Hour

// DateOf drops the time-of-day, keeping the calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate reads a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: malformed date %q (want YYYY-MM-DD)", ErrInvalidRange, s)
	}
	return t, nil
}

func FormatDate(t time.Time) string { return t.Format(dateLayout) }

// NightsBetween is the ceiling of the absolute day difference between two dates.
// Callers reject equal or inverted ranges before calling it.
func NightsBetween(checkIn, checkOut time.Time) int {
	diff := checkOut.Sub(checkIn)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(float64(diff) / float64(day)))
}

// Stay is a check-in/check-out pair of calendar dates.
type Stay struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewStay normalises both dates and rejects a check-out that is not after check-in.
func NewStay(checkIn, checkOut time.Time) (Stay, error) {
	s := Stay{CheckIn: DateOf(checkIn), CheckOut: DateOf(checkOut)}
	if checkIn.IsZero() || checkOut.IsZero() {
		return Stay{}, fmt.Errorf("%w: check-in and check-out are required", ErrInvalidRange)
	}
	if !s.CheckOut.After(s.CheckIn) {
		return Stay{}, fmt.Errorf("%w: check-out %s must be after check-in %s",
			ErrInvalidRange, FormatDate(s.CheckOut), FormatDate(s.CheckIn))
	}
	return s, nil
}

// ParseStay parses both dates and validates the range.
func ParseStay(checkIn, checkOut string) (Stay, error) {
	in, err := ParseDate(checkIn)
	if err != nil {
		return Stay{}, err
	}
	out, err := ParseDate(checkOut)
	if err != nil {
		return Stay{}, err
	}
	return NewStay(in, out)
}

func (s Stay) Nights() int { return NightsBetween(s.CheckIn, s.CheckOut) }

func (s Stay) Equal(o Stay) bool {
	return s.CheckIn.Equal(o.CheckIn) && s.CheckOut.Equal(o.CheckOut)
}

func (s Stay) String() string {
	return FormatDate(s.CheckIn) + ".." + FormatDate(s.CheckOut)
}

// within reports whether d lies in [from, to], both ends inclusive.
func within(d, from, to time.Time) bool {
	return !d.Before(from) && !d.After(to)
}
