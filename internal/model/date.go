package model

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the storage format for calendar dates.
const DateLayout = "2006-01-02"

// ErrMalformedDate is returned when a stored date cannot be parsed.
var ErrMalformedDate = errors.New("malformed date")

// Date is a calendar date as stored in the record store (YYYY-MM-DD).
// Dates compare correctly as strings, which the store relies on for range filters.
type Date string

// DateOf returns the civil date of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Time parses the date into midnight UTC.
func (d Date) Time() (time.Time, error) {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, string(d))
	}
	return t, nil
}

// AddDays returns the date n days after d. It panics on a malformed date,
// so only call it on dates produced by DateOf or Today.
func (d Date) AddDays(n int) Date {
	t, err := d.Time()
	if err != nil {
		panic(err)
	}
	return DateOf(t.AddDate(0, 0, n))
}

func (d Date) String() string {
	return string(d)
}

// Today returns the civil date of now.
func Today(now time.Time) Date {
	return DateOf(now)
}

// DaysBetween returns the number of whole days from a to b. It is negative
// when b is before a.
func DaysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int((b.Unix() - a.Unix()) / 86400)
}
