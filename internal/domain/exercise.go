package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout renders calendar dates the way clients of the log endpoint expect them.
const DateLayout = "Mon Jan 02 2006"

// InvalidDate is rendered for exercises whose client-supplied date could not be parsed.
const InvalidDate = "Invalid Date"

// User is a registered account that exercises are logged against.
type User struct {
	ID       string
	Username string
}

// Exercise is a single logged workout entry.
type Exercise struct {
	ID          string
	UserID      string
	Description string
	Duration    float64
	// Date is the UTC calendar day of the exercise. Nil marks an invalid date.
	Date      *time.Time
	CreatedAt time.Time
}

// FormattedDate returns the human readable date, or InvalidDate.
func (e Exercise) FormattedDate() string {
	return FormatDate(e.Date)
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"2006-1-2",
	"2006/1/2",
	"1/2/2006",
	DateLayout,
	"Mon Jan 2 2006",
	"Jan 2 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"January 2, 2006",
	"2 January 2006",
	time.RFC1123,
	time.RFC1123Z,
}

// ParseDate parses client supplied text into a UTC calendar day.
// The calendar day is taken as written, so time-of-day and offsets never shift it.
func ParseDate(raw string) (time.Time, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return CalendarDay(parsed), true
		}
	}
	return time.Time{}, false
}

// CalendarDay truncates t to midnight UTC of the day it falls on in its own location.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FormatDate renders d with DateLayout. A nil date renders as InvalidDate.
func FormatDate(d *time.Time) string {
	if d == nil {
		return InvalidDate
	}
	return d.UTC().Format(DateLayout)
}

// ParseDuration coerces the duration field. Empty input coerces to zero.
func ParseDuration(raw string) (float64, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, ErrInvalidDuration
	}
	return parsed, nil
}
