package domain

import (
	"strconv"
	"strings"
	"time"
)

// LogQuery filters a user's exercises.
type LogQuery struct {
	UserID string
	From   *time.Time
	To     *time.Time
	// Limit bounds the result count; zero means unbounded.
	Limit int
}

// NewLogQuery builds a LogQuery from raw query parameters. Bounds and limits
// that fail to parse are dropped rather than rejected.
func NewLogQuery(userID, from, to, limit string) LogQuery {
	q := LogQuery{UserID: userID}
	if parsed, ok := ParseDate(from); ok {
		q.From = &parsed
	}
	if parsed, ok := ParseDate(to); ok {
		q.To = &parsed
	}
	if n, err := strconv.Atoi(strings.TrimSpace(limit)); err == nil && n > 0 {
		q.Limit = n
	}
	return q
}

// Bounded reports whether the query restricts the date range.
func (q LogQuery) Bounded() bool {
	return q.From != nil || q.To != nil
}

// Matches reports whether e satisfies the query's user and date filters.
// Exercises with an invalid date never satisfy a date bound.
func (q LogQuery) Matches(e Exercise) bool {
	if e.UserID != q.UserID {
		return false
	}
	if !q.Bounded() {
		return true
	}
	if e.Date == nil {
		return false
	}
	if q.From != nil && e.Date.Before(*q.From) {
		return false
	}
	if q.To != nil && e.Date.After(*q.To) {
		return false
	}
	return true
}
