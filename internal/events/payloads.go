// Package events publishes domain events about users and exercises to Kafka.
package events

import "time"

// UserCreated is emitted after a user is registered.
type UserCreated struct {
	UserID     string    `json:"user_id"`
	Username   string    `json:"username"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ExerciseLogged is emitted after an exercise is stored.
type ExerciseLogged struct {
	ExerciseID  string     `json:"exercise_id"`
	UserID      string     `json:"user_id"`
	Username    string     `json:"username"`
	Description string     `json:"description"`
	Duration    float64    `json:"duration"`
	Date        *time.Time `json:"date,omitempty"`
	OccurredAt  time.Time  `json:"occurred_at"`
}
