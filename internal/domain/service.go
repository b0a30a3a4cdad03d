// Package domain defines the business logic for the exercise tracker.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrUserNotFound is returned when an exercise is logged against an unknown user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidDuration is returned when the duration cannot be coerced to a number.
	ErrInvalidDuration = errors.New("invalid duration")
	// ErrMalformedID is returned by stores when an id cannot be parsed into the store's id type.
	ErrMalformedID = errors.New("malformed id")
)

// Event types announced after successful writes.
const (
	EventUserCreated    = "user.created"
	EventExerciseLogged = "exercise.logged"
)

// UserRepository captures user persistence. Stores generate ids.
type UserRepository interface {
	CreateUser(ctx context.Context, username string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	// GetUser returns nil, nil when no user has the id.
	GetUser(ctx context.Context, id string) (*User, error)
}

// ExerciseRepository captures exercise persistence. Stores generate ids.
type ExerciseRepository interface {
	CreateExercise(ctx context.Context, exercise Exercise) (*Exercise, error)
	FindExercises(ctx context.Context, query LogQuery) ([]Exercise, error)
}

// Repository is the full persistence capability the service needs.
type Repository interface {
	UserRepository
	ExerciseRepository
	Ping(ctx context.Context) error
}

// EventPublisher announces completed writes to downstream consumers.
type EventPublisher interface {
	PublishUserCreated(ctx context.Context, user User) error
	PublishExerciseLogged(ctx context.Context, user User, exercise Exercise) error
}

// Option customises a Service.
type Option func(*Service)

// WithEventPublisher sets the publisher notified after successful writes.
func WithEventPublisher(p EventPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

// WithLogger sets the logger used for publish failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for default exercise dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// DefaultPublishTimeout bounds a single event publish.
const DefaultPublishTimeout = 2 * time.Second

// WithPublishTimeout bounds how long a write waits on its event publish.
// Non-positive values keep the default.
func WithPublishTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.publishTimeout = d
		}
	}
}

// PublishFailureHook is invoked with the event type whenever publishing fails.
type PublishFailureHook func(eventType string)

// WithPublishFailureHook registers a callback for failed publishes.
func WithPublishFailureHook(hook PublishFailureHook) Option {
	return func(s *Service) {
		s.onPublishFailure = hook
	}
}

// Service orchestrates user and exercise workflows.
type Service struct {
	repo             Repository
	events           EventPublisher
	logger           *zap.Logger
	now              func() time.Time
	onPublishFailure PublishFailureHook
	publishTimeout   time.Duration
}

// NewService constructs a Service.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		events: noopPublisher{},
		logger: zap.NewNop(),
		now:    time.Now,

		publishTimeout: DefaultPublishTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUser registers a new user. Usernames are not required to be unique.
func (s *Service) CreateUser(ctx context.Context, username string) (*User, error) {
	user, err := s.repo.CreateUser(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.publish(ctx, EventUserCreated, func(ctx context.Context) error {
		return s.events.PublishUserCreated(ctx, *user)
	})
	return user, nil
}

// ListUsers returns every user in store order.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}

// LogExerciseInput carries the raw fields of an exercise submission.
type LogExerciseInput struct {
	UserID      string
	Description string
	Duration    string
	Date        string
}

// LoggedExercise pairs a stored exercise with the user it belongs to.
type LoggedExercise struct {
	User     User
	Exercise Exercise
}

// LogExercise records an exercise for an existing user.
// An absent date defaults to today; an unparseable date is kept as an invalid date.
func (s *Service) LogExercise(ctx context.Context, input LogExerciseInput) (*LoggedExercise, error) {
	duration, err := ParseDuration(input.Duration)
	if err != nil {
		return nil, fmt.Errorf("duration %q: %w", input.Duration, err)
	}

	user, err := s.repo.GetUser(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("lookup user %q: %w", input.UserID, err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	now := s.now().UTC()
	exercise := Exercise{
		UserID:      user.ID,
		Description: input.Description,
		Duration:    duration,
		CreatedAt:   now,
	}
	if strings.TrimSpace(input.Date) == "" {
		today := CalendarDay(now)
		exercise.Date = &today
	} else if parsed, ok := ParseDate(input.Date); ok {
		exercise.Date = &parsed
	}

	stored, err := s.repo.CreateExercise(ctx, exercise)
	if err != nil {
		return nil, fmt.Errorf("create exercise: %w", err)
	}
	s.publish(ctx, EventExerciseLogged, func(ctx context.Context) error {
		return s.events.PublishExerciseLogged(ctx, *user, *stored)
	})
	return &LoggedExercise{User: *user, Exercise: *stored}, nil
}

// ExerciseLog returns the exercises matching q. Unknown users yield an empty log.
func (s *Service) ExerciseLog(ctx context.Context, q LogQuery) ([]Exercise, error) {
	exercises, err := s.repo.FindExercises(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("find exercises for %q: %w", q.UserID, err)
	}
	if exercises == nil {
		exercises = []Exercise{}
	}
	return exercises, nil
}

// Ping checks that the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// publish runs fn detached from the caller's cancellation and bounded by
// publishTimeout. The write it announces has already been stored.
func (s *Service) publish(ctx context.Context, eventType string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		s.logger.Warn("event publish failed", zap.String("event_type", eventType), zap.Error(err))
		if s.onPublishFailure != nil {
			s.onPublishFailure(eventType)
		}
	}
}

type noopPublisher struct{}

func (noopPublisher) PublishUserCreated(context.Context, User) error { return nil }

func (noopPublisher) PublishExerciseLogged(context.Context, User, Exercise) error { return nil }
