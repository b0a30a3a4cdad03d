// Package memory keeps users and exercises in process memory for local development and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"example.com/exercisetracker/internal/domain"
)

// Store implements domain.Repository with uuid ids. Iteration order is insertion order.
type Store struct {
	mu        sync.RWMutex
	users     []domain.User
	userIndex map[string]int
	exercises []domain.Exercise
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{userIndex: make(map[string]int)}
}

// CreateUser implements domain.UserRepository.
func (s *Store) CreateUser(ctx context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := domain.User{ID: uuid.NewString(), Username: username}
	s.userIndex[user.ID] = len(s.users)
	s.users = append(s.users, user)
	return &user, nil
}

// ListUsers implements domain.UserRepository.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

// GetUser implements domain.UserRepository.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.userIndex[id]
	if !ok {
		return nil, nil
	}
	user := s.users[idx]
	return &user, nil
}

// CreateExercise implements domain.ExerciseRepository.
func (s *Store) CreateExercise(ctx context.Context, exercise domain.Exercise) (*domain.Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exercise.ID = uuid.NewString()
	if exercise.Date != nil {
		d := *exercise.Date
		exercise.Date = &d
	}
	s.exercises = append(s.exercises, exercise)
	return &exercise, nil
}

// FindExercises implements domain.ExerciseRepository.
func (s *Store) FindExercises(ctx context.Context, q domain.LogQuery) ([]domain.Exercise, error) {
	if err := checkID(q.UserID); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]domain.Exercise, 0)
	for _, exercise := range s.exercises {
		if q.Limit > 0 && len(results) == q.Limit {
			break
		}
		if q.Matches(exercise) {
			results = append(results, exercise)
		}
	}
	return results, nil
}

// Ping implements domain.Repository.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (s *Store) Close(ctx context.Context) error {
	return nil
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", domain.ErrMalformedID, id)
	}
	return nil
}
