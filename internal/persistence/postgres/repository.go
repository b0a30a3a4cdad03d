package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/exercisetracker/internal/domain"
)

//go:embed schema.sql
var schema string

// Repository provides Postgres-backed persistence for users and exercises.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Connect opens a pool for url and makes sure the tables exist.
func Connect(ctx context.Context, url string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	repo := NewRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return repo, nil
}

// EnsureSchema creates the tables when they are missing. Existing tables are left untouched.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// CreateUser inserts a user with a fresh id.
func (r *Repository) CreateUser(ctx context.Context, username string) (*domain.User, error) {
	user := domain.User{ID: uuid.NewString(), Username: username}
	const stmt = `INSERT INTO users (user_id, username) VALUES ($1, $2)`
	if _, err := r.pool.Exec(ctx, stmt, user.ID, user.Username); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns all users in insertion order.
func (r *Repository) ListUsers(ctx context.Context) ([]domain.User, error) {
	const query = `SELECT user_id::text, username FROM users ORDER BY seq`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Username); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser retrieves a user by id.
func (r *Repository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	uid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	const query = `SELECT user_id::text, username FROM users WHERE user_id=$1`
	var user domain.User
	if err := r.pool.QueryRow(ctx, query, uid).Scan(&user.ID, &user.Username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// CreateExercise inserts an exercise with a fresh id.
func (r *Repository) CreateExercise(ctx context.Context, exercise domain.Exercise) (*domain.Exercise, error) {
	uid, err := parseID(exercise.UserID)
	if err != nil {
		return nil, err
	}
	exercise.ID = uuid.NewString()

	const stmt = `INSERT INTO exercises (exercise_id, user_id, description, duration, exercise_date, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)`

	_, err = r.pool.Exec(ctx, stmt,
		exercise.ID,
		uid,
		exercise.Description,
		exercise.Duration,
		exercise.Date,
		exercise.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &exercise, nil
}

// FindExercises returns a user's exercises filtered by date range and limit, in insertion order.
func (r *Repository) FindExercises(ctx context.Context, q domain.LogQuery) ([]domain.Exercise, error) {
	uid, err := parseID(q.UserID)
	if err != nil {
		return nil, err
	}

	query, args := buildLogQuery(uid, q)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := make([]domain.Exercise, 0)
	for rows.Next() {
		var (
			exercise domain.Exercise
			date     *time.Time
		)
		if err := rows.Scan(&exercise.ID, &exercise.UserID, &exercise.Description, &exercise.Duration, &date, &exercise.CreatedAt); err != nil {
			return nil, err
		}
		if date != nil {
			d := domain.CalendarDay(*date)
			exercise.Date = &d
		}
		exercise.CreatedAt = exercise.CreatedAt.UTC()
		results = append(results, exercise)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Ping implements domain.Repository.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close releases the pool.
func (r *Repository) Close(ctx context.Context) error {
	r.pool.Close()
	return nil
}

func buildLogQuery(userID uuid.UUID, q domain.LogQuery) (string, []interface{}) {
	args := []interface{}{userID}
	query := `SELECT exercise_id::text, user_id::text, description, duration, exercise_date, created_at
        FROM exercises WHERE user_id=$1`

	if q.From != nil {
		args = append(args, *q.From)
		query += ` AND exercise_date >= $` + strconv.Itoa(len(args))
	}
	if q.To != nil {
		args = append(args, *q.To)
		query += ` AND exercise_date <= $` + strconv.Itoa(len(args))
	}

	query += ` ORDER BY seq`

	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
	}
	return query, args
}

func parseID(id string) (uuid.UUID, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", domain.ErrMalformedID, id)
	}
	return uid, nil
}
