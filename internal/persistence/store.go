// Package persistence selects and opens the store backend named by a connection string.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"example.com/exercisetracker/internal/domain"
	"example.com/exercisetracker/internal/persistence/memory"
	"example.com/exercisetracker/internal/persistence/mongo"
	"example.com/exercisetracker/internal/persistence/postgres"
)

// ErrUnsupportedScheme is returned for connection strings no backend understands.
var ErrUnsupportedScheme = errors.New("unsupported database scheme")

// Store is a domain.Repository with an explicit lifecycle.
type Store interface {
	domain.Repository
	Close(ctx context.Context) error
}

// Options tune backend construction.
type Options struct {
	// Database names the MongoDB database; other backends ignore it.
	Database string
}

// Backend reports which backend rawURL selects: "mongo", "postgres" or "memory".
func Backend(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "mongodb", "mongodb+srv":
		return "mongo", nil
	case "postgres", "postgresql":
		return "postgres", nil
	case "memory":
		return "memory", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

// Open connects to the backend selected by rawURL.
func Open(ctx context.Context, rawURL string, opts Options) (Store, error) {
	backend, err := Backend(rawURL)
	if err != nil {
		return nil, err
	}
	switch backend {
	case "mongo":
		store, err := mongo.Connect(ctx, rawURL, opts.Database)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "postgres":
		repo, err := postgres.Connect(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		return repo, nil
	default:
		return memory.NewStore(), nil
	}
}
