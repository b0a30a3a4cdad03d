// Package mongo persists users and exercises in MongoDB collections.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"example.com/exercisetracker/internal/domain"
)

const (
	usersCollection     = "users"
	exercisesCollection = "exercises"
)

// ObjectIDs minted by one client increase monotonically, so _id order is insertion order.
var insertionOrder = bson.D{{Key: "_id", Value: 1}}

type userDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Username string             `bson:"username"`
}

type exerciseDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      string             `bson:"userId"`
	Description string             `bson:"description"`
	Duration    float64            `bson:"duration"`
	Date        *time.Time         `bson:"date"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

// Store implements domain.Repository on top of a MongoDB database.
type Store struct {
	client    *mongo.Client
	users     *mongo.Collection
	exercises *mongo.Collection
}

// Connect dials uri, verifies the connection and prepares the collections in database.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	store := NewStore(client, client.Database(database))
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return store, nil
}

// NewStore wraps an existing database handle. The client is closed by Close.
func NewStore(client *mongo.Client, db *mongo.Database) *Store {
	return &Store{
		client:    client,
		users:     db.Collection(usersCollection),
		exercises: db.Collection(exercisesCollection),
	}
}

// EnsureIndexes creates the userId/date index the log query relies on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.exercises.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: 1}},
		Options: options.Index().SetName("user_date"),
	})
	if err != nil {
		return fmt.Errorf("create exercises index: %w", err)
	}
	return nil
}

// CreateUser implements domain.UserRepository.
func (s *Store) CreateUser(ctx context.Context, username string) (*domain.User, error) {
	res, err := s.users.InsertOne(ctx, userDocument{Username: username})
	if err != nil {
		return nil, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return &domain.User{ID: id.Hex(), Username: username}, nil
}

// ListUsers implements domain.UserRepository.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	cursor, err := s.users.Find(ctx, bson.D{}, options.Find().SetSort(insertionOrder))
	if err != nil {
		return nil, err
	}
	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, domain.User{ID: doc.ID.Hex(), Username: doc.Username})
	}
	return users, nil
}

// GetUser implements domain.UserRepository.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var doc userDocument
	if err := s.users.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &domain.User{ID: doc.ID.Hex(), Username: doc.Username}, nil
}

// CreateExercise implements domain.ExerciseRepository.
func (s *Store) CreateExercise(ctx context.Context, exercise domain.Exercise) (*domain.Exercise, error) {
	doc := exerciseDocument{
		UserID:      exercise.UserID,
		Description: exercise.Description,
		Duration:    exercise.Duration,
		Date:        exercise.Date,
		CreatedAt:   exercise.CreatedAt,
	}
	res, err := s.exercises.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	exercise.ID = id.Hex()
	return &exercise, nil
}

// FindExercises implements domain.ExerciseRepository.
func (s *Store) FindExercises(ctx context.Context, q domain.LogQuery) ([]domain.Exercise, error) {
	if _, err := parseID(q.UserID); err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(insertionOrder)
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cursor, err := s.exercises.Find(ctx, buildFilter(q), opts)
	if err != nil {
		return nil, err
	}
	var docs []exerciseDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	exercises := make([]domain.Exercise, 0, len(docs))
	for _, doc := range docs {
		exercises = append(exercises, toExercise(doc))
	}
	return exercises, nil
}

// Ping implements domain.Repository.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func buildFilter(q domain.LogQuery) bson.D {
	filter := bson.D{{Key: "userId", Value: q.UserID}}
	dateRange := bson.D{}
	if q.From != nil {
		dateRange = append(dateRange, bson.E{Key: "$gte", Value: *q.From})
	}
	if q.To != nil {
		dateRange = append(dateRange, bson.E{Key: "$lte", Value: *q.To})
	}
	if len(dateRange) > 0 {
		filter = append(filter, bson.E{Key: "date", Value: dateRange})
	}
	return filter
}

func toExercise(doc exerciseDocument) domain.Exercise {
	exercise := domain.Exercise{
		ID:          doc.ID.Hex(),
		UserID:      doc.UserID,
		Description: doc.Description,
		Duration:    doc.Duration,
		CreatedAt:   doc.CreatedAt.UTC(),
	}
	if doc.Date != nil {
		d := doc.Date.UTC()
		exercise.Date = &d
	}
	return exercise
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", domain.ErrMalformedID, id)
	}
	return oid, nil
}
