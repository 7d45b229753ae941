package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/restodir/restodir/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// DefaultCollection is the collection holding restaurant documents.
const DefaultCollection = "restaurants"

// DefaultConnectTimeout bounds server selection when no timeout is configured.
const DefaultConnectTimeout = time.Second

// Config holds connection parameters for a MongoDB store.
type Config struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

// Store implements db.Store on a single MongoDB collection.
type Store struct {
	client   *mongo.Client
	coll     *mongo.Collection
	database string
}

// NewStore connects to MongoDB and verifies the server is reachable within
// cfg.ConnectTimeout. Failures match db.ErrUnavailable.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("uri is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("database is required")
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.ConnectTimeout).
		SetConnectTimeout(cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, &db.Error{Op: db.OpConnect, Err: fmt.Errorf("%w: %w", db.ErrUnavailable, err)}
	}

	s := &Store{
		client:   client,
		coll:     client.Database(cfg.Database).Collection(cfg.Collection),
		database: cfg.Database,
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := s.Ping(pingCtx); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

// NewStoreForTest wraps an existing collection (test-only).
func NewStoreForTest(coll *mongo.Collection) *Store {
	return &Store{
		client:   coll.Database().Client(),
		coll:     coll,
		database: coll.Database().Name(),
	}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, readpref.Primary()); err != nil {
		return &db.Error{Op: db.OpPing, Err: fmt.Errorf("%w: %w", db.ErrUnavailable, err)}
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.client.Disconnect(ctx)
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w: %w", db.ErrUnavailable, ctx.Err())
		case <-ticker.C:
			if err := s.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

// DatabaseExists reports whether the configured database is already present on the server.
func (s *Store) DatabaseExists(ctx context.Context) (bool, error) {
	names, err := s.client.ListDatabaseNames(ctx, bson.D{{Key: "name", Value: s.database}})
	if err != nil {
		return false, &db.Error{Op: db.OpListDatabases, Err: err}
	}
	for _, n := range names {
		if n == s.database {
			return true, nil
		}
	}
	return false, nil
}

// CreateIndex creates the index if it does not exist yet.
func (s *Store) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return fmt.Errorf("invalid index %s: %w", def.Name, err)
	}

	keys := make(bson.D, 0, len(def.Keys))
	for _, k := range def.Keys {
		keys = append(keys, bson.E{Key: k.Field, Value: int(k.Order)})
	}

	model := mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetName(def.Name).SetUnique(def.Unique),
	}
	if _, err := s.coll.Indexes().CreateOne(ctx, model); err != nil {
		return &db.Error{Op: db.OpCreateIndex, Err: err}
	}
	return nil
}

// isDuplicateKeyCode reports whether a server error code means a unique index violation.
func isDuplicateKeyCode(code int) bool {
	return code == 11000 || code == 11001 || code == 12582
}

func wrapErr(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return &db.Error{Op: op, Err: fmt.Errorf("%w: %w", db.ErrDuplicateKey, err)}
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) || errors.Is(err, mongo.ErrClientDisconnected) {
		return &db.Error{Op: op, Err: fmt.Errorf("%w: %w", db.ErrUnavailable, err)}
	}
	return &db.Error{Op: op, Err: err}
}
