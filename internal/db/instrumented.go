package db

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/restodir/restodir/internal/metrics"
)

// Compile-time check: InstrumentedStore implements Store.
var _ Store = (*InstrumentedStore)(nil)

// InstrumentedStore wraps a Store with per-operation metrics and debug logging.
type InstrumentedStore struct {
	inner  Store
	logger *zap.Logger
}

// NewInstrumentedStore wraps inner. A nil logger disables logging.
func NewInstrumentedStore(inner Store, logger *zap.Logger) *InstrumentedStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedStore{inner: inner, logger: logger}
}

func (s *InstrumentedStore) observe(op string, start time.Time, err error) {
	duration := time.Since(start)
	status := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		status = "not_found"
	case errors.Is(err, ErrDuplicateKey):
		status = "duplicate"
	default:
		status = "error"
	}

	metrics.StoreOperationsTotal.WithLabelValues(op, status).Inc()
	metrics.StoreOperationDuration.WithLabelValues(op).Observe(duration.Seconds())

	if status == "error" {
		s.logger.Warn("Store operation failed",
			zap.String("op", op),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return
	}
	s.logger.Debug("Store operation completed",
		zap.String("op", op),
		zap.String("status", status),
		zap.Duration("duration", duration),
	)
}

// Ping delegates to the inner store.
func (s *InstrumentedStore) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.inner.Ping(ctx)
	s.observe(OpPing, start, err)
	return err //nolint:wrapcheck // decorator is transparent
}

// Close delegates to the inner store.
func (s *InstrumentedStore) Close() { s.inner.Close() }

// WaitForReady delegates to the inner store.
func (s *InstrumentedStore) WaitForReady(ctx context.Context, timeout time.Duration) error {
	return s.inner.WaitForReady(ctx, timeout) //nolint:wrapcheck // decorator is transparent
}

// FindOne delegates to the inner store.
func (s *InstrumentedStore) FindOne(ctx context.Context, filter bson.D, opts FindOptions) (bson.Raw, error) {
	start := time.Now()
	raw, err := s.inner.FindOne(ctx, filter, opts)
	s.observe(OpFindOne, start, err)
	return raw, err //nolint:wrapcheck // decorator is transparent
}

// Find delegates to the inner store.
func (s *InstrumentedStore) Find(ctx context.Context, filter bson.D, opts FindOptions) ([]bson.Raw, error) {
	start := time.Now()
	docs, err := s.inner.Find(ctx, filter, opts)
	s.observe(OpFind, start, err)
	return docs, err //nolint:wrapcheck // decorator is transparent
}

// InsertOne delegates to the inner store.
func (s *InstrumentedStore) InsertOne(ctx context.Context, doc any) error {
	start := time.Now()
	err := s.inner.InsertOne(ctx, doc)
	s.observe(OpInsert, start, err)
	return err //nolint:wrapcheck // decorator is transparent
}

// InsertMany delegates to the inner store.
func (s *InstrumentedStore) InsertMany(ctx context.Context, docs []any) (InsertManyResult, error) {
	start := time.Now()
	res, err := s.inner.InsertMany(ctx, docs)
	s.observe(OpInsertMany, start, err)
	return res, err //nolint:wrapcheck // decorator is transparent
}

// UpdateOne delegates to the inner store.
func (s *InstrumentedStore) UpdateOne(ctx context.Context, filter bson.D, update any) error {
	start := time.Now()
	err := s.inner.UpdateOne(ctx, filter, update)
	s.observe(OpUpdate, start, err)
	return err //nolint:wrapcheck // decorator is transparent
}

// DeleteOne delegates to the inner store.
func (s *InstrumentedStore) DeleteOne(ctx context.Context, filter bson.D) error {
	start := time.Now()
	err := s.inner.DeleteOne(ctx, filter)
	s.observe(OpDelete, start, err)
	return err //nolint:wrapcheck // decorator is transparent
}

// DeleteMany delegates to the inner store.
func (s *InstrumentedStore) DeleteMany(ctx context.Context, filter bson.D) (int64, error) {
	start := time.Now()
	n, err := s.inner.DeleteMany(ctx, filter)
	s.observe(OpDeleteMany, start, err)
	return n, err //nolint:wrapcheck // decorator is transparent
}

// DatabaseExists delegates to the inner store.
func (s *InstrumentedStore) DatabaseExists(ctx context.Context) (bool, error) {
	start := time.Now()
	ok, err := s.inner.DatabaseExists(ctx)
	s.observe(OpListDatabases, start, err)
	return ok, err //nolint:wrapcheck // decorator is transparent
}

// CreateIndex delegates to the inner store.
func (s *InstrumentedStore) CreateIndex(ctx context.Context, def *IndexDefinition) error {
	start := time.Now()
	err := s.inner.CreateIndex(ctx, def)
	s.observe(OpCreateIndex, start, err)
	return err //nolint:wrapcheck // decorator is transparent
}
