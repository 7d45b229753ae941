package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	DocumentStore
	IndexManager
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// InsertManyResult reports the outcome of an unordered bulk insert.
type InsertManyResult struct {
	Inserted   int
	Duplicates int
}

// DocumentStore provides document reads and writes on a single collection.
// Filters, projections, sorts and updates are bson documents.
type DocumentStore interface {
	FindOne(ctx context.Context, filter bson.D, opts FindOptions) (bson.Raw, error)
	Find(ctx context.Context, filter bson.D, opts FindOptions) ([]bson.Raw, error)
	InsertOne(ctx context.Context, doc any) error
	InsertMany(ctx context.Context, docs []any) (InsertManyResult, error)
	// UpdateOne accepts an update document (bson.D) or an aggregation pipeline (bson.A).
	UpdateOne(ctx context.Context, filter bson.D, update any) error
	DeleteOne(ctx context.Context, filter bson.D) error
	DeleteMany(ctx context.Context, filter bson.D) (int64, error)
}

// IndexManager provides database and index lifecycle operations.
type IndexManager interface {
	DatabaseExists(ctx context.Context) (bool, error)
	CreateIndex(ctx context.Context, def *IndexDefinition) error
}
