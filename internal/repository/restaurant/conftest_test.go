package restaurant

import (
	"context"
	"testing"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/restodir/restodir/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	findOneFn    func(ctx context.Context, filter bson.D, opts db.FindOptions) (bson.Raw, error)
	findFn       func(ctx context.Context, filter bson.D, opts db.FindOptions) ([]bson.Raw, error)
	insertOneFn  func(ctx context.Context, doc any) error
	insertManyFn func(ctx context.Context, docs []any) (db.InsertManyResult, error)
	updateOneFn  func(ctx context.Context, filter bson.D, update any) error
	deleteOneFn  func(ctx context.Context, filter bson.D) error
	deleteManyFn func(ctx context.Context, filter bson.D) (int64, error)
}

func (m *mockStore) FindOne(ctx context.Context, filter bson.D, opts db.FindOptions) (bson.Raw, error) {
	if m.findOneFn != nil {
		return m.findOneFn(ctx, filter, opts)
	}
	return nil, db.ErrNotFound
}

func (m *mockStore) Find(ctx context.Context, filter bson.D, opts db.FindOptions) ([]bson.Raw, error) {
	if m.findFn != nil {
		return m.findFn(ctx, filter, opts)
	}
	return nil, nil
}

func (m *mockStore) InsertOne(ctx context.Context, doc any) error {
	if m.insertOneFn != nil {
		return m.insertOneFn(ctx, doc)
	}
	return nil
}

func (m *mockStore) InsertMany(ctx context.Context, docs []any) (db.InsertManyResult, error) {
	if m.insertManyFn != nil {
		return m.insertManyFn(ctx, docs)
	}
	return db.InsertManyResult{Inserted: len(docs)}, nil
}

func (m *mockStore) UpdateOne(ctx context.Context, filter bson.D, update any) error {
	if m.updateOneFn != nil {
		return m.updateOneFn(ctx, filter, update)
	}
	return nil
}

func (m *mockStore) DeleteOne(ctx context.Context, filter bson.D) error {
	if m.deleteOneFn != nil {
		return m.deleteOneFn(ctx, filter)
	}
	return nil
}

func (m *mockStore) DeleteMany(ctx context.Context, filter bson.D) (int64, error) {
	if m.deleteManyFn != nil {
		return m.deleteManyFn(ctx, filter)
	}
	return 0, nil
}

func newTestRepo(t *testing.T, opts ...Option) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, opts...), ms
}

// mustRaw marshals v into a bson.Raw document.
func mustRaw(t *testing.T, v any) bson.Raw {
	t.Helper()
	b, err := bson.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bson.Raw(b)
}

// extJSON renders v as relaxed extended JSON for readable comparisons.
func extJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := bson.MarshalExtJSON(v, false, false)
	if err != nil {
		t.Fatalf("marshal ext json: %v", err)
	}
	return string(b)
}
