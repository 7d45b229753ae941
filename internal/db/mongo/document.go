package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/restodir/restodir/internal/db"
)

// numericCollation orders numeric strings by value.
func numericCollation() *options.Collation {
	return &options.Collation{Locale: "en", NumericOrdering: true}
}

func orEmpty(filter bson.D) bson.D {
	if filter == nil {
		return bson.D{}
	}
	return filter
}

// FindOne returns the first document matching filter, or db.ErrNotFound.
func (s *Store) FindOne(ctx context.Context, filter bson.D, o db.FindOptions) (bson.Raw, error) {
	opts := options.FindOne()
	if o.Projection != nil {
		opts.SetProjection(o.Projection)
	}
	if o.Sort != nil {
		opts.SetSort(o.Sort)
	}
	if o.NumericOrdering {
		opts.SetCollation(numericCollation())
	}

	raw, err := s.coll.FindOne(ctx, orEmpty(filter), opts).Raw()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, db.ErrNotFound
		}
		return nil, wrapErr(db.OpFindOne, err)
	}
	return raw, nil
}

// Find returns every document matching filter.
func (s *Store) Find(ctx context.Context, filter bson.D, o db.FindOptions) ([]bson.Raw, error) {
	opts := options.Find()
	if o.Projection != nil {
		opts.SetProjection(o.Projection)
	}
	if o.Sort != nil {
		opts.SetSort(o.Sort)
	}
	if o.Limit > 0 {
		opts.SetLimit(o.Limit)
	}
	if o.NumericOrdering {
		opts.SetCollation(numericCollation())
	}

	cur, err := s.coll.Find(ctx, orEmpty(filter), opts)
	if err != nil {
		return nil, wrapErr(db.OpFind, err)
	}
	defer func() { _ = cur.Close(ctx) }()

	var docs []bson.Raw
	for cur.Next(ctx) {
		// cur.Current is reused by the next call to Next
		doc := make(bson.Raw, len(cur.Current))
		copy(doc, cur.Current)
		docs = append(docs, doc)
	}
	if err := cur.Err(); err != nil {
		return nil, wrapErr(db.OpFind, err)
	}
	return docs, nil
}

// InsertOne inserts a single document. A unique index violation matches db.ErrDuplicateKey.
func (s *Store) InsertOne(ctx context.Context, doc any) error {
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return wrapErr(db.OpInsert, err)
	}
	return nil
}

// InsertMany inserts docs in one unordered batch, so one failing document does
// not stop the rest. When every failure is a duplicate key the returned error
// matches db.ErrDuplicateKey and the result carries the counts.
func (s *Store) InsertMany(ctx context.Context, docs []any) (db.InsertManyResult, error) {
	if len(docs) == 0 {
		return db.InsertManyResult{}, nil
	}

	_, err := s.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		return db.InsertManyResult{Inserted: len(docs)}, nil
	}

	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) || bwe.WriteConcernError != nil || len(bwe.WriteErrors) == 0 {
		return db.InsertManyResult{}, wrapErr(db.OpInsertMany, err)
	}

	res := db.InsertManyResult{Inserted: len(docs) - len(bwe.WriteErrors)}
	for _, we := range bwe.WriteErrors {
		if isDuplicateKeyCode(we.Code) {
			res.Duplicates++
		}
	}
	if res.Duplicates == len(bwe.WriteErrors) {
		return res, &db.Error{
			Op:  db.OpInsertMany,
			Err: fmt.Errorf("%d documents: %w", res.Duplicates, db.ErrDuplicateKey),
		}
	}
	return res, &db.Error{Op: db.OpInsertMany, Err: err}
}

// UpdateOne applies update to the first document matching filter.
// Returns db.ErrNotFound when nothing matched.
func (s *Store) UpdateOne(ctx context.Context, filter bson.D, update any) error {
	res, err := s.coll.UpdateOne(ctx, orEmpty(filter), update)
	if err != nil {
		return wrapErr(db.OpUpdate, err)
	}
	if res.MatchedCount == 0 {
		return db.ErrNotFound
	}
	return nil
}

// DeleteOne removes the first document matching filter.
// Returns db.ErrNotFound when nothing matched.
func (s *Store) DeleteOne(ctx context.Context, filter bson.D) error {
	res, err := s.coll.DeleteOne(ctx, orEmpty(filter))
	if err != nil {
		return wrapErr(db.OpDelete, err)
	}
	if res.DeletedCount == 0 {
		return db.ErrNotFound
	}
	return nil
}

// DeleteMany removes every document matching filter and returns the count.
func (s *Store) DeleteMany(ctx context.Context, filter bson.D) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, orEmpty(filter))
	if err != nil {
		return 0, wrapErr(db.OpDeleteMany, err)
	}
	return res.DeletedCount, nil
}
