package restaurant

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/restodir/restodir/internal/db"
	"github.com/restodir/restodir/internal/domain"
	domrest "github.com/restodir/restodir/internal/domain/restaurant"
)

// Stored field paths.
const (
	fieldID      = "restaurant_id"
	fieldName    = "name"
	fieldCuisine = "cuisine"
	fieldBorough = "borough"
	fieldAddress = "address"
	fieldStreet  = "address.street"
	fieldZipcode = "address.zipcode"
	fieldCoord   = "address.coord"
	fieldGrades  = "grades"
)

// store is the consumer interface for restaurant documents (ISP).
type store interface {
	FindOne(ctx context.Context, filter bson.D, opts db.FindOptions) (bson.Raw, error)
	Find(ctx context.Context, filter bson.D, opts db.FindOptions) ([]bson.Raw, error)
	InsertOne(ctx context.Context, doc any) error
	InsertMany(ctx context.Context, docs []any) (db.InsertManyResult, error)
	UpdateOne(ctx context.Context, filter bson.D, update any) error
	DeleteOne(ctx context.Context, filter bson.D) error
	DeleteMany(ctx context.Context, filter bson.D) (int64, error)
}

// Repo implements usecase/directory.Repository over a document store.
type Repo struct {
	store              store
	regex              bool
	atomicGradeRemoval bool
}

// Option configures a Repo.
type Option func(*Repo)

// WithRegex makes search values raw regular expressions instead of literal substrings.
func WithRegex(enabled bool) Option {
	return func(r *Repo) { r.regex = enabled }
}

// WithAtomicGradeRemoval selects the single-update grade removal (true) or the
// two-step unset+pull removal (false).
func WithAtomicGradeRemoval(enabled bool) Option {
	return func(r *Repo) { r.atomicGradeRemoval = enabled }
}

// New creates a restaurant repository. Grade removal is atomic unless configured otherwise.
func New(s store, opts ...Option) *Repo {
	r := &Repo{store: s, atomicGradeRemoval: true}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Close releases the underlying store when it owns a connection.
func (r *Repo) Close() {
	if c, ok := r.store.(interface{ Close() }); ok {
		c.Close()
	}
}

// Ping checks store connectivity when the store supports it.
func (r *Repo) Ping(ctx context.Context) error {
	if p, ok := r.store.(db.Pinger); ok {
		return p.Ping(ctx) //nolint:wrapcheck // health reports the store error as is
	}
	return nil
}

func byID(id string) bson.D {
	return bson.D{{Key: fieldID, Value: id}}
}

// Search returns the projection of every record matching cond.
func (r *Repo) Search(ctx context.Context, cond domrest.Condition) ([]domrest.Projection, error) {
	raws, err := r.store.Find(ctx, r.buildFilter(cond), db.FindOptions{
		Projection: bson.D{
			{Key: fieldName, Value: 1},
			{Key: fieldID, Value: 1},
			{Key: fieldCoord, Value: 1},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("find restaurants: %w", err)
	}

	out := make([]domrest.Projection, 0, len(raws))
	for _, raw := range raws {
		var d projectionDoc
		if err := bson.Unmarshal(raw, &d); err != nil {
			return nil, fmt.Errorf("decode projection: %w", err)
		}
		out = append(out, d.toDomain())
	}
	return out, nil
}

// buildFilter turns each non-empty condition field into a case-insensitive
// contains match. Fields combine with AND.
func (r *Repo) buildFilter(cond domrest.Condition) bson.D {
	cond = cond.Normalize()
	filter := bson.D{}
	for _, f := range []struct {
		path, value string
	}{
		{fieldName, cond.Name},
		{fieldBorough, cond.Borough},
		{fieldStreet, cond.Street},
		{fieldZipcode, cond.Zipcode},
	} {
		if f.value == "" {
			continue
		}
		pattern := f.value
		if !r.regex {
			pattern = regexp.QuoteMeta(pattern)
		}
		filter = append(filter, bson.E{Key: f.path, Value: primitive.Regex{Pattern: pattern, Options: "i"}})
	}
	return filter
}

// Get fetches the full record by id.
func (r *Repo) Get(ctx context.Context, id string) (domrest.Restaurant, error) {
	raw, err := r.store.FindOne(ctx, byID(id), db.FindOptions{})
	if err != nil {
		return domrest.Restaurant{}, mapErr(fmt.Sprintf("get %s", id), err)
	}
	var d restaurantDoc
	if err := bson.Unmarshal(raw, &d); err != nil {
		return domrest.Restaurant{}, fmt.Errorf("decode %s: %w", id, err)
	}
	return d.toDomain(), nil
}

// numericIDFilter matches records whose id is all digits. Numeric collation
// sorts other strings after every number, so they must not reach the sort.
var numericIDFilter = bson.D{{Key: fieldID, Value: primitive.Regex{Pattern: "^[0-9]+$"}}}

// MaxID returns the numerically largest all-digit record id.
// Fails when no record has such an id.
func (r *Repo) MaxID(ctx context.Context) (int64, error) {
	raw, err := r.store.FindOne(ctx, numericIDFilter, db.FindOptions{
		Projection:      bson.D{{Key: fieldID, Value: 1}},
		Sort:            bson.D{{Key: fieldID, Value: -1}},
		NumericOrdering: true,
	})
	if err != nil {
		return 0, mapErr("max id", err)
	}
	v, err := raw.LookupErr(fieldID)
	if err != nil {
		return 0, fmt.Errorf("max id: %w", err)
	}
	s, ok := v.StringValueOK()
	if !ok {
		return 0, fmt.Errorf("max id: unexpected type %s", v.Type)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("max id %q: %w", s, err)
	}
	return n, nil
}

// Insert stores a new record.
func (r *Repo) Insert(ctx context.Context, rec *domrest.Restaurant) error {
	if err := r.store.InsertOne(ctx, toInsertDoc(rec)); err != nil {
		return mapErr(fmt.Sprintf("insert %s", rec.ID), err)
	}
	return nil
}

// InsertMany stores records in one unordered batch. When the only failures are
// duplicate ids the error matches domain.ErrDuplicateRecord and the result
// still carries the counts.
func (r *Repo) InsertMany(ctx context.Context, recs []domrest.RawRecord) (domrest.InsertResult, error) {
	docs := make([]any, 0, len(recs))
	for _, rec := range recs {
		docs = append(docs, bson.M(rec))
	}
	res, err := r.store.InsertMany(ctx, docs)
	out := domrest.InsertResult{Inserted: res.Inserted, Duplicates: res.Duplicates}
	if err != nil {
		return out, mapErr("insert batch", err)
	}
	return out, nil
}

// SetInfo sets the non-nil top-level fields of p. An empty patch writes nothing.
func (r *Repo) SetInfo(ctx context.Context, id string, p domrest.InfoPatch) error {
	if p.IsEmpty() {
		return nil
	}
	set := bson.D{}
	if p.Name != nil {
		set = append(set, bson.E{Key: fieldName, Value: *p.Name})
	}
	if p.Cuisine != nil {
		set = append(set, bson.E{Key: fieldCuisine, Value: *p.Cuisine})
	}
	if p.Borough != nil {
		set = append(set, bson.E{Key: fieldBorough, Value: *p.Borough})
	}
	return r.update(ctx, id, "set info", bson.D{{Key: "$set", Value: set}})
}

// ReplaceAddress replaces the whole address sub-document.
func (r *Repo) ReplaceAddress(ctx context.Context, id string, a domrest.Address) error {
	return r.update(ctx, id, "replace address",
		bson.D{{Key: "$set", Value: bson.D{{Key: fieldAddress, Value: toAddressDoc(a)}}}})
}

// SetCoord sets address.coord, [null, null] when c is unknown.
func (r *Repo) SetCoord(ctx context.Context, id string, c domrest.Coord) error {
	return r.update(ctx, id, "set coord",
		bson.D{{Key: "$set", Value: bson.D{{Key: fieldCoord, Value: toCoordArray(c)}}}})
}

// PushGrade appends g to the grades array.
func (r *Repo) PushGrade(ctx context.Context, id string, g domrest.Grade) error {
	return r.update(ctx, id, "push grade",
		bson.D{{Key: "$push", Value: bson.D{{Key: fieldGrades, Value: toGradeDoc(g)}}}})
}

// RemoveGrade removes the grade at pos. The caller checks pos against the record.
//
// The two-step form is not atomic: between $unset and $pull a reader can see
// a null entry at pos.
func (r *Repo) RemoveGrade(ctx context.Context, id string, pos int) error {
	if pos < 0 {
		return domain.ErrGradeIndexOutOfRange
	}
	if r.atomicGradeRemoval {
		return r.update(ctx, id, "remove grade", removeGradePipeline(pos))
	}

	unset := bson.D{{Key: "$unset", Value: bson.D{{Key: fieldGrades + "." + strconv.Itoa(pos), Value: 1}}}}
	if err := r.update(ctx, id, "unset grade", unset); err != nil {
		return err
	}
	pull := bson.D{{Key: "$pull", Value: bson.D{{Key: fieldGrades, Value: nil}}}}
	return r.update(ctx, id, "pull null grades", pull)
}

// removeGradePipeline rebuilds grades without element pos in one update:
// grades = grades[0:pos] ++ grades[pos+1:].
func removeGradePipeline(pos int) bson.A {
	parts := bson.A{}
	if pos > 0 {
		parts = append(parts, bson.D{{Key: "$slice", Value: bson.A{"$grades", 0, pos}}})
	}
	parts = append(parts, bson.D{{Key: "$slice", Value: bson.A{
		"$grades", pos + 1, bson.D{{Key: "$size", Value: "$grades"}},
	}}})
	return bson.A{
		bson.D{{Key: "$set", Value: bson.D{
			{Key: fieldGrades, Value: bson.D{{Key: "$concatArrays", Value: parts}}},
		}}},
	}
}

// Delete removes the record with id.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.DeleteOne(ctx, byID(id)); err != nil {
		return mapErr(fmt.Sprintf("delete %s", id), err)
	}
	return nil
}

// DeleteMany removes every record whose id is in ids and returns the count.
func (r *Repo) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	in := make(bson.A, 0, len(ids))
	for _, id := range ids {
		in = append(in, id)
	}
	n, err := r.store.DeleteMany(ctx, bson.D{{Key: fieldID, Value: bson.D{{Key: "$in", Value: in}}}})
	if err != nil {
		return 0, mapErr("delete batch", err)
	}
	return n, nil
}

func (r *Repo) update(ctx context.Context, id, what string, update any) error {
	if err := r.store.UpdateOne(ctx, byID(id), update); err != nil {
		return mapErr(fmt.Sprintf("%s %s", what, id), err)
	}
	return nil
}

// mapErr translates store sentinels into domain errors.
func mapErr(what string, err error) error {
	switch {
	case errors.Is(err, db.ErrNotFound):
		return fmt.Errorf("%s: %w", what, domain.ErrRecordNotFound)
	case errors.Is(err, db.ErrDuplicateKey):
		return fmt.Errorf("%s: %w: %w", what, domain.ErrDuplicateRecord, err)
	default:
		return fmt.Errorf("%s: %w", what, err)
	}
}
