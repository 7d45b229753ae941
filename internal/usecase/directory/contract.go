package directory

import (
	"context"

	domrest "github.com/restodir/restodir/internal/domain/restaurant"
)

// Repository defines the storage contract for restaurant records.
type Repository interface {
	Search(ctx context.Context, cond domrest.Condition) ([]domrest.Projection, error)
	Get(ctx context.Context, id string) (domrest.Restaurant, error)
	MaxID(ctx context.Context) (int64, error)
	Insert(ctx context.Context, rec *domrest.Restaurant) error
	InsertMany(ctx context.Context, recs []domrest.RawRecord) (domrest.InsertResult, error)
	SetInfo(ctx context.Context, id string, p domrest.InfoPatch) error
	ReplaceAddress(ctx context.Context, id string, a domrest.Address) error
	SetCoord(ctx context.Context, id string, c domrest.Coord) error
	PushGrade(ctx context.Context, id string, g domrest.Grade) error
	RemoveGrade(ctx context.Context, id string, pos int) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
}

// Connector opens a repository on a store endpoint. A database that does not
// exist yet is created with a unique index on the record id.
type Connector interface {
	Connect(ctx context.Context, endpoint, database string) (Repository, error)
}

// ConnectorFunc adapts a function to Connector.
type ConnectorFunc func(ctx context.Context, endpoint, database string) (Repository, error)

// Connect calls f.
func (f ConnectorFunc) Connect(ctx context.Context, endpoint, database string) (Repository, error) {
	return f(ctx, endpoint, database)
}
