package db

import "go.mongodb.org/mongo-driver/bson"

// FindOptions shape a find query.
type FindOptions struct {
	Projection bson.D
	Sort       bson.D
	Limit      int64
	// NumericOrdering compares numeric strings by value ("99" < "100") when sorting.
	NumericOrdering bool
}
