package restaurant

// RawRecord is a loosely-typed record as read from an import source, one per
// line. Values are whatever the reader decoded: strings, float64, bool, nil,
// nested RawRecord-shaped maps and []any.
type RawRecord map[string]any

// InsertResult reports how many records of a batch reached the store and how
// many were rejected as duplicates.
type InsertResult struct {
	Inserted   int
	Duplicates int
}
