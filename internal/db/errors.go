package db

import "errors"

// Sentinel errors for database operations.
var (
	ErrNotFound     = errors.New("db: document not found")
	ErrDuplicateKey = errors.New("db: duplicate key")
	ErrUnavailable  = errors.New("db: store unavailable")
)

// Op constants map to MongoDB command names for error context.
const (
	OpConnect       = "connect"
	OpPing          = "ping"
	OpListDatabases = "listDatabases"
	OpCreateIndex   = "createIndexes"
	OpFind          = "find"
	OpFindOne       = "findOne"
	OpInsert        = "insert"
	OpInsertMany    = "insertMany"
	OpUpdate        = "update"
	OpDelete        = "delete"
	OpDeleteMany    = "deleteMany"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
