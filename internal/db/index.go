package db

import (
	"errors"
	"strconv"
)

// SortOrder is the direction of an index key.
type SortOrder int

const (
	// Ascending orders keys low to high.
	Ascending SortOrder = 1
	// Descending orders keys high to low.
	Descending SortOrder = -1
)

// IndexKey is one field of a compound index.
type IndexKey struct {
	Field string
	Order SortOrder
}

// IndexDefinition describes a collection index.
type IndexDefinition struct {
	Name   string
	Keys   []IndexKey
	Unique bool
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Keys) == 0 {
		return errors.New("at least one key is required")
	}

	seen := make(map[string]bool)
	for i, k := range idx.Keys {
		if k.Field == "" {
			return errors.New("key field is required at index " + strconv.Itoa(i))
		}
		if seen[k.Field] {
			return errors.New("duplicate key field: " + k.Field)
		}
		seen[k.Field] = true

		if k.Order != Ascending && k.Order != Descending {
			return errors.New("invalid sort order for " + k.Field)
		}
	}

	return nil
}

// IsValidIdentifier returns true if s matches [a-zA-Z0-9_.-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isDigit := c >= '0' && c <= '9'
		if !isLetter && !isDigit && c != '_' && c != '.' && c != '-' {
			return false
		}
	}
	return true
}
