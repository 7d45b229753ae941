package db

import (
	"strconv"
	"strings"
)

// IndexBuilder is a fluent builder for index definitions.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building an index definition.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name}}
}

// Asc adds an ascending key.
func (b *IndexBuilder) Asc(field string) *IndexBuilder {
	b.def.Keys = append(b.def.Keys, IndexKey{Field: field, Order: Ascending})
	return b
}

// Desc adds a descending key.
func (b *IndexBuilder) Desc(field string) *IndexBuilder {
	b.def.Keys = append(b.def.Keys, IndexKey{Field: field, Order: Descending})
	return b
}

// Unique marks the index as enforcing uniqueness.
func (b *IndexBuilder) Unique() *IndexBuilder {
	b.def.Unique = true
	return b
}

// Build validates and returns the index definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	return &b.def, nil
}

// MustBuild calls Build and panics on error.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// String returns a debug representation resembling the createIndex shell call.
func (idx *IndexDefinition) String() string {
	keys := make([]string, len(idx.Keys))
	for i, k := range idx.Keys {
		keys[i] = k.Field + ": " + strconv.Itoa(int(k.Order))
	}
	s := "createIndex({" + strings.Join(keys, ", ") + "}, {name: " + idx.Name
	if idx.Unique {
		s += ", unique: true"
	}
	return s + "})"
}
