package restaurant

import (
	"slices"
	"strings"
)

// Projection is the lightweight list-query view of a record.
type Projection struct {
	ID    string
	Name  string
	Coord Coord
}

// Entry is one row of a search result set.
type Entry struct {
	ID       string
	Name     string
	Distance float64
}

// SortByDistance orders entries ascending by distance, keeping ties in input order.
func SortByDistance(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		switch {
		case a.Distance < b.Distance:
			return -1
		case a.Distance > b.Distance:
			return 1
		default:
			return 0
		}
	})
}

// Condition is a search filter. Empty fields are not constraints.
type Condition struct {
	Name    string
	Borough string
	Street  string
	Zipcode string
}

// Normalize trims surrounding whitespace from every field.
func (c Condition) Normalize() Condition {
	return Condition{
		Name:    strings.TrimSpace(c.Name),
		Borough: strings.TrimSpace(c.Borough),
		Street:  strings.TrimSpace(c.Street),
		Zipcode: strings.TrimSpace(c.Zipcode),
	}
}

// IsEmpty reports whether the condition matches everything.
func (c Condition) IsEmpty() bool {
	return c.Name == "" && c.Borough == "" && c.Street == "" && c.Zipcode == ""
}
