package restaurant

import "github.com/restodir/restodir/internal/domain/geo"

// UntitledName is the name given to records created from scratch.
const UntitledName = "untitled"

// Restaurant is one persisted directory record.
type Restaurant struct {
	ID      string
	Name    string
	Cuisine string
	Borough string
	Address Address
	Grades  []Grade
}

// Address is the restaurant location sub-document.
type Address struct {
	Building string
	Street   string
	Zipcode  string
	Coord    Coord
}

// Coord is an optional [longitude, latitude] pair. A nil component means unknown.
type Coord struct {
	Lon *float64
	Lat *float64
}

// Grade is one inspection grade. Date is a Unix timestamp in milliseconds.
type Grade struct {
	Grade string
	Score float64
	Date  int64
}

// New returns a fresh default-valued record: empty strings, no grades and an
// unknown coordinate. Every call returns an independent value.
func New() Restaurant {
	return Restaurant{Grades: []Grade{}}
}

// NewCoord builds a known coordinate.
func NewCoord(lon, lat float64) Coord {
	return Coord{Lon: &lon, Lat: &lat}
}

// Known reports whether both components are present.
func (c Coord) Known() bool { return c.Lon != nil && c.Lat != nil }

// Point returns the coordinate as a geo.Point when both components are present.
func (c Coord) Point() (geo.Point, bool) {
	if !c.Known() {
		return geo.Point{}, false
	}
	return geo.Point{Lon: *c.Lon, Lat: *c.Lat}, true
}

// DistanceTo returns the distance to ref in km, or geo.UnknownDistance.
func (c Coord) DistanceTo(ref geo.Point) float64 {
	return geo.DistanceOrUnknown(c.Lon, c.Lat, ref)
}

// Clone returns a copy that shares no pointers or slices with c.
func (c Coord) Clone() Coord {
	return Coord{Lon: clonePtr(c.Lon), Lat: clonePtr(c.Lat)}
}

// Clone returns a deep copy of r.
func (r *Restaurant) Clone() Restaurant {
	c := *r
	c.Address.Coord = r.Address.Coord.Clone()
	if r.Grades != nil {
		c.Grades = make([]Grade, len(r.Grades))
		copy(c.Grades, r.Grades)
	}
	return c
}

func clonePtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
