package restaurant

import (
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	domrest "github.com/restodir/restodir/internal/domain/restaurant"
)

// restaurantDoc is the stored shape of a record as read back.
// The store-assigned _id is not decoded.
type restaurantDoc struct {
	RestaurantID string     `bson:"restaurant_id"`
	Name         string     `bson:"name"`
	Cuisine      string     `bson:"cuisine"`
	Borough      string     `bson:"borough"`
	Address      addressDoc `bson:"address"`
	Grades       []gradeDoc `bson:"grades"`
}

type addressDoc struct {
	Building string     `bson:"building"`
	Street   string     `bson:"street"`
	Zipcode  string     `bson:"zipcode"`
	Coord    []*float64 `bson:"coord"`
}

// gradeDoc keeps the date raw: depending on the tool that wrote it the date
// is a double, an int64 or a BSON datetime.
type gradeDoc struct {
	Grade string        `bson:"grade"`
	Score float64       `bson:"score"`
	Date  bson.RawValue `bson:"date"`
}

// insertDoc is the write-side shape of a full record.
type insertDoc struct {
	RestaurantID string        `bson:"restaurant_id"`
	Name         string        `bson:"name"`
	Cuisine      string        `bson:"cuisine"`
	Borough      string        `bson:"borough"`
	Address      addressDoc    `bson:"address"`
	Grades       []newGradeDoc `bson:"grades"`
}

// newGradeDoc is the write-side grade shape.
type newGradeDoc struct {
	Grade string  `bson:"grade"`
	Score float64 `bson:"score"`
	Date  int64   `bson:"date"`
}

// projectionDoc is the list-query shape.
type projectionDoc struct {
	RestaurantID string `bson:"restaurant_id"`
	Name         string `bson:"name"`
	Address      struct {
		Coord []*float64 `bson:"coord"`
	} `bson:"address"`
}

func toInsertDoc(r *domrest.Restaurant) insertDoc {
	grades := make([]newGradeDoc, 0, len(r.Grades))
	for _, g := range r.Grades {
		grades = append(grades, toGradeDoc(g))
	}
	return insertDoc{
		RestaurantID: r.ID,
		Name:         r.Name,
		Cuisine:      r.Cuisine,
		Borough:      r.Borough,
		Address:      toAddressDoc(r.Address),
		Grades:       grades,
	}
}

func toGradeDoc(g domrest.Grade) newGradeDoc {
	return newGradeDoc{Grade: g.Grade, Score: g.Score, Date: g.Date}
}

func toAddressDoc(a domrest.Address) addressDoc {
	return addressDoc{
		Building: a.Building,
		Street:   a.Street,
		Zipcode:  a.Zipcode,
		Coord:    toCoordArray(a.Coord),
	}
}

// toCoordArray encodes a coordinate as [lon, lat]; unknown is [null, null].
func toCoordArray(c domrest.Coord) []*float64 {
	if !c.Known() {
		return []*float64{nil, nil}
	}
	c = c.Clone()
	return []*float64{c.Lon, c.Lat}
}

// fromCoordArray decodes [lon, lat]. Any other length, or a null component,
// yields an unknown coordinate.
func fromCoordArray(arr []*float64) domrest.Coord {
	if len(arr) != 2 || arr[0] == nil || arr[1] == nil {
		return domrest.Coord{}
	}
	return domrest.NewCoord(*arr[0], *arr[1])
}

func (d *restaurantDoc) toDomain() domrest.Restaurant {
	grades := make([]domrest.Grade, 0, len(d.Grades))
	for _, g := range d.Grades {
		grades = append(grades, domrest.Grade{
			Grade: g.Grade,
			Score: g.Score,
			Date:  dateMillis(g.Date),
		})
	}
	return domrest.Restaurant{
		ID:      d.RestaurantID,
		Name:    d.Name,
		Cuisine: d.Cuisine,
		Borough: d.Borough,
		Address: domrest.Address{
			Building: d.Address.Building,
			Street:   d.Address.Street,
			Zipcode:  d.Address.Zipcode,
			Coord:    fromCoordArray(d.Address.Coord),
		},
		Grades: grades,
	}
}

func (d *projectionDoc) toDomain() domrest.Projection {
	return domrest.Projection{
		ID:    d.RestaurantID,
		Name:  d.Name,
		Coord: fromCoordArray(d.Address.Coord),
	}
}

// dateMillis reads a stored grade date as Unix milliseconds. Unknown types read as 0.
func dateMillis(v bson.RawValue) int64 {
	switch v.Type {
	case bsontype.Int64:
		return v.Int64()
	case bsontype.Int32:
		return int64(v.Int32())
	case bsontype.Double:
		return int64(math.Round(v.Double()))
	case bsontype.DateTime:
		return v.DateTime()
	default:
		return 0
	}
}
