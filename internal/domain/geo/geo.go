package geo

import "math"

// EarthRadiusKm is the mean radius of Earth used for Haversine distance.
const EarthRadiusKm = 6371.0

// UnknownDistance stands in for a distance that cannot be computed because a
// coordinate is missing. It is larger than any real great-circle distance, so
// entries carrying it sort last.
const UnknownDistance = 99999.99

// Point is a (longitude, latitude) pair in degrees.
type Point struct {
	Lon float64
	Lat float64
}

// Distance returns the great-circle distance in kilometers between two points
// given as longitude/latitude degrees, rounded to 3 decimal places.
func Distance(lon1, lat1, lon2, lat2 float64) float64 {
	lon1r := lon1 * math.Pi / 180
	lat1r := lat1 * math.Pi / 180
	lon2r := lon2 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180

	dLon := lon2r - lon1r
	dLat := lat2r - lat1r

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Asin(math.Sqrt(a))

	return Round3(EarthRadiusKm * c)
}

// Between returns the distance from p to ref in kilometers.
func Between(p, ref Point) float64 {
	return Distance(p.Lon, p.Lat, ref.Lon, ref.Lat)
}

// DistanceOrUnknown returns the distance between lon/lat and ref, or
// UnknownDistance when either component is missing.
func DistanceOrUnknown(lon, lat *float64, ref Point) float64 {
	if lon == nil || lat == nil {
		return UnknownDistance
	}
	return Distance(*lon, *lat, ref.Lon, ref.Lat)
}

// Round3 rounds v to 3 decimal places.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
