package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseLongitude parses a hemisphere-lettered longitude such as "73.98W".
// The suffix is E or W (any case), the magnitude must be within [0,180].
// An empty string yields nil (no value).
func ParseLongitude(s string) (*float64, error) {
	return parseLettered(s, 'E', 'W', 180, "longitude")
}

// ParseLatitude parses a hemisphere-lettered latitude such as "40.75N".
// The suffix is N or S (any case), the magnitude must be within [0,90].
// An empty string yields nil (no value).
func ParseLatitude(s string) (*float64, error) {
	return parseLettered(s, 'N', 'S', 90, "latitude")
}

func parseLettered(s string, pos, neg byte, limit float64, what string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var sign float64
	switch suffix := upper(s[len(s)-1]); suffix {
	case pos:
		sign = 1
	case neg:
		sign = -1
	default:
		return nil, fmt.Errorf("%s must end with %c or %c, got %q", what, pos, neg, s[len(s)-1:])
	}

	magnitude, err := strconv.ParseFloat(strings.TrimSpace(s[:len(s)-1]), 64)
	if err != nil {
		return nil, fmt.Errorf("parse %s %q: %w", what, s, err)
	}
	if magnitude < 0 || magnitude > limit || math.IsNaN(magnitude) {
		return nil, fmt.Errorf("%s can only be between 0 and %g %c/%c", what, limit, pos, neg)
	}

	v := sign * magnitude
	return &v, nil
}

// ParsePoint parses "<lon>,<lat>" where each half is either hemisphere-lettered
// ("73.9W,40.9N") or a signed decimal ("-73.9,40.9").
func ParsePoint(s string) (Point, error) {
	lonStr, latStr, ok := strings.Cut(s, ",")
	if !ok {
		return Point{}, fmt.Errorf("point must be \"<lon>,<lat>\", got %q", s)
	}

	lon, err := parseSignedOrLettered(lonStr, ParseLongitude)
	if err != nil {
		return Point{}, err
	}
	lat, err := parseSignedOrLettered(latStr, ParseLatitude)
	if err != nil {
		return Point{}, err
	}
	if !ValidateCoordinates(lat, lon) {
		return Point{}, fmt.Errorf("coordinates out of range: lon=%f lat=%f", lon, lat)
	}
	return Point{Lon: lon, Lat: lat}, nil
}

func parseSignedOrLettered(s string, lettered func(string) (*float64, error)) (float64, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}
	v, err := lettered(s)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, fmt.Errorf("empty coordinate")
	}
	return *v, nil
}

// FormatLongitude renders a longitude as "73.980000000W". Nil renders as "".
func FormatLongitude(v *float64) string {
	return formatLettered(v, 'E', 'W')
}

// FormatLatitude renders a latitude as "40.750000000N". Nil renders as "".
func FormatLatitude(v *float64) string {
	return formatLettered(v, 'N', 'S')
}

func formatLettered(v *float64, pos, neg byte) string {
	if v == nil {
		return ""
	}
	letter := pos
	if *v < 0 {
		letter = neg
	}
	return fmt.Sprintf("%.9f%c", math.Abs(*v), letter)
}

// FormatKm renders a distance for list display, e.g. "12.35km".
func FormatKm(km float64) string {
	return fmt.Sprintf("%.2fkm", km)
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
