package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrMissingParameter is returned when a corner coordinate is absent or blank.
	ErrMissingParameter = errors.New("geo: missing required parameter")
	// ErrInvalidNumber is returned when a coordinate is not a finite float.
	ErrInvalidNumber = errors.New("geo: invalid number")
	// ErrInvalidBounds is returned for inverted or out-of-range boxes.
	ErrInvalidBounds = errors.New("geo: invalid bounds")
)

// Query parameter names of the nearby endpoint.
const (
	ParamNorthEastLat = "northEastLat"
	ParamNorthEastLng = "northEastLng"
	ParamSouthWestLat = "southWestLat"
	ParamSouthWestLng = "southWestLng"
)

// BoundingBox is an inclusive rectangle between two corners.
type BoundingBox struct {
	SouthWestLat float64
	SouthWestLng float64
	NorthEastLat float64
	NorthEastLng float64
}

// RawBounds holds the four corner coordinates as received.
type RawBounds struct {
	NorthEastLat string
	NorthEastLng string
	SouthWestLat string
	SouthWestLng string
}

// Contains reports whether the point lies in the box, edges included.
func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat >= b.SouthWestLat && lat <= b.NorthEastLat &&
		lng >= b.SouthWestLng && lng <= b.NorthEastLng
}

// Validate rejects inverted boxes and coordinates outside the WGS84 ranges.
func (b BoundingBox) Validate() error {
	for _, lat := range []float64{b.SouthWestLat, b.NorthEastLat} {
		if lat < -90 || lat > 90 {
			return fmt.Errorf("%w: latitude %v out of range", ErrInvalidBounds, lat)
		}
	}
	for _, lng := range []float64{b.SouthWestLng, b.NorthEastLng} {
		if lng < -180 || lng > 180 {
			return fmt.Errorf("%w: longitude %v out of range", ErrInvalidBounds, lng)
		}
	}
	if b.SouthWestLat > b.NorthEastLat {
		return fmt.Errorf("%w: south-west latitude above north-east latitude", ErrInvalidBounds)
	}
	if b.SouthWestLng > b.NorthEastLng {
		return fmt.Errorf("%w: south-west longitude east of north-east longitude", ErrInvalidBounds)
	}
	return nil
}

// Resolve parses and validates the raw corners. Presence is checked for all four
// parameters before any of them is parsed.
func Resolve(raw RawBounds) (BoundingBox, error) {
	fields := []struct {
		name  string
		value string
	}{
		{ParamNorthEastLat, raw.NorthEastLat},
		{ParamNorthEastLng, raw.NorthEastLng},
		{ParamSouthWestLat, raw.SouthWestLat},
		{ParamSouthWestLng, raw.SouthWestLng},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return BoundingBox{}, fmt.Errorf("%w: %s", ErrMissingParameter, f.name)
		}
	}

	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f.value), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return BoundingBox{}, fmt.Errorf("%w: %s=%q", ErrInvalidNumber, f.name, f.value)
		}
		values[i] = v
	}

	box := BoundingBox{
		NorthEastLat: values[0],
		NorthEastLng: values[1],
		SouthWestLat: values[2],
		SouthWestLng: values[3],
	}
	if err := box.Validate(); err != nil {
		return BoundingBox{}, err
	}
	return box, nil
}
