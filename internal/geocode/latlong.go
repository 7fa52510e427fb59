package geocode

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"soiagi/pkg/contracts/domain"
)

// ErrMalformedLatLong is returned for a combined coordinate string that is
// not two decimal numbers separated by a comma.
var ErrMalformedLatLong = errors.New("malformed latlong")

// SplitLatLong splits "lat, long" (with or without the space) into a
// Coordinate. Both halves must parse as decimals within range.
func SplitLatLong(s string) (domain.Coordinate, error) {
	lat, long, found := strings.Cut(s, ",")
	if !found {
		return domain.Coordinate{}, fmt.Errorf("%w: %q has no comma", ErrMalformedLatLong, s)
	}
	lat, long = strings.TrimSpace(lat), strings.TrimSpace(long)

	la, err := strconv.ParseFloat(lat, 64)
	if err != nil || la < -90 || la > 90 {
		return domain.Coordinate{}, fmt.Errorf("%w: latitude %q", ErrMalformedLatLong, lat)
	}
	lo, err := strconv.ParseFloat(long, 64)
	if err != nil || lo < -180 || lo > 180 {
		return domain.Coordinate{}, fmt.Errorf("%w: longitude %q", ErrMalformedLatLong, long)
	}
	return domain.Coordinate{Latitude: lat, Longitude: long}, nil
}
