// Package geo converts TourAPI fixed-point map coordinates into latitude/longitude.
package geo

import (
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Scale is the fixed-point divisor of the upstream mapx/mapy encoding.
const Scale = 10_000_000

// Bounding box of the Korean peninsula; anything outside is treated as bad upstream data.
const (
	MinLng = 124.0
	MaxLng = 132.0
	MinLat = 33.0
	MaxLat = 43.0
)

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Fallback is Seoul City Hall, used whenever the upstream pair is unusable.
var Fallback = Point{Lat: 37.5665, Lng: 126.9780}

// ToGeographic converts a mapx/mapy pair. It never fails: missing, non-numeric, zero
// or out-of-bounds input yields Fallback.
func ToGeographic(mapX, mapY string) Point {
	x, okX := parse(mapX)
	y, okY := parse(mapY)
	if !okX || !okY {
		log.Warnf("⚠️ Invalid coordinates (mapx=%q, mapy=%q), using fallback", mapX, mapY)
		return Fallback
	}

	p := Point{Lat: y / Scale, Lng: x / Scale}
	if !InBounds(p) {
		log.Warnf("⚠️ Coordinates out of bounds (lat=%f, lng=%f), using fallback", p.Lat, p.Lng)
		return Fallback
	}
	return p
}

// InBounds reports whether p lies inside the Korean bounding box.
func InBounds(p Point) bool {
	return p.Lng >= MinLng && p.Lng <= MaxLng && p.Lat >= MinLat && p.Lat <= MaxLat
}

func parse(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return v, true
}
