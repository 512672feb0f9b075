// Package geo holds the geographic primitives shared by the directory, the
// map surface and the itinerary client, plus the geolocation provider.
package geo

import (
	"fmt"
	"math"
)

// LatLng is a WGS 84 coordinate in decimal degrees.
type LatLng struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// String renders the coordinate with five decimals (about one metre).
func (p LatLng) String() string {
	return fmt.Sprintf("%.5f, %.5f", p.Lat, p.Lng)
}

// Valid reports whether the coordinate lies on the globe.
func (p LatLng) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Bounds is an axis-aligned lat/lng box given by its south-west and
// north-east corners.
type Bounds struct {
	SouthWest LatLng `json:"south_west" yaml:"south_west"`
	NorthEast LatLng `json:"north_east" yaml:"north_east"`
}

// NewBounds builds a box from two opposite corners in any order.
func NewBounds(a, b LatLng) Bounds {
	return Bounds{
		SouthWest: LatLng{Lat: math.Min(a.Lat, b.Lat), Lng: math.Min(a.Lng, b.Lng)},
		NorthEast: LatLng{Lat: math.Max(a.Lat, b.Lat), Lng: math.Max(a.Lng, b.Lng)},
	}
}

// Valid reports whether both corners are valid and ordered.
func (b Bounds) Valid() bool {
	return b.SouthWest.Valid() && b.NorthEast.Valid() &&
		b.SouthWest.Lat < b.NorthEast.Lat && b.SouthWest.Lng < b.NorthEast.Lng
}

// Contains reports whether p lies inside the box, edges included.
func (b Bounds) Contains(p LatLng) bool {
	return p.Lat >= b.SouthWest.Lat && p.Lat <= b.NorthEast.Lat &&
		p.Lng >= b.SouthWest.Lng && p.Lng <= b.NorthEast.Lng
}

// Center returns the midpoint of the box.
func (b Bounds) Center() LatLng {
	return LatLng{
		Lat: (b.SouthWest.Lat + b.NorthEast.Lat) / 2,
		Lng: (b.SouthWest.Lng + b.NorthEast.Lng) / 2,
	}
}

// Span returns the height and width of the box in degrees.
func (b Bounds) Span() (lat, lng float64) {
	return b.NorthEast.Lat - b.SouthWest.Lat, b.NorthEast.Lng - b.SouthWest.Lng
}

// Clamp moves p to the nearest point inside the box.
func (b Bounds) Clamp(p LatLng) LatLng {
	return LatLng{
		Lat: clamp(p.Lat, b.SouthWest.Lat, b.NorthEast.Lat),
		Lng: clamp(p.Lng, b.SouthWest.Lng, b.NorthEast.Lng),
	}
}

// ClampView returns a center such that a viewport of the given half-spans
// stays inside the box. When the viewport is larger than the box along an
// axis the box center is used for that axis.
func (b Bounds) ClampView(center LatLng, halfLat, halfLng float64) LatLng {
	out := center
	if b.NorthEast.Lat-b.SouthWest.Lat <= 2*halfLat {
		out.Lat = (b.SouthWest.Lat + b.NorthEast.Lat) / 2
	} else {
		out.Lat = clamp(center.Lat, b.SouthWest.Lat+halfLat, b.NorthEast.Lat-halfLat)
	}
	if b.NorthEast.Lng-b.SouthWest.Lng <= 2*halfLng {
		out.Lng = (b.SouthWest.Lng + b.NorthEast.Lng) / 2
	} else {
		out.Lng = clamp(center.Lng, b.SouthWest.Lng+halfLng, b.NorthEast.Lng-halfLng)
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

const earthRadiusKm = 6371.0

// DistanceKm is the great-circle distance between two points.
func DistanceKm(a, b LatLng) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}
