// Copyright 2025 The Geolink Authors
// SPDX-License-Identifier: Apache-2.0

// Package spatial holds the WGS84 primitives shared by the link codec
// and the place store.
package spatial

import (
	"database/sql/driver"
	"fmt"
	"math"
)

// earthRadius is the mean Earth radius in meters.
const earthRadius = 6371e3

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// String renders the point as WKT, longitude first.
func (p Point) String() string {
	return fmt.Sprintf("POINT(%f %f)", p.Lng, p.Lat)
}

// Valid reports whether the point lies within WGS84 bounds.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Value implements driver.Valuer, storing the point as WKT.
func (p Point) Value() (driver.Value, error) {
	return p.String(), nil
}

// Scan implements sql.Scanner for the two shapes DuckDB produces for a
// POINT_2D column: the {x, y} struct map of a plain select, and WKT
// text when the query goes through ST_AsText.
func (p *Point) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*p = Point{}

		return nil
	case map[string]any:
		x, okX := v["x"].(float64)
		y, okY := v["y"].(float64)

		if !okX || !okY {
			return fmt.Errorf("spatial: point struct without x/y floats: %+v", v)
		}

		p.Lng, p.Lat = x, y

		return nil
	case []byte:
		_, err := fmt.Sscanf(string(v), "POINT (%f %f)", &p.Lng, &p.Lat)

		return err
	default:
		return fmt.Errorf("spatial: cannot scan %T into a Point", value)
	}
}

// HaversineDistance returns the great-circle distance to other in
// meters.
func (p *Point) HaversineDistance(other *Point) float64 {
	lat1 := p.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := lat2 - lat1
	dLng := (other.Lng - p.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)

	return 2 * earthRadius * math.Asin(math.Min(1, math.Sqrt(h)))
}
