// Copyright 2025 The Geolink Authors
// SPDX-License-Identifier: Apache-2.0

package ge0

import (
	"math"
	"strings"
)

// canonicalHost is the host used when producing links. Any of the
// known hosts decodes them back.
const canonicalHost = "comaps.at"

// Encode builds a GE0 sharing URL for a coordinate, zoom level and
// optional name. It is the exact inverse of Decode: full-precision
// tokens of one zoom byte plus ten payload bytes, with the same
// asymmetric latitude/longitude scaling.
func Encode(lat, lng float64, zoom int, name string) string {
	u := "https://" + canonicalHost + "/" + EncodeToken(lat, lng, zoom)
	if name != "" {
		u += "/" + strings.ReplaceAll(name, " ", "_")
	}

	return u
}

// EncodeToken packs the coordinate and zoom into a bare token.
func EncodeToken(lat, lng float64, zoom int) string {
	zoomByte := (zoom - 4) * 4
	if zoomByte < 0 {
		zoomByte = 0
	} else if zoomByte > 63 {
		zoomByte = 63
	}

	latInt := packCoord((lat + 90) / 180 * float64(int64(1)<<maxCoordBits-1))
	lngInt := packCoord((lng + 180) / 360 * float64(int64(1)<<maxCoordBits))

	var sb strings.Builder

	sb.WriteByte(alphabet[zoomByte])

	for i := 0; i < maxPointBytes; i++ {
		shift := maxCoordBits - 3 - i*3

		latBits := latInt >> shift & 7
		lngBits := lngInt >> shift & 7

		b := latBits>>2&1<<5 | lngBits>>2&1<<4 |
			latBits>>1&1<<3 | lngBits>>1&1<<2 |
			latBits&1<<1 | lngBits&1

		sb.WriteByte(alphabet[b])
	}

	return sb.String()
}

// packCoord rounds and clamps a scaled coordinate to the 31-bit range.
func packCoord(v float64) int64 {
	i := int64(math.Round(v))
	if i < 0 {
		i = 0
	} else if i > int64(1)<<maxCoordBits-1 {
		i = int64(1)<<maxCoordBits - 1
	}

	return i
}
