// Copyright 2025 The Geolink Authors
// SPDX-License-Identifier: Apache-2.0

package ge0

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/nahuelc/geolink/spatial"
)

const (
	// maxCoordBits is the fixed-point resolution of one axis.
	maxCoordBits = 31
	// maxPointBytes is the number of payload bytes after the zoom byte.
	// Each payload byte contributes 3 bits to each axis.
	maxPointBytes = 10
)

// knownHosts are the GE0 hosts. Matching is exact and case sensitive,
// no subdomains.
var knownHosts = map[string]bool{
	"comaps.at": true,
	"ge0.me":    true,
	"omaps.app": true,
}

// Location is a decoded GE0 link.
type Location struct {
	Point spatial.Point `json:"point"`
	Zoom  int           `json:"zoom"`
	Name  string        `json:"name,omitempty"`
}

// Decode parses a GE0 sharing URL into coordinates, zoom level and an
// optional name. The first path segment is the encoded token; the
// second, when present, is the name with underscores standing in for
// spaces.
func Decode(rawURL string) (*Location, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &DecodeError{
			Type:    ErrorTypeInvalidHost,
			Message: "parsing URL",
			Err:     err,
		}
	}

	if !knownHosts[u.Host] {
		return nil, &DecodeError{
			Type:    ErrorTypeInvalidHost,
			Message: fmt.Sprintf("unknown host %q", u.Host),
		}
	}

	var segments []string

	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}

	if len(segments) == 0 {
		return nil, &DecodeError{
			Type:    ErrorTypeEmptyToken,
			Message: "URL has no encoded token",
		}
	}

	name := ""
	if len(segments) > 1 {
		name = strings.ReplaceAll(segments[1], "_", " ")
	}

	point, zoom, err := decodePoint(segments[0])
	if err != nil {
		return nil, err
	}

	return &Location{Point: *point, Zoom: zoom, Name: name}, nil
}

// decodePoint reconstructs the coordinate and zoom from the token.
func decodePoint(token string) (*spatial.Point, int, error) {
	bytes, err := decodeToken(token)
	if err != nil {
		return nil, 0, &DecodeError{
			Type:    ErrorTypeInvalidToken,
			Message: "decoding token",
			Err:     err,
		}
	}

	if len(bytes) == 0 {
		return nil, 0, &DecodeError{
			Type:    ErrorTypeEmptyToken,
			Message: "token is empty",
		}
	}

	zoom := int(math.Round(float64(bytes[0])/4.0 + 4.0))

	n := len(bytes) - 1
	if n > maxPointBytes {
		// Extra payload is ignored, links never carry more precision
		// than maxCoordBits per axis.
		n = maxPointBytes
	}

	var lat, lng int64

	for i := 0; i < n; i++ {
		shift := maxCoordBits - 3 - i*3
		if shift < 0 {
			break
		}

		a := bytes[i+1]
		latBits := int64(a>>5&1)<<2 | int64(a>>3&1)<<1 | int64(a>>1&1)
		lngBits := int64(a>>4&1)<<2 | int64(a>>2&1)<<1 | int64(a&1)

		lat |= latBits << shift
		lng |= lngBits << shift
	}

	// Short tokens leave low-order bits undetermined; place the fix at
	// the center of the implied grid cell rather than its corner.
	if exp := 3*(maxPointBytes-n) - 1; exp >= 0 {
		half := int64(1) << exp
		lat += half
		lng += half
	}

	// The denominators differ on purpose: latitude scales over 2^31-1
	// while longitude scales over 2^31. This asymmetry is part of the
	// wire format.
	point := &spatial.Point{
		Lat: round5(float64(lat)/float64(int64(1)<<maxCoordBits-1)*180 - 90),
		Lng: round5(float64(lng)/float64(int64(1)<<maxCoordBits)*360 - 180),
	}

	return point, zoom, nil
}

// round5 rounds to 5 decimal places, about 1.1m of precision.
func round5(v float64) float64 {
	return math.Round(v*1e5) / 1e5
}
