// Copyright 2025 The Geolink Authors
// SPDX-License-Identifier: Apache-2.0

// Package gpx converts between GPX documents and saved places.
package gpx

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/nahuelc/geolink/places"
)

const (
	gpxVersion = "1.1"
	gpxCreator = "geolink"
	gpxXmlns   = "http://www.topografix.com/GPX/1/1"
)

// Waypoint is a GPX wpt or trkpt element. Elevation and time are kept
// as raw strings so they pass through a conversion untouched.
type Waypoint struct {
	Lat  float64 `xml:"lat,attr"`
	Lon  float64 `xml:"lon,attr"`
	Ele  *string `xml:"ele,omitempty"`
	Time *string `xml:"time,omitempty"`
	Name string  `xml:"name,omitempty"`
}

type trackSegment struct {
	Points []Waypoint `xml:"trkpt"`
}

type track struct {
	Segments []trackSegment `xml:"trkseg"`
}

type gpxFile struct {
	XMLName   xml.Name   `xml:"gpx"`
	Version   string     `xml:"version,attr"`
	Creator   string     `xml:"creator,attr"`
	Xmlns     string     `xml:"xmlns,attr"`
	Waypoints []Waypoint `xml:"wpt"`
	Tracks    []track    `xml:"trk"`
}

// ConvertTracksToWaypoints reads a GPX document and writes a new one
// where every track point became a standalone waypoint named WPT000,
// WPT001 and so on. Elevation and time carry over when present.
// Returns the number of waypoints produced.
func ConvertTracksToWaypoints(r io.Reader, w io.Writer) (int, error) {
	var in gpxFile

	if err := xml.NewDecoder(r).Decode(&in); err != nil {
		return 0, fmt.Errorf("parsing GPX: %w", err)
	}

	out := gpxFile{
		Version: gpxVersion,
		Creator: gpxCreator,
		Xmlns:   gpxXmlns,
	}

	count := 0

	for _, trk := range in.Tracks {
		for _, seg := range trk.Segments {
			for _, pt := range seg.Points {
				wpt := Waypoint{
					Lat:  pt.Lat,
					Lon:  pt.Lon,
					Ele:  pt.Ele,
					Time: pt.Time,
					Name: fmt.Sprintf("WPT%03d", count),
				}

				out.Waypoints = append(out.Waypoints, wpt)
				count++
			}
		}
	}

	if err := write(&out, w); err != nil {
		return 0, err
	}

	return count, nil
}

// ExportPlaces writes saved places as GPX waypoints.
func ExportPlaces(placeList []*places.Place, w io.Writer) error {
	out := gpxFile{
		Version: gpxVersion,
		Creator: gpxCreator,
		Xmlns:   gpxXmlns,
	}

	for _, p := range placeList {
		name := strings.TrimSpace(p.Emoji + " " + p.Name)

		out.Waypoints = append(out.Waypoints, Waypoint{
			Lat:  p.Point.Lat,
			Lon:  p.Point.Lng,
			Name: name,
		})
	}

	return write(&out, w)
}

func write(doc *gpxFile, w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("writing GPX: %w", err)
	}

	// trailing newline after the closing tag
	_, err := io.WriteString(w, "\n")

	return err
}
