// Copyright 2025 The Geolink Authors
// SPDX-License-Identifier: Apache-2.0

// Package places persists user-defined places imported from GE0 links.
package places

import (
	"fmt"
	"time"

	"github.com/nahuelc/geolink/spatial"
	"github.com/uber/h3-go/v4"
)

// Visibility policies for a saved place.
const (
	VisibilityPrivate = "private"
	VisibilityFriends = "friends"
	VisibilityPublic  = "public"
)

// TimeWindow is a weekly recurring interval during which a place is
// considered active, e.g. opening hours.
type TimeWindow struct {
	Weekday time.Weekday `json:"weekday"`
	Start   string       `json:"start"` // HH:MM
	End     string       `json:"end"`   // HH:MM
}

// Place is a saved location: a point plus presentation metadata and
// optional weekly time windows.
type Place struct {
	ID         int            `json:"id"`
	Emoji      string         `json:"emoji"`
	Name       string         `json:"name"`
	Point      *spatial.Point `json:"point"`
	Visibility string         `json:"visibility"` // private, friends, public
	Notes      string         `json:"notes"`
	Windows    []TimeWindow   `json:"windows,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	H3Res1     int64          `json:"-"`
	H3Res2     int64          `json:"-"`
	H3Res3     int64          `json:"-"`
	H3Res4     int64          `json:"-"`
	H3Res5     int64          `json:"-"`
	H3Res6     int64          `json:"-"`
	H3Res7     int64          `json:"-"`
	H3Res8     int64          `json:"-"`
}

func (place *Place) computeH3() error {
	if place.Point != nil {
		latLng := h3.NewLatLng(place.Point.Lat, place.Point.Lng)
		for res := 1; res <= 8; res++ {
			cell, err := h3.LatLngToCell(latLng, res)
			if err != nil {
				return fmt.Errorf("error converting to h3 cell at res %d: %w", res, err)
			}

			switch res {
			case 1:
				place.H3Res1 = int64(cell)
			case 2:
				place.H3Res2 = int64(cell)
			case 3:
				place.H3Res3 = int64(cell)
			case 4:
				place.H3Res4 = int64(cell)
			case 5:
				place.H3Res5 = int64(cell)
			case 6:
				place.H3Res6 = int64(cell)
			case 7:
				place.H3Res7 = int64(cell)
			case 8:
				place.H3Res8 = int64(cell)
			}
		}
	} else {
		place.H3Res1 = 0
		place.H3Res2 = 0
		place.H3Res3 = 0
		place.H3Res4 = 0
		place.H3Res5 = 0
		place.H3Res6 = 0
		place.H3Res7 = 0
		place.H3Res8 = 0
	}

	return nil
}
