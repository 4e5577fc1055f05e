// Copyright 2025 The Geolink Authors
// SPDX-License-Identifier: Apache-2.0

package places

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// validVisibilities contains the allowed visibility policies.
var validVisibilities = map[string]bool{
	VisibilityPrivate: true,
	VisibilityFriends: true,
	VisibilityPublic:  true,
}

var timeOfDayPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// validatePlace verifies that a Place has valid data before it is
// persisted.
func validatePlace(p *Place) error {
	if p == nil {
		return errors.New("place can't be nil")
	}

	if strings.TrimSpace(p.Name) == "" {
		return errors.New("name can't be empty")
	}

	if len(p.Name) > 500 {
		return errors.New("name too long (maximum 500 characters)")
	}

	if utf8.RuneCountInString(p.Emoji) > 8 {
		return errors.New("emoji too long (maximum 8 runes)")
	}

	if p.Point == nil {
		return errors.New("point can't be null")
	}

	if !p.Point.Valid() {
		return fmt.Errorf("coordinates out of range: %s", p.Point)
	}

	if p.Visibility != "" && !validVisibilities[p.Visibility] {
		return fmt.Errorf("invalid visibility: %s", p.Visibility)
	}

	if len(p.Notes) > 1000 {
		return errors.New("notes too long (maximum 1000 characters)")
	}

	for _, w := range p.Windows {
		if err := validateWindow(w); err != nil {
			return fmt.Errorf("invalid time window: %w", err)
		}
	}

	return nil
}

func validateWindow(w TimeWindow) error {
	if w.Weekday < 0 || w.Weekday > 6 {
		return fmt.Errorf("weekday out of range: %d", w.Weekday)
	}

	if !timeOfDayPattern.MatchString(w.Start) {
		return fmt.Errorf("start is not HH:MM: %q", w.Start)
	}

	if !timeOfDayPattern.MatchString(w.End) {
		return fmt.Errorf("end is not HH:MM: %q", w.End)
	}

	// HH:MM compares correctly as a string
	if w.Start >= w.End {
		return fmt.Errorf("window is empty: %s >= %s", w.Start, w.End)
	}

	return nil
}

// sanitizeName cleans and normalizes a place name.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)

	if len(name) > 500 {
		name = name[:500]
	}

	return name
}
