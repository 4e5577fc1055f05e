// Copyright 2025 The Geolink Authors
// SPDX-License-Identifier: Apache-2.0

package ge0

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseSharedText(t *testing.T) {
	text := "Check out https://comaps.at/0pEr3T4p0T/JRA_Bike_Shop\n" +
		"JRA Bike Shop\n" +
		"123 Main Street\n" +
		"+1-206-555-0100"

	shared := ParseSharedText(text)
	if shared == nil {
		t.Fatal("ParseSharedText() = nil, want a location")
	}

	if shared.URL != "https://comaps.at/0pEr3T4p0T/JRA_Bike_Shop" {
		t.Errorf("URL = %q", shared.URL)
	}

	if math.Abs(shared.Point.Lat-47.69084) > 1e-5 {
		t.Errorf("Lat = %v, want 47.69084", shared.Point.Lat)
	}

	if math.Abs(shared.Point.Lng - -122.37089) > 1e-4 {
		t.Errorf("Lng = %v, want -122.37089", shared.Point.Lng)
	}

	if shared.Zoom != 17 {
		t.Errorf("Zoom = %d, want 17", shared.Zoom)
	}

	// "Check out ..." is skipped, the URL's own name is overridden by
	// the first surviving line.
	if shared.Name != "JRA Bike Shop" {
		t.Errorf("Name = %q, want %q", shared.Name, "JRA Bike Shop")
	}

	if shared.Address != "123 Main Street" {
		t.Errorf("Address = %q, want %q", shared.Address, "123 Main Street")
	}

	if shared.Phone != "+1-206-555-0100" {
		t.Errorf("Phone = %q, want %q", shared.Phone, "+1-206-555-0100")
	}
}

func TestParseSharedTextNone(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{
			name: "no URL at all",
			text: "see you at the bike shop tomorrow",
		},
		{
			name: "URL from another service",
			text: "https://maps.google.com/0pEr3T4p0T",
		},
		{
			name: "GE0 URL that does not decode",
			text: "look at https://comaps.at/0pEr3T4p0* broken link",
		},
		{
			name: "empty text",
			text: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if shared := ParseSharedText(tt.text); shared != nil {
				t.Errorf("ParseSharedText() = %+v, want nil", shared)
			}
		})
	}
}

func TestParseSharedTextNameFallsBackToURL(t *testing.T) {
	// Every line is disqualified, the name from the link path wins.
	text := "Check out this spot\nhttps://ge0.me/0pEr3T4p0T/Test_Location\nok"

	shared := ParseSharedText(text)
	if shared == nil {
		t.Fatal("ParseSharedText() = nil, want a location")
	}

	if shared.Name != "Test Location" {
		t.Errorf("Name = %q, want %q", shared.Name, "Test Location")
	}
}

func TestParseSharedTextFirstURLWins(t *testing.T) {
	text := "https://comaps.at/0pEr3T4p0T first\nhttps://ge0.me/AAAAAAAAAAA second"

	shared := ParseSharedText(text)
	if shared == nil {
		t.Fatal("ParseSharedText() = nil, want a location")
	}

	if shared.URL != "https://comaps.at/0pEr3T4p0T" {
		t.Errorf("URL = %q, want the first match", shared.URL)
	}
}

func TestCandidateName(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "first qualifying line",
			text: "Check out this\nhttp://foo\nGreat Coffee\nsecond line",
			want: "Great Coffee",
		},
		{
			name: "phone and email lines are skipped",
			text: "+1-206-555-0100\nfoo@example.com\nThe Shop",
			want: "The Shop",
		},
		{
			name: "short lines are skipped",
			text: "ok\nit\nMuseum",
			want: "Museum",
		},
		{
			name: "nothing qualifies",
			text: "ok\nhttp://x\n@a",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := candidateName(tt.text); got != tt.want {
				t.Errorf("candidateName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAddressPattern(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "number first",
			text: "meet me at 123 Main Street please",
			want: "123 Main Street",
		},
		{
			name: "abbreviated suffix",
			text: "400 Pine St is the spot",
			want: "400 Pine St",
		},
		{
			name: "number last",
			text: "Main Street, 123",
			want: "Main Street, 123",
		},
		{
			name: "no address",
			text: "no street here",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := addressPattern.FindString(tt.text); got != tt.want {
				t.Errorf("FindString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPhonePattern(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "full NANP with country code",
			text: "call +1-206-555-0100 today",
			want: "+1-206-555-0100",
		},
		{
			name: "parenthesised area code",
			text: "call (206) 555-0100 today",
			want: "(206) 555-0100",
		},
		{
			name: "country code with parenthesised area code",
			text: "call +1 (206) 555-0100 today",
			want: "+1 (206) 555-0100",
		},
		{
			name: "bare country code",
			text: "1-206-555-0100",
			want: "1-206-555-0100",
		},
		{
			name: "dotted",
			text: "206.555.0100",
			want: "206.555.0100",
		},
		{
			name: "no phone",
			text: "no number here",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, phonePattern.FindString(tt.text)); diff != "" {
				t.Errorf("FindString() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
