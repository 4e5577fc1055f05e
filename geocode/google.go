// Copyright 2025 The Geolink Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/nahuelc/geolink/spatial"
	"github.com/nahuelc/geolink/utils/httputils"
)

// Result is a reverse-geocoded address for a point.
type Result struct {
	Address    string `json:"address"`
	Confidence string `json:"confidence"` // high, medium, low
	Provider   string `json:"provider"`
}

// ReverseGeocoder resolves a point to a human readable address.
type ReverseGeocoder interface {
	ReverseGeocode(point *spatial.Point) (*Result, error)
}

// GoogleMapsGeocoder uses the Google Maps Geocoding API.
type GoogleMapsGeocoder struct {
	apiKey     string
	httpClient *http.Client
}

// NewGoogleMapsGeocoder creates a new Google Maps reverse geocoder.
// Setting GEOLINK_HTTP_TRACE dumps the API traffic to stderr.
func NewGoogleMapsGeocoder(apiKey, userAgent string) *GoogleMapsGeocoder {
	transport := http.RoundTripper(http.DefaultTransport)

	if os.Getenv("GEOLINK_HTTP_TRACE") != "" {
		transport = &httputils.LoggingRoundTripper{
			Transport: transport,
			Writer:    os.Stderr,
			DumpBody:  true,
		}
	}

	return &GoogleMapsGeocoder{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &httputils.AppendRequestHeadersRoundTripper{
				Transport: transport,
				Headers:   map[string]string{"User-Agent": userAgent},
			},
		},
	}
}

type googleMapsResponse struct {
	Results []struct {
		Geometry struct {
			LocationType string `json:"location_type"` // ROOFTOP, RANGE_INTERPOLATED, GEOMETRIC_CENTER, APPROXIMATE
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status string `json:"status"` // OK, ZERO_RESULTS, etc.
}

// ReverseGeocode resolves the point through the Google Maps API.
func (g *GoogleMapsGeocoder) ReverseGeocode(point *spatial.Point) (*Result, error) {
	params := url.Values{}
	params.Set("latlng", fmt.Sprintf("%f,%f", point.Lat, point.Lng))
	params.Set("key", g.apiKey)

	reqURL := "https://maps.googleapis.com/maps/api/geocode/json?" + params.Encode()

	resp, err := g.httpClient.Get(reqURL)
	if err != nil {
		return nil, fmt.Errorf("reverse geocoding request failed: %w", err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, ClassifyHTTPError(resp.StatusCode, "")
	}

	var gmResp googleMapsResponse
	if err := json.NewDecoder(resp.Body).Decode(&gmResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if gmResp.Status == "ZERO_RESULTS" || (gmResp.Status == "OK" && len(gmResp.Results) == 0) {
		return nil, &GeocodingError{
			Type:    ErrorTypeNotFound,
			Message: fmt.Sprintf("no address found for %s", point),
		}
	}

	if gmResp.Status != "OK" {
		return nil, fmt.Errorf("google maps status: %s", gmResp.Status)
	}

	result := gmResp.Results[0]

	// Determine confidence based on location_type
	confidence := "low"

	switch result.Geometry.LocationType {
	case "ROOFTOP":
		confidence = "high"
	case "RANGE_INTERPOLATED":
		confidence = "high"
	case "GEOMETRIC_CENTER":
		confidence = "medium"
	case "APPROXIMATE":
		confidence = "low"
	}

	return &Result{
		Address:    result.FormattedAddress,
		Confidence: confidence,
		Provider:   "google_maps",
	}, nil
}
