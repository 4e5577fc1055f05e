// Copyright 2025 The Geolink Authors
// SPDX-License-Identifier: Apache-2.0

// Package geocode enriches decoded locations with reverse-geocoded
// addresses.
package geocode

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// GeocodingError represents geocoding specific failures.
type GeocodingError struct {
	Type    ErrorType
	Message string
	Err     error
}

// ErrorType defines the kinds of geocoding errors.
type ErrorType int

const (
	// ErrorTypeUnknown unknown error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeRateLimit rate limit reached.
	ErrorTypeRateLimit
	// ErrorTypeQuotaExceeded quota exceeded.
	ErrorTypeQuotaExceeded
	// ErrorTypeTimeout connection timeout.
	ErrorTypeTimeout
	// ErrorTypeNotFound no address at the location.
	ErrorTypeNotFound
	// ErrorTypeInvalidRequest invalid request.
	ErrorTypeInvalidRequest
	// ErrorTypeNetworkError network error.
	ErrorTypeNetworkError
)

func (e *GeocodingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *GeocodingError) Unwrap() error {
	return e.Err
}

// IsRateLimitError verifies whether the error is a rate limit.
func IsRateLimitError(err error) bool {
	var geoErr *GeocodingError
	if errors.As(err, &geoErr) {
		return geoErr.Type == ErrorTypeRateLimit
	}

	// Detect by common error message
	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "429")
}

// IsQuotaExceededError verifies whether the error is an exceeded quota.
func IsQuotaExceededError(err error) bool {
	var geoErr *GeocodingError
	if errors.As(err, &geoErr) {
		return geoErr.Type == ErrorTypeQuotaExceeded
	}

	// Detect by common error message (Google Maps)
	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "over_query_limit") ||
		strings.Contains(errStr, "quota exceeded")
}

// IsTimeoutError verifies whether the error is a timeout.
func IsTimeoutError(err error) bool {
	var geoErr *GeocodingError
	if errors.As(err, &geoErr) {
		return geoErr.Type == ErrorTypeTimeout
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// ClassifyHTTPError classifies an HTTP error into a geocoding error type.
func ClassifyHTTPError(statusCode int, _ string) *GeocodingError {
	switch statusCode {
	case http.StatusTooManyRequests: // 429
		return &GeocodingError{
			Type:    ErrorTypeRateLimit,
			Message: "rate limit reached",
		}
	case http.StatusForbidden: // 403
		return &GeocodingError{
			Type:    ErrorTypeQuotaExceeded,
			Message: "quota exceeded or access denied",
		}
	case http.StatusBadRequest: // 400
		return &GeocodingError{
			Type:    ErrorTypeInvalidRequest,
			Message: "invalid request",
		}
	case http.StatusNotFound: // 404
		return &GeocodingError{
			Type:    ErrorTypeNotFound,
			Message: "location not found",
		}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return &GeocodingError{
			Type:    ErrorTypeNetworkError,
			Message: fmt.Sprintf("service unavailable (code %d)", statusCode),
		}
	default:
		return &GeocodingError{
			Type:    ErrorTypeUnknown,
			Message: fmt.Sprintf("HTTP error %d", statusCode),
		}
	}
}
