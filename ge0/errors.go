// Copyright 2025 The Geolink Authors
// SPDX-License-Identifier: Apache-2.0

package ge0

import (
	"errors"
	"fmt"
)

// DecodeError reports why a GE0 link could not be decoded.
type DecodeError struct {
	Type    ErrorType
	Message string
	Err     error
}

// ErrorType classifies decoding failures.
type ErrorType int

const (
	// ErrorTypeUnknown unclassified failure.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeInvalidHost the URL host is not a known GE0 host.
	ErrorTypeInvalidHost
	// ErrorTypeEmptyToken the URL carries no encoded token.
	ErrorTypeEmptyToken
	// ErrorTypeInvalidToken the token contains a character outside the alphabet.
	ErrorTypeInvalidToken
)

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func isType(err error, t ErrorType) bool {
	var decErr *DecodeError
	if errors.As(err, &decErr) {
		return decErr.Type == t
	}

	return false
}

// IsInvalidHost verifies the error is a host rejection.
func IsInvalidHost(err error) bool {
	return isType(err, ErrorTypeInvalidHost)
}

// IsEmptyToken verifies the error is a missing or zero-length token.
func IsEmptyToken(err error) bool {
	return isType(err, ErrorTypeEmptyToken)
}

// IsInvalidToken verifies the error is a malformed token.
func IsInvalidToken(err error) bool {
	return isType(err, ErrorTypeInvalidToken)
}
