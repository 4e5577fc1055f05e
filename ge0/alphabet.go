// Copyright 2025 The Geolink Authors
// SPDX-License-Identifier: Apache-2.0

// Package ge0 implements the GE0 map-link format used by comaps.at,
// ge0.me and omaps.app sharing URLs: a base64-like token carrying a
// zoom level plus a bit-interleaved fixed-point coordinate.
package ge0

import "fmt"

// alphabet is the 64-symbol table of the GE0 format. It looks like
// URL-safe base64 but uses its own ordinal mapping, so the standard
// encoding/base64 package cannot be used. Kept as data so the encoder
// and decoder share a single source of truth.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// ordinals maps a byte to its zero-based position in the alphabet,
// or -1 when the byte is not part of it.
var ordinals [256]int8

func init() {
	for i := range ordinals {
		ordinals[i] = -1
	}

	for i := 0; i < len(alphabet); i++ {
		ordinals[alphabet[i]] = int8(i)
	}
}

// decodeToken converts an encoded token to its raw ordinal bytes. Any
// character outside the alphabet fails the whole token; there is no
// partial decode.
func decodeToken(token string) ([]byte, error) {
	out := make([]byte, len(token))

	for i := 0; i < len(token); i++ {
		ord := ordinals[token[i]]
		if ord < 0 {
			return nil, fmt.Errorf("invalid character %q at position %d", token[i], i)
		}

		out[i] = byte(ord)
	}

	return out, nil
}
