// Copyright 2025 The Geolink Authors
// SPDX-License-Identifier: Apache-2.0

package ge0

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	// urlPattern locates the first GE0 URL embedded in free text.
	urlPattern = regexp.MustCompile(`https?://(comaps\.at|omaps\.app|ge0\.me)/\S+`)

	// addressPattern accepts both "123 Main Street" and
	// "Main Street, 123" orderings of a street-suffix address.
	addressPattern = regexp.MustCompile(
		`\d+\s+[A-Za-z\s]+?(Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln|Way)\b` +
			`|[A-Za-z][A-Za-z\s]*(Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln|Way),?\s*\d+`)

	// phonePattern is a loose NANP phone number. The country prefix is
	// grouped so a bare separator can't start a match and drag leading
	// whitespace into it.
	phonePattern = regexp.MustCompile(`(\+?1[-.\s]?)?\(?(\d{3})\)?[-.\s]?(\d{3})[-.\s]?(\d{4})`)
)

// SharedLocation is a location extracted from shared free text: the
// decoded link plus whatever name, address and phone the surrounding
// text yielded. Address and Phone are best effort and may be empty.
type SharedLocation struct {
	Location

	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	URL     string `json:"url"`
}

// ParseSharedText scans arbitrary shared text for a GE0 URL and
// decodes it, opportunistically picking up a human-readable name,
// address and phone from the surrounding text. Returns nil when no
// URL is found or the one found does not decode; missing name,
// address or phone never block a result.
func ParseSharedText(text string) *SharedLocation {
	matched := urlPattern.FindString(text)
	if matched == "" {
		return nil
	}

	loc, err := Decode(matched)
	if err != nil {
		return nil
	}

	if name := candidateName(text); name != "" {
		loc.Name = name
	}

	return &SharedLocation{
		Location: *loc,
		Address:  addressPattern.FindString(text),
		Phone:    phonePattern.FindString(text),
		URL:      matched,
	}
}

// candidateName returns the first line of the text that looks like a
// place name: not the share preamble, not a URL, phone or e-mail
// line, and longer than two characters.
func candidateName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || len(line) <= 2 {
			continue
		}

		if strings.HasPrefix(line, "Check out") ||
			strings.Contains(line, "http") ||
			strings.Contains(line, "+1-") ||
			strings.Contains(line, "@") {
			continue
		}

		return norm.NFC.String(line)
	}

	return ""
}
