// Copyright 2025 The Geolink Authors
// SPDX-License-Identifier: Apache-2.0

// Package htmlutils extracts plain text from HTML share payloads so
// the GE0 free-text scanner can run over them.
package htmlutils

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// blockElements are elements whose boundaries become line breaks in
// the extracted text. The free-text scanner is line oriented, so a
// <p> per line keeps the name heuristic working on HTML payloads.
var blockElements = map[string]bool{
	"p": true, "div": true, "li": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"br": true,
}

// skipElements are elements whose text content is never user visible.
var skipElements = map[string]bool{
	"script": true, "style": true, "head": true,
}

// Text parses HTML and returns its visible text, one line per block
// element.
func Text(r io.Reader) (string, error) {
	n, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parsing body as HTML: %w", err)
	}

	sb := strings.Builder{}
	node2text(n, &sb)

	return sb.String(), nil
}

func node2text(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		tmp := strings.TrimSpace(n.Data)
		if len(tmp) > 0 {
			if sb.Len() != 0 && !strings.HasSuffix(sb.String(), "\n") {
				sb.WriteByte(' ')
			}

			sb.WriteString(tmp)
		}

		return
	case html.ElementNode:
		if skipElements[n.Data] {
			return
		}
	default:
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		node2text(child, sb)
	}

	if n.Type == html.ElementNode && blockElements[n.Data] && sb.Len() != 0 {
		sb.WriteByte('\n')
	}
}

// AsReader wraps an HTML payload in a reader that converts it to
// UTF-8, honoring the charset parameter of its Content-Type. Share
// payloads are not always UTF-8.
func AsReader(r io.Reader, contentType string) (io.Reader, error) {
	if !hasHTMLContentType(contentType) {
		return nil, fmt.Errorf("media type is %s", contentType)
	}

	rr, err := charset.NewReader(r, contentType)
	if err != nil {
		return nil, err
	}

	return rr, nil
}

// Validates that the payload claims to be HTML.
func hasHTMLContentType(media string) bool {
	const expectedMedia = "text/html"

	return strings.EqualFold(
		expectedMedia,
		media[0:min(len(media), len(expectedMedia))],
	)
}
