package rdf

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidateIRI returns an error unless iri is an absolute IRI that can be
// written in N-Quads without escapes.
func ValidateIRI(iri string) error {
	if iri == "" {
		return fmt.Errorf("empty IRI")
	}
	if i := strings.IndexAny(iri, "<>\"{}|^`\\ "); i >= 0 {
		return fmt.Errorf("invalid character %q in IRI %q", iri[i], iri)
	}
	if hasControl(iri) {
		return fmt.Errorf("control character in IRI %q", iri)
	}
	u, err := url.Parse(iri)
	if err != nil {
		return fmt.Errorf("invalid IRI syntax: %w", err)
	}
	if u.Scheme == "" {
		return fmt.Errorf("IRI %q is not absolute", iri)
	}
	return nil
}

// hasScheme reports whether s starts with an RFC 3986 scheme and ':'.
func hasScheme(s string) bool {
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z':
		case i > 0 && (ch >= '0' && ch <= '9' || ch == '+' || ch == '-' || ch == '.'):
		case i > 0 && ch == ':':
			return true
		default:
			return false
		}
	}
	return false
}
