package rdf

import (
	"bytes"
	"strings"
)

// DetectSampleSize is the number of leading bytes DetectFormat needs.
const DetectSampleSize = 512

// DetectFormat guesses the format of a document from its first bytes.
// It is a heuristic: callers should prefer a declared content type.
func DetectFormat(sample []byte) (Format, bool) {
	if len(sample) > DetectSampleSize {
		sample = sample[:DetectSampleSize]
	}
	text := strings.TrimSpace(string(bytes.TrimPrefix(sample, []byte("\xef\xbb\xbf"))))
	for strings.HasPrefix(text, "#") {
		_, rest, _ := strings.Cut(text, "\n")
		text = strings.TrimSpace(rest)
	}
	if text == "" {
		return "", false
	}

	if text[0] == '{' || text[0] == '[' {
		return FormatJSONLD, true
	}

	upper := strings.ToUpper(text)
	hasDirective := strings.HasPrefix(upper, "@PREFIX") || strings.HasPrefix(upper, "PREFIX") ||
		strings.HasPrefix(upper, "@BASE") || strings.HasPrefix(upper, "BASE")
	hasGraph := strings.Contains(upper, "GRAPH") || strings.Contains(text, "{")
	if hasDirective {
		if hasGraph {
			return FormatTriG, true
		}
		return FormatTurtle, true
	}

	if text[0] == '<' || strings.HasPrefix(text, "_:") {
		switch countTerms(firstLine(text)) {
		case 4:
			return FormatNQuads, true
		case 3:
			return FormatNTriples, true
		}
		if hasGraph {
			return FormatTriG, true
		}
		return FormatTurtle, true
	}

	for _, field := range strings.Fields(text) {
		if strings.Contains(field, ":") && !strings.HasPrefix(field, "_:") && !strings.HasPrefix(field, "<") {
			return FormatTurtle, true
		}
	}
	return "", false
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" && line[0] != '#' {
			return line
		}
	}
	return ""
}

// countTerms counts the terms of a complete N-Triples or N-Quads statement.
// It returns 0 unless the terms are followed by the terminating dot.
func countTerms(line string) int {
	c := &ntCursor{input: line}
	n := 0
	for {
		c.skipWS()
		if c.pos >= len(line) {
			return 0
		}
		if line[c.pos] == '.' {
			return n
		}
		var err error
		switch {
		case line[c.pos] == '<':
			_, err = c.parseIRI()
		case strings.HasPrefix(line[c.pos:], "_:"):
			_, err = c.parseBlankNode()
		case line[c.pos] == '"':
			_, err = c.parseLiteral()
		default:
			return 0
		}
		if err != nil {
			return 0
		}
		n++
	}
}
