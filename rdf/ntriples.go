package rdf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"
)

type ntDecoder struct {
	reader *bufio.Reader
	format Format
	opts   DecodeOptions
	limit  limiter
	line   int
	err    error
}

func newNTDecoder(r io.Reader, format Format, opts DecodeOptions) *ntDecoder {
	return &ntDecoder{
		reader: bufio.NewReader(r),
		format: format,
		opts:   opts,
		limit:  limiter{opts: opts},
	}
}

func (d *ntDecoder) Next() (Quad, error) {
	if d.err != nil {
		return Quad{}, d.err
	}
	for {
		line, err := d.readLine()
		if err != nil {
			if err != io.EOF {
				d.err = err
			}
			return Quad{}, err
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		quad, err := parseNTLine(line, d.format)
		if err != nil {
			d.err = d.wrap(line, err)
			return Quad{}, d.err
		}
		if err := d.limit.check(); err != nil {
			d.err = err
			return Quad{}, err
		}
		return quad, nil
	}
}

func (d *ntDecoder) Err() error   { return d.err }
func (d *ntDecoder) Close() error { return nil }

func (d *ntDecoder) wrap(line string, err error) error {
	var cerr *cursorError
	if errors.As(err, &cerr) {
		return newParseError(d.format, line, d.line, cerr.pos+1, cerr.err)
	}
	return newParseError(d.format, line, d.line, 0, err)
}

// readLine returns the next line, enforcing MaxLineBytes.
func (d *ntDecoder) readLine() (string, error) {
	var b strings.Builder
	for {
		chunk, isPrefix, err := d.reader.ReadLine()
		if err != nil {
			if err == io.EOF && b.Len() > 0 {
				break
			}
			return "", err
		}
		b.Write(chunk)
		if d.opts.MaxLineBytes > 0 && b.Len() > d.opts.MaxLineBytes {
			d.line++
			return "", newParseError(d.format, "", d.line, 0, ErrLineTooLong)
		}
		if !isPrefix {
			break
		}
	}
	d.line++
	return b.String(), nil
}

func parseNTLine(line string, format Format) (Quad, error) {
	c := &ntCursor{input: line}
	subject, err := c.parseSubject()
	if err != nil {
		return Quad{}, err
	}
	predicate, err := c.parseIRI()
	if err != nil {
		return Quad{}, err
	}
	object, err := c.parseObject()
	if err != nil {
		return Quad{}, err
	}
	var graph Term
	c.skipWS()
	if c.pos < len(c.input) && c.input[c.pos] != '.' {
		if format == FormatNTriples {
			return Quad{}, c.errorf("graph term not allowed in N-Triples")
		}
		graph, err = c.parseGraph()
		if err != nil {
			return Quad{}, err
		}
	}
	if !c.consume('.') {
		return Quad{}, c.errorf("expected '.' at end of statement")
	}
	c.skipWS()
	if c.pos < len(c.input) && c.input[c.pos] != '#' {
		return Quad{}, c.errorf("unexpected content after '.'")
	}
	return Quad{S: subject, P: predicate, O: object, G: graph}, nil
}

// cursorError carries the byte offset of a syntax error within a line.
type cursorError struct {
	pos int
	err error
}

func (e *cursorError) Error() string { return e.err.Error() }
func (e *cursorError) Unwrap() error { return e.err }

type ntCursor struct {
	input string
	pos   int
}

func (c *ntCursor) skipWS() {
	for c.pos < len(c.input) {
		switch c.input[c.pos] {
		case ' ', '\t', '\r', '\n':
			c.pos++
		default:
			return
		}
	}
}

func (c *ntCursor) consume(ch byte) bool {
	c.skipWS()
	if c.pos < len(c.input) && c.input[c.pos] == ch {
		c.pos++
		return true
	}
	return false
}

func (c *ntCursor) peek() byte {
	if c.pos < len(c.input) {
		return c.input[c.pos]
	}
	return 0
}

func (c *ntCursor) parseSubject() (Term, error) {
	c.skipWS()
	switch {
	case c.peek() == '<':
		return c.parseIRI()
	case strings.HasPrefix(c.input[c.pos:], "_:"):
		return c.parseBlankNode()
	case c.pos >= len(c.input):
		return nil, c.errorf("unexpected end of line")
	default:
		return nil, c.errorf("expected IRI or blank node subject")
	}
}

func (c *ntCursor) parseObject() (Term, error) {
	c.skipWS()
	if c.peek() == '"' {
		return c.parseLiteral()
	}
	return c.parseSubject()
}

func (c *ntCursor) parseGraph() (Term, error) {
	return c.parseSubject()
}

func (c *ntCursor) parseIRI() (IRI, error) {
	c.skipWS()
	if !c.consume('<') {
		return IRI{}, c.errorf("expected IRI")
	}
	var b strings.Builder
	for c.pos < len(c.input) {
		ch := c.input[c.pos]
		switch {
		case ch == '>':
			c.pos++
			if !hasScheme(b.String()) {
				return IRI{}, c.errorf("relative IRI <%s>", b.String())
			}
			return IRI{Value: b.String()}, nil
		case ch == '\\':
			r, err := c.parseUnicodeEscape()
			if err != nil {
				return IRI{}, err
			}
			b.WriteRune(r)
		case ch <= 0x20 || ch == '<' || ch == '"' || ch == '{' || ch == '}' || ch == '|' || ch == '^' || ch == '`':
			return IRI{}, c.errorf("invalid character %q in IRI", ch)
		default:
			b.WriteByte(ch)
			c.pos++
		}
	}
	return IRI{}, c.errorf("unterminated IRI")
}

func (c *ntCursor) parseBlankNode() (BlankNode, error) {
	c.pos += 2
	start := c.pos
	for c.pos < len(c.input) && !isNTDelimiter(c.input[c.pos]) {
		c.pos++
	}
	// A label may contain '.' but cannot end with one.
	for c.pos > start && c.input[c.pos-1] == '.' {
		c.pos--
	}
	if start == c.pos {
		return BlankNode{}, c.errorf("blank node label missing")
	}
	return BlankNode{ID: c.input[start:c.pos]}, nil
}

func (c *ntCursor) parseLiteral() (Literal, error) {
	c.pos++ // opening quote
	var b strings.Builder
	closed := false
	for c.pos < len(c.input) {
		ch := c.input[c.pos]
		if ch == '"' {
			c.pos++
			closed = true
			break
		}
		if ch == '\\' {
			r, err := c.parseStringEscape()
			if err != nil {
				return Literal{}, err
			}
			b.WriteRune(r)
			continue
		}
		if ch == '\n' || ch == '\r' {
			return Literal{}, c.errorf("line break in literal")
		}
		b.WriteByte(ch)
		c.pos++
	}
	if !closed {
		return Literal{}, c.errorf("unterminated literal")
	}
	lexical := b.String()
	switch {
	case c.peek() == '@':
		c.pos++
		start := c.pos
		for c.pos < len(c.input) && (isAlnum(c.input[c.pos]) || c.input[c.pos] == '-') {
			c.pos++
		}
		if start == c.pos {
			return Literal{}, c.errorf("empty language tag")
		}
		return NewLangLiteral(lexical, c.input[start:c.pos]), nil
	case strings.HasPrefix(c.input[c.pos:], "^^"):
		c.pos += 2
		dt, err := c.parseIRI()
		if err != nil {
			return Literal{}, err
		}
		return NewTypedLiteral(lexical, dt), nil
	}
	return Literal{Lexical: lexical}, nil
}

func (c *ntCursor) parseStringEscape() (rune, error) {
	if c.pos+1 >= len(c.input) {
		return 0, c.errorf("unterminated escape")
	}
	switch c.input[c.pos+1] {
	case 't':
		c.pos += 2
		return '\t', nil
	case 'b':
		c.pos += 2
		return '\b', nil
	case 'n':
		c.pos += 2
		return '\n', nil
	case 'r':
		c.pos += 2
		return '\r', nil
	case 'f':
		c.pos += 2
		return '\f', nil
	case '"':
		c.pos += 2
		return '"', nil
	case '\'':
		c.pos += 2
		return '\'', nil
	case '\\':
		c.pos += 2
		return '\\', nil
	case 'u', 'U':
		return c.parseUnicodeEscape()
	default:
		return 0, c.errorf("invalid escape sequence \\%c", c.input[c.pos+1])
	}
}

// parseUnicodeEscape decodes \uXXXX or \UXXXXXXXX at the cursor.
func (c *ntCursor) parseUnicodeEscape() (rune, error) {
	r, n, err := decodeUnicodeEscape(c.input[c.pos:])
	if err != nil {
		return 0, c.errorf("%v", err)
	}
	c.pos += n
	return r, nil
}

func decodeUnicodeEscape(s string) (rune, int, error) {
	if len(s) < 2 || s[0] != '\\' {
		return 0, 0, fmt.Errorf("expected escape")
	}
	width := 0
	switch s[1] {
	case 'u':
		width = 4
	case 'U':
		width = 8
	default:
		return 0, 0, fmt.Errorf("invalid escape sequence \\%c", s[1])
	}
	if len(s) < 2+width {
		return 0, 0, fmt.Errorf("truncated unicode escape")
	}
	v, err := strconv.ParseUint(s[2:2+width], 16, 32)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid unicode escape %q", s[:2+width])
	}
	r := rune(v)
	if !utf8.ValidRune(r) {
		return 0, 0, fmt.Errorf("invalid code point %q", s[:2+width])
	}
	return r, 2 + width, nil
}

func (c *ntCursor) errorf(format string, args ...interface{}) error {
	return &cursorError{pos: c.pos, err: fmt.Errorf(format, args...)}
}

func isNTDelimiter(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n', '<', '"', '#':
		return true
	default:
		return false
	}
}

func isAlnum(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

// NQuadsEncoder writes quads as N-Quads lines.
type NQuadsEncoder struct {
	writer *bufio.Writer
	err    error
}

// NewNQuadsEncoder returns an encoder writing to w.
func NewNQuadsEncoder(w io.Writer) *NQuadsEncoder {
	return &NQuadsEncoder{writer: bufio.NewWriter(w)}
}

// Write encodes a single quad.
func (e *NQuadsEncoder) Write(q Quad) error {
	if e.err != nil {
		return e.err
	}
	if q.S == nil || q.P.Value == "" || q.O == nil {
		return fmt.Errorf("nquads: missing statement fields")
	}
	if _, err := e.writer.WriteString(q.String() + "\n"); err != nil {
		e.err = err
		return err
	}
	return nil
}

// Flush writes buffered output.
func (e *NQuadsEncoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	return e.writer.Flush()
}

// Close flushes the encoder.
func (e *NQuadsEncoder) Close() error {
	return e.Flush()
}
