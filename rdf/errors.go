package rdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrorCode represents a programmatic error code for error handling.
type ErrorCode string

const (
	// ErrCodeUnsupportedFormat indicates an unsupported format.
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	// ErrCodeLineTooLong indicates a line exceeded the configured limit.
	ErrCodeLineTooLong ErrorCode = "LINE_TOO_LONG"
	// ErrCodeQuadLimitExceeded indicates that the maximum number of quads was exceeded.
	ErrCodeQuadLimitExceeded ErrorCode = "QUAD_LIMIT_EXCEEDED"
	// ErrCodeParseError indicates a general parse error.
	ErrCodeParseError ErrorCode = "PARSE_ERROR"
	// ErrCodeContextCanceled indicates the context was canceled.
	ErrCodeContextCanceled ErrorCode = "CONTEXT_CANCELED"
)

var (
	// ErrUnsupportedFormat indicates that no decoder is registered for a format or content type.
	ErrUnsupportedFormat = errors.New("unsupported RDF format")
	// ErrLineTooLong indicates a line exceeded the configured limit.
	ErrLineTooLong = errors.New("rdf: line exceeds configured limit")
	// ErrQuadLimitExceeded indicates that the maximum number of quads was exceeded.
	ErrQuadLimitExceeded = errors.New("rdf: maximum number of quads exceeded")
)

// Code returns the error code for an error, or ErrCodeParseError if unknown.
// Returns empty string for nil errors or io.EOF.
func Code(err error) ErrorCode {
	if err == nil || err == io.EOF {
		return ""
	}
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return ErrCodeUnsupportedFormat
	case errors.Is(err, ErrLineTooLong):
		return ErrCodeLineTooLong
	case errors.Is(err, ErrQuadLimitExceeded):
		return ErrCodeQuadLimitExceeded
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrCodeContextCanceled
	}
	return ErrCodeParseError
}

// ParseError provides structured context for parse failures.
type ParseError struct {
	Format    Format // Format being decoded
	Statement string // Offending line or input excerpt
	Line      int    // 1-based line number (0 if unknown)
	Column    int    // 1-based column number (0 if unknown)
	Err       error  // Underlying error
}

func (e *ParseError) Error() string {
	var msg strings.Builder
	msg.WriteString(string(e.Format))
	if e.Line > 0 {
		if e.Column > 0 {
			fmt.Fprintf(&msg, ":%d:%d", e.Line, e.Column)
		} else {
			fmt.Fprintf(&msg, ":%d", e.Line)
		}
	}
	msg.WriteString(": ")
	msg.WriteString(e.Err.Error())
	if excerpt := e.excerpt(); excerpt != "" {
		msg.WriteString("\n  ")
		msg.WriteString(excerpt)
	}
	return msg.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// excerpt trims the statement to a window around the error column and
// marks the column with a caret.
func (e *ParseError) excerpt() string {
	const window = 40
	stmt := strings.TrimRight(e.Statement, "\r\n")
	if stmt == "" {
		return ""
	}
	if e.Column <= 0 {
		if len(stmt) > 2*window {
			return stmt[:2*window] + "..."
		}
		return stmt
	}
	col := e.Column - 1
	if col > len(stmt) {
		col = len(stmt)
	}
	start, end := col-window, col+window
	prefix, suffix := "", ""
	if start <= 0 {
		start = 0
	} else {
		prefix = "..."
	}
	if end >= len(stmt) {
		end = len(stmt)
	} else {
		suffix = "..."
	}
	caret := strings.Repeat(" ", len(prefix)+col-start) + "^"
	return prefix + stmt[start:end] + suffix + "\n  " + caret
}

func newParseError(format Format, statement string, line, column int, err error) error {
	if err == nil {
		return nil
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return err
	}
	return &ParseError{Format: format, Statement: statement, Line: line, Column: column, Err: err}
}
