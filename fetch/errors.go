package fetch

import (
	"context"
	"errors"
	"fmt"

	"github.com/geoknoesis/rdf-fetch/rdf"
)

// ErrorCode represents a stable error classification for fetch failures.
type ErrorCode string

const (
	// ErrCodeUnsupportedScheme indicates a URL scheme other than file, http or https.
	ErrCodeUnsupportedScheme ErrorCode = "UNSUPPORTED_SCHEME"
	// ErrCodeAcquisition indicates an I/O or HTTP failure while acquiring content.
	ErrCodeAcquisition ErrorCode = "ACQUISITION_FAILED"
	// ErrCodeUnresolvedFormat indicates that no content type could be determined.
	ErrCodeUnresolvedFormat ErrorCode = "UNRESOLVED_FORMAT"
	// ErrCodeUnsupportedFormat indicates a content type without a registered decoder.
	ErrCodeUnsupportedFormat ErrorCode = "UNSUPPORTED_FORMAT"
	// ErrCodeDecode indicates malformed content.
	ErrCodeDecode ErrorCode = "DECODE_FAILED"
	// ErrCodeInvalidArgument indicates a caller contract violation.
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeCanceled indicates the context was canceled or timed out.
	ErrCodeCanceled ErrorCode = "CANCELED"
	// ErrCodeUnknown is returned for errors outside the fetch taxonomy.
	ErrCodeUnknown ErrorCode = "UNKNOWN"
)

var (
	// ErrUnsupportedScheme indicates a URL scheme other than file, http or https.
	ErrUnsupportedScheme = errors.New("fetch: unsupported URL scheme")
	// ErrAcquisition is matched by every *AcquisitionError.
	ErrAcquisition = errors.New("fetch: acquisition failed")
	// ErrUnresolvedFormat indicates that neither the caller, the lookup nor the
	// response declared a content type.
	ErrUnresolvedFormat = errors.New("fetch: content type could not be resolved")
	// ErrUnsupportedFormat is the registry's sentinel, so errors.Is works against
	// both packages.
	ErrUnsupportedFormat = rdf.ErrUnsupportedFormat
	// ErrDecode is matched by every *DecodeError.
	ErrDecode = errors.New("fetch: decode failed")
	// ErrInvalidArgument indicates a caller contract violation.
	ErrInvalidArgument = errors.New("fetch: invalid argument")
)

// AcquisitionError reports a failed file read or HTTP request.
type AcquisitionError struct {
	URL string
	// StatusCode is set for non-2xx HTTP responses.
	StatusCode int
	// Err is the underlying I/O cause, nil for status failures.
	Err error
}

func (e *AcquisitionError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch: GET %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch: acquire %s: %v", e.URL, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

func (e *AcquisitionError) Is(target error) bool { return target == ErrAcquisition }

// DecodeError reports malformed content. Err is usually an *rdf.ParseError.
type DecodeError struct {
	ContentType string
	Err         error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("fetch: decode %s: %v", e.ContentType, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// Code classifies err. It returns "" for nil.
func Code(err error) ErrorCode {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrCodeCanceled
	case errors.Is(err, ErrInvalidArgument):
		return ErrCodeInvalidArgument
	case errors.Is(err, ErrUnsupportedScheme):
		return ErrCodeUnsupportedScheme
	case errors.Is(err, ErrAcquisition):
		return ErrCodeAcquisition
	case errors.Is(err, ErrUnresolvedFormat):
		return ErrCodeUnresolvedFormat
	case errors.Is(err, ErrDecode):
		return ErrCodeDecode
	case errors.Is(err, ErrUnsupportedFormat):
		return ErrCodeUnsupportedFormat
	}
	return ErrCodeUnknown
}
