package fetch

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/geoknoesis/rdf-fetch/rdf"
)

// ResolutionStep is one source of a content type.
type ResolutionStep int

const (
	// StepExplicit uses Options.ContentType.
	StepExplicit ResolutionStep = iota
	// StepLookup asks the ContentTypeLookup strategy.
	StepLookup
	// StepMetadata uses the content type declared by the acquirer.
	StepMetadata
	// StepSniff guesses the format from the first bytes of the content. It
	// is not part of the default order.
	StepSniff
)

func (s ResolutionStep) String() string {
	switch s {
	case StepExplicit:
		return "explicit"
	case StepLookup:
		return "lookup"
	case StepMetadata:
		return "metadata"
	case StepSniff:
		return "sniff"
	default:
		return fmt.Sprintf("ResolutionStep(%d)", int(s))
	}
}

// ParseResolutionStep parses the name returned by ResolutionStep.String.
func ParseResolutionStep(name string) (ResolutionStep, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "explicit":
		return StepExplicit, nil
	case "lookup":
		return StepLookup, nil
	case "metadata", "header":
		return StepMetadata, nil
	case "sniff":
		return StepSniff, nil
	}
	return 0, fmt.Errorf("%w: unknown resolution step %q", ErrInvalidArgument, name)
}

// DefaultResolutionOrder is explicit, then lookup, then metadata.
var DefaultResolutionOrder = []ResolutionStep{StepExplicit, StepLookup, StepMetadata}

// ContentTypeLookup infers a content type from the URL and acquisition
// metadata. It reports false when it has no answer.
type ContentTypeLookup interface {
	LookupContentType(url string, md Metadata) (string, bool)
}

// LookupFunc adapts a function to ContentTypeLookup.
type LookupFunc func(url string, md Metadata) (string, bool)

func (f LookupFunc) LookupContentType(url string, md Metadata) (string, bool) {
	return f(url, md)
}

// StaticLookup always answers with the same content type.
func StaticLookup(contentType string) ContentTypeLookup {
	return LookupFunc(func(string, Metadata) (string, bool) {
		return contentType, contentType != ""
	})
}

// ExtensionLookup infers the content type from the extension of the URL path.
func ExtensionLookup(registry *rdf.Registry) ContentTypeLookup {
	registry = registryOrDefault(registry)
	return LookupFunc(func(rawURL string, _ Metadata) (string, bool) {
		u, err := url.Parse(rawURL)
		if err != nil {
			return "", false
		}
		return registry.ContentTypeForPath(u.Path)
	})
}

// Resolver picks the content type used to decode acquired content.
type Resolver struct {
	Registry *rdf.Registry
	// Order lists the steps to try; the first step yielding a non-empty
	// value wins. Nil means DefaultResolutionOrder.
	Order []ResolutionStep
}

// Resolve returns the media type (lower-cased, parameters stripped) for the
// first step that yields a value. A value that has no registered decoder
// fails with ErrUnsupportedFormat; later steps are not consulted.
func (r Resolver) Resolve(explicit string, lookup ContentTypeLookup, rawURL string, md Metadata) (string, error) {
	registry := registryOrDefault(r.Registry)
	for _, step := range r.order() {
		var candidate string
		switch step {
		case StepExplicit:
			candidate = explicit
		case StepLookup:
			if lookup != nil {
				if ct, ok := lookup.LookupContentType(rawURL, md); ok {
					candidate = ct
				}
			}
		case StepMetadata:
			candidate = md.ContentType
		case StepSniff:
			if format, ok := rdf.DetectFormat(md.Sample); ok {
				candidate, _ = registry.ContentTypeForFormat(format)
			}
		default:
			return "", fmt.Errorf("%w: unknown resolution step %d", ErrInvalidArgument, int(step))
		}
		mediaType := rdf.MediaType(candidate)
		if mediaType == "" {
			continue
		}
		if _, ok := registry.Lookup(mediaType); !ok {
			return "", fmt.Errorf("%w: %q (from %s)", ErrUnsupportedFormat, mediaType, step)
		}
		return mediaType, nil
	}
	return "", fmt.Errorf("%w for %s", ErrUnresolvedFormat, rawURL)
}

func (r Resolver) order() []ResolutionStep {
	if len(r.Order) == 0 {
		return DefaultResolutionOrder
	}
	return r.Order
}

func (r Resolver) sniffs() bool {
	for _, step := range r.order() {
		if step == StepSniff {
			return true
		}
	}
	return false
}
