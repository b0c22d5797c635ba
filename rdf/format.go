package rdf

import (
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Format identifies RDF serialization formats.
type Format string

const (
	FormatTurtle   Format = "turtle"
	FormatTriG     Format = "trig"
	FormatNTriples Format = "ntriples"
	FormatNQuads   Format = "nquads"
	FormatJSONLD   Format = "jsonld"
)

// ParseFormat normalizes a format name.
func ParseFormat(value string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "turtle", "ttl":
		return FormatTurtle, true
	case "trig":
		return FormatTriG, true
	case "ntriples", "nt":
		return FormatNTriples, true
	case "nquads", "nq":
		return FormatNQuads, true
	case "jsonld", "json-ld", "json":
		return FormatJSONLD, true
	default:
		return "", false
	}
}

// NewDecoder returns a decoder for the given format.
func NewDecoder(r io.Reader, format Format, opts DecodeOptions) (QuadDecoder, error) {
	opts = normalizeDecodeOptions(opts)
	switch format {
	case FormatNTriples, FormatNQuads:
		return newNTDecoder(r, format, opts), nil
	case FormatTurtle, FormatTriG:
		return newTurtleDecoder(r, format, opts), nil
	case FormatJSONLD:
		return newJSONLDDecoder(r, opts), nil
	default:
		return nil, ErrUnsupportedFormat
	}
}

// DecoderFunc builds a decoder for a registered content type.
type DecoderFunc func(r io.Reader, opts DecodeOptions) (QuadDecoder, error)

// FormatInfo describes a registry entry.
type FormatInfo struct {
	Format Format
	// ContentTypes are media types without parameters. The first one is canonical.
	ContentTypes []string
	// Extensions are file extensions including the leading dot.
	Extensions []string
	// New overrides the built-in decoder for Format when set.
	New DecoderFunc
}

func (f FormatInfo) newDecoder(r io.Reader, opts DecodeOptions) (QuadDecoder, error) {
	if f.New != nil {
		return f.New(r, normalizeDecodeOptions(opts))
	}
	return NewDecoder(r, f.Format, opts)
}

// Registry maps content types and file extensions to decoders.
// It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	byType   map[string]FormatInfo
	byExt    map[string]string
	byFormat map[Format]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byType: map[string]FormatInfo{}, byExt: map[string]string{}, byFormat: map[Format]string{}}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the shared registry of built-in formats.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		for _, info := range builtinFormats() {
			defaultRegistry.Register(info)
		}
	})
	return defaultRegistry
}

func builtinFormats() []FormatInfo {
	return []FormatInfo{
		{Format: FormatNQuads, ContentTypes: []string{"application/n-quads", "text/x-nquads"}, Extensions: []string{".nq"}},
		{Format: FormatNTriples, ContentTypes: []string{"application/n-triples", "text/plain"}, Extensions: []string{".nt"}},
		{Format: FormatTurtle, ContentTypes: []string{"text/turtle", "application/x-turtle"}, Extensions: []string{".ttl"}},
		{Format: FormatTriG, ContentTypes: []string{"application/trig", "application/x-trig"}, Extensions: []string{".trig"}},
		{Format: FormatJSONLD, ContentTypes: []string{"application/ld+json", "application/json"}, Extensions: []string{".jsonld", ".json"}},
	}
}

// Register adds or replaces an entry. Later registrations win.
func (r *Registry) Register(info FormatInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	canonical := ""
	for _, ct := range info.ContentTypes {
		mt := MediaType(ct)
		if mt == "" {
			continue
		}
		if canonical == "" {
			canonical = mt
		}
		r.byType[mt] = info
	}
	if canonical == "" {
		return
	}
	r.byFormat[info.Format] = canonical
	for _, ext := range info.Extensions {
		r.byExt[strings.ToLower(ext)] = canonical
	}
}

// Lookup returns the entry registered for a content type. Parameters such as
// charset are ignored.
func (r *Registry) Lookup(contentType string) (FormatInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.byType[MediaType(contentType)]
	return info, ok
}

// ContentTypeForPath infers a content type from a file name extension.
func (r *Registry) ContentTypeForPath(path string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ct, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return ct, ok
}

// ContentTypeForFormat returns the canonical content type of format.
func (r *Registry) ContentTypeForFormat(format Format) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ct, ok := r.byFormat[format]
	return ct, ok
}

// ContentTypes lists the registered media types in sorted order.
func (r *Registry) ContentTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.byType))
	for ct := range r.byType {
		types = append(types, ct)
	}
	sort.Strings(types)
	return types
}

// NewDecoder returns a decoder for contentType or ErrUnsupportedFormat.
func (r *Registry) NewDecoder(rd io.Reader, contentType string, opts DecodeOptions) (QuadDecoder, error) {
	info, ok := r.Lookup(contentType)
	if !ok {
		return nil, ErrUnsupportedFormat
	}
	return info.newDecoder(rd, opts)
}

// MediaType lower-cases a content type and strips its parameters.
func MediaType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
