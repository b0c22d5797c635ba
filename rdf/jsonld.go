package rdf

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	ld "github.com/piprate/json-gold/ld"
)

// DocumentLoader resolves remote JSON-LD contexts and documents.
type DocumentLoader interface {
	LoadDocument(ctx context.Context, iri string) (RemoteDocument, error)
}

// RemoteDocument represents a fetched JSON-LD document.
type RemoteDocument struct {
	DocumentURL string
	Document    interface{}
	ContextURL  string
}

// jsonGoldDocumentLoader adapts a DocumentLoader to json-gold.
type jsonGoldDocumentLoader struct {
	ctx   context.Context
	inner DocumentLoader
}

func (l jsonGoldDocumentLoader) LoadDocument(iri string) (*ld.RemoteDocument, error) {
	remote, err := l.inner.LoadDocument(l.ctx, iri)
	if err != nil {
		return nil, ld.NewJsonLdError(ld.LoadingDocumentFailed, err)
	}
	return &ld.RemoteDocument{
		DocumentURL: remote.DocumentURL,
		Document:    remote.Document,
		ContextURL:  remote.ContextURL,
	}, nil
}

// newJSONLDDecoder converts the whole document up front; JSON-LD cannot be
// turned into quads before the full document and its contexts are known.
func newJSONLDDecoder(r io.Reader, opts DecodeOptions) QuadDecoder {
	quads, err := jsonLDToQuads(r, opts)
	if err != nil {
		return &sliceDecoder{err: newParseError(FormatJSONLD, "", 0, 0, err)}
	}
	if opts.MaxQuads > 0 && int64(len(quads)) > opts.MaxQuads {
		return &sliceDecoder{err: ErrQuadLimitExceeded}
	}
	return &sliceDecoder{quads: quads}
}

func jsonLDToQuads(r io.Reader, opts DecodeOptions) ([]Quad, error) {
	var doc interface{}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("jsonld: invalid JSON: %w", err)
	}
	if err := opts.Context.Err(); err != nil {
		return nil, err
	}
	goldOpts := ld.NewJsonLdOptions(opts.BaseIRI)
	if opts.DocumentLoader != nil {
		goldOpts.DocumentLoader = jsonGoldDocumentLoader{ctx: opts.Context, inner: opts.DocumentLoader}
	}
	proc := ld.NewJsonLdProcessor()
	result, err := proc.ToRDF(doc, goldOpts)
	if err != nil {
		return nil, fmt.Errorf("jsonld: %w", err)
	}
	dataset, ok := result.(*ld.RDFDataset)
	if !ok {
		return nil, fmt.Errorf("jsonld: unexpected ToRDF result %T", result)
	}
	serialized, err := (&ld.NQuadRDFSerializer{}).Serialize(dataset)
	if err != nil {
		return nil, err
	}
	nquads, ok := serialized.(string)
	if !ok {
		return nil, fmt.Errorf("jsonld: unexpected N-Quads result %T", serialized)
	}
	var quads []Quad
	dec := newNTDecoder(strings.NewReader(nquads), FormatNQuads, normalizeDecodeOptions(DecodeOptions{Context: opts.Context}))
	if err := drain(opts.Context, dec, QuadHandlerFunc(func(q Quad) error {
		quads = append(quads, q)
		return nil
	})); err != nil {
		return nil, err
	}
	return quads, nil
}
