package rdf

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestJSONLDDecodeDefaultGraph(t *testing.T) {
	doc := `{
  "@context": {"name": "http://schema.org/name"},
  "@id": "http://example.org/amy",
  "name": "Amy"
}`
	quads := decodeString(t, FormatJSONLD, doc)
	if len(quads) != 1 {
		t.Fatalf("expected 1 quad, got %d", len(quads))
	}
	want := NewQuad(NewIRI("http://example.org/amy"), NewIRI("http://schema.org/name"), NewLiteral("Amy"), nil)
	if quads[0].String() != want.String() {
		t.Fatalf("got %s want %s", quads[0], want)
	}
}

func TestJSONLDDecodeNamedGraph(t *testing.T) {
	doc := `{
  "@id": "http://example.org/g",
  "@graph": [
    {"@id": "http://example.org/s", "http://example.org/p": "v"},
    {"@id": "http://example.org/t", "http://example.org/p": {"@id": "http://example.org/s"}}
  ]
}`
	quads := decodeString(t, FormatJSONLD, doc)
	if len(quads) != 2 {
		t.Fatalf("expected 2 quads, got %d", len(quads))
	}
	for _, q := range quads {
		if ValueOf(q.G) != "http://example.org/g" {
			t.Fatalf("expected named graph, got %s", q)
		}
	}
}

type staticLoader map[string]interface{}

func (l staticLoader) LoadDocument(_ context.Context, iri string) (RemoteDocument, error) {
	doc, ok := l[iri]
	if !ok {
		return RemoteDocument{}, errors.New("not found")
	}
	return RemoteDocument{DocumentURL: iri, Document: doc}, nil
}

func TestJSONLDUsesDocumentLoader(t *testing.T) {
	loader := staticLoader{
		"http://example.org/context.jsonld": map[string]interface{}{
			"@context": map[string]interface{}{"name": "http://schema.org/name"},
		},
	}
	opts := DefaultDecodeOptions()
	opts.DocumentLoader = loader
	doc := `{"@context": "http://example.org/context.jsonld", "@id": "http://example.org/amy", "name": "Amy"}`
	dec, err := NewDecoder(strings.NewReader(doc), FormatJSONLD, opts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	quads := collectQuads(t, dec)
	if len(quads) != 1 || quads[0].P.Value != "http://schema.org/name" {
		t.Fatalf("unexpected quads %v", quads)
	}
}

func TestJSONLDDecodeErrors(t *testing.T) {
	dec, _ := NewDecoder(strings.NewReader(`{"@id": `), FormatJSONLD, DefaultDecodeOptions())
	_, err := dec.Next()
	var parseErr *ParseError
	if !errors.As(err, &parseErr) || parseErr.Format != FormatJSONLD {
		t.Fatalf("expected JSON-LD parse error, got %v", err)
	}

	opts := DefaultDecodeOptions()
	opts.DocumentLoader = staticLoader{}
	dec, _ = NewDecoder(strings.NewReader(`{"@context": "http://example.org/missing", "@id": "http://example.org/s"}`), FormatJSONLD, opts)
	if _, err := dec.Next(); err == nil {
		t.Fatal("expected error for unresolvable context")
	}
}
