package rdf

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func collectQuads(t *testing.T, dec QuadDecoder) []Quad {
	t.Helper()
	var quads []Quad
	for {
		q, err := dec.Next()
		if err == io.EOF {
			return quads
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		quads = append(quads, q)
	}
}

func TestNQuadsDecodeGraphs(t *testing.T) {
	input := strings.Join([]string{
		"# people",
		"<http://example.org/amy> <http://schema.org/name> \"Amy\" <http://example.org/g/amy> .",
		"",
		"<http://example.org/sheldon> <http://schema.org/name> \"Sheldon\"@en <http://example.org/g/sheldon> .",
		"_:b0 <http://schema.org/age> \"42\"^^<http://www.w3.org/2001/XMLSchema#integer> .",
	}, "\n")
	dec, err := NewDecoder(strings.NewReader(input), FormatNQuads, DefaultDecodeOptions())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	quads := collectQuads(t, dec)
	if len(quads) != 3 {
		t.Fatalf("expected 3 quads, got %d", len(quads))
	}
	if g, ok := quads[0].G.(IRI); !ok || g.Value != "http://example.org/g/amy" {
		t.Fatalf("unexpected graph %v", quads[0].G)
	}
	if lit, ok := quads[1].O.(Literal); !ok || lit.Lang != "en" || lit.Lexical != "Sheldon" {
		t.Fatalf("expected language literal, got %v", quads[1].O)
	}
	if !quads[2].InDefaultGraph() {
		t.Fatalf("expected default graph, got %v", quads[2].G)
	}
	if lit, ok := quads[2].O.(Literal); !ok || lit.Datatype.Value != XSDInteger {
		t.Fatalf("expected typed literal, got %v", quads[2].O)
	}
}

func TestNQuadsDecodeEscapes(t *testing.T) {
	line := `<http://example.org/s> <http://example.org/p> "tab\there \"q\" \u00E9\U0001F600" .`
	dec, _ := NewDecoder(strings.NewReader(line), FormatNQuads, DefaultDecodeOptions())
	quads := collectQuads(t, dec)
	lit := quads[0].O.(Literal)
	if lit.Lexical != "tab\there \"q\" é😀" {
		t.Fatalf("unexpected lexical form %q", lit.Lexical)
	}
}

func TestNTriplesRejectGraph(t *testing.T) {
	line := "<http://example.org/s> <http://example.org/p> <http://example.org/o> <http://example.org/g> .\n"
	dec, _ := NewDecoder(strings.NewReader(line), FormatNTriples, DefaultDecodeOptions())
	if _, err := dec.Next(); err == nil {
		t.Fatal("expected error for graph term in ntriples")
	}
}

func TestNQuadsDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing object", "<http://example.org/s> <http://example.org/p> .\n"},
		{"missing dot", "<http://example.org/s> <http://example.org/p> <http://example.org/o>\n"},
		{"literal subject", "\"s\" <http://example.org/p> <http://example.org/o> .\n"},
		{"unterminated IRI", "<http://example.org/s <http://example.org/p> <http://example.org/o> .\n"},
		{"bad escape", "<http://example.org/s> <http://example.org/p> \"\\q\" .\n"},
		{"trailing garbage", "<http://example.org/s> <http://example.org/p> <http://example.org/o> . x\n"},
		{"relative IRI", "<a> <http://example.org/p> \"x\" .\n"},
		{"relative datatype", "<http://example.org/s> <http://example.org/p> \"1\"^^<int> .\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec, _ := NewDecoder(strings.NewReader(tt.input), FormatNQuads, DefaultDecodeOptions())
			_, err := dec.Next()
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected *ParseError, got %v", err)
			}
			if parseErr.Line != 1 || parseErr.Format != FormatNQuads {
				t.Fatalf("unexpected position %d/%s", parseErr.Line, parseErr.Format)
			}
			if Code(err) != ErrCodeParseError {
				t.Fatalf("unexpected code %s", Code(err))
			}
			if _, again := dec.Next(); again == nil || again == io.EOF {
				t.Fatalf("decoder should stay failed, got %v", again)
			}
		})
	}
}

func TestNQuadsErrorReportsLine(t *testing.T) {
	input := "<http://example.org/s> <http://example.org/p> <http://example.org/o> .\n<http://example.org/s> oops .\n"
	dec, _ := NewDecoder(strings.NewReader(input), FormatNQuads, DefaultDecodeOptions())
	if _, err := dec.Next(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := dec.Next()
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if parseErr.Line != 2 || parseErr.Column == 0 {
		t.Fatalf("expected line 2 with column, got %d:%d", parseErr.Line, parseErr.Column)
	}
	if !strings.Contains(err.Error(), "^") {
		t.Fatalf("expected caret excerpt in %q", err.Error())
	}
}

func TestNQuadsLimits(t *testing.T) {
	input := "<http://example.org/s> <http://example.org/p> \"1\" .\n<http://example.org/s> <http://example.org/p> \"2\" .\n"

	opts := DefaultDecodeOptions()
	opts.MaxQuads = 1
	dec, _ := NewDecoder(strings.NewReader(input), FormatNQuads, opts)
	if _, err := dec.Next(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := dec.Next(); !errors.Is(err, ErrQuadLimitExceeded) {
		t.Fatalf("expected quad limit error, got %v", err)
	}

	opts = DefaultDecodeOptions()
	opts.MaxLineBytes = 16
	dec, _ = NewDecoder(strings.NewReader(input), FormatNQuads, opts)
	_, err := dec.Next()
	if !errors.Is(err, ErrLineTooLong) || Code(err) != ErrCodeLineTooLong {
		t.Fatalf("expected line limit error, got %v", err)
	}
}

func TestNQuadsEncoderRoundTrip(t *testing.T) {
	quads := []Quad{
		NewQuad(NewIRI("http://example.org/s"), NewIRI("http://example.org/p"), NewLiteral("line\nbreak \"quoted\""), NewIRI("http://example.org/g")),
		NewQuad(NewBlankNode("_:b1"), NewIRI("http://example.org/p"), NewTypedLiteral("1", NewIRI(XSDInteger)), nil),
		NewQuad(NewIRI("http://example.org/s"), NewIRI("http://example.org/p"), NewLangLiteral("hi", "EN"), nil),
	}
	var buf bytes.Buffer
	enc := NewNQuadsEncoder(&buf)
	for _, q := range quads {
		if err := enc.Write(q); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	dec, _ := NewDecoder(&buf, FormatNQuads, DefaultDecodeOptions())
	got := collectQuads(t, dec)
	if len(got) != len(quads) {
		t.Fatalf("expected %d quads, got %d", len(quads), len(got))
	}
	for i := range quads {
		if got[i].String() != quads[i].String() {
			t.Fatalf("quad %d: got %s want %s", i, got[i], quads[i])
		}
	}
}

func TestNQuadsEncoderRejectsIncompleteQuad(t *testing.T) {
	enc := NewNQuadsEncoder(io.Discard)
	if err := enc.Write(Quad{S: NewIRI("http://example.org/s")}); err == nil {
		t.Fatal("expected error for incomplete quad")
	}
}
