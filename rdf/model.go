package rdf

import "strings"

// TermKind identifies RDF term types.
type TermKind uint8

const (
	// TermIRI represents an IRI term.
	TermIRI TermKind = iota
	// TermBlankNode represents a blank node term.
	TermBlankNode
	// TermLiteral represents a literal term.
	TermLiteral
)

// String returns the lower-case name of the kind.
func (k TermKind) String() string {
	switch k {
	case TermIRI:
		return "iri"
	case TermBlankNode:
		return "blank"
	case TermLiteral:
		return "literal"
	default:
		return "unknown"
	}
}

// Term is a value that can appear in RDF statements.
type Term interface {
	Kind() TermKind
	// String is the N-Quads rendering of the term.
	String() string
}

// ValueOf returns the identifying value of a term: the IRI, the blank node
// label or the lexical form. It returns "" for nil.
func ValueOf(t Term) string {
	switch v := t.(type) {
	case IRI:
		return v.Value
	case BlankNode:
		return v.ID
	case Literal:
		return v.Lexical
	default:
		return ""
	}
}

// IRI represents an RDF IRI.
type IRI struct {
	// Value is the IRI string value.
	Value string
}

// NewIRI returns an IRI term.
func NewIRI(value string) IRI { return IRI{Value: value} }

// Kind returns TermIRI.
func (i IRI) Kind() TermKind { return TermIRI }

// String returns the IRI in angle brackets.
func (i IRI) String() string { return "<" + escapeIRI(i.Value) + ">" }

// BlankNode represents an RDF blank node.
type BlankNode struct {
	// ID is the blank node label without the "_:" prefix.
	ID string
}

// NewBlankNode returns a blank node with the given label.
func NewBlankNode(id string) BlankNode { return BlankNode{ID: strings.TrimPrefix(id, "_:")} }

// Kind returns TermBlankNode.
func (b BlankNode) Kind() TermKind { return TermBlankNode }

// String returns the blank node label prefixed with "_:".
func (b BlankNode) String() string { return "_:" + b.ID }

// Literal represents an RDF literal.
type Literal struct {
	// Lexical is the lexical form of the literal.
	Lexical string
	// Datatype is the datatype IRI. Empty means xsd:string, or rdf:langString
	// when Lang is set.
	Datatype IRI
	// Lang is the language tag, if any.
	Lang string
}

// NewLiteral returns a simple literal.
func NewLiteral(lexical string) Literal { return Literal{Lexical: lexical} }

// NewLangLiteral returns a language-tagged literal. Language tags are
// case-insensitive and are stored lower-cased, so "en-US" is written back as
// "en-us" and literals differing only in tag case are the same dataset member.
func NewLangLiteral(lexical, lang string) Literal {
	return Literal{Lexical: lexical, Lang: strings.ToLower(lang)}
}

// NewTypedLiteral returns a literal with an explicit datatype.
// The xsd:string datatype is folded into the simple literal form.
func NewTypedLiteral(lexical string, datatype IRI) Literal {
	if datatype.Value == XSDString {
		return Literal{Lexical: lexical}
	}
	return Literal{Lexical: lexical, Datatype: datatype}
}

// Kind returns TermLiteral.
func (l Literal) Kind() TermKind { return TermLiteral }

// String returns the N-Quads rendering of the literal.
func (l Literal) String() string {
	quoted := `"` + escapeString(l.Lexical) + `"`
	if l.Lang != "" {
		return quoted + "@" + l.Lang
	}
	if l.Datatype.Value != "" && l.Datatype.Value != XSDString {
		return quoted + "^^" + l.Datatype.String()
	}
	return quoted
}

// Well-known vocabulary IRIs.
const (
	RDFType      = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	RDFFirst     = "http://www.w3.org/1999/02/22-rdf-syntax-ns#first"
	RDFRest      = "http://www.w3.org/1999/02/22-rdf-syntax-ns#rest"
	RDFNil       = "http://www.w3.org/1999/02/22-rdf-syntax-ns#nil"
	XSDString    = "http://www.w3.org/2001/XMLSchema#string"
	XSDBoolean   = "http://www.w3.org/2001/XMLSchema#boolean"
	XSDInteger   = "http://www.w3.org/2001/XMLSchema#integer"
	XSDDecimal   = "http://www.w3.org/2001/XMLSchema#decimal"
	XSDDouble    = "http://www.w3.org/2001/XMLSchema#double"
)

// Quad is an RDF statement with an optional graph name.
// Quads are plain values; the With* methods return modified copies.
type Quad struct {
	// S is the subject (IRI or blank node).
	S Term
	// P is the predicate.
	P IRI
	// O is the object.
	O Term
	// G is the graph name, or nil for the default graph.
	G Term
}

// NewQuad builds a quad. A nil graph places the quad in the default graph.
func NewQuad(s Term, p IRI, o Term, g Term) Quad {
	return Quad{S: s, P: p, O: o, G: g}
}

// IsZero reports whether the quad has no subject/predicate/object.
func (q Quad) IsZero() bool {
	return q.S == nil && q.P.Value == "" && q.O == nil && q.G == nil
}

// InDefaultGraph reports whether the quad is in the default graph.
func (q Quad) InDefaultGraph() bool {
	return q.G == nil
}

// WithGraph returns a copy of q placed in graph g.
func (q Quad) WithGraph(g Term) Quad {
	q.G = g
	return q
}

// String returns the N-Quads line for q, without the trailing newline.
func (q Quad) String() string {
	var b strings.Builder
	writeQuad(&b, q)
	return b.String()
}

func writeQuad(b *strings.Builder, q Quad) {
	b.WriteString(termString(q.S))
	b.WriteByte(' ')
	b.WriteString(q.P.String())
	b.WriteByte(' ')
	b.WriteString(termString(q.O))
	if q.G != nil {
		b.WriteByte(' ')
		b.WriteString(q.G.String())
	}
	b.WriteString(" .")
}

func termString(t Term) string {
	if t == nil {
		return ""
	}
	return t.String()
}

func escapeString(s string) string {
	if !strings.ContainsAny(s, "\"\\\n\r\t\b\f") && !hasControl(s) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			if r < 0x20 || r == 0x7f {
				writeUnicodeEscape(&b, r)
				continue
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

func escapeIRI(s string) string {
	if !strings.ContainsAny(s, "<>\"{}|^`\\ ") && !hasControl(s) {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if r <= 0x20 || strings.ContainsRune("<>\"{}|^`\\", r) {
			writeUnicodeEscape(&b, r)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func hasControl(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] == 0x7f {
			return true
		}
	}
	return false
}

const hexDigits = "0123456789ABCDEF"

func writeUnicodeEscape(b *strings.Builder, r rune) {
	b.WriteString(`\u`)
	for shift := 12; shift >= 0; shift -= 4 {
		b.WriteByte(hexDigits[(r>>uint(shift))&0xf])
	}
}
