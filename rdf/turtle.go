package rdf

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// turtleDecoder reads the whole document and then parses it one statement
// at a time, buffering the quads each statement expands to.
type turtleDecoder struct {
	r       io.Reader
	format  Format
	opts    DecodeOptions
	limit   limiter
	p       *turtleParser
	pending []Quad
	err     error
}

func newTurtleDecoder(r io.Reader, format Format, opts DecodeOptions) *turtleDecoder {
	return &turtleDecoder{r: r, format: format, opts: opts, limit: limiter{opts: opts}}
}

func (d *turtleDecoder) Next() (Quad, error) {
	if d.err != nil {
		return Quad{}, d.err
	}
	for len(d.pending) == 0 {
		if err := d.opts.Context.Err(); err != nil {
			d.err = err
			return Quad{}, err
		}
		if d.p == nil {
			data, err := io.ReadAll(d.r)
			if err != nil {
				d.err = err
				return Quad{}, err
			}
			d.p = newTurtleParser(string(data), d.format, d.opts.BaseIRI)
		}
		quads, err := d.p.statement()
		if err == io.EOF {
			return Quad{}, io.EOF
		}
		if err != nil {
			d.err = d.p.wrap(err)
			return Quad{}, d.err
		}
		if d.opts.MaxLineBytes > 0 && d.p.pos-d.p.stmtStart > d.opts.MaxLineBytes {
			d.err = d.p.wrap(d.p.errorAt(d.p.stmtStart, ErrLineTooLong))
			return Quad{}, d.err
		}
		d.pending = quads
	}
	q := d.pending[0]
	d.pending = d.pending[1:]
	if err := d.limit.check(); err != nil {
		d.err = err
		return Quad{}, err
	}
	return q, nil
}

func (d *turtleDecoder) Err() error   { return d.err }
func (d *turtleDecoder) Close() error { return nil }

type turtleParser struct {
	input     string
	pos       int
	stmtStart int
	format    Format
	base      string
	prefixes  map[string]string
	graph     Term
	inBlock   bool
	bnodes    int
	out       []Quad
}

func newTurtleParser(input string, format Format, baseIRI string) *turtleParser {
	return &turtleParser{input: input, format: format, base: baseIRI, prefixes: map[string]string{}}
}

// statement parses one directive, graph block delimiter or triples
// statement. It returns io.EOF at the end of input.
func (p *turtleParser) statement() ([]Quad, error) {
	p.out = nil
	p.skipWS()
	p.stmtStart = p.pos
	if p.eof() {
		if p.inBlock {
			return nil, p.errorf("unterminated graph block")
		}
		return nil, io.EOF
	}
	if p.inBlock && p.peek() == '}' {
		p.pos++
		p.inBlock = false
		p.graph = nil
		return nil, nil
	}
	if handled, err := p.directive(); handled || err != nil {
		return nil, err
	}
	if p.format == FormatTriG && !p.inBlock {
		if opened, err := p.graphBlock(); opened || err != nil {
			return nil, err
		}
	}
	if err := p.triples(); err != nil {
		return nil, err
	}
	p.skipWS()
	switch {
	case p.peek() == '.':
		p.pos++
	case p.inBlock && p.peek() == '}':
		// the last triples of a graph block may omit the dot
	default:
		return nil, p.errorf("expected '.' at end of statement")
	}
	return p.out, nil
}

func (p *turtleParser) directive() (bool, error) {
	switch {
	case strings.HasPrefix(p.input[p.pos:], "@prefix"):
		p.pos += len("@prefix")
		if err := p.prefixDecl(); err != nil {
			return true, err
		}
		return true, p.expect('.')
	case strings.HasPrefix(p.input[p.pos:], "@base"):
		p.pos += len("@base")
		if err := p.baseDecl(); err != nil {
			return true, err
		}
		return true, p.expect('.')
	case p.keyword("PREFIX"):
		return true, p.prefixDecl()
	case p.keyword("BASE"):
		return true, p.baseDecl()
	}
	return false, nil
}

func (p *turtleParser) prefixDecl() error {
	p.skipWS()
	start := p.pos
	for !p.eof() && p.peek() != ':' && isNameByte(p.peek()) {
		p.pos++
	}
	if p.peek() != ':' {
		return p.errorf("expected ':' in prefix declaration")
	}
	prefix := p.input[start:p.pos]
	p.pos++
	iri, err := p.iriRef()
	if err != nil {
		return err
	}
	p.prefixes[prefix] = iri.Value
	return nil
}

func (p *turtleParser) baseDecl() error {
	iri, err := p.iriRef()
	if err != nil {
		return err
	}
	if err := ValidateIRI(iri.Value); err != nil {
		return p.errorf("invalid base: %v", err)
	}
	p.base = iri.Value
	return nil
}

// graphBlock opens a TriG graph block: "{", "GRAPH label {" or "label {".
func (p *turtleParser) graphBlock() (bool, error) {
	if p.peek() == '{' {
		p.pos++
		p.inBlock, p.graph = true, nil
		return true, nil
	}
	explicit := p.keyword("GRAPH")
	save := p.pos
	p.skipWS()
	var label Term
	var err error
	switch {
	case p.peek() == '<':
		label, err = p.iriRef()
	case strings.HasPrefix(p.input[p.pos:], "_:"):
		label, err = p.blankNodeLabel()
	case isNameStart(p.peek()) || p.peek() == ':':
		label, err = p.prefixedName()
	default:
		if explicit {
			return true, p.errorf("expected graph name after GRAPH")
		}
		return false, nil
	}
	if err != nil {
		if explicit {
			return true, err
		}
		p.pos = save
		return false, nil
	}
	p.skipWS()
	if p.peek() != '{' {
		if explicit {
			return true, p.errorf("expected '{' after graph name")
		}
		p.pos = save
		return false, nil
	}
	p.pos++
	p.inBlock, p.graph = true, label
	return true, nil
}

func (p *turtleParser) triples() error {
	p.skipWS()
	var subject Term
	var err error
	propertyList := false
	switch p.peek() {
	case '[':
		subject, err = p.blankNodePropertyList()
		propertyList = true
	case '(':
		subject, err = p.collection()
	default:
		subject, err = p.subject()
	}
	if err != nil {
		return err
	}
	p.skipWS()
	if propertyList && (p.peek() == '.' || (p.inBlock && p.peek() == '}')) {
		return nil
	}
	return p.predicateObjectList(subject)
}

func (p *turtleParser) subject() (Term, error) {
	switch {
	case p.peek() == '<':
		return p.iriRef()
	case strings.HasPrefix(p.input[p.pos:], "_:"):
		return p.blankNodeLabel()
	case p.eof():
		return nil, p.errorf("unexpected end of input")
	default:
		return p.prefixedName()
	}
}

func (p *turtleParser) predicateObjectList(subject Term) error {
	for {
		p.skipWS()
		predicate, err := p.verb()
		if err != nil {
			return err
		}
		for {
			object, err := p.object()
			if err != nil {
				return err
			}
			p.emit(subject, predicate, object)
			p.skipWS()
			if p.peek() != ',' {
				break
			}
			p.pos++
		}
		if p.peek() != ';' {
			return nil
		}
		for p.peek() == ';' {
			p.pos++
			p.skipWS()
		}
		switch p.peek() {
		case '.', ']', '}', 0:
			return nil
		}
	}
}

func (p *turtleParser) verb() (IRI, error) {
	if p.peek() == 'a' && (p.pos+1 >= len(p.input) || !isNameByte(p.input[p.pos+1]) && p.input[p.pos+1] != ':') {
		p.pos++
		return IRI{Value: RDFType}, nil
	}
	if p.peek() == '<' {
		return p.iriRef()
	}
	term, err := p.prefixedName()
	if err != nil {
		return IRI{}, err
	}
	return term.(IRI), nil
}

func (p *turtleParser) object() (Term, error) {
	p.skipWS()
	ch := p.peek()
	switch {
	case ch == '"' || ch == '\'':
		return p.literal()
	case ch == '<':
		return p.iriRef()
	case ch == '[':
		return p.blankNodePropertyList()
	case ch == '(':
		return p.collection()
	case strings.HasPrefix(p.input[p.pos:], "_:"):
		return p.blankNodeLabel()
	case ch == '+' || ch == '-' || ch == '.' || (ch >= '0' && ch <= '9'):
		return p.numeric()
	case p.word("true"):
		return Literal{Lexical: "true", Datatype: IRI{Value: XSDBoolean}}, nil
	case p.word("false"):
		return Literal{Lexical: "false", Datatype: IRI{Value: XSDBoolean}}, nil
	case p.eof():
		return nil, p.errorf("unexpected end of input")
	default:
		return p.prefixedName()
	}
}

func (p *turtleParser) blankNodePropertyList() (Term, error) {
	p.pos++ // '['
	node := p.newBlankNode()
	p.skipWS()
	if p.peek() == ']' {
		p.pos++
		return node, nil
	}
	if err := p.predicateObjectList(node); err != nil {
		return nil, err
	}
	if err := p.expect(']'); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *turtleParser) collection() (Term, error) {
	p.pos++ // '('
	var items []Term
	for {
		p.skipWS()
		if p.eof() {
			return nil, p.errorf("unterminated collection")
		}
		if p.peek() == ')' {
			p.pos++
			break
		}
		item, err := p.object()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return IRI{Value: RDFNil}, nil
	}
	head := p.newBlankNode()
	current := head
	for i, item := range items {
		p.emit(current, IRI{Value: RDFFirst}, item)
		if i == len(items)-1 {
			p.emit(current, IRI{Value: RDFRest}, IRI{Value: RDFNil})
			break
		}
		next := p.newBlankNode()
		p.emit(current, IRI{Value: RDFRest}, next)
		current = next
	}
	return head, nil
}

func (p *turtleParser) iriRef() (IRI, error) {
	p.skipWS()
	if p.peek() != '<' {
		return IRI{}, p.errorf("expected IRI")
	}
	p.pos++
	var b strings.Builder
	for !p.eof() {
		ch := p.peek()
		switch {
		case ch == '>':
			p.pos++
			return IRI{Value: p.resolve(b.String())}, nil
		case ch == '\\':
			r, n, err := decodeUnicodeEscape(p.input[p.pos:])
			if err != nil {
				return IRI{}, p.errorf("%v", err)
			}
			b.WriteRune(r)
			p.pos += n
		case ch <= 0x20 || ch == '<' || ch == '"' || ch == '{' || ch == '}' || ch == '|' || ch == '^' || ch == '`':
			return IRI{}, p.errorf("invalid character %q in IRI", ch)
		default:
			b.WriteByte(ch)
			p.pos++
		}
	}
	return IRI{}, p.errorf("unterminated IRI")
}

func (p *turtleParser) resolve(ref string) string {
	return ResolveIRI(p.base, ref)
}

func (p *turtleParser) prefixedName() (Term, error) {
	start := p.pos
	for !p.eof() && p.peek() != ':' && isNameByte(p.peek()) {
		p.pos++
	}
	if p.peek() != ':' {
		p.pos = start
		return nil, p.errorf("expected prefixed name")
	}
	prefix := p.input[start:p.pos]
	ns, ok := p.prefixes[prefix]
	if !ok {
		p.pos = start
		return nil, p.errorf("undefined prefix %q", prefix)
	}
	p.pos++
	var local strings.Builder
	for !p.eof() {
		ch := p.peek()
		if ch == '\\' && p.pos+1 < len(p.input) && strings.IndexByte("_~.-!$&'()*+,;=/?#@%", p.input[p.pos+1]) >= 0 {
			local.WriteByte(p.input[p.pos+1])
			p.pos += 2
			continue
		}
		if !isNameByte(ch) && ch != ':' && ch != '%' {
			break
		}
		local.WriteByte(ch)
		p.pos++
	}
	name := local.String()
	for strings.HasSuffix(name, ".") {
		name = name[:len(name)-1]
		p.pos--
	}
	return IRI{Value: ns + name}, nil
}

func (p *turtleParser) blankNodeLabel() (Term, error) {
	p.pos += 2
	start := p.pos
	for !p.eof() && isNameByte(p.peek()) {
		p.pos++
	}
	for p.pos > start && p.input[p.pos-1] == '.' {
		p.pos--
	}
	if p.pos == start {
		return nil, p.errorf("blank node label missing")
	}
	return BlankNode{ID: p.input[start:p.pos]}, nil
}

func (p *turtleParser) newBlankNode() BlankNode {
	p.bnodes++
	return BlankNode{ID: fmt.Sprintf("genid%d", p.bnodes)}
}

func (p *turtleParser) literal() (Term, error) {
	quote := p.peek()
	long := strings.Repeat(string(quote), 3)
	var lexical string
	var err error
	if strings.HasPrefix(p.input[p.pos:], long) {
		p.pos += 3
		lexical, err = p.stringBody(long, true)
	} else {
		p.pos++
		lexical, err = p.stringBody(string(quote), false)
	}
	if err != nil {
		return nil, err
	}
	switch {
	case p.peek() == '@':
		p.pos++
		start := p.pos
		for !p.eof() && (isAlnum(p.peek()) || p.peek() == '-') {
			p.pos++
		}
		if p.pos == start {
			return nil, p.errorf("empty language tag")
		}
		return NewLangLiteral(lexical, p.input[start:p.pos]), nil
	case strings.HasPrefix(p.input[p.pos:], "^^"):
		p.pos += 2
		var dt Term
		if p.peek() == '<' {
			dt, err = p.iriRef()
		} else {
			dt, err = p.prefixedName()
		}
		if err != nil {
			return nil, err
		}
		return NewTypedLiteral(lexical, dt.(IRI)), nil
	}
	return Literal{Lexical: lexical}, nil
}

func (p *turtleParser) stringBody(closing string, long bool) (string, error) {
	var b strings.Builder
	for !p.eof() {
		if strings.HasPrefix(p.input[p.pos:], closing) {
			p.pos += len(closing)
			return b.String(), nil
		}
		ch := p.peek()
		switch {
		case ch == '\\':
			c := &ntCursor{input: p.input, pos: p.pos}
			r, err := c.parseStringEscape()
			if err != nil {
				return "", p.errorf("invalid escape in literal")
			}
			b.WriteRune(r)
			p.pos = c.pos
		case !long && (ch == '\n' || ch == '\r'):
			return "", p.errorf("line break in literal")
		default:
			b.WriteByte(ch)
			p.pos++
		}
	}
	return "", p.errorf("unterminated literal")
}

func (p *turtleParser) numeric() (Term, error) {
	start := p.pos
	if p.peek() == '+' || p.peek() == '-' {
		p.pos++
	}
	digits := p.digits()
	datatype := XSDInteger
	if p.peek() == '.' && p.pos+1 < len(p.input) && isDigit(p.input[p.pos+1]) {
		p.pos++
		digits += p.digits()
		datatype = XSDDecimal
	}
	if digits == 0 {
		p.pos = start
		return nil, p.errorf("invalid numeric literal")
	}
	if p.peek() == 'e' || p.peek() == 'E' {
		p.pos++
		if p.peek() == '+' || p.peek() == '-' {
			p.pos++
		}
		if p.digits() == 0 {
			p.pos = start
			return nil, p.errorf("invalid exponent in numeric literal")
		}
		datatype = XSDDouble
	}
	return Literal{Lexical: p.input[start:p.pos], Datatype: IRI{Value: datatype}}, nil
}

func (p *turtleParser) digits() int {
	n := 0
	for !p.eof() && isDigit(p.peek()) {
		p.pos++
		n++
	}
	return n
}

func (p *turtleParser) emit(s Term, pred IRI, o Term) {
	p.out = append(p.out, Quad{S: s, P: pred, O: o, G: p.graph})
}

func (p *turtleParser) skipWS() {
	for !p.eof() {
		switch p.peek() {
		case ' ', '\t', '\r', '\n':
			p.pos++
		case '#':
			for !p.eof() && p.peek() != '\n' {
				p.pos++
			}
		default:
			return
		}
	}
}

func (p *turtleParser) expect(ch byte) error {
	p.skipWS()
	if p.peek() != ch {
		return p.errorf("expected '%c'", ch)
	}
	p.pos++
	return nil
}

// keyword consumes a case-insensitive SPARQL-style keyword followed by
// whitespace or '{'.
func (p *turtleParser) keyword(kw string) bool {
	end := p.pos + len(kw)
	if end > len(p.input) || !strings.EqualFold(p.input[p.pos:end], kw) {
		return false
	}
	if end < len(p.input) && p.input[end] != '{' && p.input[end] != '<' && !isSpace(p.input[end]) {
		return false
	}
	p.pos = end
	return true
}

// word consumes a literal keyword that is not followed by a name character.
func (p *turtleParser) word(w string) bool {
	end := p.pos + len(w)
	if !strings.HasPrefix(p.input[p.pos:], w) {
		return false
	}
	if end < len(p.input) && (isNameByte(p.input[end]) || p.input[end] == ':') {
		return false
	}
	p.pos = end
	return true
}

func (p *turtleParser) eof() bool { return p.pos >= len(p.input) }

func (p *turtleParser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.input[p.pos]
}

func (p *turtleParser) errorf(format string, args ...interface{}) error {
	return p.errorAt(p.pos, fmt.Errorf(format, args...))
}

func (p *turtleParser) errorAt(pos int, err error) error {
	return &cursorError{pos: pos, err: err}
}

// wrap converts an absolute cursor offset into a line/column ParseError.
func (p *turtleParser) wrap(err error) error {
	var cerr *cursorError
	if !errors.As(err, &cerr) {
		return newParseError(p.format, "", 0, 0, err)
	}
	pos := cerr.pos
	if pos > len(p.input) {
		pos = len(p.input)
	}
	lineStart := strings.LastIndexByte(p.input[:pos], '\n') + 1
	lineEnd := strings.IndexByte(p.input[pos:], '\n')
	if lineEnd < 0 {
		lineEnd = len(p.input)
	} else {
		lineEnd += pos
	}
	line := strings.Count(p.input[:pos], "\n") + 1
	return newParseError(p.format, p.input[lineStart:lineEnd], line, pos-lineStart+1, cerr.err)
}

func isNameStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch >= 0x80
}

func isNameByte(ch byte) bool {
	return isNameStart(ch) || isDigit(ch) || ch == '-' || ch == '.'
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}
