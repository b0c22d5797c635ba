package rdf

import (
	"io"
	"sort"
	"strings"
)

// Dataset is a set of quads. Two quads are the same member when their
// N-Quads renderings are equal. Iteration follows first insertion order.
//
// The zero value is an empty dataset ready to use. A Dataset is not safe for
// concurrent mutation.
type Dataset struct {
	index map[string]struct{}
	quads []Quad
}

// NewDataset returns a dataset holding quads.
func NewDataset(quads ...Quad) *Dataset {
	d := &Dataset{index: make(map[string]struct{}, len(quads))}
	d.AddAll(quads)
	return d
}

// Add inserts q and reports whether it was not already present.
func (d *Dataset) Add(q Quad) bool {
	key := q.String()
	if d.index == nil {
		d.index = map[string]struct{}{}
	}
	if _, ok := d.index[key]; ok {
		return false
	}
	d.index[key] = struct{}{}
	d.quads = append(d.quads, q)
	return true
}

// AddAll inserts quads and returns how many were new.
func (d *Dataset) AddAll(quads []Quad) int {
	added := 0
	for _, q := range quads {
		if d.Add(q) {
			added++
		}
	}
	return added
}

// Has reports whether q is a member.
func (d *Dataset) Has(q Quad) bool {
	if d == nil {
		return false
	}
	_, ok := d.index[q.String()]
	return ok
}

// Len returns the number of quads.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.quads)
}

// Quads returns a copy of the members in insertion order.
func (d *Dataset) Quads() []Quad {
	if d == nil {
		return nil
	}
	out := make([]Quad, len(d.quads))
	copy(out, d.quads)
	return out
}

// Range calls fn for each quad in insertion order until fn returns false.
func (d *Dataset) Range(fn func(Quad) bool) {
	if d == nil {
		return
	}
	for _, q := range d.quads {
		if !fn(q) {
			return
		}
	}
}

// Graphs returns the distinct graph names in first occurrence order.
// The default graph is reported as nil when present.
func (d *Dataset) Graphs() []Term {
	var graphs []Term
	seen := map[string]struct{}{}
	d.Range(func(q Quad) bool {
		key := termString(q.G)
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			graphs = append(graphs, q.G)
		}
		return true
	})
	return graphs
}

// NQuads returns the members as sorted N-Quads lines. Blank node labels are
// kept as is; use Canonical to compare datasets up to blank node renaming.
func (d *Dataset) NQuads() string {
	lines := make([]string, 0, d.Len())
	d.Range(func(q Quad) bool {
		lines = append(lines, q.String()+"\n")
		return true
	})
	sort.Strings(lines)
	return strings.Join(lines, "")
}

// WriteTo writes the members as N-Quads in insertion order.
func (d *Dataset) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	enc := NewNQuadsEncoder(cw)
	var err error
	d.Range(func(q Quad) bool {
		err = enc.Write(q)
		return err == nil
	})
	if err != nil {
		return cw.n, err
	}
	err = enc.Close()
	return cw.n, err
}

// Canonical returns the URDNA2015 canonical N-Quads serialization.
func (d *Dataset) Canonical() (string, error) {
	return Canonicalize(d.Quads())
}

// Equal reports whether d and other hold isomorphic quad sets.
func (d *Dataset) Equal(other *Dataset) bool {
	if d.Len() != other.Len() {
		return false
	}
	if d.NQuads() == other.NQuads() {
		return true
	}
	a, err := d.Canonical()
	if err != nil {
		return false
	}
	b, err := other.Canonical()
	if err != nil {
		return false
	}
	return a == b
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
