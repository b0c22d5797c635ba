package rdf

import (
	"context"
	"io"
)

// QuadDecoder streams RDF quads from an input. Next returns io.EOF once the
// input is exhausted. A decoder is consumed once and cannot be rewound.
type QuadDecoder interface {
	Next() (Quad, error)
	Err() error
	Close() error
}

// QuadHandler processes quads in push mode.
type QuadHandler interface {
	Handle(Quad) error
}

// QuadHandlerFunc adapts a function to a QuadHandler.
type QuadHandlerFunc func(Quad) error

// Handle calls the underlying function.
func (h QuadHandlerFunc) Handle(q Quad) error { return h(q) }

// ParseQuads drains a decoder for the given format into handler.
// If ctx is nil, context.Background() is used.
func ParseQuads(ctx context.Context, r io.Reader, format Format, handler QuadHandler) error {
	if ctx == nil {
		ctx = context.Background()
	}
	opts := DefaultDecodeOptions()
	opts.Context = ctx
	dec, err := NewDecoder(r, format, opts)
	if err != nil {
		return err
	}
	defer dec.Close()
	return drain(ctx, dec, handler)
}

func drain(ctx context.Context, dec QuadDecoder, handler QuadHandler) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		q, err := dec.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := handler.Handle(q); err != nil {
			return err
		}
	}
}

// sliceDecoder replays quads that were decoded up front.
type sliceDecoder struct {
	quads []Quad
	index int
	err   error
}

func (d *sliceDecoder) Next() (Quad, error) {
	if d.err != nil {
		return Quad{}, d.err
	}
	if d.index >= len(d.quads) {
		return Quad{}, io.EOF
	}
	q := d.quads[d.index]
	d.index++
	return q, nil
}

func (d *sliceDecoder) Err() error   { return d.err }
func (d *sliceDecoder) Close() error { return nil }
