package rdf

import "context"

const (
	DefaultMaxLineBytes = 1 << 20
	DefaultMaxQuads     = 0
)

// DecodeOptions configures parser behavior and limits.
// Zero values use defaults. Use negative values to disable specific limits.
type DecodeOptions struct {
	// MaxLineBytes bounds a single line (N-Triples/N-Quads) or statement (Turtle/TriG).
	MaxLineBytes int
	// MaxQuads bounds the number of quads a decoder emits. Zero means unlimited.
	MaxQuads int64
	// BaseIRI resolves relative IRIs in Turtle, TriG and JSON-LD.
	BaseIRI string
	// DocumentLoader fetches remote JSON-LD contexts. Nil uses the json-gold default loader.
	DocumentLoader DocumentLoader
	// Context provides cancellation for decoding work.
	Context context.Context
}

// DefaultDecodeOptions returns safe defaults for parser limits.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{
		MaxLineBytes: DefaultMaxLineBytes,
		MaxQuads:     DefaultMaxQuads,
	}
}

func normalizeDecodeOptions(opts DecodeOptions) DecodeOptions {
	if opts.MaxLineBytes == 0 {
		opts.MaxLineBytes = DefaultMaxLineBytes
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	return opts
}

// limiter enforces MaxQuads and cancellation for a decoder.
type limiter struct {
	opts  DecodeOptions
	count int64
}

func (l *limiter) check() error {
	if err := l.opts.Context.Err(); err != nil {
		return err
	}
	if l.opts.MaxQuads > 0 && l.count >= l.opts.MaxQuads {
		return ErrQuadLimitExceeded
	}
	l.count++
	return nil
}
