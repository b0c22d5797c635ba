package rdf

import (
	"fmt"

	ld "github.com/piprate/json-gold/ld"
)

// Canonicalize returns the URDNA2015 canonical N-Quads form of quads.
// Blank node labels are replaced by canonical ones, so two datasets that are
// isomorphic produce the same string.
func Canonicalize(quads []Quad) (string, error) {
	if len(quads) == 0 {
		return "", nil
	}
	var b []byte
	for _, q := range quads {
		b = append(b, q.String()...)
		b = append(b, '\n')
	}
	dataset, err := (&ld.NQuadRDFSerializer{}).Parse(string(b))
	if err != nil {
		return "", fmt.Errorf("canonicalize: %w", err)
	}
	opts := ld.NewJsonLdOptions("")
	opts.Format = "application/n-quads"
	opts.Algorithm = ld.AlgorithmURDNA2015
	normalized, err := ld.NewJsonLdApi().Normalize(dataset, opts)
	if err != nil {
		return "", fmt.Errorf("canonicalize: %w", err)
	}
	value, ok := normalized.(string)
	if !ok {
		return "", fmt.Errorf("canonicalize: unexpected normalization result %T", normalized)
	}
	return value, nil
}
