// Package rdf provides the quad model, a set-semantics dataset and the
// streaming decoders used by the fetch pipeline.
//
// Copyright 2026 Geoknoesis LLC (www.geoknoesis.com)
//
// Decoders are pull-style: NewDecoder (by format) and Registry.NewDecoder
// (by content type) return a QuadDecoder whose Next method yields quads until
// io.EOF. A decoder is consumed once.
//
//	dec, err := rdf.DefaultRegistry().NewDecoder(r, "application/n-quads", rdf.DefaultDecodeOptions())
//	if err != nil {
//	    // rdf.ErrUnsupportedFormat
//	}
//	defer dec.Close()
//
//	ds := rdf.NewDataset()
//	for {
//	    quad, err := dec.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        // *rdf.ParseError with line/column
//	    }
//	    ds.Add(quad)
//	}
//
// Supported formats: N-Quads, N-Triples, Turtle, TriG and JSON-LD. JSON-LD
// is converted with json-gold; remote contexts go through DecodeOptions.DocumentLoader.
//
// Dataset comparison uses URDNA2015 canonicalization (Dataset.Canonical),
// so datasets that differ only in blank node labels compare equal.
package rdf
