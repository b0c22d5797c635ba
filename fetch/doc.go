// Package fetch acquires RDF datasets from file and HTTP URLs, decodes them
// through the rdf format registry and redistributes their quads across
// named graphs.
//
// A fetch resolves the content type from, in order, the explicit
// Options.ContentType, the Options.Lookup strategy and the content type
// declared by the acquirer (HTTP Content-Type header or file extension).
// The order can be changed with WithResolutionOrder or Options.Order.
//
//	ds, err := fetch.FetchDataset(ctx, fetch.Options{
//	    URL:         "https://example.org/data.nq",
//	    ContentType: "application/n-quads",
//	})
//
// SpreadDataset rewrites graph names (pass-through, single resource or one
// graph per subject) and reports the graphs it saw. IsCached answers whether
// a caller-side cache entry may be reused; this package keeps no cache.
package fetch
