package rdf

import "net/url"

// ResolveIRI resolves ref against base following RFC 3986. An absolute ref,
// or a base or ref that does not parse, is returned unchanged.
func ResolveIRI(base, ref string) string {
	if base == "" {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil || refURL.IsAbs() {
		return ref
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}
