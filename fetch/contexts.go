package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"

	"github.com/geoknoesis/rdf-fetch/rdf"
)

const jsonLDAccept = "application/ld+json, application/json;q=0.9"

// contextLoader resolves JSON-LD remote contexts through an Acquirer, so
// they obey the same limits and throttling as the document. Only http and
// https contexts are loaded, plus file contexts when the document itself
// is a local file.
type contextLoader struct {
	acquirer Acquirer
	schemes  []string
	failure  error
}

func newContextLoader(acquirer Acquirer, documentURL string) *contextLoader {
	schemes := []string{"http", "https"}
	if schemeOf(documentURL) == "file" {
		schemes = append(schemes, "file")
	}
	return &contextLoader{acquirer: acquirer, schemes: schemes}
}

func (l *contextLoader) LoadDocument(ctx context.Context, iri string) (rdf.RemoteDocument, error) {
	if !slices.Contains(l.schemes, schemeOf(iri)) {
		return rdf.RemoteDocument{}, l.fail(fmt.Errorf("%w: context %s", ErrUnsupportedScheme, iri))
	}
	header := http.Header{}
	header.Set("Accept", jsonLDAccept)
	content, err := l.acquirer.Acquire(ctx, iri, AcquireOptions{Header: header})
	if err != nil {
		return rdf.RemoteDocument{}, l.fail(err)
	}
	defer content.Body.Close()
	var doc interface{}
	if err := json.NewDecoder(content.Body).Decode(&doc); err != nil {
		return rdf.RemoteDocument{}, fmt.Errorf("load context %s: %w", iri, err)
	}
	return rdf.RemoteDocument{DocumentURL: iri, Document: doc}, nil
}

// fail keeps the first scheme or acquisition failure; json-gold reports
// loader errors without a wrap chain.
func (l *contextLoader) fail(err error) error {
	if l.failure == nil {
		l.failure = err
	}
	return err
}
