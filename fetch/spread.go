package fetch

import (
	"fmt"
	"net/url"

	"github.com/geoknoesis/rdf-fetch/rdf"
)

// BlankSubjectPrefix prefixes the graph IRI that the split policy derives
// from a blank node subject.
const BlankSubjectPrefix = "urn:blank:"

// SpreadOptions selects the graph policy. Resource takes precedence over
// Split; with neither set, graphs pass through unchanged.
type SpreadOptions struct {
	// Resource is an absolute IRI that becomes the graph of every output quad.
	Resource string
	// Split places each quad in a graph named after its subject.
	Split bool
}

// SpreadResult reports the graphs observed in the input.
type SpreadResult struct {
	// Resources lists the distinct graph names of the input in first
	// occurrence order. The default graph is not listed; blank graph names
	// are listed in "_:label" form.
	Resources []string
}

// SpreadDataset adds every quad of input to output with its graph replaced
// according to opts. input is not modified and may be nil.
func SpreadDataset(input, output *rdf.Dataset, opts SpreadOptions) (SpreadResult, error) {
	if output == nil {
		return SpreadResult{}, fmt.Errorf("%w: output dataset is nil", ErrInvalidArgument)
	}
	var target rdf.Term
	if opts.Resource != "" {
		if err := rdf.ValidateIRI(opts.Resource); err != nil {
			return SpreadResult{}, fmt.Errorf("%w: resource: %v", ErrInvalidArgument, err)
		}
		target = rdf.NewIRI(opts.Resource)
	}

	result := SpreadResult{Resources: []string{}}
	seen := map[string]struct{}{}
	for _, q := range input.Quads() {
		if q.G != nil {
			label := graphLabel(q.G)
			if _, ok := seen[label]; !ok {
				seen[label] = struct{}{}
				result.Resources = append(result.Resources, label)
			}
		}
		switch {
		case target != nil:
			q = q.WithGraph(target)
		case opts.Split:
			q = q.WithGraph(SubjectGraph(q.S))
		}
		output.Add(q)
	}
	return result, nil
}

// SubjectGraph returns the graph name the split policy uses for subject.
func SubjectGraph(subject rdf.Term) rdf.Term {
	switch s := subject.(type) {
	case rdf.IRI:
		return s
	case rdf.BlankNode:
		return rdf.NewIRI(BlankSubjectPrefix + s.ID)
	default:
		return rdf.NewIRI(BlankSubjectPrefix + url.PathEscape(rdf.ValueOf(subject)))
	}
}

func graphLabel(g rdf.Term) string {
	if b, ok := g.(rdf.BlankNode); ok {
		return b.String()
	}
	return rdf.ValueOf(g)
}
