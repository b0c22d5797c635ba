package fetch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/geoknoesis/rdf-fetch/rdf"
)

// TracerName is the instrumentation name used for fetch spans.
const TracerName = "github.com/geoknoesis/rdf-fetch/fetch"

// Options describes one fetch.
type Options struct {
	// URL is required; file, http and https schemes are supported.
	URL string
	// ContentType overrides every other source of the content type.
	ContentType string
	// Lookup is an optional content type strategy.
	Lookup ContentTypeLookup
	// Header and Timeout are forwarded to the acquirer.
	Header  http.Header
	Timeout time.Duration
	// Order overrides the fetcher's resolution order for this call.
	Order []ResolutionStep
}

// Result is a decoded dataset with the metadata of its acquisition.
type Result struct {
	Dataset     *rdf.Dataset
	Metadata    Metadata
	ContentType string
}

// Fetcher runs the acquire, resolve and decode pipeline. It is safe for
// concurrent use.
type Fetcher struct {
	acquirer       Acquirer
	resolver       Resolver
	decodeOpts     rdf.DecodeOptions
	remoteContexts bool
	logger         *slog.Logger
	tracer         trace.Tracer
	metrics        *Metrics
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithAcquirer replaces the default file/http acquirer.
func WithAcquirer(a Acquirer) Option {
	return func(f *Fetcher) { f.acquirer = a }
}

// WithRegistry sets the format registry used for resolution and decoding.
func WithRegistry(r *rdf.Registry) Option {
	return func(f *Fetcher) { f.resolver.Registry = r }
}

// WithResolutionOrder sets the default content type resolution order.
func WithResolutionOrder(order ...ResolutionStep) Option {
	return func(f *Fetcher) { f.resolver.Order = order }
}

// WithDecodeOptions sets decoder limits. The context field is ignored; each
// fetch uses its own.
func WithDecodeOptions(opts rdf.DecodeOptions) Option {
	return func(f *Fetcher) { f.decodeOpts = opts }
}

// WithRemoteContexts controls whether JSON-LD remote contexts are loaded
// through the fetcher's acquirer. It is on by default. Contexts must be http
// or https IRIs; file contexts are allowed only for file documents.
func WithRemoteContexts(enabled bool) Option {
	return func(f *Fetcher) { f.remoteContexts = enabled }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// WithTracerProvider sets the OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(f *Fetcher) { f.tracer = tp.Tracer(TracerName) }
}

// WithMetrics records fetch metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(f *Fetcher) { f.metrics = m }
}

// New returns a Fetcher. Without options it reads file, http and https URLs
// with http.DefaultClient and the default format registry.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		decodeOpts:     rdf.DefaultDecodeOptions(),
		remoteContexts: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.acquirer == nil {
		f.acquirer = NewSchemeAcquirer(&FileAcquirer{Registry: f.resolver.Registry}, &HTTPAcquirer{})
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	if f.tracer == nil {
		f.tracer = otel.Tracer(TracerName)
	}
	return f
}

var defaultFetcher = New()

// FetchDataset fetches with a Fetcher built without options.
func FetchDataset(ctx context.Context, opts Options) (*rdf.Dataset, error) {
	return defaultFetcher.FetchDataset(ctx, opts)
}

// FetchDataset is Fetch without the metadata.
func (f *Fetcher) FetchDataset(ctx context.Context, opts Options) (*rdf.Dataset, error) {
	res, err := f.Fetch(ctx, opts)
	if err != nil {
		return nil, err
	}
	return res.Dataset, nil
}

// Fetch acquires opts.URL, resolves its content type and decodes it into a
// dataset. It fails as a whole: on error no dataset is returned.
func (f *Fetcher) Fetch(ctx context.Context, opts Options) (_ *Result, err error) {
	if opts.URL == "" {
		return nil, fmt.Errorf("%w: URL is required", ErrInvalidArgument)
	}
	start := time.Now()
	fetchID := uuid.NewString()
	scheme := schemeOf(opts.URL)
	log := f.logger.With("fetch_id", fetchID, "url", opts.URL)

	ctx, span := f.tracer.Start(ctx, "rdf-fetch.Fetch", trace.WithAttributes(
		attribute.String("rdf.fetch_id", fetchID),
		attribute.String("rdf.url", opts.URL),
	))
	defer func() {
		f.metrics.observeFetch(scheme, err, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(Code(err)))
			log.Warn("fetch failed", "error", err, "code", Code(err), "duration", time.Since(start))
		}
		span.End()
	}()

	content, err := f.acquirer.Acquire(ctx, opts.URL, AcquireOptions{Header: opts.Header, Timeout: opts.Timeout})
	if err != nil {
		return nil, err
	}
	defer content.Body.Close()
	log.Debug("acquired", "status", content.Metadata.StatusCode, "declared_type", content.Metadata.ContentType)

	resolver := f.resolver
	if len(opts.Order) > 0 {
		resolver.Order = opts.Order
	}
	var body io.Reader = content.Body
	if resolver.sniffs() {
		br := bufio.NewReaderSize(content.Body, rdf.DetectSampleSize)
		sample, _ := br.Peek(rdf.DetectSampleSize)
		content.Metadata.Sample = append([]byte(nil), sample...)
		body = br
	}
	contentType, err := resolver.Resolve(opts.ContentType, opts.Lookup, opts.URL, content.Metadata)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("rdf.content_type", contentType))

	ds, err := f.decode(ctx, body, contentType, opts.URL)
	if err != nil {
		return nil, err
	}
	f.metrics.observeQuads(contentType, ds.Len())
	span.SetAttributes(attribute.Int("rdf.quads", ds.Len()))
	log.Debug("decoded", "content_type", contentType, "quads", ds.Len(), "duration", time.Since(start))

	return &Result{Dataset: ds, Metadata: content.Metadata, ContentType: contentType}, nil
}

func (f *Fetcher) decode(ctx context.Context, body io.Reader, contentType, baseIRI string) (*rdf.Dataset, error) {
	opts := f.decodeOpts
	opts.Context = ctx
	if opts.BaseIRI == "" {
		opts.BaseIRI = baseIRI
	}
	var loader *contextLoader
	if opts.DocumentLoader == nil && f.remoteContexts {
		loader = newContextLoader(f.acquirer, baseIRI)
		opts.DocumentLoader = loader
	}
	dec, err := registryOrDefault(f.resolver.Registry).NewDecoder(body, contentType, opts)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	ds := rdf.NewDataset()
	for {
		quad, err := dec.Next()
		if err == io.EOF {
			return ds, nil
		}
		if err != nil {
			if loader != nil && loader.failure != nil {
				return nil, loader.failure
			}
			return nil, decodeFailure(contentType, err)
		}
		ds.Add(quad)
	}
}

// decodeFailure keeps transport and cancellation errors distinct from
// malformed content.
func decodeFailure(contentType string, err error) error {
	var acqErr *AcquisitionError
	switch {
	case errors.As(err, &acqErr):
		return acqErr
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return &DecodeError{ContentType: contentType, Err: err}
}
