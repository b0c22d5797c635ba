package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pquerna/cachecontrol"
	"golang.org/x/time/rate"

	"github.com/geoknoesis/rdf-fetch/rdf"
)

// Metadata describes acquired content.
type Metadata struct {
	URL string
	// ContentType is the declared content type: the Content-Type header for
	// HTTP, or the type registered for the file extension for file URLs.
	ContentType string
	StatusCode  int
	Header      http.Header
	// Cacheable and Expires are derived from HTTP caching headers.
	Cacheable bool
	Expires   time.Time
	// Sample holds the first bytes of the body when the resolution order
	// includes StepSniff.
	Sample []byte
}

// Content is an acquired body. The caller must close Body.
type Content struct {
	Body     io.ReadCloser
	Metadata Metadata
}

// AcquireOptions are forwarded from Options to the acquirer.
type AcquireOptions struct {
	Header  http.Header
	Timeout time.Duration
}

// Acquirer turns a URL into a byte stream plus metadata.
type Acquirer interface {
	Acquire(ctx context.Context, rawURL string, opts AcquireOptions) (*Content, error)
}

// SchemeAcquirer dispatches on the URL scheme.
type SchemeAcquirer struct {
	File Acquirer
	HTTP Acquirer
}

// NewSchemeAcquirer returns an acquirer for file, http and https URLs.
func NewSchemeAcquirer(file, remote Acquirer) *SchemeAcquirer {
	return &SchemeAcquirer{File: file, HTTP: remote}
}

func (a *SchemeAcquirer) Acquire(ctx context.Context, rawURL string, opts AcquireOptions) (*Content, error) {
	switch schemeOf(rawURL) {
	case "file":
		if a.File != nil {
			return a.File.Acquire(ctx, rawURL, opts)
		}
	case "http", "https":
		if a.HTTP != nil {
			return a.HTTP.Acquire(ctx, rawURL, opts)
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, rawURL)
}

func schemeOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Scheme)
}

// FileAcquirer reads file URLs into memory.
type FileAcquirer struct {
	// Registry infers the content type from the file extension. Nil uses
	// rdf.DefaultRegistry.
	Registry *rdf.Registry
}

func (a *FileAcquirer) Acquire(ctx context.Context, rawURL string, _ AcquireOptions) (*Content, error) {
	u, err := url.Parse(rawURL)
	if err != nil || !strings.EqualFold(u.Scheme, "file") {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, rawURL)
	}
	if err := ctx.Err(); err != nil {
		return nil, &AcquisitionError{URL: rawURL, Err: err}
	}
	path := u.Path
	if path == "" {
		path = u.Opaque
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &AcquisitionError{URL: rawURL, Err: err}
	}
	md := Metadata{URL: rawURL}
	if ct, ok := registryOrDefault(a.Registry).ContentTypeForPath(path); ok {
		md.ContentType = ct
	}
	return &Content{Body: io.NopCloser(bytes.NewReader(data)), Metadata: md}, nil
}

// HTTPAcquirer issues GET requests. It does not retry.
type HTTPAcquirer struct {
	// Client defaults to http.DefaultClient.
	Client *http.Client
	// UserAgent is sent unless the request headers set one.
	UserAgent string
	// Limiter throttles outgoing requests when set.
	Limiter *rate.Limiter
}

// NewHTTPAcquirer returns an acquirer limited to rps requests per second.
// A zero rps disables throttling.
func NewHTTPAcquirer(client *http.Client, userAgent string, rps float64, burst int) *HTTPAcquirer {
	a := &HTTPAcquirer{Client: client, UserAgent: userAgent}
	if rps > 0 {
		if burst < 1 {
			burst = 1
		}
		a.Limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return a
}

func (a *HTTPAcquirer) Acquire(ctx context.Context, rawURL string, opts AcquireOptions) (*Content, error) {
	if a.Limiter != nil {
		if err := a.Limiter.Wait(ctx); err != nil {
			return nil, &AcquisitionError{URL: rawURL, Err: err}
		}
	}
	cancel := context.CancelFunc(func() {})
	if opts.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		cancel()
		return nil, &AcquisitionError{URL: rawURL, Err: err}
	}
	for key, values := range opts.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if a.UserAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", a.UserAgent)
	}
	client := a.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		cancel()
		return nil, &AcquisitionError{URL: rawURL, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
		cancel()
		return nil, &AcquisitionError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	md := Metadata{
		URL:         rawURL,
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
		Header:      resp.Header.Clone(),
	}
	reasons, expires, err := cachecontrol.CachableResponse(req, resp, cachecontrol.Options{})
	if err == nil && len(reasons) == 0 {
		md.Cacheable = true
		md.Expires = expires
	}
	return &Content{Body: &responseBody{rc: resp.Body, url: rawURL, cancel: cancel}, Metadata: md}, nil
}

// responseBody tags read failures as acquisition errors so that a dropped
// connection is not reported as malformed content.
type responseBody struct {
	rc     io.ReadCloser
	url    string
	cancel context.CancelFunc
}

func (b *responseBody) Read(p []byte) (int, error) {
	n, err := b.rc.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		err = &AcquisitionError{URL: b.url, Err: err}
	}
	return n, err
}

func (b *responseBody) Close() error {
	err := b.rc.Close()
	b.cancel()
	return err
}

func registryOrDefault(r *rdf.Registry) *rdf.Registry {
	if r == nil {
		return rdf.DefaultRegistry()
	}
	return r
}
