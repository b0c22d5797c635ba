package fetch

import (
	"context"
	"io"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileURL(t *testing.T, path string) string {
	t.Helper()
	abs, err := filepath.Abs(path)
	require.NoError(t, err)
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

func TestFileAcquirer(t *testing.T) {
	content, err := (&FileAcquirer{}).Acquire(context.Background(), fileURL(t, "testdata/tbbt.nq"), AcquireOptions{})
	require.NoError(t, err)
	defer content.Body.Close()

	data, err := io.ReadAll(content.Body)
	require.NoError(t, err)
	expected, err := os.ReadFile("testdata/tbbt.nq")
	require.NoError(t, err)
	assert.Equal(t, expected, data)
	assert.Equal(t, "application/n-quads", content.Metadata.ContentType)
}

func TestFileAcquirerMissingFile(t *testing.T) {
	_, err := (&FileAcquirer{}).Acquire(context.Background(), fileURL(t, "testdata/missing.nq"), AcquireOptions{})
	var acqErr *AcquisitionError
	require.ErrorAs(t, err, &acqErr)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.ErrorIs(t, err, ErrAcquisition)
	assert.Zero(t, acqErr.StatusCode)
}

func TestHTTPAcquirer(t *testing.T) {
	var gotHeader, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Request-Id")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/n-quads")
		w.Header().Set("Cache-Control", "max-age=60")
		_, _ = io.WriteString(w, "data")
	}))
	defer srv.Close()

	a := NewHTTPAcquirer(srv.Client(), "rdf-fetch-test", 100, 2)
	require.NotNil(t, a.Limiter)

	before := time.Now()
	content, err := a.Acquire(context.Background(), srv.URL, AcquireOptions{Header: http.Header{"X-Request-Id": {"42"}}})
	require.NoError(t, err)
	defer content.Body.Close()

	assert.Equal(t, "42", gotHeader)
	assert.Equal(t, "rdf-fetch-test", gotAgent)
	assert.Equal(t, "application/n-quads", content.Metadata.ContentType)
	assert.Equal(t, http.StatusOK, content.Metadata.StatusCode)
	assert.True(t, content.Metadata.Cacheable)
	assert.True(t, content.Metadata.Expires.After(before))
}

func TestHTTPAcquirerNoStore(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		_, _ = io.WriteString(w, "data")
	}))
	defer srv.Close()

	content, err := (&HTTPAcquirer{Client: srv.Client()}).Acquire(context.Background(), srv.URL, AcquireOptions{})
	require.NoError(t, err)
	defer content.Body.Close()
	assert.False(t, content.Metadata.Cacheable)
}

func TestHTTPAcquirerStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := (&HTTPAcquirer{Client: srv.Client()}).Acquire(context.Background(), srv.URL+"/missing", AcquireOptions{})
	var acqErr *AcquisitionError
	require.ErrorAs(t, err, &acqErr)
	assert.Equal(t, http.StatusNotFound, acqErr.StatusCode)
	assert.Equal(t, ErrCodeAcquisition, Code(err))
	assert.Contains(t, err.Error(), "404")
}

func TestHTTPAcquirerTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := (&HTTPAcquirer{Client: srv.Client()}).Acquire(context.Background(), srv.URL, AcquireOptions{Timeout: 20 * time.Millisecond})
	assert.ErrorIs(t, err, ErrAcquisition)
}

func TestSchemeAcquirer(t *testing.T) {
	a := NewSchemeAcquirer(&FileAcquirer{}, &HTTPAcquirer{})
	for _, raw := range []string{"ftp://example.org/data.nq", "mailto:someone@example.org", "relative/path.nq", "://bad"} {
		_, err := a.Acquire(context.Background(), raw, AcquireOptions{})
		assert.ErrorIs(t, err, ErrUnsupportedScheme, raw)
		assert.Equal(t, ErrCodeUnsupportedScheme, Code(err), raw)
	}
}
