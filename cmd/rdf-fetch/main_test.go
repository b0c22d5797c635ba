package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/rdf-fetch/rdf"
)

const fixture = "../../fetch/testdata/tbbt.nq"

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func decodeNQuads(t *testing.T, data string) *rdf.Dataset {
	t.Helper()
	ds := rdf.NewDataset()
	require.NoError(t, rdf.ParseQuads(context.Background(), strings.NewReader(data), rdf.FormatNQuads, rdf.QuadHandlerFunc(func(q rdf.Quad) error {
		ds.Add(q)
		return nil
	})))
	return ds
}

func TestFetchCommand(t *testing.T) {
	stdout, _, err := execute(t, "fetch", fixture)
	require.NoError(t, err)

	ds := decodeNQuads(t, stdout)
	assert.Equal(t, 12, ds.Len())
}

func TestFetchCommandHTTP(t *testing.T) {
	data, err := os.ReadFile(fixture)
	require.NoError(t, err)
	var gotHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("Authorization")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	stdout, _, err := execute(t, "fetch", srv.URL+"/dataset", "--content-type", "application/n-quads", "-H", "Authorization: Bearer token")
	require.NoError(t, err)
	assert.Equal(t, "Bearer token", gotHeader)
	assert.Equal(t, 12, decodeNQuads(t, stdout).Len())
}

func TestSpreadCommand(t *testing.T) {
	stdout, stderr, err := execute(t, "spread", fixture, "--resource", "http://example.org/all")
	require.NoError(t, err)

	ds := decodeNQuads(t, stdout)
	graphs := ds.Graphs()
	require.Len(t, graphs, 1)
	assert.Equal(t, "http://example.org/all", rdf.ValueOf(graphs[0]))
	assert.Contains(t, stderr, "resource http://localhost:8080/data/person/amy-farrah-fowler\n")
	assert.Contains(t, stderr, "resource http://localhost:8080/data/person/sheldon-cooper\n")
}

func TestSpreadCommandSplit(t *testing.T) {
	stdout, _, err := execute(t, "spread", fixture, "--split")
	require.NoError(t, err)
	assert.Len(t, decodeNQuads(t, stdout).Graphs(), 3, "two people and one address node")
}

func TestCommandErrors(t *testing.T) {
	_, _, err := execute(t, "fetch", "ftp://example.org/data.nq")
	assert.Error(t, err)

	_, _, err = execute(t, "fetch", fixture, "-H", "no-colon")
	assert.ErrorContains(t, err, "invalid header")

	_, _, err = execute(t, "fetch", fixture, "--order", "accept")
	assert.Error(t, err)

	_, _, err = execute(t, "spread", fixture, "--resource", "relative")
	assert.Error(t, err)

	_, _, err = execute(t, "fetch")
	assert.Error(t, err)
}

func TestParseHeaders(t *testing.T) {
	header, err := parseHeaders([]string{"Accept: text/turtle", "X-Trace:  abc "})
	require.NoError(t, err)
	assert.Equal(t, "text/turtle", header.Get("Accept"))
	assert.Equal(t, "abc", header.Get("X-Trace"))
}

func TestToURL(t *testing.T) {
	assert.Equal(t, "https://example.org/x.nq", toURL("https://example.org/x.nq"))
	assert.True(t, strings.HasPrefix(toURL("testdata/x.nq"), "file:///"))
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(&buf, "warn", "json")
	logger.Info("hidden")
	logger.Warn("shown")
	out, err := io.ReadAll(&buf)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "hidden")
	assert.Contains(t, string(out), `"msg":"shown"`)
}
