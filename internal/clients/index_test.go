package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipcheck/pipcheck/internal/cache"
	"github.com/pipcheck/pipcheck/internal/models"
)

func newIndexServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/simple/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", simpleJSONMediaType)
		w.Write([]byte(`{"projects": [{"name": "pyyaml"}]}`))
	})
	mux.HandleFunc("/simple/pyyaml/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", simpleJSONMediaType)
		w.Write([]byte(`{"name": "pyyaml", "versions": ["5.3.1", "6.0", "6.0.2"]}`))
	})
	mux.HandleFunc("/simple/html-only/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<html><body><a href="#">html-only-1.0.tar.gz</a></body></html>`))
	})
	mux.HandleFunc("/simple/missing/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testSource(url string) models.Source {
	return models.Source{Name: "test", URL: url + "/simple", VerifySSL: true}
}

func TestCheckIndex(t *testing.T) {
	server := newIndexServer(t)
	c := NewIndexClient(nil, 5*time.Second)

	err := c.CheckIndex(context.Background(), testSource(server.URL))
	assert.NoError(t, err)
}

func TestCheckIndexUnreachable(t *testing.T) {
	c := NewIndexClient(nil, time.Second)

	err := c.CheckIndex(context.Background(), models.Source{
		Name: "dead", URL: "http://127.0.0.1:1/simple", VerifySSL: true,
	})
	assert.Error(t, err)
}

func TestProjectVersions(t *testing.T) {
	server := newIndexServer(t)
	c := NewIndexClient(nil, 5*time.Second)
	src := testSource(server.URL)

	versions, err := c.ProjectVersions(context.Background(), src, "PyYAML")
	require.NoError(t, err)
	assert.Equal(t, []string{"5.3.1", "6.0", "6.0.2"}, versions)
}

func TestProjectVersionsNotFound(t *testing.T) {
	server := newIndexServer(t)
	c := NewIndexClient(nil, 5*time.Second)

	_, err := c.ProjectVersions(context.Background(), testSource(server.URL), "missing")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestProjectVersionsHTMLOnly(t *testing.T) {
	server := newIndexServer(t)
	c := NewIndexClient(nil, 5*time.Second)

	versions, err := c.ProjectVersions(context.Background(), testSource(server.URL), "html-only")
	require.NoError(t, err)
	assert.Nil(t, versions)
}

func TestProjectVersionsCached(t *testing.T) {
	server := newIndexServer(t)

	fileCache, err := cache.NewAt(t.TempDir(), time.Hour)
	require.NoError(t, err)

	c := NewIndexClient(fileCache, 5*time.Second)
	src := testSource(server.URL)

	first, err := c.ProjectVersions(context.Background(), src, "pyyaml")
	require.NoError(t, err)

	// Second lookup is served from cache even after the index goes away
	server.Close()

	second, err := c.ProjectVersions(context.Background(), src, "pyyaml")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
