package ingestion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestFromURL_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`
			<html><body>
				<nav>menu</nav>
				<div class="job-description">
					<h1>Backend   Engineer</h1>
					<p>Strong Go and PostgreSQL required.</p>
				</div>
			</body></html>`))
	}))
	defer server.Close()

	text, meta, err := IngestFromURL(context.Background(), server.URL, false)
	require.NoError(t, err)

	assert.Contains(t, text, "Backend Engineer")
	assert.Contains(t, text, "Strong Go and PostgreSQL required.")
	assert.NotContains(t, text, "menu")

	require.NotNil(t, meta)
	assert.Equal(t, server.URL, meta.URL)
	assert.Len(t, meta.Hash, 64)
}

func TestIngestFromURL_HTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, _, err := IngestFromURL(context.Background(), server.URL, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHTTPRequestFailed)
}

func TestIngestFromURL_InvalidURL(t *testing.T) {
	_, _, err := IngestFromURL(context.Background(), "::not-a-url::", false)
	assert.ErrorIs(t, err, ErrHTTPRequestFailed)
}
