package shopsearch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBody = `{
	"shopping_results": [
		{"position": 1, "product_id": "p1", "title": "Olive Knit Sweater", "price": "$39.99", "source": "Shop A", "link": "https://a.example/p1", "thumbnail": "https://img/p1.jpg"},
		{"position": 2, "product_id": "p2", "title": "Sage Green Pullover", "price": "$24.50", "source": "Shop B", "link": "https://b.example/p2", "thumbnail": "https://img/p2.jpg"},
		{"position": 3, "product_id": "p3", "title": "Forest Cardigan", "price": "$55.00", "source": "Shop C", "link": "https://c.example/p3", "thumbnail": "https://img/p3.jpg"}
	]
}`

func newTestClient(serverURL string) Client {
	return NewClient("test-key",
		WithBaseURL(serverURL),
		WithRateLimit(1000),
	)
}

func TestSearch_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "google_shopping", q.Get("engine"))
		assert.Equal(t, "olive knit sweater", q.Get("q"))
		assert.Equal(t, "test-key", q.Get("api_key"))
		_, _ = w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL).Search(context.Background(), "olive knit sweater")
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "p1", resp.Results[0].ProductID)
	assert.Equal(t, "Olive Knit Sweater", resp.Results[0].Title)
	assert.Equal(t, "https://img/p2.jpg", resp.Results[1].Thumbnail)
}

func TestSearch_LimitTruncates(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("num"))
		_, _ = w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL).Search(context.Background(), "sweater", WithLimit(2))
	require.NoError(t, err)
	assert.Len(t, resp.Results, 2)
}

func TestSearch_NoResultsStatusIsEmpty(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error": "Google Shopping hasn't returned any results for this query."}`))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL).Search(context.Background(), "nonexistent widget")
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
}

func TestSearch_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(sampleBody))
	}))
	defer srv.Close()

	resp, err := newTestClient(srv.URL).Search(context.Background(), "sweater")
	require.NoError(t, err)
	assert.Len(t, resp.Results, 3)
	assert.Equal(t, int64(3), calls.Load())
}

func TestSearch_ClientErrorNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": "invalid api key"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Search(context.Background(), "sweater")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, int64(1), calls.Load())
}

func TestRetryableStatusCode(t *testing.T) {
	t.Parallel()

	assert.True(t, retryableStatusCode(http.StatusTooManyRequests))
	assert.True(t, retryableStatusCode(http.StatusInternalServerError))
	assert.True(t, retryableStatusCode(http.StatusBadGateway))
	assert.True(t, retryableStatusCode(http.StatusServiceUnavailable))
	assert.False(t, retryableStatusCode(http.StatusOK))
	assert.False(t, retryableStatusCode(http.StatusUnauthorized))
	assert.False(t, retryableStatusCode(http.StatusUnprocessableEntity))
}
