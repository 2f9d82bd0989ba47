package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	c := New()

	c.ObserveProviderCall("anthropic", time.Second, nil)
	c.ObserveProviderCall("anthropic", time.Second, errors.New("boom"))
	c.ObserveProviderCall("anthropic", time.Second, errors.New("boom"))
	c.RecordExtraction(ExtractionParsed)
	c.ObserveHTTPRequest("POST", "/api/v1/chat", 200, 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.providerRequests.WithLabelValues("anthropic", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.providerRequests.WithLabelValues("anthropic", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.recipeExtractions.WithLabelValues(ExtractionParsed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.httpRequests.WithLabelValues("POST", "/api/v1/chat", "200")))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "chat_provider_requests_total")
	assert.Contains(t, string(body), "chat_recipe_extractions_total")
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveProviderCall("anthropic", time.Second, nil)
		c.RecordExtraction(ExtractionAbsent)
		c.ObserveHTTPRequest("GET", "/health", 200, time.Millisecond)
	})
}
