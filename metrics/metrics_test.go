// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopByDefault(t *testing.T) {
	// must not panic without a backend
	Counter("noop_counter").Add(1)
	Gauge("noop_gauge").Set(5)
	Histogram("noop_histogram", Bucket10s).Observe(100)
	CounterVec("noop_vec", []string{"op"}).AddWithLabel(1, map[string]string{"op": "stake"})
}

func TestPrometheusBackend(t *testing.T) {
	InitializePrometheusMetrics()

	Counter("test_count").Add(3)
	Counter("test_count").Add(2)
	Gauge("test_gauge").Set(42)
	CounterVec("test_count_vec", []string{"op"}).AddWithLabel(1, map[string]string{"op": "claim"})

	handler := HTTPHandler()
	require.NotNil(t, handler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)

	assert.True(t, strings.Contains(string(body), "streampool_test_count 5"))
	assert.True(t, strings.Contains(string(body), "streampool_test_gauge 42"))
	assert.True(t, strings.Contains(string(body), `streampool_test_count_vec{op="claim"} 1`))
}

func TestGetOrCreateReturnsSameMeter(t *testing.T) {
	InitializePrometheusMetrics()

	a := Counter("test_same_meter")
	b := Counter("test_same_meter")
	assert.Equal(t, a, b)
}
