package middlewares_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	mw "github.com/5w1tchy/library-api/internal/api/middlewares"
	"github.com/5w1tchy/library-api/internal/logging"
	"github.com/5w1tchy/library-api/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessLogRecordsPatternAndUser(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "info", Output: &buf})
	t.Cleanup(func() { logging.Init(logging.Config{}) })

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/books/{id}/", func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(mw.WithUserID(r.Context(), 42))
		w.WriteHeader(http.StatusTeapot)
	})

	counter := metrics.HTTPRequests.WithLabelValues("GET", "GET /api/books/{id}/", "418")
	before := testutil.ToFloat64(counter)

	rec := httptest.NewRecorder()
	mw.AccessLog(mux).ServeHTTP(rec, httptest.NewRequest("GET", "/api/books/9/", nil))

	require.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "access", line["message"])
	assert.Equal(t, "/api/books/9/", line["path"])
	assert.EqualValues(t, 418, line["status"])
	assert.EqualValues(t, 42, line["user_id"])
}
