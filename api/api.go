// Copyright (c) 2026 The StreamPool developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package api assembles the HTTP interface of the engine.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/streampool/streampool/api/eventsapi"
	"github.com/streampool/streampool/api/poolapi"
	"github.com/streampool/streampool/eventdb"
	"github.com/streampool/streampool/metrics"
	"github.com/streampool/streampool/pool"
)

var logger = log.New("pkg", "api")

const defaultEventsLimit = 1000

// New assembles the REST handler. The events endpoint is mounted only
// when an event db is given.
func New(engine *pool.Pool, events *eventdb.EventDB, allowedOrigins string) http.Handler {
	router := mux.NewRouter()
	// runs after route matching so the route name is available
	router.Use(metricsMiddleware)

	poolapi.New(engine).Mount(router, "/pool")
	if events != nil {
		eventsapi.New(events, defaultEventsLimit).Mount(router, "/events")
	}

	handler := handlers.CompressHandler(router)

	origins := strings.Split(strings.TrimSpace(allowedOrigins), ",")
	for i, origin := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(origin))
	}
	return handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost}),
	)(handler)
}

// statusRecorder captures the response code for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		started := time.Now()
		next.ServeHTTP(rec, req)
		elapsed := time.Since(started)

		name := req.URL.Path
		if route := mux.CurrentRoute(req); route != nil && route.GetName() != "" {
			name = route.GetName()
		}
		metrics.CounterVec("api_requests_total", []string{"name", "code"}).
			AddWithLabel(1, map[string]string{"name": name, "code": http.StatusText(rec.status)})
		metrics.Histogram("api_request_duration_ms", metrics.BucketHTTPReqs).
			Observe(elapsed.Milliseconds())
		logger.Trace("handled request", "name", name, "code", rec.status, "elapsed", elapsed)
	})
}
