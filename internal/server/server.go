// Package server contains the HTTP query server.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ibs-tree/ibstree/internal/config"
	"github.com/ibs-tree/ibstree/internal/metrics"
	"github.com/ibs-tree/ibstree/internal/workload"
)

// HTTP server timeout constants
const (
	httpTimeoutRead  = 10 * time.Second
	httpTimeoutWrite = 30 * time.Second
	httpTimeoutIdle  = 30 * time.Second
)

// Accepted values of the query endpoint's "type" parameter.
const (
	queryTypePoint = "point"
	queryTypeRange = "range"
)

// Fields used in the log messages.
const (
	fieldQueryType = "query_type"
	fieldWorkload  = "workload"
	fieldMatches   = "matches"
)

// queryResponse is the JSON body returned by the query endpoint.
type queryResponse struct {
	Matches []string `json:"matches"`
}

// statsResponse is the JSON body returned by the stats endpoint.
type statsResponse struct {
	Count        int    `json:"count"`
	MaximumDepth int    `json:"maximum_depth"`
	Span         string `json:"span,omitempty"`
	HasSpan      bool   `json:"has_span"`
}

// writeJSON encodes v as the response body and logs any encoding failure.
func writeJSON(writer http.ResponseWriter, v interface{}) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(writer).Encode(v); err != nil {
		log.Error().Err(err).Msg("Cannot write JSON response")
	}
}

// parseBoolParam parses a boolean query parameter, defaulting to fallback
// when absent.
func parseBoolParam(values map[string][]string, name string, fallback bool) bool {
	raw := firstValue(values, name)
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func firstValue(values map[string][]string, name string) string {
	v := values[name]
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// getQuery answers an ad hoc point or range query against the store's
// current workload.
func getQuery(writer http.ResponseWriter, request *http.Request, store *workload.Store) {
	w := store.Load()
	params := request.URL.Query()
	queryType := firstValue(params, "type")

	start := time.Now()
	var matches []string

	switch queryType {
	case queryTypePoint:
		at, err := strconv.ParseInt(firstValue(params, "at"), 10, 64)
		if err != nil {
			writer.WriteHeader(http.StatusBadRequest)
			return
		}
		for _, iv := range w.Tree().FindOverlapsAt(workload.Point(at)) {
			matches = append(matches, iv.ID)
		}
	case queryTypeRange:
		low, errLow := strconv.ParseInt(firstValue(params, "low"), 10, 64)
		high, errHigh := strconv.ParseInt(firstValue(params, "high"), 10, 64)
		if errLow != nil || errHigh != nil {
			writer.WriteHeader(http.StatusBadRequest)
			return
		}
		query := workload.NewInterval("", config.IntervalSpec{
			Low:          low,
			High:         high,
			LowIncluded:  parseBoolParam(params, "low_included", true),
			HighIncluded: parseBoolParam(params, "high_included", true),
		})
		for _, iv := range w.Tree().FindOverlaps(query) {
			matches = append(matches, iv.ID)
		}
	default:
		writer.WriteHeader(http.StatusBadRequest)
		return
	}

	duration := time.Since(start)
	metrics.RecordQuery(w.Name, queryType, duration.Seconds())
	log.Debug().
		Str(fieldWorkload, w.Name).
		Str(fieldQueryType, queryType).
		Int(fieldMatches, len(matches)).
		Dur("duration", duration).
		Msg("Query served")

	writeJSON(writer, queryResponse{Matches: matches})
}

// getStats reports the current size, maximum depth, and span of the store's
// current workload's tree.
func getStats(writer http.ResponseWriter, _ *http.Request, store *workload.Store) {
	w := store.Load()
	stats := w.Stats()
	metrics.RecordTreeState(w.Name, stats.Count, stats.MaximumDepth)
	writeJSON(writer, statsResponse{
		Count:        stats.Count,
		MaximumDepth: stats.MaximumDepth,
		Span:         stats.Span,
		HasSpan:      stats.HasSpan,
	})
}

// getHealth returns a 204 status code to indicate that the server is running.
func getHealth(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusNoContent)
}

// getPrometheusMetrics returns metrics in Prometheus exposition format.
func getPrometheusMetrics(writer http.ResponseWriter, request *http.Request) {
	metrics.Handler().ServeHTTP(writer, request)
}

// NewServer creates a new HTTP server that answers queries against the
// workload currently held by store.
func NewServer(address string, store *workload.Store) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/query", func(writer http.ResponseWriter, request *http.Request) {
		getQuery(writer, request, store)
	})
	mux.HandleFunc("GET /v1/stats", func(writer http.ResponseWriter, request *http.Request) {
		getStats(writer, request, store)
	})
	mux.HandleFunc("GET /v1/health", getHealth)
	mux.HandleFunc("GET /metrics", getPrometheusMetrics)

	return &http.Server{
		Addr:         address,
		Handler:      mux,
		ReadTimeout:  httpTimeoutRead,
		WriteTimeout: httpTimeoutWrite,
		IdleTimeout:  httpTimeoutIdle,
	}
}
