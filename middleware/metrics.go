package middleware

import (
	"net/http"
	"strconv"
	"time"

	"brilliora/metrics"

	"github.com/gorilla/mux"
)

// Instrument records request count and latency per route template
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		wrapped := wrap(w)
		next.ServeHTTP(wrapped, r)

		route := routeTemplate(r)
		duration := time.Since(startTime).Seconds()
		metrics.HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(duration)
		metrics.HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(wrapped.statusCode)).Inc()
	})
}

// routeTemplate keeps label cardinality bounded by using the mux path
// template instead of the raw path.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unmatched"
}
