package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/gvera/pkg/metrics"
)

// NewHealthHandler serves the metrics registry; a scrapeable registry is the
// liveness signal.
func NewHealthHandler() http.Handler {
	return promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{})
}
