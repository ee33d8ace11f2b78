package api

import (
	"net/http"

	"github.com/okian/kickhub/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatsProvider reports the service's live counters: started flag, session
// ids, queued records, open comparisons and loaded stadiums.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// OpsHandler serves the operational endpoints. /healthz answers with the
// kickhub Prometheus registry so a scrape doubles as a liveness probe.
type OpsHandler struct {
	metrics http.Handler
	stats   StatsProvider
}

// NewOpsHandler creates the operational handler over stats.
func NewOpsHandler(stats StatsProvider) *OpsHandler {
	return &OpsHandler{
		metrics: promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
		stats:   stats,
	}
}

// HandleHealth handles GET /healthz.
func (h *OpsHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}

// HandleStats handles GET /stats. Counters change every tick, so the
// response is never cached.
func (h *OpsHandler) HandleStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, h.stats.GetStats())
}
