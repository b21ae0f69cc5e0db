package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/heartmarshall/mindump-backend/internal/service/pipeline"
)

type dbPinger interface {
	Ping(ctx context.Context) error
}

type queueStats interface {
	Stats() pipeline.QueueStats
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	db      dbPinger
	queue   queueStats
	version string
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(db dbPinger, queue queueStats, version string) *HealthHandler {
	return &HealthHandler{db: db, queue: queue, version: version}
}

// HealthResponse is the JSON response for /health, /live and /ready.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status   string `json:"status"`
	Latency  string `json:"latency,omitempty"`
	Pending  *int   `json:"pending,omitempty"`
	Capacity *int   `json:"capacity,omitempty"`
}

// Live is the liveness probe. Always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now()})
}

// Ready is the readiness probe: 200 if the database answers, 503 if not.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "down", Timestamp: time.Now()})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Timestamp: time.Now()})
}

// Health reports the database with latency and the pipeline queue fill.
// A full queue is "degraded" and does not fail the check.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	components := make(map[string]CompStatus, 2)
	overall := "ok"

	start := time.Now()
	if err := h.db.Ping(ctx); err != nil {
		components["database"] = CompStatus{Status: "down"}
		overall = "down"
	} else {
		components["database"] = CompStatus{Status: "ok", Latency: time.Since(start).String()}
	}

	if h.queue != nil {
		st := h.queue.Stats()
		qs := CompStatus{Status: "ok", Pending: &st.Pending, Capacity: &st.Capacity}
		if st.Pending >= st.Capacity {
			qs.Status = "degraded"
			if overall == "ok" {
				overall = "degraded"
			}
		}
		components["pipeline_queue"] = qs
	}

	status := http.StatusOK
	if overall == "down" {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, HealthResponse{
		Status:     overall,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}
