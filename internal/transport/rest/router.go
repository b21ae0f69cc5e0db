package rest

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heartmarshall/mindump-backend/internal/transport/middleware"
)

// Handlers groups every REST handler the router mounts.
type Handlers struct {
	Health   *HealthHandler
	Dump     *DumpHandler
	Inbox    *InboxHandler
	Event    *EventHandler
	Person   *PersonHandler
	Item     *ItemHandler
	Calendar *CalendarHandler
}

// RouterConfig selects the outer middleware and the metrics endpoint.
type RouterConfig struct {
	// Outer wraps every route, probes included.
	Outer middleware.Middleware
	// Auth wraps /api/v1 routes only.
	Auth        middleware.Middleware
	MetricsPath string
}

// NewRouter builds the HTTP routing table. Probes and metrics skip
// authentication.
func NewRouter(h Handlers, cfg RouterConfig) http.Handler {
	api := http.NewServeMux()

	api.HandleFunc("POST /api/v1/dumps", h.Dump.Create)
	api.HandleFunc("GET /api/v1/dumps", h.Dump.History)
	api.HandleFunc("GET /api/v1/dumps/{id}", h.Dump.Get)

	api.HandleFunc("GET /api/v1/inbox", h.Inbox.List)
	api.HandleFunc("GET /api/v1/inbox/{id}", h.Inbox.Get)
	api.HandleFunc("POST /api/v1/inbox/{id}/confirm", h.Inbox.Confirm)
	api.HandleFunc("POST /api/v1/inbox/{id}/dismiss", h.Inbox.Dismiss)
	api.HandleFunc("POST /api/v1/inbox/{id}/reject", h.Inbox.Dismiss)
	api.HandleFunc("DELETE /api/v1/inbox/{id}", h.Inbox.Delete)

	api.HandleFunc("GET /api/v1/events", h.Event.List)
	api.HandleFunc("POST /api/v1/events", h.Event.Create)
	api.HandleFunc("GET /api/v1/events/{id}", h.Event.Get)
	api.HandleFunc("POST /api/v1/events/{id}/sync", h.Event.Sync)
	api.HandleFunc("DELETE /api/v1/events/{id}", h.Event.Delete)

	api.HandleFunc("GET /api/v1/people", h.Person.List)
	api.HandleFunc("POST /api/v1/people", h.Person.Upsert)
	api.HandleFunc("GET /api/v1/people/{id}", h.Person.Get)
	api.HandleFunc("PATCH /api/v1/people/{id}", h.Person.Update)
	api.HandleFunc("DELETE /api/v1/people/{id}", h.Person.Delete)
	api.HandleFunc("GET /api/v1/people/{id}/overview", h.Person.Overview)

	api.HandleFunc("GET /api/v1/items", h.Item.ListActive)
	api.HandleFunc("POST /api/v1/items", h.Item.Create)
	api.HandleFunc("GET /api/v1/items/archived", h.Item.ListArchived)
	api.HandleFunc("GET /api/v1/items/dashboard", h.Item.Dashboard)
	api.HandleFunc("GET /api/v1/items/{id}", h.Item.Get)
	api.HandleFunc("POST /api/v1/items/{id}/complete", h.Item.Complete)
	api.HandleFunc("POST /api/v1/items/{id}/archive", h.Item.Archive)
	api.HandleFunc("POST /api/v1/items/{id}/unarchive", h.Item.Unarchive)
	api.HandleFunc("DELETE /api/v1/items/{id}", h.Item.Delete)

	api.HandleFunc("GET /api/v1/calendar/auth-url", h.Calendar.AuthURL)
	api.HandleFunc("POST /api/v1/calendar/link", h.Calendar.Link)
	api.HandleFunc("GET /api/v1/calendar", h.Calendar.Get)
	api.HandleFunc("DELETE /api/v1/calendar", h.Calendar.Unlink)

	root := http.NewServeMux()
	root.HandleFunc("GET /live", h.Health.Live)
	root.HandleFunc("GET /ready", h.Health.Ready)
	root.HandleFunc("GET /health", h.Health.Health)
	if cfg.MetricsPath != "" {
		root.Handle("GET "+cfg.MetricsPath, promhttp.Handler())
	}
	root.Handle("/api/", middleware.Chain(cfg.Auth)(api))

	return middleware.Chain(cfg.Outer)(root)
}
