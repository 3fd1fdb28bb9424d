// Package storefront serves the public menu of the restaurant a request was routed to.
package storefront

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"qrmenu/pkg/analytics"
	"qrmenu/pkg/middleware"
	"qrmenu/pkg/problems"
	"qrmenu/pkg/tenants"
)

const DefaultCacheControl = "public, s-maxage=60, stale-while-revalidate=300"

// Resolver is satisfied by *tenants.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, sub string) tenants.Outcome
}

// ViewRecorder is satisfied by *analytics.Queue.
type ViewRecorder interface {
	Enqueue(v analytics.View) bool
}

type Handler struct {
	resolver     Resolver
	views        ViewRecorder
	cacheControl string
	log          *zap.SugaredLogger
}

func New(resolver Resolver, views ViewRecorder, cacheControl string, log *zap.SugaredLogger) *Handler {
	if cacheControl == "" {
		cacheControl = DefaultCacheControl
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Handler{resolver: resolver, views: views, cacheControl: cacheControl, log: log}
}

// Mount registers the storefront route. Requests only reach it as storefront renders once the
// routing middleware has rewritten them; anything else matching the pattern is a 404.
func (h *Handler) Mount(r chi.Router) {
	r.Get("/{subdomain}", h.serve)
}

// MountAPI registers the path-parameter lookup on the /api subtree. It needs no routing context
// and answers exactly like the storefront route, minus page view tracking.
func (h *Handler) MountAPI(r chi.Router) {
	r.Get("/restaurants/{subdomain}", h.lookup)
}

func (h *Handler) serve(w http.ResponseWriter, r *http.Request) {
	rc := middleware.RoutingFrom(r)
	if !rc.Resolved() || rc.Subdomain != chi.URLParam(r, "subdomain") {
		problems.NotFound(w, "restaurant not found")
		return
	}
	out, ok := h.render(r.Context(), w, rc.Subdomain)
	if ok && h.views != nil {
		h.views.Enqueue(analytics.View{
			RestaurantID: out.Restaurant.ID,
			Path:         rc.RawPath,
			UserAgent:    r.UserAgent(),
			Referer:      r.Referer(),
			At:           time.Now().UTC(),
		})
	}
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) {
	h.render(r.Context(), w, chi.URLParam(r, "subdomain"))
}

// render resolves sub and writes the menu or the matching problem. It reports whether the
// restaurant was found.
func (h *Handler) render(ctx context.Context, w http.ResponseWriter, sub string) (tenants.Outcome, bool) {
	out := h.resolver.Resolve(ctx, sub)
	switch out.Status {
	case tenants.NotFound:
		problems.NotFound(w, "restaurant not found")
		return out, false
	case tenants.Inactive:
		w.Header().Set("Retry-After", "300")
		problems.Write(w, http.StatusServiceUnavailable, "restaurant-unavailable", "Service Unavailable", "this restaurant is temporarily unavailable")
		return out, false
	}

	w.Header().Set("Cache-Control", h.cacheControl)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]any{"restaurant": out.Restaurant}); err != nil {
		h.log.Warnw("write storefront", "subdomain", sub, "err", err)
	}
	return out, true
}
