package adminapi

import (
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"qrmenu/pkg/analytics"
	"qrmenu/pkg/authz"
	"qrmenu/pkg/problems"
	"qrmenu/pkg/tenants"
)

const topCategoryCount = 5

type categoryCount struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ItemCount int    `json:"itemCount"`
}

type viewsResponse struct {
	analytics.Summary
	RecentViews   []analytics.View `json:"recentViews"`
	TopCategories []categoryCount  `json:"topCategories"`
}

// getViews reports page views for the caller's restaurant over ?days= (default 30).
func (a *App) getViews(w http.ResponseWriter, r *http.Request) {
	rest, _, ok := a.ownRestaurant(w, r, authz.ActionAnalyticsRead)
	if !ok {
		return
	}
	days := 0
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			problems.Write(w, http.StatusBadRequest, "bad-days", "Bad Request", "days must be a positive integer")
			return
		}
		days = n
	}
	s, err := a.views.Summary(r.Context(), rest.ID, days)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	resp := viewsResponse{Summary: s, RecentViews: []analytics.View{}, TopCategories: []categoryCount{}}
	if rl, ok := a.views.(analytics.RecentLister); ok {
		recent, err := rl.Recent(r.Context(), rest.ID, analytics.RecentShown)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		resp.RecentViews = recent
	}
	menu, err := a.store.FindBySubdomain(r.Context(), rest.Subdomain)
	if err != nil {
		a.log.Warnw("top categories", "restaurant", rest.ID, "err", err)
	} else {
		resp.TopCategories = topCategories(menu.Categories, topCategoryCount)
	}
	writeJSON(w, resp, http.StatusOK)
}

// topCategories ranks categories by how many items they list; ties keep menu order.
func topCategories(cats []tenants.Category, n int) []categoryCount {
	out := make([]categoryCount, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryCount{ID: c.ID, Name: c.Name, ItemCount: len(c.Items)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ItemCount > out[j].ItemCount })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// listRestaurantAudits returns the latest audit entries of one restaurant (?limit=, at most 100).
func (a *App) listRestaurantAudits(w http.ResponseWriter, r *http.Request) {
	rest, err := a.store.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if _, ok := a.authorize(w, r, authz.ActionAuditRead, resourceOf(rest)); !ok {
		return
	}
	limit := tenants.DefaultAuditLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			problems.Write(w, http.StatusBadRequest, "bad-limit", "Bad Request", "limit must be a positive integer")
			return
		}
		limit = min(n, tenants.DefaultAuditLimit)
	}
	audits, err := a.store.ListAudits(r.Context(), rest.ID, limit)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"audits": audits}, http.StatusOK)
}
