package adminapi

import (
	"net/http"

	"qrmenu/pkg/authz"
	"qrmenu/pkg/subdomain"
)

func (a *App) getOwnSubdomain(w http.ResponseWriter, r *http.Request) {
	rest, _, ok := a.ownRestaurant(w, r, authz.ActionSubdomainRead)
	if !ok {
		return
	}
	writeJSON(w, map[string]any{
		"subdomain": rest.Subdomain,
		"fullUrl":   subdomain.PublicHost(rest.Subdomain, a.baseDomain),
	}, http.StatusOK)
}

func (a *App) putOwnSubdomain(w http.ResponseWriter, r *http.Request) {
	rest, p, ok := a.ownRestaurant(w, r, authz.ActionSubdomainUpdate)
	if !ok {
		return
	}
	a.rename(w, r, rest.ID, p.UserID)
}
