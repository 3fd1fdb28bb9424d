package adminapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"qrmenu/pkg/authz"
	"qrmenu/pkg/problems"
	"qrmenu/pkg/tenants"
)

type createRestaurantBody struct {
	Name        string `json:"name"`
	Subdomain   string `json:"subdomain"`
	Description string `json:"description"`
	OwnerID     string `json:"ownerId"`
}

type statusBody struct {
	IsActive *bool `json:"isActive"`
}

type ownerBody struct {
	OwnerID *string `json:"ownerId"`
}

type renameBody struct {
	NewSubdomain string `json:"newSubdomain"`
}

func (a *App) listRestaurants(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.authorize(w, r, authz.ActionRestaurantList, authz.Resource{}); !ok {
		return
	}
	list, err := a.store.List(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []tenants.Restaurant{}
	}
	writeJSON(w, map[string]any{"restaurants": list}, http.StatusOK)
}

func (a *App) createRestaurant(w http.ResponseWriter, r *http.Request) {
	p, ok := a.authorize(w, r, authz.ActionRestaurantCreate, authz.Resource{})
	if !ok {
		return
	}
	var b createRestaurantBody
	if !decodeJSON(w, r, &b) {
		return
	}
	created, err := a.manager.Create(r.Context(), tenants.CreateInput{
		Name:        b.Name,
		Subdomain:   b.Subdomain,
		Description: b.Description,
		OwnerID:     b.OwnerID,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.log.Infow("restaurant created", "id", created.ID, "subdomain", created.Subdomain, "by", p.UserID)
	writeJSON(w, map[string]any{
		"message":    "Restaurant created successfully",
		"restaurant": created,
	}, http.StatusCreated)
}

func (a *App) renameRestaurantSubdomain(w http.ResponseWriter, r *http.Request) {
	rest, err := a.store.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	p, ok := a.authorize(w, r, authz.ActionSubdomainUpdate, resourceOf(rest))
	if !ok {
		return
	}
	a.rename(w, r, rest.ID, p.UserID)
}

func (a *App) rename(w http.ResponseWriter, r *http.Request, restaurantID, actor string) {
	var b renameBody
	if !decodeJSON(w, r, &b) {
		return
	}
	res, err := a.manager.Rename(r.Context(), restaurantID, b.NewSubdomain, actor)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	msg := "Subdomain unchanged"
	if res.Changed {
		msg = "Subdomain updated successfully"
	}
	writeJSON(w, map[string]any{"message": msg, "subdomain": res.Subdomain}, http.StatusOK)
}

// setRestaurantStatus switches a storefront on or off. Inactive storefronts answer 503.
func (a *App) setRestaurantStatus(w http.ResponseWriter, r *http.Request) {
	rest, err := a.store.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	p, ok := a.authorize(w, r, authz.ActionRestaurantStatus, resourceOf(rest))
	if !ok {
		return
	}
	var b statusBody
	if !decodeJSON(w, r, &b) {
		return
	}
	if b.IsActive == nil {
		problems.Write(w, http.StatusBadRequest, "is-active-required", "Bad Request", "isActive is required")
		return
	}
	if err := a.store.SetActive(r.Context(), rest.ID, *b.IsActive); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.log.Infow("restaurant status changed", "id", rest.ID, "active", *b.IsActive, "by", p.UserID)
	writeJSON(w, map[string]any{"id": rest.ID, "isActive": *b.IsActive}, http.StatusOK)
}

// setRestaurantOwner links an owner account to a restaurant; an empty ownerId unlinks it.
func (a *App) setRestaurantOwner(w http.ResponseWriter, r *http.Request) {
	rest, err := a.store.FindByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	p, ok := a.authorize(w, r, authz.ActionRestaurantOwner, resourceOf(rest))
	if !ok {
		return
	}
	var b ownerBody
	if !decodeJSON(w, r, &b) {
		return
	}
	if b.OwnerID == nil {
		problems.Write(w, http.StatusBadRequest, "owner-id-required", "Bad Request", "ownerId is required")
		return
	}
	updated, err := a.store.SetOwner(r.Context(), rest.ID, strings.TrimSpace(*b.OwnerID))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.log.Infow("restaurant owner changed", "id", rest.ID, "owner", updated.OwnerID, "by", p.UserID)
	writeJSON(w, map[string]any{
		"message":    "Owner updated successfully",
		"restaurant": updated,
	}, http.StatusOK)
}
