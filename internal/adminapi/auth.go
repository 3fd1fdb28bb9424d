package adminapi

import (
	"net/http"
	"strings"

	"qrmenu/pkg/authz"
	"qrmenu/pkg/middleware"
	"qrmenu/pkg/problems"
	"qrmenu/pkg/tenants"
)

// cors returns a middleware that sets CORS headers and handles preflight requests.
// allowed may contain exact origins (e.g., http://localhost:3001) or "*" to allow all.
func cors(allowed []string) func(http.Handler) http.Handler {
	match := func(origin string) (string, bool) {
		if origin == "" {
			return "", false
		}
		for _, a := range allowed {
			a = strings.TrimSpace(a)
			if a == "*" || a == origin {
				return a, true
			}
		}
		return "", false
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ao, ok := match(r.Header.Get("Origin")); ok {
				w.Header().Set("Access-Control-Allow-Origin", ao)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, "+middleware.HeaderUserID+", "+middleware.HeaderUserRole)
				if ao != "*" {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
				w.Header().Set("Access-Control-Max-Age", "86400")
				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// authorize runs the policy for the caller and writes 401/403 when it denies.
func (a *App) authorize(w http.ResponseWriter, r *http.Request, action string, res authz.Resource) (authz.Principal, bool) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		problems.Write(w, http.StatusUnauthorized, "unauthorized", "Unauthorized", "")
		return p, false
	}
	allowed, err := a.authz.Allowed(r.Context(), p, action, res)
	if err != nil {
		a.log.Errorw("authz eval", "action", action, "err", err)
		problems.Internal(w)
		return p, false
	}
	if !allowed {
		problems.Write(w, http.StatusForbidden, "forbidden", "Forbidden", "")
		return p, false
	}
	return p, true
}

// ownRestaurant loads the caller's restaurant and authorizes action on it.
func (a *App) ownRestaurant(w http.ResponseWriter, r *http.Request, action string) (tenants.Restaurant, authz.Principal, bool) {
	p, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		problems.Write(w, http.StatusUnauthorized, "unauthorized", "Unauthorized", "")
		return tenants.Restaurant{}, p, false
	}
	rest, err := a.store.FindByOwner(r.Context(), p.UserID)
	if err != nil {
		a.writeError(w, r, err)
		return tenants.Restaurant{}, p, false
	}
	if _, ok := a.authorize(w, r, action, resourceOf(rest)); !ok {
		return tenants.Restaurant{}, p, false
	}
	return rest, p, true
}

func resourceOf(rest tenants.Restaurant) authz.Resource {
	res := authz.Resource{RestaurantID: rest.ID}
	if rest.OwnerID != nil {
		res.OwnerID = *rest.OwnerID
	}
	return res
}
