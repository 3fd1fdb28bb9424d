package adminapi

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"qrmenu/pkg/authz"
	"qrmenu/pkg/middleware"
	"qrmenu/pkg/openapi"
)

const apiVersion = "1.0.0"

// Routes builds the /api subtree. The caller mounts it under /api. public registers extra
// unauthenticated routes, such as the storefront's path-parameter lookup.
func (a *App) Routes(public ...func(chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(cors(a.cors))

	r.Get("/openapi.json", apiDoc().ServeHandler("qrmenu-api", apiVersion))
	for _, mount := range public {
		mount(r)
	}

	r.Group(func(pr chi.Router) {
		pr.Use(chimw.NoCache)
		pr.Use(middleware.Authenticate(a.auth, a.log))
		pr.Route("/admin/restaurants", func(ar chi.Router) {
			ar.Get("/", a.listRestaurants)
			ar.Post("/", a.createRestaurant)
			ar.Put("/{id}/subdomain", a.renameRestaurantSubdomain)
			ar.Put("/{id}/active", a.setRestaurantStatus)
			ar.Put("/{id}/owner", a.setRestaurantOwner)
			ar.Get("/{id}/audits", a.listRestaurantAudits)
		})
		pr.Get("/restaurant/subdomain", a.getOwnSubdomain)
		pr.Put("/restaurant/subdomain", a.putOwnSubdomain)
		pr.Get("/analytics/views", a.getViews)
	})
	return r
}

// apiDoc describes the routes registered in Routes.
func apiDoc() *openapi.Registry {
	reg := openapi.NewRegistry()
	problemCodes := map[string]string{"401": "unauthenticated", "403": "forbidden"}
	with := func(extra map[string]string) map[string]any {
		m := map[string]string{}
		for k, v := range problemCodes {
			m[k] = v
		}
		for k, v := range extra {
			m[k] = v
		}
		return openapi.Responses(m)
	}
	renameBody := openapi.JSONBody([]string{"newSubdomain"}, map[string]string{"newSubdomain": "string"})
	idParam := map[string]any{"name": "id", "in": "path", "required": true, "schema": map[string]any{"type": "string"}}

	reg.Register(openapi.Operation{
		Method: http.MethodGet, Path: "/api/admin/restaurants", Summary: "List restaurants, newest first",
		Tags: []string{"admin"}, Action: authz.ActionRestaurantList,
		Responses: with(map[string]string{"200": "restaurants"}),
	})
	reg.Register(openapi.Operation{
		Method: http.MethodPost, Path: "/api/admin/restaurants", Summary: "Create a restaurant with a unique subdomain",
		Tags: []string{"admin"}, Action: authz.ActionRestaurantCreate,
		RequestBody: openapi.JSONBody([]string{"name", "subdomain"}, map[string]string{
			"name": "string", "subdomain": "string", "description": "string", "ownerId": "string",
		}),
		Responses: with(map[string]string{"201": "created", "400": "invalid name or subdomain", "409": "subdomain taken"}),
	})
	reg.Register(openapi.Operation{
		Method: http.MethodPut, Path: "/api/admin/restaurants/{id}/subdomain", Summary: "Rename a restaurant's subdomain",
		Tags: []string{"admin"}, Action: authz.ActionSubdomainUpdate,
		Parameters:  []any{idParam},
		RequestBody: renameBody,
		Responses:   with(map[string]string{"200": "renamed or unchanged", "400": "invalid subdomain", "404": "no such restaurant", "409": "subdomain taken"}),
	})
	reg.Register(openapi.Operation{
		Method: http.MethodPut, Path: "/api/admin/restaurants/{id}/active", Summary: "Switch a storefront on or off",
		Tags: []string{"admin"}, Action: authz.ActionRestaurantStatus,
		Parameters:  []any{idParam},
		RequestBody: openapi.JSONBody([]string{"isActive"}, map[string]string{"isActive": "boolean"}),
		Responses:   with(map[string]string{"200": "status changed", "400": "isActive missing", "404": "no such restaurant"}),
	})
	reg.Register(openapi.Operation{
		Method: http.MethodPut, Path: "/api/admin/restaurants/{id}/owner", Summary: "Link or unlink the owner account",
		Tags: []string{"admin"}, Action: authz.ActionRestaurantOwner,
		Parameters:  []any{idParam},
		RequestBody: openapi.JSONBody([]string{"ownerId"}, map[string]string{"ownerId": "string"}),
		Responses:   with(map[string]string{"200": "owner changed", "400": "ownerId missing", "404": "no such restaurant"}),
	})
	reg.Register(openapi.Operation{
		Method: http.MethodGet, Path: "/api/admin/restaurants/{id}/audits", Summary: "Latest audit entries, newest first",
		Tags: []string{"admin"}, Action: authz.ActionAuditRead,
		Parameters: []any{idParam, map[string]any{"name": "limit", "in": "query", "schema": map[string]any{"type": "integer", "default": 100, "maximum": 100}}},
		Responses:  with(map[string]string{"200": "audit entries", "400": "bad limit", "404": "no such restaurant"}),
	})
	reg.Register(openapi.Operation{
		Method: http.MethodGet, Path: "/api/restaurants/{subdomain}", Summary: "Public menu of a restaurant by subdomain",
		Tags:       []string{"storefront"},
		Parameters: []any{map[string]any{"name": "subdomain", "in": "path", "required": true, "schema": map[string]any{"type": "string"}}},
		Responses:  openapi.Responses(map[string]string{"200": "restaurant with menu", "404": "unknown restaurant", "503": "restaurant inactive"}),
	})
	reg.Register(openapi.Operation{
		Method: http.MethodGet, Path: "/api/restaurant/subdomain", Summary: "Current subdomain of the caller's restaurant",
		Tags: []string{"owner"}, Action: authz.ActionSubdomainRead,
		Responses: with(map[string]string{"200": "subdomain and full URL", "404": "caller owns no restaurant"}),
	})
	reg.Register(openapi.Operation{
		Method: http.MethodPut, Path: "/api/restaurant/subdomain", Summary: "Rename the caller's restaurant",
		Tags: []string{"owner"}, Action: authz.ActionSubdomainUpdate,
		RequestBody: renameBody,
		Responses:   with(map[string]string{"200": "renamed or unchanged", "400": "invalid subdomain", "404": "caller owns no restaurant", "409": "subdomain taken"}),
	})
	reg.Register(openapi.Operation{
		Method: http.MethodGet, Path: "/api/analytics/views", Summary: "Page views of the caller's restaurant",
		Tags: []string{"owner"}, Action: authz.ActionAnalyticsRead,
		Parameters: []any{map[string]any{"name": "days", "in": "query", "schema": map[string]any{"type": "integer", "default": 30}}},
		Responses:  with(map[string]string{"200": "view summary", "400": "bad days", "404": "caller owns no restaurant"}),
	})
	return reg
}

// CORSOriginsFromEnv reads ADMIN_CORS_ORIGINS as a comma separated list.
func CORSOriginsFromEnv() []string {
	v := strings.TrimSpace(os.Getenv("ADMIN_CORS_ORIGINS"))
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
