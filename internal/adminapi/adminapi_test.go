package adminapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrmenu/pkg/analytics"
	"qrmenu/pkg/authz"
	"qrmenu/pkg/middleware"
	"qrmenu/pkg/problems"
	"qrmenu/pkg/tenants"
)

type fixture struct {
	h       http.Handler
	store   *tenants.MemoryStore
	tracker *analytics.RedisTracker
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := tenants.NewMemoryStore(nil)
	require.NoError(t, store.Seed(ctx, []tenants.SeedRestaurant{
		{ID: "r-pizza", Name: "Pizza Place", Subdomain: "pizza", OwnerID: "owner-1", Categories: []tenants.SeedCategory{
			{Name: "Drinks", Order: 1, Items: []tenants.SeedItem{{Name: "Cola", Price: 2}}},
			{Name: "Pizzas", Order: 2, Items: []tenants.SeedItem{
				{Name: "Margherita", Price: 9.5},
				{Name: "Diavola", Price: 11},
				{Name: "Seasonal", Price: 12, Unavailable: true},
			}},
		}},
		{ID: "r-tacos", Name: "Taco Stand", Subdomain: "tacos", OwnerID: "owner-2"},
	}))
	az, err := authz.New(ctx)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	tracker := analytics.NewRedisTracker(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	app := New(nil, store, az, tracker, Config{BaseDomain: "example.com"})
	r := chi.NewRouter()
	r.Mount("/api", app.Routes())
	return fixture{h: r, store: store, tracker: tracker}
}

func (f fixture) do(method, path, user, role, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if user != "" {
		req.Header.Set(middleware.HeaderUserID, user)
		req.Header.Set(middleware.HeaderUserRole, role)
	}
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestCreateRestaurant(t *testing.T) {
	f := setup(t)

	rec := f.do(http.MethodPost, "/api/admin/restaurants", "admin-1", "ADMIN", `{"name":"My Cafe","subdomain":" MyCafe ","description":"coffee"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode[struct {
		Restaurant tenants.Created `json:"restaurant"`
	}](t, rec)
	assert.Equal(t, "mycafe", body.Restaurant.Subdomain)

	rec = f.do(http.MethodPost, "/api/admin/restaurants", "admin-1", "ADMIN", `{"name":"Other","subdomain":"mycafe"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(http.MethodPost, "/api/admin/restaurants", "admin-1", "ADMIN", `{"name":"Other","subdomain":"www"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	p := decode[problems.Problem](t, rec)
	assert.Equal(t, "reserved", p.Code)
	assert.Equal(t, "This subdomain is reserved and cannot be used", p.Detail)

	rec = f.do(http.MethodPost, "/api/admin/restaurants", "admin-1", "ADMIN", `{"name":"","subdomain":"fresh"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/admin/restaurants", "admin-1", "ADMIN", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/admin/restaurants", "owner-1", "OWNER", `{"name":"Mine","subdomain":"mine"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodPost, "/api/admin/restaurants", "", "", `{"name":"Anon","subdomain":"anon"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListRestaurants(t *testing.T) {
	f := setup(t)

	rec := f.do(http.MethodGet, "/api/admin/restaurants", "admin-1", "ADMIN", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[struct {
		Restaurants []tenants.Restaurant `json:"restaurants"`
	}](t, rec)
	require.Len(t, body.Restaurants, 2)
	assert.Equal(t, "r-tacos", body.Restaurants[0].ID)

	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/admin/restaurants", "owner-1", "OWNER", "").Code)
}

func TestOwnSubdomain(t *testing.T) {
	f := setup(t)

	rec := f.do(http.MethodGet, "/api/restaurant/subdomain", "owner-1", "OWNER", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[map[string]string](t, rec)
	assert.Equal(t, "pizza", got["subdomain"])
	assert.Equal(t, "pizza.example.com", got["fullUrl"])

	rec = f.do(http.MethodPut, "/api/restaurant/subdomain", "owner-1", "OWNER", `{"newSubdomain":"Pizzeria"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[map[string]string](t, rec)
	assert.Equal(t, "pizzeria", got["subdomain"])
	assert.Equal(t, "Subdomain updated successfully", got["message"])
	require.Len(t, f.store.Audits(), 1)
	assert.Equal(t, "owner-1", f.store.Audits()[0].Payload.ChangedBy)

	rec = f.do(http.MethodPut, "/api/restaurant/subdomain", "owner-1", "OWNER", `{"newSubdomain":"pizzeria"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Subdomain unchanged", decode[map[string]string](t, rec)["message"])
	assert.Len(t, f.store.Audits(), 1)

	rec = f.do(http.MethodPut, "/api/restaurant/subdomain", "owner-1", "OWNER", `{"newSubdomain":"tacos"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(http.MethodPut, "/api/restaurant/subdomain", "owner-1", "OWNER", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "empty", decode[problems.Problem](t, rec).Code)

	rec = f.do(http.MethodGet, "/api/restaurant/subdomain", "owner-9", "OWNER", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRename(t *testing.T) {
	f := setup(t)

	rec := f.do(http.MethodPut, "/api/admin/restaurants/r-tacos/subdomain", "admin-1", "ADMIN", `{"newSubdomain":"taqueria"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	_, err := f.store.FindBySubdomain(context.Background(), "taqueria")
	assert.NoError(t, err)

	rec = f.do(http.MethodPut, "/api/admin/restaurants/r-tacos/subdomain", "owner-1", "OWNER", `{"newSubdomain":"stolen"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodPut, "/api/admin/restaurants/r-tacos/subdomain", "owner-2", "OWNER", `{"newSubdomain":"tacos-two"}`)
	assert.Equal(t, http.StatusOK, rec.Code, "owners may rename their own restaurant")

	rec = f.do(http.MethodPut, "/api/admin/restaurants/missing/subdomain", "admin-1", "ADMIN", `{"newSubdomain":"whatever"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestViews(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.tracker.Track(ctx, analytics.View{RestaurantID: "r-pizza", Path: "/"}))
	require.NoError(t, f.tracker.Track(ctx, analytics.View{RestaurantID: "r-pizza", Path: "/"}))
	require.NoError(t, f.tracker.Track(ctx, analytics.View{RestaurantID: "r-tacos", Path: "/"}))

	require.NoError(t, f.tracker.Track(ctx, analytics.View{RestaurantID: "r-pizza", Path: "/drinks", UserAgent: "qr-scanner/1.0"}))

	rec := f.do(http.MethodGet, "/api/analytics/views?days=7", "owner-1", "OWNER", "")
	require.Equal(t, http.StatusOK, rec.Code)
	s := decode[viewsResponse](t, rec)
	assert.Equal(t, 7, s.Days)
	assert.Equal(t, int64(3), s.ViewsToday)
	assert.Equal(t, int64(3), s.AllTime)

	require.Len(t, s.RecentViews, 3)
	assert.Equal(t, "/drinks", s.RecentViews[0].Path, "newest first")
	assert.Equal(t, "qr-scanner/1.0", s.RecentViews[0].UserAgent)

	require.Len(t, s.TopCategories, 2)
	assert.Equal(t, categoryCount{ID: s.TopCategories[0].ID, Name: "Pizzas", ItemCount: 2}, s.TopCategories[0])
	assert.Equal(t, "Drinks", s.TopCategories[1].Name)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/analytics/views?days=abc", "owner-1", "OWNER", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/analytics/views?days=0", "owner-1", "OWNER", "").Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/analytics/views?days=-3", "owner-1", "OWNER", "").Code)
}

func TestViews_NoopTracker(t *testing.T) {
	store := tenants.NewMemoryStore(nil)
	require.NoError(t, store.Seed(context.Background(), []tenants.SeedRestaurant{{ID: "r1", Name: "Bare", Subdomain: "bare", OwnerID: "owner-1"}}))
	az, err := authz.New(context.Background())
	require.NoError(t, err)
	r := chi.NewRouter()
	r.Mount("/api", New(nil, store, az, nil, Config{}).Routes())
	f := fixture{h: r, store: store}

	rec := f.do(http.MethodGet, "/api/analytics/views", "owner-1", "OWNER", "")
	require.Equal(t, http.StatusOK, rec.Code)
	s := decode[viewsResponse](t, rec)
	assert.Equal(t, analytics.DefaultDays, s.Days)
	assert.NotNil(t, s.RecentViews)
	assert.Empty(t, s.RecentViews)
	assert.NotNil(t, s.TopCategories)
	assert.Empty(t, s.TopCategories)
}

func TestSetRestaurantOwner(t *testing.T) {
	f := setup(t)

	rec := f.do(http.MethodPost, "/api/admin/restaurants", "admin-1", "ADMIN", `{"name":"Fresh","subdomain":"fresh"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[struct {
		Restaurant tenants.Created `json:"restaurant"`
	}](t, rec).Restaurant.ID
	ownerPath := "/api/admin/restaurants/" + id + "/owner"

	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/restaurant/subdomain", "owner-9", "OWNER", "").Code)

	rec = f.do(http.MethodPut, ownerPath, "owner-9", "OWNER", `{"ownerId":"owner-9"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code, "owners cannot claim restaurants")

	rec = f.do(http.MethodPut, ownerPath, "admin-1", "ADMIN", `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[problems.Problem](t, rec).Type, "owner-id-required")

	rec = f.do(http.MethodPut, ownerPath, "admin-1", "ADMIN", `{"ownerId":"owner-9"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	linked := decode[struct {
		Restaurant tenants.Restaurant `json:"restaurant"`
	}](t, rec).Restaurant
	assert.True(t, linked.OwnedBy("owner-9"))

	rec = f.do(http.MethodGet, "/api/restaurant/subdomain", "owner-9", "OWNER", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fresh", decode[map[string]string](t, rec)["subdomain"])

	rec = f.do(http.MethodPut, "/api/restaurant/subdomain", "owner-9", "OWNER", `{"newSubdomain":"fresh-menu"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodPut, ownerPath, "admin-1", "ADMIN", `{"ownerId":""}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/restaurant/subdomain", "owner-9", "OWNER", "").Code)

	rec = f.do(http.MethodPut, "/api/admin/restaurants/missing/owner", "admin-1", "ADMIN", `{"ownerId":"owner-9"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRestaurantAudits(t *testing.T) {
	f := setup(t)

	require.Equal(t, http.StatusOK, f.do(http.MethodPut, "/api/restaurant/subdomain", "owner-1", "OWNER", `{"newSubdomain":"pizzeria"}`).Code)
	require.Equal(t, http.StatusOK, f.do(http.MethodPut, "/api/admin/restaurants/r-pizza/subdomain", "admin-1", "ADMIN", `{"newSubdomain":"pizza-two"}`).Code)
	require.Equal(t, http.StatusOK, f.do(http.MethodPut, "/api/restaurant/subdomain", "owner-2", "OWNER", `{"newSubdomain":"taqueria"}`).Code)

	type auditsBody struct {
		Audits []tenants.AuditEntry `json:"audits"`
	}
	rec := f.do(http.MethodGet, "/api/admin/restaurants/r-pizza/audits", "admin-1", "ADMIN", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[auditsBody](t, rec).Audits
	require.Len(t, got, 2)
	assert.Equal(t, tenants.ActionSubdomainChanged, got[0].Action)
	assert.Equal(t, "pizza-two", got[0].Payload.NewSubdomain, "newest first")
	assert.Equal(t, "admin-1", got[0].Payload.ChangedBy)
	assert.Equal(t, "pizza", got[1].Payload.OldSubdomain)
	assert.False(t, got[1].CreatedAt.IsZero())

	rec = f.do(http.MethodGet, "/api/admin/restaurants/r-pizza/audits?limit=1", "admin-1", "ADMIN", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[auditsBody](t, rec).Audits, 1)

	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/admin/restaurants/r-pizza/audits?limit=0", "admin-1", "ADMIN", "").Code)
	assert.Equal(t, http.StatusOK, f.do(http.MethodGet, "/api/admin/restaurants/r-pizza/audits", "owner-1", "OWNER", "").Code)
	assert.Equal(t, http.StatusForbidden, f.do(http.MethodGet, "/api/admin/restaurants/r-pizza/audits", "owner-2", "OWNER", "").Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodGet, "/api/admin/restaurants/missing/audits", "admin-1", "ADMIN", "").Code)
}

func TestPublicRoutesSkipAuthentication(t *testing.T) {
	store := tenants.NewMemoryStore(nil)
	az, err := authz.New(context.Background())
	require.NoError(t, err)
	app := New(nil, store, az, nil, Config{})
	r := chi.NewRouter()
	r.Mount("/api", app.Routes(func(pr chi.Router) {
		pr.Get("/restaurants/{subdomain}", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, map[string]string{"subdomain": chi.URLParam(r, "subdomain")}, http.StatusOK)
		})
	}))
	f := fixture{h: r, store: store}

	rec := f.do(http.MethodGet, "/api/restaurants/pizza", "", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pizza", decode[map[string]string](t, rec)["subdomain"])
	assert.Empty(t, rec.Header().Get("Expires"), "public lookups stay cacheable")

	rec = f.do(http.MethodGet, "/api/admin/restaurants", "", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Expires"))
}

func TestCORSPreflight(t *testing.T) {
	f := setup(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/restaurant/subdomain", nil)
	req.Header.Set("Origin", "http://localhost:3001")
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3001", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestOpenAPIDocIsPublic(t *testing.T) {
	f := setup(t)
	rec := f.do(http.MethodGet, "/api/openapi.json", "", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := decode[struct {
		Paths map[string]map[string]map[string]any `json:"paths"`
	}](t, rec)
	require.Contains(t, doc.Paths, "/api/restaurant/subdomain")
	assert.Equal(t, authz.ActionSubdomainUpdate, doc.Paths["/api/restaurant/subdomain"]["put"]["x-authz-action"])
	assert.Equal(t, authz.ActionRestaurantOwner, doc.Paths["/api/admin/restaurants/{id}/owner"]["put"]["x-authz-action"])
	assert.Equal(t, authz.ActionAuditRead, doc.Paths["/api/admin/restaurants/{id}/audits"]["get"]["x-authz-action"])
	require.Contains(t, doc.Paths, "/api/restaurants/{subdomain}")
	assert.NotContains(t, doc.Paths["/api/restaurants/{subdomain}"]["get"], "x-authz-action")
}

func TestSetRestaurantStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	rec := f.do(http.MethodPut, "/api/admin/restaurants/r-pizza/active", "owner-1", "OWNER", `{"isActive":false}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodPut, "/api/admin/restaurants/r-pizza/active", "admin-1", "ADMIN", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPut, "/api/admin/restaurants/r-pizza/active", "admin-1", "ADMIN", `{"isActive":false}`)
	require.Equal(t, http.StatusOK, rec.Code)
	out := tenants.NewResolver(f.store, nil).Resolve(ctx, "pizza")
	assert.Equal(t, tenants.Inactive, out.Status)

	rec = f.do(http.MethodPut, "/api/admin/restaurants/r-pizza/active", "admin-1", "ADMIN", `{"isActive":true}`)
	require.Equal(t, http.StatusOK, rec.Code)
	out = tenants.NewResolver(f.store, nil).Resolve(ctx, "pizza")
	assert.Equal(t, tenants.Found, out.Status)
}
