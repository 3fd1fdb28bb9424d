package tenants

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStore struct {
	*MemoryStore
	calls int
}

func (b *brokenStore) FindBySubdomain(context.Context, string) (Restaurant, error) {
	b.calls++
	return Restaurant{}, errors.New("connection refused")
}

func seededStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore(nil)
	require.NoError(t, s.Seed(context.Background(), []SeedRestaurant{
		{
			ID: "r-pizza", Name: "Pizza Place", Subdomain: "pizza",
			Categories: []SeedCategory{
				{Name: "Drinks", Order: 2, Items: []SeedItem{{Name: "Cola", Price: 2.5}}},
				{Name: "Pizzas", Order: 1, Items: []SeedItem{
					{Name: "Margherita", Price: 9.9},
					{Name: "Seasonal", Price: 12, Unavailable: true},
				}},
			},
		},
		{ID: "r-closed", Name: "Closed Cafe", Subdomain: "closed", Inactive: true},
	}))
	return s
}

func TestResolve_Found(t *testing.T) {
	r := NewResolver(seededStore(t), nil)

	out := r.Resolve(context.Background(), "pizza")
	require.Equal(t, Found, out.Status)
	require.NoError(t, out.Err())
	assert.Equal(t, "r-pizza", out.Restaurant.ID)
	assert.Equal(t, "Pizza Place", out.Restaurant.Name)

	cats := out.Restaurant.Categories
	require.Len(t, cats, 2)
	assert.Equal(t, "Pizzas", cats[0].Name, "categories ordered by order ascending")
	assert.Equal(t, "Drinks", cats[1].Name)
	require.Len(t, cats[0].Items, 1, "unavailable items are excluded")
	assert.Equal(t, "Margherita", cats[0].Items[0].Name)
	assert.InDelta(t, 9.9, cats[0].Items[0].Price, 1e-9)
}

func TestResolve_NotFoundAndInactive(t *testing.T) {
	r := NewResolver(seededStore(t), nil)
	ctx := context.Background()

	out := r.Resolve(ctx, "pizza-two")
	assert.Equal(t, NotFound, out.Status)
	assert.ErrorIs(t, out.Err(), ErrNotFound)

	out = r.Resolve(ctx, "closed")
	assert.Equal(t, Inactive, out.Status)
	assert.ErrorIs(t, out.Err(), ErrInactive)
	assert.Empty(t, out.Restaurant.ID, "inactive outcome carries no tenant data")
}

func TestResolve_InvalidSkipsLookup(t *testing.T) {
	store := &brokenStore{MemoryStore: NewMemoryStore(nil)}
	r := NewResolver(store, nil)

	for _, sub := range []string{"ab", "www", "admin", "-bad", ""} {
		assert.Equal(t, NotFound, r.Resolve(context.Background(), sub).Status, sub)
	}
	assert.Zero(t, store.calls)
}

func TestResolve_DatastoreErrorIsNotFound(t *testing.T) {
	store := &brokenStore{MemoryStore: NewMemoryStore(nil)}
	r := NewResolver(store, nil)

	out := r.Resolve(context.Background(), "pizza")
	assert.Equal(t, NotFound, out.Status)
	assert.Equal(t, 1, store.calls)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "found", Found.String())
	assert.Equal(t, "not_found", NotFound.String())
	assert.Equal(t, "inactive", Inactive.String())
}
