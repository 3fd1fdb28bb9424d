package tenants

import (
	"context"
)

// Store is the datastore boundary for restaurants.
//
// Implementations return ErrNotFound when a lookup has no match and ErrDuplicateSubdomain when a
// write would violate subdomain uniqueness. The uniqueness check inside the store is the final
// authority; callers' pre-checks only make that failure less likely.
type Store interface {
	// FindBySubdomain loads a restaurant with its categories (by order ascending) and only its
	// available items.
	FindBySubdomain(ctx context.Context, subdomain string) (Restaurant, error)
	// FindByID loads a restaurant without its menu.
	FindByID(ctx context.Context, id string) (Restaurant, error)
	// FindByOwner loads the first restaurant owned by userID, without its menu.
	FindByOwner(ctx context.Context, userID string) (Restaurant, error)
	// List returns all restaurants without menus, newest first.
	List(ctx context.Context) ([]Restaurant, error)
	CreateRestaurant(ctx context.Context, in NewRestaurant) (Restaurant, error)
	UpdateSubdomain(ctx context.Context, id, subdomain string) (Restaurant, error)
	RecordAudit(ctx context.Context, e AuditEntry) error
	// ListAudits returns up to limit audit entries for a restaurant, newest first.
	ListAudits(ctx context.Context, restaurantID string, limit int) ([]AuditEntry, error)
	// SetActive toggles whether the storefront is served.
	SetActive(ctx context.Context, id string, active bool) error
	// SetOwner links a restaurant to the user that manages it. An empty userID unlinks it.
	SetOwner(ctx context.Context, id, userID string) (Restaurant, error)
}
