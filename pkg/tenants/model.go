package tenants

import "time"

// Restaurant is one tenant. Subdomain is unique across all restaurants.
type Restaurant struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Subdomain   string     `json:"subdomain"`
	Description *string    `json:"description,omitempty"`
	LogoURL     *string    `json:"logoUrl,omitempty"`
	OwnerID     *string    `json:"ownerId,omitempty"` // optional until an owner account is linked
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Categories  []Category `json:"menuCategories,omitempty"`
}

// OwnedBy reports whether userID owns the restaurant.
func (r Restaurant) OwnedBy(userID string) bool {
	return r.OwnerID != nil && userID != "" && *r.OwnerID == userID
}

// Category groups menu items; categories are ordered by Order ascending.
type Category struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Order int        `json:"order"`
	Items []MenuItem `json:"menuItems"`
}

// MenuItem prices are plain float64 values; the datastore's decimal type stays inside the store.
type MenuItem struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Price       float64   `json:"price"`
	ImageURL    *string   `json:"imageUrl,omitempty"`
	IsAvailable bool      `json:"isAvailable"`
	CreatedAt   time.Time `json:"-"`
}

// NewRestaurant holds the fields for Store.CreateRestaurant.
type NewRestaurant struct {
	Name        string
	Subdomain   string
	Description *string
	OwnerID     *string
}

const ActionSubdomainChanged = "SUBDOMAIN_CHANGED"

// AuditEntry records an administrative change to a restaurant.
type AuditEntry struct {
	RestaurantID string          `json:"restaurantId"`
	Action       string          `json:"action"`
	Payload      SubdomainChange `json:"payload"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// DefaultAuditLimit caps how many audit rows ListAudits returns.
const DefaultAuditLimit = 100

type SubdomainChange struct {
	OldSubdomain string    `json:"oldSubdomain"`
	NewSubdomain string    `json:"newSubdomain"`
	ChangedBy    string    `json:"changedBy"`
	ChangedAt    time.Time `json:"changedAt"`
}
