package tenants

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"qrmenu/pkg/subdomain"
)

// MemoryStore is an in-process Store used for development and tests.
type MemoryStore struct {
	log *zap.SugaredLogger
	now func() time.Time

	mu          sync.RWMutex
	byID        map[string]*Restaurant
	bySubdomain map[string]string // subdomain -> id
	audits      []AuditEntry
}

func NewMemoryStore(log *zap.SugaredLogger) *MemoryStore {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &MemoryStore{
		log:         log,
		now:         time.Now,
		byID:        map[string]*Restaurant{},
		bySubdomain: map[string]string{},
	}
}

// NewMemoryStoreFromEnv builds a MemoryStore seeded from TENANT_SEED_JSON, or with a single demo
// restaurant when the variable is unset.
func NewMemoryStoreFromEnv(log *zap.SugaredLogger) *MemoryStore {
	m := NewMemoryStore(log)
	entries, err := ParseSeedJSON(os.Getenv("TENANT_SEED_JSON"))
	if err != nil {
		m.log.Warnw("tenant seed json", "err", err)
	}
	if len(entries) == 0 {
		entries = []SeedRestaurant{{
			Name:      "Demo Restaurant",
			Subdomain: "demo",
			Categories: []SeedCategory{{
				Name: "Starters", Order: 1,
				Items: []SeedItem{{Name: "Soup of the day", Price: 4.5}},
			}},
		}}
	}
	if err := m.Seed(context.Background(), entries); err != nil {
		m.log.Warnw("tenant seed", "err", err)
	}
	return m
}

func (m *MemoryStore) FindBySubdomain(_ context.Context, sub string) (Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.bySubdomain[sub]
	if !ok {
		return Restaurant{}, ErrNotFound
	}
	return menuView(*m.byID[id]), nil
}

func (m *MemoryStore) FindByID(_ context.Context, id string) (Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.byID[id]
	if !ok {
		return Restaurant{}, ErrNotFound
	}
	return bare(*r), nil
}

func (m *MemoryStore) FindByOwner(_ context.Context, userID string) (Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var found *Restaurant
	for _, r := range m.byID {
		if r.OwnedBy(userID) && (found == nil || r.CreatedAt.Before(found.CreatedAt)) {
			found = r
		}
	}
	if found == nil {
		return Restaurant{}, ErrNotFound
	}
	return bare(*found), nil
}

func (m *MemoryStore) List(_ context.Context) ([]Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Restaurant, 0, len(m.byID))
	for _, r := range m.byID {
		out = append(out, bare(*r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) CreateRestaurant(_ context.Context, in NewRestaurant) (Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.bySubdomain[in.Subdomain]; taken {
		return Restaurant{}, ErrDuplicateSubdomain
	}
	now := m.now()
	r := &Restaurant{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Subdomain:   in.Subdomain,
		Description: in.Description,
		OwnerID:     in.OwnerID,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.byID[r.ID] = r
	m.bySubdomain[r.Subdomain] = r.ID
	return bare(*r), nil
}

func (m *MemoryStore) UpdateSubdomain(_ context.Context, id, sub string) (Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return Restaurant{}, ErrNotFound
	}
	if other, taken := m.bySubdomain[sub]; taken && other != id {
		return Restaurant{}, ErrDuplicateSubdomain
	}
	delete(m.bySubdomain, r.Subdomain)
	r.Subdomain = sub
	r.UpdatedAt = m.now()
	m.bySubdomain[sub] = id
	return bare(*r), nil
}

func (m *MemoryStore) RecordAudit(_ context.Context, e AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audits = append(m.audits, e)
	return nil
}

// Audits returns a copy of the recorded audit entries.
func (m *MemoryStore) Audits() []AuditEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]AuditEntry(nil), m.audits...)
}

func (m *MemoryStore) ListAudits(_ context.Context, restaurantID string, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = DefaultAuditLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []AuditEntry{}
	for i := len(m.audits) - 1; i >= 0 && len(out) < limit; i-- {
		if m.audits[i].RestaurantID == restaurantID {
			out = append(out, m.audits[i])
		}
	}
	return out, nil
}

func (m *MemoryStore) SetOwner(_ context.Context, id, userID string) (Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return Restaurant{}, ErrNotFound
	}
	r.OwnerID = optional(userID)
	r.UpdatedAt = m.now()
	return bare(*r), nil
}

func (m *MemoryStore) SetActive(_ context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	r.IsActive = active
	r.UpdatedAt = m.now()
	return nil
}

// Seed inserts restaurants whose subdomain is not present yet.
func (m *MemoryStore) Seed(_ context.Context, entries []SeedRestaurant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range entries {
		sub := subdomain.Normalize(e.Subdomain)
		if res := subdomain.Validate(sub); !res.Valid {
			return fmt.Errorf("seed %d: %w", i, &InvalidSubdomainError{Subdomain: sub, Reason: res.Reason})
		}
		if _, ok := m.bySubdomain[sub]; ok {
			continue
		}
		id := e.ID
		if id == "" {
			id = uuid.NewString()
		}
		if cur, taken := m.byID[id]; taken {
			return fmt.Errorf("seed %q: id %s already belongs to %q", sub, id, cur.Subdomain)
		}
		// Later entries are created later so List keeps seed order reversed, like real inserts.
		now := m.now().Add(time.Duration(i) * time.Millisecond)
		r := &Restaurant{
			ID:          id,
			Name:        e.Name,
			Subdomain:   sub,
			Description: optional(e.Description),
			OwnerID:     optional(e.OwnerID),
			IsActive:    !e.Inactive,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		for _, c := range e.Categories {
			cat := Category{ID: uuid.NewString(), Name: c.Name, Order: c.Order}
			for j, it := range c.Items {
				cat.Items = append(cat.Items, MenuItem{
					ID:          uuid.NewString(),
					Name:        it.Name,
					Description: optional(it.Description),
					Price:       it.Price,
					IsAvailable: !it.Unavailable,
					CreatedAt:   now.Add(time.Duration(j) * time.Microsecond),
				})
			}
			r.Categories = append(r.Categories, cat)
		}
		m.byID[id] = r
		m.bySubdomain[sub] = id
		m.log.Debugw("seeded restaurant", "subdomain", sub, "id", id)
	}
	return nil
}

// menuView copies r with categories ordered ascending and only available items, newest first.
func menuView(r Restaurant) Restaurant {
	cats := make([]Category, 0, len(r.Categories))
	for _, c := range r.Categories {
		items := make([]MenuItem, 0, len(c.Items))
		for _, it := range c.Items {
			if it.IsAvailable {
				items = append(items, it)
			}
		}
		sort.SliceStable(items, func(i, j int) bool { return items[i].CreatedAt.After(items[j].CreatedAt) })
		c.Items = items
		cats = append(cats, c)
	}
	sort.SliceStable(cats, func(i, j int) bool { return cats[i].Order < cats[j].Order })
	r.Categories = cats
	return r
}

func bare(r Restaurant) Restaurant {
	r.Categories = nil
	return r
}
