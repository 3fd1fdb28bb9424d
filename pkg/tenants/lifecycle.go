package tenants

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"qrmenu/pkg/metrics"
	"qrmenu/pkg/subdomain"
)

// Manager creates restaurants and changes their subdomain while keeping subdomains unique.
type Manager struct {
	store Store
	log   *zap.SugaredLogger
	now   func() time.Time
}

func NewManager(store Store, log *zap.SugaredLogger) *Manager {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Manager{store: store, log: log, now: time.Now}
}

type CreateInput struct {
	Name        string
	Subdomain   string
	Description string
	OwnerID     string // optional
}

type Created struct {
	ID        string `json:"id"`
	Subdomain string `json:"subdomain"`
}

// Create validates the subdomain, checks it is free and creates the restaurant.
// Errors: ErrNameRequired, *InvalidSubdomainError, ErrDuplicateSubdomain.
func (m *Manager) Create(ctx context.Context, in CreateInput) (Created, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Created{}, ErrNameRequired
	}
	sub, err := m.normalized(in.Subdomain)
	if err != nil {
		return Created{}, err
	}

	if _, err := m.store.FindBySubdomain(ctx, sub); err == nil {
		metrics.SubdomainChanges.WithLabelValues("duplicate").Inc()
		return Created{}, ErrDuplicateSubdomain
	} else if !errors.Is(err, ErrNotFound) {
		return Created{}, err
	}

	r, err := m.store.CreateRestaurant(ctx, NewRestaurant{
		Name:        name,
		Subdomain:   sub,
		Description: optional(in.Description),
		OwnerID:     optional(in.OwnerID),
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateSubdomain) {
			metrics.SubdomainChanges.WithLabelValues("duplicate").Inc()
		}
		return Created{}, err
	}
	metrics.SubdomainChanges.WithLabelValues("created").Inc()
	m.log.Infow("restaurant created", "id", r.ID, "subdomain", r.Subdomain)
	return Created{ID: r.ID, Subdomain: r.Subdomain}, nil
}

// RenameResult reports the subdomain after a rename; Changed is false for a no-op.
type RenameResult struct {
	Subdomain string
	Changed   bool
}

// Rename changes a restaurant's subdomain. Renaming to the current subdomain succeeds without
// writing anything. A successful change is audited with the acting user.
// Errors: *InvalidSubdomainError, ErrNotFound, ErrDuplicateSubdomain.
func (m *Manager) Rename(ctx context.Context, restaurantID, rawSubdomain, actor string) (RenameResult, error) {
	sub, err := m.normalized(rawSubdomain)
	if err != nil {
		return RenameResult{}, err
	}
	cur, err := m.store.FindByID(ctx, restaurantID)
	if err != nil {
		return RenameResult{}, err
	}
	if cur.Subdomain == sub {
		metrics.SubdomainChanges.WithLabelValues("unchanged").Inc()
		return RenameResult{Subdomain: sub}, nil
	}

	other, err := m.store.FindBySubdomain(ctx, sub)
	switch {
	case err == nil && other.ID != cur.ID:
		metrics.SubdomainChanges.WithLabelValues("duplicate").Inc()
		return RenameResult{}, ErrDuplicateSubdomain
	case err != nil && !errors.Is(err, ErrNotFound):
		return RenameResult{}, err
	}

	updated, err := m.store.UpdateSubdomain(ctx, cur.ID, sub)
	if err != nil {
		if errors.Is(err, ErrDuplicateSubdomain) {
			metrics.SubdomainChanges.WithLabelValues("duplicate").Inc()
		}
		return RenameResult{}, err
	}

	now := m.now().UTC()
	entry := AuditEntry{
		RestaurantID: cur.ID,
		Action:       ActionSubdomainChanged,
		Payload: SubdomainChange{
			OldSubdomain: cur.Subdomain,
			NewSubdomain: updated.Subdomain,
			ChangedBy:    actor,
			ChangedAt:    now,
		},
		CreatedAt: now,
	}
	// The rename is already committed; a lost audit row is logged rather than reported.
	if err := m.store.RecordAudit(ctx, entry); err != nil {
		m.log.Errorw("record subdomain audit", "restaurant", cur.ID, "err", err)
	}
	metrics.SubdomainChanges.WithLabelValues("renamed").Inc()
	m.log.Infow("subdomain changed", "restaurant", cur.ID, "old", cur.Subdomain, "new", updated.Subdomain, "by", actor)
	return RenameResult{Subdomain: updated.Subdomain, Changed: true}, nil
}

func (m *Manager) normalized(raw string) (string, error) {
	sub := subdomain.Normalize(raw)
	if res := subdomain.Validate(sub); !res.Valid {
		metrics.SubdomainChanges.WithLabelValues("invalid").Inc()
		return "", &InvalidSubdomainError{Subdomain: sub, Reason: res.Reason}
	}
	return sub, nil
}
