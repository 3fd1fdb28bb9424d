package tenants

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"qrmenu/pkg/metrics"
	"qrmenu/pkg/subdomain"
)

// Status is the kind of a resolution outcome.
type Status int

const (
	NotFound Status = iota
	Found
	Inactive
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case Inactive:
		return "inactive"
	}
	return "not_found"
}

// Outcome is the result of resolving a subdomain. Restaurant is populated only for Found.
type Outcome struct {
	Status     Status
	Restaurant Restaurant
}

// Err maps the outcome to ErrNotFound, ErrInactive or nil.
func (o Outcome) Err() error {
	switch o.Status {
	case Found:
		return nil
	case Inactive:
		return ErrInactive
	}
	return ErrNotFound
}

// Resolver maps a subdomain to a restaurant and its menu. It is the single lookup path for every
// storefront entry point, whether the subdomain came from the routing layer or a path parameter.
type Resolver struct {
	store Store
	log   *zap.SugaredLogger
}

func NewResolver(store Store, log *zap.SugaredLogger) *Resolver {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Resolver{store: store, log: log}
}

// Resolve never returns a datastore error: failures are logged and reported as NotFound.
// Subdomains that fail full validation (length, reserved names) are NotFound without a lookup.
func (r *Resolver) Resolve(ctx context.Context, sub string) Outcome {
	out := r.resolve(ctx, sub)
	metrics.TenantResolutions.WithLabelValues(out.Status.String()).Inc()
	return out
}

func (r *Resolver) resolve(ctx context.Context, sub string) Outcome {
	if res := subdomain.Validate(sub); !res.Valid {
		return Outcome{Status: NotFound}
	}

	start := time.Now()
	rest, err := r.store.FindBySubdomain(ctx, sub)
	metrics.ResolutionLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.log.Errorw("resolve restaurant", "subdomain", sub, "err", err)
		}
		return Outcome{Status: NotFound}
	}
	if !rest.IsActive {
		return Outcome{Status: Inactive}
	}

	for i := range rest.Categories {
		rest.Categories[i].Items = availableOnly(rest.Categories[i].Items)
	}
	return Outcome{Status: Found, Restaurant: rest}
}

func availableOnly(items []MenuItem) []MenuItem {
	out := items[:0:0]
	for _, it := range items {
		if it.IsAvailable {
			out = append(out, it)
		}
	}
	return out
}
