// Package authz decides what an authenticated caller may do, using an embedded Rego policy.
package authz

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleOwner Role = "OWNER"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID string
	Role   Role
}

// Actions checked against the policy.
const (
	ActionRestaurantList   = "restaurant.list"
	ActionRestaurantCreate = "restaurant.create"
	ActionRestaurantStatus = "restaurant.status.update"
	ActionRestaurantOwner  = "restaurant.owner.update"
	ActionAuditRead        = "restaurant.audit.read"
	ActionSubdomainRead    = "restaurant.subdomain.read"
	ActionSubdomainUpdate  = "restaurant.subdomain.update"
	ActionAnalyticsRead    = "analytics.read"
)

const policyModule = `package qrmenu.authz

default allow = false

allow {
	input.principal.role == "ADMIN"
}

allow {
	input.principal.role == "OWNER"
	owner_actions[input.action]
	input.resource.owner_id != ""
	input.resource.owner_id == input.principal.id
}

owner_actions = {"restaurant.subdomain.read", "restaurant.subdomain.update", "restaurant.audit.read", "analytics.read"}
`

// Resource is the restaurant an action targets. OwnerID is empty for unowned restaurants and for
// actions without a target.
type Resource struct {
	RestaurantID string
	OwnerID      string
}

// Authorizer evaluates the prepared policy. Safe for concurrent use.
type Authorizer struct {
	query rego.PreparedEvalQuery
}

func New(ctx context.Context) (*Authorizer, error) {
	q, err := rego.New(
		rego.Query("data.qrmenu.authz.allow"),
		rego.Module("authz.rego", policyModule),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare authz policy: %w", err)
	}
	return &Authorizer{query: q}, nil
}

// Allowed reports whether p may perform action on res.
func (a *Authorizer) Allowed(ctx context.Context, p Principal, action string, res Resource) (bool, error) {
	input := map[string]any{
		"principal": map[string]any{"id": p.UserID, "role": string(p.Role)},
		"action":    action,
		"resource":  map[string]any{"id": res.RestaurantID, "owner_id": res.OwnerID},
	}
	rs, err := a.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, err
	}
	return rs.Allowed(), nil
}
