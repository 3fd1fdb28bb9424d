package tenants

import (
	"errors"
	"fmt"

	"qrmenu/pkg/subdomain"
)

var (
	ErrNotFound           = errors.New("restaurant not found")
	ErrInactive           = errors.New("restaurant inactive")
	ErrDuplicateSubdomain = errors.New("subdomain is already taken")
	ErrNameRequired       = errors.New("restaurant name is required")
)

// InvalidSubdomainError carries the first validation rule the subdomain broke.
type InvalidSubdomainError struct {
	Subdomain string
	Reason    subdomain.Reason
}

func (e *InvalidSubdomainError) Error() string {
	return fmt.Sprintf("invalid subdomain %q: %s", e.Subdomain, e.Reason.Message())
}

// IsInvalidSubdomain reports whether err is an *InvalidSubdomainError and returns it.
func IsInvalidSubdomain(err error) (*InvalidSubdomainError, bool) {
	var ie *InvalidSubdomainError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}
