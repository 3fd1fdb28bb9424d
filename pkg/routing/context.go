package routing

import "context"

// HeaderSubdomain carries the resolved subdomain to downstream handlers.
const HeaderSubdomain = "X-Subdomain"

// Context is the per-request routing state. It is created by the routing middleware and read by
// downstream handlers; it is never persisted.
type Context struct {
	RawHost   string
	RawPath   string
	Mode      Mode
	Candidate string // what host or path parsing produced, before the format check
	Subdomain string // set only when the request was rewritten to a storefront
	FromPath  bool   // candidate came from the URL path (development routing)
	AdminApp  bool
}

// Resolved reports whether the request was routed to a storefront.
func (c *Context) Resolved() bool { return c != nil && c.Subdomain != "" }

type ctxKey struct{}

func WithContext(ctx context.Context, rc *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, rc)
}

func FromContext(ctx context.Context) (*Context, bool) {
	rc, ok := ctx.Value(ctxKey{}).(*Context)
	return rc, ok && rc != nil
}
