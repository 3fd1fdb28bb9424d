// Package routing decides, per request, whether a request belongs to the admin application or to a
// restaurant storefront and how the storefront request is rewritten. It performs no I/O.
package routing

import (
	"strings"

	"qrmenu/pkg/subdomain"
)

// Mode is the environment the process runs in.
type Mode string

const (
	Development Mode = "development"
	Production  Mode = "production"
)

// ParseMode maps an environment name to a Mode. Anything that is not a production spelling is
// treated as development.
func ParseMode(env string) Mode {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod":
		return Production
	}
	return Development
}

// DefaultExcludedPrefixes are path prefixes always served by the admin application.
var DefaultExcludedPrefixes = []string{
	"/api",
	"/_next",
	"/favicon.ico",
	"/uploads",
	"/auth",
	"/dashboard",
	"/admin",
}

// OperationalPrefixes are process endpoints that must never be taken for a tenant.
var OperationalPrefixes = []string{"/healthz", "/metrics"}

// Action is what the transport layer does with a request.
type Action int

const (
	// PassThrough hands the request to the admin application unchanged.
	PassThrough Action = iota
	// Rewrite sends the request to storefront handling at Decision.Path.
	Rewrite
	// NotFound answers immediately; the candidate subdomain was malformed.
	NotFound
)

func (a Action) String() string {
	switch a {
	case PassThrough:
		return "pass_through"
	case Rewrite:
		return "rewrite"
	case NotFound:
		return "not_found"
	}
	return "unknown"
}

type Config struct {
	BaseDomain       string
	Mode             Mode
	ExcludedPrefixes []string // nil means DefaultExcludedPrefixes
}

// Engine holds the immutable routing configuration. Safe for concurrent use.
type Engine struct {
	baseDomain string
	mode       Mode
	dev        bool
	excluded   []string
}

func New(cfg Config) *Engine {
	excluded := cfg.ExcludedPrefixes
	if excluded == nil {
		excluded = DefaultExcludedPrefixes
	}
	mode := cfg.Mode
	if mode == "" {
		mode = Development
	}
	return &Engine{
		baseDomain: cfg.BaseDomain,
		mode:       mode,
		dev:        mode == Development || strings.Contains(cfg.BaseDomain, "localhost"),
		excluded:   append([]string(nil), excluded...),
	}
}

// Development reports whether path-based tenant routing is enabled.
func (e *Engine) Development() bool { return e.dev }

func (e *Engine) BaseDomain() string { return e.baseDomain }

// Decision is the outcome of Decide.
type Decision struct {
	Action  Action
	Path    string // rewritten path, set for Rewrite
	Context Context
}

// Decide routes one request from its Host header and URL path.
func (e *Engine) Decide(host, path string) Decision {
	rc := Context{RawHost: host, RawPath: path, Mode: e.mode}

	if e.excludedPath(path) {
		rc.AdminApp = true
		return Decision{Action: PassThrough, Context: rc}
	}

	var candidate string
	if e.dev {
		if seg, ok := singleSegment(path); ok {
			candidate = seg
			rc.FromPath = true
		}
	}
	if candidate == "" {
		candidate, _ = subdomain.FromHost(host, e.baseDomain)
	}

	if candidate == "" {
		rc.AdminApp = true
		return Decision{Action: PassThrough, Context: rc}
	}

	rc.Candidate = candidate
	if !subdomain.WellFormed(candidate) {
		return Decision{Action: NotFound, Context: rc}
	}

	rc.Subdomain = candidate
	target := "/" + candidate
	if e.dev && path == target {
		target = path
	}
	return Decision{Action: Rewrite, Path: target, Context: rc}
}

func (e *Engine) excludedPath(path string) bool {
	for _, p := range e.excluded {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// singleSegment returns the only segment of paths like /pizza or /pizza/ when it is well formed.
func singleSegment(path string) (string, bool) {
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	if len(parts) != 1 {
		return "", false
	}
	seg := parts[0]
	if strings.Contains(seg, ".") || !subdomain.WellFormed(seg) {
		return "", false
	}
	return seg, true
}
