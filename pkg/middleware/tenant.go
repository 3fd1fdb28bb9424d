// pkg/middleware/tenant.go
package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"qrmenu/pkg/metrics"
	"qrmenu/pkg/problems"
	"qrmenu/pkg/routing"
)

// Route applies the routing engine to every request before chi matches a route. Rewritten requests
// reach the storefront with the tenant subdomain in both the X-Subdomain header and the request
// context; malformed candidates are answered with 404 here.
func Route(engine *routing.Engine, log *zap.SugaredLogger, trustForwardedHost bool) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// only the router may set this header
			r.Header.Del(routing.HeaderSubdomain)

			host := r.Host
			if trustForwardedHost {
				if fh := r.Header.Get("X-Forwarded-Host"); fh != "" {
					host = strings.TrimSpace(strings.Split(fh, ",")[0])
				}
			}

			d := engine.Decide(host, r.URL.Path)
			metrics.RoutingDecisions.WithLabelValues(d.Action.String()).Inc()
			rc := d.Context

			switch d.Action {
			case routing.NotFound:
				log.Debugw("routing rejected candidate", "host", host, "path", r.URL.Path, "candidate", rc.Candidate)
				problems.NotFound(w, "unknown restaurant")
				return
			case routing.Rewrite:
				u := *r.URL
				u.Path = d.Path
				u.RawPath = ""
				r = r.WithContext(routing.WithContext(r.Context(), &rc))
				r.URL = &u
				r.Header.Set(routing.HeaderSubdomain, rc.Subdomain)
			default:
				r = r.WithContext(routing.WithContext(r.Context(), &rc))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RoutingFrom returns the routing state attached by Route, or an empty pass-through context.
func RoutingFrom(r *http.Request) *routing.Context {
	if rc, ok := routing.FromContext(r.Context()); ok {
		return rc
	}
	return &routing.Context{RawHost: r.Host, RawPath: r.URL.Path, AdminApp: true}
}
