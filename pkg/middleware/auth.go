// pkg/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"go.uber.org/zap"

	"qrmenu/pkg/authz"
	"qrmenu/pkg/problems"
)

// jwksCache caches JWKS sets per URL.
type jwksCache struct {
	mu   sync.RWMutex
	sets map[string]cachedJWKS
}

type cachedJWKS struct {
	set     jwk.Set
	expires time.Time
}

func (c *jwksCache) get(ctx context.Context, url string, ttl time.Duration) (jwk.Set, error) {
	c.mu.RLock()
	if e, ok := c.sets[url]; ok && time.Now().Before(e.expires) {
		c.mu.RUnlock()
		return e.set, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sets == nil {
		c.sets = map[string]cachedJWKS{}
	}
	if e, ok := c.sets[url]; ok && time.Now().Before(e.expires) {
		return e.set, nil
	}
	set, err := jwk.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	c.sets[url] = cachedJWKS{set: set, expires: time.Now().Add(ttl)}
	return set, nil
}

// Dev-mode identity headers, honoured only when no key source is configured outside production.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

type AuthConfig struct {
	Issuer     string
	Audience   string
	JWKSURL    string
	KeySet     jwk.Set // static keys; takes precedence over JWKSURL
	Production bool
	ClockSkew  time.Duration
}

type ctxPrincipalKey struct{}

// Authenticate identifies the caller and stores an authz.Principal in the request context. Bearer
// tokens must carry sub and a role claim of ADMIN or OWNER.
func Authenticate(cfg AuthConfig, log *zap.SugaredLogger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	cache := &jwksCache{}
	jwksTTL := 6 * time.Hour
	issuer := strings.TrimRight(cfg.Issuer, "/")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			set := cfg.KeySet
			if set == nil && cfg.JWKSURL == "" {
				if cfg.Production {
					problems.Write(w, http.StatusInternalServerError, "auth-not-configured", "Auth Not Configured", "")
					return
				}
				p, ok := devPrincipal(r)
				if !ok {
					problems.Write(w, http.StatusUnauthorized, "unauthorized", "Unauthorized", "missing "+HeaderUserID)
					return
				}
				next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
				return
			}

			hdr := r.Header.Get("Authorization")
			if !strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
				problems.Write(w, http.StatusUnauthorized, "unauthorized", "Unauthorized", "missing bearer")
				return
			}
			raw := strings.TrimSpace(hdr[len("Bearer "):])

			if set == nil {
				var err error
				set, err = cache.get(r.Context(), cfg.JWKSURL, jwksTTL)
				if err != nil {
					log.Errorw("jwks fetch failed", "url", cfg.JWKSURL, "err", err)
					problems.Write(w, http.StatusInternalServerError, "jwks-unavailable", "JWKS Unavailable", "")
					return
				}
			}

			parseOpts := []jwt.ParseOption{jwt.WithKeySet(set), jwt.WithValidate(true), jwt.WithVerify(true), jwt.WithAcceptableSkew(cfg.ClockSkew)}
			if issuer != "" {
				parseOpts = append(parseOpts, jwt.WithIssuer(issuer))
			}
			if cfg.Audience != "" {
				parseOpts = append(parseOpts, jwt.WithAudience(cfg.Audience))
			}
			jt, err := jwt.Parse([]byte(raw), parseOpts...)
			if err != nil {
				log.Debugw("bearer rejected", "err", err)
				problems.Write(w, http.StatusUnauthorized, "unauthorized", "Unauthorized", "invalid token")
				return
			}
			p, ok := tokenPrincipal(jt)
			if !ok {
				problems.Write(w, http.StatusUnauthorized, "unauthorized", "Unauthorized", "token lacks subject or role")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

func devPrincipal(r *http.Request) (authz.Principal, bool) {
	id := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if id == "" {
		return authz.Principal{}, false
	}
	role, ok := parseRole(r.Header.Get(HeaderUserRole))
	if !ok {
		role = authz.RoleOwner
	}
	return authz.Principal{UserID: id, Role: role}, true
}

func tokenPrincipal(jt jwt.Token) (authz.Principal, bool) {
	sub := jt.Subject()
	if sub == "" {
		return authz.Principal{}, false
	}
	v, ok := jt.Get("role")
	if !ok {
		return authz.Principal{}, false
	}
	s, _ := v.(string)
	role, ok := parseRole(s)
	if !ok {
		return authz.Principal{}, false
	}
	return authz.Principal{UserID: sub, Role: role}, true
}

func parseRole(s string) (authz.Role, bool) {
	switch authz.Role(strings.ToUpper(strings.TrimSpace(s))) {
	case authz.RoleAdmin:
		return authz.RoleAdmin, true
	case authz.RoleOwner:
		return authz.RoleOwner, true
	}
	return "", false
}

func WithPrincipal(ctx context.Context, p authz.Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (authz.Principal, bool) {
	p, ok := ctx.Value(ctxPrincipalKey{}).(authz.Principal)
	return p, ok
}
