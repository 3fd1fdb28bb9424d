// pkg/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"qrmenu/pkg/routing"
)

type Config struct {
	Env      string
	HTTPAddr string

	// Tenant routing. Read once at start and never changed.
	BaseDomain    string
	BasePublicURL string

	// Admin bearer validation; when JWKSURL is empty dev headers identify the caller.
	AdminIssuer   string
	AdminAudience string
	AdminJWKSURL  string

	// Redis & Postgres
	RedisURL    string
	DatabaseURL string

	// TrustForwardedHost makes routing read X-Forwarded-Host set by a trusted proxy.
	TrustForwardedHost bool

	SeedFile            string
	StorefrontCacheCtrl string
	ShutdownTimeout     time.Duration
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Env:                 env("QRMENU_ENV", env("NODE_ENV", "development")),
		HTTPAddr:            env("QRMENU_HTTP_ADDR", ":3000"),
		BaseDomain:          env("BASE_DOMAIN", "localhost:3000"),
		BasePublicURL:       env("BASE_PUBLIC_URL", ""),
		AdminIssuer:         env("ADMIN_OIDC_ISSUER", ""),
		AdminAudience:       env("ADMIN_OIDC_AUDIENCE", "qrmenu-admin"),
		AdminJWKSURL:        env("ADMIN_JWKS_URL", ""),
		RedisURL:            env("REDIS_URL", ""),
		DatabaseURL:         env("DATABASE_URL", ""),
		TrustForwardedHost:  envBool("TRUST_FORWARDED_HOST", false),
		SeedFile:            env("RESTAURANT_SEED_FILE", ""),
		StorefrontCacheCtrl: env("STOREFRONT_CACHE_CONTROL", "public, s-maxage=60, stale-while-revalidate=300"),
		ShutdownTimeout:     envDur("SHUTDOWN_TIMEOUT_SEC", 10) * time.Second,
	}
	if cfg.DatabaseURL == "" {
		log.Println("[WARN] DATABASE_URL not set, using in-memory restaurant store for dev")
	}
	return cfg
}

// Mode is the routing mode derived from Env.
func (c Config) Mode() routing.Mode { return routing.ParseMode(c.Env) }

// Production reports whether the process runs with production settings.
func (c Config) Production() bool { return c.Mode() == routing.Production }

func env(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}
func envBool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		b, _ := strconv.ParseBool(v)
		return b
	}
	return def
}
func envDur(k string, def int) time.Duration {
	if v := os.Getenv(k); v != "" {
		i, _ := strconv.Atoi(v)
		return time.Duration(i)
	}
	return time.Duration(def)
}
