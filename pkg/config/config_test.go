package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"qrmenu/pkg/routing"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("QRMENU_ENV", "")
		t.Setenv("NODE_ENV", "")
		t.Setenv("BASE_DOMAIN", "")
		cfg := Load()
		assert.Equal(t, "development", cfg.Env)
		assert.Equal(t, "localhost:3000", cfg.BaseDomain)
		assert.Equal(t, routing.Development, cfg.Mode())
		assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
		assert.False(t, cfg.TrustForwardedHost)
	})

	t.Run("production", func(t *testing.T) {
		t.Setenv("QRMENU_ENV", "")
		t.Setenv("NODE_ENV", "production")
		t.Setenv("BASE_DOMAIN", "example.com")
		t.Setenv("TRUST_FORWARDED_HOST", "true")
		t.Setenv("SHUTDOWN_TIMEOUT_SEC", "3")
		cfg := Load()
		assert.True(t, cfg.Production())
		assert.Equal(t, "example.com", cfg.BaseDomain)
		assert.True(t, cfg.TrustForwardedHost)
		assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	})

	t.Run("QRMENU_ENV wins over NODE_ENV", func(t *testing.T) {
		t.Setenv("QRMENU_ENV", "prod")
		t.Setenv("NODE_ENV", "development")
		assert.Equal(t, routing.Production, Load().Mode())
	})
}
