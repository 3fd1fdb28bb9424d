package adminapi

import (
	"go.uber.org/zap"

	"qrmenu/pkg/analytics"
	"qrmenu/pkg/authz"
	"qrmenu/pkg/middleware"
	"qrmenu/pkg/tenants"
)

// Config holds admin-api specific configuration.
type Config struct {
	BaseDomain  string
	Auth        middleware.AuthConfig
	CORSOrigins []string
}

// App is the admin-api application container.
// Handlers and middleware have methods on this type.
//
// Keep it lean: shared deps and config only.
// Request-scoped work should use context.
type App struct {
	log        *zap.SugaredLogger
	store      tenants.Store
	manager    *tenants.Manager
	authz      *authz.Authorizer
	views      analytics.Tracker
	baseDomain string
	auth       middleware.AuthConfig
	cors       []string
}

func New(log *zap.SugaredLogger, store tenants.Store, az *authz.Authorizer, views analytics.Tracker, cfg Config) *App {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if views == nil {
		views = analytics.Noop{}
	}
	cors := cfg.CORSOrigins
	if len(cors) == 0 {
		cors = []string{"http://localhost:3001"}
	}
	return &App{
		log:        log,
		store:      store,
		manager:    tenants.NewManager(store, log),
		authz:      az,
		views:      views,
		baseDomain: cfg.BaseDomain,
		auth:       cfg.Auth,
		cors:       cors,
	}
}
