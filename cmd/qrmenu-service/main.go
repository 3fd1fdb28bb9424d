// cmd/qrmenu-service/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"qrmenu/internal/adminapi"
	"qrmenu/internal/storefront"
	"qrmenu/pkg/analytics"
	"qrmenu/pkg/authz"
	"qrmenu/pkg/config"
	"qrmenu/pkg/db"
	"qrmenu/pkg/logger"
	"qrmenu/pkg/middleware"
	"qrmenu/pkg/routing"
	"qrmenu/pkg/tenants"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	defer log.Sync()

	ctx := context.Background()

	var store tenants.Store
	var seeder tenants.Seeder
	if pool := db.MustConnect(cfg, log); pool != nil {
		defer pool.Close()
		if err := tenants.EnsureSchema(ctx, pool); err != nil {
			log.Fatalw("schema", "err", err)
		}
		pg := tenants.NewPostgresStore(pool, log)
		store, seeder = pg, pg
	} else {
		mem := tenants.NewMemoryStoreFromEnv(log)
		store, seeder = mem, mem
	}
	if cfg.SeedFile != "" {
		entries, err := tenants.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			log.Fatalw("seed file", "path", cfg.SeedFile, "err", err)
		}
		if err := seeder.Seed(ctx, entries); err != nil {
			log.Warnw("seed", "err", err)
		}
	}

	var tracker analytics.Tracker = analytics.Noop{}
	if rdb := db.MustRedis(cfg, log); rdb != nil {
		defer rdb.Close()
		tracker = analytics.NewRedisTracker(rdb)
	}
	views := analytics.NewQueue(tracker, 1024, log)
	viewsCtx, stopViews := context.WithCancel(ctx)
	go views.Run(viewsCtx)

	az, err := authz.New(ctx)
	if err != nil {
		log.Fatalw("authz", "err", err)
	}

	engine := routing.New(routing.Config{
		BaseDomain:       cfg.BaseDomain,
		Mode:             cfg.Mode(),
		ExcludedPrefixes: append(append([]string{}, routing.DefaultExcludedPrefixes...), routing.OperationalPrefixes...),
	})

	admin := adminapi.New(log, store, az, tracker, adminapi.Config{
		BaseDomain: cfg.BaseDomain,
		Auth: middleware.AuthConfig{
			Issuer:     cfg.AdminIssuer,
			Audience:   cfg.AdminAudience,
			JWKSURL:    cfg.AdminJWKSURL,
			Production: cfg.Production(),
			ClockSkew:  time.Minute,
		},
		CORSOrigins: adminapi.CORSOriginsFromEnv(),
	})
	shop := storefront.New(tenants.NewResolver(store, log), views, cfg.StorefrontCacheCtrl, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID())
	r.Use(middleware.Recover(log))
	r.Use(middleware.Tracing("qrmenu", log))
	// must run before chi matches a route so rewritten paths are routed
	r.Use(middleware.Route(engine, log, cfg.TrustForwardedHost))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.Write([]byte("ok")) })
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Mount("/api", admin.Routes(shop.MountAPI))
	shop.Mount(r)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Infow("qrmenu-service listening", "addr", cfg.HTTPAddr, "base_domain", cfg.BaseDomain, "mode", cfg.Mode())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("ListenAndServe", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	stopViews()
	select {
	case <-views.Done():
	case <-shutdownCtx.Done():
	}
	_ = middleware.ShutdownTracing(shutdownCtx)
	log.Infow("qrmenu-service stopped")
}
