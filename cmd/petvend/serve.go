package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/petvend/site/internal/auth"
	"github.com/petvend/site/internal/cache"
	"github.com/petvend/site/internal/content"
	"github.com/petvend/site/internal/metrics"
	"github.com/petvend/site/internal/server"
	"github.com/petvend/site/internal/site"
	"github.com/petvend/site/internal/storage/sqlite"
)

var (
	servePort  int
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site and the calculator, lead and auth APIs",
	Long: `Serves the rendered site, the Connect RPC services, /metrics and /healthz.

Leads are stored in SQLite when a database path is configured and only logged
otherwise. With --watch, Markdown changes under the content directory are
picked up without a restart.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides config and PORT)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload content when Markdown files change")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	renderer, err := loadRenderer()
	if err != nil {
		return err
	}

	deps := server.Deps{
		Config:   cfg,
		Renderer: renderer,
		Metrics:  metrics.New(),
		Logger:   logger,
	}

	if cfg.Database.Path != "" {
		store, err := sqlite.New(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		defer store.Close()
		logger.Info("Storage initialized", "database", cfg.Database.Path)

		authenticator := auth.NewPasswordAuthenticator(store)
		deps.Store = store
		deps.Authenticator = authenticator

		if cfg.Auth.BootstrapEmail != "" {
			created, err := authenticator.EnsureUser(ctx, cfg.Auth.BootstrapEmail, "Admin", cfg.Auth.BootstrapPassword)
			if err != nil {
				return fmt.Errorf("failed to create bootstrap admin: %w", err)
			}
			if created {
				logger.Info("Bootstrap admin created", "email", cfg.Auth.BootstrapEmail)
			}
		}
	} else {
		logger.Warn("No database configured; leads are only logged and admin sign-in is disabled")
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		if secret, err = auth.RandomSecret(); err != nil {
			return err
		}
		logger.Warn("JWT_SECRET not set; using a random secret, admin sessions end on restart")
	}
	deps.JWT = auth.NewJWTManager(secret, cfg.Auth.TokenTTL)

	resultCache, closeCache, err := newCache(ctx)
	if err != nil {
		return err
	}
	defer closeCache()
	deps.Cache = resultCache

	srv, err := server.New(deps)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(ctx, nil)
	})
	if serveWatch {
		g.Go(func() error {
			return site.Watch(ctx, cfg.Site.ContentDir, site.DefaultDebounce, func() error {
				lib, err := content.NewLoader().Load(cfg.Site.ContentDir)
				if err != nil {
					return err
				}
				if err := renderer.SetLibrary(lib); err != nil {
					return err
				}
				logger.Info("Content reloaded", "articles", len(lib.Articles), "case_studies", len(lib.CaseStudies))
				return nil
			}, logger)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("Server stopped")
	return nil
}

// newCache picks Redis when configured, otherwise an in-process LRU. A size of
// 0 disables caching.
func newCache(ctx context.Context) (cache.Cache, func(), error) {
	noop := func() {}

	if cfg.Cache.RedisAddr != "" {
		r := cache.NewRedis(cfg.Cache.RedisAddr, "petvend:", cfg.Cache.TTL)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := r.Ping(pingCtx); err != nil {
			r.Close()
			return nil, noop, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Cache.RedisAddr, err)
		}
		logger.Info("Result cache", "backend", "redis", "address", cfg.Cache.RedisAddr, "ttl", cfg.Cache.TTL)
		return r, func() { r.Close() }, nil
	}

	if cfg.Cache.Size == 0 {
		logger.Info("Result cache disabled")
		return cache.Nop{}, noop, nil
	}
	lru, err := cache.NewLRU(cfg.Cache.Size)
	if err != nil {
		return nil, noop, err
	}
	logger.Info("Result cache", "backend", "lru", "size", cfg.Cache.Size)
	return lru, noop, nil
}
