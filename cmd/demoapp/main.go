package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/burnick/demoapp-sub000/internal/cache"
	memcache "github.com/burnick/demoapp-sub000/internal/cache/memory"
	rediscache "github.com/burnick/demoapp-sub000/internal/cache/redis"
	"github.com/burnick/demoapp-sub000/internal/config"
	"github.com/burnick/demoapp-sub000/internal/email"
	httpserver "github.com/burnick/demoapp-sub000/internal/http"
	authctrl "github.com/burnick/demoapp-sub000/internal/http/controllers/auth"
	healthctrl "github.com/burnick/demoapp-sub000/internal/http/controllers/health"
	oauthctrl "github.com/burnick/demoapp-sub000/internal/http/controllers/oauth"
	socialctrl "github.com/burnick/demoapp-sub000/internal/http/controllers/social"
	usersctrl "github.com/burnick/demoapp-sub000/internal/http/controllers/users"
	"github.com/burnick/demoapp-sub000/internal/http/router"
	authsvc "github.com/burnick/demoapp-sub000/internal/http/services/auth"
	userssvc "github.com/burnick/demoapp-sub000/internal/http/services/users"
	"github.com/burnick/demoapp-sub000/internal/metrics"
	"github.com/burnick/demoapp-sub000/internal/oauth"
	"github.com/burnick/demoapp-sub000/internal/observability/logger"
	"github.com/burnick/demoapp-sub000/internal/rate"
	"github.com/burnick/demoapp-sub000/internal/security/password"
	"github.com/burnick/demoapp-sub000/internal/store"
	memstore "github.com/burnick/demoapp-sub000/internal/store/memory"
	pgstore "github.com/burnick/demoapp-sub000/internal/store/pg"
	"github.com/burnick/demoapp-sub000/internal/token"

	"github.com/jackc/pgx/v5/pgxpool"
)

var version = "dev"

func main() {
	// .env is optional; system env always wins.
	_ = godotenv.Load()

	var configPath string

	root := &cobra.Command{
		Use:   "demoapp",
		Short: "User management backend with social login",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	root.AddCommand(serveCmd, versionCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: cfg.App.Name,
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()

	log := logger.L().With(logger.Component("main"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Cache backend
	var (
		cacheBackend cache.Cache
		redisCache   *rediscache.Cache
	)
	switch cfg.Cache.Kind {
	case "redis":
		redisCache = rediscache.New(cfg.Cache.Redis.Addr, cfg.Cache.Redis.DB, cfg.Cache.Redis.Prefix)
		cacheBackend = redisCache
		defer func() { _ = redisCache.Close() }()
		log.Info("cache backend ready", logger.String("kind", "redis"))
	default:
		cacheBackend = memcache.New(config.DurationOr(cfg.Cache.Memory.DefaultTTL, 10*time.Minute))
		log.Info("cache backend ready", logger.String("kind", "memory"))
	}

	// User store
	var (
		users   store.UserStore
		pgPool  *pgxpool.Pool
		pgClose func()
	)
	switch cfg.Storage.Driver {
	case "postgres":
		pg, err := pgstore.New(ctx, cfg.Storage.DSN, cfg.Storage.Postgres.MaxConns)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		users = pg
		pgPool = pg.Pool()
		pgClose = pg.Close
		defer pgClose()
		log.Info("user store ready", logger.String("driver", "postgres"))
	default:
		users = memstore.New()
		log.Info("user store ready", logger.String("driver", "memory"))
	}

	// OAuth bridge
	registry := oauth.NewRegistry(cfg)

	var states oauth.StateRepository
	if cfg.OAuth.StateStore == "cache" {
		states = oauth.NewCacheStateRepository(cacheBackend)
	} else {
		states = oauth.NewMemoryStateRepository()
	}

	issuer, err := token.NewIssuer(token.Options{
		Issuer:      cfg.JWT.Issuer,
		Audience:    cfg.JWT.Audience,
		AccessTTL:   config.DurationOr(cfg.JWT.AccessTTL, 15*time.Minute),
		RefreshTTL:  config.DurationOr(cfg.JWT.RefreshTTL, 720*time.Hour),
		SigningSeed: cfg.JWT.SigningKey,
		Store:       cacheBackend,
	})
	if err != nil {
		return fmt.Errorf("token issuer: %w", err)
	}
	if cfg.JWT.SigningKey == "" {
		log.Warn("no signing key configured, sessions will not survive restarts")
	}

	var sender email.Sender = email.NoopSender{}
	if cfg.SMTP.Host != "" {
		sender = email.FromConfig(cfg)
	}
	welcome := email.NewWelcomeMailer(sender, cfg.App.Name)

	oauthService := oauth.NewService(oauth.ServiceDeps{
		Registry:           registry,
		States:             states,
		Reconciler:         &oauth.StoreReconciler{Users: users},
		Tokens:             issuer,
		Welcome:            welcome,
		DefaultRedirectURL: cfg.OAuth.DefaultRedirectURL,
	})
	defer oauthService.Shutdown()

	// Rate limiters
	var loginLimiter, socialLimiter rate.Limiter
	if cfg.Rate.Enabled {
		loginWindow := config.DurationOr(cfg.Rate.Login.Window, time.Minute)
		socialWindow := config.DurationOr(cfg.Rate.Social.Window, time.Minute)
		if redisCache != nil {
			loginLimiter = rate.NewRedisLimiter(redisCache.Client(), "rl:login:", cfg.Rate.Login.Limit, loginWindow)
			socialLimiter = rate.NewRedisLimiter(redisCache.Client(), "rl:social:", cfg.Rate.Social.Limit, socialWindow)
		} else {
			loginLimiter = rate.NewMemoryLimiter("rl:login:", cfg.Rate.Login.Limit, loginWindow)
			socialLimiter = rate.NewMemoryLimiter("rl:social:", cfg.Rate.Social.Limit, socialWindow)
		}
	}

	// Metrics
	metricsHandler, err := metrics.Register(metrics.Config{
		StateCount: oauthService.StateCount,
		Pool: func() *pgxpool.Pool {
			return pgPool
		},
	})
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	// Services and controllers
	policy := password.Policy{
		MinLength:    cfg.Security.PasswordPolicy.MinLength,
		RequireUpper: cfg.Security.PasswordPolicy.RequireUpper,
		RequireDigit: cfg.Security.PasswordPolicy.RequireDigit,
	}

	authService := authsvc.NewService(users, issuer, policy, welcome)
	usersService := userssvc.NewService(users, policy)

	checks := map[string]healthctrl.Check{}
	if pgPool != nil {
		checks["postgres"] = func(ctx context.Context) error { return pgPool.Ping(ctx) }
	}
	if redisCache != nil {
		checks["redis"] = func(ctx context.Context) error { return redisCache.Client().Ping(ctx).Err() }
	}

	handler := router.New(router.Deps{
		Social:         socialctrl.NewController(oauthService),
		Auth:           authctrl.NewController(authService),
		Users:          usersctrl.NewController(usersService),
		Health:         healthctrl.NewController(checks),
		OAuth:          oauthctrl.NewController(),
		Issuer:         issuer,
		LoginLimiter:   loginLimiter,
		SocialLimiter:  socialLimiter,
		MetricsHandler: metricsHandler,
	})

	srv := httpserver.NewServer(cfg.Server.Addr, handler)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	status := oauthService.Status()
	log.Info("demoapp started",
		logger.String("addr", cfg.Server.Addr),
		logger.Any("oauth_providers", status.EnabledProviders),
	)

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("demoapp stopped")
	return nil
}
