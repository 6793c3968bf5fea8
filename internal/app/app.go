package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/smartmark/internal/auth"
	"github.com/MrSnakeDoc/smartmark/internal/backend"
	"github.com/MrSnakeDoc/smartmark/internal/config"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver"
	"github.com/MrSnakeDoc/smartmark/internal/httpserver/deps"
	"github.com/MrSnakeDoc/smartmark/internal/logger"
	"github.com/MrSnakeDoc/smartmark/internal/redis"
	"github.com/MrSnakeDoc/smartmark/internal/render"
	"github.com/MrSnakeDoc/smartmark/internal/scheduler"
	redisstore "github.com/MrSnakeDoc/smartmark/internal/store/redis"
	"github.com/MrSnakeDoc/smartmark/internal/store/sqlite"
	"github.com/MrSnakeDoc/smartmark/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	table       *sqlite.Table
	redisClient *goredis.Client
	gc          *scheduler.GarbageCollector

	// cancelBase ends every request context, live sessions included.
	cancelBase context.CancelFunc
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog,
		logger.String("service", "smartmark"),
		logger.String("version", version.Version),
	)

	// Bookmark table - fail fast if it cannot be opened
	table, err := sqlite.Open(context.Background(), cfg.DBPath)
	if err != nil {
		loggerClient.Errorf("Failed to open bookmark table: %v", err)
		os.Exit(1)
	}
	loggerClient.Info("bookmark table ready", logger.String("path", cfg.DBPath))

	probes := []deps.Probe{
		{Name: "sqlite", Critical: true, Mode: "modernc", Ping: table.Ping},
	}

	// Change feed and session revocation: Redis when configured, in-process otherwise
	var (
		redisClient *goredis.Client
		feed        backend.Feed
		revocations auth.Revocations
		gc          *scheduler.GarbageCollector
	)
	if cfg.RedisEnabled() {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		redisClient, err = redis.New(context.Background(), redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			_ = table.Close()
			os.Exit(1)
		}
		loggerClient.Info("Redis initialized successfully")

		store := redisstore.NewStore(redisClient)
		feed = store
		revocations = store
		// Without Redis there is no cross-instance feed, so Redis is critical once configured.
		probes = append(probes, deps.Probe{Name: "redis", Critical: true, Mode: "pubsub", Ping: store.Ping})
	} else {
		loggerClient.Info("Redis not configured, using in-process change feed and revocation list")

		memRevocations := auth.NewMemoryRevocations()
		feed = backend.NewLocalFeed(backend.DefaultSubscriberBuffer)
		revocations = memRevocations

		gc = scheduler.NewGarbageCollector(loggerClient, scheduler.DefaultGCInterval)
		gc.Add("revocations", memRevocations)

		probes = append(probes, deps.Probe{
			Name: "feed", Mode: "in-process",
			Ping: func(context.Context) error { return nil },
		})
	}

	renderer, err := render.New()
	if err != nil {
		loggerClient.Errorf("Failed to load templates: %v", err)
		os.Exit(1)
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		AllowedHosts: cfg.AllowedHosts,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,

		Bookmarks: backend.NewClient(table, feed, loggerClient),
		Sessions:  auth.NewSessions([]byte(cfg.SessionSecret), cfg.SessionTTL, cfg.CookieSecure, revocations),
		Provider: auth.NewOAuthProvider(auth.OAuthConfig{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			AuthURL:      cfg.OAuthAuthURL,
			TokenURL:     cfg.OAuthTokenURL,
			UserInfoURL:  cfg.OAuthUserInfoURL,
		}),
		Renderer: renderer,
		Probes:   probes,

		LivePingInterval: cfg.LivePingInterval,
		RateBurst:        cfg.RateBurst,
		RatePerMin:       cfg.RatePerMin,
	}

	base, cancelBase := context.WithCancel(context.Background())
	server := httpserver.New(base, cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		table:       table,
		redisClient: redisClient,
		gc:          gc,
		cancelBase:  cancelBase,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting smartmark %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("smartmark %s", version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer a.cancelBase()

	// Start garbage collector (in-process revocations only)
	if a.gc != nil {
		if err := a.gc.Start(ctx); err != nil {
			return fmt.Errorf("failed to start garbage collector: %w", err)
		}
		a.logger.Info("garbage collector started",
			logger.Duration("interval", scheduler.DefaultGCInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.gc != nil {
		a.gc.Stop()
	}

	// Live sessions hold hijacked connections that Shutdown does not wait for:
	// end them first so their feed subscriptions are released.
	a.cancelBase()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	if err := a.table.Close(); err != nil {
		a.logger.Warnf("failed to close bookmark table: %v", err)
	}

	_ = a.logger.Sync()
	a.logger.Info("✅ smartmark stopped cleanly")
	return nil
}
