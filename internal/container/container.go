package container

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"tourkorea/explorer/internal/api"
	"tourkorea/explorer/internal/cache"
	"tourkorea/explorer/internal/client"
	"tourkorea/explorer/internal/config"
	"tourkorea/explorer/internal/proxy"
	"tourkorea/explorer/internal/queue"
	"tourkorea/explorer/internal/repository"
	"tourkorea/explorer/internal/service"
	"tourkorea/explorer/internal/state"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config       *config.Config
	Client       client.TourClient
	Cache        cache.Cache
	Details      repository.DetailRepository
	Bookmarks    repository.BookmarkRepository
	Queue        queue.Queue
	StateManager state.StateManager

	TourService *service.TourService
	SyncService *service.SyncService
	Server      *http.Server

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	proxySupplier := proxy.NewStaticSupplier(cfg.TourAPI.Proxies)
	if cfg.TourAPI.ProbeProxies {
		proxySupplier = proxy.NewSupplier(ctx, cfg.TourAPI.Proxies, cfg.TourAPI.BaseURL)
	}

	db, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	container.db = db

	if err := db.Ping(ctx); err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := repository.EnsureSchema(ctx, db); err != nil {
		container.Close()
		return nil, err
	}

	log.Info("✅ Connected to PostgreSQL successfully")

	container.Details = repository.NewDetailRepository(db)
	container.Bookmarks = repository.NewBookmarkRepository(db)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})
	container.redis = rdb

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		container.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info("✅ Connected to Redis successfully")

	container.Cache = cache.NewLayeredCache(rdb, time.Duration(cfg.Cache.CleanupMs)*time.Millisecond)
	container.Client = client.NewTourClient(cfg.TourAPI, proxySupplier)

	if cfg.TourAPI.ServiceKey == "" {
		log.Warn("⚠️ tourapi.service_key is empty, every TourAPI call will fail with a configuration error")
	}

	container.TourService = service.NewTourService(
		container.Client,
		container.Cache,
		container.Details,
		container.Bookmarks,
		service.TourOptions{
			CacheTTL:     time.Duration(cfg.Cache.TTL) * time.Second,
			AreaTTL:      time.Duration(cfg.Cache.AreaTTL) * time.Second,
			PetBatchSize: cfg.TourAPI.PetBatchSize,
		},
	)

	if cfg.Sync.Enabled {
		redisQueue, err := queue.NewRedisQueue(ctx, rdb, cfg.Sync.ConsumerGroup)
		if err != nil {
			container.Close()
			return nil, err
		}
		container.Queue = redisQueue
		container.StateManager = state.NewRedisStateManager(rdb)

		container.SyncService = service.NewSyncService(
			container.Client,
			container.Details,
			container.Cache,
			container.Queue,
			container.StateManager,
			service.SyncOptions{
				Regions:      cfg.Sync.Regions,
				PageSize:     cfg.Sync.PageSize,
				SaveInterval: cfg.Sync.SaveInterval,
				MinIdleTime:  time.Duration(cfg.Sync.MinIdleTime) * time.Second,
			},
		)
	}

	if log.IsLevelEnabled(log.DebugLevel) {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.NewRouter(api.NewHandler(container.TourService), map[string]api.HealthCheck{
		"postgres": db.Ping,
		"redis": func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		},
	})
	container.Server = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return container, nil
}

// Run serves the HTTP API and, when enabled, the region sync until ctx is cancelled
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Infof("🚀 HTTP API listening on %s", c.Server.Addr)
		if err := c.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		log.Info("🛑 Shutting down HTTP API...")
		return c.Server.Shutdown(shutdownCtx)
	})

	if c.SyncService != nil {
		// Run ParseAll to enqueue tasks
		g.Go(func() error {
			// A failed region walk must not take the API down with it.
			if err := c.SyncService.ParseAll(ctx); err != nil && ctx.Err() == nil {
				log.Errorf("❌ Region sync failed: %v", err)
			}
			return nil
		})

		// Run workers to process tasks
		g.Go(func() error {
			return c.SyncService.RunWorkers(ctx, c.Config.Sync.Workers)
		})
	}

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Warnf("⚠️ Failed to close Redis client: %v", err)
		}
	}

	log.Info("Container shut down successfully")
	return nil
}
