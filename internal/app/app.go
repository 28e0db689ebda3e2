// Package app assembles stores and services from configuration. It is shared
// by the HTTP server and the admin CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/noobLue/fullstack5pw/internal/domain/repository"
	"github.com/noobLue/fullstack5pw/internal/infra/memory"
	infraPostgres "github.com/noobLue/fullstack5pw/internal/infra/postgres"
	infraRedis "github.com/noobLue/fullstack5pw/internal/infra/redis"
	"github.com/noobLue/fullstack5pw/internal/platform/cache"
	"github.com/noobLue/fullstack5pw/internal/platform/config"
	"github.com/noobLue/fullstack5pw/internal/platform/database"
	"github.com/noobLue/fullstack5pw/internal/platform/migration"
	usecaseAccount "github.com/noobLue/fullstack5pw/internal/usecase/account"
	usecaseAdmin "github.com/noobLue/fullstack5pw/internal/usecase/admin"
	usecaseBlog "github.com/noobLue/fullstack5pw/internal/usecase/blog"
	usecaseRanking "github.com/noobLue/fullstack5pw/internal/usecase/ranking"
)

const applicationName = "bloglist"

// LoginRateLimitPrefix namespaces the login limiter counters in Redis.
const LoginRateLimitPrefix = "ratelimit:login"

// Stores holds the storage backends selected by configuration.
type Stores struct {
	Accounts repository.AccountRepository
	Sessions repository.SessionStore
	Blogs    repository.BlogRepository
	// ListCache is nil when the ordered-list cache is disabled.
	ListCache *infraRedis.BlogListCache

	// DB and Cache are nil when the corresponding backend is not in use.
	DB    *database.DB
	Cache *cache.Cache

	resetters []repository.Resetter
	closers   []func()
}

// OpenStores connects every backend the configuration asks for.
func OpenStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Stores, error) {
	s := &Stores{}
	if err := s.openRedis(cfg, log); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.openStorage(ctx, cfg, log); err != nil {
		s.Close()
		return nil, err
	}
	s.openSessions(cfg)

	if s.Cache != nil && cfg.App.LoginRateLimitEnabled {
		s.resetters = append(s.resetters, infraRedis.NewKeyResetter(s.Cache, LoginRateLimitPrefix))
	}
	// Last, so lists cached during the wipe are dropped too.
	if s.ListCache != nil {
		s.resetters = append(s.resetters, s.ListCache)
	}
	return s, nil
}

func (s *Stores) openRedis(cfg *config.Config, log *slog.Logger) error {
	if !cfg.UsesRedis() {
		return nil
	}
	client, err := cache.New(cache.Config{
		Address:      cfg.Redis.Address(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		KeyPrefix:    cfg.Redis.KeyPrefix,
	}, log)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	s.Cache = client
	s.closers = append(s.closers, func() {
		if err := client.Close(); err != nil {
			log.Error("failed to close redis", "error", err)
		}
	})
	if cfg.ListCacheEnabled() {
		s.ListCache = infraRedis.NewBlogListCache(client, cfg.App.ListCacheTTL)
	}
	return nil
}

func (s *Stores) openStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	if !cfg.UsesPostgres() {
		accounts := memory.NewAccountRepository()
		blogs := memory.NewBlogRepository()
		s.Accounts = accounts
		s.Blogs = blogs
		// Blogs reference accounts, so they go first.
		s.resetters = append(s.resetters, blogs, accounts)
		log.Warn("using in-memory storage; data is lost on restart")
		return nil
	}

	if cfg.App.AutoMigrate {
		if err := MigrateUp(cfg, log); err != nil {
			return err
		}
	}

	db, err := database.New(ctx, database.Config{
		ConnectionString: cfg.Database.ConnectionString(),
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		ConnectTimeout:   cfg.Database.ConnectTimeout,
		ApplicationName:  applicationName,
	}, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	s.DB = db
	s.closers = append(s.closers, db.Close)
	s.Accounts = infraPostgres.NewAccountRepository(db.Pool)
	s.Blogs = infraPostgres.NewBlogRepository(db.Pool)
	s.resetters = append(s.resetters, infraPostgres.NewResetter(db.Pool))
	return nil
}

func (s *Stores) openSessions(cfg *config.Config) {
	if cfg.App.SessionStore == config.SessionStoreRedis && s.Cache != nil {
		store := infraRedis.NewSessionStore(s.Cache)
		s.Sessions = store
		s.resetters = append(s.resetters, store)
		return
	}
	store := memory.NewSessionStore()
	s.Sessions = store
	s.resetters = append(s.resetters, store)
}

// Resetters lists every store wiped by the testing reset, in a safe order.
func (s *Stores) Resetters() []repository.Resetter {
	return append([]repository.Resetter(nil), s.resetters...)
}

// Close releases connections in reverse order of opening.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// MigrateUp applies pending schema migrations.
func MigrateUp(cfg *config.Config, log *slog.Logger) error {
	runner, err := migration.New(migration.Config{
		DatabaseURL:    cfg.Database.ConnectionString(),
		MigrationsPath: cfg.App.MigrationsPath,
		Logger:         log,
	})
	if err != nil {
		return fmt.Errorf("create migration runner: %w", err)
	}
	defer func() {
		if err := runner.Close(); err != nil {
			log.Warn("failed to close migration runner", "error", err)
		}
	}()
	if err := runner.Up(); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Metrics receives domain events. *metrics.HTTPMetrics implements it.
type Metrics interface {
	usecaseAccount.LoginRecorder
	usecaseBlog.Recorder
}

// Services are the use cases built over Stores.
type Services struct {
	Accounts *usecaseAccount.Service
	Blogs    *usecaseBlog.Service
	Ranking  *usecaseRanking.Service
	Admin    *usecaseAdmin.Service
}

// NewServices builds the use cases. m may be nil.
func NewServices(s *Stores, cfg *config.Config, m Metrics, log *slog.Logger) (*Services, error) {
	var (
		logins    usecaseAccount.LoginRecorder
		recorder  usecaseBlog.Recorder
		lists     usecaseBlog.ListInvalidator
		listCache usecaseRanking.ListCache
	)
	if m != nil {
		logins = m
		recorder = m
	}
	if s.ListCache != nil {
		lists = s.ListCache
		listCache = s.ListCache
	}

	accounts, err := usecaseAccount.NewService(s.Accounts, s.Sessions, usecaseAccount.Options{
		BcryptCost: cfg.App.BcryptCost,
		SessionTTL: cfg.Session.TTL,
		Metrics:    logins,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("account service: %w", err)
	}

	return &Services{
		Accounts: accounts,
		Blogs:    usecaseBlog.NewService(s.Blogs, lists, recorder, log),
		Ranking:  usecaseRanking.NewService(s.Blogs, listCache, log),
		Admin:    usecaseAdmin.NewService(log, s.Resetters()...),
	}, nil
}
