package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"taskboard/internal/cache"
	"taskboard/internal/config"
	"taskboard/internal/repo"
	"taskboard/internal/service"
	"taskboard/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type App struct {
	cfg    config.Config
	log    *slog.Logger
	db     *pgxpool.Pool
	redis  *redis.Client
	store  *store.Store
	router *gin.Engine
}

// New builds the task store and its optional Postgres mirror and Redis
// side effects, then the router.
func New(cfg config.Config, log *slog.Logger) (*App, error) {
	a := &App{cfg: cfg, log: log, store: store.New()}

	if cfg.PG.Enabled() {
		if err := repo.Migrate(cfg.PG.DSN); err != nil {
			return nil, err
		}
		db, err := newPostgres(cfg.PG.DSN)
		if err != nil {
			return nil, err
		}
		a.db = db

		if err := attachMirror(a.store, repo.NewPGTaskRepo(db), cfg.PG.WriteTimeout.Duration(), log); err != nil {
			a.db.Close()
			return nil, err
		}
		log.Info("postgres mirror enabled", "tasks", a.store.Len())
	}

	var dashCache *cache.DashboardCache
	if cfg.Redis.Enabled() {
		rdb, err := newRedis(cfg.Redis)
		if err != nil {
			if a.db != nil {
				a.db.Close()
			}
			return nil, err
		}
		a.redis = rdb
		dashCache = cache.NewDashboardCache(rdb, cfg.Redis.DefaultTTL.Duration())
		a.store.Subscribe(cache.NewChangePublisher(rdb, log).Subscriber())
		log.Info("redis enabled", "addr", cfg.Redis.Addr)
	}

	svc := service.NewTaskService(a.store, dashCache, log)
	router, err := NewRouter(cfg, svc, log)
	if err != nil {
		a.closeClients()
		return nil, err
	}
	a.router = router
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func (a *App) Close(context.Context) error {
	a.closeClients()
	return nil
}

func (a *App) closeClients() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

// attachMirror loads the store from r and then writes every change back to it.
func attachMirror(s *store.Store, r repo.TaskRepo, timeout time.Duration, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	tasks, err := r.List(ctx)
	if err != nil {
		return fmt.Errorf("load tasks: %w", err)
	}
	s.Load(tasks)
	s.Subscribe(repo.NewMirror(r, timeout, log).Subscriber())
	return nil
}

// Store returns the task store the router serves.
func (a *App) Store() *store.Store {
	return a.store
}

func newPostgres(dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

// NewRouter returns the gin engine with middleware, templates and routes.
func NewRouter(cfg config.Config, svc *service.TaskService, log *slog.Logger) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}))

	if err := Setup(r, cfg, svc, log); err != nil {
		return nil, err
	}
	return r, nil
}
