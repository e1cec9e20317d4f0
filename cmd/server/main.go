// Command server runs the E-Civil portal session and authorization service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/sync/errgroup"

	"github.com/ecivil/civil-portal/internal/api"
	"github.com/ecivil/civil-portal/internal/api/metrics"
	"github.com/ecivil/civil-portal/internal/core/ports"
	"github.com/ecivil/civil-portal/internal/core/service"
	"github.com/ecivil/civil-portal/internal/infrastructure/config"
	"github.com/ecivil/civil-portal/internal/infrastructure/db/mongo"
	"github.com/ecivil/civil-portal/internal/infrastructure/db/redis"
	"github.com/ecivil/civil-portal/internal/infrastructure/identity"
	"github.com/ecivil/civil-portal/internal/infrastructure/queue"
	"github.com/ecivil/civil-portal/internal/infrastructure/sessionstore"
	"github.com/ecivil/civil-portal/pkg/logger"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Local development only; a missing .env is fine.
	_ = godotenv.Load()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.Init(logger.Options{})
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.Production(),
		Service: "civil-portal",
	})

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	var (
		db  *mongodriver.Database
		rdb *goredis.Client
	)

	if cfg.Mongo.URI != "" {
		client, database, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return err
		}
		defer func() {
			dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := client.Disconnect(dctx); err != nil {
				log.Warn().Err(err).Msg("mongo disconnect failed")
			}
		}()
		if err := mongo.EnsureIndexes(ctx, database); err != nil {
			return err
		}
		db = database
	}

	if cfg.Redis.Addr != "" {
		client, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			return err
		}
		defer client.Close()
		rdb = client
	}

	// --- Session store ---
	var store ports.SessionStore
	switch cfg.SessionBackend {
	case config.SessionsRedis:
		store = redis.NewSessionStore(rdb, cfg.Session.TTL)
	default:
		log.Warn().Msg("session slots are kept in process memory and lost on restart")
		store = sessionstore.NewMemory()
	}

	// --- Identity provider ---
	var provider ports.IdentityProvider
	switch cfg.IdentityBackend {
	case config.IdentityDemo:
		log.Warn().
			Str("admin", identity.AdminEmail).
			Str("agent", identity.AgentEmail).
			Msg("DEMO identity backend enabled: any password is accepted and roles are inferred from the email address")
		provider = identity.NewDemo(cfg.Session.DemoDelay, log)
	default:
		provider = service.NewCredentials(mongo.NewAccountRepository(db), cfg.Session.ResetTokenTTL, log)
	}
	if rdb != nil {
		provider = service.WithResetThrottle(provider, redis.NewResetThrottle(rdb, cfg.Session.ResetThrottleTTL), log)
	}

	// --- Audit trail ---
	var auditRepo ports.AuditRepository = queue.NewLogRepository(log)
	if db != nil {
		auditRepo = mongo.NewAuditRepository(db)
	}
	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, auditRepo, log)

	registry := service.NewRegistry(store, provider, log, service.RegistryOptions{
		IdleTTL: cfg.Session.IdleTTL,
		Audit:   dispatcher,
		OnLiveChange: func(live int) {
			metrics.SessionsLive.Set(float64(live))
		},
	})

	e := api.NewRouter(api.RouterConfig{
		Registry:     registry,
		Log:          log,
		ClientSecret: cfg.ClientSecret,
		ClientTTL:    cfg.Session.TTL,
		SecureCookie: cfg.Production(),
		Mongo:        db,
		Redis:        rdb,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Workers get their own context so they outlive the HTTP server and
	// drain the events of in-flight requests.
	workersCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	dispatcher.Start(workersCtx)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().
			Str("addr", srv.Addr).
			Str("identity", cfg.IdentityBackend).
			Str("sessions", cfg.SessionBackend).
			Msg("portal listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		registry.Run(gctx, sweepInterval)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(sctx)
		stopWorkers()
		dispatcher.Wait()
		return err
	})

	return g.Wait()
}
