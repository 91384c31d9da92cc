// Command server runs the signet identity provider: the OAuth 2.0 authorize
// endpoint plus health and metrics surfaces. Backends degrade gracefully:
// without Postgres/Redis/Kafka configured everything runs in memory with a
// seeded demo client and user.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"signet/internal/authorize"
	authorizehandler "signet/internal/authorize/handler"
	"signet/internal/client"
	"signet/internal/platform/config"
	"signet/internal/platform/httpserver"
	"signet/internal/platform/logger"
	"signet/internal/platform/metrics"
	platformpg "signet/internal/platform/postgres"
	platformredis "signet/internal/platform/redis"
	"signet/internal/session"
	"signet/internal/token"
	"signet/internal/user"
	"signet/pkg/platform/audit"
	auditkafka "signet/pkg/platform/audit/publisher/kafka"
	auditmemory "signet/pkg/platform/audit/store/memory"
	auditworker "signet/pkg/platform/audit/worker"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	// Stores: Postgres and Redis when configured, memory otherwise.
	db, err := platformpg.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	rdb, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	var (
		clients   authorize.ClientDirectory
		users     user.Store
		sessStore session.Store
		codeStore token.CodeStore
	)
	if db != nil {
		clients = client.NewPostgres(db)
		users = user.NewPostgres(db)
	} else {
		memClients := client.NewInMemory()
		memUsers := user.NewInMemory()
		if err := seedDev(ctx, memClients, memUsers); err != nil {
			return err
		}
		clients = memClients
		users = memUsers
	}
	if rdb != nil {
		sessStore = session.NewRedis(rdb.Client)
		codeStore = token.NewRedisCodeStore(rdb.Client)
	} else {
		sessStore = session.NewInMemory()
		codeStore = token.NewInMemoryCodeStore()
	}

	// Audit pipeline: Kafka when brokers are configured, memory otherwise.
	auditLog := audit.NewLog(1024, log)
	var auditStore audit.Store
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := auditkafka.New(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return err
		}
		defer publisher.Close()
		auditStore = publisher
	} else {
		auditStore = auditmemory.New()
	}

	issuer := token.NewIssuer([]byte(cfg.JWTSigningKey), cfg.Issuer, cfg.AccessTokenTTL, cfg.AuthCodeTTL, codeStore)
	service := authorize.NewService(clients, user.NewVerifier(users), issuer, auditLog, m, log)
	sessions := session.NewManager(sessStore, users, cfg.SessionTTL)

	router := chi.NewRouter()
	authorizehandler.New(service, sessions, log, m).Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if rdb != nil {
			if err := rdb.Health(r.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Addr, router)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return auditworker.New(auditStore, auditLog.Inbox(), log).Run(ctx)
	})
	group.Go(func() error {
		log.Info("starting signet", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// seedDev registers a demo client and user so the in-memory setup is usable
// immediately. Production deployments configure Postgres instead.
func seedDev(ctx context.Context, clients *client.InMemoryDirectory, users *user.InMemoryStore) error {
	now := time.Now()
	demo, err := client.New(
		"demo",
		"Demo Application",
		[]string{"http://localhost:9094/callback"},
		[]string{"code", "token"},
		now,
	)
	if err != nil {
		return err
	}
	if err := clients.Register(ctx, demo); err != nil {
		return err
	}

	hash, err := user.HashPassword("admin")
	if err != nil {
		return err
	}
	return users.Save(ctx, &user.User{
		ID:           "00000000-0000-0000-0000-000000000001",
		Username:     "admin",
		PasswordHash: hash,
		CreatedAt:    now,
	})
}
