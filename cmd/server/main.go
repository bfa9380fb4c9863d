// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal services packages. Dependencies with
// no configured backend fall back to in-memory implementations so the service
// runs locally without infrastructure.
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

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"

	"jassari/internal/accesstoken"
	"jassari/internal/audit"
	"jassari/internal/gdpr"
	"jassari/internal/jwttoken"
	"jassari/internal/membership"
	membershiphandler "jassari/internal/membership/handler"
	"jassari/internal/membership/service"
	"jassari/internal/membership/store/profiles"
	"jassari/internal/notification"
	"jassari/internal/platform/config"
	"jassari/internal/platform/httpserver"
	"jassari/internal/platform/logger"
	"jassari/internal/platform/metrics"
	"jassari/internal/platform/postgres"
	platformredis "jassari/internal/platform/redis"
	"jassari/internal/profileapi"
	"jassari/internal/retention"
	httptransport "jassari/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err.Error())
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("server exited with error", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	checks := map[string]httptransport.HealthCheck{}

	pool, err := postgres.New(ctx, cfg.PostgresDSN)
	if err != nil {
		return err
	}
	var profileStore profiles.Store
	var auditStore audit.Store
	if pool != nil {
		defer pool.Close()
		profileStore = profiles.NewPostgres(pool, cfg.MembershipNumberLength)
		auditStore = audit.NewPostgresStore(pool)
		checks["postgres"] = pool.Ping
	} else {
		log.Warn("POSTGRES_DSN not set, using in-memory profile store")
		profileStore = profiles.NewInMemory(cfg.MembershipNumberLength)
		auditStore = audit.NewMemoryStore()
	}

	rdb, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	var grants accesstoken.Store
	if rdb != nil {
		defer rdb.Close()
		grants = accesstoken.NewRedis(rdb.Client)
		checks["redis"] = rdb.Health
	} else {
		log.Warn("REDIS_URL not set, using in-memory grant store")
		grants = accesstoken.NewMemory()
	}

	var sender notification.Sender
	if cfg.AMQPURL != "" {
		conn, err := amqp.Dial(cfg.AMQPURL)
		if err != nil {
			return err
		}
		defer conn.Close()
		amqpSender, err := notification.NewAMQPSender(conn)
		if err != nil {
			return err
		}
		defer amqpSender.Close()
		sender = amqpSender
	} else {
		log.Warn("AMQP_URL not set, notifications are logged only")
		sender = notification.NewLogSender(log)
	}
	sender = notification.Instrument(sender, m.NotificationsSent)

	identity := profileapi.New(cfg.ProfileAPIURL, cfg.ProfileAPIServiceType)

	auditSvc := audit.NewService(log)
	auditWorker := audit.NewWorker(auditStore, auditSvc.Inbox(), log)

	season := membership.Season{
		EndDay:               cfg.SeasonEndDay,
		EndMonth:             time.Month(cfg.SeasonEndMonth),
		FullSeasonStartMonth: time.Month(cfg.FullSeasonStartMonth),
	}

	svc, err := service.New(profileStore, identity, sender, grants, auditSvc,
		service.WithLogger(log),
		service.WithSeason(season),
		service.WithUIBaseURL(cfg.UIBaseURL),
	)
	if err != nil {
		return err
	}

	jwtValidator := jwttoken.New(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)

	router := httptransport.NewRouter(checks,
		membershiphandler.New(svc, log, m, jwtValidator),
		gdpr.New(svc, gdpr.Config{
			Enabled:     cfg.GDPREnabled,
			QueryScope:  cfg.GDPRQueryScope,
			DeleteScope: cfg.GDPRDeleteScope,
		}, log, jwtValidator),
	)

	cleanup, err := retention.New(profileStore, grants, cfg.RetentionSchedule, log)
	if err != nil {
		return err
	}
	cleanup.Start()
	defer cleanup.Stop()

	srv := httpserver.New(cfg.ServerAddr, router, cfg.HTTPWriteTimeout, cfg.HTTPIdleTimeout)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting jassari", "addr", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return auditWorker.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Info("shutdown complete")
	return err
}
