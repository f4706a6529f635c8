package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/accountkit/pkg/account"
	"github.com/dmitrymomot/accountkit/pkg/config"
	"github.com/dmitrymomot/accountkit/pkg/email"
	"github.com/dmitrymomot/accountkit/pkg/event"
	"github.com/dmitrymomot/accountkit/pkg/logger"
	"github.com/dmitrymomot/accountkit/pkg/notify"
	"github.com/dmitrymomot/accountkit/pkg/pg"
	"github.com/dmitrymomot/accountkit/pkg/redis"
	"github.com/dmitrymomot/accountkit/pkg/session"
	"github.com/dmitrymomot/accountkit/pkg/store/postgres"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var appCfg appConfig
	config.MustLoad(&appCfg)

	log := logger.New(logger.WithEnvironment(appCfg.Env, appCfg.ServiceName))
	logger.SetAsDefault(log)

	if err := run(ctx, appCfg, log); err != nil {
		log.Error("accountd stopped with error", logger.Error(err))
		os.Exit(1)
	}
	log.Info("accountd stopped")
}

func run(ctx context.Context, appCfg appConfig, log *slog.Logger) error {
	var (
		pgCfg      pg.Config
		redisCfg   redis.Config
		accountCfg account.Config
		sessionCfg session.Config
		emailCfg   email.Config
		notifyCfg  notify.Config
	)
	for _, load := range []func() error{
		func() error { return config.Load(&pgCfg) },
		func() error { return config.Load(&redisCfg) },
		func() error { return config.Load(&accountCfg) },
		func() error { return config.Load(&sessionCfg) },
		func() error { return config.Load(&emailCfg) },
		func() error { return config.Load(&notifyCfg) },
	} {
		if err := load(); err != nil {
			return err
		}
	}

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool, pgCfg, log); err != nil {
		return err
	}
	probes := []probe{{name: "postgres", check: pg.Healthcheck(pool)}}

	var sessions session.Store
	switch appCfg.SessionBackend {
	case "memory":
		mem := session.NewMemoryStore(sessionCfg.CleanupInterval)
		defer mem.Close()
		sessions = mem
	case "redis":
		client, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer client.Close()
		sessions = session.NewRedisStore(client,
			session.WithKeyPrefix(sessionCfg.RedisKeyPrefix),
			session.WithIndexTTL(sessionCfg.TTL))
		probes = append(probes, probe{name: "redis", check: redis.Healthcheck(client)})
	default:
		return errors.New("unknown SESSION_BACKEND: " + appCfg.SessionBackend)
	}

	var sender email.EmailSender
	if emailCfg.DevOutputDir != "" && appCfg.isDevelopment() {
		sender = email.NewDevSender(emailCfg.DevOutputDir)
		log.Info("mail goes to disk", slog.String("dir", emailCfg.DevOutputDir))
	} else {
		if sender, err = email.NewPostmarkClient(emailCfg); err != nil {
			return err
		}
	}

	dispatcher := event.NewDispatcher(event.WithLogger(log))
	mailer, err := notify.NewMailer(sender, notifyCfg, notify.WithLogger(log))
	if err != nil {
		return err
	}
	mailer.Subscribe(dispatcher)

	accounts, err := account.New(postgres.New(pool), accountCfg,
		account.WithLogger(log),
		account.WithPublisher(dispatcher),
		account.WithSessionRevoker(session.NewRevoker(sessions)),
	)
	if err != nil {
		return err
	}

	// accountd serves no transport of its own; transports embedding the
	// packages build a session.Gate. Only its config is checked here.
	if err := sessionCfg.Validate(); err != nil {
		return err
	}

	log.InfoContext(ctx, "accountd started",
		slog.String("session_backend", appCfg.SessionBackend),
		logger.Duration(appCfg.SweepInterval))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(runSweeper(ctx, accounts.Sweep, appCfg.SweepInterval, log.With(logger.Component("sweeper"))))
	g.Go(runHealthMonitor(ctx, probes, appCfg.HealthInterval, log.With(logger.Component("health"))))
	return g.Wait()
}
