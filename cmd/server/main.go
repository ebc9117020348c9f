package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/starterpack/webapp/internal/api"
	"github.com/starterpack/webapp/internal/api/handler"
	"github.com/starterpack/webapp/internal/core/ports"
	"github.com/starterpack/webapp/internal/infrastructure/config"
	"github.com/starterpack/webapp/internal/infrastructure/db/mongo"
	"github.com/starterpack/webapp/internal/infrastructure/db/postgres"
	"github.com/starterpack/webapp/internal/infrastructure/db/redis"
	"github.com/starterpack/webapp/internal/infrastructure/db/sqlite"
	"github.com/starterpack/webapp/internal/infrastructure/mail"
	"github.com/starterpack/webapp/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// A missing .env is normal outside local development.
	envErr := godotenv.Load()

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Service: "starterpack",
		Env:     cfg.Env,
	})
	if envErr != nil {
		log.Debug().Msg("no .env file found; relying on existing environment")
	}
	if !cfg.IsProduction() && cfg.SecretKey == config.DefaultSecretKey {
		log.Warn().Msg("using the development SECRET_KEY; set SECRET_KEY before deploying")
	}

	users, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("init database")
	}
	defer closeStore()

	deps := api.Deps{
		Users:    users,
		Checks:   map[string]handler.Pinger{},
		Registry: newRegistry(),
		Log:      logger.Component("http"),
	}

	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("init redis")
		}
		defer rdb.Close()

		deps.Cache = redis.NewCache(rdb, cfg.Cache.KeyPrefix)
		deps.Revoker = redis.NewRevocationStore(rdb)
		deps.Checks["redis"] = handler.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
		log.Info().Str("addr", cfg.Redis.Addr).Msg("redis cache and session revocation enabled")
	}

	if cfg.Mail.Server != "" {
		mailer, err := mail.NewSMTPMailer(mail.Config{
			Server:        cfg.Mail.Server,
			Port:          cfg.Mail.Port,
			UseTLS:        cfg.Mail.UseTLS,
			Username:      cfg.Mail.Username,
			Password:      cfg.Mail.Password,
			DefaultSender: cfg.Mail.DefaultSender,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("init mailer")
		}
		deps.Mailer = mailer
	}

	e, err := api.NewRouter(cfg, deps)
	if err != nil {
		log.Fatal().Err(err).Msg("build router")
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Str("driver", cfg.Database.Driver).Msg("server listening")
		if err := e.Start(cfg.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
}

// openStore selects the user store for cfg.Database.Driver and returns a
// function releasing its connections.
func openStore(ctx context.Context, cfg *config.Config) (ports.UserRepository, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := sqlite.Open(ctx, cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewUserRepository(db), func() { _ = db.Close() }, nil

	case config.DriverPostgres:
		store, err := postgres.NewUserStore(ctx, cfg.Database.URL)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case config.DriverMongo:
		repo, disconnect, err := mongo.OpenUserRepository(ctx, mongo.Config{
			URI:      cfg.Database.URL,
			Database: cfg.Database.MongoDB,
		})
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = disconnect(ctx)
		}, nil
	}
	return nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
