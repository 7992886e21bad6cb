package main

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/5w1tchy/library-api/internal/api/router"
	"github.com/5w1tchy/library-api/internal/config"
	"github.com/5w1tchy/library-api/internal/logging"
	"github.com/5w1tchy/library-api/internal/repository/migrations"
	"github.com/5w1tchy/library-api/internal/repository/redisconnect"
	"github.com/5w1tchy/library-api/internal/repository/sqlconnect"
	jwtutil "github.com/5w1tchy/library-api/internal/security/jwt"
	"github.com/5w1tchy/library-api/internal/security/password"
	"github.com/5w1tchy/library-api/internal/validate"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load()
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := validate.Env(cfg); err != nil {
		logging.Fatal().Err(err).Msg("invalid configuration")
	}
	for _, w := range validate.HardeningWarnings(cfg) {
		logging.Warn().Msg(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlconnect.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logging.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()
	logging.Info().Msg("connected to database")

	if cfg.AutoMigrate {
		if err := migrations.Up(ctx, db); err != nil {
			logging.Fatal().Err(err).Msg("auto-migrate failed")
		}
	}

	rdb, err := redisconnect.Connect(ctx, cfg.RedisURL)
	if err != nil {
		logging.Fatal().Err(err).Msg("redis connection failed")
	}
	if rdb != nil {
		defer rdb.Close()
		logging.Info().Msg("connected to redis")
	}

	signer := jwtutil.NewSigner(jwtutil.Config{
		Secret:     []byte(cfg.JWTSecret),
		ClockSkew:  cfg.ClockSkew,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	})
	hasher := password.NewHasher(password.Params{
		Memory:      cfg.Argon2Memory,
		Iterations:  cfg.Argon2Iter,
		Parallelism: cfg.Argon2Par,
	})

	background := make(chan struct{})
	handler := router.New(router.Deps{
		DB:     db,
		RDB:    rdb,
		Config: cfg,
		Signer: signer,
		Hasher: hasher,
		Stop:   background,
	})

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
	}

	errc := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", cfg.Addr).Bool("tls", cfg.TLSCertFile != "").Msg("server listening")
		if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
			errc <- server.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("server failed")
		}
	case <-ctx.Done():
		logging.Info().Msg("shutting down")
	}

	close(background)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("graceful shutdown failed")
	}
}
