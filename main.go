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

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/mo-shahab/pong-authority/auth"
	"github.com/mo-shahab/pong-authority/config"
	"github.com/mo-shahab/pong-authority/game"
	"github.com/mo-shahab/pong-authority/room"
	"github.com/mo-shahab/pong-authority/scheduler"
	"github.com/mo-shahab/pong-authority/store"
	"github.com/mo-shahab/pong-authority/wsserver"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	zerolog.SetGlobalLevel(cfg.LogLevel)

	if cfg.GeneratedSecret {
		log.Warn().Msg("JWT_SECRET not set, using a random secret; sessions will not survive a restart")
	}

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func run(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	sched := scheduler.New(log.Logger)
	defer sched.Stop()

	rm := room.New(log.Logger)
	engine := game.NewEngine(game.Config{
		Store:     st,
		Scheduler: sched,
		Events:    rm,
		Logger:    log.Logger,
	})
	if err := engine.Start(ctx); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	wsh := wsserver.NewWebSocketHandler(engine, rm, issuer, cfg.ClientOrigin, log.Logger)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           wsserver.Router(wsh, cfg.ClientOrigin, cfg.ClientDir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return engine.Run(gctx)
	})
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("store", cfg.Store).Msg("starting pong server")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sched.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func openStore(cfg config.Config) (store.Store, error) {
	switch cfg.Store {
	case config.StoreSQLite:
		st, err := store.OpenSQLite(cfg.DBPath, log.Logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		log.Info().Str("path", cfg.DBPath).Msg("using sqlite world store")
		return st, nil
	default:
		return store.NewMemoryStore(), nil
	}
}
