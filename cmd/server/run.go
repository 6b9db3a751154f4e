package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ecdye/jwt-pizza-service/internal/config"
	"github.com/ecdye/jwt-pizza-service/internal/di"
	"github.com/ecdye/jwt-pizza-service/internal/logging"
	"github.com/ecdye/jwt-pizza-service/internal/server"
	"github.com/ecdye/jwt-pizza-service/internal/version"
)

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := di.ProvideStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	h := server.BuildRouter(server.Deps{
		Store:   store,
		Issuer:  di.ProvideIssuer(cfg),
		Factory: di.ProvideFactory(cfg),
	}, server.Options{
		EnableCORS:  true,
		ListPerPage: cfg.Database.ListPerPage,
		Metrics:     true,
	})

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      h,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version.Version).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
