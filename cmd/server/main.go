package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/Courier/internal/adapters/http"
	"github.com/dkeye/Courier/internal/adapters/ws"
	"github.com/dkeye/Courier/internal/app"
	"github.com/dkeye/Courier/internal/auth"
	"github.com/dkeye/Courier/internal/config"
	"github.com/dkeye/Courier/internal/domain"
	"github.com/dkeye/Courier/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error().Err(err).Msg("store close")
		}
	}()

	// The web client assumes a "general" channel exists.
	general := domain.Channel{ID: "general", Name: "general", Kind: domain.ChannelText, CreatedAt: time.Now().UTC()}
	if err := st.EnsureChannel(general); err != nil {
		log.Error().Err(err).Msg("failed to seed default channel")
	}

	gw := auth.NewGateway(st, cfg.Secret, cfg.TokenTTL)
	reg := app.NewRegistry(st)
	msgRouter := app.NewRouter(reg, st, cfg.HistoryLimit)
	relay := app.NewRelay(reg)
	ctl := ws.NewController(gw, reg, msgRouter, relay, cfg.ReadLimit, cfg.PingPeriod)

	r := router.SetupRouter(ctx, cfg, gw, ctl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Courier server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
