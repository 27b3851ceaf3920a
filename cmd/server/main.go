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
	"github.com/spf13/cobra"

	router "github.com/dkeye/meshcall/internal/adapters/http"
	"github.com/dkeye/meshcall/internal/adapters/rtc"
	wssignal "github.com/dkeye/meshcall/internal/adapters/signal"
	"github.com/dkeye/meshcall/internal/app"
	"github.com/dkeye/meshcall/internal/app/orch"
	"github.com/dkeye/meshcall/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "meshcall",
	Short: "Presence and signaling coordinator for group WebRTC calls",
	RunE:  run,
}

func init() {
	rootCmd.Flags().Int("port", 5001, "HTTP listen port")
	rootCmd.Flags().String("mode", "release", "gin mode: debug or release")
	rootCmd.Flags().Int("mesh_max", 8, "largest room still served as a full mesh")
	rootCmd.Flags().String("log_level", "info", "zerolog level")
}

func main() {
	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	rootCmd.SilenceUsage = true
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("exit")
		os.Exit(1)
	}
}

func applyLogging(cfg *config.Config) {
	if cfg.Mode == "release" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Err(err).Str("log_level", cfg.LogLevel).Msg("unknown log level, keeping info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func run(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	applyLogging(cfg)
	cfg.OnChange(func(next *config.Config) {
		level, err := zerolog.ParseLevel(next.LogLevel)
		if err != nil {
			return
		}
		zerolog.SetGlobalLevel(level)
		log.Info().Str("log_level", level.String()).Msg("log level reloaded")
	})

	media, err := rtc.NewMediaConfig(cfg)
	if err != nil {
		return fmt.Errorf("media config: %w", err)
	}

	reg := app.NewRegistry()
	hub := wssignal.NewHub(app.PolicyByName(cfg.Backpressure))
	coordinator := orch.New(reg, hub, cfg.MeshMax)
	ctl := wssignal.NewSignalWSController(coordinator, hub, wssignal.Options{
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		SendBuffer: cfg.SendBuffer,
		RateEvents: cfg.RateLimit.Events,
		RateWindow: cfg.RateLimit.Interval,
	})

	r := router.SetupRouter(ctx, cfg, reg, ctl, media)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:              addr,
		Handler:           router.WithCORS(cfg, r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Int("mesh_max", cfg.MeshMax).Msg("signaling server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			cancel()
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
	return nil
}
