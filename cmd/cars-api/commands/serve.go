package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cars-api/internal/common/config"
	"cars-api/internal/common/observability"
	"cars-api/internal/common/validation"
	api "cars-api/internal/http"
	"cars-api/internal/http/handlers"
	"cars-api/internal/repository"
	"cars-api/internal/service"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	var connectAttempts int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the cars REST API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), connectAttempts)
		},
	}
	cmd.Flags().IntVar(&connectAttempts, "connect-attempts", 15, "attempts per backing store before giving up")
	return cmd
}

func serve(ctx context.Context, connectAttempts int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	zapLog.Info("Starting cars-api...", zap.String("version", cfg.App.Version))

	obs, err := observability.New(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint, nil)
	if err != nil {
		zapLog.Warn("observability partially disabled", zap.Error(err))
	}
	defer obs.Shutdown()

	st, err := openStores(ctx, connectAttempts)
	if err != nil {
		zapLog.Error("backing stores unavailable", zap.Error(err))
		return err
	}
	defer st.Close()

	cars := service.NewCarService(
		repository.NewInstrumentedCarRepository(st.cars, obs),
		repository.NewInstrumentedCarSearchRepository(st.search, obs),
		log,
	)

	validator, err := validation.NewPageRequestValidator(cfg.Pagination.DefaultSize, cfg.Pagination.MaxSize)
	if err != nil {
		return err
	}

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(cfg, handlers.NewCarHandler(cars, validator, log), st.pingers(), log)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		zapLog.Info("HTTP server listening",
			zap.String("address", cfg.Server.Address),
			zap.String("basePath", cfg.Server.BasePath),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		zapLog.Info("Shutdown signal received, stopping HTTP server...", zap.String("signal", sig.String()))
	case err, ok := <-errCh:
		if ok {
			zapLog.Error("HTTP server failed", zap.Error(err))
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
		return err
	}

	zapLog.Info("cars-api stopped gracefully")
	return nil
}
