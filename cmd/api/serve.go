package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	pg "gnap-as/internal/adapters/storage/postgres"
	"gnap-as/internal/cleanup"
	"gnap-as/internal/config"
	"gnap-as/internal/domain/tokens"
	"gnap-as/internal/platform/logger"
	"gnap-as/internal/router"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server and the cleanup schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, v)
		},
	}

	cmd.Flags().String("addr", config.DefaultHTTPAddr, "Listen address. Env: GNAP_HTTP_ADDR.")
	cmd.Flags().String("issuer", config.DefaultIssuer, "Public base URL of this server. Env: GNAP_ISSUER.")
	cmd.Flags().Int("token-lifetime", config.DefaultTokenLifetime, "Grant and token lifetime in seconds.")
	cmd.Flags().Int("interaction-timeout", config.DefaultInteractionTimeout, "Interaction lifetime in seconds.")
	cmd.Flags().String("cleanup-schedule", config.DefaultCleanupSchedule, "Cron spec for the expiry sweep. Empty disables it.")
	bindFlag(v, cmd, config.KeyHTTPAddr, "addr")
	bindFlag(v, cmd, config.KeyIssuer, "issuer")
	bindFlag(v, cmd, config.KeyTokenLifetime, "token-lifetime")
	bindFlag(v, cmd, config.KeyInteractionTimeout, "interaction-timeout")
	bindFlag(v, cmd, config.KeyCleanupSchedule, "cleanup-schedule")

	return cmd
}

func serve(ctx context.Context, v *viper.Viper) error {
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	log := newLogger(cfg)
	defer syncLogger(log)

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	keys, err := tokens.NewEphemeralKey()
	if err != nil {
		return err
	}

	app, err := router.NewRouter(router.Options{
		Config: cfg,
		Logger: log,
		DB:     db,
		Keys:   keys,
	})
	if err != nil {
		return err
	}

	if cfg.CleanupSchedule != "" {
		sched, err := cleanup.NewScheduler(app.Cleanup, cfg.CleanupSchedule, log)
		if err != nil {
			return err
		}
		sched.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			sched.Stop(stopCtx)
		}()
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           app.Handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": cfg.HTTPAddr, "issuer": cfg.Issuer, "postgres": db != nil})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func newLogger(cfg config.Config) logger.Logger {
	return logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
}

func syncLogger(l logger.Logger) {
	if z, ok := l.(*logger.ZapLogger); ok {
		_ = z.Sync()
	}
}

// openDB devuelve nil sin DSN (in-memory).
func openDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if cfg.DatabaseDSN == "" {
		return nil, nil
	}
	return pg.Open(ctx, cfg.DatabaseDSN)
}
