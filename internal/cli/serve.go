package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/Skotchmaster/petstore/internal/httpserver"
	"github.com/Skotchmaster/petstore/internal/migrate"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) (err error) {
	ctx := cmd.Context()
	l := logger.With().Str("cmd", "serve").Logger()

	a, err := openApp(ctx, cfg, openOpts{redis: true, events: true, index: true})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			l.Error().Err(cerr).Msg("close_resources_failed")
			err = multierr.Append(err, cerr)
		}
	}()

	if cfg.DB.AutoMigrate {
		if err := migrate.Up(ctx, a.db, a.dialect); err != nil {
			return err
		}
		l.Info().Str("dialect", string(a.dialect)).Msg("schema_migrated")
	}
	if a.index != nil {
		if err := a.index.EnsureIndex(ctx); err != nil {
			l.Warn().Err(err).Msg("ensure_search_index_failed")
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	e := httpserver.New(a.httpDeps(reg))

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      e,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info().
			Str("addr", srv.Addr).
			Bool("redis", a.redis != nil).
			Bool("search", a.index != nil).
			Bool("kafka", cfg.Kafka.Enabled()).
			Msg("http_server_started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		l.Info().Msg("shutdown_signal_received")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("http_shutdown_failed")
		return err
	}
	l.Info().Msg("http_server_stopped")
	return nil
}
