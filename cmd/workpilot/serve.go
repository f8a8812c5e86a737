package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/workpilot/internal/auth"
	"github.com/mmynk/workpilot/internal/bot"
	"github.com/mmynk/workpilot/internal/classifier"
	"github.com/mmynk/workpilot/internal/config"
	"github.com/mmynk/workpilot/internal/metrics"
	"github.com/mmynk/workpilot/internal/middleware"
	"github.com/mmynk/workpilot/internal/scheduler"
	"github.com/mmynk/workpilot/internal/service"
	"github.com/mmynk/workpilot/internal/transport/telegram"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot, the reminder scheduler and the admin API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts.cfg, opts.logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.Telegram.Token == "" {
		return errors.New("telegram token is required (set TELEGRAM_BOT_TOKEN)")
	}

	client, err := telegram.New(cfg.Telegram.Token, logger)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, client, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := client.SetCommands(ctx); err != nil {
		logger.Warn("Failed to set bot commands", "error", err)
	}

	router := bot.NewRouter(
		a.reports,
		client,
		a.renderer,
		classifier.New(cfg.Report.Keywords, cfg.Report.MinLength),
		logger,
	)

	sched, err := scheduler.New(cfg.Reminder.Slots, a.location, a.reports.Dispatcher, logger)
	if err != nil {
		return err
	}
	for _, slot := range cfg.Reminder.Slots {
		if next, ok := sched.Next(slot.Name); ok {
			logger.Info("Reminder slot scheduled", "slot", slot.Name, "cron", slot.Cron, "next", next)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return client.Run(gctx, router) })
	g.Go(func() error { return sched.Run(gctx) })

	if cfg.Admin.Addr != "" {
		srv := &http.Server{
			Addr:              cfg.Admin.Addr,
			Handler:           adminHandler(cfg, a, logger),
			ReadHeaderTimeout: 10 * time.Second,
		}
		g.Go(func() error {
			logger.Info("Admin server starting", "address", cfg.Admin.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("admin server failed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	logger.Info("WorkPilot started", "timezone", a.location.String())
	err = g.Wait()
	logger.Info("WorkPilot stopped")
	return err
}

// adminHandler mounts the admin RPCs, metrics and the health check.
func adminHandler(cfg *config.Config, a *app, logger *slog.Logger) http.Handler {
	jwtManager := auth.NewJWTManager(cfg.Admin.JWTSecret, cfg.Admin.TokenTTL)
	authSvc := service.NewAuthService(auth.NewPasswordAuthenticator(cfg.Admin.Operators), jwtManager, logger)

	interceptors := connect.WithInterceptors(
		middleware.RequireAuth(jwtManager, service.PublicProcedures()...),
		middleware.LoggingInterceptor(logger),
	)

	mux := http.NewServeMux()
	path, handler := service.NewAdminServiceHandler(authSvc, service.NewAdminService(a.reports, logger), interceptors)
	mux.Handle(path, handler)
	mux.Handle("/metrics", metrics.Handler(a.registry))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return h2c.NewHandler(loggingMiddleware(logger, mux), &http2.Server{})
}

// loggingMiddleware logs every HTTP request.
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
