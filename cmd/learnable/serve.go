package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kode4food/learnable/internal/server"
	"github.com/kode4food/learnable/internal/session"
	"github.com/kode4food/learnable/internal/wizard"
	"github.com/kode4food/learnable/pkg/log"
)

type service struct {
	*learnable
	hub        *wizard.Hub
	apiServer  *server.Server
	httpServer *http.Server
	errs       chan error
}

func newServeCommand(a *learnable) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the wizard service",
		Long: `Run the wizard service, which exposes the class setup and NCCD report
wizards over HTTP and streams their events over WebSocket. While the
service runs, the backend session is monitored and cleared if the backend
terminates it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(),
				syscall.SIGINT, syscall.SIGTERM,
			)
			defer stop()

			s := &service{
				learnable: a,
				errs:      make(chan error, 1),
			}
			return s.run(ctx)
		},
	}
}

func (s *service) run(ctx context.Context) error {
	s.hub = wizard.NewHub()
	defer s.hub.Close()

	go s.monitorSession(ctx)
	s.startServer()

	select {
	case <-ctx.Done():
	case err := <-s.errs:
		return err
	}
	s.shutdown()
	return nil
}

func (s *service) startServer() {
	s.apiServer = server.NewServer(s.client, s.store, s.hub, s.cfg.MaxFlows)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.APIHost, s.cfg.APIPort),
		Handler: s.apiServer.SetupRoutes(),
	}

	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", s.httpServer.Addr))
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", log.Error(err))
			s.errs <- err
		}
	}()
}

func (s *service) monitorSession(ctx context.Context) {
	m := session.NewMonitor(s.cfg.BaseURL, s.session,
		func(_ context.Context, msg string) {
			slog.Warn("Backend session terminated",
				slog.String("message", msg))
		},
	)
	err := m.Run(ctx)
	switch {
	case err == nil, errors.Is(err, session.ErrNoSession),
		errors.Is(err, context.Canceled):
	case errors.Is(err, session.ErrSessionTerminated):
		s.println(msgLoginRequired)
	default:
		slog.Warn("Session monitor stopped", log.Error(err))
	}
}

func (s *service) shutdown() {
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(
		context.Background(), s.cfg.ShutdownTimeout,
	)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", log.Error(err))
	}
	s.apiServer.CloseWebSockets()

	slog.Info("Server exited")
}
