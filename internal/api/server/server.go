// Package server runs a development stand-in for the document QA backend.
// It accepts uploads and questions with the same wire format and error
// messages as the real service, but it does not read documents.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/nsai-uio/IMF-AITool/internal/api/server/handlers"
	"github.com/nsai-uio/IMF-AITool/internal/config"
	"github.com/nsai-uio/IMF-AITool/internal/logger"
)

type Server struct {
	addr     string
	store    *handlers.Store
	opts     handlers.Options
	answerer handlers.Answerer
	log      *logger.Logger
}

func New(cfg config.StubConfig, answerer handlers.Answerer) *Server {
	return &Server{
		addr:  cfg.Addr,
		store: handlers.NewStore(),
		opts: handlers.Options{
			Async:             cfg.Async,
			StepDelay:         cfg.StepDelay,
			MaxUploadBytes:    cfg.MaxUploadBytes,
			AllowedExtensions: cfg.AllowedExtensions,
		},
		answerer: answerer,
		log:      logger.NewLogger("Server"),
	}
}

// Handler returns the routed endpoints. Background upload tasks stop when
// ctx is done.
func (s *Server) Handler(ctx context.Context) http.Handler {
	return s.registerRoutes(handlers.NewHandler(ctx, s.store, s.answerer, s.opts))
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(ctx),
		ReadHeaderTimeout: 15 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("Server shutdown: ", err)
		}
	}()

	s.log.Info("Server started on http://" + s.addr + "/")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
