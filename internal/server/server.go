// Package server exposes the document converter over HTTP for the editor front end.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/logicossoftware/go-docxedit"
	"github.com/logicossoftware/go-docxedit/internal/config"
	"github.com/logicossoftware/go-docxedit/internal/logging"
	"github.com/logicossoftware/go-docxedit/internal/storage"
)

const (
	docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	shutdownTimeout = 10 * time.Second
)

type Server struct {
	cfg    config.Server
	limits docxedit.Limits
	store  *storage.Store
	logger logging.Logger
	router *chi.Mux
}

func New(cfg config.Server, limits docxedit.Limits, store *storage.Store, logger logging.Logger) *Server {
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = config.DefaultUploadSize
	}
	if cfg.DownloadName == "" {
		cfg.DownloadName = config.DefaultDownloadName
	}

	s := &Server{
		cfg:    cfg,
		limits: limits,
		store:  store,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Post("/upload", s.handleUpload)
	r.Post("/download", s.handleDownload)

	s.router = r

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errorLog := s.logger.WithField("component", "http").Writer()
	defer errorLog.Close()

	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          log.New(errorLog, "", 0),
	}

	done := make(chan struct{})
	defer close(done)

	shutdownErr := make(chan error, 1)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
			return
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.WithField("listen", s.cfg.Listen).Info("Starting HTTP server")

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	err = <-shutdownErr
	if err != nil {
		return fmt.Errorf("couldn't shut down server: %w", err)
	}

	s.logger.Info("HTTP server stopped")

	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.
			WithFields(logging.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
			}).
			Debug("Request handled")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// writeError maps conversion failures to a status code. Client-side causes
// carry their message; anything else is logged and reported generically.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytes *http.MaxBytesError

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, docxedit.ErrFormat), errors.Is(err, docxedit.ErrMalformedRepresentation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, docxedit.ErrLimitExceeded), errors.Is(err, errUploadTooLarge), errors.As(err, &maxBytes):
		status = http.StatusRequestEntityTooLarge
	}

	logger := s.logger.
		WithField("request_id", middleware.GetReqID(r.Context())).
		WithField("status", status).
		WithError(err)

	if status == http.StatusInternalServerError {
		logger.Error("Request failed")
		http.Error(w, http.StatusText(status), status)
		return
	}

	logger.Warning("Request rejected")
	http.Error(w, err.Error(), status)
}
