// Package server exposes the session controller over a local HTTP API.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/emotion-session/orchestrator"
	"github.com/maastricht-university/emotion-session/report"
)

// Session is the part of the controller the API drives.
type Session interface {
	Start()
	Stop()
	Snapshot() orchestrator.Snapshot
}

type Options struct {
	Addr           string
	OutputDir      string
	ReportFilename string
	Log            logrus.FieldLogger
}

type Server struct {
	session  Session
	reports  *report.Assembler
	opts     Options
	log      logrus.FieldLogger
	router   chi.Router
	shutdown time.Duration
}

func New(s Session, reports *report.Assembler, opts Options) *Server {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	srv := &Server{
		session:  s,
		reports:  reports,
		opts:     opts,
		log:      opts.Log.WithField("component", "server"),
		router:   chi.NewRouter(),
		shutdown: 5 * time.Second,
	}
	srv.setupRoutes()
	return srv
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRoutes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Route("/session", func(r chi.Router) {
		r.Get("/", s.handleSnapshot)
		r.Post("/start", s.handleStart)
		r.Post("/stop", s.handleStop)
	})
	r.Get("/report", s.handleReport)
	r.Post("/report/export", s.handleExport)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	hs := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.opts.Addr).Info("control api listening")
		errCh <- hs.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()
	if err := hs.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

func (s *Server) handleStart(w http.ResponseWriter, _ *http.Request) {
	s.session.Start()
	writeJSON(w, http.StatusAccepted, s.session.Snapshot())
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	s.session.Stop()
	writeJSON(w, http.StatusAccepted, s.session.Snapshot())
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	snap := s.session.Snapshot()
	switch format := r.URL.Query().Get("format"); format {
	case "text":
		art := s.reports.Build(snap.Table, nil)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(art.Text() + "\n"))
	case "csv":
		art := s.reports.Build(snap.Table, nil)
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		_, _ = w.Write([]byte(art.CSV() + "\n"))
	case "", "pdf":
		var buf bytes.Buffer
		if err := s.reports.WritePDF(&buf, s.reports.Render(snap.Table)); err != nil {
			s.log.WithError(err).Error("render report")
			http.Error(w, "report unavailable", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.opts.ReportFilename))
		_, _ = buf.WriteTo(w)
	default:
		http.Error(w, "unknown format "+format, http.StatusBadRequest)
	}
}

func (s *Server) handleExport(w http.ResponseWriter, _ *http.Request) {
	snap := s.session.Snapshot()
	art := s.reports.Render(snap.Table)
	path, err := s.reports.Save(s.opts.OutputDir, s.opts.ReportFilename, art, report.Bundle{
		SessionID:   snap.SessionID,
		GeneratedAt: time.Now().UTC(),
		Title:       art.Title,
		Table:       snap.Table,
		Suggestions: snap.Suggestions,
	})
	if err != nil {
		s.log.WithError(err).Error("export report")
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"path": path})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
