// Package server exposes charts, selection options and the dataset over
// HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/vanderheijden86/trackr/internal/datasource"
	"github.com/vanderheijden86/trackr/pkg/chart"
	"github.com/vanderheijden86/trackr/pkg/export"
	"github.com/vanderheijden86/trackr/pkg/faq"
	"github.com/vanderheijden86/trackr/pkg/metrics"
	"github.com/vanderheijden86/trackr/pkg/model"
)

// ErrBadQuery marks a request whose query string cannot be turned into a
// chart request.
var ErrBadQuery = errors.New("bad query")

// Snapshotter supplies the dataset for each request.
type Snapshotter interface {
	Snapshot() *model.Dataset
}

// Options tune the server.
type Options struct {
	CORSOrigins  []string
	Width        int
	Height       int
	Title        string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithOptions replaces the server options.
func WithOptions(o Options) Option {
	return func(s *Server) { s.opts = o }
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for download names.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// Server answers chart queries against the current dataset snapshot.
type Server struct {
	src       Snapshotter
	assembler *chart.Assembler
	opts      Options
	logger    *zap.Logger
	now       func() time.Time
	router    chi.Router
}

// New builds a Server and its routes.
func New(src Snapshotter, opts ...Option) *Server {
	s := &Server{
		src:       src,
		assembler: chart.NewAssembler(),
		opts:      Options{CORSOrigins: []string{"*"}},
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/faq", s.handleFAQ)
	r.Get("/download", s.handleDownload)
	r.Get("/chart.svg", s.handleImage(export.FormatSVG))
	r.Get("/chart.png", s.handleImage(export.FormatPNG))
	r.Route("/api", func(r chi.Router) {
		r.Get("/options", s.handleOptions)
		r.Get("/chart", s.handleChart)
		r.Get("/summary", s.handleSummary)
		r.Get("/metrics", s.handleMetrics)
	})
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadTimeout:       s.opts.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return <-errCh
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			d := time.Since(start)
			metrics.HTTPRequest.Record(d)
			s.logger.Debug("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", d),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func (s *Server) snapshot() *model.Dataset {
	if s.src == nil {
		return nil
	}
	return s.src.Snapshot()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ds := s.snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"records": ds.Len(),
	})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, datasource.BuildCatalog(s.snapshot()))
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, datasource.Summarize(s.snapshot()))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"enabled": metrics.Enabled(),
		"timings": metrics.AllTimingStats(),
	})
}

func (s *Server) handleFAQ(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(faq.Markdown()))
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	ds := s.snapshot()
	req, err := ParseRequest(r, datasource.BuildCatalog(ds))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	data, err := export.MarshalSpec(s.assembler.Build(ds, req))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleImage(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderImage(w, r, format)
	}
}

func (s *Server) renderImage(w http.ResponseWriter, r *http.Request, format string) {
	ds := s.snapshot()
	req, err := ParseRequest(r, datasource.BuildCatalog(ds))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	opts := export.ChartOptions{
		Format: format,
		Width:  s.opts.Width,
		Height: s.opts.Height,
		Title:  s.opts.Title,
		Spec:   s.assembler.Build(ds, req),
	}
	if width, ok, err := intParam(r, "width"); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	} else if ok {
		opts.Width = width
	}
	if height, ok, err := intParam(r, "height"); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	} else if ok {
		opts.Height = height
	}

	var buf bytes.Buffer
	if err := export.Render(&buf, opts); err != nil {
		s.logger.Error("render chart", zap.String("format", format), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if format == export.FormatPNG {
		w.Header().Set("Content-Type", "image/png")
	} else {
		w.Header().Set("Content-Type", "image/svg+xml")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	ds := s.snapshot()
	if ds == nil {
		writeError(w, http.StatusServiceUnavailable, datasource.ErrNoDataset)
		return
	}
	var buf bytes.Buffer
	if err := datasource.WriteCSV(&buf, ds); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	name := datasource.DownloadName(s.now())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// ParseRequest reads entity, days and bounds from the query string.
// Repeated entity parameters keep their order. A missing days value takes
// the catalog default and missing bounds take the catalog's default tiers.
func ParseRequest(r *http.Request, cat datasource.Catalog) (chart.Request, error) {
	q := r.URL.Query()
	req := chart.Request{
		Selection: model.NormalizeSelection(q["entity"]),
		Parameter: cat.DefaultParameter,
		Bounds:    cat.DefaultBounds,
	}
	if raw := strings.TrimSpace(q.Get("days")); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("%w: days must be an integer, got %q", ErrBadQuery, raw)
		}
		req.Parameter = days
	}
	if values, ok := q["bounds"]; ok {
		b, err := model.ParseBounds(values)
		if err != nil {
			return req, fmt.Errorf("%w: %w", ErrBadQuery, err)
		}
		req.Bounds = b
	}
	return req, nil
}

func intParam(r *http.Request, name string) (int, bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 || v > 4096 {
		return 0, false, fmt.Errorf("%w: %s must be between 1 and 4096, got %q", ErrBadQuery, name, raw)
	}
	return v, true, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
