// Package httpapi exposes the solvers over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aalvaropc/numlab/internal/buildinfo"
	"github.com/aalvaropc/numlab/internal/domain"
	"github.com/aalvaropc/numlab/internal/expr"
	"github.com/aalvaropc/numlab/internal/ports"
	"github.com/aalvaropc/numlab/internal/usecase"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

type Server struct {
	solver   ports.Solver
	compare  *usecase.Compare
	defaults domain.SolveSettings
	timeout  time.Duration
	log      *slog.Logger
	registry *prometheus.Registry
	metrics  *metrics
}

type Option func(*Server)

// WithDefaults sets the settings used when a request carries none.
func WithDefaults(s domain.SolveSettings) Option {
	return func(srv *Server) { srv.defaults = s }
}

// WithTimeout bounds every solve and comparison.
func WithTimeout(d time.Duration) Option {
	return func(srv *Server) {
		if d > 0 {
			srv.timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(srv *Server) {
		if l != nil {
			srv.log = l
		}
	}
}

func New(solver ports.Solver, opts ...Option) *Server {
	srv := &Server{
		solver:   solver,
		compare:  usecase.NewCompare(solver),
		defaults: domain.DefaultSettings(),
		timeout:  defaultTimeout,
		log:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
		registry: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(srv)
	}
	srv.registry.MustRegister(collectors.NewGoCollector())
	srv.metrics = newMetrics(srv.registry)
	return srv
}

// Handler returns the routes of the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.route(mux, "POST /v1/solve", s.handleSolve)
	s.route(mux, "POST /v1/compare", s.handleCompare)
	s.route(mux, "POST /v1/expr", s.handleExpr)
	s.route(mux, "GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, Health{Status: "ok", Version: buildinfo.Resolved()})
	})
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

// route registers h and records its count and duration.
func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h(rec, r)
		s.metrics.requests.WithLabelValues(pattern, strconv.Itoa(rec.status)).Inc()
		s.metrics.duration.WithLabelValues(pattern).Observe(time.Since(start).Seconds())
		s.log.Debug("http.request", "route", pattern, "status", rec.status, "duration_ms", time.Since(start).Milliseconds())
	})
}

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req SolveRequest
	if !decode(w, r, &req) {
		return
	}
	p := req.Problem
	if p.Name == "" {
		p.Name = string(p.Method)
	}

	settings, err := s.settings(req.Settings, p.Tuning)
	if err != nil {
		writeError(w, http.StatusConflict, "solve failed", err, nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	res, err := s.solver.Solve(ctx, p, settings)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "solve failed", err, nil)
		return
	}
	s.observe(res)
	s.log.Info("http.solve", "problem", res.Name, "method", res.Method, "converged", res.Converged, "iterations", res.Iterations)

	if res.Error != nil {
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Detail: res.Error.Message,
			Error:  "solve failed",
			Kind:   res.Error.Kind,
			Result: &res,
		})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req CompareRequest
	if !decode(w, r, &req) {
		return
	}

	methods := make([]domain.Method, 0, len(req.Methods))
	for _, name := range req.Methods {
		m, err := domain.ParseMethod(name)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad request", fmt.Errorf("%v: %w", err, domain.ErrInvalidConfig), nil)
			return
		}
		methods = append(methods, m)
	}

	settings, err := s.settings(req.Settings, req.Problem.Tuning)
	if err != nil {
		writeError(w, http.StatusConflict, "compare failed", err, nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	cmp, err := s.compare.Execute(ctx, req.Problem, methods, settings)
	if err != nil {
		writeError(w, http.StatusConflict, "compare failed", err, nil)
		return
	}
	for _, e := range cmp.Entries {
		s.metrics.solves.WithLabelValues(string(e.Method), outcome(e.Converged, e.Error)).Inc()
	}
	writeJSON(w, http.StatusOK, cmp)
}

func (s *Server) handleExpr(w http.ResponseWriter, r *http.Request) {
	var req ExprRequest
	if !decode(w, r, &req) {
		return
	}

	fn, err := expr.Compile(req.Expression)
	if err != nil {
		writeError(w, http.StatusConflict, "expression rejected", err, nil)
		return
	}
	d1, d2, err := fn.Derivatives()
	if err != nil {
		writeError(w, http.StatusConflict, "expression rejected", err, nil)
		return
	}

	out := ExprResponse{
		Input:            req.Expression,
		Normalized:       fn.String(),
		Derivative:       d1.String(),
		SecondDerivative: d2.String(),
	}
	if req.At != nil {
		out.Value, out.ValueError = evalAt(fn, *req.At)
	}
	writeJSON(w, http.StatusOK, out)
}

// evalAt returns f(x), or a reason when the value cannot be represented in JSON.
func evalAt(fn *expr.Function, x float64) (*float64, string) {
	v := fn.At(x)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Sprintf("non-finite value %g", v)
	}
	return &v, ""
}

func (s *Server) settings(explicit *domain.SolveSettings, t domain.Tuning) (domain.SolveSettings, error) {
	if explicit != nil {
		return usecase.ResolveSettings(*explicit)
	}
	return usecase.ResolveSettings(s.defaults, t)
}

func (s *Server) observe(res domain.ProblemResult) {
	s.metrics.solves.WithLabelValues(string(res.Method), outcome(res.Converged, res.Error)).Inc()
	s.metrics.iterations.WithLabelValues(string(res.Method)).Observe(float64(res.Iterations))
}

func outcome(converged bool, e *domain.RunError) string {
	switch {
	case e != nil:
		return string(e.Kind)
	case converged:
		return "converged"
	}
	return "unconverged"
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "bad request", fmt.Errorf("decode body: %v: %w", err, domain.ErrInvalidConfig), nil)
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, status int, title string, err error, res *domain.ProblemResult) {
	writeJSON(w, status, ErrorResponse{
		Detail: err.Error(),
		Error:  title,
		Kind:   domain.ClassifyRunError(err),
		Result: res,
	})
}

// writeJSON encodes v before sending the status so an encoding failure turns
// into a 500 instead of an empty body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(ErrorResponse{
			Detail: err.Error(),
			Error:  "encode response",
			Kind:   domain.KindExecution,
		})
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
