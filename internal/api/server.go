// Package api provides the HTTP boundary: it accepts a population size and a
// step count, runs one isolated simulation per request and returns the result.
// Finished runs are archived when a database is configured.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/talgya/ideology-sim/internal/config"
	"github.com/talgya/ideology-sim/internal/engine"
	"github.com/talgya/ideology-sim/internal/persistence"
)

const (
	maxBodyBytes   = 1 << 16
	defaultRunList = 20
	maxRunList     = 200
)

// Server serves simulations over HTTP.
type Server struct {
	DB          *persistence.DB // Optional run archive. Nil = runs are not kept.
	Port        int
	CORSOrigins []string
	Limiter     *RateLimiter // Nil = unlimited.

	// AgentSnapshots is the default for requests that omit include_snapshots.
	AgentSnapshots bool

	validate *validator.Validate
	registry *prometheus.Registry
	metrics  *serverMetrics
	http     *http.Server
}

// SimulateRequest is the body of POST /simulate.
type SimulateRequest struct {
	AgentCount       *int   `json:"agent_count" validate:"required,gte=0,lte=100000"`
	StepCount        *int   `json:"step_count" validate:"required,gte=0,lte=10000"`
	Seed             *int64 `json:"seed,omitempty"`
	IncludeSnapshots *bool  `json:"include_snapshots,omitempty"`
}

type serverMetrics struct {
	runs       *prometheus.CounterVec
	duration   prometheus.Histogram
	population prometheus.Histogram
}

// NewServer builds a server from configuration. db may be nil.
func NewServer(cfg config.Config, db *persistence.DB) *Server {
	s := &Server{
		DB:             db,
		Port:           cfg.Server.Port,
		CORSOrigins:    cfg.Server.CORSOrigins,
		AgentSnapshots: cfg.Simulation.AgentSnapshots,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		registry:       prometheus.NewRegistry(),
	}
	if rl := cfg.Server.RateLimit; rl.Requests > 0 {
		s.Limiter = NewRateLimiter(rl.Requests, rl.Window)
	}

	s.metrics = &serverMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ideosim_runs_total",
			Help: "Simulation requests by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ideosim_run_duration_seconds",
			Help:    "Wall time of a simulation run.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		population: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ideosim_final_population",
			Help:    "Live agents at the end of a run.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
	}
	s.registry.MustRegister(s.metrics.runs, s.metrics.duration, s.metrics.population)

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the chi router with all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Run-ID"},
		AllowCredentials: true,
	}))

	simulate := s.handleSimulate
	if s.Limiter != nil {
		simulate = RateLimitMiddleware(s.Limiter, simulate)
	}

	r.Get("/health", s.handleHealth)
	r.Post("/simulate", simulate)
	r.Get("/runs", s.handleRuns)
	r.Get("/runs/{id}", s.handleRun)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return r
}

// Start begins serving and blocks until the server stops. A clean Shutdown
// returns nil.
func (s *Server) Start() error {
	slog.Info("HTTP API starting", "addr", s.http.Addr, "archive", s.DB != nil, "rate_limited", s.Limiter != nil)

	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight runs.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "archive": s.DB != nil})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.metrics.runs.WithLabelValues("bad_request").Inc()
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.metrics.runs.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	snapshots := s.AgentSnapshots
	if req.IncludeSnapshots != nil {
		snapshots = *req.IncludeSnapshots
	}
	opts := engine.Options{
		Population:         *req.AgentCount,
		Steps:              *req.StepCount,
		Seed:               req.Seed,
		SkipAgentSnapshots: !snapshots,
	}

	start := time.Now()
	res, err := engine.Run(opts)
	if errors.Is(err, engine.ErrInvalidConfig) {
		s.metrics.runs.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		s.metrics.runs.WithLabelValues("error").Inc()
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.metrics.runs.WithLabelValues("ok").Inc()
	s.metrics.duration.Observe(time.Since(start).Seconds())
	s.metrics.population.Observe(float64(len(res.NetworkGraph.Nodes)))

	if s.DB != nil {
		id, err := s.DB.SaveRun(opts.Population, opts.Steps, res)
		if err != nil {
			slog.Error("archive run failed", "error", err)
		} else {
			w.Header().Set("X-Run-ID", id)
		}
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusNotFound, "run archive disabled")
		return
	}
	limit := defaultRunList
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxRunList)
	}
	runs, err := s.DB.RecentRuns(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusNotFound, "run archive disabled")
		return
	}
	summary, res, err := s.DB.GetRun(chi.URLParam(r, "id"))
	if errors.Is(err, persistence.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"run":    summary,
		"result": res,
	})
}

// requestLogger logs one line per request through slog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"remote", r.RemoteAddr,
			"request_id", middleware.GetReqID(r.Context()),
			"elapsed", time.Since(start).Round(time.Microsecond),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
