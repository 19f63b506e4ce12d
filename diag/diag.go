// Package diag serves read-only run diagnostics over HTTP
// Routes: /status (registry JSON), /population (latest staged curves), /metrics (Prometheus)
package diag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lixenwraith/path-evolution/stage"
	"github.com/lixenwraith/path-evolution/status"
)

var ErrAlreadyStarted = errors.New("diagnostics server already started")

// Handler routes diagnostics requests
type Handler struct {
	registry *status.Registry
	stage    *stage.Stage
	logger   *slog.Logger
	metrics  *prometheus.Registry

	Mux *chi.Mux
}

// NewHandler builds the router; st may be nil when no stage is attached
func NewHandler(reg *status.Registry, st *stage.Stage, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	h := &Handler{
		registry: reg,
		stage:    st,
		logger:   logger,
		metrics:  prometheus.NewRegistry(),
		Mux:      chi.NewRouter(),
	}
	h.registerMetrics()
	h.registerRoutes()
	return h
}

func (h *Handler) registerRoutes() {
	h.Mux.Use(h.logRequests)
	h.Mux.Use(h.recoverer)

	h.Mux.Get("/status", h.getStatus)
	h.Mux.Get("/population", h.getPopulation)
	h.Mux.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(h.metrics, promhttp.HandlerOpts{}))
}

// registerMetrics exposes registry values as gauges read at scrape time
func (h *Handler) registerMetrics() {
	ints := map[string]string{
		status.KeyGeneration:  "Completed generations of the current run",
		status.KeyEvaluations: "Fitness evaluations of the current run",
		status.KeyFramesShown: "Stage frames drawn by the viewer",
	}
	for key, help := range ints {
		v := h.registry.Ints.Get(key)
		h.metrics.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: metricName(key),
			Help: help,
		}, func() float64 { return float64(v.Load()) }))
	}

	floats := map[string]string{
		status.KeyBestFitness:  "Best fitness of the last generation",
		status.KeyAvgFitness:   "Average fitness of the last generation",
		status.KeyWorstFitness: "Worst fitness of the last generation",
		status.KeyBestDistance: "Goal distance of the best route",
	}
	for key, help := range floats {
		v := h.registry.Floats.Get(key)
		h.metrics.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: metricName(key),
			Help: help,
		}, v.Get))
	}

	running := h.registry.Bools.Get(status.KeyRunning)
	h.metrics.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: metricName(status.KeyRunning),
		Help: "1 while the solver goroutine runs",
	}, func() float64 {
		if running.Load() {
			return 1
		}
		return 0
	}))
}

// metricName maps a registry key to a Prometheus metric name
func metricName(key string) string {
	b := []byte("pathevo_" + key)
	for i, c := range b {
		if c == '.' || c == '-' {
			b[i] = '_'
		}
	}
	return string(b)
}

func (h *Handler) getStatus(w http.ResponseWriter, r *http.Request) {
	snapshot := h.registry.Snapshot()
	for k, v := range snapshot {
		if f, ok := v.(float64); ok {
			snapshot[k] = jsonFloat(f)
		}
	}
	h.writeJSON(w, r, http.StatusOK, snapshot)
}

type population struct {
	Fitness []*float64     `json:"fitness"`
	Curves  [][][2]float64 `json:"curves"`
}

func (h *Handler) getPopulation(w http.ResponseWriter, r *http.Request) {
	if h.stage == nil {
		h.writeJSON(w, r, http.StatusNotFound, map[string]string{"error": "no stage attached"})
		return
	}

	curves, scores := h.stage.Snapshot()
	out := population{
		Fitness: make([]*float64, len(scores)),
		Curves:  make([][][2]float64, len(curves)),
	}
	for i, s := range scores {
		out.Fitness[i] = jsonFloat(s)
	}
	for i, curve := range curves {
		pts := make([][2]float64, 0, len(curve))
		for _, p := range curve {
			if !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) {
				pts = append(pts, [2]float64{p.X, p.Y})
			}
		}
		out.Curves[i] = pts
	}
	h.writeJSON(w, r, http.StatusOK, out)
}

// jsonFloat maps non-finite values to null
func jsonFloat(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", "method", r.Method, "path", r.URL.Path, "error", err)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	StatusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.StatusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusRecorder{ResponseWriter: w, StatusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		h.logger.Debug("request", "status", rw.StatusCode, "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func (h *Handler) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				h.logger.Error("handler panic", "path", r.URL.Path, "panic", err, "stack", string(debug.Stack()))
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Server runs a Handler on a listen address
type Server struct {
	srv    *http.Server
	logger *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	done     chan struct{}
}

// NewServer wraps h for addr
func NewServer(addr string, h *Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           h.Mux,
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       time.Minute,
		},
		logger: h.logger,
	}
}

// Start binds synchronously and serves in the background
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return ErrAlreadyStarted
	}
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.srv.Addr, err)
	}
	s.listener = ln
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		s.logger.Info("diagnostics listening", "addr", ln.Addr().String())
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("diagnostics server", "error", err)
		}
	}()
	return nil
}

// Addr returns the bound address, empty before Start
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown drains connections until ctx expires
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
