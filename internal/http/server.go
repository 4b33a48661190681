package http

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
)

// Deps are the collaborators the API server needs.
type Deps struct {
	Analytics *services.AnalyticsService
	Records   *services.RecordService
	// Snapshots may be nil; the snapshot route then answers 501.
	Snapshots *services.SnapshotRepository
	Metrics   *metrics.Metrics
	Logger    *log.Logger
	// Ready backs /readyz; nil means always ready.
	Ready              func(context.Context) error
	RateLimitPerMinute int
}

type Server struct {
	http.Server

	analytics *services.AnalyticsService
	records   *services.RecordService
	snapshots *services.SnapshotRepository
	metrics   *metrics.Metrics
	logger    *log.Logger
	ready     func(context.Context) error

	limiter  *ratelimit.Limiter
	detector *security.Detector

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}

	s := &Server{
		analytics: deps.Analytics,
		records:   deps.Records,
		snapshots: deps.Snapshots,
		metrics:   deps.Metrics,
		logger:    logger.WithComponent(log.ComponentHTTP),
		ready:     deps.Ready,
		detector:  security.NewDetector(),
	}

	rlConfig := ratelimit.DefaultConfig()
	if deps.RateLimitPerMinute > 0 {
		rlConfig.RequestsPerMinute = deps.RateLimitPerMinute
	}
	s.limiter = ratelimit.NewLimiter(rlConfig)
	s.exportMiddlewareMetrics()

	mux := http.NewServeMux()
	s.routes(mux)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(mux, deps.RateLimitPerMinute > 0),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", s.metrics.Handler())

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	mux.HandleFunc("POST /api/incomes", s.handleCreateIncome)
	mux.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)
	mux.HandleFunc("PUT /api/incomes/{id}", s.handleUpdateIncome)
	mux.HandleFunc("DELETE /api/incomes/{id}", s.handleDeleteIncome)

	mux.HandleFunc("GET /api/analytics/categories", s.handleCategories)
	mux.HandleFunc("GET /api/analytics/monthly", s.handleMonthly)
	mux.HandleFunc("GET /api/analytics/daily", s.handleDaily)
	mux.HandleFunc("GET /api/analytics/insights", s.handleInsights)
	mux.HandleFunc("GET /api/analytics/insights/snapshot", s.handleInsightsSnapshot)
	mux.HandleFunc("POST /api/analytics/forecast", s.handleForecast)
	mux.HandleFunc("GET /api/analytics/budget-analysis", s.handleBudgetAnalysis)
	mux.HandleFunc("GET /api/analytics/comparison", s.handleComparison)
	mux.HandleFunc("GET /api/analytics/spending-patterns", s.handleSpendingPatterns)

	mux.HandleFunc("GET /api/goals", s.handleGetGoals)
	mux.HandleFunc("PUT /api/goals", s.handlePutGoals)
	mux.HandleFunc("GET /api/goals/progress", s.handleGoalsProgress)
	mux.HandleFunc("GET /api/goals/recommendations", s.handleGoalsRecommendations)
}

// middleware wraps the mux, outermost first: trace, security headers,
// suspicious-request logging, rate limiting of writes, request logger.
func (s *Server) middleware(mux http.Handler, limitWrites bool) http.Handler {
	h := s.instrument(mux)
	h = log.RequestIDMiddleware(trace.RequestIDFromRequest)(h)
	h = log.Middleware(s.logger)(h)

	if limitWrites {
		onlyWrites := func(r *http.Request) bool {
			return r.Method == http.MethodGet || r.Method == http.MethodHead
		}
		h = s.limiter.Middleware(s.detector.ExtractClientIP, onlyWrites, func(w http.ResponseWriter, r *http.Request) {
			s.logger.WithComponent(log.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
				log.FieldClientIP, s.detector.ExtractClientIP(r),
				log.FieldPath, r.URL.Path)
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Write(w)
		})(h)
	}

	h = s.flagSuspicious(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	return trace.NewMiddleware(s.detector.ExtractClientIP).Middleware(h)
}

func (s *Server) exportMiddlewareMetrics() {
	s.metrics.CounterFunc("fintrack_rate_limited_total", "Requests rejected by the rate limiter.",
		func() float64 { return float64(s.limiter.GetMetrics().TotalHits) })
	s.metrics.GaugeFunc("fintrack_rate_limit_clients", "Clients tracked by the rate limiter.",
		func() float64 { return float64(s.limiter.GetMetrics().ClientCount) })
	s.metrics.CounterFunc("fintrack_suspicious_requests_total", "Requests flagged by the security detector.",
		func() float64 { return float64(s.detector.GetMetrics().SuspiciousRequests) })
	s.metrics.CounterFunc("fintrack_invalid_client_ip_total", "Requests whose client address could not be parsed.",
		func() float64 { return float64(s.detector.GetMetrics().InvalidIPAttempts) })
}

func (s *Server) flagSuspicious(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			s.logger.WithComponent(log.ComponentSecurity).WarnContext(r.Context(), "Suspicious request",
				log.FieldRequestID, trace.GetRequestID(r.Context()),
				log.FieldClientIP, s.detector.ExtractClientIP(r),
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path,
				log.FieldUserAgent, r.UserAgent())
		}
		next.ServeHTTP(w, r)
	})
}

// instrument records request latency keyed by the matched route pattern.
// It must wrap the mux directly: the mux sets r.Pattern on the request it
// is handed.
func (s *Server) instrument(mux http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		mux.ServeHTTP(sw, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveHTTP(route, r.Method, sw.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Shutdown stops the rate limiter and drains the HTTP server. It is safe to
// call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// ListenAndServe runs until Shutdown; http.ErrServerClosed is not an error.
func (s *Server) ListenAndServe() error {
	if err := s.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
