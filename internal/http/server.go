// Package http exposes the JSON API: ledger CRUD, derived summaries, the
// advice endpoint and the optimization endpoint.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"wealthtrack/internal/cache"
	"wealthtrack/internal/export"
	"wealthtrack/internal/ledger"
	"wealthtrack/internal/log"
	"wealthtrack/internal/optimizer"
)

type Server struct {
	http.Server
	ledger        *ledger.Ledger
	engine        *optimizer.Engine
	exporter      export.TransactionExporter
	logger        *log.Logger
	adviceTimeout time.Duration
	rateLimiter   *rateLimiter

	// LRU cache for advice responses keyed by request body digest.
	adviceCache *cache.LRUCache[adviceResponse]
	cacheMgr    *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and caches, returning a ready-to-run server.
// exporter may be nil when no export target is configured.
func NewServer(addr string, led *ledger.Ledger, engine *optimizer.Engine, exporter export.TransactionExporter, adviceTimeout time.Duration, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		ledger:        led,
		engine:        engine,
		exporter:      exporter,
		logger:        logger.WithComponent(log.ComponentHTTP),
		adviceTimeout: adviceTimeout,
		rateLimiter:   newRateLimiter(),
		adviceCache:   cache.NewLRUCache[adviceResponse](100, 5*time.Minute),
		cacheMgr:      cache.NewManager(),
	}

	s.cacheMgr.Register(s.adviceCache)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/financial-advice", s.withSecurityHeaders(s.handleFinancialAdvice))
	mux.HandleFunc("POST /api/optimize", s.withSecurityHeaders(s.handleOptimize))

	mux.HandleFunc("GET /api/transactions", s.withSecurityHeaders(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.withSecurityHeaders(s.handleCreateTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withSecurityHeaders(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withSecurityHeaders(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/budgets", s.withSecurityHeaders(s.handleListBudgets))
	mux.HandleFunc("POST /api/budgets", s.withSecurityHeaders(s.handleCreateBudget))
	mux.HandleFunc("PUT /api/budgets/{id}", s.withSecurityHeaders(s.handleUpdateBudget))
	mux.HandleFunc("DELETE /api/budgets/{id}", s.withSecurityHeaders(s.handleDeleteBudget))

	mux.HandleFunc("GET /api/investments", s.withSecurityHeaders(s.handleListInvestments))
	mux.HandleFunc("POST /api/investments", s.withSecurityHeaders(s.handleCreateInvestment))
	mux.HandleFunc("PUT /api/investments/{id}", s.withSecurityHeaders(s.handleUpdateInvestment))
	mux.HandleFunc("DELETE /api/investments/{id}", s.withSecurityHeaders(s.handleDeleteInvestment))

	mux.HandleFunc("GET /api/suggestions", s.withSecurityHeaders(s.handleListSuggestions))
	mux.HandleFunc("POST /api/suggestions/{id}/toggle", s.withSecurityHeaders(s.handleToggleSuggestion))

	mux.HandleFunc("GET /api/summary", s.withSecurityHeaders(s.handleSummary))
	mux.HandleFunc("POST /api/clear", s.withSecurityHeaders(s.handleClear))
	mux.HandleFunc("POST /api/export/sheets", s.withSecurityHeaders(s.handleExportSheets))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheMgr.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		reqLogger := s.logger.With(log.FieldRequestID, requestID)

		reqLogger.InfoContext(r.Context(), "Request started",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// Rate limit mutating requests only.
		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			reqLogger.WarnContext(r.Context(), "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		reqLogger.InfoContext(r.Context(), "Request completed",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, duration.Milliseconds(),
			log.FieldClientIP, clientIP)
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// generateRequestID creates a unique request ID for tracing
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp if random fails
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
