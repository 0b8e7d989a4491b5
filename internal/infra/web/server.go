package web

import (
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"course-payment-service/internal/domain/ports/repository"
	"course-payment-service/internal/infra/metrics"
	red "course-payment-service/internal/infra/redis"
	"course-payment-service/internal/usecase"
)

// Server wires the public verify endpoint and the admin read API.
type Server struct {
	confirmUC usecase.ConfirmUseCase
	records   repository.ConfirmationRepository
	limiter   *red.RateLimiter
	rateLimit int
	rateWin   time.Duration
	auth      *AuthManager
	log       *zerolog.Logger
}

func NewServer(
	confirmUC usecase.ConfirmUseCase,
	records repository.ConfirmationRepository,
	limiter *red.RateLimiter,
	rateLimit int,
	rateWindow time.Duration,
	auth *AuthManager,
	logger *zerolog.Logger,
) *Server {
	compLog := logger.With().Str("component", "WebServer").Logger()
	return &Server{
		confirmUC: confirmUC,
		records:   records,
		limiter:   limiter,
		rateLimit: rateLimit,
		rateWin:   rateWindow,
		auth:      auth,
		log:       &compLog,
	}
}

// Routes builds the router. The verify endpoint answers any non-POST verb
// with 405 before the body is touched.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/payment", func(r chi.Router) {
		r.MethodNotAllowed(methodNotAllowedHandler)
		r.With(s.rateLimitMiddleware).Post("/verify", s.verifyHandler())
	})

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Post("/login", s.loginHandler())
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)
			r.Get("/confirmations", confirmationsListHandler(s.records))
			r.Get("/stats", statsHandler(s.records))
		})
	})

	return r
}

func methodNotAllowedHandler(w http.ResponseWriter, _ *http.Request) {
	metrics.PaymentVerifyRequests.WithLabelValues("fail", "method_not_allowed").Inc()
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"message": "Only POST requests allowed",
	})
}

// rateLimitMiddleware applies a fixed window per client IP. Redis being down
// fails open: abuse control must not take payments with it.
func (s *Server) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil || s.rateLimit <= 0 {
			next.ServeHTTP(w, r)
			return
		}
		ok, err := s.limiter.Allow(r.Context(), red.ClientKey(clientIP(r.RemoteAddr)), s.rateLimit, s.rateWin)
		if err != nil {
			s.log.Warn().Err(err).Msg("rate limiter unavailable; allowing request")
			next.ServeHTTP(w, r)
			return
		}
		if !ok {
			metrics.PaymentVerifyRequests.WithLabelValues("fail", "rate_limited").Inc()
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "Too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr on direct connections so every
// connection from one host shares a window. middleware.RealIP has already
// replaced RemoteAddr with the bare header value for proxied requests.
func clientIP(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}

// authMiddleware guards the admin API with a session JWT.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.auth == nil {
			s.log.Error().Msg("admin auth is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		if _, err := s.auth.ParseFromRequest(r); err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
