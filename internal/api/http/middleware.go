package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"zcc-wallet-backend/internal/config"
	"zcc-wallet-backend/internal/domain"
	"zcc-wallet-backend/internal/logger"
	"zcc-wallet-backend/internal/security"
)

const webhookKeyHeader = "X-Webhook-Key"

// AuthMiddleware enforces the security level configured for each route.
type AuthMiddleware struct {
	tokenManager security.TokenManager
	webhook      *security.WebhookVerifier
}

func NewAuthMiddleware(tm security.TokenManager, webhook *security.WebhookVerifier) *AuthMiddleware {
	return &AuthMiddleware{tokenManager: tm, webhook: webhook}
}

func routeKey(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return r.Method + " " + tpl
		}
	}
	return r.Method + " " + r.URL.Path
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch config.GetSecurityLevel(routeKey(r)) {
		case config.SecurityPublic:
			next.ServeHTTP(w, r)

		case config.SecurityWebhook:
			if err := m.webhook.Verify(r.Header.Get(webhookKeyHeader)); err != nil {
				logger.Warn("Rejected payment webhook call", "remote", r.RemoteAddr, "error", err)
				writeError(w, domain.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)

		default:
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, domain.ErrUnauthorized)
				return
			}
			claims, err := m.tokenManager.ValidateToken(token)
			if err != nil {
				writeError(w, domain.ErrUnauthorized)
				return
			}
			if claims.Type != security.TokenTypeAccess {
				writeError(w, domain.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), claims)))
		}
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return h[7:], true
	}
	return "", false
}

// LoggingMiddleware logs one line per request.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("HTTP request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
