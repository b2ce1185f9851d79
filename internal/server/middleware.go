package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const (
	contextKeyUserID   contextKey = "user_id"
	contextKeyUsername contextKey = "username"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Service) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": time.Since(started).Milliseconds(),
		}).Info("http request")
	})
}

func (s *Service) MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		s.requests.WithLabelValues(r.Method, metricsPath(r.URL.Path), strconv.Itoa(rw.statusCode)).Inc()
	})
}

// metricsPath collapses per-record segments so the counter stays at route
// cardinality.
func metricsPath(path string) string {
	for _, prefix := range []string{"/document/", "/edit_document/", "/delete_document/"} {
		if strings.HasPrefix(path, prefix) {
			return prefix + ":id"
		}
	}
	for _, prefix := range []string{"/download/", "/uploads/"} {
		if strings.HasPrefix(path, prefix) {
			return prefix + ":filename"
		}
	}
	return path
}

// RequireAuth decodes the session cookie into the request context and sends
// anonymous requests to the login page.
func (s *Service) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.sessionFromRequest(r)
		if err != nil {
			s.logger.WithError(err).Debug("no valid session cookie")

			s.setRedirectCookie(w, r.URL.Path, time.Minute*5)

			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, contextKeyUserID, session.UserID)
		ctx = context.WithValue(ctx, contextKeyUsername, session.Username)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Service) userIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(contextKeyUserID).(int64)
	if !ok {
		return 0, errNoSessionInContext
	}
	return userID, nil
}

func (s *Service) usernameFromContext(ctx context.Context) string {
	username, _ := ctx.Value(contextKeyUsername).(string)
	return username
}
