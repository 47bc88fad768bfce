package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"alertsmis/pkg/types"

	"github.com/sirupsen/logrus"
)

// Context key types to avoid collisions
type contextKey string

const contextKeyCaller contextKey = "caller"

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

// LoadCaller decodes the session cookie, if any, and puts the caller in the
// request context. A missing or tampered cookie leaves the request anonymous.
func (s *Service) LoadCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(s.config.CookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		var caller types.Caller
		if err := s.cookie.Decode(s.config.CookieName, cookie.Value, &caller); err != nil {
			s.logger.WithError(err).Debug("ignoring undecodable session cookie")
			next.ServeHTTP(w, r)
			return
		}

		if caller.UserType == "" {
			caller.UserType = types.UserTypeNational
		}

		ctx := context.WithValue(r.Context(), contextKeyCaller, &caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Service) RequireCaller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if callerFromContext(r.Context()) == nil {
			s.writeJSON(w, http.StatusUnauthorized, errorResponse{Success: false, Error: "session required"})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func callerFromContext(ctx context.Context) *types.Caller {
	caller, _ := ctx.Value(contextKeyCaller).(*types.Caller)
	return caller
}

func (s *Service) StripTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		// Only strip if path is not root and has trailing slash
		if path != "/" && strings.HasSuffix(path, "/") {
			newURL := *r.URL
			newURL.Path = strings.TrimSuffix(path, "/")

			// Preserve query string
			http.Redirect(w, r, newURL.String(), http.StatusMovedPermanently)
			return
		}

		next.ServeHTTP(w, r)
	})
}
