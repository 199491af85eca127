package httptransport

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"helix/internal/gateway"
	id "helix/pkg/domain"
	"helix/pkg/domerr"
	"helix/pkg/requestcontext"
)

// RequestID assigns or propagates an X-Request-ID and stamps the
// request-scoped time so every operation in one request shares a single now.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), rid)
		ctx = requestcontext.WithTime(ctx, time.Now())
		w.Header().Set("X-Request-ID", rid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Recovery converts panics into 500s instead of dropped connections.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if logger != nil {
						logger.ErrorContext(r.Context(), "handler panic",
							"path", r.URL.Path,
							"panic", rec,
						)
					}
					writeError(w, domerr.New(domerr.CodeInternal, "internal error"))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger logs one line per request.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			if logger != nil {
				logger.InfoContext(r.Context(), "request",
					"method", r.Method,
					"path", r.URL.Path,
					"duration_ms", time.Since(start).Milliseconds(),
					"request_id", requestcontext.RequestID(r.Context()),
				)
			}
		})
	}
}

// SessionValidator is the slice of the gateway the auth middleware needs.
type SessionValidator interface {
	Validate(tokenString string) (gateway.Session, error)
}

// RequireSession authenticates the bearer session token and, for write
// routes, requires write intent. The authenticated silo id lands in the
// request context for the alert trail.
func RequireSession(sessions SessionValidator, intent id.Intent) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, domerr.New(domerr.CodeInvalidKey, "missing session token"))
				return
			}
			session, err := sessions.Validate(token)
			if err != nil {
				writeError(w, err)
				return
			}
			if intent == id.IntentWrite && session.Intent != id.IntentWrite {
				writeError(w, domerr.New(domerr.CodeWriteNotAuthorized, "session lacks write intent"))
				return
			}
			ctx := requestcontext.WithCallerSilo(r.Context(), session.SiloID.String())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if after, ok := strings.CutPrefix(header, "Bearer "); ok {
		return after
	}
	return ""
}
