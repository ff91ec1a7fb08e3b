package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/seaportal/apiserver/internal/session"
	"github.com/seaportal/apiserver/types"
)

// RequestLogger logs one line per request at info level.
func RequestLogger(log *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Infow("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
				"size", ww.BytesWritten(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// SessionAuth resolves the request's session token, if any, and stores the
// session in the request context. Requests without a valid session pass
// through unchanged.
type SessionAuth struct {
	sessions   *session.Manager
	cookieName string
	log        *zap.SugaredLogger
}

func NewSessionAuth(sessions *session.Manager, cookieName string, log *zap.SugaredLogger) *SessionAuth {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &SessionAuth{sessions: sessions, cookieName: cookieName, log: log}
}

func (a *SessionAuth) Load(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := requestToken(r, a.cookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		sess, err := a.sessions.Resolve(r.Context(), token)
		if err != nil {
			if errors.Is(err, session.ErrRedisUnavailable) {
				a.log.Errorw("session lookup failed", "error", err)
				writeError(w, http.StatusInternalServerError, "failed to load session")
				return
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
	})
}

// RequireAdmin allows only sessions whose role is SUPERADMIN.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := sessionFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		if sess.User.Role != types.RoleSuperAdmin {
			writeError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
