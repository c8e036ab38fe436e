package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"smartpark/ledger-service/internal/session"
	"smartpark/ledger-service/internal/store"
)

type authContextKey struct{}

type authInfo struct {
	SessionID string
	View      session.View
}

func AuthMiddleware(sessions *session.Manager, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicEndpoint(r) {
			next.ServeHTTP(w, r)
			return
		}
		sessionID := sessionIDFromRequest(r)
		if sessionID == "" {
			writeError(w, requestIDFromRequest(r), http.StatusUnauthorized, "unauthorized", "missing session")
			return
		}
		view, err := sessions.Resolve(sessionID)
		if err != nil {
			if errors.Is(err, store.ErrSessionNotFound) {
				writeError(w, requestIDFromRequest(r), http.StatusUnauthorized, "unauthorized", "invalid session")
				return
			}
			writeError(w, requestIDFromRequest(r), http.StatusInternalServerError, "internal_error", "internal server error")
			return
		}
		ctx := context.WithValue(r.Context(), authContextKey{}, authInfo{SessionID: sessionID, View: view})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func authFromContext(ctx context.Context) (authInfo, bool) {
	value := ctx.Value(authContextKey{})
	if value == nil {
		return authInfo{}, false
	}
	info, ok := value.(authInfo)
	if !ok {
		return authInfo{}, false
	}
	return info, true
}

// requireView returns the caller's view with a resolved scope.
func requireView(w http.ResponseWriter, r *http.Request) (session.View, bool) {
	info, ok := authFromContext(r.Context())
	if !ok {
		writeError(w, requestIDFromRequest(r), http.StatusUnauthorized, "unauthorized", "missing session")
		return session.View{}, false
	}
	if !info.View.Resolved {
		writeLedgerError(w, r, store.ErrNoActiveBranch)
		return session.View{}, false
	}
	return info.View, true
}

func requireAdmin(w http.ResponseWriter, r *http.Request) (session.View, bool) {
	info, ok := authFromContext(r.Context())
	if !ok {
		writeError(w, requestIDFromRequest(r), http.StatusUnauthorized, "unauthorized", "missing session")
		return session.View{}, false
	}
	if !info.View.User.IsAdmin() {
		writeError(w, requestIDFromRequest(r), http.StatusForbidden, "access_denied", "admin role required")
		return session.View{}, false
	}
	return info.View, true
}

func sessionIDFromRequest(r *http.Request) string {
	if token := bearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	return strings.TrimSpace(r.Header.Get("X-Session-ID"))
}

func requestIDFromRequest(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Request-ID"))
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}
	if strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

func isPublicEndpoint(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/metrics":
		return true
	case "/api/session/login":
		return r.Method == http.MethodPost
	default:
		return r.Method == http.MethodOptions
	}
}
