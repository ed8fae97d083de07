// internal/auth/middleware.go
//
// HTTP middleware for admin routes.
//
//   • Attach         – resolves the session cookie, if any, into the context.
//   • RequireSession – 401 unless Attach found a live session.
//   • RequireCSRF    – 403 on unsafe methods without a valid X-CSRF-Token.

package auth

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/productpraat/internal/session"
)

// Resolver turns a session token into a live session.  *Sessions
// satisfies it.
type Resolver interface {
	Lookup(ctx context.Context, token string) (Session, error)
}

// Attach looks up the session token from cookie and stores the user in the
// request context.  Requests without a valid session pass through
// anonymously.
func Attach(s Resolver, cookie session.Cookie) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := cookie.Token(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			sess, err := s.Lookup(r.Context(), token)
			switch {
			case err == nil:
				r = r.WithContext(WithUser(r.Context(), sess.User))
			case errors.Is(err, ErrNoSession):
				cookie.Clear(w)
			default:
				zap.L().Error("session lookup failed", zap.Error(err))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSession rejects anonymous requests with 401.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFrom(r.Context()); !ok {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCSRF rejects unsafe requests that lack a valid token.
func RequireCSRF(c *CSRF) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
			default:
				if !c.Verify(r.Header.Get(CSRFHeader)) {
					http.Error(w, "invalid csrf token", http.StatusForbidden)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
