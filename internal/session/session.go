// internal/session/session.go
//
// Session cookie helpers.
//
// Context
//   The cookie carries only an opaque token; the sessions table behind
//   internal/auth maps it to a user and an expiry.  Nothing sensitive is
//   stored client-side, so the value needs no encryption or signing.
//
// Style
//   Two-space sentence spacing, Oxford comma, terse inline notes.
//
//------------------------------------------------------------------------------

package session

import (
	"net/http"
	"time"
)

// DefaultCookie is used when config leaves the cookie name empty.
const DefaultCookie = "pp_session"

// Cookie names and ages the session cookie.
type Cookie struct {
	Name string
	TTL  time.Duration
}

func (c Cookie) name() string {
	if c.Name == "" {
		return DefaultCookie
	}
	return c.Name
}

// Set writes the session cookie for token.
func (c Cookie) Set(w http.ResponseWriter, r *http.Request, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(c.TTL / time.Second),
	})
}

// Clear expires the session cookie.
func (c Cookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

// Token returns the token stored in the cookie, if any.
//
// ok == false when the cookie is missing or empty.
func (c Cookie) Token(r *http.Request) (token string, ok bool) {
	ck, err := r.Cookie(c.name())
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}
