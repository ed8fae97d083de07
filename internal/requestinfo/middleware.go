// internal/requestinfo/middleware.go
//
// HTTP middleware that enriches each request with *Info.
//
/*
Context
--------
This handler sits right after request logging and before the storefront
router.  For every request it:

  1. Parses the User-Agent header.
  2. Extracts the left-most client IP from X-Forwarded-For or X-Real-IP,
     falling back to `r.RemoteAddr`.
  3. Performs a GeoLite2 country lookup when a database is configured.
  4. Stores an `*Info` value in `request.Context`.

Notes
-----
  • All look-ups are read-only, so the middleware is safe under heavy
    concurrency.
  • Oxford commas, two spaces after periods.  No em dash.
*/
package requestinfo

import (
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

/*──────────────────────────── middleware ───────────────────────────────────*/

// Middleware wraps an http.Handler, attaches *Info, and forwards.
func (e *Enricher) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := ClientIP(r)
		info := &Info{
			UA:        ParseUA(r.UserAgent()),
			IP:        ip,
			Country:   e.country(ip),
			Timestamp: time.Now().UTC(),
		}

		if ce := zap.L().Check(zap.DebugLevel, "request info"); ce != nil {
			ce.Write(
				zap.Stringer("ip", ip),
				zap.String("country", info.Country),
				zap.String("browser", info.UA.Browser),
				zap.String("device", info.UA.Device),
				zap.Bool("bot", info.UA.IsBot),
				zap.String("path", r.URL.Path),
			)
		}

		next.ServeHTTP(w, r.WithContext(WithInfo(r.Context(), info)))
	})
}

/*──────────────────────────── client IP helper ─────────────────────────────*/

// ClientIP extracts the left-most address from X-Forwarded-For or
// X-Real-IP, falling back to r.RemoteAddr ("ip:port").
func ClientIP(r *http.Request) net.IP {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for _, part := range strings.Split(xff, ",") {
			if ip := net.ParseIP(strings.TrimSpace(part)); ip != nil {
				return ip
			}
		}
	}
	if xrip := r.Header.Get("X-Real-Ip"); xrip != "" {
		if ip := net.ParseIP(strings.TrimSpace(xrip)); ip != nil {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return net.ParseIP(host)
	}
	return nil
}
