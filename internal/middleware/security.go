// internal/middleware/security.go
//
// Security-header middleware.
//
// Injects standard headers on every storefront response:
//
//   • Strict-Transport-Security  –  forces HTTPS (2 years + preload)
//   • Content-Security-Policy   –  self-only, plus partner product images
//   • X-Frame-Options           –  click-jacking defence
//   • X-Content-Type-Options    –  MIME-sniffing defence
//   • Referrer-Policy           –  drops path/query from Referer
//   • Permissions-Policy        –  disables powerful features by default
//
// Notes
// -----
// • Headers are set before next.ServeHTTP; anything written after the
//   first byte is ignored by net/http.  Handlers that need a different
//   value overwrite the default.
// • Oxford commas, two spaces after periods.

package middleware

import "net/http"

const (
	hsts = "max-age=63072000; includeSubDomains; preload"
	csp  = "default-src 'self'; img-src 'self' data: https://media.s-bol.com; " +
		"object-src 'none'; base-uri 'self'; frame-ancestors 'none'"
	xfo   = "DENY"
	nosn  = "nosniff"
	refer = "strict-origin-when-cross-origin"
	perm  = "geolocation=(), microphone=(), camera=()"
)

// Security sets security headers for every response.
func Security(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Strict-Transport-Security", hsts)
		h.Set("Content-Security-Policy", csp)
		h.Set("X-Frame-Options", xfo)
		h.Set("X-Content-Type-Options", nosn)
		h.Set("Referrer-Policy", refer)
		h.Set("Permissions-Policy", perm)
		next.ServeHTTP(w, r)
	})
}
