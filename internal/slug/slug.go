// internal/slug/slug.go
//
// Slug derivation for products and articles.
//
// Context
// -------
// A slug is the URL-safe token that names a product or article inside a
// path such as /shop/wasmachines/bosch-serie-6-wat28400.  The same function
// runs when links are synthesized and when an incoming path is resolved, so
// it must be pure and deterministic.
//
// Rules (Make)
// ------------
//  1. Join the parts with one space (brand + model, or a title).
//  2. NFD-normalise and drop combining marks, so "Crème" becomes "creme".
//  3. Lower-case everything.
//  4. Convert any run of non-[a-z0-9] characters to one "-".
//  5. Trim leading and trailing "-".
//  6. Cap at MaxLen bytes; a trailing "-" left by the cut is trimmed.
//
// Make is idempotent: Make(Make(x)) == Make(x).
//
// Notes
// -----
// • Characters without an ASCII decomposition (ß, ø, emoji) become "-".
// • Oxford commas, two spaces after periods.

package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLen bounds every derived slug.
const MaxLen = 100

// Make converts parts → lower-kebab ASCII.  Empty parts are skipped.
func Make(parts ...string) string {
	joined := strings.Join(nonEmpty(parts), " ")
	if joined == "" {
		return ""
	}

	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, transform.RemoveFunc(isMark), norm.NFC), joined)
	if err != nil {
		stripped = joined
	}

	var b strings.Builder
	b.Grow(len(stripped))

	lastWasDash := false
	for _, r := range strings.ToLower(stripped) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasDash = false
		default:
			if !lastWasDash {
				b.WriteByte('-')
				lastWasDash = true
			}
		}
	}

	s := strings.Trim(b.String(), "-")
	if len(s) > MaxLen {
		s = strings.TrimRight(s[:MaxLen], "-")
	}
	return s
}

// Valid reports whether s is already in canonical form.
func Valid(s string) bool {
	return s != "" && Make(s) == s
}

// Equal compares two slugs the way the resolver does: case-insensitive.
func Equal(a, b string) bool {
	return strings.EqualFold(a, b)
}

func isMark(r rune) bool { return unicode.Is(unicode.Mn, r) }

func nonEmpty(parts []string) []string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
