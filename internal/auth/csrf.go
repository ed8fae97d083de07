// internal/auth/csrf.go
//
// Stateless CSRF tokens for admin mutations.
//
// Context
//   The admin client fetches a token from GET /api/csrf and echoes it in
//   the X-CSRF-Token header on every POST and DELETE.  The token is:
//
//      base64url( nonce | unixMicro | HMAC_SHA256(key, nonce+unixMicro) )
//
//   •  nonce – 16 random bytes.
//   •  unixMicro – issue time, 8 bytes, big-endian.
//   •  HMAC – keyed with csrf.key from config.
//
//   Validation checks the signature and that the timestamp is within
//   MaxAge.  No server-side state, so any instance can verify any token.
//
//------------------------------------------------------------------------------

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"time"

	"go.uber.org/zap"
)

const (
	csrfBytes = 16 + 8 + sha256.Size // nonce + ts + sig

	// CSRFHeader carries the token on mutating requests.
	CSRFHeader = "X-CSRF-Token"
)

// CSRF issues and verifies tokens.
type CSRF struct {
	key    []byte
	maxAge time.Duration
	now    func() time.Time
}

// NewCSRF returns a CSRF keyed with the base64url-encoded key.  A missing
// or short key is replaced by a random one, which invalidates tokens on
// restart.
func NewCSRF(encodedKey string, maxAge time.Duration) *CSRF {
	if maxAge <= 0 {
		maxAge = 2 * time.Hour
	}
	key, err := base64.RawURLEncoding.DecodeString(encodedKey)
	if err != nil || len(key) < 32 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
		zap.L().Warn("csrf.key not set or too short; using an ephemeral key")
	}
	return &CSRF{key: key, maxAge: maxAge, now: time.Now}
}

// Generate creates a new token.
func (c *CSRF) Generate() (string, error) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(c.now().UnixMicro()))

	buf := make([]byte, 0, csrfBytes)
	buf = append(buf, nonce...)
	buf = append(buf, ts...)
	buf = append(buf, c.sign(nonce, ts)...)
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Verify reports whether tok passes the HMAC and age checks.
func (c *CSRF) Verify(tok string) bool {
	raw, err := base64.RawURLEncoding.DecodeString(tok)
	if err != nil || len(raw) != csrfBytes {
		return false
	}
	nonce, ts, sig := raw[:16], raw[16:24], raw[24:]

	issued := time.UnixMicro(int64(binary.BigEndian.Uint64(ts)))
	now := c.now()
	if now.Sub(issued) > c.maxAge || issued.Sub(now) > time.Minute {
		// Expired, or issued in the future beyond clock skew.
		return false
	}
	return hmac.Equal(sig, c.sign(nonce, ts))
}

func (c *CSRF) sign(nonce, ts []byte) []byte {
	mac := hmac.New(sha256.New, c.key)
	mac.Write(nonce)
	mac.Write(ts)
	return mac.Sum(nil)
}
