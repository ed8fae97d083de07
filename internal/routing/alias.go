// internal/routing/alias.go
//
// Legacy-path redirect cache and middleware.
//
// Context
// -------
// Older storefront builds used paths such as /product/123 or
// /blog/wasmachine-kopen.  Search engines still send traffic there, so the
// `route_alias` table maps each retired path to its canonical replacement
// and the middleware answers with 301 Moved Permanently.
//
// Workflow
// --------
//   1. main constructs AliasCache via routing.NewAliasCache().
//   2. web.NewRouter wires routing.Redirects(cache) early in the chain.
//   3. On a stale cache the middleware reloads from SQL first.  Concurrent
//      requests share one query.  A failed reload keeps serving the previous
//      map and is not retried for aliasRetry.
//   4. Hit → 301 to target (query string preserved).  Miss → next handler.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
// • Max line length 100 columns.

package routing

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	aliasRetry   = 30 * time.Second
	aliasTimeout = 5 * time.Second
)

// -----------------------------------------------------------------------------
// AliasCache
// -----------------------------------------------------------------------------

// AliasCache stores alias→target pairs plus TTL state.  Zero value is
// unusable; construct with NewAliasCache.
type AliasCache struct {
	mu      sync.RWMutex
	data    map[string]string
	refresh time.Time // next reload is due after this instant
	ttl     time.Duration
	db      *sql.DB
	sfg     singleflight.Group
}

// NewAliasCache returns a cache with the specified TTL.  The first request
// triggers the initial load.
func NewAliasCache(db *sql.DB, ttl time.Duration) *AliasCache {
	return &AliasCache{data: map[string]string{}, db: db, ttl: ttl}
}

// Load refreshes all aliases from route_alias.  Concurrent callers share
// one query, which is detached from the first caller's cancellation.
func (c *AliasCache) Load(ctx context.Context) error {
	_, err, _ := c.sfg.Do("load", func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), aliasTimeout)
		defer cancel()

		fresh, err := c.query(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		if err != nil {
			c.refresh = time.Now().Add(min(c.ttl, aliasRetry))
			return nil, err
		}
		c.data = fresh
		c.refresh = time.Now().Add(c.ttl)
		zap.L().Debug("alias cache load", zap.Int("count", len(fresh)))
		return nil, nil
	})
	return err
}

func (c *AliasCache) query(ctx context.Context) (map[string]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT alias_path, target_path FROM route_alias`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fresh := make(map[string]string)
	for rows.Next() {
		var alias, target string
		if err := rows.Scan(&alias, &target); err != nil {
			return nil, err
		}
		fresh[strings.ToLower(clean(alias))] = target
	}
	return fresh, rows.Err()
}

// Lookup returns the redirect target for path, if any.
func (c *AliasCache) Lookup(path string) (string, bool) {
	c.mu.RLock()
	target, ok := c.data[strings.ToLower(clean(path))]
	c.mu.RUnlock()
	return target, ok
}

func (c *AliasCache) needsRefresh() bool {
	c.mu.RLock()
	stale := time.Now().After(c.refresh)
	c.mu.RUnlock()
	return stale
}

// -----------------------------------------------------------------------------
// Middleware factory
// -----------------------------------------------------------------------------

// Redirects returns a Chi middleware that 301-redirects retired paths.
func Redirects(cache *AliasCache) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet && r.Method != http.MethodHead {
				next.ServeHTTP(w, r)
				return
			}

			if cache.needsRefresh() {
				if err := cache.Load(r.Context()); err != nil {
					zap.L().Warn("alias cache reload failed", zap.Error(err))
				}
			}

			target, ok := cache.Lookup(r.URL.Path)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			if r.URL.RawQuery != "" && !strings.Contains(target, "?") {
				target += "?" + r.URL.RawQuery
			}
			zap.L().Debug("alias redirect",
				zap.String("from", r.URL.Path),
				zap.String("to", target))
			http.Redirect(w, r, target, http.StatusMovedPermanently)
		})
	}
}
