// internal/catalog/catalog.go
//
// Catalog holder and loader.
//
// Context
// -------
// The storefront fetches the complete product, article, and review
// collections once at startup and serves every request from memory.  Load
// runs behind a singleflight barrier so a startup load, an admin "reload",
// and any concurrent caller share one backend round-trip.
//
// Workflow
// --------
//  1. New installs an unloaded, empty snapshot.  Ready() is false.
//  2. Load(ctx) fetches all collections through Source.  The ctx is tied to
//     process (or request) lifetime, so shutdown aborts an in-flight fetch.
//  3. On success the fresh snapshot is swapped in; on failure the error is
//     logged and an empty, loaded snapshot is installed.  No retry.
//  4. Admin writes call Update with a copy-on-write mutation.  Writes that
//     land while a load is fetching are journaled and replayed onto the
//     fetched snapshot before it is installed, so a reload never drops a
//     write the backend has already accepted.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package catalog

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/productpraat/internal/metrics"
)

// Source is the read side of the backend.  *store.Store satisfies it.
type Source interface {
	ListProducts(ctx context.Context) ([]Product, error)
	ListArticles(ctx context.Context) ([]Article, error)
	ListReviews(ctx context.Context) ([]Review, error)
}

// Catalog owns the current Snapshot.  Zero value is unusable; call New.
type Catalog struct {
	src Source
	sfg singleflight.Group

	mu      sync.Mutex // serialises installs; guards loading and journal
	loading bool
	journal []func(*Snapshot) *Snapshot

	current atomic.Pointer[Snapshot]
}

// New returns a Catalog holding an unloaded, empty snapshot.
func New(src Source) *Catalog {
	c := &Catalog{src: src}
	c.current.Store(&Snapshot{Reviews: map[string][]Review{}})
	return c
}

// Snapshot returns the current snapshot.  Never nil.
func (c *Catalog) Snapshot() *Snapshot { return c.current.Load() }

// Ready reports whether the first load attempt has finished.
func (c *Catalog) Ready() bool { return c.current.Load().Loaded }

// Load fetches every collection and installs the result.  The returned
// error is informational; the catalog is Ready afterwards either way.  A
// failed first load installs an empty snapshot; a failed reload keeps the
// previous one.
func (c *Catalog) Load(ctx context.Context) error {
	_, err, shared := c.sfg.Do("load", func() (any, error) {
		c.mu.Lock()
		c.loading, c.journal = true, nil
		c.mu.Unlock()

		snap, err := c.fetch(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		journal := c.journal
		c.loading, c.journal = false, nil

		if err != nil {
			metrics.CatalogLoadErrorsTotal.Inc()
			if c.Ready() {
				zap.L().Error("catalog reload failed; keeping previous snapshot", zap.Error(err))
				return nil, err
			}
			zap.L().Error("catalog load failed; serving empty catalog", zap.Error(err))
			c.swap(replay(&Snapshot{Loaded: true, Reviews: map[string][]Review{}}, journal))
			return nil, err
		}
		snap = replay(snap, journal)
		c.swap(snap)
		metrics.CatalogLoadTotal.Inc()
		zap.L().Info("catalog loaded",
			zap.Int("products", len(snap.Products)),
			zap.Int("articles", len(snap.Articles)),
			zap.Int("replayed", len(journal)))
		return nil, nil
	})
	if shared {
		zap.L().Debug("catalog load shared with concurrent caller")
	}
	return err
}

func (c *Catalog) fetch(ctx context.Context) (*Snapshot, error) {
	products, err := c.src.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	articles, err := c.src.ListArticles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	reviews, err := c.src.ListReviews(ctx)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	byProduct := make(map[string][]Review, len(products))
	for _, r := range reviews {
		byProduct[r.ProductID] = append(byProduct[r.ProductID], r)
	}
	return &Snapshot{
		Loaded:   true,
		Products: products,
		Articles: articles,
		Reviews:  byProduct,
	}, nil
}

// Update applies fn to the current snapshot and installs the result.  fn
// is replayed onto the next loaded snapshot when a load is in flight, so it
// must be pure and idempotent.
func (c *Catalog) Update(fn func(*Snapshot) *Snapshot) *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading {
		c.journal = append(c.journal, fn)
	}
	next := fn(c.current.Load())
	c.current.Store(next)
	c.observe(next)
	return next
}

func replay(s *Snapshot, journal []func(*Snapshot) *Snapshot) *Snapshot {
	for _, fn := range journal {
		s = fn(s)
	}
	return s
}

// swap installs s.  Callers hold c.mu.
func (c *Catalog) swap(s *Snapshot) {
	s.Version = c.current.Load().Version + 1
	c.current.Store(s)
	c.observe(s)
}

func (c *Catalog) observe(s *Snapshot) {
	metrics.CatalogProducts.Set(float64(len(s.Products)))
	metrics.CatalogArticles.Set(float64(len(s.Articles)))
}
