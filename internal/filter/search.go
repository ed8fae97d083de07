// internal/filter/search.go
//
// Storefront search.  Queries and haystacks are both folded through the
// slug generator, so "Café" finds "cafe" and "wh 1000" finds "WH-1000XM5".
// Results are cached per snapshot version; a catalog swap makes every
// earlier entry unreachable and the LRU ages it out.

package filter

import (
	"strconv"
	"strings"

	"github.com/yanizio/productpraat/internal/cache"
	"github.com/yanizio/productpraat/internal/catalog"
	"github.com/yanizio/productpraat/internal/slug"
)

// Results holds the matches for one query.
type Results struct {
	Query    string            `json:"query"`
	Products []catalog.Product `json:"products"`
	Articles []catalog.Article `json:"articles"`
}

// Searcher runs cached searches.  Safe for concurrent use.
type Searcher struct {
	cache *cache.LRU[string, Results]
}

// NewSearcher returns a Searcher caching up to size queries.
func NewSearcher(size int) *Searcher {
	return &Searcher{cache: cache.New[string, Results](size)}
}

// Search returns the products and articles matching q.  An empty query
// matches nothing.
func (s *Searcher) Search(snap *catalog.Snapshot, q string) Results {
	needle := slug.Make(q)
	if needle == "" {
		return Results{Query: q}
	}
	key := strconv.FormatUint(snap.Version, 10) + "|" + needle
	if r, ok := s.cache.Get(key); ok {
		r.Query = q
		return r
	}

	r := Results{Query: q}
	for _, p := range snap.Products {
		if strings.Contains(slug.Make(p.Brand, p.Model, p.Category), needle) {
			r.Products = append(r.Products, p)
		}
	}
	for _, a := range snap.Articles {
		if strings.Contains(slug.Make(a.Title), needle) {
			r.Articles = append(r.Articles, a)
		}
	}
	s.cache.Add(key, r)
	return r
}
