// internal/filter/filter.go
//
// Listing filters for category and article overview pages.
//
// Context
// -------
// Every function here is pure: it takes a slice from the current snapshot
// and returns a new slice.  The input is never reordered, so callers can
// hand in snapshot collections directly.
//
// Notes
// -----
// • Sort keys are "score" (default, best first), "price-asc", "price-desc",
//   and "name".  Unknown keys fall back to score.
// • A zero MinPrice, MaxPrice, or MinScore disables that bound.
// • Sorting is stable, so ties keep collection order.

package filter

import (
	"cmp"
	"slices"
	"strings"

	"github.com/yanizio/productpraat/internal/catalog"
)

// Sort keys accepted by Query.Sort.
const (
	SortScore     = "score"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
	SortName      = "name"
)

// Query narrows a product listing.
type Query struct {
	Category string
	MinScore float64
	MinPrice float64
	MaxPrice float64
	Sort     string
}

// Products applies q to list.
func Products(list []catalog.Product, q Query) []catalog.Product {
	out := make([]catalog.Product, 0, len(list))
	for _, p := range list {
		if q.Category != "" && !strings.EqualFold(p.Category, q.Category) {
			continue
		}
		if q.MinScore > 0 && p.Score < q.MinScore {
			continue
		}
		if q.MinPrice > 0 && p.Price < q.MinPrice {
			continue
		}
		if q.MaxPrice > 0 && p.Price > q.MaxPrice {
			continue
		}
		out = append(out, p)
	}

	switch q.Sort {
	case SortPriceAsc:
		slices.SortStableFunc(out, func(a, b catalog.Product) int { return cmp.Compare(a.Price, b.Price) })
	case SortPriceDesc:
		slices.SortStableFunc(out, func(a, b catalog.Product) int { return cmp.Compare(b.Price, a.Price) })
	case SortName:
		slices.SortStableFunc(out, func(a, b catalog.Product) int {
			return cmp.Compare(strings.ToLower(a.Name()), strings.ToLower(b.Name()))
		})
	default:
		slices.SortStableFunc(out, func(a, b catalog.Product) int { return cmp.Compare(b.Score, a.Score) })
	}
	return out
}

// ArticleQuery narrows an article listing.
type ArticleQuery struct {
	Category string
	Type     catalog.ArticleType
}

// Articles applies q to list, newest update first.
func Articles(list []catalog.Article, q ArticleQuery) []catalog.Article {
	out := make([]catalog.Article, 0, len(list))
	for _, a := range list {
		if q.Category != "" && !strings.EqualFold(a.Category, q.Category) {
			continue
		}
		if q.Type != "" && a.Type != q.Type {
			continue
		}
		out = append(out, a)
	}
	slices.SortStableFunc(out, func(a, b catalog.Article) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	return out
}
