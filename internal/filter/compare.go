// internal/filter/compare.go

package filter

import (
	"fmt"

	"github.com/yanizio/productpraat/internal/catalog"
)

// MaxCompare caps how many products one comparison shows.
const MaxCompare = 4

// Comparison is the side-by-side view of a handful of products.
type Comparison struct {
	Products  []catalog.Product `json:"products"`
	Cheapest  string            `json:"cheapest,omitempty"`
	BestScore string            `json:"bestScore,omitempty"`
	PriceGap  float64           `json:"priceGap"`
}

// Compare looks up ids in snap, in the order given.  Duplicate ids are
// collapsed; an unknown id yields catalog.ErrNotFound.
func Compare(snap *catalog.Snapshot, ids []string) (Comparison, error) {
	var c Comparison
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		p, ok := snap.ProductByID(id)
		if !ok {
			return Comparison{}, fmt.Errorf("compare %s: %w", id, catalog.ErrNotFound)
		}
		c.Products = append(c.Products, p)
		if len(c.Products) == MaxCompare {
			break
		}
	}
	if len(c.Products) == 0 {
		return c, nil
	}

	lo, hi := -1, -1
	best := 0
	for i, p := range c.Products {
		if p.Score > c.Products[best].Score {
			best = i
		}
		if p.Price <= 0 {
			continue
		}
		if lo < 0 || p.Price < c.Products[lo].Price {
			lo = i
		}
		if hi < 0 || p.Price > c.Products[hi].Price {
			hi = i
		}
	}
	c.BestScore = c.Products[best].ID
	if lo >= 0 {
		c.Cheapest = c.Products[lo].ID
		c.PriceGap = c.Products[hi].Price - c.Products[lo].Price
	}
	return c, nil
}
