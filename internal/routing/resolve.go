// internal/routing/resolve.go
//
// Entity resolution.
//
// Resolve turns an Intent into a Resolution by scanning the snapshot.  The
// scan is linear and returns the first match in collection order; write-time
// checks in the admin API keep slugs unique, so the tie-break only matters
// for rows inserted behind the storefront's back.

package routing

import (
	"strings"

	"github.com/yanizio/productpraat/internal/catalog"
	"github.com/yanizio/productpraat/internal/metrics"
	"github.com/yanizio/productpraat/internal/slug"
)

// Outcome classifies a resolution.
type Outcome int

const (
	// OutcomeUnmatched means the path matched no shape.
	OutcomeUnmatched Outcome = iota
	// OutcomeStatic means the intent needs no entity lookup.
	OutcomeStatic
	// OutcomeFound means the named entity exists.
	OutcomeFound
	// OutcomeNotFound means the shape matched but no entity did.
	OutcomeNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStatic:
		return "static"
	case OutcomeFound:
		return "found"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "unmatched"
	}
}

// Resolution is the outcome of resolving one Intent.
type Resolution struct {
	Intent   Intent
	Outcome  Outcome
	Product  *catalog.Product
	Article  *catalog.Article
	Category *catalog.Category
}

// Resolve locates the entity named by in.
func Resolve(in Intent, snap *catalog.Snapshot) Resolution {
	res := resolve(in, snap)
	metrics.RouteResolutionsTotal.WithLabelValues(in.Kind.String(), res.Outcome.String()).Inc()
	return res
}

func resolve(in Intent, snap *catalog.Snapshot) Resolution {
	res := Resolution{Intent: in, Outcome: OutcomeStatic}
	if !in.Matched() {
		res.Outcome = OutcomeUnmatched
		return res
	}
	if in.NeedsEntity() {
		res.Outcome = OutcomeNotFound
	}

	switch in.Kind {
	case KindProduct:
		if p := FindProduct(snap, in.Category, in.Slug); p != nil {
			res.Outcome = OutcomeFound
			res.Product = p
			if c, ok := catalog.LookupCategory(p.Category); ok {
				res.Category = &c
			}
		}

	case KindArticle:
		if a := FindArticle(snap, in.Slug); a != nil {
			res.Outcome = OutcomeFound
			res.Article = a
		}

	case KindCategory:
		if c, ok := catalog.LookupCategory(in.Category); ok {
			res.Category = &c
		}
	}
	return res
}

// FindProduct returns the first product filed under category whose
// effective slug equals slugValue, ignoring case.
func FindProduct(snap *catalog.Snapshot, category, slugValue string) *catalog.Product {
	for i := range snap.Products {
		p := &snap.Products[i]
		if strings.EqualFold(p.Category, category) && slug.Equal(p.EffectiveSlug(), slugValue) {
			cp := *p
			return &cp
		}
	}
	return nil
}

// FindArticle returns the first article whose effective slug equals
// slugValue, ignoring case.
func FindArticle(snap *catalog.Snapshot, slugValue string) *catalog.Article {
	for i := range snap.Articles {
		a := &snap.Articles[i]
		if slug.Equal(a.EffectiveSlug(), slugValue) {
			cp := *a
			return &cp
		}
	}
	return nil
}
