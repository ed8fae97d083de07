// internal/catalog/snapshot.go
//
// Immutable in-memory view of the catalog.
//
// Context
// -------
// A Snapshot holds the full product, article, and review collections as
// fetched from the backend.  Readers never lock: the Catalog swaps whole
// snapshots through an atomic pointer, and every With*/Without* helper
// returns a fresh copy.  Collection order is the backend order, which is
// also the tie-break order when two entities share a slug.
//
// Notes
// -----
// • Loaded is false only for the zero snapshot installed before the first
//   load attempt finishes.  A failed load installs an empty, loaded snapshot.
// • Version increases on every swap so caches can key on it.

package catalog

import (
	"slices"
	"strings"

	"github.com/yanizio/productpraat/internal/slug"
)

// Snapshot is one consistent version of the catalog.
type Snapshot struct {
	Loaded   bool
	Version  uint64
	Products []Product
	Articles []Article
	Reviews  map[string][]Review // keyed by product id
}

// ProductByID returns the product with id.
func (s *Snapshot) ProductByID(id string) (Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// ArticleByID returns the article with id.
func (s *Snapshot) ArticleByID(id string) (Article, bool) {
	for _, a := range s.Articles {
		if a.ID == id {
			return a, true
		}
	}
	return Article{}, false
}

// InCategory returns the products filed under key, in collection order.
func (s *Snapshot) InCategory(key string) []Product {
	var out []Product
	for _, p := range s.Products {
		if strings.EqualFold(p.Category, key) {
			out = append(out, p)
		}
	}
	return out
}

// ReviewsFor returns the reviews attached to a product.
func (s *Snapshot) ReviewsFor(productID string) []Review {
	return s.Reviews[productID]
}

//
// write-time uniqueness
//

// ProductSlugTaken reports whether another product (id != exceptID) already
// resolves to /shop/{category}/{slug}.
func (s *Snapshot) ProductSlugTaken(category, slugValue, exceptID string) bool {
	for i := range s.Products {
		p := &s.Products[i]
		if p.ID == exceptID {
			continue
		}
		if strings.EqualFold(p.Category, category) && slug.Equal(p.EffectiveSlug(), slugValue) {
			return true
		}
	}
	return false
}

// ArticleSlugTaken reports whether another article already resolves to
// /artikelen/{slug}.
func (s *Snapshot) ArticleSlugTaken(slugValue, exceptID string) bool {
	for i := range s.Articles {
		a := &s.Articles[i]
		if a.ID != exceptID && slug.Equal(a.EffectiveSlug(), slugValue) {
			return true
		}
	}
	return false
}

//
// copy-on-write helpers
//

func (s *Snapshot) clone() *Snapshot {
	out := &Snapshot{
		Loaded:   s.Loaded,
		Version:  s.Version + 1,
		Products: slices.Clone(s.Products),
		Articles: slices.Clone(s.Articles),
		Reviews:  make(map[string][]Review, len(s.Reviews)),
	}
	for k, v := range s.Reviews {
		out.Reviews[k] = v
	}
	return out
}

// WithProduct returns a copy with p inserted or replaced (matched by id).
func (s *Snapshot) WithProduct(p Product) *Snapshot {
	out := s.clone()
	if i := slices.IndexFunc(out.Products, func(x Product) bool { return x.ID == p.ID }); i >= 0 {
		out.Products[i] = p
	} else {
		out.Products = append(out.Products, p)
	}
	return out
}

// WithoutProduct returns a copy with the product and its reviews removed.
func (s *Snapshot) WithoutProduct(id string) *Snapshot {
	out := s.clone()
	out.Products = slices.DeleteFunc(out.Products, func(x Product) bool { return x.ID == id })
	delete(out.Reviews, id)
	return out
}

// WithArticle returns a copy with a inserted or replaced (matched by id).
func (s *Snapshot) WithArticle(a Article) *Snapshot {
	out := s.clone()
	if i := slices.IndexFunc(out.Articles, func(x Article) bool { return x.ID == a.ID }); i >= 0 {
		out.Articles[i] = a
	} else {
		out.Articles = append(out.Articles, a)
	}
	return out
}

// WithoutArticle returns a copy with the article removed.
func (s *Snapshot) WithoutArticle(id string) *Snapshot {
	out := s.clone()
	out.Articles = slices.DeleteFunc(out.Articles, func(x Article) bool { return x.ID == id })
	return out
}

// WithReview returns a copy with r appended to its product's reviews, or
// replacing the review with the same id.
func (s *Snapshot) WithReview(r Review) *Snapshot {
	out := s.clone()
	list := slices.Clone(out.Reviews[r.ProductID])
	if i := slices.IndexFunc(list, func(x Review) bool { return x.ID == r.ID }); i >= 0 {
		list[i] = r
	} else {
		list = append(list, r)
	}
	out.Reviews[r.ProductID] = list
	return out
}
