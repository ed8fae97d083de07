// internal/routing/match.go
//
// Path classification.
//
// Context
// -------
// Classify maps a request path onto an Intent.  Shapes are tried in a fixed
// order so a bare category pattern never shadows a more specific product or
// article path:
//
//   1. /shop/{category}/{slug}   → KindProduct
//   2. /artikelen                → KindArticles
//   3. /artikelen/{slug}         → KindArticle
//   4. /shop/{category}          → KindCategory (known categories only)
//   5. /, /about, /contact, /admin, /dashboard, /zoeken → static kinds
//   6. anything else             → KindNone
//
// Category and slug segments are matched case-insensitively; the Intent
// carries them lower-cased.  One trailing slash is ignored.
//
// Notes
// -----
// • Classification is purely syntactic.  Whether an entity exists is the
//   resolver's job.
// • Oxford commas, two spaces after periods.

package routing

import (
	"net/url"
	"strings"

	"github.com/yanizio/productpraat/internal/catalog"
)

// Kind enumerates the recognised path shapes.
type Kind int

const (
	KindNone Kind = iota
	KindHome
	KindAbout
	KindContact
	KindAdmin
	KindDashboard
	KindSearch
	KindCategory
	KindProduct
	KindArticles
	KindArticle
)

var kindNames = [...]string{
	KindNone:      "none",
	KindHome:      "home",
	KindAbout:     "about",
	KindContact:   "contact",
	KindAdmin:     "admin",
	KindDashboard: "dashboard",
	KindSearch:    "search",
	KindCategory:  "category",
	KindProduct:   "product",
	KindArticles:  "articles",
	KindArticle:   "article",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Intent is the result of classifying one path.
type Intent struct {
	Kind     Kind
	Category string // KindCategory, KindProduct
	Slug     string // KindProduct, KindArticle
	Query    string // KindSearch
}

// Matched reports whether any shape matched.
func (i Intent) Matched() bool { return i.Kind != KindNone }

// NeedsEntity reports whether the intent names a product or article that
// must be resolved before a view can be chosen.
func (i Intent) NeedsEntity() bool {
	return i.Kind == KindProduct || i.Kind == KindArticle
}

const (
	segShop     = "shop"
	segArticles = "artikelen"
)

var literals = map[string]Kind{
	"/":          KindHome,
	"/about":     KindAbout,
	"/contact":   KindContact,
	"/admin":     KindAdmin,
	"/dashboard": KindDashboard,
	"/zoeken":    KindSearch,
}

// Classify matches path against the known shapes.
func Classify(path string) Intent {
	path = clean(path)
	segs := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for _, s := range segs {
		if s == "" && path != "/" {
			return Intent{}
		}
	}

	switch {
	case len(segs) == 3 && segs[0] == segShop:
		return Intent{
			Kind:     KindProduct,
			Category: strings.ToLower(segs[1]),
			Slug:     strings.ToLower(segs[2]),
		}
	case len(segs) == 1 && segs[0] == segArticles:
		return Intent{Kind: KindArticles}
	case len(segs) == 2 && segs[0] == segArticles:
		return Intent{Kind: KindArticle, Slug: strings.ToLower(segs[1])}
	case len(segs) == 2 && segs[0] == segShop:
		if c, ok := catalog.LookupCategory(segs[1]); ok {
			return Intent{Kind: KindCategory, Category: c.Key}
		}
		return Intent{}
	}

	if k, ok := literals[path]; ok {
		return Intent{Kind: k}
	}
	return Intent{}
}

// ClassifyURL classifies u.Path and, for the search shape, carries the q
// query parameter.
func ClassifyURL(u *url.URL) Intent {
	in := Classify(u.Path)
	if in.Kind == KindSearch {
		in.Query = strings.TrimSpace(u.Query().Get("q"))
	}
	return in
}

// clean guarantees a leading slash and strips one trailing slash.
func clean(p string) string {
	if p == "" || p[0] != '/' {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = p[:len(p)-1]
	}
	return p
}
