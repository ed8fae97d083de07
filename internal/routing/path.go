// internal/routing/path.go
//
// Canonical path synthesis.
//
// • BuildPath(parent, slug) joins parent path + slug with a single "/" and
//   guarantees exactly one leading slash.
// • ProductPath, ArticlePath, CategoryPath, and SearchPath build the
//   outbound form of every routable view using the same slug derivation the
//   resolver uses, so Resolve(Classify(ProductPath(p))) finds p again.
// • Canonical prefixes a path with the configured public base URL.

package routing

import (
	"net/url"
	"strings"

	"github.com/yanizio/productpraat/internal/catalog"
)

// BuildPath joins parent + slug ensuring exactly one leading slash and no
// duplicate separators.
func BuildPath(parent, slug string) string {
	parent = strings.Trim(parent, "/")
	slug = strings.Trim(slug, "/")

	switch {
	case parent == "" && slug == "":
		return "/"
	case parent == "":
		return "/" + slug
	case slug == "":
		return "/" + parent
	default:
		return "/" + parent + "/" + slug
	}
}

// ProductPath returns /shop/{category}/{slug}.
func ProductPath(p *catalog.Product) string {
	return BuildPath(segShop+"/"+strings.ToLower(p.Category), p.EffectiveSlug())
}

// ArticlePath returns /artikelen/{slug}.
func ArticlePath(a *catalog.Article) string {
	return BuildPath(segArticles, a.EffectiveSlug())
}

// ArticlesPath returns the article overview path.
func ArticlesPath() string { return "/" + segArticles }

// CategoryPath returns /shop/{category}.
func CategoryPath(key string) string {
	return BuildPath(segShop, strings.ToLower(key))
}

// SearchPath returns /zoeken with q encoded; an empty q yields the bare
// search page.
func SearchPath(q string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return "/zoeken"
	}
	return "/zoeken?" + url.Values{"q": {q}}.Encode()
}

// Canonical joins the public base URL and path.
func Canonical(base, path string) string {
	return strings.TrimRight(base, "/") + BuildPath("", path)
}
