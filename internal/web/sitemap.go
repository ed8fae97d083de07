// internal/web/sitemap.go
//
// /sitemap.xml lists every indexable storefront URL.  Paths come from the
// same synthesizer the navigator uses, so the sitemap never advertises a
// URL the router would not resolve.

package web

import (
	"encoding/xml"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/productpraat/internal/catalog"
	"github.com/yanizio/productpraat/internal/routing"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	NS      string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (h *handler) sitemap(w http.ResponseWriter, r *http.Request) {
	snap := h.Catalog.Snapshot()
	if !snap.Loaded {
		w.Header().Set("Retry-After", "2")
		http.Error(w, "loading", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	_, _ = w.Write([]byte(xml.Header))
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(buildSitemap(h.BaseURL, snap)); err != nil {
		zap.L().Warn("encode sitemap", zap.Error(err))
	}
}

func buildSitemap(base string, snap *catalog.Snapshot) urlset {
	set := urlset{NS: sitemapNS}
	add := func(path string, mod time.Time) {
		u := sitemapURL{Loc: routing.Canonical(base, path)}
		if !mod.IsZero() {
			u.LastMod = mod.UTC().Format("2006-01-02")
		}
		set.URLs = append(set.URLs, u)
	}

	for _, p := range []string{"/", routing.ArticlesPath(), "/about", "/contact"} {
		add(p, time.Time{})
	}
	for _, c := range catalog.Categories() {
		add(routing.CategoryPath(c.Key), time.Time{})
	}
	for i := range snap.Products {
		add(routing.ProductPath(&snap.Products[i]), snap.Products[i].UpdatedAt)
	}
	for i := range snap.Articles {
		add(routing.ArticlePath(&snap.Articles[i]), snap.Articles[i].UpdatedAt)
	}
	return set
}
