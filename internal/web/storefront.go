// internal/web/storefront.go
//
// Catch-all storefront handler.
//
// Workflow
// --------
//  1. Until the first catalog load attempt finishes every path answers 503
//     with Retry-After; no routing decision is made on an empty catalog.
//  2. A per-request Navigator runs the initial classification against one
//     fixed snapshot, so a concurrent reload cannot split the answer.
//  3. The resulting State picks the listing, entity, and head metadata.
//     not-found answers 404; every other view answers 200.
//
// Unmatched paths keep the navigator's current view, which for a fresh
// request is home.

package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/productpraat/internal/affiliate"
	"github.com/yanizio/productpraat/internal/auth"
	"github.com/yanizio/productpraat/internal/catalog"
	"github.com/yanizio/productpraat/internal/filter"
	"github.com/yanizio/productpraat/internal/head"
	"github.com/yanizio/productpraat/internal/nav"
	"github.com/yanizio/productpraat/internal/routing"
	"github.com/yanizio/productpraat/internal/theme"
)

const homeLimit = 8

// page is the JSON body of every storefront response.
type page struct {
	View      nav.View          `json:"view"`
	Status    int               `json:"status"`
	Path      string            `json:"path"`
	Canonical string            `json:"canonical,omitempty"`
	Query     string            `json:"query,omitempty"`
	Category  *catalog.Category `json:"category,omitempty"`
	Entity    any               `json:"entity,omitempty"`
	Price     string            `json:"price,omitempty"`
	Reviews   []catalog.Review  `json:"reviews,omitempty"`
	Items     *listing          `json:"items,omitempty"`
	Theme     theme.Theme       `json:"theme"`
	Head      head.Head         `json:"head"`
}

type listing struct {
	Products   []catalog.Product  `json:"products,omitempty"`
	Articles   []catalog.Article  `json:"articles,omitempty"`
	Categories []catalog.Category `json:"categories,omitempty"`
}

// fixed pins one snapshot for the life of a request.
type fixed struct{ snap *catalog.Snapshot }

func (f fixed) Snapshot() *catalog.Snapshot { return f.snap }

func (h *handler) storefront(w http.ResponseWriter, r *http.Request) {
	snap := h.Catalog.Snapshot()
	if !snap.Loaded {
		w.Header().Set("Retry-After", "2")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "loading"})
		return
	}

	_, authed := auth.UserFrom(r.Context())
	nv := nav.New(fixed{snap}, func() bool { return authed })
	st, err := nv.Start(r.URL.RequestURI())
	if err != nil {
		zap.L().Debug("initial route rejected", zap.String("path", r.URL.Path), zap.Error(err))
	}

	pg := h.render(r.URL.Query(), snap, st)
	writeJSON(w, pg.Status, pg)
}

func statusFor(v nav.View) int {
	if v == nav.ViewNotFound {
		return http.StatusNotFound
	}
	return http.StatusOK
}

// render fills the page for st.
func (h *handler) render(q url.Values, snap *catalog.Snapshot, st nav.State) page {
	hb := head.New()
	pg := page{
		View:   st.View,
		Status: statusFor(st.View),
		Path:   st.Path,
		Query:  st.Query,
		Theme:  theme.ForDate(h.Now()),
	}

	indexable := true
	switch st.View {
	case nav.ViewHome:
		hb.SetTitle(siteName + " | " + pg.Theme.Headline)
		hb.Description("Onafhankelijke reviews, vergelijkingen, en koopgidsen voor elektronica en huishoudelijke apparaten.")
		pg.Items = &listing{
			Products:   first(filter.Products(snap.Products, filter.Query{}), homeLimit),
			Articles:   first(filter.Articles(snap.Articles, filter.ArticleQuery{}), homeLimit),
			Categories: catalog.Categories(),
		}

	case nav.ViewCategory:
		c, _ := catalog.LookupCategory(st.Category)
		pg.Category = &c
		pg.Items = &listing{Products: filter.Products(snap.InCategory(c.Key), productQuery(q))}
		hb.SetTitle(c.Name + " vergelijken | " + siteName)
		hb.Description(fmt.Sprintf("De beste %s van dit moment, getest en vergeleken.", strings.ToLower(c.Name)))

	case nav.ViewProduct:
		p := st.Product
		reviews := snap.ReviewsFor(p.ID)
		pg.Entity = p
		pg.Reviews = reviews
		if p.Price > 0 {
			pg.Price = affiliate.FormatPrice(p.Price)
		}
		if c, ok := catalog.LookupCategory(p.Category); ok {
			pg.Category = &c
		}
		canonical := routing.Canonical(h.BaseURL, st.Path)
		hb.SetTitle(p.Name() + " review | " + siteName)
		hb.Description(p.Summary)
		hb.OpenGraph(map[string]string{
			"type":        "product",
			"title":       p.Name(),
			"description": p.Summary,
			"url":         canonical,
			"image":       firstString(p.Images),
		})
		hb.ProductLD(p, reviews, canonical)

	case nav.ViewArticle:
		a := st.Article
		pg.Entity = a
		canonical := routing.Canonical(h.BaseURL, st.Path)
		hb.SetTitle(a.Title + " | " + siteName)
		hb.Description(a.Summary)
		hb.OpenGraph(map[string]string{
			"type":        "article",
			"title":       a.Title,
			"description": a.Summary,
			"url":         canonical,
			"image":       a.ImageURL,
		})
		hb.ArticleLD(a, canonical)

	case nav.ViewArticles:
		aq := filter.ArticleQuery{Category: q.Get("categorie")}
		if t, err := catalog.ParseArticleType(q.Get("type")); err == nil {
			aq.Type = t
		}
		pg.Items = &listing{Articles: filter.Articles(snap.Articles, aq)}
		hb.SetTitle("Artikelen | " + siteName)
		hb.Description("Koopgidsen, toplijsten, en vergelijkingen van de redactie.")

	case nav.ViewSearch:
		res := h.Searcher.Search(snap, st.Query)
		pg.Items = &listing{Products: res.Products, Articles: res.Articles}
		hb.SetTitle("Zoeken: " + st.Query + " | " + siteName)
		indexable = false

	case nav.ViewAbout:
		hb.SetTitle("Over ons | " + siteName)
	case nav.ViewContact:
		hb.SetTitle("Contact | " + siteName)
	case nav.ViewLogin:
		hb.SetTitle("Inloggen | " + siteName)
		indexable = false
	case nav.ViewAdmin:
		hb.SetTitle("Beheer | " + siteName)
		indexable = false
	case nav.ViewNotFound:
		hb.SetTitle("Pagina niet gevonden | " + siteName)
		indexable = false
	}

	if indexable {
		pg.Canonical = routing.Canonical(h.BaseURL, st.Path)
		hb.Canonical(pg.Canonical)
	} else {
		hb.Meta(`<meta name="robots" content="noindex">`)
	}
	pg.Head = hb.Snapshot()
	return pg
}

// productQuery reads listing filters from the query string.  Malformed
// numbers are ignored.
func productQuery(q url.Values) filter.Query {
	num := func(k string) float64 {
		f, err := strconv.ParseFloat(q.Get(k), 64)
		if err != nil || f < 0 {
			return 0
		}
		return f
	}
	return filter.Query{
		MinScore: num("min_score"),
		MinPrice: num("min_prijs"),
		MaxPrice: num("max_prijs"),
		Sort:     q.Get("sort"),
	}
}

func first[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func firstString(l catalog.StringList) string {
	if len(l) == 0 {
		return ""
	}
	return l[0]
}
