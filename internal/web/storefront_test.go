package web

import (
	"net/http"
	"strings"
	"testing"
)

func TestStorefrontLoading(t *testing.T) {
	e := newEnv(t, false)
	rr := e.do(http.MethodGet, "/shop/wasmachines/bosch-serie-6", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Fatal("missing Retry-After")
	}
}

func TestStorefrontViews(t *testing.T) {
	e := newEnv(t, true)

	cases := []struct {
		name   string
		target string
		admin  bool
		status int
		view   string
		path   string
	}{
		{"home", "/", false, 200, "home", "/"},
		{"category", "/shop/wasmachines", false, 200, "category", "/shop/wasmachines"},
		{"unknown category", "/shop/boten", false, 200, "home", "/"},
		{"product mixed case", "/shop/Wasmachines/Bosch-Serie-6", false, 200, "product", "/shop/wasmachines/bosch-serie-6"},
		{"product trailing slash", "/shop/wasmachines/bosch-serie-6/", false, 200, "product", "/shop/wasmachines/bosch-serie-6"},
		{"missing product", "/shop/wasmachines/bestaat-niet", false, 404, "not-found", "/shop/wasmachines/bestaat-niet"},
		{"article", "/artikelen/beste-koptelefoon", false, 200, "article", "/artikelen/beste-koptelefoon"},
		{"missing article", "/artikelen/non-existent-slug", false, 404, "not-found", "/artikelen/non-existent-slug"},
		{"articles overview", "/artikelen", false, 200, "articles-overview", "/artikelen"},
		{"search", "/zoeken?q=bosch", false, 200, "search", "/zoeken?q=bosch"},
		{"about", "/about", false, 200, "about", "/about"},
		{"unmatched", "/onbekend/pad", false, 200, "home", "/"},
		{"double slash product", "//x/shop/wasmachines/bosch-serie-6", false, 200, "home", "/"},
		{"double slash article", "//x/artikelen/nope", false, 200, "home", "/"},
		{"double slash overview", "//evil/artikelen", false, 200, "home", "/"},
		{"admin anonymous", "/admin", false, 200, "login", "/admin"},
		{"dashboard anonymous", "/dashboard", false, 200, "login", "/dashboard"},
		{"admin with session", "/admin", true, 200, "admin", "/admin"},
	}

	e.login()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var opts []reqOpt
			if tc.admin {
				opts = append(opts, asAdmin)
			}
			rr := e.do(http.MethodGet, tc.target, "", opts...)
			if rr.Code != tc.status {
				t.Fatalf("status = %d, want %d", rr.Code, tc.status)
			}
			pg := decodePage(t, rr)
			if pg.View != tc.view || pg.Path != tc.path || pg.Status != tc.status {
				t.Fatalf("got view=%s path=%s status=%d", pg.View, pg.Path, pg.Status)
			}
			if pg.Theme.Name != "zomer" {
				t.Fatalf("theme = %s", pg.Theme.Name)
			}
		})
	}
}

func TestStorefrontProductPage(t *testing.T) {
	e := newEnv(t, true)
	pg := decodePage(t, e.do(http.MethodGet, "/shop/wasmachines/bosch-serie-6", ""))

	if pg.Entity.ID != "p1" || len(pg.Reviews) != 1 {
		t.Fatalf("entity=%s reviews=%d", pg.Entity.ID, len(pg.Reviews))
	}
	if pg.Price != "€599,00" {
		t.Fatalf("price = %q", pg.Price)
	}
	if pg.Canonical != "https://www.productpraat.nl/shop/wasmachines/bosch-serie-6" {
		t.Fatalf("canonical = %s", pg.Canonical)
	}
	if len(pg.Head.JSONLD) != 1 || !strings.Contains(string(pg.Head.JSONLD[0]), `"@type":"Product"`) {
		t.Fatalf("jsonld = %s", pg.Head.JSONLD)
	}
	if !strings.Contains(pg.Head.HTML, `rel="canonical"`) || !strings.Contains(pg.Head.HTML, "og:title") {
		t.Fatalf("head html = %s", pg.Head.HTML)
	}
}

func TestStorefrontListings(t *testing.T) {
	e := newEnv(t, true)

	home := decodePage(t, e.do(http.MethodGet, "/", ""))
	if len(home.Items.Products) != 2 || home.Items.Products[0].ID != "p2" {
		t.Fatalf("home products = %+v", home.Items.Products)
	}

	cat := decodePage(t, e.do(http.MethodGet, "/shop/wasmachines?max_prijs=500", ""))
	if len(cat.Items.Products) != 0 {
		t.Fatalf("price filter ignored: %+v", cat.Items.Products)
	}

	search := decodePage(t, e.do(http.MethodGet, "/zoeken?q=koptelefoon", ""))
	if len(search.Items.Products) != 1 || len(search.Items.Articles) != 1 {
		t.Fatalf("search = %+v", search.Items)
	}
	if !strings.Contains(search.Head.HTML, "noindex") || search.Canonical != "" {
		t.Fatal("search page must be noindex without canonical")
	}

	arts := decodePage(t, e.do(http.MethodGet, "/artikelen?type=review", ""))
	if len(arts.Items.Articles) != 0 {
		t.Fatalf("type filter ignored: %+v", arts.Items.Articles)
	}
}

func TestSitemap(t *testing.T) {
	e := newEnv(t, true)
	rr := e.do(http.MethodGet, "/sitemap.xml", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		"<loc>https://www.productpraat.nl/</loc>",
		"<loc>https://www.productpraat.nl/shop/koptelefoons</loc>",
		"<loc>https://www.productpraat.nl/shop/wasmachines/bosch-serie-6</loc>",
		"<loc>https://www.productpraat.nl/artikelen/beste-koptelefoon</loc>",
		"<lastmod>2025-03-01</lastmod>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("sitemap missing %s", want)
		}
	}
}

func TestOutboundRedirect(t *testing.T) {
	e := newEnv(t, true)

	rr := e.do(http.MethodGet, "/go/p1", "")
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != fixtureProducts[0].AffiliateLink {
		t.Fatalf("stored link: %d %s", rr.Code, rr.Header().Get("Location"))
	}

	rr = e.do(http.MethodGet, "/go/p2", "")
	if loc := rr.Header().Get("Location"); !strings.HasPrefix(loc, bolSearchURL+"?searchtext=Sony") {
		t.Fatalf("generated link = %s", loc)
	}

	e.do(http.MethodGet, "/go/p1", "", withUA("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"))

	if len(e.store.clicks) != 2 {
		t.Fatalf("clicks = %+v, want 2 (bot excluded)", e.store.clicks)
	}
	if e.store.clicks[0].source != "stored" || e.store.clicks[1].source != "generated" {
		t.Fatalf("click sources = %+v", e.store.clicks)
	}

	if rr := e.do(http.MethodGet, "/go/nope", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown product status = %d", rr.Code)
	}
}

func TestSecurityHeadersOnStorefront(t *testing.T) {
	e := newEnv(t, true)
	rr := e.do(http.MethodGet, "/", "")
	if rr.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatal("security headers not applied")
	}
}
