// internal/head/builder.go
//
// The Builder collects everything that should appear inside a storefront
// page's <head> element.  It is scoped to a single request.  The web layer
// feeds it the resolved view (canonical URL, product, or article) and the
// JSON response carries the rendered result for the client to apply.
//
// Features
// --------
//   - SetTitle / Description – single-value tags (last call wins).
//   - Canonical              – <link rel="canonical">, one per page.
//   - OpenGraph              – og:* meta tags in key order.
//   - ProductLD / ArticleLD  – schema.org JSON-LD for detail views.
//   - Meta, Link, JSONLD     – arbitrary tags with deduplication.
//   - Snapshot               – plain struct form for JSON responses.
package head

import (
	"encoding/json"
	"html/template"
	"sort"
	"strings"
	"sync"

	"github.com/yanizio/productpraat/internal/catalog"
)

// Builder is safe for concurrent use; typical use is one goroutine per
// request.
type Builder struct {
	mu sync.Mutex

	title       string
	description string
	canonical   string

	metas  []string
	links  []string
	jsonLD []string

	seen map[string]struct{}
}

func New() *Builder {
	return &Builder{seen: make(map[string]struct{})}
}

// ------------------------------------------------------------------
// Single-value helpers
// ------------------------------------------------------------------

// SetTitle overrides the page <title>.  The last caller wins.
func (b *Builder) SetTitle(t string) {
	b.mu.Lock()
	b.title = t
	b.mu.Unlock()
}

// Description sets the meta description.  The last caller wins.
func (b *Builder) Description(d string) {
	b.mu.Lock()
	b.description = strings.TrimSpace(d)
	b.mu.Unlock()
}

// Canonical sets the canonical URL.  The last caller wins.
func (b *Builder) Canonical(url string) {
	b.mu.Lock()
	b.canonical = url
	b.mu.Unlock()
}

// Title returns a fully formed <title> tag or an empty string.
func (b *Builder) Title() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.title == "" {
		return ""
	}
	return template.HTML("<title>" + template.HTMLEscapeString(b.title) + "</title>")
}

// ------------------------------------------------------------------
// Slice helpers with deduplication
// ------------------------------------------------------------------

func (b *Builder) Meta(tag string)  { b.add("meta:"+tag, &b.metas, tag) }
func (b *Builder) Link(tag string)  { b.add("link:"+tag, &b.links, tag) }
func (b *Builder) JSONLD(js string) { b.add("jsonld:"+js, &b.jsonLD, js) }

func (b *Builder) add(key string, tgt *[]string, tag string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.seen[key]; dup {
		return
	}
	b.seen[key] = struct{}{}
	*tgt = append(*tgt, tag)
}

// OpenGraph emits one og:<key> meta tag per entry, sorted by key.
func (b *Builder) OpenGraph(props map[string]string) {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if props[k] == "" {
			continue
		}
		b.Meta(`<meta property="og:` + template.HTMLEscapeString(k) +
			`" content="` + template.HTMLEscapeString(props[k]) + `">`)
	}
}

// ------------------------------------------------------------------
// Structured data
// ------------------------------------------------------------------

// ProductLD adds a schema.org Product with an Offer when the price is known
// and an AggregateRating when reviews exist.
func (b *Builder) ProductLD(p *catalog.Product, reviews []catalog.Review, canonical string) {
	doc := map[string]any{
		"@context": "https://schema.org",
		"@type":    "Product",
		"name":     p.Name(),
		"brand":    map[string]any{"@type": "Brand", "name": p.Brand},
		"url":      canonical,
	}
	if p.Summary != "" {
		doc["description"] = p.Summary
	}
	if len(p.Images) > 0 {
		doc["image"] = []string(p.Images)
	}
	if p.EAN != "" {
		doc["gtin13"] = p.EAN
	}
	if p.Price > 0 {
		offer := map[string]any{
			"@type":         "Offer",
			"price":         p.Price,
			"priceCurrency": "EUR",
			"availability":  "https://schema.org/InStock",
		}
		if p.AffiliateLink != "" {
			offer["url"] = p.AffiliateLink
		}
		doc["offers"] = offer
	}
	if len(reviews) > 0 {
		var sum float64
		for _, r := range reviews {
			sum += float64(r.Rating)
		}
		doc["aggregateRating"] = map[string]any{
			"@type":       "AggregateRating",
			"ratingValue": roundTenth(sum / float64(len(reviews))),
			"reviewCount": len(reviews),
			"bestRating":  5,
		}
	}
	b.addLD(doc)
}

// ArticleLD adds a schema.org Article.
func (b *Builder) ArticleLD(a *catalog.Article, canonical string) {
	doc := map[string]any{
		"@context":         "https://schema.org",
		"@type":            "Article",
		"headline":         a.Title,
		"mainEntityOfPage": canonical,
	}
	if a.Author != "" {
		doc["author"] = map[string]any{"@type": "Person", "name": a.Author}
	}
	if a.ImageURL != "" {
		doc["image"] = a.ImageURL
	}
	if !a.CreatedAt.IsZero() {
		doc["datePublished"] = a.CreatedAt.UTC().Format("2006-01-02")
	}
	if !a.UpdatedAt.IsZero() {
		doc["dateModified"] = a.UpdatedAt.UTC().Format("2006-01-02")
	}
	b.addLD(doc)
}

func (b *Builder) addLD(doc map[string]any) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return
	}
	b.JSONLD(string(raw))
}

func roundTenth(f float64) float64 { return float64(int(f*10+0.5)) / 10 }

// ------------------------------------------------------------------
// Rendering
// ------------------------------------------------------------------

// Metas returns the description followed by the collected meta tags.
func (b *Builder) Metas() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	var sb strings.Builder
	if b.description != "" {
		sb.WriteString(`<meta name="description" content="` + template.HTMLEscapeString(b.description) + `">`)
	}
	sb.WriteString(strings.Join(b.metas, ""))
	return template.HTML(sb.String())
}

// Links returns the canonical link followed by any other link tags.
func (b *Builder) Links() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	var sb strings.Builder
	if b.canonical != "" {
		sb.WriteString(`<link rel="canonical" href="` + template.HTMLEscapeString(b.canonical) + `">`)
	}
	sb.WriteString(strings.Join(b.links, ""))
	return template.HTML(sb.String())
}

// JSON returns all JSON-LD blocks wrapped in <script> tags.
func (b *Builder) JSON() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	var sb strings.Builder
	for _, js := range b.jsonLD {
		sb.WriteString(`<script type="application/ld+json">`)
		sb.WriteString(js)
		sb.WriteString(`</script>`)
	}
	return template.HTML(sb.String())
}

// Head is the JSON form of a builder.
type Head struct {
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Canonical   string            `json:"canonical,omitempty"`
	JSONLD      []json.RawMessage `json:"jsonld,omitempty"`
	HTML        string            `json:"html"`
}

// Snapshot returns the collected head for a JSON response.
func (b *Builder) Snapshot() Head {
	html := string(b.Title()) + string(b.Metas()) + string(b.Links()) + string(b.JSON())

	b.mu.Lock()
	defer b.mu.Unlock()
	h := Head{
		Title:       b.title,
		Description: b.description,
		Canonical:   b.canonical,
		HTML:        html,
	}
	for _, js := range b.jsonLD {
		h.JSONLD = append(h.JSONLD, json.RawMessage(js))
	}
	return h
}
