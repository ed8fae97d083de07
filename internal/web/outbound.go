// internal/web/outbound.go
//
// GET /go/{id} sends the visitor to the partner shop.  Products carry a
// stored affiliate link when an editor imported them; otherwise a tracked
// search link is generated from the product name.  Crawler hits are
// redirected but not counted.

package web

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/productpraat/internal/affiliate"
	"github.com/yanizio/productpraat/internal/metrics"
	"github.com/yanizio/productpraat/internal/requestinfo"
)

const bolSearchURL = "https://www.bol.com/nl/nl/s/"

func (h *handler) outbound(w http.ResponseWriter, r *http.Request) {
	snap := h.Catalog.Snapshot()
	p, ok := snap.ProductByID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}

	target, source := p.AffiliateLink, "stored"
	if target == "" {
		search := bolSearchURL + "?" + url.Values{"searchtext": {p.Name()}}.Encode()
		target, source = h.affiliateLink(search, p.Name()), "generated"
	}

	if !requestinfo.IsBot(r.Context()) {
		metrics.AffiliateClicksTotal.WithLabelValues(source).Inc()
		if err := h.Store.RecordClick(r.Context(), p.ID, source, requestinfo.Country(r.Context())); err != nil {
			zap.L().Warn("record click failed", zap.String("product", p.ID), zap.Error(err))
		}
	}

	w.Header().Set("Cache-Control", "no-store")
	http.Redirect(w, r, target, http.StatusFound)
}

// affiliateLink wraps u in a partner click URL.  Without a client the raw
// URL is returned.
func (h *handler) affiliateLink(u, name string) string {
	if h.Affiliate == nil {
		return u
	}
	return h.Affiliate.AffiliateLink(u, name)
}

// partnerCountry picks the Bol.com shop for a request: an explicit
// ?country= wins, then the visitor's GeoIP country when it is a served
// market, then the configured default.
func partnerCountry(r *http.Request) string {
	switch cc := r.URL.Query().Get("country"); cc {
	case affiliate.CountryNL, affiliate.CountryBE:
		return cc
	}
	switch cc := requestinfo.Country(r.Context()); cc {
	case affiliate.CountryNL, affiliate.CountryBE:
		return cc
	}
	return ""
}
