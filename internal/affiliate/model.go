// internal/affiliate/model.go

package affiliate

import (
	"strings"

	"github.com/yanizio/productpraat/internal/catalog"
)

// SearchResult is one page of /products/search.
type SearchResult struct {
	TotalResults int       `json:"totalResults"`
	Results      []Product `json:"results"`
}

// Product is the subset of a Bol.com catalog entry the admin import uses.
type Product struct {
	EAN           string      `json:"ean"`
	Title         string      `json:"title"`
	Description   string      `json:"description,omitempty"`
	URL           string      `json:"url"`
	Rating        float64     `json:"rating,omitempty"`
	Image         *Image      `json:"image,omitempty"`
	Offer         *Offer      `json:"offer,omitempty"`
	Specs         []SpecGroup `json:"specificationGroups,omitempty"`
	AffiliateLink string      `json:"affiliateLink,omitempty"`
}

type Image struct {
	URL string `json:"url"`
}

type Offer struct {
	Price               float64 `json:"price"`
	StrikethroughPrice  float64 `json:"strikethroughPrice,omitempty"`
	DeliveryDescription string  `json:"deliveryDescription,omitempty"`
}

type SpecGroup struct {
	Title string `json:"title"`
	Specs []Spec `json:"specifications"`
}

type Spec struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Price returns the offer price or zero.
func (p *Product) Price() float64 {
	if p.Offer == nil {
		return 0
	}
	return p.Offer.Price
}

// ToCatalog drafts a catalog product from a Bol.com hit.  Brand is taken
// from the first word of the title; editors fix it up before saving.
func (p *Product) ToCatalog(category string) catalog.Product {
	brand, model, _ := strings.Cut(strings.TrimSpace(p.Title), " ")
	out := catalog.Product{
		Brand:         brand,
		Model:         strings.TrimSpace(model),
		Category:      category,
		Price:         p.Price(),
		EAN:           p.EAN,
		Summary:       p.Description,
		AffiliateLink: p.AffiliateLink,
	}
	if p.Image != nil && p.Image.URL != "" {
		out.Images = catalog.StringList{p.Image.URL}
	}
	return out
}
