// internal/affiliate/link.go
//
// Partner link building and competition analysis.  Both are pure and work
// without credentials.

package affiliate

import (
	"net/url"
	"strconv"
	"strings"
)

const partnerClickURL = "https://partner.bol.com/click/click"

// AffiliateLink wraps productURL in a tracked partner click URL.  An empty
// name becomes "Product".
func (c *Client) AffiliateLink(productURL, name string) string {
	return BuildLink(c.cfg.SiteCode, productURL, name)
}

// BuildLink is AffiliateLink without a client.
func BuildLink(siteCode, productURL, name string) string {
	if name == "" {
		name = "Product"
	}
	return partnerClickURL + "?p=2&t=url&s=" + siteCode + "&f=TXL&url=" + quote(productURL) + "&name=" + quote(name)
}

// quote percent-encodes everything except unreserved characters.
func quote(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Stats summarises one numeric field.
type Stats struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

// Analysis is the competitive picture for a search.
type Analysis struct {
	Query  string    `json:"query"`
	Count  int       `json:"count"`
	Price  Stats     `json:"price"`
	Rating Stats     `json:"rating"`
	Top    []Product `json:"top"`
}

// Analyze computes price and rating spread plus the first three hits.
// Products without an offer are left out of the price stats; unrated ones
// are left out of the rating stats.
func Analyze(query string, products []Product) Analysis {
	a := Analysis{Query: query, Count: len(products)}
	var prices, ratings []float64
	for i := range products {
		if products[i].Offer != nil {
			prices = append(prices, products[i].Offer.Price)
		}
		if products[i].Rating > 0 {
			ratings = append(ratings, products[i].Rating)
		}
	}
	a.Price = stats(prices)
	a.Rating = stats(ratings)
	a.Top = products[:min(3, len(products))]
	return a
}

func stats(xs []float64) Stats {
	if len(xs) == 0 {
		return Stats{}
	}
	s := Stats{Min: xs[0], Max: xs[0]}
	var sum float64
	for _, x := range xs {
		s.Min = min(s.Min, x)
		s.Max = max(s.Max, x)
		sum += x
	}
	s.Avg = sum / float64(len(xs))
	return s
}

// FormatPrice renders p as Dutch euros, e.g. "€1.234,50".  Negative
// amounts carry a leading minus.
func FormatPrice(p float64) string {
	sign := ""
	if p < 0 {
		sign, p = "-", -p
	}
	cents := int64(p*100 + 0.5)
	if cents == 0 {
		sign = ""
	}
	whole := strconv.FormatInt(cents/100, 10)

	var sb strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			sb.WriteByte('.')
		}
		sb.WriteRune(r)
	}
	frac := cents % 100
	return sign + "€" + sb.String() + "," + string(rune('0'+frac/10)) + string(rune('0'+frac%10))
}
