// internal/nav/view.go
//
// View enumeration.  A View is the coarse page the storefront shows; the
// accompanying State carries the entity or listing key that fills it.

package nav

import "encoding/json"

// View enumerates every page the storefront can show.
type View int

const (
	ViewHome View = iota
	ViewCategory
	ViewProduct
	ViewArticle
	ViewArticles
	ViewAbout
	ViewContact
	ViewLogin
	ViewAdmin
	ViewSearch
	ViewNotFound
)

var viewNames = [...]string{
	ViewHome:     "home",
	ViewCategory: "category",
	ViewProduct:  "product",
	ViewArticle:  "article",
	ViewArticles: "articles-overview",
	ViewAbout:    "about",
	ViewContact:  "contact",
	ViewLogin:    "login",
	ViewAdmin:    "admin",
	ViewSearch:   "search",
	ViewNotFound: "not-found",
}

// Views lists every view in declaration order.
func Views() []View {
	out := make([]View, len(viewNames))
	for i := range viewNames {
		out[i] = View(i)
	}
	return out
}

func (v View) String() string {
	if v < 0 || int(v) >= len(viewNames) {
		return "unknown"
	}
	return viewNames[v]
}

// MarshalJSON renders the view by name.
func (v View) MarshalJSON() ([]byte, error) { return json.Marshal(v.String()) }
