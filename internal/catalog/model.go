// internal/catalog/model.go
//
// Catalog entities.
//
// Context
// -------
// Products and articles are loaded from the backend in full and held in
// memory as an immutable Snapshot.  Both carry an optional explicit slug;
// when it is empty the slug is derived from display fields.  EffectiveSlug
// is the single source of truth for link synthesis and path resolution.
//
// Notes
// -----
// • Struct tags carry both `db` (sqlx scans) and `json` (HTTP responses).
// • Images are stored as a JSON array column; see StringList.

package catalog

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yanizio/productpraat/internal/slug"
)

var (
	// ErrNotFound is returned when an entity id is unknown.
	ErrNotFound = errors.New("catalog: not found")

	// ErrSlugTaken is returned when a write would create a second entity
	// resolving to the same path.
	ErrSlugTaken = errors.New("catalog: slug already taken")

	// ErrUnknownCategory is returned for a category key outside the table.
	ErrUnknownCategory = errors.New("catalog: unknown category")

	// ErrInvalidArticleType is returned by ParseArticleType.
	ErrInvalidArticleType = errors.New("catalog: invalid article type")

	// ErrEmptySlug is returned when no slug can be derived.
	ErrEmptySlug = errors.New("catalog: empty slug")
)

//
// Product
//

// Product is one reviewed item in the shop.
type Product struct {
	ID            string     `db:"id"             json:"id"`
	Brand         string     `db:"brand"          json:"brand"`
	Model         string     `db:"model"          json:"model"`
	Category      string     `db:"category"       json:"category"`
	Score         float64    `db:"score"          json:"score"`
	Price         float64    `db:"price"          json:"price"`
	Slug          string     `db:"slug"           json:"slug,omitempty"`
	EAN           string     `db:"ean"            json:"ean,omitempty"`
	Summary       string     `db:"summary"        json:"summary,omitempty"`
	Images        StringList `db:"images"         json:"images,omitempty"`
	Pros          StringList `db:"pros"           json:"pros,omitempty"`
	Cons          StringList `db:"cons"           json:"cons,omitempty"`
	AffiliateLink string     `db:"affiliate_link" json:"affiliateLink,omitempty"`
	CreatedAt     time.Time  `db:"created_at"     json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at"     json:"updatedAt"`
}

// Name is the display name used in titles and search.
func (p *Product) Name() string {
	return strings.TrimSpace(p.Brand + " " + p.Model)
}

// EffectiveSlug returns the normalised explicit slug or one derived from
// brand and model.  The id is the last resort so every product stays
// addressable.
func (p *Product) EffectiveSlug() string {
	return firstSlug(p.Slug, slug.Make(p.Brand, p.Model), p.ID)
}

//
// Article
//

// ArticleType is the fixed set of editorial formats.
type ArticleType string

const (
	ArticleInformative ArticleType = "informatief"
	ArticleComparison  ArticleType = "vergelijking"
	ArticleTopList     ArticleType = "toplijst"
	ArticleBuyersGuide ArticleType = "koopgids"
	ArticleReview      ArticleType = "review"
)

// ArticleTypes lists every valid type in display order.
var ArticleTypes = []ArticleType{
	ArticleInformative, ArticleComparison, ArticleTopList, ArticleBuyersGuide, ArticleReview,
}

// ParseArticleType validates s against ArticleTypes, ignoring case.
func ParseArticleType(s string) (ArticleType, error) {
	for _, t := range ArticleTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidArticleType, s)
}

// Article is one editorial piece in the /artikelen section.
type Article struct {
	ID        string      `db:"id"         json:"id"`
	Title     string      `db:"title"      json:"title"`
	Category  string      `db:"category"   json:"category"`
	Type      ArticleType `db:"type"       json:"type"`
	Slug      string      `db:"slug"       json:"slug,omitempty"`
	Summary   string      `db:"summary"    json:"summary,omitempty"`
	Body      string      `db:"body"       json:"body,omitempty"`
	Author    string      `db:"author"     json:"author,omitempty"`
	ImageURL  string      `db:"image_url"  json:"imageUrl,omitempty"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time   `db:"updated_at" json:"updatedAt"`
}

// EffectiveSlug returns the normalised explicit slug or one derived from
// the title, falling back to the id.
func (a *Article) EffectiveSlug() string {
	return firstSlug(a.Slug, a.Title, a.ID)
}

func firstSlug(candidates ...string) string {
	for _, c := range candidates {
		if s := slug.Make(c); s != "" {
			return s
		}
	}
	return ""
}

//
// Review
//

// Review is a user or editorial review attached to a product.
type Review struct {
	ID        string    `db:"id"         json:"id"`
	ProductID string    `db:"product_id" json:"productId"`
	Author    string    `db:"author"     json:"author"`
	Rating    int       `db:"rating"     json:"rating"`
	Title     string    `db:"title"      json:"title"`
	Body      string    `db:"body"       json:"body"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

//
// StringList
//

// StringList stores a []string as a JSON array column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	return string(b), err
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("catalog: cannot scan %T into StringList", src)
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(l))
}
