// internal/web/admin.go
//
// Admin API.  Every write goes to the store first and is then patched into
// the live snapshot, so the storefront serves the change without a full
// reload.  Slug collisions are checked against the snapshot before the
// write and again by the database's unique keys; either way the caller
// gets 409.

package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/productpraat/internal/auth"
	"github.com/yanizio/productpraat/internal/catalog"
	"github.com/yanizio/productpraat/internal/routing"
)

//
// request bodies
//

type productInput struct {
	Brand         string   `json:"brand"         validate:"required"`
	Model         string   `json:"model"         validate:"required"`
	Category      string   `json:"category"      validate:"required"`
	Score         float64  `json:"score"         validate:"gte=0,lte=10"`
	Price         float64  `json:"price"         validate:"gte=0"`
	Slug          string   `json:"slug"`
	EAN           string   `json:"ean"           validate:"omitempty,numeric,len=13"`
	Summary       string   `json:"summary"`
	Images        []string `json:"images"        validate:"dive,url"`
	Pros          []string `json:"pros"`
	Cons          []string `json:"cons"`
	AffiliateLink string   `json:"affiliateLink" validate:"omitempty,url"`
}

func (in productInput) product() catalog.Product {
	return catalog.Product{
		Brand:         strings.TrimSpace(in.Brand),
		Model:         strings.TrimSpace(in.Model),
		Category:      strings.ToLower(strings.TrimSpace(in.Category)),
		Score:         in.Score,
		Price:         in.Price,
		Slug:          in.Slug,
		EAN:           in.EAN,
		Summary:       in.Summary,
		Images:        in.Images,
		Pros:          in.Pros,
		Cons:          in.Cons,
		AffiliateLink: in.AffiliateLink,
	}
}

type importInput struct {
	EAN      string  `json:"ean"      validate:"required,numeric,len=13"`
	Category string  `json:"category" validate:"required"`
	Score    float64 `json:"score"    validate:"gte=0,lte=10"`
}

type reviewInput struct {
	Author string `json:"author" validate:"required"`
	Rating int    `json:"rating" validate:"min=1,max=5"`
	Title  string `json:"title"`
	Body   string `json:"body"   validate:"required"`
}

type articleInput struct {
	ID       string `json:"id"`
	Title    string `json:"title"    validate:"required"`
	Category string `json:"category"`
	Type     string `json:"type"     validate:"required"`
	Slug     string `json:"slug"`
	Summary  string `json:"summary"`
	Body     string `json:"body"`
	Author   string `json:"author"`
	ImageURL string `json:"imageUrl" validate:"omitempty,url"`
}

type created struct {
	Entity any    `json:"entity"`
	Path   string `json:"path"`
}

//
// products
//

func (h *handler) addProduct(w http.ResponseWriter, r *http.Request) {
	var in productInput
	if err := h.decode(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.createProduct(w, r, in.product())
}

// importProduct drafts a product from the partner catalog by EAN.
func (h *handler) importProduct(w http.ResponseWriter, r *http.Request) {
	var in importInput
	if err := h.decode(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !h.Affiliate.Configured() {
		writeError(w, http.StatusServiceUnavailable, "partner api not configured")
		return
	}
	bp, err := h.Affiliate.GetProduct(r.Context(), in.EAN, partnerCountry(r))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	p := bp.ToCatalog(strings.ToLower(in.Category))
	p.Score = in.Score
	h.createProduct(w, r, p)
}

func (h *handler) createProduct(w http.ResponseWriter, r *http.Request, p catalog.Product) {
	if _, ok := catalog.LookupCategory(p.Category); !ok {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}
	if p.EffectiveSlug() == "" {
		writeError(w, http.StatusBadRequest, catalog.ErrEmptySlug.Error())
		return
	}
	if h.Catalog.Snapshot().ProductSlugTaken(p.Category, p.EffectiveSlug(), "") {
		writeError(w, http.StatusConflict, catalog.ErrSlugTaken.Error())
		return
	}

	saved, err := h.Store.AddProduct(r.Context(), p)
	if err != nil {
		writeWriteError(w, "add product", err)
		return
	}
	h.Catalog.Update(func(s *catalog.Snapshot) *catalog.Snapshot { return s.WithProduct(saved) })
	h.audit(r, "product added", saved.ID)
	writeJSON(w, http.StatusCreated, created{Entity: saved, Path: routing.ProductPath(&saved)})
}

func (h *handler) removeProduct(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.RemoveProduct(r.Context(), id); err != nil {
		writeWriteError(w, "remove product", err)
		return
	}
	h.Catalog.Update(func(s *catalog.Snapshot) *catalog.Snapshot { return s.WithoutProduct(id) })
	h.audit(r, "product removed", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) addReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := h.Catalog.Snapshot().ProductByID(id)
	if !ok {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	var in reviewInput
	if err := h.decode(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.Store.AddReview(r.Context(), catalog.Review{
		ProductID: p.ID,
		Author:    in.Author,
		Rating:    in.Rating,
		Title:     in.Title,
		Body:      in.Body,
	})
	if err != nil {
		writeWriteError(w, "add review", err)
		return
	}
	h.Catalog.Update(func(s *catalog.Snapshot) *catalog.Snapshot { return s.WithReview(saved) })
	h.audit(r, "review added", saved.ID)
	writeJSON(w, http.StatusCreated, created{Entity: saved, Path: routing.ProductPath(&p)})
}

//
// articles
//

func (h *handler) saveArticle(w http.ResponseWriter, r *http.Request) {
	var in articleInput
	if err := h.decode(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	typ, err := catalog.ParseArticleType(in.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap := h.Catalog.Snapshot()
	a := catalog.Article{
		ID:       in.ID,
		Title:    strings.TrimSpace(in.Title),
		Category: strings.ToLower(strings.TrimSpace(in.Category)),
		Type:     typ,
		Slug:     in.Slug,
		Summary:  in.Summary,
		Body:     in.Body,
		Author:   in.Author,
		ImageURL: in.ImageURL,
	}
	if a.ID != "" {
		prev, ok := snap.ArticleByID(a.ID)
		if !ok {
			writeError(w, http.StatusNotFound, "article not found")
			return
		}
		a.CreatedAt = prev.CreatedAt
		if strings.TrimSpace(a.Slug) == "" {
			// A retitled article keeps its public URL.
			a.Slug = prev.EffectiveSlug()
		}
	}
	if snap.ArticleSlugTaken(a.EffectiveSlug(), a.ID) {
		writeError(w, http.StatusConflict, catalog.ErrSlugTaken.Error())
		return
	}

	status := http.StatusCreated
	if a.ID != "" {
		status = http.StatusOK
	}
	saved, err := h.Store.SaveArticle(r.Context(), a)
	if err != nil {
		writeWriteError(w, "save article", err)
		return
	}
	h.Catalog.Update(func(s *catalog.Snapshot) *catalog.Snapshot { return s.WithArticle(saved) })
	h.audit(r, "article saved", saved.ID)
	writeJSON(w, status, created{Entity: saved, Path: routing.ArticlePath(&saved)})
}

func (h *handler) deleteArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Store.DeleteArticle(r.Context(), id); err != nil {
		writeWriteError(w, "delete article", err)
		return
	}
	h.Catalog.Update(func(s *catalog.Snapshot) *catalog.Snapshot { return s.WithoutArticle(id) })
	h.audit(r, "article deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

//
// maintenance
//

type reloadOutput struct {
	Version  uint64 `json:"version"`
	Products int    `json:"products"`
	Articles int    `json:"articles"`
}

func (h *handler) reload(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.Load(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, "reload failed; previous catalog kept")
		return
	}
	if h.Aliases != nil {
		if err := h.Aliases.Load(r.Context()); err != nil {
			zap.L().Warn("alias reload failed", zap.Error(err))
		}
	}
	snap := h.Catalog.Snapshot()
	h.audit(r, "catalog reloaded", "")
	writeJSON(w, http.StatusOK, reloadOutput{
		Version:  snap.Version,
		Products: len(snap.Products),
		Articles: len(snap.Articles),
	})
}

// clicks reports affiliate clicks per product over ?days= (default 30).
func (h *handler) clicks(w http.ResponseWriter, r *http.Request) {
	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || days < 1 {
		days = 30
	}
	since := h.Now().UTC().AddDate(0, 0, -days)
	counts, err := h.Store.ClickCounts(r.Context(), since)
	if err != nil {
		zap.L().Error("click counts", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "click counts failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"since": since.Format(time.RFC3339), "clicks": counts})
}

//
// helpers
//

// writeWriteError maps store errors onto statuses.
func writeWriteError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, catalog.ErrSlugTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, catalog.ErrUnknownCategory), errors.Is(err, catalog.ErrInvalidArticleType):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		zap.L().Error(op+" failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, op+" failed")
	}
}

func (h *handler) audit(r *http.Request, msg, id string) {
	uid, _ := auth.UserID(r.Context())
	zap.L().Info(msg, zap.String("user", uid), zap.String("id", id))
}
