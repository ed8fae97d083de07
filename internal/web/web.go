// internal/web/web.go
//
// HTTP surface of the storefront.
//
// Context
// -------
// Every storefront path is answered by one catch-all handler that runs the
// router (classify → resolve → navigate) against the in-memory catalog and
// returns the resulting view as JSON for the client to render.  Around it
// sit the affiliate redirect, the sitemap, a handful of public API calls,
// and the admin API that writes through the store and patches the live
// snapshot.
//
// Middleware order
// ----------------
//  1. chi RequestID, access log, panic recovery.
//  2. Force-HTTPS (config driven) and security headers.
//  3. Request enrichment (UA class, client IP, country).
//  4. Legacy-path redirects from route_alias.
//  5. Session attach; admin routes add RequireSession and RequireCSRF.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.

package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/yanizio/productpraat/internal/affiliate"
	"github.com/yanizio/productpraat/internal/auth"
	"github.com/yanizio/productpraat/internal/catalog"
	"github.com/yanizio/productpraat/internal/filter"
	"github.com/yanizio/productpraat/internal/middleware"
	"github.com/yanizio/productpraat/internal/requestinfo"
	"github.com/yanizio/productpraat/internal/routing"
	"github.com/yanizio/productpraat/internal/session"
)

// siteName suffixes every page title.
const siteName = "ProductPraat"

// Store is the write side of the backend.  *store.Store satisfies it.
type Store interface {
	AddProduct(ctx context.Context, p catalog.Product) (catalog.Product, error)
	RemoveProduct(ctx context.Context, id string) error
	AddReview(ctx context.Context, r catalog.Review) (catalog.Review, error)
	SaveArticle(ctx context.Context, a catalog.Article) (catalog.Article, error)
	DeleteArticle(ctx context.Context, id string) error
	RecordClick(ctx context.Context, productID, source, country string) error
	ClickCounts(ctx context.Context, since time.Time) (map[string]int, error)
}

// Sessions is the login backend.  *auth.Sessions satisfies it.
type Sessions interface {
	auth.Resolver
	Login(ctx context.Context, email, password string) (auth.Session, error)
	Logout(ctx context.Context, token string) error
}

// Deps wires the router.  Catalog, Store, Sessions, and CSRF are required.
type Deps struct {
	Catalog    *catalog.Catalog
	Store      Store
	Sessions   Sessions
	Cookie     session.Cookie
	CSRF       *auth.CSRF
	Affiliate  *affiliate.Client     // nil or unconfigured disables /api/bol/*
	Searcher   *filter.Searcher      // defaults to a 256-entry cache
	Aliases    *routing.AliasCache   // optional
	Enricher   *requestinfo.Enricher // optional
	BaseURL    string
	ForceHTTPS bool
	Now        func() time.Time
}

type handler struct {
	Deps
	validate *validator.Validate
}

// NewRouter returns the complete storefront handler.
func NewRouter(d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Searcher == nil {
		d.Searcher = filter.NewSearcher(256)
	}
	h := &handler{Deps: d, validate: validator.New(validator.WithRequiredStructEnabled())}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Log)
	r.Use(middleware.Recover)
	r.Use(middleware.ForceHTTPS(d.ForceHTTPS))
	r.Use(middleware.Security)
	if d.Enricher != nil {
		r.Use(d.Enricher.Middleware)
	}
	if d.Aliases != nil {
		r.Use(routing.Redirects(d.Aliases))
	}
	r.Use(auth.Attach(d.Sessions, d.Cookie))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/sitemap.xml", h.sitemap)
	r.Get("/go/{id}", h.outbound)

	r.Route("/api", func(r chi.Router) {
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "unknown endpoint")
		})
		r.Get("/compare", h.compare)
		r.Post("/login", h.login)
		r.Post("/logout", h.logout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireSession)
			r.Get("/csrf", h.csrfToken)
			r.Get("/bol/search", h.bolSearch)

			r.Route("/admin", func(r chi.Router) {
				r.Use(auth.RequireCSRF(d.CSRF))
				r.Post("/products", h.addProduct)
				r.Post("/products/import", h.importProduct)
				r.Delete("/products/{id}", h.removeProduct)
				r.Post("/products/{id}/reviews", h.addReview)
				r.Post("/articles", h.saveArticle)
				r.Delete("/articles/{id}", h.deleteArticle)
				r.Post("/reload", h.reload)
				r.Get("/clicks", h.clicks)
			})
		})
	})

	r.Get("/*", h.storefront)
	return r
}

//
// response helpers
//

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// decode reads a JSON body into v and validates it.  Bodies are capped at
// 1 MiB.
func (h *handler) decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	return h.validate.Struct(v)
}
