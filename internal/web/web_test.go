package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yanizio/productpraat/internal/auth"
	"github.com/yanizio/productpraat/internal/catalog"
	"github.com/yanizio/productpraat/internal/requestinfo"
	"github.com/yanizio/productpraat/internal/session"
)

/*──────────────────────────── fixtures ─────────────────────────────────────*/

var (
	updated = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	fixtureProducts = []catalog.Product{
		{
			ID: "p1", Brand: "Bosch", Model: "Serie 6", Category: "wasmachines",
			Score: 8.5, Price: 599, Summary: "Stille wasmachine met veel programma's.",
			AffiliateLink: "https://partner.bol.com/click/click?p=2&t=url&s=1&f=TXL&url=x",
			UpdatedAt:     updated,
		},
		{
			ID: "p2", Brand: "Sony", Model: "WH-1000XM5", Category: "koptelefoons",
			Score: 9, Price: 349, UpdatedAt: updated,
		},
	}
	fixtureArticles = []catalog.Article{
		{ID: "a1", Title: "Beste koptelefoon", Type: catalog.ArticleTopList, Category: "koptelefoons", UpdatedAt: updated},
	}
	fixtureReviews = []catalog.Review{
		{ID: "r1", ProductID: "p1", Author: "Anne", Rating: 4, Body: "Prima."},
	}
)

type fakeSource struct{}

func (fakeSource) ListProducts(context.Context) ([]catalog.Product, error) {
	return append([]catalog.Product(nil), fixtureProducts...), nil
}
func (fakeSource) ListArticles(context.Context) ([]catalog.Article, error) {
	return append([]catalog.Article(nil), fixtureArticles...), nil
}
func (fakeSource) ListReviews(context.Context) ([]catalog.Review, error) {
	return append([]catalog.Review(nil), fixtureReviews...), nil
}

type click struct{ product, source, country string }

type fakeStore struct {
	mu     sync.Mutex
	seq    int
	known  map[string]bool
	clicks []click
}

func newFakeStore() *fakeStore {
	return &fakeStore{known: map[string]bool{"p1": true, "p2": true, "a1": true}}
}

func (f *fakeStore) id(prefix string) string {
	f.seq++
	id := fmt.Sprintf("%s-%d", prefix, f.seq)
	f.known[id] = true
	return id
}

func (f *fakeStore) AddProduct(_ context.Context, p catalog.Product) (catalog.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = f.id("p")
	p.Slug = p.EffectiveSlug()
	return p, nil
}

func (f *fakeStore) RemoveProduct(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.known[id] {
		return fmt.Errorf("remove product %s: %w", id, catalog.ErrNotFound)
	}
	delete(f.known, id)
	return nil
}

func (f *fakeStore) AddReview(_ context.Context, r catalog.Review) (catalog.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = f.id("r")
	return r, nil
}

func (f *fakeStore) SaveArticle(_ context.Context, a catalog.Article) (catalog.Article, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID == "" {
		a.ID = f.id("a")
	}
	a.Slug = a.EffectiveSlug()
	a.UpdatedAt = updated
	return a, nil
}

func (f *fakeStore) DeleteArticle(_ context.Context, id string) error {
	return f.RemoveProduct(context.Background(), id)
}

func (f *fakeStore) RecordClick(_ context.Context, productID, source, country string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clicks = append(f.clicks, click{productID, source, country})
	return nil
}

func (f *fakeStore) ClickCounts(context.Context, time.Time) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]int{}
	for _, c := range f.clicks {
		out[c.product]++
	}
	return out, nil
}

const (
	adminEmail    = "admin@productpraat.nl"
	adminPassword = "geheim"
	adminToken    = "tok-admin"
)

type fakeSessions struct {
	mu     sync.Mutex
	tokens map[string]auth.User
}

func (f *fakeSessions) Lookup(_ context.Context, tok string) (auth.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.tokens[tok]
	if !ok {
		return auth.Session{}, auth.ErrNoSession
	}
	return auth.Session{Token: tok, User: u}, nil
}

func (f *fakeSessions) Login(_ context.Context, email, password string) (auth.Session, error) {
	if email != adminEmail || password != adminPassword {
		return auth.Session{}, auth.ErrInvalidCredentials
	}
	u := auth.User{ID: "u1", Email: email}
	f.mu.Lock()
	f.tokens[adminToken] = u
	f.mu.Unlock()
	return auth.Session{Token: adminToken, User: u}, nil
}

func (f *fakeSessions) Logout(_ context.Context, tok string) error {
	f.mu.Lock()
	delete(f.tokens, tok)
	f.mu.Unlock()
	return nil
}

type env struct {
	t        *testing.T
	cat      *catalog.Catalog
	store    *fakeStore
	sessions *fakeSessions
	csrf     *auth.CSRF
	h        http.Handler
}

func newEnv(t *testing.T, load bool) *env {
	t.Helper()
	e := &env{
		t:        t,
		cat:      catalog.New(fakeSource{}),
		store:    newFakeStore(),
		sessions: &fakeSessions{tokens: map[string]auth.User{}},
		csrf:     auth.NewCSRF("", time.Hour),
	}
	if load {
		if err := e.cat.Load(context.Background()); err != nil {
			t.Fatalf("catalog load: %v", err)
		}
	}
	enricher, err := requestinfo.NewEnricher("")
	if err != nil {
		t.Fatalf("enricher: %v", err)
	}
	e.h = NewRouter(Deps{
		Catalog:  e.cat,
		Store:    e.store,
		Sessions: e.sessions,
		Cookie:   session.Cookie{Name: "pp_session", TTL: time.Hour},
		CSRF:     e.csrf,
		Enricher: enricher,
		BaseURL:  "https://www.productpraat.nl",
		Now:      func() time.Time { return time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC) },
	})
	return e
}

type reqOpt func(*http.Request)

func asAdmin(r *http.Request) {
	r.AddCookie(&http.Cookie{Name: "pp_session", Value: adminToken})
}

func withCSRF(tok string) reqOpt {
	return func(r *http.Request) { r.Header.Set(auth.CSRFHeader, tok) }
}

func withUA(ua string) reqOpt {
	return func(r *http.Request) { r.Header.Set("User-Agent", ua) }
}

func (e *env) do(method, target, body string, opts ...reqOpt) *httptest.ResponseRecorder {
	e.t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, o := range opts {
		o(req)
	}
	rr := httptest.NewRecorder()
	e.h.ServeHTTP(rr, req)
	return rr
}

// login signs the admin in and returns a CSRF token.
func (e *env) login() string {
	e.t.Helper()
	rr := e.do(http.MethodPost, "/api/login", `{"email":"`+adminEmail+`","password":"`+adminPassword+`"}`)
	if rr.Code != http.StatusOK {
		e.t.Fatalf("login status = %d: %s", rr.Code, rr.Body)
	}
	var out struct {
		CSRFToken string `json:"csrfToken"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil || out.CSRFToken == "" {
		e.t.Fatalf("login body: %v", err)
	}
	return out.CSRFToken
}

type pageBody struct {
	View      string `json:"view"`
	Status    int    `json:"status"`
	Path      string `json:"path"`
	Canonical string `json:"canonical"`
	Entity    struct {
		ID string `json:"id"`
	} `json:"entity"`
	Price   string           `json:"price"`
	Reviews []catalog.Review `json:"reviews"`
	Items   struct {
		Products []catalog.Product `json:"products"`
		Articles []catalog.Article `json:"articles"`
	} `json:"items"`
	Theme struct {
		Name string `json:"name"`
	} `json:"theme"`
	Head struct {
		Title  string            `json:"title"`
		JSONLD []json.RawMessage `json:"jsonld"`
		HTML   string            `json:"html"`
	} `json:"head"`
}

func decodePage(t *testing.T, rr *httptest.ResponseRecorder) pageBody {
	t.Helper()
	var pg pageBody
	if err := json.NewDecoder(rr.Body).Decode(&pg); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	return pg
}
