package affiliate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

type fakeBol struct {
	tokenCalls atomic.Int32
	apiCalls   atomic.Int32
	handler    func(w http.ResponseWriter, r *http.Request, n int32)
}

func (f *fakeBol) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		f.tokenCalls.Add(1)
		if r.URL.Query().Get("grant_type") != "client_credentials" {
			t.Errorf("grant_type = %q", r.URL.Query().Get("grant_type"))
		}
		id, secret, ok := r.BasicAuth()
		if !ok || id != "id" || secret != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok", "expires_in": 300})
	})
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		n := f.apiCalls.Add(1)
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		f.handler(w, r, n)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(srv *httptest.Server) *Client {
	return New(Config{
		ClientID:      "id",
		ClientSecret:  "secret",
		SiteCode:      "12345",
		BaseURL:       srv.URL + "/api",
		AuthURL:       srv.URL + "/token",
		RatePerSecond: 1000,
		Burst:         100,
		MaxElapsed:    2 * time.Second,
	})
}

func TestSearchProducts(t *testing.T) {
	f := &fakeBol{handler: func(w http.ResponseWriter, r *http.Request, _ int32) {
		q := r.URL.Query()
		if r.URL.Path != "/api/products/search" {
			t.Errorf("path = %s", r.URL.Path)
		}
		for k, want := range map[string]string{
			"search-term": "airfryer", "page": "2", "page-size": "5", "country-code": "BE",
			"include-image": "true", "include-offer": "true", "include-rating": "true",
		} {
			if got := q.Get(k); got != want {
				t.Errorf("%s = %q, want %q", k, got, want)
			}
		}
		_, _ = w.Write([]byte(`{"totalResults":1,"results":[{"ean":"871","title":"Philips Airfryer XL","url":"https://www.bol.com/p/1","offer":{"price":129.99},"rating":4.5}]}`))
	}}
	c := newTestClient(f.server(t))

	res, err := c.SearchProducts(context.Background(), "airfryer", 2, 5, "BE")
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalResults != 1 || res.Results[0].Price() != 129.99 {
		t.Fatalf("result = %+v", res)
	}
	want := "https://partner.bol.com/click/click?p=2&t=url&s=12345&f=TXL&url=https%3A%2F%2Fwww.bol.com%2Fp%2F1&name=Philips%20Airfryer%20XL"
	if res.Results[0].AffiliateLink != want {
		t.Fatalf("link = %s", res.Results[0].AffiliateLink)
	}
}

func TestTokenCached(t *testing.T) {
	f := &fakeBol{handler: func(w http.ResponseWriter, _ *http.Request, _ int32) {
		_, _ = w.Write([]byte(`{"results":[]}`))
	}}
	c := newTestClient(f.server(t))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.SearchProducts(ctx, "tv", 1, 10, ""); err != nil {
			t.Fatal(err)
		}
	}
	if n := f.tokenCalls.Load(); n != 1 {
		t.Fatalf("token fetched %d times, want 1", n)
	}

	// Within 30 s of expiry the token is refreshed.
	c.now = func() time.Time { return time.Now().Add(280 * time.Second) }
	if _, err := c.SearchProducts(ctx, "tv", 1, 10, ""); err != nil {
		t.Fatal(err)
	}
	if n := f.tokenCalls.Load(); n != 2 {
		t.Fatalf("token fetched %d times, want 2", n)
	}
}

func TestGetProductNotFoundIsNotRetried(t *testing.T) {
	f := &fakeBol{handler: func(w http.ResponseWriter, _ *http.Request, _ int32) {
		w.WriteHeader(http.StatusNotFound)
	}}
	c := newTestClient(f.server(t))

	_, err := c.GetProduct(context.Background(), "000", "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if n := f.apiCalls.Load(); n != 1 {
		t.Fatalf("api called %d times", n)
	}
}

func TestServerErrorRetried(t *testing.T) {
	f := &fakeBol{handler: func(w http.ResponseWriter, r *http.Request, n int32) {
		if n == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"ean":"871","title":"Sony WH-1000XM5","url":"https://www.bol.com/p/2"}`))
	}}
	c := newTestClient(f.server(t))

	p, err := c.GetProduct(context.Background(), "871", "NL")
	if err != nil {
		t.Fatal(err)
	}
	if p.Title != "Sony WH-1000XM5" || p.AffiliateLink == "" {
		t.Fatalf("product = %+v", p)
	}
	if n := f.apiCalls.Load(); n != 2 {
		t.Fatalf("api called %d times, want 2", n)
	}
}

func TestBadCredentials(t *testing.T) {
	f := &fakeBol{handler: func(http.ResponseWriter, *http.Request, int32) {}}
	srv := f.server(t)
	c := newTestClient(srv)
	c.cfg.ClientSecret = "wrong"

	if _, err := c.SearchProducts(context.Background(), "tv", 1, 10, ""); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v", err)
	}
	if f.apiCalls.Load() != 0 {
		t.Fatal("api called without a token")
	}
}

func TestNotConfigured(t *testing.T) {
	c := New(Config{})
	if c.Configured() {
		t.Fatal("empty config reported as configured")
	}
	if _, err := c.SearchProducts(context.Background(), "tv", 1, 10, ""); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v", err)
	}
}
