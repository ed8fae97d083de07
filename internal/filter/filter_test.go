package filter

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/yanizio/productpraat/internal/catalog"
)

func products() []catalog.Product {
	return []catalog.Product{
		{ID: "p1", Brand: "Miele", Model: "WWD 320", Category: "wasmachines", Score: 8.5, Price: 899},
		{ID: "p2", Brand: "Bosch", Model: "Serie 6", Category: "wasmachines", Score: 9.1, Price: 649},
		{ID: "p3", Brand: "AEG", Model: "L7FE", Category: "wasmachines", Score: 8.5, Price: 0},
		{ID: "p4", Brand: "Sony", Model: "WH-1000XM5", Category: "koptelefoons", Score: 9.4, Price: 349},
	}
}

func ids(ps []catalog.Product) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func TestProducts(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want []string
	}{
		{"default score desc", Query{}, []string{"p4", "p2", "p1", "p3"}},
		{"category", Query{Category: "Wasmachines"}, []string{"p2", "p1", "p3"}},
		{"min score", Query{MinScore: 9}, []string{"p4", "p2"}},
		{"price window", Query{MinPrice: 300, MaxPrice: 700}, []string{"p4", "p2"}},
		{"price asc", Query{Category: "wasmachines", Sort: SortPriceAsc}, []string{"p3", "p2", "p1"}},
		{"price desc", Query{Sort: SortPriceDesc}, []string{"p1", "p2", "p4", "p3"}},
		{"name", Query{Sort: SortName}, []string{"p3", "p2", "p1", "p4"}},
		{"unknown sort", Query{Sort: "bogus"}, []string{"p4", "p2", "p1", "p3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ids(Products(products(), tt.q))); diff != "" {
				t.Errorf("Products() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProductsDoesNotReorderInput(t *testing.T) {
	in := products()
	_ = Products(in, Query{Sort: SortPriceAsc})
	if diff := cmp.Diff([]string{"p1", "p2", "p3", "p4"}, ids(in)); diff != "" {
		t.Fatalf("input reordered:\n%s", diff)
	}
}

func TestArticles(t *testing.T) {
	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	list := []catalog.Article{
		{ID: "a1", Category: "wasmachines", Type: catalog.ArticleBuyersGuide, UpdatedAt: now.Add(-48 * time.Hour)},
		{ID: "a2", Category: "koptelefoons", Type: catalog.ArticleTopList, UpdatedAt: now},
		{ID: "a3", Category: "wasmachines", Type: catalog.ArticleTopList, UpdatedAt: now.Add(-time.Hour)},
	}
	got := Articles(list, ArticleQuery{})
	if got[0].ID != "a2" || got[2].ID != "a1" {
		t.Fatalf("order = %v, %v, %v", got[0].ID, got[1].ID, got[2].ID)
	}
	got = Articles(list, ArticleQuery{Category: "wasmachines", Type: catalog.ArticleTopList})
	if len(got) != 1 || got[0].ID != "a3" {
		t.Fatalf("filtered = %+v", got)
	}
}

func TestSearch(t *testing.T) {
	snap := &catalog.Snapshot{
		Loaded:   true,
		Version:  1,
		Products: products(),
		Articles: []catalog.Article{{ID: "a1", Title: "De beste koptelefoons van 2026"}},
	}
	s := NewSearcher(8)

	r := s.Search(snap, "wh 1000")
	if len(r.Products) != 1 || r.Products[0].ID != "p4" {
		t.Fatalf("wh 1000 → %v", ids(r.Products))
	}
	r = s.Search(snap, "KOPTELÉFOON")
	if len(r.Products) != 1 || len(r.Articles) != 1 {
		t.Fatalf("koptelefoon → %d products, %d articles", len(r.Products), len(r.Articles))
	}
	if r.Query != "KOPTELÉFOON" {
		t.Fatalf("query echoed as %q", r.Query)
	}
	if r := s.Search(snap, "  !! "); len(r.Products)+len(r.Articles) != 0 {
		t.Fatal("blank query matched")
	}
}

func TestSearchCacheKeyedOnVersion(t *testing.T) {
	s := NewSearcher(8)
	v1 := &catalog.Snapshot{Loaded: true, Version: 1, Products: products()}
	if r := s.Search(v1, "bosch"); len(r.Products) != 1 {
		t.Fatal("bosch not found")
	}
	v2 := v1.WithoutProduct("p2")
	if r := s.Search(v2, "bosch"); len(r.Products) != 0 {
		t.Fatal("stale cached result after catalog change")
	}
}

func TestCompare(t *testing.T) {
	snap := &catalog.Snapshot{Loaded: true, Products: products()}

	c, err := Compare(snap, []string{"p1", "p2", "p3", "p1"})
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"p1", "p2", "p3"}, ids(c.Products)); diff != "" {
		t.Fatalf("products:\n%s", diff)
	}
	if c.Cheapest != "p2" || c.BestScore != "p2" || c.PriceGap != 250 {
		t.Fatalf("comparison = %+v", c)
	}

	if _, err := Compare(snap, []string{"p1", "nope"}); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}
