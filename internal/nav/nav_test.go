package nav

import (
	"errors"
	"testing"

	"github.com/yanizio/productpraat/internal/catalog"
)

type fakeSource struct{ snap *catalog.Snapshot }

func (f *fakeSource) Snapshot() *catalog.Snapshot { return f.snap }

func loaded() *fakeSource {
	return &fakeSource{snap: &catalog.Snapshot{
		Loaded: true,
		Products: []catalog.Product{
			{ID: "p1", Brand: "Foo", Model: "Bar", Category: "wasmachines"},
			{ID: "p2", Brand: "Sony", Model: "WH-1000XM5", Category: "koptelefoons"},
		},
		Articles: []catalog.Article{
			{ID: "a1", Title: "Beste koptelefoon", Type: catalog.ArticleTopList},
		},
	}}
}

func authed(v bool) func() bool { return func() bool { return v } }

func TestStart_Home(t *testing.T) {
	n := New(loaded(), nil)
	st, err := n.Start("/")
	if err != nil || st.View != ViewHome {
		t.Fatalf("Start(/) = %v, %v", st.View, err)
	}
}

func TestStart_HomeRegardlessOfLoadOrder(t *testing.T) {
	src := &fakeSource{snap: &catalog.Snapshot{}}
	n := New(src, nil)

	st, _ := n.Start("/")
	if st.View != ViewHome {
		t.Fatalf("before load view = %v, want home", st.View)
	}
	if p, ok := n.Pending(); !ok || p != "/" {
		t.Fatalf("pending = %q, %v", p, ok)
	}

	src.snap = loaded().snap
	st, err := n.Ready()
	if err != nil || st.View != ViewHome {
		t.Fatalf("after load view = %v, %v", st.View, err)
	}
	if _, ok := n.Pending(); ok {
		t.Fatal("pending not cleared")
	}
}

func TestStart_DeferredUntilLoaded(t *testing.T) {
	src := &fakeSource{snap: &catalog.Snapshot{}}
	n := New(src, nil)

	if st, _ := n.Start("/shop/wasmachines/foo-bar"); st.View != ViewHome {
		t.Fatalf("routing decision made before load: %v", st.View)
	}
	if st, _ := n.Ready(); st.View != ViewHome {
		t.Fatalf("Ready before load changed view: %v", st.View)
	}

	src.snap = loaded().snap
	st, _ := n.Ready()
	if st.View != ViewProduct || st.Product.ID != "p1" {
		t.Fatalf("replayed state = %+v", st)
	}
}

func TestStart_AdminGating(t *testing.T) {
	for _, path := range []string{"/admin", "/dashboard"} {
		if st, _ := New(loaded(), authed(true)).Start(path); st.View != ViewAdmin {
			t.Errorf("%s with session = %v, want admin", path, st.View)
		}
		if st, _ := New(loaded(), authed(false)).Start(path); st.View != ViewLogin {
			t.Errorf("%s without session = %v, want login", path, st.View)
		}
	}
}

func TestStart_Resolutions(t *testing.T) {
	tests := []struct {
		path     string
		view     View
		wantPath string
	}{
		{"/shop/Wasmachines/Foo-Bar", ViewProduct, "/shop/wasmachines/foo-bar"},
		{"/shop/koptelefoons", ViewCategory, "/shop/koptelefoons"},
		{"/artikelen", ViewArticles, "/artikelen"},
		{"/artikelen/beste-koptelefoon", ViewArticle, "/artikelen/beste-koptelefoon"},
		{"/artikelen/non-existent-slug", ViewNotFound, "/artikelen/non-existent-slug"},
		{"/shop/wasmachines/missing", ViewNotFound, "/shop/wasmachines/missing"},
		{"/about", ViewAbout, "/about"},
		{"/contact", ViewContact, "/contact"},
		{"/zoeken?q=sony", ViewSearch, "/zoeken?q=sony"},
		{"/onbekend", ViewHome, "/"},
		{"//evil/artikelen", ViewHome, "/"},
		{"//x/artikelen/nope", ViewHome, "/"},
		{"//x/shop/wasmachines/foo-bar", ViewHome, "/"},
		{"/zoeken?q=sony#top", ViewSearch, "/zoeken?q=sony"},
	}
	for _, tt := range tests {
		st, err := New(loaded(), nil).Start(tt.path)
		if err != nil {
			t.Errorf("%s: %v", tt.path, err)
			continue
		}
		if st.View != tt.view || st.Path != tt.wantPath {
			t.Errorf("%s → %v %q, want %v %q", tt.path, st.View, st.Path, tt.view, tt.wantPath)
		}
	}
}

func TestOpenAndHistory(t *testing.T) {
	src := loaded()
	n := New(src, nil)
	_, _ = n.Start("/")

	p := src.snap.Products[1]
	st, err := n.Open(ToProduct(&p))
	if err != nil || st.View != ViewProduct {
		t.Fatalf("Open product = %v, %v", st.View, err)
	}
	if got := n.hist.Current(); got != "/shop/koptelefoons/sony-wh-1000xm5" {
		t.Fatalf("pushed path = %q", got)
	}

	_, _ = n.Open(ToView(ViewArticles))
	st, moved := n.Back()
	if !moved || st.View != ViewProduct || st.Product.ID != "p2" {
		t.Fatalf("Back = %+v, moved=%v", st, moved)
	}
	st, _ = n.Back()
	if st.View != ViewHome {
		t.Fatalf("second Back = %v, want home", st.View)
	}
	if _, moved := n.Back(); moved {
		t.Fatal("Back past the oldest entry moved")
	}
	st, moved = n.Forward()
	if !moved || st.View != ViewProduct {
		t.Fatalf("Forward = %v, moved=%v", st.View, moved)
	}
}

func TestPushTruncatesForwardEntries(t *testing.T) {
	n := New(loaded(), nil)
	_, _ = n.Start("/")
	_, _ = n.Open(ToView(ViewAbout))
	_, _ = n.Open(ToView(ViewContact))
	n.Back()
	_, _ = n.Open(ToView(ViewArticles))

	if n.hist.CanForward() {
		t.Fatal("forward entries survived a push")
	}
	if n.hist.Len() != 3 {
		t.Fatalf("len = %d, want 3", n.hist.Len())
	}
}

func TestPopUnmatchedKeepsView(t *testing.T) {
	n := New(loaded(), nil)
	_, _ = n.Start("/onbekend")
	_, _ = n.Open(ToView(ViewContact))

	st, moved := n.Back()
	if !moved || st.View != ViewContact {
		t.Fatalf("pop to unmatched path changed view to %v", st.View)
	}
}

func TestPopDeferredWhileUnloaded(t *testing.T) {
	src := loaded()
	n := New(src, nil)
	_, _ = n.Start("/")
	_, _ = n.Open(ToView(ViewAbout))

	src.snap = &catalog.Snapshot{}
	n.Back()
	if st := n.State(); st.View != ViewAbout {
		t.Fatalf("pop resolved without a catalog: %v", st.View)
	}
	if p, ok := n.Pending(); !ok || p != "/" {
		t.Fatalf("pending = %q, %v", p, ok)
	}
}

func TestNotFoundLeftOnlyByNavigation(t *testing.T) {
	n := New(loaded(), nil)
	if st, _ := n.Start("/artikelen/nope"); st.View != ViewNotFound {
		t.Fatalf("view = %v, want not-found", st.View)
	}

	_, err := n.store.Dispatch(Action{Kind: ActionRoute, View: ViewHome, Path: "/"})
	if !errors.Is(err, ErrTransition) {
		t.Fatalf("route out of not-found: err = %v", err)
	}
	if n.State().View != ViewNotFound {
		t.Fatal("rejected action changed state")
	}

	st, err := n.Open(ToView(ViewHome))
	if err != nil || st.View != ViewHome {
		t.Fatalf("explicit navigation = %v, %v", st.View, err)
	}
}

func TestTransitionTable(t *testing.T) {
	for _, v := range Views() {
		if !Allowed(v, ActionNavigate) || !Allowed(v, ActionPop) {
			t.Errorf("%v must accept navigate and pop", v)
		}
		want := v != ViewNotFound
		if got := Allowed(v, ActionRoute); got != want {
			t.Errorf("Allowed(%v, route) = %v, want %v", v, got, want)
		}
	}
}

func TestOpenAdminWithoutSession(t *testing.T) {
	n := New(loaded(), authed(false))
	st, _ := n.Open(ToView(ViewAdmin))
	if st.View != ViewLogin {
		t.Fatalf("view = %v, want login", st.View)
	}
}

func TestSubscribe(t *testing.T) {
	s := NewStore()
	var seen []View
	s.Subscribe(func(st State) { seen = append(seen, st.View) })
	_, _ = s.Dispatch(ToView(ViewAbout))
	_, _ = s.Dispatch(ToSearch("tv"))
	if len(seen) != 2 || seen[1] != ViewSearch {
		t.Fatalf("seen = %v", seen)
	}
}

func TestViewString(t *testing.T) {
	if ViewArticles.String() != "articles-overview" || ViewNotFound.String() != "not-found" {
		t.Fatal("unexpected view names")
	}
	if View(99).String() != "unknown" {
		t.Fatal("out of range view")
	}
}
