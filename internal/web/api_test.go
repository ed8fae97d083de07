package web

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/yanizio/productpraat/internal/routing"
)

func TestCompare(t *testing.T) {
	e := newEnv(t, true)

	rr := e.do(http.MethodGet, "/api/compare?ids=p1,p2", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rr.Code, rr.Body)
	}
	var out struct {
		Cheapest  string `json:"cheapest"`
		BestScore string `json:"bestScore"`
	}
	_ = json.NewDecoder(rr.Body).Decode(&out)
	if out.Cheapest != "p2" || out.BestScore != "p2" {
		t.Fatalf("comparison = %+v", out)
	}

	if rr := e.do(http.MethodGet, "/api/compare?ids=p1", ""); rr.Code != http.StatusBadRequest {
		t.Fatalf("single id status = %d", rr.Code)
	}
	if rr := e.do(http.MethodGet, "/api/compare?ids=p1,zzz", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("unknown id status = %d", rr.Code)
	}
}

func TestLoginLogout(t *testing.T) {
	e := newEnv(t, true)

	if rr := e.do(http.MethodPost, "/api/login", `{"email":"admin@productpraat.nl","password":"fout"}`); rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d", rr.Code)
	}
	if rr := e.do(http.MethodPost, "/api/login", `{"email":"geen-mail"}`); rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid body status = %d", rr.Code)
	}

	rr := e.do(http.MethodPost, "/api/login", `{"email":"admin@productpraat.nl","password":"geheim"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("login status = %d", rr.Code)
	}
	if ck := rr.Result().Cookies(); len(ck) != 1 || ck[0].Value != adminToken || !ck[0].HttpOnly {
		t.Fatalf("cookie = %+v", ck)
	}

	if rr := e.do(http.MethodGet, "/api/csrf", "", asAdmin); rr.Code != http.StatusOK {
		t.Fatalf("csrf status = %d", rr.Code)
	}

	if rr := e.do(http.MethodPost, "/api/logout", "", asAdmin); rr.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", rr.Code)
	}
	if rr := e.do(http.MethodGet, "/api/csrf", "", asAdmin); rr.Code != http.StatusUnauthorized {
		t.Fatalf("csrf after logout status = %d", rr.Code)
	}
}

func TestAdminGuards(t *testing.T) {
	e := newEnv(t, true)

	if rr := e.do(http.MethodPost, "/api/admin/reload", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d", rr.Code)
	}
	e.login()
	if rr := e.do(http.MethodPost, "/api/admin/reload", "", asAdmin); rr.Code != http.StatusForbidden {
		t.Fatalf("missing csrf status = %d", rr.Code)
	}
	if rr := e.do(http.MethodPost, "/api/admin/reload", "", asAdmin, withCSRF("bogus")); rr.Code != http.StatusForbidden {
		t.Fatalf("bad csrf status = %d", rr.Code)
	}
}

func TestAdminProductLifecycle(t *testing.T) {
	e := newEnv(t, true)
	tok := e.login()
	admin := []reqOpt{asAdmin, withCSRF(tok)}

	body := `{"brand":"Philips","model":"Airfryer XXL","category":"Airfryers","score":8,"price":199}`
	rr := e.do(http.MethodPost, "/api/admin/products", body, admin...)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add status = %d: %s", rr.Code, rr.Body)
	}
	var out struct {
		Entity struct {
			ID string `json:"id"`
		} `json:"entity"`
		Path string `json:"path"`
	}
	_ = json.NewDecoder(rr.Body).Decode(&out)
	if out.Path != "/shop/airfryers/philips-airfryer-xxl" {
		t.Fatalf("path = %s", out.Path)
	}

	// The live snapshot serves the new product without a reload.
	pg := decodePage(t, e.do(http.MethodGet, out.Path, ""))
	if pg.View != "product" || pg.Entity.ID != out.Entity.ID {
		t.Fatalf("new product not routable: %+v", pg)
	}

	// Same category and slug collides.
	if rr := e.do(http.MethodPost, "/api/admin/products", body, admin...); rr.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d", rr.Code)
	}
	// Unknown category.
	bad := `{"brand":"X","model":"Y","category":"boten"}`
	if rr := e.do(http.MethodPost, "/api/admin/products", bad, admin...); rr.Code != http.StatusBadRequest {
		t.Fatalf("unknown category status = %d", rr.Code)
	}

	// Review.
	review := `{"author":"Piet","rating":5,"body":"Top."}`
	if rr := e.do(http.MethodPost, "/api/admin/products/"+out.Entity.ID+"/reviews", review, admin...); rr.Code != http.StatusCreated {
		t.Fatalf("review status = %d: %s", rr.Code, rr.Body)
	}
	if got := len(e.cat.Snapshot().ReviewsFor(out.Entity.ID)); got != 1 {
		t.Fatalf("reviews in snapshot = %d", got)
	}
	if rr := e.do(http.MethodPost, "/api/admin/products/"+out.Entity.ID+"/reviews", `{"author":"Piet","rating":9,"body":"x"}`, admin...); rr.Code != http.StatusBadRequest {
		t.Fatalf("out of range rating status = %d", rr.Code)
	}

	// Delete.
	if rr := e.do(http.MethodDelete, "/api/admin/products/"+out.Entity.ID, "", admin...); rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}
	if rr := e.do(http.MethodGet, out.Path, ""); rr.Code != http.StatusNotFound {
		t.Fatalf("deleted product status = %d", rr.Code)
	}
	if rr := e.do(http.MethodDelete, "/api/admin/products/"+out.Entity.ID, "", admin...); rr.Code != http.StatusNotFound {
		t.Fatalf("second delete status = %d", rr.Code)
	}
}

func TestAdminArticles(t *testing.T) {
	e := newEnv(t, true)
	tok := e.login()
	admin := []reqOpt{asAdmin, withCSRF(tok)}

	// Slug collides with the fixture article.
	dup := `{"title":"Beste Koptelefoon","type":"koopgids"}`
	if rr := e.do(http.MethodPost, "/api/admin/articles", dup, admin...); rr.Code != http.StatusConflict {
		t.Fatalf("duplicate slug status = %d", rr.Code)
	}
	if rr := e.do(http.MethodPost, "/api/admin/articles", `{"title":"X","type":"roman"}`, admin...); rr.Code != http.StatusBadRequest {
		t.Fatalf("bad type status = %d", rr.Code)
	}

	rr := e.do(http.MethodPost, "/api/admin/articles", `{"title":"Wasmachine kopen","type":"koopgids"}`, admin...)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rr.Code, rr.Body)
	}
	a := e.cat.Snapshot().Articles[len(e.cat.Snapshot().Articles)-1]
	if routing.ArticlePath(&a) != "/artikelen/wasmachine-kopen" {
		t.Fatalf("article path = %s", routing.ArticlePath(&a))
	}

	// Updating an article may keep its own slug.
	upd := `{"id":"` + a.ID + `","title":"Wasmachine kopen","type":"koopgids","summary":"Nieuw"}`
	if rr := e.do(http.MethodPost, "/api/admin/articles", upd, admin...); rr.Code != http.StatusOK {
		t.Fatalf("update status = %d: %s", rr.Code, rr.Body)
	}

	// A new title without a slug keeps the published URL.
	retitle := `{"id":"` + a.ID + `","title":"Wasmachine kopen in 2025","type":"koopgids"}`
	if rr := e.do(http.MethodPost, "/api/admin/articles", retitle, admin...); rr.Code != http.StatusOK {
		t.Fatalf("retitle status = %d: %s", rr.Code, rr.Body)
	}
	if pg := decodePage(t, e.do(http.MethodGet, "/artikelen/wasmachine-kopen", "")); pg.View != "article" || pg.Entity.ID != a.ID {
		t.Fatalf("retitled article moved: view=%s id=%s", pg.View, pg.Entity.ID)
	}
	if rr := e.do(http.MethodPost, "/api/admin/articles", `{"id":"ghost","title":"Z","type":"review"}`, admin...); rr.Code != http.StatusNotFound {
		t.Fatalf("update unknown status = %d", rr.Code)
	}

	if rr := e.do(http.MethodDelete, "/api/admin/articles/"+a.ID, "", admin...); rr.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rr.Code)
	}
	if rr := e.do(http.MethodGet, "/artikelen/wasmachine-kopen", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("deleted article status = %d", rr.Code)
	}
}

func TestAdminReloadAndClicks(t *testing.T) {
	e := newEnv(t, true)
	tok := e.login()
	admin := []reqOpt{asAdmin, withCSRF(tok)}

	before := e.cat.Snapshot().Version
	rr := e.do(http.MethodPost, "/api/admin/reload", "", admin...)
	if rr.Code != http.StatusOK {
		t.Fatalf("reload status = %d", rr.Code)
	}
	if e.cat.Snapshot().Version <= before {
		t.Fatal("reload did not bump the snapshot version")
	}

	e.do(http.MethodGet, "/go/p1", "")
	rr = e.do(http.MethodGet, "/api/admin/clicks?days=7", "", admin...)
	var out struct {
		Clicks map[string]int `json:"clicks"`
	}
	_ = json.NewDecoder(rr.Body).Decode(&out)
	if out.Clicks["p1"] != 1 {
		t.Fatalf("clicks = %+v", out.Clicks)
	}
}

func TestBolSearchNotConfigured(t *testing.T) {
	e := newEnv(t, true)
	e.login()
	if rr := e.do(http.MethodGet, "/api/bol/search?q=airfryer", "", asAdmin); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestUnknownAPIEndpoint(t *testing.T) {
	e := newEnv(t, true)
	if rr := e.do(http.MethodGet, "/api/nope", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rr.Code)
	}
}
