// internal/web/api.go
//
// Public and session-scoped JSON endpoints.
//
//   • GET  /api/compare?ids=a,b     – side-by-side comparison.
//   • POST /api/login               – email + password → session cookie.
//   • POST /api/logout              – drops the session.
//   • GET  /api/csrf                – fresh CSRF token (session required).
//   • GET  /api/bol/search?q=       – partner search for the import form.

package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/productpraat/internal/affiliate"
	"github.com/yanizio/productpraat/internal/auth"
	"github.com/yanizio/productpraat/internal/catalog"
	"github.com/yanizio/productpraat/internal/filter"
)

func (h *handler) compare(w http.ResponseWriter, r *http.Request) {
	var ids []string
	for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) < 2 {
		writeError(w, http.StatusBadRequest, "need at least two product ids")
		return
	}
	if len(ids) > filter.MaxCompare {
		writeError(w, http.StatusBadRequest, "too many product ids")
		return
	}

	cmp, err := filter.Compare(h.Catalog.Snapshot(), ids)
	if errors.Is(err, catalog.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "compare failed")
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

//
// sessions
//

type loginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginOutput struct {
	User      auth.User `json:"user"`
	CSRFToken string    `json:"csrfToken"`
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var in loginInput
	if err := h.decode(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "email and password required")
		return
	}

	sess, err := h.Sessions.Login(r.Context(), in.Email, in.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		zap.L().Error("login failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	tok, err := h.CSRF.Generate()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "csrf token")
		return
	}
	h.Cookie.Set(w, r, sess.Token)
	zap.L().Info("admin login", zap.String("user", sess.User.ID))
	writeJSON(w, http.StatusOK, loginOutput{User: sess.User, CSRFToken: tok})
}

func (h *handler) logout(w http.ResponseWriter, r *http.Request) {
	if tok, ok := h.Cookie.Token(r); ok {
		if err := h.Sessions.Logout(r.Context(), tok); err != nil {
			zap.L().Warn("logout failed", zap.Error(err))
		}
	}
	h.Cookie.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) csrfToken(w http.ResponseWriter, r *http.Request) {
	tok, err := h.CSRF.Generate()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "csrf token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": tok})
}

//
// partner search
//

type bolSearchOutput struct {
	Total    int                 `json:"total"`
	Results  []affiliate.Product `json:"results"`
	Analysis affiliate.Analysis  `json:"analysis"`
}

func (h *handler) bolSearch(w http.ResponseWriter, r *http.Request) {
	if !h.Affiliate.Configured() {
		writeError(w, http.StatusServiceUnavailable, "partner api not configured")
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "q required")
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))

	res, err := h.Affiliate.SearchProducts(r.Context(), q, page, 20, partnerCountry(r))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bolSearchOutput{
		Total:    res.TotalResults,
		Results:  res.Results,
		Analysis: affiliate.Analyze(q, res.Results),
	})
}

// writeUpstreamError maps partner API failures onto gateway statuses.
func writeUpstreamError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, affiliate.ErrNotFound):
		writeError(w, http.StatusNotFound, "product not found at partner")
	case errors.Is(err, affiliate.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "partner api not configured")
	default:
		zap.L().Warn("partner api call failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "partner api unavailable")
	}
}
