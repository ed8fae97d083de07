// internal/nav/navigator.go
//
// Navigator ties Store, History, and the catalog together.
//
// Workflow
// --------
//  1. Start(target) classifies the first path.  When the catalog has not
//     loaded yet no routing decision is made: the path is parked and the
//     view stays home until Ready() replays it.
//  2. Open(action) is explicit in-app navigation.  The canonical path is
//     synthesized from the entity, pushed onto History, and dispatched
//     without re-parsing.
//  3. Back/Forward move History; the pop listener re-runs Classify and
//     Resolve against the already-loaded snapshot.
//
// An unmatched path never changes the view.  A matched path whose entity is
// missing moves to not-found.

package nav

import (
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/productpraat/internal/catalog"
	"github.com/yanizio/productpraat/internal/routing"
)

// SnapshotSource supplies the current catalog.  *catalog.Catalog satisfies
// it.
type SnapshotSource interface {
	Snapshot() *catalog.Snapshot
}

// Navigator is single-session state; create one per visitor or request.
type Navigator struct {
	src     SnapshotSource
	authed  func() bool
	store   *Store
	hist    *History
	pending *string
}

// New returns a Navigator in the home view.  authed may be nil, meaning no
// session.
func New(src SnapshotSource, authed func() bool) *Navigator {
	if authed == nil {
		authed = func() bool { return false }
	}
	n := &Navigator{
		src:    src,
		authed: authed,
		store:  NewStore(),
		hist:   NewHistory("/"),
	}
	n.hist.Listen(n.onPop)
	return n
}

// State returns the current view state.
func (n *Navigator) State() State { return n.store.State() }

// Pending returns the path parked while the catalog was loading.
func (n *Navigator) Pending() (string, bool) {
	if n.pending == nil {
		return "", false
	}
	return *n.pending, true
}

// Start runs the initial classification for target (path plus optional
// query).
func (n *Navigator) Start(target string) (State, error) {
	n.hist.Replace(target)
	if !n.src.Snapshot().Loaded {
		n.pending = &target
		return n.store.State(), nil
	}
	return n.route(ActionRoute, target)
}

// Ready replays a parked path once the catalog has loaded.
func (n *Navigator) Ready() (State, error) {
	if n.pending == nil || !n.src.Snapshot().Loaded {
		return n.store.State(), nil
	}
	target := *n.pending
	n.pending = nil
	return n.route(ActionRoute, target)
}

// Open performs explicit navigation.  The action's Path must already be
// canonical; use the To* constructors.
func (n *Navigator) Open(a Action) (State, error) {
	a.Kind = ActionNavigate
	a.Authed = n.authed()
	n.hist.Push(a.Path)
	return n.store.Dispatch(a)
}

// Back steps back in history.  moved is false at the oldest entry.
func (n *Navigator) Back() (st State, moved bool) {
	moved = n.hist.Back()
	return n.store.State(), moved
}

// Forward steps forward in history.
func (n *Navigator) Forward() (st State, moved bool) {
	moved = n.hist.Forward()
	return n.store.State(), moved
}

func (n *Navigator) onPop(path string) {
	if !n.src.Snapshot().Loaded {
		n.pending = &path
		return
	}
	if _, err := n.route(ActionPop, path); err != nil {
		zap.L().Debug("history pop rejected", zap.String("path", path), zap.Error(err))
	}
}

func (n *Navigator) route(kind ActionKind, target string) (State, error) {
	u := splitTarget(target)
	res := routing.Resolve(routing.ClassifyURL(u), n.src.Snapshot())
	a, ok := ActionFor(res, u.Path)
	if !ok {
		return n.store.State(), nil
	}
	a.Kind = kind
	a.Authed = n.authed()
	return n.store.Dispatch(a)
}

// splitTarget separates a request target into path and query without
// reading it as a URL reference, so "//host/x" stays a path with an empty
// first segment.
func splitTarget(target string) *url.URL {
	target, _, _ = strings.Cut(target, "#")
	path, rawQuery, _ := strings.Cut(target, "?")
	if p, err := url.PathUnescape(path); err == nil {
		path = p
	}
	return &url.URL{Path: path, RawQuery: rawQuery}
}

// ActionFor maps a resolution onto an action.  ok is false for unmatched
// paths, which must leave the current view alone.
func ActionFor(res routing.Resolution, requested string) (a Action, ok bool) {
	switch res.Outcome {
	case routing.OutcomeUnmatched:
		return Action{}, false
	case routing.OutcomeNotFound:
		return Action{View: ViewNotFound, Path: requested}, true
	case routing.OutcomeFound:
		if res.Product != nil {
			return ToProduct(res.Product), true
		}
		return ToArticle(res.Article), true
	}

	switch res.Intent.Kind {
	case routing.KindCategory:
		return ToCategory(res.Intent.Category), true
	case routing.KindSearch:
		return ToSearch(res.Intent.Query), true
	case routing.KindArticles:
		return ToView(ViewArticles), true
	case routing.KindAbout:
		return ToView(ViewAbout), true
	case routing.KindContact:
		return ToView(ViewContact), true
	case routing.KindAdmin, routing.KindDashboard:
		a := ToView(ViewAdmin)
		a.Path = routing.BuildPath("", res.Intent.Kind.String())
		return a, true
	default:
		return ToView(ViewHome), true
	}
}

//
// action constructors
//

var staticPaths = map[View]string{
	ViewHome:     "/",
	ViewAbout:    "/about",
	ViewContact:  "/contact",
	ViewArticles: routing.ArticlesPath(),
	ViewAdmin:    "/admin",
	ViewLogin:    "/admin",
	ViewSearch:   routing.SearchPath(""),
}

// ToView targets an entity-less view.  Views without a fixed path fall
// back to home.
func ToView(v View) Action {
	p, ok := staticPaths[v]
	if !ok {
		return Action{View: ViewHome, Path: "/"}
	}
	return Action{View: v, Path: p}
}

// ToProduct targets a product detail view.
func ToProduct(p *catalog.Product) Action {
	return Action{
		View:     ViewProduct,
		Path:     routing.ProductPath(p),
		Category: p.Category,
		Product:  p,
	}
}

// ToArticle targets an article detail view.
func ToArticle(a *catalog.Article) Action {
	return Action{View: ViewArticle, Path: routing.ArticlePath(a), Article: a}
}

// ToCategory targets a category listing.
func ToCategory(key string) Action {
	return Action{View: ViewCategory, Path: routing.CategoryPath(key), Category: key}
}

// ToSearch targets the search view for q.
func ToSearch(q string) Action {
	return Action{View: ViewSearch, Path: routing.SearchPath(q), Query: q}
}
