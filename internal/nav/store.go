// internal/nav/store.go
//
// Finite-state view store.
//
// Context
// -------
// Every change of view goes through Store.Dispatch.  Actions come in three
// kinds:
//
//   • ActionNavigate – an explicit in-app navigation call.
//   • ActionRoute    – the first classification of a loaded path.
//   • ActionPop      – a back/forward step replayed from History.
//
// Which kinds a state accepts is data (the allowed table below), so the
// transition rules can be tested without a router.  not-found only accepts
// explicit navigation and history steps; a fresh route pass cannot leave it.
//
// Notes
// -----
// • The admin view requires an authenticated session; the reducer rewrites
//   an unauthenticated admin target to login.
// • Subscribers run synchronously after each accepted transition.

package nav

import (
	"errors"
	"fmt"
	"sync"

	"github.com/yanizio/productpraat/internal/catalog"
)

// ErrTransition is returned when a state rejects an action.
var ErrTransition = errors.New("nav: transition not allowed")

// ActionKind says where an action came from.
type ActionKind int

const (
	ActionNavigate ActionKind = iota
	ActionRoute
	ActionPop
)

func (k ActionKind) String() string {
	switch k {
	case ActionNavigate:
		return "navigate"
	case ActionRoute:
		return "route"
	case ActionPop:
		return "pop"
	default:
		return "unknown"
	}
}

// Action requests a move to View.
type Action struct {
	Kind     ActionKind
	View     View
	Path     string
	Authed   bool
	Category string
	Query    string
	Product  *catalog.Product
	Article  *catalog.Article
}

// State is the current view plus whatever fills it.
type State struct {
	View     View             `json:"view"`
	Path     string           `json:"path"`
	Category string           `json:"category,omitempty"`
	Query    string           `json:"query,omitempty"`
	Product  *catalog.Product `json:"product,omitempty"`
	Article  *catalog.Article `json:"article,omitempty"`
}

var everyAction = map[ActionKind]bool{ActionNavigate: true, ActionRoute: true, ActionPop: true}

// allowed[from] is the set of action kinds a state accepts.
var allowed = func() map[View]map[ActionKind]bool {
	m := make(map[View]map[ActionKind]bool, len(viewNames))
	for _, v := range Views() {
		m[v] = everyAction
	}
	m[ViewNotFound] = map[ActionKind]bool{ActionNavigate: true, ActionPop: true}
	return m
}()

// Allowed reports whether from accepts an action of kind k.
func Allowed(from View, k ActionKind) bool { return allowed[from][k] }

// Store holds the current State.  Zero value is unusable; call NewStore.
type Store struct {
	mu    sync.Mutex
	state State
	subs  []func(State)
}

// NewStore returns a store in the home view.
func NewStore() *Store {
	return &Store{state: State{View: ViewHome, Path: "/"}}
}

// State returns the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to run after every accepted transition.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// Dispatch applies a and returns the resulting state.  A rejected action
// leaves the state untouched and returns ErrTransition.
func (s *Store) Dispatch(a Action) (State, error) {
	s.mu.Lock()
	from := s.state.View
	if !Allowed(from, a.Kind) {
		st := s.state
		s.mu.Unlock()
		return st, fmt.Errorf("%w: %s from %s", ErrTransition, a.Kind, from)
	}
	s.state = reduce(a)
	st := s.state
	subs := s.subs
	s.mu.Unlock()

	for _, fn := range subs {
		fn(st)
	}
	return st, nil
}

// reduce computes the next state for an accepted action.
func reduce(a Action) State {
	view := a.View
	if view == ViewAdmin && !a.Authed {
		view = ViewLogin
	}
	st := State{View: view, Path: a.Path}
	switch view {
	case ViewProduct:
		st.Product = a.Product
		st.Category = a.Category
	case ViewArticle:
		st.Article = a.Article
	case ViewCategory:
		st.Category = a.Category
	case ViewSearch:
		st.Query = a.Query
	}
	return st
}
