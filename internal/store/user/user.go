// Package user holds the logged-in identity of a live session.
package user

import (
	"github.com/vango-dev/starter/pkg/store"
	"github.com/vango-dev/starter/pkg/vango"
)

// StoreName labels every event the store emits.
const StoreName = "user-store"

// Action identifiers follow user-store/<slice>/<action> so event history
// stays searchable.
const (
	ActionSetUser = "user-store/user/setUser"
	ActionLogout  = "user-store/user/logout"
)

// Accessor namespace keys.
const (
	KeyIsLoggedIn = "isLoggedIn"
	KeyUsername   = "username"
	KeySetUser    = "setUser"
	KeyLogout     = "logout"
)

// State is the session identity. An empty Username means no user;
// IsLoggedIn is true exactly when Username is set.
type State struct {
	IsLoggedIn bool   `json:"isLoggedIn"`
	Username   string `json:"username,omitempty"`
}

// HasUsername reports whether a username is present.
func (s State) HasUsername() bool { return s.Username != "" }

// Store is the user session store.
type Store struct {
	*store.Bound[State]
}

// Context exposes the session's user store to components.
var Context = vango.CreateContext[*Store](nil).Named("user")

// New creates a logged-out store.
func New(opts ...store.Option) *Store {
	base := store.New(StoreName, State{}, opts...)
	s := &Store{}
	s.Bound = store.WithSelectors(base,
		store.Field(KeyIsLoggedIn, func(st State) bool { return st.IsLoggedIn }),
		store.Field(KeyUsername, func(st State) string { return st.Username }),
		store.Action[State](KeySetUser, s.SetUser),
		store.Action[State](KeyLogout, s.Logout),
	)
	return s
}

// SetUser logs name in, from any state. name must be non-empty; the store
// does not check.
func (s *Store) SetUser(name string) {
	s.SetState(ActionSetUser, State{IsLoggedIn: true, Username: name})
}

// Logout clears the identity. Calling it when logged out is a no-op
// transition that is still reported to observers.
func (s *Store) Logout() {
	s.SetState(ActionLogout, State{})
}

// IsLoggedIn reads the isLoggedIn accessor.
func (s *Store) IsLoggedIn() bool {
	v, _ := s.Use.Get(KeyIsLoggedIn).(bool)
	return v
}

// Username reads the username accessor.
func (s *Store) Username() string {
	v, _ := s.Use.Get(KeyUsername).(string)
	return v
}

// Invoke calls a named action from the accessor namespace. It returns false
// when name is not an action or args do not fit it.
func (s *Store) Invoke(name string, args ...string) bool {
	switch fn := s.Use.Get(name).(type) {
	case func():
		if len(args) != 0 {
			return false
		}
		fn()
		return true
	case func(string):
		if len(args) != 1 {
			return false
		}
		fn(args[0])
		return true
	}
	return false
}
