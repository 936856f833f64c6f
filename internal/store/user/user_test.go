package user

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/starter/pkg/store"
	"github.com/vango-dev/starter/pkg/vango"
)

func TestInitialState(t *testing.T) {
	s := New()

	st := s.GetState()
	assert.False(t, st.IsLoggedIn)
	assert.Empty(t, st.Username)
	assert.False(t, st.HasUsername())
}

func TestSetUser(t *testing.T) {
	s := New()
	s.SetUser("john.doe")

	assert.Equal(t, State{IsLoggedIn: true, Username: "john.doe"}, s.GetState())
	assert.True(t, s.IsLoggedIn())
	assert.Equal(t, "john.doe", s.Username())
}

func TestLogout(t *testing.T) {
	s := New()
	s.SetUser("john.doe")
	s.Logout()

	assert.Equal(t, State{}, s.GetState())
}

func TestLogoutIdempotent(t *testing.T) {
	once := New()
	once.SetUser("john.doe")
	once.Logout()

	twice := New()
	twice.SetUser("john.doe")
	twice.Logout()
	twice.Logout()

	assert.Equal(t, once.GetState(), twice.GetState())
}

func TestInvariantHoldsForAnySequence(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	names := []string{"john.doe", "jane", "x"}
	s := New()

	for i := 0; i < 500; i++ {
		if rng.Intn(2) == 0 {
			s.SetUser(names[rng.Intn(len(names))])
		} else {
			s.Logout()
		}
		st := s.GetState()
		require.Equal(t, st.IsLoggedIn, st.HasUsername(), "step %d: %+v", i, st)
	}
}

func TestAccessorNamespace(t *testing.T) {
	s := New()

	for _, key := range []string{KeyIsLoggedIn, KeyUsername, KeySetUser, KeyLogout} {
		acc, ok := s.Use.Lookup(key)
		require.True(t, ok, "missing accessor %s", key)
		require.NotNil(t, acc)
	}
	assert.Equal(t, 4, s.Use.Len())

	setUser, ok := s.Use.Get(KeySetUser).(func(string))
	require.True(t, ok)
	logout, ok := s.Use.Get(KeyLogout).(func())
	require.True(t, ok)

	setUser("john.doe")
	assert.Equal(t, true, s.Use.Get(KeyIsLoggedIn))
	assert.Equal(t, "john.doe", s.Use.Get(KeyUsername))

	logout()
	assert.Equal(t, false, s.Use.Get(KeyIsLoggedIn))
}

func TestActionEvents(t *testing.T) {
	var events []store.Event
	s := New(store.WithObserver(store.ObserverFunc(func(e store.Event) {
		events = append(events, e)
	})))

	s.SetUser("john.doe")
	s.Logout()

	require.Len(t, events, 2)
	assert.Equal(t, StoreName, events[0].Store)
	assert.Equal(t, ActionSetUser, events[0].Type)
	assert.Equal(t, ActionLogout, events[1].Type)
	assert.Equal(t, State{IsLoggedIn: true, Username: "john.doe"}, events[0].State)
}

func TestInvoke(t *testing.T) {
	s := New()

	assert.True(t, s.Invoke(KeySetUser, "jane"))
	assert.Equal(t, "jane", s.GetState().Username)

	assert.False(t, s.Invoke(KeySetUser), "missing argument")
	assert.False(t, s.Invoke(KeyLogout, "extra"))
	assert.False(t, s.Invoke(KeyUsername), "fields are not invokable")
	assert.False(t, s.Invoke("unknown"))

	assert.True(t, s.Invoke(KeyLogout))
	assert.False(t, s.GetState().IsLoggedIn)
}

func TestUsernameSelectorIgnoresUnrelatedChanges(t *testing.T) {
	s := New()
	s.SetUser("john.doe")

	dirty := 0
	l := vango.NewListenerFunc(func() { dirty++ })
	vango.WithListener(l, func() {
		_ = s.Username()
	})

	s.SetUser("john.doe")
	assert.Equal(t, 0, dirty, "same username should not notify")

	s.Logout()
	assert.Equal(t, 1, dirty)
}

func TestFreshInstancesAreIndependent(t *testing.T) {
	a := New()
	b := New()
	a.SetUser("john.doe")

	assert.False(t, b.GetState().IsLoggedIn)
}
