package home

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/starter/internal/testutil"
	"github.com/vango-dev/starter/pkg/query"
	"github.com/vango-dev/starter/pkg/router"
	"github.com/vango-dev/starter/pkg/vdom"
	"github.com/vango-dev/starter/pkg/vtest"
)

func homePage() *vdom.VNode { return Page(router.Match{}) }

func TestPageShowsLoadingThenGreeting(t *testing.T) {
	render, _ := testutil.RenderWithProviders(t, homePage)

	assert.Equal(t, "Loading...", vtest.TextByRole(t, render(), "status"))

	vtest.Eventually(t, 2*time.Second, func() bool {
		text := vtest.TextByRole(t, render(), "status")
		require.Contains(t, []string{"Loading...", Greeting}, text, "status region showed a third state")
		return text == Greeting
	})
}

func TestPageHeadingIndependentOfLoading(t *testing.T) {
	render, p := testutil.RenderWithProviders(t, homePage)

	assert.Equal(t, "Welcome", vtest.TextByRole(t, render(), "heading"))

	vtest.Eventually(t, 2*time.Second, func() bool {
		_, ok := query.GetData[string](p.Client, GreetingKey)
		return ok
	})
	assert.Equal(t, "Welcome", vtest.TextByRole(t, render(), "heading"))
}

func TestPageStatusIsPoliteLiveRegion(t *testing.T) {
	render, _ := testutil.RenderWithProviders(t, homePage)

	status := vtest.GetByRole(t, render(), "status")
	assert.Equal(t, "p", status.Tag)
	assert.Equal(t, "polite", status.Attrs["aria-live"])
}

func TestPageTranslates(t *testing.T) {
	render, _ := testutil.RenderWithProviders(t, homePage, testutil.WithLocale("fr-FR"))

	html := render()
	assert.Equal(t, "Bienvenue", vtest.TextByRole(t, html, "heading"))
	assert.Equal(t, "Chargement...", vtest.TextByRole(t, html, "status"))
}

func TestPageReadyCacheSkipsLoading(t *testing.T) {
	render, p := testutil.RenderWithProviders(t, homePage)
	query.SetData(p.Client, GreetingKey, "cached")

	assert.Equal(t, "cached", vtest.TextByRole(t, render(), "status"))
}

func TestStatusTextKeepsLoadingOnError(t *testing.T) {
	tests := []struct {
		name string
		res  query.Result[string]
		want string
	}{
		{"pending", query.Result[string]{Status: query.Loading, IsLoading: true}, "Loading..."},
		{"ready", query.Result[string]{Status: query.Ready, Data: Greeting}, Greeting},
		{"refetching", query.Result[string]{Status: query.Ready, Data: Greeting, IsFetching: true}, Greeting},
		{"failed", query.Result[string]{Status: query.Error, Err: context.DeadlineExceeded}, "Loading..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusText(tt.res, "Loading..."))
		})
	}
}

func TestFetchGreeting(t *testing.T) {
	start := time.Now()
	got, err := FetchGreeting(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Greeting, got)
	assert.GreaterOrEqual(t, time.Since(start), FetchDelay)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = FetchGreeting(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
