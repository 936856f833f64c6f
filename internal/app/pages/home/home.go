// Package home is the landing page.
package home

import (
	"context"
	"time"

	"github.com/vango-dev/starter/internal/i18n"
	"github.com/vango-dev/starter/pkg/query"
	"github.com/vango-dev/starter/pkg/router"
	"github.com/vango-dev/starter/pkg/vdom"
)

// FetchDelay is how long the sample fetch takes.
const FetchDelay = 300 * time.Millisecond

// Greeting is the value the sample fetch resolves to.
const Greeting = "Fetched via the query cache"

// GreetingKey caches the sample fetch.
var GreetingKey = query.Key{"greeting"}

// FetchGreeting waits FetchDelay and returns Greeting.
func FetchGreeting(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(FetchDelay):
		return Greeting, nil
	}
}

// Page renders the heading and a status region that shows the loading
// text until the greeting arrives.
func Page(router.Match) *vdom.VNode {
	greeting := query.Use(query.UseClient(), query.Options[string]{
		Key: GreetingKey,
		Fn:  FetchGreeting,
	})

	status := statusText(greeting, i18n.T("common:loading"))

	return vdom.Div(vdom.Class("home"),
		vdom.Header(
			vdom.H1(i18n.T("home:title")),
			vdom.P(i18n.T("home:description")),
		),
		vdom.P(vdom.Role("status"), vdom.AriaLive("polite"), status),
	)
}

// statusText picks the status region text. Fetch errors are not modeled:
// anything but loaded data keeps the loading text, so the region never
// shows a third state.
func statusText(res query.Result[string], loading string) string {
	if res.Status == query.Ready {
		return res.Data
	}
	return loading
}
