package i18n

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestResolveTag(t *testing.T) {
	n := NewNegotiator("en-US", "fr-FR")

	tests := []struct {
		name    string
		url     string
		cookie  string
		accept  string
		want    string
		persist bool
	}{
		{name: "default", url: "/", want: "en-US"},
		{name: "query param", url: "/?lang=fr", want: "fr-FR", persist: true},
		{name: "unsupported query param", url: "/?lang=ja", want: "en-US"},
		{name: "cookie", url: "/", cookie: "fr-FR", want: "fr-FR"},
		{name: "query beats cookie", url: "/?lang=en-US", cookie: "fr-FR", want: "en-US", persist: true},
		{name: "accept language", url: "/", accept: "fr-CA,fr;q=0.9,en;q=0.5", want: "fr-FR"},
		{name: "cookie beats accept", url: "/", cookie: "en-US", accept: "fr", want: "en-US"},
		{name: "garbage accept", url: "/", accept: ";;;", want: "en-US"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: LangCookieName, Value: tt.cookie})
			}
			if tt.accept != "" {
				r.Header.Set("Accept-Language", tt.accept)
			}
			tag, persist := n.ResolveTag(r)
			assert.Equal(t, tt.want, tag.String())
			assert.Equal(t, tt.persist, persist)
		})
	}
}

func TestNegotiatorDefaults(t *testing.T) {
	n := NewNegotiator("not a tag")
	assert.Equal(t, language.MustParse(BaseLocale), n.Default())

	n = NewNegotiator("fr-FR", "en-US")
	assert.Equal(t, "fr-FR", n.Default().String())
	assert.Len(t, n.Supported(), 2)

	tag, persist := n.ResolveTag(nil)
	assert.Equal(t, "fr-FR", tag.String())
	assert.False(t, persist)
}

func TestSetLanguageCookie(t *testing.T) {
	rec := httptest.NewRecorder()
	SetLanguageCookie(rec, language.MustParse("fr-FR"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, LangCookieName, cookies[0].Name)
	assert.Equal(t, "fr-FR", cookies[0].Value)
	assert.Equal(t, "/", cookies[0].Path)
}
