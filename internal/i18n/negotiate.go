package i18n

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"

	// LangCookieName stores the user's language preference.
	LangCookieName = "starter_lang"
)

// Negotiator picks a supported language for a request.
type Negotiator struct {
	supported []language.Tag
	matcher   language.Matcher
}

// NewNegotiator accepts locale names such as "en-US"; the first is the
// default. Unparseable names are skipped.
func NewNegotiator(supported ...string) *Negotiator {
	tags := make([]language.Tag, 0, len(supported))
	for _, s := range supported {
		if tag, err := language.Parse(strings.TrimSpace(s)); err == nil {
			tags = append(tags, tag)
		}
	}
	if len(tags) == 0 {
		tags = []language.Tag{language.MustParse(BaseLocale)}
	}
	return &Negotiator{supported: tags, matcher: language.NewMatcher(tags)}
}

// Supported returns the supported tags, default first.
func (n *Negotiator) Supported() []language.Tag {
	return append([]language.Tag(nil), n.supported...)
}

// Default returns the default tag.
func (n *Negotiator) Default() language.Tag {
	return n.supported[0]
}

// Match returns the supported tag closest to value, and whether it was
// close enough to count.
func (n *Negotiator) Match(tags ...language.Tag) (language.Tag, bool) {
	_, idx, conf := n.matcher.Match(tags...)
	if conf == language.No {
		return n.Default(), false
	}
	return n.supported[idx], true
}

func (n *Negotiator) parse(value string) (language.Tag, bool) {
	tag, err := language.Parse(strings.TrimSpace(value))
	if err != nil {
		return language.Und, false
	}
	return n.Match(tag)
}

// ResolveTag determines the best language for r from the lang query
// parameter, then the language cookie, then Accept-Language. The bool
// reports whether the choice came from the query parameter and should be
// persisted as a cookie.
func (n *Negotiator) ResolveTag(r *http.Request) (language.Tag, bool) {
	if r == nil {
		return n.Default(), false
	}

	if v := r.URL.Query().Get(LangParam); v != "" {
		if tag, ok := n.parse(v); ok {
			return tag, true
		}
	}

	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if tag, ok := n.parse(cookie.Value); ok {
			return tag, false
		}
	}

	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			tag, _ := n.Match(tags...)
			return tag, false
		}
	}

	return n.Default(), false
}

// SetLanguageCookie persists the selected language on the response.
func SetLanguageCookie(w http.ResponseWriter, tag language.Tag) {
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    tag.String(),
		Path:     "/",
		MaxAge:   int((365 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
