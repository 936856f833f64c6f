package i18n

import (
	"fmt"
	"regexp"

	"golang.org/x/text/language"

	"github.com/vango-dev/starter/pkg/vango"
)

// Translator resolves keys for one session. It satisfies the bootstrap
// gate's Initializer.
type Translator struct {
	res       *Resources
	preferred []language.Tag
}

// NewTranslator binds res to the preferred languages, best first.
func NewTranslator(res *Resources, preferred ...language.Tag) *Translator {
	return &Translator{res: res, preferred: preferred}
}

// IsInitialized reports whether catalogs have finished loading.
func (t *Translator) IsInitialized() bool {
	return t != nil && t.res.IsLoaded()
}

// Ready is closed when catalogs have finished loading.
func (t *Translator) Ready() <-chan struct{} {
	return t.res.Ready()
}

// Language returns the resolved locale, e.g. "fr-FR". Before catalogs load
// it is the first preferred tag.
func (t *Translator) Language() string {
	if t == nil {
		return BaseLocale
	}
	if b := t.res.Bundle(); b != nil {
		return b.Match(t.preferred...)
	}
	if len(t.preferred) > 0 {
		return t.preferred[0].String()
	}
	return BaseLocale
}

// T translates a "namespace:key" key. Missing keys render as the key.
func (t *Translator) T(key string) string {
	if t == nil {
		return key
	}
	b := t.res.Bundle()
	if b == nil {
		return key
	}
	ns, k := SplitKey(key)
	if v, ok := b.Message(b.Match(t.preferred...), ns, k); ok {
		return v
	}
	return key
}

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.]+)\s*\}\}`)

// Tf translates key and substitutes {{name}} placeholders from vars.
// Unknown placeholders are left as written.
func (t *Translator) Tf(key string, vars map[string]any) string {
	msg := t.T(key)
	if len(vars) == 0 {
		return msg
	}
	return placeholder.ReplaceAllStringFunc(msg, func(m string) string {
		name := placeholder.FindStringSubmatch(m)[1]
		if v, ok := vars[name]; ok {
			return fmt.Sprint(v)
		}
		return m
	})
}

// Context carries the session Translator to components.
var Context = vango.CreateContext[*Translator](nil).Named("i18n")

// T translates key with the Translator in context.
func T(key string) string {
	return Context.Use().T(key)
}

// Tf is T with placeholder substitution.
func Tf(key string, vars map[string]any) string {
	return Context.Use().Tf(key, vars)
}
