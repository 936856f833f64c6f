package i18n

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/starter/internal/errors"
)

const (
	// BaseLocale is the locale every other locale falls back to.
	BaseLocale = "en-US"

	// DefaultNamespace holds keys written without a namespace prefix.
	DefaultNamespace = "common"
)

// File is one raw catalog file.
type File struct {
	// Path ends in <locale>/<namespace>.yaml.
	Path string
	Data []byte
}

type catalogFile struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

// LocaleCatalog stores all messages for one locale, grouped by namespace.
type LocaleCatalog struct {
	Locale     string
	Namespaces map[string]map[string]string
}

// Bundle holds the catalogs of every locale.
type Bundle struct {
	base    string
	locales map[string]*LocaleCatalog
	tags    []language.Tag
	names   []string
	matcher language.Matcher
}

// Parse builds a bundle from catalog files. base must be among the locales.
func Parse(files []File, base string) (*Bundle, error) {
	if base == "" {
		base = BaseLocale
	}
	if len(files) == 0 {
		return nil, errors.New(errors.CodeCatalogLoad).WithDetail("no catalog files found")
	}

	sorted := append([]File(nil), files...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	b := &Bundle{base: base, locales: map[string]*LocaleCatalog{}}
	for _, f := range sorted {
		var parsed catalogFile
		if err := yaml.Unmarshal(f.Data, &parsed); err != nil {
			return nil, errors.New(errors.CodeCatalogInvalid).
				WithDetailf("parse catalog %s", f.Path).
				Wrap(err)
		}
		if err := b.addFile(f.Path, parsed); err != nil {
			return nil, err
		}
	}

	if _, ok := b.locales[base]; !ok {
		return nil, errors.New(errors.CodeBaseLocale).
			WithDetailf("base locale %s is not defined in catalogs", base)
	}

	for _, name := range b.Locales() {
		tag, err := language.Parse(name)
		if err != nil {
			return nil, errors.New(errors.CodeCatalogInvalid).
				WithDetailf("parse locale tag %q", name).
				Wrap(err)
		}
		b.names = append(b.names, name)
		b.tags = append(b.tags, tag)
	}
	// The base locale goes first so that it wins when nothing matches.
	for i, name := range b.names {
		if name == base {
			b.names[0], b.names[i] = b.names[i], b.names[0]
			b.tags[0], b.tags[i] = b.tags[i], b.tags[0]
			break
		}
	}
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

func (b *Bundle) addFile(filePath string, file catalogFile) error {
	localeFromPath := path.Base(path.Dir(filePath))
	namespaceFromPath := strings.TrimSuffix(path.Base(filePath), path.Ext(filePath))

	invalid := func(format string, args ...any) error {
		return errors.New(errors.CodeCatalogInvalid).
			WithDetailf("catalog %s: %s", filePath, fmt.Sprintf(format, args...))
	}

	locale := strings.TrimSpace(file.Locale)
	if locale == "" {
		return invalid("locale is required")
	}
	if locale != localeFromPath {
		return invalid("locale %q must match path locale %q", locale, localeFromPath)
	}

	namespace := strings.TrimSpace(file.Namespace)
	if namespace == "" {
		return invalid("namespace is required")
	}
	if namespace != namespaceFromPath {
		return invalid("namespace %q must match filename namespace %q", namespace, namespaceFromPath)
	}
	if file.Messages == nil {
		return invalid("messages map is required")
	}

	catalog, ok := b.locales[locale]
	if !ok {
		catalog = &LocaleCatalog{Locale: locale, Namespaces: map[string]map[string]string{}}
		b.locales[locale] = catalog
	}
	if _, exists := catalog.Namespaces[namespace]; exists {
		return invalid("namespace %q already defined for locale %q", namespace, locale)
	}

	messages := make(map[string]string, len(file.Messages))
	for key, value := range file.Messages {
		trimmed := strings.TrimSpace(key)
		if trimmed == "" {
			return invalid("message key cannot be blank")
		}
		messages[trimmed] = value
	}
	catalog.Namespaces[namespace] = messages
	return nil
}

// Base returns the base locale.
func (b *Bundle) Base() string {
	return b.base
}

// Locales returns all locale identifiers, sorted.
func (b *Bundle) Locales() []string {
	if b == nil {
		return nil
	}
	out := make([]string, 0, len(b.locales))
	for locale := range b.locales {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// HasLocale reports whether the locale exists in this bundle.
func (b *Bundle) HasLocale(locale string) bool {
	if b == nil {
		return false
	}
	_, ok := b.locales[locale]
	return ok
}

// Match returns the bundle locale closest to the preferred tags, or the
// base locale when none is close enough.
func (b *Bundle) Match(preferred ...language.Tag) string {
	if b == nil || len(b.names) == 0 {
		return BaseLocale
	}
	_, idx, conf := b.matcher.Match(preferred...)
	if conf == language.No {
		return b.base
	}
	return b.names[idx]
}

// Message returns one message with base-locale fallback.
func (b *Bundle) Message(locale, namespace, key string) (string, bool) {
	if b == nil {
		return "", false
	}
	if v, ok := b.lookup(locale, namespace, key); ok {
		return v, true
	}
	if locale != b.base {
		return b.lookup(b.base, namespace, key)
	}
	return "", false
}

func (b *Bundle) lookup(locale, namespace, key string) (string, bool) {
	catalog, ok := b.locales[locale]
	if !ok {
		return "", false
	}
	v, ok := catalog.Namespaces[namespace][key]
	return v, ok
}

// Namespaces returns sorted namespace names for a locale.
func (b *Bundle) Namespaces(locale string) []string {
	if b == nil {
		return nil
	}
	catalog, ok := b.locales[locale]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(catalog.Namespaces))
	for ns := range catalog.Namespaces {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// SplitKey separates "namespace:key" into its parts.
func SplitKey(full string) (namespace, key string) {
	if ns, k, ok := strings.Cut(full, ":"); ok && ns != "" {
		return ns, k
	}
	return DefaultNamespace, full
}
