package bootstrap

import (
	"slices"
	"strings"

	"github.com/vango-dev/starter/pkg/vango"
)

// LoadingClass is present on <html> until the gate opens.
const LoadingClass = "i18n-loading"

// Document is the reactive state of the <html> element: its lang
// attribute and class list.
type Document struct {
	lang    *vango.Signal[string]
	classes *vango.Signal[[]string]
}

// NewDocument creates a document with the given lang and classes.
func NewDocument(lang string, classes ...string) *Document {
	return &Document{
		lang:    vango.NewSignal(lang),
		classes: vango.NewSignal(normalizeClasses(classes)),
	}
}

// Lang returns the lang attribute, tracked.
func (d *Document) Lang() string { return d.lang.Get() }

// SetLang sets the lang attribute.
func (d *Document) SetLang(lang string) { d.lang.Set(lang) }

// Classes returns a copy of the class list, tracked.
func (d *Document) Classes() []string {
	return slices.Clone(d.classes.Get())
}

// Class returns the class attribute value, tracked.
func (d *Document) Class() string {
	return strings.Join(d.classes.Get(), " ")
}

// HasClass reports whether name is in the class list, tracked.
func (d *Document) HasClass(name string) bool {
	return slices.Contains(d.classes.Get(), name)
}

// AddClass appends name unless already present.
func (d *Document) AddClass(name string) {
	d.classes.Update(func(cur []string) []string {
		if name == "" || slices.Contains(cur, name) {
			return cur
		}
		return append(slices.Clone(cur), name)
	})
}

// RemoveClass removes name if present.
func (d *Document) RemoveClass(name string) {
	d.classes.Update(func(cur []string) []string {
		i := slices.Index(cur, name)
		if i < 0 {
			return cur
		}
		return slices.Delete(slices.Clone(cur), i, i+1)
	})
}

// Snapshot returns lang and class without tracking.
func (d *Document) Snapshot() (lang, class string) {
	return d.lang.Peek(), strings.Join(d.classes.Peek(), " ")
}

func normalizeClasses(classes []string) []string {
	out := make([]string, 0, len(classes))
	for _, c := range classes {
		for _, f := range strings.Fields(c) {
			if !slices.Contains(out, f) {
				out = append(out, f)
			}
		}
	}
	return out
}
