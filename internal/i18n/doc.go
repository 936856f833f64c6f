// Package i18n loads translation catalogs and resolves keys for a live
// session.
//
// Catalogs are YAML files laid out as <locale>/<namespace>.yaml:
//
//	locale: "en-US"
//	namespace: "home"
//	messages:
//	  title: "Welcome"
//
// A key names its namespace before a colon ("home:title"); keys without one
// live in the common namespace. Lookups fall back from the session locale to
// the base locale, then to the key itself.
//
// Catalogs load asynchronously. Resources is the process-wide load; each
// session gets a Translator bound to its negotiated language, which reports
// readiness to the bootstrap gate.
package i18n
