// Package errors provides structured, actionable errors for the starter.
//
// Every error raised at a boundary (startup, configuration, translation
// catalogs, live frames) carries a registered code that maps to a short
// message, a longer explanation and a documentation anchor:
//
//	err := errors.New(errors.CodeMountMissing).
//	    WithDetail(`no element with id="root" in web/index.html`).
//	    WithSuggestion(`Add <div id="root"></div> to the page body`)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E100: Mount point not found
//	//
//	//   no element with id="root" in web/index.html
//	//
//	//   Hint: Add <div id="root"></div> to the page body
//
// # Error Categories
//
//   - startup: the process cannot begin serving
//   - config: starter.json or STARTER_* values are invalid
//   - i18n: translation catalogs could not be loaded
//   - live: a live session or frame was rejected
//
// Errors created here work with the standard errors.Is and errors.As; two
// errors match with Is when their codes are equal.
package errors
