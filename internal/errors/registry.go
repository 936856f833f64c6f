package errors

// Registered codes.
const (
	CodeMountMissing    = "E100"
	CodeShellUnreadable = "E101"

	CodeCatalogLoad    = "E200"
	CodeCatalogInvalid = "E201"
	CodeBaseLocale     = "E202"

	CodeConfigInvalid = "E300"

	CodeSessionNotFound = "E400"
	CodeFrameInvalid    = "E401"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Startup Errors (E100-E199)
	// ============================================

	CodeMountMissing: {
		Category: CategoryStartup,
		Message:  "Mount point not found",
		Detail:   "The HTML shell has no element with the configured mount id, so the application has nowhere to render.",
		DocURL:   "https://github.com/vango-dev/starter#e100",
	},
	CodeShellUnreadable: {
		Category: CategoryStartup,
		Message:  "HTML shell unreadable",
		Detail:   "The HTML shell could not be read or parsed.",
		DocURL:   "https://github.com/vango-dev/starter#e101",
	},

	// ============================================
	// Translation Errors (E200-E299)
	// ============================================

	CodeCatalogLoad: {
		Category: CategoryI18n,
		Message:  "Translation catalogs could not be loaded",
		Detail:   "Reading catalog files from the configured source failed. Keys will render literally.",
		DocURL:   "https://github.com/vango-dev/starter#e200",
	},
	CodeCatalogInvalid: {
		Category: CategoryI18n,
		Message:  "Translation catalog is invalid",
		Detail:   "A catalog file is malformed or disagrees with its path (locales/<locale>/<namespace>.yaml).",
		DocURL:   "https://github.com/vango-dev/starter#e201",
	},
	CodeBaseLocale: {
		Category: CategoryI18n,
		Message:  "Base locale missing",
		Detail:   "The catalogs do not define the base locale every other locale falls back to.",
		DocURL:   "https://github.com/vango-dev/starter#e202",
	},

	// ============================================
	// Config Errors (E300-E399)
	// ============================================

	CodeConfigInvalid: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
		Detail:   "starter.json or a STARTER_* environment variable holds an invalid value.",
		DocURL:   "https://github.com/vango-dev/starter#e300",
	},

	// ============================================
	// Live Errors (E400-E499)
	// ============================================

	CodeSessionNotFound: {
		Category: CategoryLive,
		Message:  "Session not found",
		Detail:   "The session ID is invalid or the session has expired.",
		DocURL:   "https://github.com/vango-dev/starter#e400",
	},
	CodeFrameInvalid: {
		Category: CategoryLive,
		Message:  "Invalid live frame",
		Detail:   "The browser sent a frame that is not valid JSON or has an unknown type.",
		DocURL:   "https://github.com/vango-dev/starter#e401",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
