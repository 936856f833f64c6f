package router

import (
	"errors"
	"net/http"
	"strings"
)

// Path canonicalization errors.
var (
	ErrInvalidPath          = errors.New("invalid path")
	ErrBackslashInPath      = errors.New("path contains backslash")
	ErrNullByteInPath       = errors.New("path contains null byte")
	ErrInvalidPercentEscape = errors.New("invalid percent escape sequence")
	ErrPathEscapesRoot      = errors.New("path escapes root via ..")
)

// CanonicalizePath normalizes a URL path: leading slash added, repeated
// slashes collapsed, "." and ".." resolved, trailing slash removed (except
// for "/"). Backslashes, NUL bytes, malformed percent escapes and ".."
// above root are rejected. A query string is split off and returned as is.
// changed reports whether the path differs from the input.
func CanonicalizePath(input string) (path, query string, changed bool, err error) {
	if input == "" {
		return "/", "", true, nil
	}

	path, query, _ = strings.Cut(input, "?")

	if strings.Contains(path, "\\") {
		return "", "", false, ErrBackslashInPath
	}
	if strings.Contains(path, "\x00") || strings.Contains(strings.ToUpper(path), "%00") {
		return "", "", false, ErrNullByteInPath
	}
	if strings.Contains(path, "%") {
		if err := validatePercentEscapes(path); err != nil {
			return "", "", false, err
		}
	}

	original := path
	segments := strings.Split(path, "/")
	result := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case "", ".":
			continue
		case "..":
			if len(result) == 0 {
				return "", "", false, ErrPathEscapesRoot
			}
			result = result[:len(result)-1]
		default:
			result = append(result, seg)
		}
	}

	path = "/" + strings.Join(result, "/")
	return path, query, path != original, nil
}

// ValidateNavPath canonicalizes a navigation target sent by a browser.
// Only site-relative paths are accepted.
func ValidateNavPath(target string) (string, error) {
	if strings.HasPrefix(target, "//") || !strings.HasPrefix(target, "/") {
		return "", ErrInvalidPath
	}
	path, query, _, err := CanonicalizePath(target)
	if err != nil {
		return "", err
	}
	if query != "" {
		return path + "?" + query, nil
	}
	return path, nil
}

func validatePercentEscapes(path string) error {
	for i := 0; i < len(path); i++ {
		if path[i] != '%' {
			continue
		}
		if i+2 >= len(path) || !isHexDigit(path[i+1]) || !isHexDigit(path[i+2]) {
			return ErrInvalidPercentEscape
		}
		i += 2
	}
	return nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// Canonical is middleware that redirects non-canonical GET and HEAD paths
// to their canonical form and rejects malformed ones.
func Canonical(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, _, changed, err := CanonicalizePath(r.URL.EscapedPath())
		if err != nil {
			http.Error(w, "bad request path", http.StatusBadRequest)
			return
		}
		if changed && (r.Method == http.MethodGet || r.Method == http.MethodHead) {
			target := path
			if r.URL.RawQuery != "" {
				target += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, target, http.StatusMovedPermanently)
			return
		}
		next.ServeHTTP(w, r)
	})
}
