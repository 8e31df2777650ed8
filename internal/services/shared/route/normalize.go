// Package route canonicalizes request paths before they reach routed
// handlers.
package route

import (
	"net/http"
	"path"
	"strings"
)

// Canonical returns the clean form of rawPath: repeated slashes and dot
// segments collapse and any trailing slash is dropped. The root stays "/".
func Canonical(rawPath string) string {
	if strings.TrimSpace(rawPath) == "" {
		return "/"
	}
	if !strings.HasPrefix(rawPath, "/") {
		rawPath = "/" + rawPath
	}
	return path.Clean(rawPath)
}

// RedirectCanonical answers with a permanent redirect when the request path
// is not canonical, keeping the query string.
//
// It returns true when a redirect was written. Route handlers should stop
// further processing when true.
func RedirectCanonical(w http.ResponseWriter, r *http.Request) bool {
	if w == nil || r == nil || r.URL == nil {
		return false
	}
	canonical := Canonical(r.URL.Path)
	if canonical == r.URL.Path {
		return false
	}
	target := canonical
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusMovedPermanently)
	return true
}
