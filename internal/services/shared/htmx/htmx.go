// Package htmx picks between fragment and full-page responses for requests
// issued by htmx.
package htmx

import (
	"net/http"
	"strings"

	"github.com/a-h/templ"
)

const (
	// RequestHeaderKey is set to "true" on every request htmx issues.
	RequestHeaderKey = "HX-Request"
	// RedirectHeaderKey asks htmx to perform a full client-side navigation.
	RedirectHeaderKey = "HX-Redirect"
)

// IsHTMXRequest reports whether the request was initiated by htmx.
func IsHTMXRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(r.Header.Get(RequestHeaderKey)), "true")
}

// RenderPage renders fragment for htmx requests and full otherwise. A nil
// component falls back to the other one.
func RenderPage(w http.ResponseWriter, r *http.Request, fragment templ.Component, full templ.Component) {
	w.Header().Add("Vary", RequestHeaderKey)
	target := full
	if IsHTMXRequest(r) {
		target = fragment
	}
	if target == nil {
		target = fragment
		if target == nil {
			target = full
		}
	}
	if target == nil {
		return
	}
	templ.Handler(target).ServeHTTP(w, r)
}

// Redirect sends the browser to target. htmx requests get an HX-Redirect
// header since htmx does not follow 3xx responses into a page load; plain
// form posts get 303 See Other.
func Redirect(w http.ResponseWriter, r *http.Request, target string) {
	if IsHTMXRequest(r) {
		w.Header().Set(RedirectHeaderKey, target)
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
