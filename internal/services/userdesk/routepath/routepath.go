// Package routepath stores canonical HTTP paths for the user desk.
package routepath

import (
	"net/url"
	"strings"
)

const (
	Root      = "/"
	RootExact = "/{$}"
	Health    = "/healthz"
)

const (
	ViewsPrefix       = "/views/"
	ViewPattern       = ViewsPrefix + "{view}"
	ViewSlashPattern  = ViewsPrefix + "{view}/{$}"
	ViewFormPattern   = ViewsPrefix + "{view}/form"
	ViewSubmitPattern = ViewsPrefix + "{view}/submit"
	ViewEditPattern   = ViewsPrefix + "{view}/users/{userID}/edit"
	ViewDeletePattern = ViewsPrefix + "{view}/users/{userID}/delete"
)

// Path wildcard names used by the view patterns.
const (
	ViewPathValue   = "view"
	UserIDPathValue = "userID"
)

// View returns the page-instance route.
func View(viewID string) string {
	return ViewsPrefix + url.PathEscape(strings.TrimSpace(viewID))
}

// ViewForm returns the form field update route.
func ViewForm(viewID string) string {
	return View(viewID) + "/form"
}

// ViewSubmit returns the form submission route.
func ViewSubmit(viewID string) string {
	return View(viewID) + "/submit"
}

// ViewEdit returns the begin-edit route for one user row.
func ViewEdit(viewID string, userID string) string {
	return View(viewID) + "/users/" + escapeSegment(userID) + "/edit"
}

// ViewDelete returns the delete route for one user row.
func ViewDelete(viewID string, userID string) string {
	return View(viewID) + "/users/" + escapeSegment(userID) + "/delete"
}

// escapeSegment escapes a user id verbatim. User ids are opaque, so
// surrounding spaces are part of the id.
func escapeSegment(raw string) string {
	return url.PathEscape(raw)
}
