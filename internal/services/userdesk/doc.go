// Package userdesk serves the single-page user manager.
//
// Each full page load opens a page instance (a view) holding its own
// Manager. The Manager mirrors a remote user directory: it loads the list,
// creates, updates and deletes records, and keeps one form that drafts either
// a new record or an edit of an existing one.
package userdesk
