// Package userdirectory serves the user collection as a JSON REST resource
// backed by SQLite. It is the default local endpoint for the user desk.
package userdirectory
