// Package roster models the user-management view state.
//
// State values are immutable from the caller's point of view: every
// transition returns a new State and never aliases the receiver's slices, so
// transitions can be exercised without any network or HTTP plumbing.
package roster

import (
	"errors"
	"slices"
	"strings"
)

// DefaultDepartment is shown for loaded users that carry no department.
const DefaultDepartment = "N/A"

// Form field names accepted by WithField.
const (
	FieldName       = "name"
	FieldEmail      = "email"
	FieldDepartment = "department"
)

// ErrUnknownField is returned when a form update names a field the form does
// not have.
var ErrUnknownField = errors.New("unknown form field")

// ID is the server-assigned identifier of a user record. It is opaque to the
// view; only equality is meaningful.
type ID string

// String returns the raw identifier.
func (id ID) String() string {
	return string(id)
}

// User is one managed record.
type User struct {
	ID         ID
	Name       string
	Email      string
	Department string
}

// Form is the single editable draft used by both the create and edit flows.
type Form struct {
	Name       string
	Email      string
	Department string
}

// With returns a copy of f with one named field replaced.
func (f Form) With(field, value string) (Form, error) {
	switch strings.TrimSpace(field) {
	case FieldName:
		f.Name = value
	case FieldEmail:
		f.Email = value
	case FieldDepartment:
		f.Department = value
	default:
		return f, ErrUnknownField
	}
	return f, nil
}

// IsZero reports whether every field is empty.
func (f Form) IsZero() bool {
	return f == Form{}
}

// Mode says whether the form drafts a new record or edits an existing one.
// The zero value is Creating.
type Mode struct {
	editing bool
	id      ID
}

// Creating is the mode for drafting a new record.
func Creating() Mode {
	return Mode{}
}

// Editing is the mode for editing the record with the given id.
func Editing(id ID) Mode {
	return Mode{editing: true, id: id}
}

// IsEditing reports whether the mode targets an existing record.
func (m Mode) IsEditing() bool {
	return m.editing
}

// EditingID returns the target record id when editing.
func (m Mode) EditingID() (ID, bool) {
	if !m.editing {
		return "", false
	}
	return m.id, true
}

// Failure identifies the most recent failed remote call.
type Failure string

const (
	FailureNone   Failure = ""
	FailureFetch  Failure = "fetch"
	FailureSave   Failure = "save"
	FailureDelete Failure = "delete"
)

// MessageKey returns the catalog key for the failure banner.
func (f Failure) MessageKey() string {
	switch f {
	case FailureFetch:
		return "error.fetch_users"
	case FailureSave:
		return "error.save_user"
	case FailureDelete:
		return "error.delete_user"
	default:
		return ""
	}
}

// State is the complete view state of one user manager.
type State struct {
	Users   []User
	Form    Form
	Mode    Mode
	Failure Failure
}

// New returns the initial state: no users, empty form, creating.
func New() State {
	return State{}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	s.Users = slices.Clone(s.Users)
	return s
}

// Find returns the first user with the given id.
func (s State) Find(id ID) (User, bool) {
	for _, user := range s.Users {
		if user.ID == id {
			return user, true
		}
	}
	return User{}, false
}

// Loaded replaces the whole collection, defaulting missing departments.
func (s State) Loaded(users []User) State {
	next := make([]User, 0, len(users))
	for _, user := range users {
		if user.Department == "" {
			user.Department = DefaultDepartment
		}
		next = append(next, user)
	}
	s.Users = next
	return s
}

// WithField updates one form field. It performs no validation.
func (s State) WithField(field, value string) (State, error) {
	form, err := s.Form.With(field, value)
	if err != nil {
		return s.Clone(), err
	}
	s = s.Clone()
	s.Form = form
	return s, nil
}

// BeginEdit copies user into the form and switches to editing that record.
func (s State) BeginEdit(user User) State {
	s = s.Clone()
	s.Form = Form{
		Name:       user.Name,
		Email:      user.Email,
		Department: user.Department,
	}
	s.Mode = Editing(user.ID)
	return s
}

// Created appends the record returned by the server and resets the form.
func (s State) Created(user User) State {
	s.Users = append(slices.Clone(s.Users), user)
	return s.reset()
}

// SubmittedRecord builds the record the view keeps after a successful edit.
// The view trusts its own submission: the edit response body is never read.
func SubmittedRecord(id ID, form Form) User {
	return User{
		ID:         id,
		Name:       form.Name,
		Email:      form.Email,
		Department: form.Department,
	}
}

// Updated replaces every record with the given id by the submitted form and
// resets the form.
func (s State) Updated(id ID, form Form) State {
	record := SubmittedRecord(id, form)
	next := make([]User, len(s.Users))
	for i, user := range s.Users {
		if user.ID == id {
			user = record
		}
		next[i] = user
	}
	s.Users = next
	return s.reset()
}

// Deleted removes every record with the given id.
func (s State) Deleted(id ID) State {
	next := make([]User, 0, len(s.Users))
	for _, user := range s.Users {
		if user.ID != id {
			next = append(next, user)
		}
	}
	s.Users = next
	return s
}

// Failed records a failure and leaves everything else untouched.
func (s State) Failed(failure Failure) State {
	s = s.Clone()
	s.Failure = failure
	return s
}

// reset clears the form and returns to creating. Failures are kept: a
// success never clears an earlier failure banner.
func (s State) reset() State {
	s.Form = Form{}
	s.Mode = Creating()
	return s
}
