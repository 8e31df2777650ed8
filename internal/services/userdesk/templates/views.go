package templates

import "github.com/louisbranch/userdesk/internal/services/userdesk/roster"

// ManagerElementID is the id of the element htmx swaps on every interaction.
const ManagerElementID = "user-manager"

// PageContext provides shared layout context for full pages.
type PageContext struct {
	Lang      string
	Loc       Localizer
	Languages []LanguageOption
}

// LanguageOption is one entry of the language switcher.
type LanguageOption struct {
	Label  string
	URL    string
	Active bool
}

// ManagerView provides data for the user manager component.
type ManagerView struct {
	FormAction   string
	SubmitAction string
	Form         FormValues
	Editing      bool
	// ErrorKey is the catalog key of the failure banner; empty hides it.
	ErrorKey string
	Users    []UserRow
}

// FormValues are the current form inputs.
type FormValues struct {
	Name       string
	Email      string
	Department string
}

// UserRow represents a row in the users table.
type UserRow struct {
	ID           string
	Name         string
	Email        string
	Department   string
	EditAction   string
	DeleteAction string
}

// DepartmentLabel returns the department shown in the table.
func (r UserRow) DepartmentLabel() string {
	if r.Department == "" {
		return roster.DefaultDepartment
	}
	return r.Department
}
