package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// htmxScriptURL is the pinned htmx build loaded by full pages. Every form
// also posts normally, so the page works without it.
const htmxScriptURL = "https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js"

const pageStyle = `body{font-family:system-ui,sans-serif;margin:2rem auto;max-width:960px;padding:0 1rem}
.error{background:#fde8e8;border:1px solid #f5b5b5;color:#9b1c1c;margin:1rem 0;padding:.75rem}
.user-form{display:flex;flex-wrap:wrap;gap:.5rem;margin:1rem 0}
table{border-collapse:collapse;width:100%}
th,td{border-bottom:1px solid #ddd;padding:.5rem;text-align:left}
td form{display:inline}
nav a{margin-right:.5rem}`

// Page renders the full document around the user manager.
func Page(view ManagerView, page PageContext) templ.Component {
	return component(func(ctx context.Context, m *markup) {
		lang := page.Lang
		if lang == "" {
			lang = "en-US"
		}
		m.raw("<!doctype html>")
		m.raw(`<html lang="` + attr(lang) + `"><head><meta charset="utf-8">`)
		m.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		m.raw("<title>" + text(T(page.Loc, "users.title")) + "</title>")
		m.raw("<style>" + pageStyle + "</style>")
		m.raw(`<script src="` + attr(htmxScriptURL) + `" defer></script>`)
		m.raw("</head><body>")
		m.child(ctx, languageNav(page.Languages))
		m.raw("<main>")
		m.child(ctx, Manager(view, page.Loc))
		m.raw("</main></body></html>")
	})
}

// Manager renders the swappable user manager fragment.
func Manager(view ManagerView, loc Localizer) templ.Component {
	return component(func(ctx context.Context, m *markup) {
		m.raw(`<div id="` + ManagerElementID + `">`)
		m.raw("<h1>" + text(T(loc, "users.title")) + "</h1>")
		m.child(ctx, errorBanner(view.ErrorKey, loc))
		m.child(ctx, userForm(view, loc))
		m.child(ctx, usersTable(view.Users, loc))
		m.raw("</div>")
	})
}

func languageNav(languages []LanguageOption) templ.Component {
	return component(func(ctx context.Context, m *markup) {
		if len(languages) == 0 {
			return
		}
		m.raw(`<nav aria-label="language">`)
		for _, option := range languages {
			m.raw(`<a href="` + url(option.URL) + `"`)
			if option.Active {
				m.raw(` aria-current="true"`)
			}
			m.raw(">" + text(option.Label) + "</a>")
		}
		m.raw("</nav>")
	})
}

// errorBanner renders nothing when errorKey is empty.
func errorBanner(errorKey string, loc Localizer) templ.Component {
	return component(func(ctx context.Context, m *markup) {
		if errorKey == "" {
			return
		}
		m.raw(`<div class="error" role="alert">` + text(T(loc, errorKey)) + "</div>")
	})
}

func userForm(view ManagerView, loc Localizer) templ.Component {
	return component(func(ctx context.Context, m *markup) {
		submitLabel := T(loc, "users.form.add")
		if view.Editing {
			submitLabel = T(loc, "users.form.update")
		}
		m.raw(`<form class="user-form" method="post" action="` + url(view.SubmitAction) + `" hx-post="` + url(view.SubmitAction) + `"` + managerSwap + `>`)
		m.child(ctx, formInput("text", "name", T(loc, "users.form.name"), view.Form.Name, view.FormAction))
		m.child(ctx, formInput("email", "email", T(loc, "users.form.email"), view.Form.Email, view.FormAction))
		m.child(ctx, formInput("text", "department", T(loc, "users.form.department"), view.Form.Department, view.FormAction))
		m.raw(`<button type="submit">` + text(submitLabel) + "</button>")
		m.raw("</form>")
	})
}

// formInput renders a required input that syncs its form to formAction as
// the user types, without swapping the focused element.
func formInput(inputType, name, placeholder, value, formAction string) templ.Component {
	return component(func(ctx context.Context, m *markup) {
		m.raw(`<input type="` + attr(inputType) + `" name="` + attr(name) + `" placeholder="` + attr(placeholder) + `" aria-label="` + attr(placeholder) + `" value="` + attr(value) + `" required`)
		if formAction != "" {
			m.raw(` hx-post="` + url(formAction) + `" hx-trigger="input changed delay:300ms" hx-swap="none"`)
		}
		m.raw(">")
	})
}

var tableHeaderKeys = []string{"users.table.id", "users.table.name", "users.table.email", "users.table.department", "users.table.actions"}

func usersTable(rows []UserRow, loc Localizer) templ.Component {
	return component(func(ctx context.Context, m *markup) {
		m.raw("<table><thead><tr>")
		for _, key := range tableHeaderKeys {
			m.raw("<th>" + text(T(loc, key)) + "</th>")
		}
		m.raw("</tr></thead><tbody>")
		for _, row := range rows {
			m.child(ctx, userRow(row, loc))
		}
		m.raw("</tbody></table>")
	})
}

func userRow(row UserRow, loc Localizer) templ.Component {
	return component(func(ctx context.Context, m *markup) {
		m.raw("<tr>")
		m.raw("<td>" + text(row.ID) + "</td>")
		m.raw("<td>" + text(row.Name) + "</td>")
		m.raw("<td>" + text(row.Email) + "</td>")
		m.raw("<td>" + text(row.DepartmentLabel()) + "</td>")
		m.raw("<td>")
		m.child(ctx, rowAction(row.EditAction, T(loc, "users.table.edit")))
		m.child(ctx, rowAction(row.DeleteAction, T(loc, "users.table.delete")))
		m.raw("</td></tr>")
	})
}

func rowAction(action, label string) templ.Component {
	return component(func(ctx context.Context, m *markup) {
		m.raw(`<form method="post" action="` + url(action) + `" hx-post="` + url(action) + `"` + managerSwap + `>`)
		m.raw(`<button type="submit">` + text(label) + "</button></form>")
	})
}

// managerSwap makes a form replace the whole manager with the response.
const managerSwap = ` hx-target="#` + ManagerElementID + `" hx-swap="outerHTML"`

// markup writes to the underlying writer until the first error.
type markup struct {
	w   io.Writer
	err error
}

func (m *markup) raw(s string) {
	if m.err != nil {
		return
	}
	_, m.err = io.WriteString(m.w, s)
}

func (m *markup) child(ctx context.Context, c templ.Component) {
	if m.err != nil {
		return
	}
	m.err = c.Render(ctx, m.w)
}

func component(body func(ctx context.Context, m *markup)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		m := &markup{w: w}
		body(ctx, m)
		return m.err
	})
}

func text(value string) string {
	return templ.EscapeString(value)
}

func attr(value string) string {
	return templ.EscapeString(value)
}

func url(value string) string {
	return templ.EscapeString(string(templ.URL(value)))
}
