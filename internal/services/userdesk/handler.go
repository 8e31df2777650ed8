package userdesk

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/louisbranch/userdesk/internal/platform/httpx"
	"github.com/louisbranch/userdesk/internal/services/shared/htmx"
	"github.com/louisbranch/userdesk/internal/services/shared/route"
	"github.com/louisbranch/userdesk/internal/services/userdesk/i18n"
	"github.com/louisbranch/userdesk/internal/services/userdesk/roster"
	"github.com/louisbranch/userdesk/internal/services/userdesk/routepath"
	"github.com/louisbranch/userdesk/internal/services/userdesk/templates"
	"golang.org/x/text/message"
)

const tracerName = "github.com/louisbranch/userdesk/internal/services/userdesk"

// formFields are the posted fields copied into the form, in display order.
var formFields = []string{roster.FieldName, roster.FieldEmail, roster.FieldDepartment}

// Handler routes user manager requests.
type Handler struct {
	views      *Views
	newManager func() *Manager
}

// NewHandler builds the HTTP handler. Every full page load asks newManager
// for a fresh page instance.
func NewHandler(views *Views, newManager func() *Manager) http.Handler {
	if views == nil {
		views = NewViews()
	}
	handler := &Handler{
		views:      views,
		newManager: newManager,
	}
	return httpx.Chain(handler.routes(),
		httpx.RecoverPanic(),
		httpx.RequestID("userdesk"),
		httpx.Trace(tracerName),
	)
}

// routes wires the HTTP routes for the user manager.
func (h *Handler) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(http.MethodGet+" "+routepath.RootExact, h.handleNewView)
	mux.HandleFunc(http.MethodGet+" "+routepath.Health, h.handleHealth)
	mux.HandleFunc(http.MethodGet+" "+routepath.ViewPattern, h.handleView)
	mux.HandleFunc(http.MethodGet+" "+routepath.ViewSlashPattern, h.handleCanonicalRedirect)
	mux.HandleFunc(http.MethodPost+" "+routepath.ViewFormPattern, h.handleFormUpdate)
	mux.HandleFunc(http.MethodPost+" "+routepath.ViewSubmitPattern, h.handleSubmit)
	mux.HandleFunc(http.MethodPost+" "+routepath.ViewEditPattern, h.handleEdit)
	mux.HandleFunc(http.MethodPost+" "+routepath.ViewDeletePattern, h.handleDelete)
	return mux
}

func (h *Handler) localizer(w http.ResponseWriter, r *http.Request) (*message.Printer, string) {
	tag, persist := i18n.ResolveTag(r)
	if persist {
		i18n.SetLanguageCookie(w, tag)
	}
	return i18n.Printer(tag), tag.String()
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

// handleNewView opens a new page instance, loads it and renders it.
func (h *Handler) handleNewView(w http.ResponseWriter, r *http.Request) {
	loc, lang := h.localizer(w, r)
	if h.newManager == nil {
		http.Error(w, loc.Sprintf("error.view_create_failed"), http.StatusServiceUnavailable)
		return
	}
	manager := h.newManager()
	viewID, err := h.views.Create(manager)
	if err != nil {
		log.Printf("create view: %v", err)
		http.Error(w, loc.Sprintf("error.view_create_failed"), http.StatusInternalServerError)
		return
	}
	manager.Load(r.Context())
	h.render(w, r, viewID, manager.Snapshot(), loc, lang)
}

// handleView renders an existing page instance.
func (h *Handler) handleView(w http.ResponseWriter, r *http.Request) {
	viewID, manager, ok := h.lookupView(w, r)
	if !ok {
		return
	}
	loc, lang := h.localizer(w, r)
	h.render(w, r, viewID, manager.Snapshot(), loc, lang)
}

func (h *Handler) handleCanonicalRedirect(w http.ResponseWriter, r *http.Request) {
	if !route.RedirectCanonical(w, r) {
		http.NotFound(w, r)
	}
}

// handleFormUpdate copies typed values into the form. htmx callers keep the
// focused input, so they get no body back.
func (h *Handler) handleFormUpdate(w http.ResponseWriter, r *http.Request) {
	viewID, _, _, ok := h.prepareMutation(w, r)
	if !ok {
		return
	}
	if htmx.IsHTMXRequest(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	htmx.Redirect(w, r, routepath.View(viewID))
}

// handleSubmit copies the posted values into the form and saves it.
func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	viewID, manager, loc, ok := h.prepareMutation(w, r)
	if !ok {
		return
	}
	manager.Submit(r.Context())
	h.respond(w, r, viewID, manager, loc)
}

// handleEdit loads one row into the form.
func (h *Handler) handleEdit(w http.ResponseWriter, r *http.Request) {
	viewID, manager, loc, ok := h.prepareAction(w, r)
	if !ok {
		return
	}
	userID := roster.ID(r.PathValue(routepath.UserIDPathValue))
	if err := manager.BeginEdit(userID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, loc.Sprintf("error.user_not_found"), http.StatusNotFound)
			return
		}
		log.Printf("begin edit %s: %v", userID, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.respond(w, r, viewID, manager, loc)
}

// handleDelete removes one row.
func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	viewID, manager, loc, ok := h.prepareAction(w, r)
	if !ok {
		return
	}
	userID := roster.ID(r.PathValue(routepath.UserIDPathValue))
	manager.Delete(r.Context(), userID)
	h.respond(w, r, viewID, manager, loc)
}

// prepareAction runs the checks shared by every POST route.
func (h *Handler) prepareAction(w http.ResponseWriter, r *http.Request) (string, *Manager, *message.Printer, bool) {
	loc, _ := h.localizer(w, r)
	if !requireSameOrigin(w, r, loc) {
		return "", nil, nil, false
	}
	viewID, manager, ok := h.lookupView(w, r)
	if !ok {
		return "", nil, nil, false
	}
	return viewID, manager, loc, true
}

// prepareMutation is prepareAction plus copying posted form fields.
func (h *Handler) prepareMutation(w http.ResponseWriter, r *http.Request) (string, *Manager, *message.Printer, bool) {
	viewID, manager, loc, ok := h.prepareAction(w, r)
	if !ok {
		return "", nil, nil, false
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, loc.Sprintf("error.form_invalid"), http.StatusBadRequest)
		return "", nil, nil, false
	}
	for _, field := range formFields {
		values, present := r.PostForm[field]
		if !present || len(values) == 0 {
			continue
		}
		if err := manager.UpdateField(field, values[0]); err != nil {
			log.Printf("update field %s: %v", field, err)
		}
	}
	return viewID, manager, loc, true
}

// lookupView resolves the view path value. Unknown or expired views send
// the browser back to the root for a fresh page instance.
func (h *Handler) lookupView(w http.ResponseWriter, r *http.Request) (string, *Manager, bool) {
	viewID := strings.TrimSpace(r.PathValue(routepath.ViewPathValue))
	manager, err := h.views.Get(viewID)
	if err != nil {
		htmx.Redirect(w, r, routepath.Root)
		return "", nil, false
	}
	return viewID, manager, true
}

// respond answers a mutation: htmx gets the refreshed component, plain form
// posts are redirected to the view.
func (h *Handler) respond(w http.ResponseWriter, r *http.Request, viewID string, manager *Manager, loc *message.Printer) {
	if htmx.IsHTMXRequest(r) {
		htmx.RenderPage(w, r, templates.Manager(buildManagerView(viewID, manager.Snapshot()), loc), nil)
		return
	}
	htmx.Redirect(w, r, routepath.View(viewID))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, viewID string, state roster.State, loc *message.Printer, lang string) {
	view := buildManagerView(viewID, state)
	page := templates.PageContext{
		Lang:      lang,
		Loc:       loc,
		Languages: languageOptions(r, loc, lang),
	}
	htmx.RenderPage(w, r, templates.Manager(view, loc), templates.Page(view, page))
}

func buildManagerView(viewID string, state roster.State) templates.ManagerView {
	rows := make([]templates.UserRow, 0, len(state.Users))
	for _, user := range state.Users {
		rows = append(rows, templates.UserRow{
			ID:           user.ID.String(),
			Name:         user.Name,
			Email:        user.Email,
			Department:   user.Department,
			EditAction:   routepath.ViewEdit(viewID, user.ID.String()),
			DeleteAction: routepath.ViewDelete(viewID, user.ID.String()),
		})
	}
	return templates.ManagerView{
		FormAction:   routepath.ViewForm(viewID),
		SubmitAction: routepath.ViewSubmit(viewID),
		Form: templates.FormValues{
			Name:       state.Form.Name,
			Email:      state.Form.Email,
			Department: state.Form.Department,
		},
		Editing:  state.Mode.IsEditing(),
		ErrorKey: state.Failure.MessageKey(),
		Users:    rows,
	}
}

func languageOptions(r *http.Request, loc *message.Printer, active string) []templates.LanguageOption {
	path := routepath.Root
	if r != nil && r.URL.Path != "" {
		path = r.URL.Path
	}
	supported := i18n.Supported()
	options := make([]templates.LanguageOption, 0, len(supported))
	for _, tag := range supported {
		query := url.Values{i18n.LangParam: []string{tag.String()}}
		options = append(options, templates.LanguageOption{
			Label:  loc.Sprintf(i18n.LanguageKey(tag)),
			URL:    path + "?" + query.Encode(),
			Active: tag.String() == active,
		})
	}
	return options
}

func requireSameOrigin(w http.ResponseWriter, r *http.Request, loc *message.Printer) bool {
	if origin := strings.TrimSpace(r.Header.Get("Origin")); origin != "" {
		if sameOrigin(origin, r) {
			return true
		}
	} else if referer := strings.TrimSpace(r.Referer()); referer != "" {
		if sameOrigin(referer, r) {
			return true
		}
	}
	http.Error(w, loc.Sprintf("error.csrf_invalid"), http.StatusForbidden)
	return false
}

func sameOrigin(rawURL string, r *http.Request) bool {
	if rawURL == "" || rawURL == "null" {
		return false
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false
	}
	if !strings.EqualFold(parsed.Host, r.Host) {
		return false
	}
	if parsed.Scheme != "" {
		return strings.EqualFold(parsed.Scheme, requestScheme(r))
	}
	return true
}

func requestScheme(r *http.Request) string {
	if proto := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")); proto != "" {
		parts := strings.Split(proto, ",")
		return strings.ToLower(strings.TrimSpace(parts[0]))
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
