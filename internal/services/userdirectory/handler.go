package userdirectory

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/louisbranch/userdesk/internal/platform/httpx"
	"github.com/louisbranch/userdesk/internal/services/userdirectory/storage"
)

const (
	tracerName = "github.com/louisbranch/userdesk/internal/services/userdirectory"

	// UsersPath is the collection route.
	UsersPath = "/users"
	// HealthPath reports process liveness.
	HealthPath = "/healthz"

	userIDPathValue = "id"
	maxRequestBody  = 1 << 20
)

// userRecord is the JSON shape of one user.
type userRecord struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

// userInput is the writable part of a record. A posted id is ignored.
type userInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

func recordFromUser(user storage.User) userRecord {
	return userRecord{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Department: user.Department,
	}
}

// Handler serves the user collection.
type Handler struct {
	store storage.UserStore
}

// NewHandler routes the collection API over store.
func NewHandler(store storage.UserStore) http.Handler {
	handler := &Handler{store: store}
	return httpx.Chain(handler.routes(),
		httpx.RecoverPanic(),
		httpx.RequestID("userdirectory"),
		httpx.Trace(tracerName),
	)
}

func (h *Handler) routes() http.Handler {
	mux := http.NewServeMux()
	item := UsersPath + "/{" + userIDPathValue + "}"
	mux.HandleFunc(http.MethodGet+" "+HealthPath, h.handleHealth)
	mux.HandleFunc(http.MethodGet+" "+UsersPath, h.handleList)
	mux.HandleFunc(http.MethodPost+" "+UsersPath, h.handleCreate)
	mux.HandleFunc(http.MethodGet+" "+item, h.handleGet)
	mux.HandleFunc(http.MethodPut+" "+item, h.handleUpdate)
	mux.HandleFunc(http.MethodDelete+" "+item, h.handleDelete)
	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.writeStoreError(w, "list users", err)
		return
	}
	records := make([]userRecord, 0, len(users))
	for _, user := range users {
		records = append(records, recordFromUser(user))
	}
	_ = httpx.WriteJSON(w, http.StatusOK, records)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeInput(w, r)
	if !ok {
		return
	}
	user, err := h.store.CreateUser(r.Context(), input)
	if err != nil {
		h.writeStoreError(w, "create user", err)
		return
	}
	w.Header().Set("Location", UsersPath+"/"+strconv.FormatInt(user.ID, 10))
	_ = httpx.WriteJSON(w, http.StatusCreated, recordFromUser(user))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}
	user, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, "get user", err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, recordFromUser(user))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}
	input, ok := decodeInput(w, r)
	if !ok {
		return
	}
	user, err := h.store.UpdateUser(r.Context(), id, input)
	if err != nil {
		h.writeStoreError(w, "update user", err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, recordFromUser(user))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseUserID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteUser(r.Context(), id); err != nil {
		h.writeStoreError(w, "delete user", err)
		return
	}
	_ = httpx.WriteJSON(w, http.StatusOK, struct{}{})
}

func (h *Handler) writeStoreError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		_ = httpx.WriteJSONError(w, http.StatusNotFound, "user not found")
		return
	}
	log.Printf("%s: %v", op, err)
	_ = httpx.WriteJSONError(w, http.StatusInternalServerError, "internal error")
}

// parseUserID accepts only positive integer ids; anything else cannot name
// a stored row.
func parseUserID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(r.PathValue(userIDPathValue))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		_ = httpx.WriteJSONError(w, http.StatusNotFound, "user not found")
		return 0, false
	}
	return id, true
}

func decodeInput(w http.ResponseWriter, r *http.Request) (storage.UserInput, bool) {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	var input userInput
	if err := decoder.Decode(&input); err != nil {
		_ = httpx.WriteJSONError(w, http.StatusBadRequest, "invalid json body")
		return storage.UserInput{}, false
	}
	if err := decoder.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		_ = httpx.WriteJSONError(w, http.StatusBadRequest, "invalid json body")
		return storage.UserInput{}, false
	}
	return storage.UserInput{
		Name:       strings.TrimSpace(input.Name),
		Email:      strings.TrimSpace(input.Email),
		Department: strings.TrimSpace(input.Department),
	}, true
}
