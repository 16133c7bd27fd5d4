// Package apitest provides an in-process double of the external REST
// boundary, backed by the local store, for exercising the client layer.
// It speaks the backend's dialect: paginated envelopes, FastAPI-style
// {"detail": ...} error bodies, UUID identifiers.
package apitest

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"lostfound/internal/auth"
	"lostfound/internal/db"
	"lostfound/internal/model"
	"lostfound/internal/store"
)

// Server is the boundary double plus direct handles for test setup.
type Server struct {
	*httptest.Server
	DB *sql.DB
}

// New starts a boundary double over a fresh in-memory database.
func New(t *testing.T) *Server {
	t.Helper()

	database := db.NewTestDB(t)
	secret, err := store.GetSigningSecret(context.Background(), database)
	if err != nil {
		t.Fatalf("signing secret: %v", err)
	}

	h := &handler{db: database, secret: secret}
	ts := httptest.NewServer(h.routes())
	t.Cleanup(ts.Close)

	return &Server{Server: ts, DB: database}
}

type handler struct {
	db     *sql.DB
	secret string
}

func (h *handler) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /items", h.listItems)
	mux.HandleFunc("GET /items/{id}", h.getItem)
	mux.HandleFunc("POST /items", h.createItem)
	mux.HandleFunc("PATCH /items/{id}", h.updateItem)
	mux.HandleFunc("PATCH /items/{id}/status", h.updateStatus)
	mux.HandleFunc("PATCH /items/{id}/flag", h.flagItem)
	mux.HandleFunc("PATCH /admin/items/{id}/approve", h.approveItem)
	mux.HandleFunc("DELETE /admin/items/{id}", h.deleteItem)
	mux.HandleFunc("DELETE /items/{id}", h.deleteItem)
	mux.HandleFunc("GET /users", h.listUsers)
	mux.HandleFunc("POST /users", h.createUser)
	mux.HandleFunc("POST /auth/login", h.login)
	return mux
}

func respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// detail mimics the backend's error body shape.
func detail(w http.ResponseWriter, status int, message string) {
	respond(w, status, map[string]string{"detail": message})
}

func (h *handler) listItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := model.ItemFilter{
		Status:     q.Get("status"),
		Category:   q.Get("category"),
		Query:      q.Get("query"),
		ReporterID: q.Get("reporter_id"),
		Sort:       q.Get("sort"),
	}
	if v := q.Get("is_flagged"); v != "" {
		flagged := v == "true"
		f.Flagged = &flagged
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.PageSize, _ = strconv.Atoi(q.Get("page_size"))

	page, err := store.ListItems(r.Context(), h.db, f)
	if err != nil {
		detail(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	respond(w, http.StatusOK, page)
}

func (h *handler) getItem(w http.ResponseWriter, r *http.Request) {
	item, err := store.GetItem(r.Context(), h.db, r.PathValue("id"))
	if err != nil {
		detail(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		detail(w, http.StatusNotFound, "Item not found")
		return
	}
	respond(w, http.StatusOK, item)
}

func (h *handler) createItem(w http.ResponseWriter, r *http.Request) {
	var draft model.ItemDraft
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		detail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reporter, err := store.GetUser(r.Context(), h.db, draft.ReporterID)
	if err != nil || reporter == nil {
		detail(w, http.StatusNotFound, "Reporter user not found")
		return
	}

	item, err := store.CreateItem(r.Context(), h.db, draft)
	if err != nil {
		detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	respond(w, http.StatusCreated, item)
}

func (h *handler) updateItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := store.GetItem(r.Context(), h.db, id)
	if err != nil || existing == nil {
		detail(w, http.StatusNotFound, "Item not found")
		return
	}

	var patch model.ItemPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		detail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	item, err := store.UpdateItem(r.Context(), h.db, id, patch)
	if err != nil {
		detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	respond(w, http.StatusOK, item)
}

func (h *handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := store.GetItem(r.Context(), h.db, id)
	if err != nil || existing == nil {
		detail(w, http.StatusNotFound, "Item not found")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		detail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := store.SetItemStatus(r.Context(), h.db, id, req.Status); err != nil {
		detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	item, _ := store.GetItem(r.Context(), h.db, id)
	respond(w, http.StatusOK, item)
}

func (h *handler) flagItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := store.GetItem(r.Context(), h.db, id)
	if err != nil || existing == nil {
		detail(w, http.StatusNotFound, "Item not found")
		return
	}

	var req struct {
		Flagged bool   `json:"is_flagged"`
		Reason  string `json:"flagged_reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		detail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := store.SetItemFlag(r.Context(), h.db, id, req.Flagged, req.Reason); err != nil {
		detail(w, http.StatusInternalServerError, "failed to flag item")
		return
	}

	item, _ := store.GetItem(r.Context(), h.db, id)
	respond(w, http.StatusOK, item)
}

func (h *handler) approveItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := store.GetItem(r.Context(), h.db, id)
	if err != nil || existing == nil {
		detail(w, http.StatusNotFound, "Item not found")
		return
	}

	if err := store.SetItemFlag(r.Context(), h.db, id, false, ""); err != nil {
		detail(w, http.StatusInternalServerError, "failed to approve item")
		return
	}

	item, _ := store.GetItem(r.Context(), h.db, id)
	respond(w, http.StatusOK, item)
}

func (h *handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := store.GetItem(r.Context(), h.db, id)
	if err != nil || existing == nil {
		detail(w, http.StatusNotFound, "Item not found")
		return
	}
	if err := store.DeleteItem(r.Context(), h.db, id); err != nil {
		detail(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := store.ListUsers(r.Context(), h.db)
	if err != nil {
		detail(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	respond(w, http.StatusOK, users)
}

func (h *handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Role     string `json:"role"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		detail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	existing, _, err := store.GetUserByEmail(r.Context(), h.db, req.Email)
	if err != nil {
		detail(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		detail(w, http.StatusBadRequest, "Email already registered")
		return
	}

	hash := ""
	if req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
		if err != nil {
			detail(w, http.StatusInternalServerError, "internal error")
			return
		}
		hash = string(hashed)
	}

	user, err := store.CreateUser(r.Context(), h.db, req.Email, req.Name, req.Role, hash)
	if err != nil {
		detail(w, http.StatusInternalServerError, "failed to create user")
		return
	}
	respond(w, http.StatusCreated, user)
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		detail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, hash, err := store.GetUserByEmail(r.Context(), h.db, req.Email)
	if err != nil {
		detail(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		detail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := auth.GenerateToken(h.secret, user.ID, user.Email, user.Role)
	if err != nil {
		detail(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	respond(w, http.StatusOK, map[string]any{"token": token, "user": user})
}
