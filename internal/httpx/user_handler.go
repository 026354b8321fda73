package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/apperr"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/auth"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/authz"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/schema"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/user"
)

type UserStore interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
	List(ctx context.Context, page, limit int) ([]user.User, int, error)
	Update(ctx context.Context, u *user.User) error
	Delete(ctx context.Context, id string) error
}

// UserHandler serves the /user CRUD. Creation goes through the auth
// service so password hashing and duplicate-email checks live in one place.
type UserHandler struct {
	Store UserStore
	Auth  *auth.Service
	Log   *slog.Logger
}

func (h *UserHandler) Register(r *chi.Mux, requireAuth func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/user", h.list)
		r.Post("/user", h.create)
		r.Get("/user/{id}", h.get)
		r.Put("/user/{id}", h.update)
		r.Delete("/user/{id}", h.delete)
	})
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)
	users, total, err := h.Store.List(r.Context(), page, limit)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	out := make([]user.Public, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	writeList(w, out, page, limit, total)
}

func (h *UserHandler) get(w http.ResponseWriter, r *http.Request) {
	u, err := h.Store.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if u == nil {
		writeError(w, h.Log, apperr.NotFound("user"))
		return
	}
	writeData(w, http.StatusOK, u.Public())
}

func (h *UserHandler) create(w http.ResponseWriter, r *http.Request) {
	var in schema.UserCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, h.Log, apperr.Validation("JSON inválido"))
		return
	}
	u, err := in.Validate()
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	_, pub, err := h.Auth.Register(r.Context(), u)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeData(w, http.StatusCreated, pub)
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	caller, _ := CallerFrom(r.Context())
	if d := authz.Authorize(caller, id); !d.Allowed {
		writeError(w, h.Log, apperr.Forbidden("no tienes permisos para modificar este usuario"))
		return
	}

	u, err := h.Store.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if u == nil {
		writeError(w, h.Log, apperr.NotFound("user"))
		return
	}

	var in schema.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, h.Log, apperr.Validation("JSON inválido"))
		return
	}
	if err := in.Apply(u); err != nil {
		writeError(w, h.Log, err)
		return
	}
	if err := h.Store.Update(r.Context(), u); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeData(w, http.StatusOK, u.Public())
}

func (h *UserHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	caller, _ := CallerFrom(r.Context())
	if d := authz.Authorize(caller, id); !d.Allowed {
		writeError(w, h.Log, apperr.Forbidden("no tienes permisos para eliminar este usuario"))
		return
	}
	if err := h.Store.Delete(r.Context(), id); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeMessage(w, http.StatusOK, "usuario eliminado")
}
