package httpx

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/apperr"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/authz"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/product"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/schema"
)

type ProductStore interface {
	Create(ctx context.Context, p *product.Product) error
	GetByID(ctx context.Context, id string) (*product.Product, error)
	List(ctx context.Context, f product.Filter) ([]product.Product, int, error)
	Update(ctx context.Context, p *product.Product) error
	Delete(ctx context.Context, id string) error
}

type ProductHandler struct {
	Store ProductStore
	Log   *slog.Logger
}

func (h *ProductHandler) Register(r *chi.Mux, requireAuth func(http.Handler) http.Handler) {
	r.Get("/productos", h.list)
	r.Get("/productos/{id}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/productos", h.create)
		r.Put("/productos/{id}", h.update)
		r.Delete("/productos/{id}", h.delete)
	})
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := product.Filter{
		Nombre:     q.Get("nombre"),
		VendedorID: q.Get("vendedor"),
		Page:       queryInt(r, "page", 1),
		Limit:      queryInt(r, "limit", 20),
	}
	if v := q.Get("precio"); v != "" {
		precio, err := strconv.ParseFloat(v, 64)
		if err != nil || precio < 0 {
			writeError(w, h.Log, apperr.Validation("precio inválido"))
			return
		}
		f.PrecioMax = &precio
	}
	if v := q.Get("talle"); v != "" {
		talle, err := product.ParseSize(v)
		if err != nil {
			writeError(w, h.Log, err)
			return
		}
		f.Talle = talle
	}

	ps, total, err := h.Store.List(r.Context(), f)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	out := make([]product.Public, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Public())
	}
	writeList(w, out, f.Page, f.Limit, total)
}

func (h *ProductHandler) get(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if p == nil {
		writeError(w, h.Log, apperr.NotFound("product"))
		return
	}
	writeData(w, http.StatusOK, p.Public())
}

func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	var in schema.ProductCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, h.Log, apperr.Validation("JSON inválido"))
		return
	}
	p, err := in.Validate()
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	caller, _ := CallerFrom(r.Context())
	if d := authz.Authorize(caller, p.UserID); !d.Allowed {
		writeError(w, h.Log, apperr.Forbidden("no tienes permisos para crear este producto"))
		return
	}
	p.ID = uuid.NewString()
	if err := h.Store.Create(r.Context(), p); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeData(w, http.StatusCreated, p)
}

func (h *ProductHandler) update(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if p == nil {
		writeError(w, h.Log, apperr.NotFound("product"))
		return
	}
	caller, _ := CallerFrom(r.Context())
	if d := authz.Authorize(caller, p.UserID); !d.Allowed {
		writeError(w, h.Log, apperr.Forbidden("no tienes permisos para modificar este producto"))
		return
	}

	var in schema.ProductUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, h.Log, apperr.Validation("JSON inválido"))
		return
	}
	if err := in.Apply(p); err != nil {
		writeError(w, h.Log, err)
		return
	}
	if err := h.Store.Update(r.Context(), p); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *ProductHandler) delete(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if p == nil {
		writeError(w, h.Log, apperr.NotFound("product"))
		return
	}
	caller, _ := CallerFrom(r.Context())
	if d := authz.Authorize(caller, p.UserID); !d.Allowed {
		writeError(w, h.Log, apperr.Forbidden("no tienes permisos para eliminar este producto"))
		return
	}
	if err := h.Store.Delete(r.Context(), p.ID); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeMessage(w, http.StatusOK, "producto eliminado")
}
