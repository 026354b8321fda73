package httpx

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/apperr"
	kafkax "github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/kafka"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/order"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/redisx"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/schema"
)

// EventPublisher is what the handler needs from the kafka producer;
// *kafka.Producer implements it. Nil disables event publishing.
type EventPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// OrderHandler publishes each lifecycle event through its own producer,
// one per topic, mirroring how the writers are wired in cmd/api.
type OrderHandler struct {
	Service         *order.Service
	ProducerCreated EventPublisher
	ProducerStatus  EventPublisher
	ProducerDeleted EventPublisher
	Redis           *redis.Client
	Name            string // producer name in event envelopes
	Log             *slog.Logger
}

func (h *OrderHandler) Register(r *chi.Mux, requireAuth func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/pedidos", h.list)
		r.Post("/pedidos", h.create)
		r.Get("/pedidos/{id}", h.get)
		r.Put("/pedidos/{id}", h.update)
		r.Delete("/pedidos/{id}", h.delete)
		r.Patch("/pedidos/{id}/estado", h.changeStatus)
		r.Get("/pedidos/{id}/estado", h.getStatus)
		r.Get("/pedidos/vendedor/{vendedorId}", h.listBySeller)
	})
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())
	f := order.Filter{
		Page:  queryInt(r, "page", 1),
		Limit: queryInt(r, "limit", 20),
	}
	if v := r.URL.Query().Get("estado"); v != "" {
		estado, err := order.ParseStatus(v)
		if err != nil {
			writeError(w, h.Log, err)
			return
		}
		f.Estado = estado
	}
	pedidos, total, err := h.Service.List(r.Context(), caller, f)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeList(w, pedidos, f.Page, f.Limit, total)
}

func (h *OrderHandler) listBySeller(w http.ResponseWriter, r *http.Request) {
	vendedorID := chi.URLParam(r, "vendedorId")
	if _, err := uuid.Parse(vendedorID); err != nil {
		writeError(w, h.Log, apperr.Validation("ID inválido para vendedor"))
		return
	}
	caller, _ := CallerFrom(r.Context())
	f := order.Filter{
		VendedorID: vendedorID,
		Page:       queryInt(r, "page", 1),
		Limit:      queryInt(r, "limit", 20),
	}
	pedidos, total, err := h.Service.List(r.Context(), caller, f)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeList(w, pedidos, f.Page, f.Limit, total)
}

func (h *OrderHandler) get(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())
	o, err := h.Service.Get(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeData(w, http.StatusOK, o)
}

// getStatus loads the order first so the owner-or-admin check always runs,
// then prefers the redis cache for the status itself: the projector may hold
// a fresher value than the row this instance just read. A cache miss is
// refilled on the way out.
func (h *OrderHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	caller, _ := CallerFrom(r.Context())

	o, err := h.Service.Get(r.Context(), caller, id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrderStatus, id)
		if s, err := h.Redis.Get(r.Context(), key).Result(); err == nil && s != "" {
			writeData(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	h.cacheStatus(r, o.ID, o.Estado)
	writeData(w, http.StatusOK, map[string]any{"estado": o.Estado})
}

func (h *OrderHandler) create(w http.ResponseWriter, r *http.Request) {
	var in schema.OrderCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, h.Log, apperr.Validation("JSON inválido"))
		return
	}
	input, err := in.Validate()
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	caller, _ := CallerFrom(r.Context())
	o, err := h.Service.Create(r.Context(), caller, input)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	h.cacheStatus(r, o.ID, o.Estado)
	h.publish(r, h.ProducerCreated, order.EventOrderCreated, o.ID, order.OrderCreatedPayload{
		OrderID:    o.ID,
		ProductoID: o.ProductoID,
		ClienteID:  o.ClienteID,
		VendedorID: o.VendedorID,
		Cantidad:   o.Cantidad,
		Estado:     o.Estado,
	})
	writeData(w, http.StatusCreated, o)
}

func (h *OrderHandler) update(w http.ResponseWriter, r *http.Request) {
	var in schema.OrderUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, h.Log, apperr.Validation("JSON inválido"))
		return
	}
	patch, err := in.Validate()
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	caller, _ := CallerFrom(r.Context())
	o, err := h.Service.Update(r.Context(), caller, chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.cacheStatus(r, o.ID, o.Estado)
	writeData(w, http.StatusOK, o)
}

func (h *OrderHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	caller, _ := CallerFrom(r.Context())
	o, err := h.Service.Get(r.Context(), caller, id)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	if err := h.Service.Delete(r.Context(), caller, id); err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.publish(r, h.ProducerDeleted, order.EventOrderDeleted, o.ID, order.OrderDeletedPayload{
		OrderID:    o.ID,
		ProductoID: o.ProductoID,
		Cantidad:   o.Cantidad,
	})
	writeMessage(w, http.StatusOK, "pedido eliminado")
}

func (h *OrderHandler) changeStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Estado string `json:"estado"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, h.Log, apperr.Validation("JSON inválido"))
		return
	}
	next, err := order.ParseStatus(in.Estado)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	caller, _ := CallerFrom(r.Context())
	o, err := h.Service.ChangeStatus(r.Context(), caller, chi.URLParam(r, "id"), next)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.cacheStatus(r, o.ID, o.Estado)
	h.publish(r, h.ProducerStatus, order.EventOrderStatusChanged, o.ID, order.OrderStatusChangedPayload{
		OrderID: o.ID,
		Estado:  o.Estado,
	})
	writeData(w, http.StatusOK, o)
}

func (h *OrderHandler) cacheStatus(r *http.Request, orderID string, estado order.Status) {
	if h.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	body, _ := json.Marshal(map[string]any{"estado": estado})
	_ = h.Redis.Set(r.Context(), key, body, redisx.TTLStatusCache).Err()
}

func (h *OrderHandler) publish(r *http.Request, p EventPublisher, eventType, orderID string, payload any) {
	if p == nil {
		return
	}
	ev := order.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Name,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(order.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
