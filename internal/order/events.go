package order

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated       = "PedidoCreated"
	EventOrderStatusChanged = "PedidoStatusChanged"
	EventOrderDeleted       = "PedidoDeleted"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // pedido id
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreatedPayload struct {
	OrderID    string `json:"pedido_id"`
	ProductoID string `json:"producto_id"`
	ClienteID  string `json:"cliente_id"`
	VendedorID string `json:"vendedor_id"`
	Cantidad   int    `json:"cantidad"`
	Estado     Status `json:"estado"`
}

type OrderStatusChangedPayload struct {
	OrderID string `json:"pedido_id"`
	Estado  Status `json:"estado"`
}

type OrderDeletedPayload struct {
	OrderID    string `json:"pedido_id"`
	ProductoID string `json:"producto_id"`
	Cantidad   int    `json:"cantidad"` // stock restored
}
