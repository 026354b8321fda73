package order

import "time"

type Order struct {
	ID            string     `json:"id"`
	ProductoID    string     `json:"idProducto"`
	VendedorID    string     `json:"idVendedor"`
	ClienteID     string     `json:"idCliente"`
	Cantidad      int        `json:"cantidad"`
	Estado        Status     `json:"estado"`
	Ubicacion     string     `json:"ubicacion"`
	FechaCreacion time.Time  `json:"fechaCreacion"`
	FechaEntrega  *time.Time `json:"fechaEntrega,omitempty"`
	Observaciones string     `json:"observaciones,omitempty"`
}

// Patch carries the mutable fields of an update; nil means "leave as is".
type Patch struct {
	Cantidad      *int
	Estado        *Status
	Ubicacion     *string
	FechaEntrega  *time.Time
	Observaciones *string
}
