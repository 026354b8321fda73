package schema

import (
	"strings"
	"time"

	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/apperr"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/order"
)

type OrderCreate struct {
	IDProducto    string `json:"idProducto"`
	IDVendedor    string `json:"idVendedor"`
	IDCliente     string `json:"idCliente"`
	Cantidad      int    `json:"cantidad"`
	Ubicacion     string `json:"ubicacion"`
	Observaciones string `json:"observaciones"`
}

func (in OrderCreate) Validate() (order.CreateInput, error) {
	var zero order.CreateInput
	if in.IDCliente == "" || in.IDProducto == "" || in.IDVendedor == "" || in.Cantidad == 0 || in.Ubicacion == "" {
		return zero, apperr.Validation("faltan campos obligatorios: idCliente, idProducto, idVendedor, cantidad, ubicacion")
	}
	if err := validateUUID(in.IDProducto, "producto"); err != nil {
		return zero, err
	}
	if err := validateUUID(in.IDVendedor, "vendedor"); err != nil {
		return zero, err
	}
	if err := validateUUID(in.IDCliente, "cliente"); err != nil {
		return zero, err
	}
	if in.Cantidad < 1 {
		return zero, apperr.Validation("la cantidad debe ser un número mayor a 0")
	}
	ubicacion := strings.TrimSpace(in.Ubicacion)
	if len(ubicacion) < 5 || len(ubicacion) > 100 {
		return zero, apperr.Validation("la ubicación debe tener entre 5 y 100 caracteres")
	}
	return order.CreateInput{
		ProductoID:    in.IDProducto,
		VendedorID:    in.IDVendedor,
		ClienteID:     in.IDCliente,
		Cantidad:      in.Cantidad,
		Ubicacion:     ubicacion,
		Observaciones: strings.TrimSpace(in.Observaciones),
	}, nil
}

// OrderUpdate cannot retarget the product, buyer or seller; only the
// lifecycle fields are patchable.
type OrderUpdate struct {
	Cantidad      *int       `json:"cantidad"`
	Estado        *string    `json:"estado"`
	Ubicacion     *string    `json:"ubicacion"`
	FechaEntrega  *time.Time `json:"fechaEntrega"`
	Observaciones *string    `json:"observaciones"`
}

func (in OrderUpdate) Validate() (order.Patch, error) {
	var p order.Patch
	if in.Cantidad != nil {
		if *in.Cantidad < 1 {
			return order.Patch{}, apperr.Validation("la cantidad debe ser un número mayor a 0")
		}
		p.Cantidad = in.Cantidad
	}
	if in.Estado != nil {
		estado, err := order.ParseStatus(*in.Estado)
		if err != nil {
			return order.Patch{}, err
		}
		p.Estado = &estado
	}
	if in.Ubicacion != nil {
		ubicacion := strings.TrimSpace(*in.Ubicacion)
		if len(ubicacion) < 5 || len(ubicacion) > 100 {
			return order.Patch{}, apperr.Validation("la ubicación debe tener entre 5 y 100 caracteres")
		}
		p.Ubicacion = &ubicacion
	}
	if in.FechaEntrega != nil {
		p.FechaEntrega = in.FechaEntrega
	}
	if in.Observaciones != nil {
		obs := strings.TrimSpace(*in.Observaciones)
		p.Observaciones = &obs
	}
	return p, nil
}
