package order

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/apperr"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/authz"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/product"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/user"
)

// Store is the persistence surface the service needs; *Repo implements it.
type Store interface {
	CreateWithStock(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, f Filter) ([]Order, int, error)
	Update(ctx context.Context, o *Order, oldCantidad int) error
	DeleteWithRestock(ctx context.Context, id, productoID string, cantidad int) error
	UpdateStatus(ctx context.Context, id string, s Status) error
}

type ProductStore interface {
	GetByID(ctx context.Context, id string) (*product.Product, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// CreateInput is a validated, normalized order creation request.
type CreateInput struct {
	ProductoID    string
	VendedorID    string
	ClienteID     string
	Cantidad      int
	Ubicacion     string
	Observaciones string
}

type Service struct {
	Orders   Store
	Products ProductStore
	Users    UserStore
}

// Create verifies that the referenced product, buyer and seller exist, then
// persists the order with status pendiente while atomically decrementing
// product stock. Stock shortage surfaces as InsufficientStock.
func (s *Service) Create(ctx context.Context, actx authz.AuthContext, in CreateInput) (*Order, error) {
	if d := authz.Authorize(actx, in.ClienteID, in.VendedorID); !d.Allowed {
		return nil, apperr.Forbidden("no tienes permisos para crear este pedido")
	}

	p, err := s.Products.GetByID(ctx, in.ProductoID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("product")
	}
	cliente, err := s.Users.GetByID(ctx, in.ClienteID)
	if err != nil {
		return nil, err
	}
	if cliente == nil {
		return nil, apperr.NotFound("cliente")
	}
	vendedor, err := s.Users.GetByID(ctx, in.VendedorID)
	if err != nil {
		return nil, err
	}
	if vendedor == nil {
		return nil, apperr.NotFound("vendedor")
	}

	o := &Order{
		ID:            uuid.NewString(),
		ProductoID:    in.ProductoID,
		VendedorID:    in.VendedorID,
		ClienteID:     in.ClienteID,
		Cantidad:      in.Cantidad,
		Estado:        StatusPending,
		Ubicacion:     in.Ubicacion,
		FechaCreacion: time.Now().UTC(),
		Observaciones: in.Observaciones,
	}
	if err := s.Orders.CreateWithStock(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

// Get applies the owner-or-admin rule to a single order read.
func (s *Service) Get(ctx context.Context, actx authz.AuthContext, id string) (*Order, error) {
	o, err := s.fetchAuthorized(ctx, actx, id, "ver")
	if err != nil {
		return nil, err
	}
	return o, nil
}

// List returns a page of matching orders plus the total match count. Admins
// see everything; other callers only rows where they are buyer or seller.
// The scoping happens in SQL, not in memory.
func (s *Service) List(ctx context.Context, actx authz.AuthContext, f Filter) ([]Order, int, error) {
	f.CallerID = actx.UserID
	f.Admin = actx.Admin()
	return s.Orders.List(ctx, f)
}

// Update merges the patch into the stored order. A quantity change is
// re-checked against stock + old quantity and the product stock is adjusted
// by the delta, both inside the store transaction.
func (s *Service) Update(ctx context.Context, actx authz.AuthContext, id string, patch Patch) (*Order, error) {
	o, err := s.fetchAuthorized(ctx, actx, id, "modificar")
	if err != nil {
		return nil, err
	}

	oldCantidad := o.Cantidad
	if patch.Cantidad != nil {
		if *patch.Cantidad < 1 {
			return nil, apperr.Validation("la cantidad debe ser un número mayor a 0")
		}
		o.Cantidad = *patch.Cantidad
	}
	if patch.Estado != nil {
		o.Estado = *patch.Estado
	}
	if patch.Ubicacion != nil {
		o.Ubicacion = *patch.Ubicacion
	}
	if patch.FechaEntrega != nil {
		o.FechaEntrega = patch.FechaEntrega
	}
	if patch.Observaciones != nil {
		o.Observaciones = *patch.Observaciones
	}

	if err := s.Orders.Update(ctx, o, oldCantidad); err != nil {
		return nil, err
	}
	return o, nil
}

// Delete removes the order and restores its quantity to product stock.
func (s *Service) Delete(ctx context.Context, actx authz.AuthContext, id string) error {
	o, err := s.fetchAuthorized(ctx, actx, id, "eliminar")
	if err != nil {
		return err
	}
	return s.Orders.DeleteWithRestock(ctx, o.ID, o.ProductoID, o.Cantidad)
}

// ChangeStatus moves the order through its lifecycle without touching
// stock. Delivered and cancelled orders are terminal.
func (s *Service) ChangeStatus(ctx context.Context, actx authz.AuthContext, id string, next Status) (*Order, error) {
	o, err := s.fetchAuthorized(ctx, actx, id, "modificar")
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Estado, next) {
		return nil, apperr.Validation("transición de estado inválida: de %s a %s", o.Estado, next)
	}
	if err := s.Orders.UpdateStatus(ctx, o.ID, next); err != nil {
		return nil, err
	}
	o.Estado = next
	return o, nil
}

func (s *Service) fetchAuthorized(ctx context.Context, actx authz.AuthContext, id, verb string) (*Order, error) {
	o, err := s.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, apperr.NotFound("order")
	}
	if d := authz.Authorize(actx, o.ClienteID, o.VendedorID); !d.Allowed {
		return nil, apperr.Forbidden("no tienes permisos para " + verb + " este pedido")
	}
	return o, nil
}
