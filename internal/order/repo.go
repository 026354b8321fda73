package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/apperr"
)

type Repo struct{ DB *pgxpool.Pool }

// Filter narrows List results. When Admin is false the query is scoped to
// rows where CallerID is the buyer or the seller.
type Filter struct {
	CallerID   string
	Admin      bool
	VendedorID string
	Estado     Status
	Page       int
	Limit      int
}

const orderCols = `id, id_producto, id_vendedor, id_cliente, cantidad, estado, ubicacion, fecha_creacion, fecha_entrega, observaciones`

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var estado string
	var obs *string
	if err := row.Scan(&o.ID, &o.ProductoID, &o.VendedorID, &o.ClienteID, &o.Cantidad,
		&estado, &o.Ubicacion, &o.FechaCreacion, &o.FechaEntrega, &obs); err != nil {
		return nil, err
	}
	s, err := ParseStatus(estado)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not read the order", err)
	}
	o.Estado = s
	if obs != nil {
		o.Observaciones = *obs
	}
	return &o, nil
}

// CreateWithStock inserts the order and decrements product stock in one
// transaction. The decrement is a single conditional UPDATE guarded by
// stock >= cantidad; a zero row count means a concurrent order won the
// remaining stock, so the whole transaction rolls back.
func (r *Repo) CreateWithStock(ctx context.Context, o *Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return apperr.Internal("create", "order", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	ct, err := tx.Exec(ctx,
		`UPDATE productos SET stock = stock - $2 WHERE id=$1 AND stock >= $2`,
		o.ProductoID, o.Cantidad)
	if err != nil {
		return apperr.Internal("create", "order", err)
	}
	if ct.RowsAffected() == 0 {
		var available int
		if err := tx.QueryRow(ctx, `SELECT stock FROM productos WHERE id=$1`, o.ProductoID).Scan(&available); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.NotFound("product")
			}
			return apperr.Internal("create", "order", err)
		}
		return apperr.InsufficientStock(o.ProductoID, o.Cantidad, available)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO pedidos(id, id_producto, id_vendedor, id_cliente, cantidad, estado, ubicacion, fecha_creacion, observaciones)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		o.ID, o.ProductoID, o.VendedorID, o.ClienteID, o.Cantidad,
		string(o.Estado), o.Ubicacion, o.FechaCreacion, nullable(o.Observaciones),
	)
	if err != nil {
		return apperr.Internal("create", "order", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return apperr.Internal("create", "order", err)
	}
	return nil
}

// GetByID returns (nil, nil) when no row matches.
func (r *Repo) GetByID(ctx context.Context, id string) (*Order, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM pedidos WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal("get", "order", err)
	}
	return o, nil
}

// List returns one page of matches plus the total match count.
func (r *Repo) List(ctx context.Context, f Filter) ([]Order, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}

	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if !f.Admin {
		p := arg(f.CallerID)
		where = append(where, `(id_cliente = `+p+` OR id_vendedor = `+p+`)`)
	}
	if f.VendedorID != "" {
		where = append(where, `id_vendedor = `+arg(f.VendedorID))
	}
	if f.Estado != "" {
		where = append(where, `estado = `+arg(string(f.Estado)))
	}

	cond := ""
	if len(where) > 0 {
		cond = ` WHERE ` + strings.Join(where, ` AND `)
	}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT count(*) FROM pedidos`+cond, args...).Scan(&total); err != nil {
		return nil, 0, apperr.Internal("list", "orders", err)
	}

	sql := `SELECT ` + orderCols + ` FROM pedidos` + cond +
		` ORDER BY fecha_creacion DESC LIMIT ` + arg(f.Limit) + ` OFFSET ` + arg((f.Page-1)*f.Limit)

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, apperr.Internal("list", "orders", err)
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, apperr.Internal("list", "orders", err)
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Internal("list", "orders", err)
	}
	return out, total, nil
}

// Update persists the merged order. When the quantity changed, product stock
// is adjusted by the delta with the same conditional-UPDATE guard as create:
// stock + oldCantidad must still cover the new quantity.
func (r *Repo) Update(ctx context.Context, o *Order, oldCantidad int) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return apperr.Internal("update", "order", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if o.Cantidad != oldCantidad {
		ct, err := tx.Exec(ctx, `
			UPDATE productos SET stock = stock + $2 - $3
			WHERE id=$1 AND stock + $2 >= $3`,
			o.ProductoID, oldCantidad, o.Cantidad)
		if err != nil {
			return apperr.Internal("update", "order", err)
		}
		if ct.RowsAffected() == 0 {
			var available int
			if err := tx.QueryRow(ctx, `SELECT stock FROM productos WHERE id=$1`, o.ProductoID).Scan(&available); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return apperr.NotFound("product")
				}
				return apperr.Internal("update", "order", err)
			}
			return apperr.InsufficientStock(o.ProductoID, o.Cantidad, available+oldCantidad)
		}
	}

	ct, err := tx.Exec(ctx, `
		UPDATE pedidos
		SET cantidad=$2, estado=$3, ubicacion=$4, fecha_entrega=$5, observaciones=$6
		WHERE id=$1`,
		o.ID, o.Cantidad, string(o.Estado), o.Ubicacion, o.FechaEntrega, nullable(o.Observaciones),
	)
	if err != nil {
		return apperr.Internal("update", "order", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("order")
	}
	if err := tx.Commit(ctx); err != nil {
		return apperr.Internal("update", "order", err)
	}
	return nil
}

// DeleteWithRestock removes the order and returns its quantity to product
// stock in one transaction. A product deleted in the meantime just skips
// the restock; orders referencing deleted products are a known gap.
func (r *Repo) DeleteWithRestock(ctx context.Context, id, productoID string, cantidad int) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return apperr.Internal("delete", "order", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx,
		`UPDATE productos SET stock = stock + $2 WHERE id=$1`, productoID, cantidad); err != nil {
		return apperr.Internal("delete", "order", err)
	}
	ct, err := tx.Exec(ctx, `DELETE FROM pedidos WHERE id=$1`, id)
	if err != nil {
		return apperr.Internal("delete", "order", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("order")
	}
	if err := tx.Commit(ctx); err != nil {
		return apperr.Internal("delete", "order", err)
	}
	return nil
}

// UpdateStatus persists only the status; stock is untouched.
func (r *Repo) UpdateStatus(ctx context.Context, id string, s Status) error {
	ct, err := r.DB.Exec(ctx, `UPDATE pedidos SET estado=$2 WHERE id=$1`, id, string(s))
	if err != nil {
		return apperr.Internal("update", "order", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("order")
	}
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
