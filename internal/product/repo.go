package product

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

// Filter narrows List results; zero values mean "no filter".
type Filter struct {
	Nombre     string
	PrecioMax  *float64
	Talle      Size
	VendedorID string
	Page       int
	Limit      int
}

const productCols = `id, nombre, descripcion, precio, stock, talle, marca, imagen, user_id`

func scanProduct(row pgx.Row) (*Product, error) {
	var p Product
	var talle string
	if err := row.Scan(&p.ID, &p.Nombre, &p.Descripcion, &p.Precio, &p.Stock,
		&talle, &p.Marca, &p.Imagen, &p.UserID); err != nil {
		return nil, err
	}
	t, err := ParseSize(talle)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not read the product", err)
	}
	p.Talle = t
	return &p, nil
}

func (r *Repo) Create(ctx context.Context, p *Product) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO productos(id, nombre, descripcion, precio, stock, talle, marca, imagen, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Nombre, p.Descripcion, p.Precio, p.Stock, string(p.Talle), p.Marca, p.Imagen, p.UserID,
	)
	if err != nil {
		return apperr.Internal("create", "product", err)
	}
	return nil
}

// GetByID returns (nil, nil) when no row matches.
func (r *Repo) GetByID(ctx context.Context, id string) (*Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM productos WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal("get", "product", err)
	}
	return p, nil
}

// List returns one page of matches plus the total match count across all
// pages, so pagination can report the real total.
func (r *Repo) List(ctx context.Context, f Filter) ([]Product, int, error) {
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
	if f.Nombre != "" {
		where = append(where, `nombre ILIKE `+arg("%"+f.Nombre+"%"))
	}
	if f.PrecioMax != nil {
		where = append(where, `precio <= `+arg(*f.PrecioMax))
	}
	if f.Talle != "" {
		where = append(where, `talle = `+arg(string(f.Talle)))
	}
	if f.VendedorID != "" {
		where = append(where, `user_id = `+arg(f.VendedorID))
	}

	cond := ""
	if len(where) > 0 {
		cond = ` WHERE ` + strings.Join(where, ` AND `)
	}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT count(*) FROM productos`+cond, args...).Scan(&total); err != nil {
		return nil, 0, apperr.Internal("list", "products", err)
	}

	sql := `SELECT ` + productCols + ` FROM productos` + cond +
		` ORDER BY nombre LIMIT ` + arg(f.Limit) + ` OFFSET ` + arg((f.Page-1)*f.Limit)

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, apperr.Internal("list", "products", err)
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, apperr.Internal("list", "products", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Internal("list", "products", err)
	}
	return out, total, nil
}

// Update persists a fully merged entity.
func (r *Repo) Update(ctx context.Context, p *Product) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE productos
		SET nombre=$2, descripcion=$3, precio=$4, stock=$5, talle=$6, marca=$7, imagen=$8, user_id=$9
		WHERE id=$1`,
		p.ID, p.Nombre, p.Descripcion, p.Precio, p.Stock, string(p.Talle), p.Marca, p.Imagen, p.UserID,
	)
	if err != nil {
		return apperr.Internal("update", "product", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("product")
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM productos WHERE id=$1`, id)
	if err != nil {
		return apperr.Internal("delete", "product", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("product")
	}
	return nil
}
