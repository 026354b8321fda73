package user

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/apperr"
)

type Repo struct{ DB *pgxpool.Pool }

const userCols = `id, email, password, tel, name, role`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Tel, &u.Name, &role); err != nil {
		return nil, err
	}
	r, err := ParseRole(role)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "could not read the user", err)
	}
	u.Role = r
	return &u, nil
}

func (r *Repo) Create(ctx context.Context, u *User) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO usuarios(id, email, password, tel, name, role)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		u.ID, strings.ToLower(u.Email), u.Password, u.Tel, u.Name, string(u.Role),
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.Conflict("el email ya está registrado")
	}
	if err != nil {
		return apperr.Internal("create", "user", err)
	}
	return nil
}

// GetByID returns (nil, nil) when no row matches.
func (r *Repo) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := scanUser(r.DB.QueryRow(ctx, `SELECT `+userCols+` FROM usuarios WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal("get", "user", err)
	}
	return u, nil
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.DB.QueryRow(ctx,
		`SELECT `+userCols+` FROM usuarios WHERE email=$1`, strings.ToLower(email)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal("get", "user", err)
	}
	return u, nil
}

// List returns one page plus the total user count.
func (r *Repo) List(ctx context.Context, page, limit int) ([]User, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var total int
	if err := r.DB.QueryRow(ctx, `SELECT count(*) FROM usuarios`).Scan(&total); err != nil {
		return nil, 0, apperr.Internal("list", "users", err)
	}

	rows, err := r.DB.Query(ctx, `
		SELECT `+userCols+` FROM usuarios ORDER BY email
		LIMIT $1 OFFSET $2`, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, apperr.Internal("list", "users", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, apperr.Internal("list", "users", err)
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Internal("list", "users", err)
	}
	return out, total, nil
}

// Update persists a fully merged entity; callers fetch, apply the patch,
// then call Update.
func (r *Repo) Update(ctx context.Context, u *User) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE usuarios SET email=$2, password=$3, tel=$4, name=$5, role=$6
		WHERE id=$1`,
		u.ID, strings.ToLower(u.Email), u.Password, u.Tel, u.Name, string(u.Role),
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return apperr.Conflict("el email ya está registrado")
	}
	if err != nil {
		return apperr.Internal("update", "user", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("user")
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM usuarios WHERE id=$1`, id)
	if err != nil {
		return apperr.Internal("delete", "user", err)
	}
	if ct.RowsAffected() == 0 {
		return apperr.NotFound("user")
	}
	return nil
}
