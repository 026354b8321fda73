package user

import "github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/apperr"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "cliente"
	RoleSeller   Role = "vendedor"
)

// ParseRole rejects anything outside the closed set; stored bad data
// surfaces as an error instead of being silently normalized.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleCustomer, RoleSeller:
		return Role(s), nil
	}
	return "", apperr.Validation("rol inválido: %q", s)
}

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Password string `json:"-"` // bcrypt hash, never serialized
	Tel      string `json:"tel"`
	Name     string `json:"name"`
	Role     Role   `json:"role"`
}

// Public is the projection returned by the API: no password hash.
type Public struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Tel   string `json:"tel"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

func (u User) Public() Public {
	return Public{ID: u.ID, Email: u.Email, Tel: u.Tel, Name: u.Name, Role: u.Role}
}
