package schema

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/apperr"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/user"
)

var telRe = regexp.MustCompile(`^\+?\d{10,15}$`)

func validateEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", apperr.Validation("email inválido")
	}
	return email, nil
}

func validateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if len(name) < 2 || len(name) > 100 {
		return "", apperr.Validation("el nombre debe tener entre 2 y 100 caracteres")
	}
	return name, nil
}

func validateTel(raw string) (string, error) {
	tel := strings.TrimSpace(raw)
	if !telRe.MatchString(tel) {
		return "", apperr.Validation("número telefónico inválido")
	}
	return tel, nil
}

func validatePassword(pw string) error {
	if len(pw) < 6 || len(pw) > 100 {
		return apperr.Validation("el password debe tener entre 6 y 100 caracteres")
	}
	return nil
}

// UserCreate is the register input; role is always cliente and never
// client-supplied.
type UserCreate struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Tel      string `json:"tel"`
	Name     string `json:"name"`
}

// Validate returns a normalized User with the plaintext password still in
// place; the auth service hashes it before persisting.
func (in UserCreate) Validate() (*user.User, error) {
	email, err := validateEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	tel, err := validateTel(in.Tel)
	if err != nil {
		return nil, err
	}
	name, err := validateName(in.Name)
	if err != nil {
		return nil, err
	}
	return &user.User{
		Email:    email,
		Password: in.Password,
		Tel:      tel,
		Name:     name,
		Role:     user.RoleCustomer,
	}, nil
}

type UserUpdate struct {
	Email *string `json:"email"`
	Tel   *string `json:"tel"`
	Name  *string `json:"name"`
}

// Apply validates present fields and merges them into u. Role and password
// are not updatable through this path.
func (in UserUpdate) Apply(u *user.User) error {
	merged := *u
	if in.Email != nil {
		email, err := validateEmail(*in.Email)
		if err != nil {
			return err
		}
		merged.Email = email
	}
	if in.Tel != nil {
		tel, err := validateTel(*in.Tel)
		if err != nil {
			return err
		}
		merged.Tel = tel
	}
	if in.Name != nil {
		name, err := validateName(*in.Name)
		if err != nil {
			return err
		}
		merged.Name = name
	}
	*u = merged
	return nil
}

type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in Login) Validate() (email, password string, err error) {
	email, err = validateEmail(in.Email)
	if err != nil {
		return "", "", err
	}
	if in.Password == "" {
		return "", "", apperr.Validation("el password es obligatorio")
	}
	return email, in.Password, nil
}
