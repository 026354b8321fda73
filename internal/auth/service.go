package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/apperr"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/authz"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/user"
)

const TokenTTL = 24 * time.Hour

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id string) (*user.User, error)
	Create(ctx context.Context, u *user.User) error
}

// Claims are the session token contents. The password hash never goes in.
type Claims struct {
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  user.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Context() authz.AuthContext {
	return authz.AuthContext{UserID: c.Subject, Role: c.Role}
}

type Service struct {
	Users  UserStore
	Secret []byte
	TTL    time.Duration
}

func NewService(users UserStore, secret string) *Service {
	return &Service{Users: users, Secret: []byte(secret), TTL: TokenTTL}
}

// Register persists a new customer and returns a fresh session token.
// A duplicate email fails with Conflict.
func (s *Service) Register(ctx context.Context, u *user.User) (string, user.Public, error) {
	existing, err := s.Users.GetByEmail(ctx, u.Email)
	if err != nil {
		return "", user.Public{}, err
	}
	if existing != nil {
		return "", user.Public{}, apperr.Conflict("el usuario ya existe")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", user.Public{}, apperr.Internal("create", "user", err)
	}
	u.ID = uuid.NewString()
	u.Password = string(hash)
	u.Role = user.RoleCustomer

	if err := s.Users.Create(ctx, u); err != nil {
		return "", user.Public{}, err
	}
	token, err := s.issueToken(u)
	if err != nil {
		return "", user.Public{}, err
	}
	return token, u.Public(), nil
}

// Login verifies credentials against the stored bcrypt hash. Both an
// unknown email and a wrong password answer Unauthorized.
func (s *Service) Login(ctx context.Context, email, password string) (string, user.Public, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return "", user.Public{}, err
	}
	if u == nil {
		return "", user.Public{}, apperr.Unauthorized("credenciales inválidas")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return "", user.Public{}, apperr.Unauthorized("credenciales inválidas")
	}
	token, err := s.issueToken(u)
	if err != nil {
		return "", user.Public{}, err
	}
	return token, u.Public(), nil
}

// VerifyToken checks signature and expiry and returns the decoded claims.
func (s *Service) VerifyToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.Secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apperr.Unauthorized("token inválido")
	}
	return claims, nil
}

// RefreshToken verifies the old token, confirms the user still exists and
// issues a token with a fresh expiry.
func (s *Service) RefreshToken(ctx context.Context, oldToken string) (string, error) {
	claims, err := s.VerifyToken(oldToken)
	if err != nil {
		return "", err
	}
	u, err := s.Users.GetByID(ctx, claims.Subject)
	if err != nil {
		return "", err
	}
	if u == nil {
		return "", apperr.Unauthorized("usuario no encontrado")
	}
	return s.issueToken(u)
}

func (s *Service) issueToken(u *user.User) (string, error) {
	ttl := s.TTL
	if ttl == 0 {
		ttl = TokenTTL
	}
	now := time.Now()
	claims := Claims{
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "could not issue the token", err)
	}
	return token, nil
}
