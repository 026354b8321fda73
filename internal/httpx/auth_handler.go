package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/apperr"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/auth"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/schema"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/user"
)

type AuthHandler struct {
	Auth *auth.Service
	Log  *slog.Logger
}

func (h *AuthHandler) Register(r *chi.Mux) {
	r.Post("/login", h.login)
	r.Post("/register", h.register)
	r.Get("/verify", h.verify)
	r.Post("/refresh", h.refresh)
}

type tokenResponse struct {
	Token string      `json:"token"`
	User  user.Public `json:"user"`
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(auth.TokenTTL.Seconds()),
	})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var in schema.Login
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, h.Log, apperr.Validation("JSON inválido"))
		return
	}
	email, password, err := in.Validate()
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	token, pub, err := h.Auth.Login(r.Context(), email, password)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.setSessionCookie(w, token)
	writeData(w, http.StatusOK, tokenResponse{Token: token, User: pub})
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var in schema.UserCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, h.Log, apperr.Validation("JSON inválido"))
		return
	}
	u, err := in.Validate()
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	token, pub, err := h.Auth.Register(r.Context(), u)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.setSessionCookie(w, token)
	writeData(w, http.StatusCreated, tokenResponse{Token: token, User: pub})
}

func (h *AuthHandler) verify(w http.ResponseWriter, r *http.Request) {
	token := tokenFrom(r)
	if token == "" {
		writeError(w, h.Log, apperr.Unauthorized("token requerido"))
		return
	}
	claims, err := h.Auth.VerifyToken(token)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeData(w, http.StatusOK, map[string]any{
		"id":    claims.Subject,
		"email": claims.Email,
		"name":  claims.Name,
		"role":  claims.Role,
	})
}

func (h *AuthHandler) refresh(w http.ResponseWriter, r *http.Request) {
	token := tokenFrom(r)
	if token == "" {
		writeError(w, h.Log, apperr.Unauthorized("token requerido"))
		return
	}
	fresh, err := h.Auth.RefreshToken(r.Context(), token)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	h.setSessionCookie(w, fresh)
	writeData(w, http.StatusOK, map[string]string{"token": fresh})
}
