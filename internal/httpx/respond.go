package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/apperr"
)

// Envelope is the uniform response shape: {success, data?, message?|error?}.
type Envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Error      string      `json:"error,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, code int, data any) {
	writeJSON(w, code, Envelope{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, Envelope{Success: true, Message: msg})
}

func writeList(w http.ResponseWriter, data any, page, limit, total int) {
	writeJSON(w, http.StatusOK, Envelope{
		Success:    true,
		Data:       data,
		Pagination: &Pagination{Page: page, Limit: limit, Total: total},
	})
}

func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindInsufficientStock:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps the error Kind to a status and sends the sanitized
// message. The underlying cause only reaches the server log.
func writeError(w http.ResponseWriter, log *slog.Logger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.KindInternal {
		log.Error("request failed", "err", err)
	} else {
		log.Debug("request rejected", "kind", kind.String(), "err", err)
	}
	writeJSON(w, statusOf(kind), Envelope{Success: false, Error: apperr.ClientMessage(err)})
}
