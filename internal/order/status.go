package order

import "github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/apperr"

type Status string

const (
	StatusPending   Status = "pendiente"
	StatusInProcess Status = "en_proceso"
	StatusShipped   Status = "enviado"
	StatusDelivered Status = "entregado"
	StatusCancelled Status = "cancelado"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusInProcess, StatusShipped, StatusDelivered, StatusCancelled:
		return Status(s), nil
	}
	return "", apperr.Validation("estado inválido: %q", s)
}

var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusInProcess: true, StatusShipped: true, StatusCancelled: true},
	StatusInProcess: {StatusShipped: true, StatusCancelled: true},
	StatusShipped:   {StatusDelivered: true, StatusCancelled: true},
	StatusDelivered: {},
	StatusCancelled: {},
}

// CanTransition reports whether an order may move from one status to
// another. Delivered and cancelled are terminal.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}
