package redisx

import "time"

const (
	// Cache estado pedido: pedido_status:{pedido_id} -> {"estado": "...", "updated_at": "..."}
	KeyOrderStatus = "pedido_status:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLStatusCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
