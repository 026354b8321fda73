// Package projector keeps the redis order-status cache in sync with the
// pedido lifecycle events, so status reads stay cheap even when the API
// instance that handled the write is gone.
package projector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/kafka"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/order"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/redisx"
)

type Service struct {
	Redis *redis.Client
	Name  string
	Log   *slog.Logger
}

// HandleEvent is installed as the consumer handler for every pedido topic.
// Events are deduplicated by event id before they touch the cache.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env order.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.Name, env.EventID)
	if seen, _ := redisx.Exists(ctx, s.Redis, dkey); seen {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	switch env.EventType {
	case order.EventOrderCreated:
		p, err := kafkax.UnwrapPayload[order.OrderCreatedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.setStatus(ctx, p.OrderID, p.Estado)
	case order.EventOrderStatusChanged:
		p, err := kafkax.UnwrapPayload[order.OrderStatusChangedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.setStatus(ctx, p.OrderID, p.Estado)
	case order.EventOrderDeleted:
		p, err := kafkax.UnwrapPayload[order.OrderDeletedPayload](env.Payload)
		if err != nil {
			return err
		}
		return s.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrderStatus, p.OrderID)).Err()
	default:
		s.Log.Debug("ignoring event", "type", env.EventType)
		return nil
	}
}

func (s *Service) setStatus(ctx context.Context, orderID string, estado order.Status) error {
	body, _ := json.Marshal(map[string]any{"estado": estado})
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	return s.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
}
