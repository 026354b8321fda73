package httpx_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/order"
)

func orderBody(cantidad int) map[string]any {
	return map[string]any{
		"idProducto": productID,
		"idVendedor": sellerID,
		"idCliente":  buyerID,
		"cantidad":   cantidad,
		"ubicacion":  "Av. Corrientes 1234, CABA",
	}
}

func TestCreateOrderEndpoint(t *testing.T) {
	env := newTestEnv()
	buyer, _, _, other := env.seed()

	rec := env.request(t, http.MethodPost, "/pedidos", env.tokenFor(buyer), orderBody(3))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decodeData[order.Order](t, rec)
	assert.Equal(t, order.StatusPending, created.Estado)
	assert.Equal(t, 3, created.Cantidad)
	assert.Equal(t, 2, env.store.products[productID].Stock, "stock should drop by the ordered quantity")

	require.Len(t, env.events.messages, 1)
	var ev order.Envelope
	require.NoError(t, json.Unmarshal(env.events.messages[0], &ev))
	assert.Equal(t, order.EventOrderCreated, ev.EventType)
	assert.Equal(t, created.ID, ev.CorrelationID)

	t.Run("insufficient stock", func(t *testing.T) {
		rec := env.request(t, http.MethodPost, "/pedidos", env.tokenFor(buyer), orderBody(4))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, decodeEnvelope(t, rec).Success)
		assert.Equal(t, 2, env.store.products[productID].Stock, "failed order must not touch stock")
	})

	t.Run("outsider cannot order for others", func(t *testing.T) {
		rec := env.request(t, http.MethodPost, "/pedidos", env.tokenFor(other), orderBody(1))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown product", func(t *testing.T) {
		body := orderBody(1)
		body["idProducto"] = "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb"
		rec := env.request(t, http.MethodPost, "/pedidos", env.tokenFor(buyer), body)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing ubicacion", func(t *testing.T) {
		body := orderBody(1)
		delete(body, "ubicacion")
		rec := env.request(t, http.MethodPost, "/pedidos", env.tokenFor(buyer), body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		rec := env.request(t, http.MethodPost, "/pedidos", "", orderBody(1))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestGetOrderEndpoint(t *testing.T) {
	env := newTestEnv()
	buyer, seller, admin, other := env.seed()

	rec := env.request(t, http.MethodPost, "/pedidos", env.tokenFor(buyer), orderBody(1))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeData[order.Order](t, rec)

	for name, u := range map[string]string{
		"buyer":  env.tokenFor(buyer),
		"seller": env.tokenFor(seller),
		"admin":  env.tokenFor(admin),
	} {
		t.Run(name+" can read", func(t *testing.T) {
			rec := env.request(t, http.MethodGet, "/pedidos/"+created.ID, u, nil)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}

	t.Run("outsider forbidden", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/pedidos/"+created.ID, env.tokenFor(other), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown id", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/pedidos/cccccccc-cccc-4ccc-8ccc-cccccccccccc", env.tokenFor(admin), nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("status falls back to store without redis", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/pedidos/"+created.ID+"/estado", env.tokenFor(buyer), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		data := decodeData[map[string]string](t, rec)
		assert.Equal(t, "pendiente", data["estado"])
	})
}

func TestGetOrderStatusCached(t *testing.T) {
	env := newTestEnvRedis(t)
	buyer, seller, _, other := env.seed()

	rec := env.request(t, http.MethodPost, "/pedidos", env.tokenFor(buyer), orderBody(1))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeData[order.Order](t, rec)

	// the create already warmed the cache
	cached, err := env.redis.Get(context.Background(), "pedido_status:"+created.ID).Result()
	require.NoError(t, err)
	assert.Contains(t, cached, "pendiente")

	t.Run("warm cache still requires ownership", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/pedidos/"+created.ID+"/estado", env.tokenFor(other), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("owner reads the cached value", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/pedidos/"+created.ID+"/estado", env.tokenFor(buyer), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		data := decodeData[map[string]string](t, rec)
		assert.Equal(t, "pendiente", data["estado"])
	})

	t.Run("status change refreshes the cache", func(t *testing.T) {
		rec := env.request(t, http.MethodPatch, "/pedidos/"+created.ID+"/estado", env.tokenFor(seller), map[string]string{"estado": "en_proceso"})
		require.Equal(t, http.StatusOK, rec.Code)

		cached, err := env.redis.Get(context.Background(), "pedido_status:"+created.ID).Result()
		require.NoError(t, err)
		assert.Contains(t, cached, "en_proceso")
	})

	t.Run("cache miss is refilled from the store", func(t *testing.T) {
		require.NoError(t, env.redis.Del(context.Background(), "pedido_status:"+created.ID).Err())

		rec := env.request(t, http.MethodGet, "/pedidos/"+created.ID+"/estado", env.tokenFor(buyer), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		data := decodeData[map[string]string](t, rec)
		assert.Equal(t, "en_proceso", data["estado"])

		cached, err := env.redis.Get(context.Background(), "pedido_status:"+created.ID).Result()
		require.NoError(t, err)
		assert.Contains(t, cached, "en_proceso")
	})
}

func TestUpdateOrderEndpoint(t *testing.T) {
	env := newTestEnv()
	buyer, _, _, other := env.seed()

	rec := env.request(t, http.MethodPost, "/pedidos", env.tokenFor(buyer), orderBody(2))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeData[order.Order](t, rec)
	require.Equal(t, 3, env.store.products[productID].Stock)

	t.Run("quantity change adjusts stock by the delta", func(t *testing.T) {
		rec := env.request(t, http.MethodPut, "/pedidos/"+created.ID, env.tokenFor(buyer), map[string]any{"cantidad": 4})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		updated := decodeData[order.Order](t, rec)
		assert.Equal(t, 4, updated.Cantidad)
		assert.Equal(t, 1, env.store.products[productID].Stock)
	})

	t.Run("quantity beyond available stock", func(t *testing.T) {
		rec := env.request(t, http.MethodPut, "/pedidos/"+created.ID, env.tokenFor(buyer), map[string]any{"cantidad": 10})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, 1, env.store.products[productID].Stock)
	})

	t.Run("outsider forbidden", func(t *testing.T) {
		rec := env.request(t, http.MethodPut, "/pedidos/"+created.ID, env.tokenFor(other), map[string]any{"cantidad": 1})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestChangeOrderStatusEndpoint(t *testing.T) {
	env := newTestEnv()
	buyer, seller, _, _ := env.seed()

	rec := env.request(t, http.MethodPost, "/pedidos", env.tokenFor(buyer), orderBody(1))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeData[order.Order](t, rec)
	env.events.messages = nil

	t.Run("valid transition publishes an event", func(t *testing.T) {
		rec := env.request(t, http.MethodPatch, "/pedidos/"+created.ID+"/estado", env.tokenFor(seller), map[string]string{"estado": "en_proceso"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		updated := decodeData[order.Order](t, rec)
		assert.Equal(t, order.StatusInProcess, updated.Estado)

		require.Len(t, env.events.messages, 1)
		var ev order.Envelope
		require.NoError(t, json.Unmarshal(env.events.messages[0], &ev))
		assert.Equal(t, order.EventOrderStatusChanged, ev.EventType)
	})

	t.Run("skipping backwards is rejected", func(t *testing.T) {
		rec := env.request(t, http.MethodPatch, "/pedidos/"+created.ID+"/estado", env.tokenFor(seller), map[string]string{"estado": "pendiente"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown status", func(t *testing.T) {
		rec := env.request(t, http.MethodPatch, "/pedidos/"+created.ID+"/estado", env.tokenFor(seller), map[string]string{"estado": "confirmado"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestDeleteOrderEndpoint(t *testing.T) {
	env := newTestEnv()
	buyer, _, _, other := env.seed()

	rec := env.request(t, http.MethodPost, "/pedidos", env.tokenFor(buyer), orderBody(3))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeData[order.Order](t, rec)
	require.Equal(t, 2, env.store.products[productID].Stock)
	env.events.messages = nil

	t.Run("outsider forbidden", func(t *testing.T) {
		rec := env.request(t, http.MethodDelete, "/pedidos/"+created.ID, env.tokenFor(other), nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("owner delete restores stock", func(t *testing.T) {
		rec := env.request(t, http.MethodDelete, "/pedidos/"+created.ID, env.tokenFor(buyer), nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, 5, env.store.products[productID].Stock)

		require.Len(t, env.events.messages, 1)
		var ev order.Envelope
		require.NoError(t, json.Unmarshal(env.events.messages[0], &ev))
		assert.Equal(t, order.EventOrderDeleted, ev.EventType)
	})
}

func TestListOrdersEndpoint(t *testing.T) {
	env := newTestEnv()
	buyer, seller, admin, other := env.seed()

	rec := env.request(t, http.MethodPost, "/pedidos", env.tokenFor(buyer), orderBody(1))
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("buyer sees own orders", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/pedidos", env.tokenFor(buyer), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeData[[]order.Order](t, rec), 1)
	})

	t.Run("outsider sees nothing", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/pedidos", env.tokenFor(other), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decodeData[[]order.Order](t, rec))
	})

	t.Run("admin sees everything", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/pedidos", env.tokenFor(admin), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeData[[]order.Order](t, rec), 1)
	})

	t.Run("by seller", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/pedidos/vendedor/"+sellerID, env.tokenFor(seller), nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeData[[]order.Order](t, rec), 1)
	})

	t.Run("by seller with malformed id", func(t *testing.T) {
		rec := env.request(t, http.MethodGet, "/pedidos/vendedor/no-uuid", env.tokenFor(seller), nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
