package httpx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/apperr"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/auth"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/httpx"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/order"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/product"
	"github.com/Sanchez-Santiago/Mi-Americano-Shop/internal/user"
)

// memStore backs every handler in these tests: products, users and orders
// in maps, with the same stock guard semantics as the SQL repos.
type memStore struct {
	products map[string]*product.Product
	users    map[string]*user.User
	orders   map[string]*order.Order
}

func newMemStore() *memStore {
	return &memStore{
		products: map[string]*product.Product{},
		users:    map[string]*user.User{},
		orders:   map[string]*order.Order{},
	}
}

// --- product store ---

func (m *memStore) Create(ctx context.Context, p *product.Product) error {
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id string) (*product.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) List(ctx context.Context, f product.Filter) ([]product.Product, int, error) {
	var out []product.Product
	for _, p := range m.products {
		if f.Nombre != "" && !strings.Contains(strings.ToLower(p.Nombre), strings.ToLower(f.Nombre)) {
			continue
		}
		if f.VendedorID != "" && p.UserID != f.VendedorID {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nombre < out[j].Nombre })
	total := len(out)
	if f.Page > 0 && f.Limit > 0 {
		from := (f.Page - 1) * f.Limit
		if from > total {
			from = total
		}
		to := from + f.Limit
		if to > total {
			to = total
		}
		out = out[from:to]
	}
	return out, total, nil
}

func (m *memStore) Update(ctx context.Context, p *product.Product) error {
	if _, ok := m.products[p.ID]; !ok {
		return apperr.NotFound("product")
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

func (m *memStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.products[id]; !ok {
		return apperr.NotFound("product")
	}
	delete(m.products, id)
	return nil
}

// --- user store (httpx.UserStore + auth.UserStore) ---

type userStore struct{ *memStore }

func (m userStore) Create(ctx context.Context, u *user.User) error {
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m userStore) GetByID(ctx context.Context, id string) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m userStore) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m userStore) List(ctx context.Context, page, limit int) ([]user.User, int, error) {
	var out []user.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, len(out), nil
}

func (m userStore) Update(ctx context.Context, u *user.User) error {
	if _, ok := m.users[u.ID]; !ok {
		return apperr.NotFound("user")
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m userStore) Delete(ctx context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return apperr.NotFound("user")
	}
	delete(m.users, id)
	return nil
}

// --- order store ---

type orderStore struct{ *memStore }

func (m orderStore) CreateWithStock(ctx context.Context, o *order.Order) error {
	p, ok := m.products[o.ProductoID]
	if !ok {
		return apperr.NotFound("product")
	}
	if p.Stock < o.Cantidad {
		return apperr.InsufficientStock(o.ProductoID, o.Cantidad, p.Stock)
	}
	p.Stock -= o.Cantidad
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m orderStore) GetByID(ctx context.Context, id string) (*order.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (m orderStore) List(ctx context.Context, f order.Filter) ([]order.Order, int, error) {
	var out []order.Order
	for _, o := range m.orders {
		if !f.Admin && o.ClienteID != f.CallerID && o.VendedorID != f.CallerID {
			continue
		}
		if f.VendedorID != "" && o.VendedorID != f.VendedorID {
			continue
		}
		if f.Estado != "" && o.Estado != f.Estado {
			continue
		}
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (m orderStore) Update(ctx context.Context, o *order.Order, oldCantidad int) error {
	if _, ok := m.orders[o.ID]; !ok {
		return apperr.NotFound("order")
	}
	if o.Cantidad != oldCantidad {
		p, ok := m.products[o.ProductoID]
		if !ok {
			return apperr.NotFound("product")
		}
		if p.Stock+oldCantidad < o.Cantidad {
			return apperr.InsufficientStock(o.ProductoID, o.Cantidad, p.Stock+oldCantidad)
		}
		p.Stock += oldCantidad - o.Cantidad
	}
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m orderStore) DeleteWithRestock(ctx context.Context, id, productoID string, cantidad int) error {
	if _, ok := m.orders[id]; !ok {
		return apperr.NotFound("order")
	}
	if p, ok := m.products[productoID]; ok {
		p.Stock += cantidad
	}
	delete(m.orders, id)
	return nil
}

func (m orderStore) UpdateStatus(ctx context.Context, id string, s order.Status) error {
	o, ok := m.orders[id]
	if !ok {
		return apperr.NotFound("order")
	}
	o.Estado = s
	return nil
}

// capturePublisher records published events instead of talking to kafka.
type capturePublisher struct {
	messages [][]byte
}

func (c *capturePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	c.messages = append(c.messages, value)
}

// testEnv wires a full router against the in-memory store.
type testEnv struct {
	store   *memStore
	authSvc *auth.Service
	router  *chi.Mux
	events  *capturePublisher
	redis   *redis.Client
}

func newTestEnv() *testEnv { return newTestEnvWith(nil) }

// newTestEnvRedis backs the env with a miniredis instance so the
// status-cache paths run for real.
func newTestEnvRedis(t *testing.T) *testEnv {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return newTestEnvWith(rdb)
}

func newTestEnvWith(rdb *redis.Client) *testEnv {
	store := newMemStore()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	authSvc := auth.NewService(userStore{store}, "test-secret")
	events := &capturePublisher{}

	orderSvc := &order.Service{
		Orders:   orderStore{store},
		Products: store,
		Users:    userStore{store},
	}

	router := httpx.NewRouter([]string{"*"})
	requireAuth := httpx.RequireAuth{Auth: authSvc}.Handler
	(&httpx.AuthHandler{Auth: authSvc, Log: log}).Register(router)
	(&httpx.ProductHandler{Store: store, Log: log}).Register(router, requireAuth)
	(&httpx.UserHandler{Store: userStore{store}, Auth: authSvc, Log: log}).Register(router, requireAuth)
	(&httpx.OrderHandler{
		Service:         orderSvc,
		ProducerCreated: events,
		ProducerStatus:  events,
		ProducerDeleted: events,
		Redis:           rdb,
		Name:            "shop-api-test",
		Log:             log,
	}).Register(router, requireAuth)

	return &testEnv{store: store, authSvc: authSvc, router: router, events: events, redis: rdb}
}

func (e *testEnv) addUser(u *user.User) { e.store.users[u.ID] = u }

// tokenFor mints a session token directly, skipping the bcrypt login path.
func (e *testEnv) tokenFor(u *user.User) string {
	claims := auth.Claims{
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims).SignedString([]byte("test-secret"))
	if err != nil {
		panic(err)
	}
	return token
}

// request runs one HTTP round trip through the full router. An empty token
// leaves the request unauthenticated.
func (e *testEnv) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// envelope mirrors the response shape with Data kept raw so each test can
// decode it into the type it expects.
type envelope struct {
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Error      string          `json:"error"`
	Pagination *struct {
		Page  int `json:"page"`
		Limit int `json:"limit"`
		Total int `json:"total"`
	} `json:"pagination"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rec.Body.String())
	}
	return env
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	env := decodeEnvelope(t, rec)
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		t.Fatalf("decode data: %v (data %q)", err, string(env.Data))
	}
	return v
}

// fixture ids are stable so tests can reference them in request bodies.
const (
	buyerID   = "11111111-1111-4111-8111-111111111111"
	sellerID  = "22222222-2222-4222-8222-222222222222"
	adminID   = "33333333-3333-4333-8333-333333333333"
	outsider  = "44444444-4444-4444-8444-444444444444"
	productID = "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"
)

func (e *testEnv) seed() (buyer, seller, admin, other *user.User) {
	buyer = &user.User{ID: buyerID, Email: "cliente@shop.test", Tel: "+5491111111111", Name: "Cliente", Role: user.RoleCustomer}
	seller = &user.User{ID: sellerID, Email: "vendedor@shop.test", Tel: "+5492222222222", Name: "Vendedor", Role: user.RoleSeller}
	admin = &user.User{ID: adminID, Email: "admin@shop.test", Tel: "+5493333333333", Name: "Admin", Role: user.RoleAdmin}
	other = &user.User{ID: outsider, Email: "otro@shop.test", Tel: "+5494444444444", Name: "Otro", Role: user.RoleCustomer}
	for _, u := range []*user.User{buyer, seller, admin, other} {
		e.addUser(u)
	}
	e.store.products[productID] = &product.Product{
		ID:     productID,
		Nombre: "Remera básica",
		Precio: 1500,
		Stock:  5,
		Talle:  product.SizeM,
		Marca:  "Americano",
		Imagen: "https://cdn.shop.test/remera.png",
		UserID: sellerID,
	}
	return buyer, seller, admin, other
}
