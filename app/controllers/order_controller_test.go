package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/campusmart/app/controllers"
	"github.com/shashiranjanraj/campusmart/app/models"
	"github.com/shashiranjanraj/campusmart/app/routes"
	"github.com/shashiranjanraj/campusmart/app/services"
	"github.com/shashiranjanraj/campusmart/pkg/auth"
	"github.com/shashiranjanraj/campusmart/pkg/router"
)

// Minimal in-memory repositories, just enough for the order flow.

type memUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func (m *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) FindByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[primitive.ObjectID]*models.User{}
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			cp := *u
			out[id] = &cp
		}
	}
	return out, nil
}

func (m *memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, services.ErrNotFound
}

func (m *memUsers) All(_ context.Context) ([]models.User, error) { return nil, nil }

func (m *memUsers) Insert(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memUsers) Update(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

type memProducts struct {
	products map[primitive.ObjectID]*models.Product
}

func (m *memProducts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memProducts) FindByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Product, error) {
	out := map[primitive.ObjectID]*models.Product{}
	for _, id := range ids {
		if p, ok := m.products[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

func (m *memProducts) All(_ context.Context, _ string) ([]models.Product, error) { return nil, nil }

func (m *memProducts) Insert(_ context.Context, p *models.Product) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	cp := *p
	m.products[p.ID] = &cp
	return nil
}

type memOrders struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]*models.Order
}

func (m *memOrders) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memOrders) InsertMany(_ context.Context, orders []*models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range orders {
		if o.ID.IsZero() {
			o.ID = primitive.NewObjectID()
		}
		cp := *o
		m.orders[o.ID] = &cp
	}
	return nil
}

func (m *memOrders) SetDeliveryCode(_ context.Context, id primitive.ObjectID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return services.ErrNotFound
	}
	o.OTPHash = hash
	return nil
}

func (m *memOrders) MarkDelivered(_ context.Context, id primitive.ObjectID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return services.ErrNotFound
	}
	o.Status = models.OrderDelivered
	o.DeliveryDate = &at
	o.TransactionDate = &at
	return nil
}

func (m *memOrders) FindByPartyAndStatus(_ context.Context, role string, userID primitive.ObjectID, status string) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Order
	for _, o := range m.orders {
		party := o.BuyerID
		if role == services.RoleSeller {
			party = o.SellerID
		}
		if party == userID && o.Status == status {
			out = append(out, *o)
		}
	}
	return out, nil
}

type apiFixture struct {
	handler http.Handler
	token   string
	buyer   *models.User
	product *models.Product
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	now := time.Now()
	buyer := &models.User{
		ID:        primitive.NewObjectID(),
		FirstName: "Rohan",
		LastName:  "Iyer",
		Email:     "rohan.iyer@students.iiit.ac.in",
		Cart:      []models.CartItem{},
		CreatedAt: now,
	}
	seller := &models.User{
		ID:        primitive.NewObjectID(),
		FirstName: "Asha",
		LastName:  "Verma",
		Email:     "asha.verma@students.iiit.ac.in",
		Cart:      []models.CartItem{},
		CreatedAt: now,
	}
	product := &models.Product{
		ID:        primitive.NewObjectID(),
		Name:      "Desk lamp",
		Price:     250,
		Category:  models.CategoryElectronics,
		SellerID:  seller.ID,
		CreatedAt: now,
	}

	users := &memUsers{users: map[primitive.ObjectID]*models.User{buyer.ID: buyer, seller.ID: seller}}
	products := &memProducts{products: map[primitive.ObjectID]*models.Product{product.ID: product}}
	orders := &memOrders{orders: map[primitive.ObjectID]*models.Order{}}

	tokens := auth.NewManager("controller-test-secret", time.Hour)
	orderService := services.NewOrderService(orders, products, users)
	cartService := services.NewCartService(users, products)

	r := router.New()
	routes.RegisterAPI(r, routes.Controllers{
		Auth:    &controllers.AuthController{},
		User:    &controllers.UserController{},
		Cart:    controllers.NewCartController(cartService),
		Order:   controllers.NewOrderController(orderService, cartService),
		Product: &controllers.ProductController{},
		Chat:    &controllers.ChatController{},
	}, tokens, func(http.ResponseWriter, *http.Request) {})

	token, err := tokens.GenerateToken(buyer.ID.Hex())
	require.NoError(t, err)

	return &apiFixture{handler: r.Handler(), token: token, buyer: buyer, product: product}
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}, authed bool) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var decoded map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), "body: %s", rec.Body.String())
	}
	return rec, decoded
}

func TestOrderEndpoints_RequireAuth(t *testing.T) {
	f := newAPIFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/api/orders?role=buyer&status=pending", nil, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, _ = f.do(t, http.MethodPost, "/api/orders", map[string]interface{}{"items": []interface{}{}}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	f := newAPIFixture(t)

	// Checkout.
	rec, body := f.do(t, http.MethodPost, "/api/orders", map[string]interface{}{
		"items": []map[string]interface{}{
			{"productId": f.product.ID.Hex(), "quantity": 2},
		},
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, float64(1), body["count"])

	created := body["orders"].([]interface{})[0].(map[string]interface{})
	orderID := created["_id"].(string)
	assert.Equal(t, models.OrderPending, created["status"])
	assert.Equal(t, float64(500), created["totalAmount"])

	// The delivery-code hash never serialises.
	_, leaked := created["otp"]
	assert.False(t, leaked)

	// List as buyer.
	rec, body = f.do(t, http.MethodGet, "/api/orders?role=buyer&status=pending", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["count"])

	// Issue a delivery code.
	rec, body = f.do(t, http.MethodPost, "/api/orders/"+orderID+"/otp", nil, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	code, _ := body["otp"].(string)
	require.Regexp(t, `^\d{6}$`, code)

	// A wrong code answers 400 and leaves the order pending.
	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	rec, body = f.do(t, http.MethodPost, "/api/orders/"+orderID+"/verify", map[string]string{"otp": wrong}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid otp", body["error"])

	// The right code completes the order.
	rec, body = f.do(t, http.MethodPost, "/api/orders/"+orderID+"/verify", map[string]string{"otp": code}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "otp verified successfully", body["message"])

	// Re-verifying a delivered order is a conflict, answered as 400.
	rec, _ = f.do(t, http.MethodPost, "/api/orders/"+orderID+"/verify", map[string]string{"otp": code}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The order now lists as delivered.
	rec, body = f.do(t, http.MethodGet, "/api/orders?role=buyer&status=delivered", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), body["count"])
}

func TestOrderCreate_UnknownProduct(t *testing.T) {
	f := newAPIFixture(t)

	rec, _ := f.do(t, http.MethodPost, "/api/orders", map[string]interface{}{
		"items": []map[string]interface{}{
			{"productId": primitive.NewObjectID().Hex(), "quantity": 1},
		},
	}, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderCreate_ClearsCart(t *testing.T) {
	f := newAPIFixture(t)

	// Put the product in the cart first.
	rec, _ := f.do(t, http.MethodPost, "/api/cart/items", map[string]interface{}{
		"productId": f.product.ID.Hex(),
		"quantity":  2,
	}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = f.do(t, http.MethodPost, "/api/orders", map[string]interface{}{
		"items": []map[string]interface{}{
			{"productId": f.product.ID.Hex(), "quantity": 2},
		},
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body := f.do(t, http.MethodGet, "/api/cart", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["cart"])
	assert.Equal(t, float64(0), body["total"])
}
