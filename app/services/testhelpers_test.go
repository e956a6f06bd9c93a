package services_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/campusmart/app/models"
	"github.com/shashiranjanraj/campusmart/app/services"
)

// In-memory stand-ins for the Mongo repositories. They copy documents on
// read and write so callers never share memory with the store, matching
// what the real driver does.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo(seed ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[primitive.ObjectID]*models.User{}}
	for _, u := range seed {
		cp := *u
		r.users[u.ID] = &cp
	}
	return r
}

func (r *fakeUserRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[primitive.ObjectID]*models.User{}
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			cp := *u
			out[id] = &cp
		}
	}
	return out, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, services.ErrNotFound
}

func (r *fakeUserRepo) All(_ context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) Insert(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return services.ErrNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]*models.Product
}

func newFakeProductRepo(seed ...*models.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: map[primitive.ObjectID]*models.Product{}}
	for _, p := range seed {
		cp := *p
		r.products[p.ID] = &cp
	}
	return r
}

func (r *fakeProductRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) FindByIDs(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[primitive.ObjectID]*models.Product{}
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}

func (r *fakeProductRepo) All(_ context.Context, category string) ([]models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Product
	for _, p := range r.products {
		if category == "" || p.Category == category {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeProductRepo) Insert(_ context.Context, p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]*models.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[primitive.ObjectID]*models.Order{}}
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, services.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) InsertMany(_ context.Context, orders []*models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range orders {
		if o.ID.IsZero() {
			o.ID = primitive.NewObjectID()
		}
		cp := *o
		r.orders[o.ID] = &cp
	}
	return nil
}

func (r *fakeOrderRepo) SetDeliveryCode(_ context.Context, id primitive.ObjectID, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return services.ErrNotFound
	}
	o.OTPHash = hash
	o.UpdatedAt = time.Now()
	return nil
}

func (r *fakeOrderRepo) MarkDelivered(_ context.Context, id primitive.ObjectID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return services.ErrNotFound
	}
	o.Status = models.OrderDelivered
	o.DeliveryDate = &at
	o.TransactionDate = &at
	o.UpdatedAt = at
	return nil
}

func (r *fakeOrderRepo) FindByPartyAndStatus(_ context.Context, role string, userID primitive.ObjectID, status string) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Order
	for _, o := range r.orders {
		party := o.BuyerID
		if role == services.RoleSeller {
			party = o.SellerID
		}
		if party == userID && o.Status == status {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// fakeCache is an in-memory services.Cache without TTL expiry.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string]string
	sets    int
	hits    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]string{}}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v, ok := c.entries[key]; ok {
		c.hits++
		return v, nil
	}
	return "", nil
}

func (c *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.sets++
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

// Fixture builders.

func seedUser(email string) *models.User {
	now := time.Now()
	return &models.User{
		ID:            primitive.NewObjectID(),
		FirstName:     "Test",
		LastName:      "User",
		Email:         email,
		Age:           21,
		ContactNumber: "9876543210",
		Cart:          []models.CartItem{},
		SellerReviews: []models.Review{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func seedProduct(seller primitive.ObjectID, name string, price float64) *models.Product {
	now := time.Now()
	return &models.Product{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Price:     price,
		Category:  models.CategoryElectronics,
		SellerID:  seller,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
