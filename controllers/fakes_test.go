package controllers

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pantry-market/middleware"
	"pantry-market/models"
	"pantry-market/store"
	"pantry-market/utils"
)

// In-memory stores backing the handler tests.

type fakeUserStore struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[primitive.ObjectID]models.User{}}
}

func (s *fakeUserStore) Insert(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return store.ErrDuplicateEmail
		}
	}
	u.ID = primitive.NewObjectID()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = *u
	return nil
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *fakeUserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	user := u
	return &user, nil
}

func (s *fakeUserStore) Update(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return store.ErrNotFound
	}
	u.UpdatedAt = time.Now()
	s.users[u.ID] = *u
	return nil
}

func (s *fakeUserStore) List(_ context.Context, role models.Role) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := []models.User{}
	for _, u := range s.users {
		if role == "" || u.Role == role {
			users = append(users, u)
		}
	}
	return users, nil
}

func (s *fakeUserStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

type fakeProductStore struct {
	mu       sync.RWMutex
	products map[primitive.ObjectID]models.Product
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{products: map[primitive.ObjectID]models.Product{}}
}

func (s *fakeProductStore) Insert(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	s.products[p.ID] = *p
	return nil
}

func (s *fakeProductStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	product := p
	return &product, nil
}

func (s *fakeProductStore) ListAvailable(_ context.Context, f store.ProductFilter) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	products := []models.Product{}
	for _, p := range s.products {
		if !p.IsAvailable {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if !f.VendorID.IsZero() && p.VendorID != f.VendorID {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

func (s *fakeProductStore) ListByVendor(_ context.Context, vendorID primitive.ObjectID) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	products := []models.Product{}
	for _, p := range s.products {
		if p.VendorID == vendorID {
			products = append(products, p)
		}
	}
	return products, nil
}

func (s *fakeProductStore) Update(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return store.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	s.products[p.ID] = *p
	return nil
}

func (s *fakeProductStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.products, id)
	return nil
}

type fakeDeliveryStore struct {
	mu         sync.RWMutex
	deliveries map[primitive.ObjectID]models.Delivery
}

func newFakeDeliveryStore() *fakeDeliveryStore {
	return &fakeDeliveryStore{deliveries: map[primitive.ObjectID]models.Delivery{}}
}

func (s *fakeDeliveryStore) Insert(_ context.Context, d *models.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = primitive.NewObjectID()
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	s.deliveries[d.ID] = *d
	return nil
}

func (s *fakeDeliveryStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.deliveries[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	delivery := d
	return &delivery, nil
}

func (s *fakeDeliveryStore) FindByOrder(_ context.Context, orderID primitive.ObjectID) (*models.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.deliveries {
		if d.OrderID == orderID {
			delivery := d
			return &delivery, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *fakeDeliveryStore) List(_ context.Context, driverID *primitive.ObjectID) ([]models.Delivery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	deliveries := []models.Delivery{}
	for _, d := range s.deliveries {
		if driverID != nil && (d.DriverID == nil || *d.DriverID != *driverID) {
			continue
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, nil
}

func (s *fakeDeliveryStore) Update(_ context.Context, d *models.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deliveries[d.ID]; !ok {
		return store.ErrNotFound
	}
	d.UpdatedAt = time.Now()
	s.deliveries[d.ID] = *d
	return nil
}

func (s *fakeDeliveryStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.deliveries[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.deliveries, id)
	return nil
}

type fakeOrderStore struct {
	mu         sync.RWMutex
	orders     map[primitive.ObjectID]models.Order
	sequence   []primitive.ObjectID
	deliveries *fakeDeliveryStore
}

func newFakeOrderStore(deliveries *fakeDeliveryStore) *fakeOrderStore {
	return &fakeOrderStore{
		orders:     map[primitive.ObjectID]models.Order{},
		deliveries: deliveries,
	}
}

func (s *fakeOrderStore) CreateWithDelivery(ctx context.Context, o *models.Order, d *models.Delivery) error {
	s.mu.Lock()
	o.ID = primitive.NewObjectID()
	o.CreatedAt = time.Now()
	o.UpdatedAt = o.CreatedAt
	s.orders[o.ID] = *o
	s.sequence = append(s.sequence, o.ID)
	s.mu.Unlock()

	if d != nil {
		d.OrderID = o.ID
		return s.deliveries.Insert(ctx, d)
	}
	return nil
}

func (s *fakeOrderStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	order := o
	return &order, nil
}

func (s *fakeOrderStore) ListByCustomer(_ context.Context, customerID primitive.ObjectID) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	orders := []models.Order{}
	// newest first
	for i := len(s.sequence) - 1; i >= 0; i-- {
		o := s.orders[s.sequence[i]]
		if o.CustomerID == customerID {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (s *fakeOrderStore) Update(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.ID]; !ok {
		return store.ErrNotFound
	}
	o.UpdatedAt = time.Now()
	s.orders[o.ID] = *o
	return nil
}

// asUser wraps a handler with a session identity, standing in for the auth
// middleware.
func asUser(h http.HandlerFunc, u *models.User) http.HandlerFunc {
	claims := &utils.Claims{
		UserID: u.ID.Hex(),
		Email:  u.Email,
		Role:   string(u.Role),
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), middleware.UserContextKey, claims)
		h(w, r.WithContext(ctx))
	}
}
