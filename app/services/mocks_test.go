package services

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/turnosapp/turnos/app/models"
	"github.com/turnosapp/turnos/app/repositories"
)

// MockOrderStore keeps orders in memory. Lookups counts every read by id or
// number so tests can assert a request never reached the store.
type MockOrderStore struct {
	mu      sync.RWMutex
	orders  map[primitive.ObjectID]models.Order
	Lookups atomic.Int64

	CreateFunc     func(ctx context.Context, o *models.Order) error
	SetPaymentFunc func(ctx context.Context, orderID, paymentID primitive.ObjectID) error
}

func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{orders: make(map[primitive.ObjectID]models.Order)}
}

func (m *MockOrderStore) FindAll(ctx context.Context) ([]models.Order, error) {
	return m.filter(func(models.Order) bool { return true }), nil
}

func (m *MockOrderStore) FindByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	return m.filter(func(o models.Order) bool { return o.Status == status }), nil
}

func (m *MockOrderStore) filter(keep func(models.Order) bool) []models.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Order
	for _, o := range m.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func (m *MockOrderStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	m.Lookups.Add(1)
	m.mu.RLock()
	defer m.mu.RUnlock()

	o, ok := m.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (m *MockOrderStore) FindByNumber(ctx context.Context, number int64) (*models.Order, error) {
	m.Lookups.Add(1)
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, o := range m.orders {
		if o.Number == number {
			return &o, nil
		}
	}
	return nil, nil
}

func (m *MockOrderStore) Create(ctx context.Context, o *models.Order) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, o)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.orders {
		if existing.Number == o.Number {
			return repositories.ErrDuplicateKey
		}
	}
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	m.orders[o.ID] = *o
	return nil
}

func (m *MockOrderStore) Update(ctx context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.orders[o.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.Kind, stored.Status, stored.Customer, stored.Item = o.Kind, o.Status, o.Customer, o.Item
	m.orders[o.ID] = stored
	return nil
}

func (m *MockOrderStore) SetPayment(ctx context.Context, orderID, paymentID primitive.ObjectID) error {
	if m.SetPaymentFunc != nil {
		return m.SetPaymentFunc(ctx, orderID, paymentID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.orders[orderID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.Payment = &paymentID
	m.orders[orderID] = stored
	return nil
}

func (m *MockOrderStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

func (m *MockOrderStore) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.orders)), nil
}

func (m *MockOrderStore) CountByStatus(ctx context.Context, status models.OrderStatus) (int64, error) {
	return int64(len(m.filter(func(o models.Order) bool { return o.Status == status }))), nil
}

func (m *MockOrderStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.orders)
}

type MockPaymentStore struct {
	mu       sync.RWMutex
	payments map[primitive.ObjectID]models.Payment

	CreateFunc func(ctx context.Context, p *models.Payment) error
}

func NewMockPaymentStore() *MockPaymentStore {
	return &MockPaymentStore{payments: make(map[primitive.ObjectID]models.Payment)}
}

func (m *MockPaymentStore) FindAll(ctx context.Context) ([]models.Payment, error) {
	return m.filter(func(models.Payment) bool { return true }), nil
}

func (m *MockPaymentStore) FindByMethod(ctx context.Context, method models.PaymentMethod) ([]models.Payment, error) {
	return m.filter(func(p models.Payment) bool { return p.Method == method }), nil
}

func (m *MockPaymentStore) filter(keep func(models.Payment) bool) []models.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Payment
	for _, p := range m.payments {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func (m *MockPaymentStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.payments[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *MockPaymentStore) FindByOrder(ctx context.Context, orderID primitive.ObjectID) (*models.Payment, error) {
	found := m.filter(func(p models.Payment) bool { return p.Order == orderID })
	if len(found) == 0 {
		return nil, nil
	}
	return &found[0], nil
}

func (m *MockPaymentStore) Create(ctx context.Context, p *models.Payment) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, p)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	m.payments[p.ID] = *p
	return nil
}

func (m *MockPaymentStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.payments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.payments, id)
	return nil
}

func (m *MockPaymentStore) DeleteByOrder(ctx context.Context, orderID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, p := range m.payments {
		if p.Order == orderID {
			delete(m.payments, id)
			n++
		}
	}
	return n, nil
}

func (m *MockPaymentStore) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.payments)), nil
}

func (m *MockPaymentStore) TotalAmount(ctx context.Context) (float64, error) {
	var total float64
	for _, p := range m.filter(func(models.Payment) bool { return true }) {
		total += p.Amount
	}
	return total, nil
}

func (m *MockPaymentStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.payments)
}

// MockUserStore enforces the unique email index like the real collection.
type MockUserStore struct {
	mu      sync.RWMutex
	users   map[primitive.ObjectID]models.User
	Lookups atomic.Int64
}

func NewMockUserStore() *MockUserStore {
	return &MockUserStore{users: make(map[primitive.ObjectID]models.User)}
}

func (m *MockUserStore) FindAll(ctx context.Context) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.User
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *MockUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	m.Lookups.Add(1)
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *MockUserStore) Create(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Email == u.Email {
			return repositories.ErrDuplicateKey
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	m.users[u.ID] = *u
	return nil
}

func (m *MockUserStore) Update(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.users[u.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	for id, existing := range m.users {
		if id != u.ID && existing.Email == u.Email {
			return repositories.ErrDuplicateKey
		}
	}
	stored.Email, stored.Password, stored.Role = u.Email, u.Password, u.Role
	m.users[u.ID] = stored
	return nil
}

func (m *MockUserStore) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.Active = false
	m.users[id] = stored
	return nil
}

func (m *MockUserStore) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.users)), nil
}

// MockCounterStore is an atomic counter like $inc with upsert.
type MockCounterStore struct {
	mu     sync.Mutex
	values map[string]int64

	NextFunc func(ctx context.Context, key string) (int64, error)

	// Old holds counters in the legacy {clave, valor} layout.
	Old map[string]int64
}

func NewMockCounterStore() *MockCounterStore {
	return &MockCounterStore{values: make(map[string]int64)}
}

func (m *MockCounterStore) Next(ctx context.Context, key string) (int64, error) {
	if m.NextFunc != nil {
		return m.NextFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key]++
	return m.values[key], nil
}

func (m *MockCounterStore) Legacy(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Old[key], nil
}

func (m *MockCounterStore) Raise(ctx context.Context, key string, floor int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values[key] < floor {
		m.values[key] = floor
	}
	return nil
}

// MockNumberSource reports a fixed highest order number.
type MockNumberSource struct {
	Max int64
	Err error
}

func (m MockNumberSource) MaxNumber(ctx context.Context) (int64, error) { return m.Max, m.Err }

// MockInvalidator counts invalidations.
type MockInvalidator struct {
	Calls atomic.Int64
}

func (m *MockInvalidator) Invalidate(context.Context) { m.Calls.Add(1) }
