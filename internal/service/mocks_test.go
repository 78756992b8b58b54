package service_test

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/naturalmart/shop-api/internal/cache"
	"github.com/naturalmart/shop-api/internal/domain"
)

// ---------- Mocks ----------

type mockUserRepo struct {
	users  map[string]*domain.User
	emails []string // insertion order, maps do not keep it

	findErr   error
	appendErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*domain.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return domain.ErrEmailTaken
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	user.CreatedAt = time.Now()
	m.users[user.Email] = user
	m.emails = append(m.emails, user.Email)
	return nil
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	user, exists := m.users[email]
	if !exists {
		return nil, nil
	}
	return user, nil
}

func (m *mockUserRepo) AppendOrder(_ context.Context, email string, order domain.Order) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	user, exists := m.users[email]
	if !exists {
		return domain.ErrWriteFailed
	}
	user.Orders = append(user.Orders, order)
	return nil
}

func (m *mockUserRepo) ConfirmOrder(_ context.Context, orderID primitive.ObjectID) (bool, error) {
	for _, email := range m.emails {
		for i, order := range m.users[email].Orders {
			if order.ID == orderID && order.Status == domain.OrderPending {
				m.users[email].Orders[i].Status = domain.OrderConfirmed
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *mockUserRepo) PullOrder(_ context.Context, orderID primitive.ObjectID) (bool, error) {
	for _, email := range m.emails {
		user := m.users[email]
		for i, order := range user.Orders {
			if order.ID == orderID {
				user.Orders = append(user.Orders[:i], user.Orders[i+1:]...)
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *mockUserRepo) MarkOrderDelivered(_ context.Context, orderID primitive.ObjectID) (bool, error) {
	for _, email := range m.emails {
		for i, order := range m.users[email].Orders {
			if order.ID == orderID && !order.DeliveryStatus {
				m.users[email].Orders[i].DeliveryStatus = true
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *mockUserRepo) OrdersByEmail(_ context.Context, email string) ([]domain.Order, error) {
	user, exists := m.users[email]
	if !exists || len(user.Orders) == 0 {
		return nil, domain.ErrNotFound
	}
	return user.Orders, nil
}

func (m *mockUserRepo) AllEmbeddedOrders(_ context.Context) ([]domain.Order, error) {
	var all []domain.Order
	for _, email := range m.emails {
		all = append(all, m.users[email].Orders...)
	}
	return all, nil
}

type mockAnonOrderRepo struct {
	orders []domain.Order

	insertErr error
}

func (m *mockAnonOrderRepo) Insert(_ context.Context, order domain.Order) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.orders = append(m.orders, order)
	return nil
}

func (m *mockAnonOrderRepo) Confirm(_ context.Context, orderID primitive.ObjectID) (bool, error) {
	for i, order := range m.orders {
		if order.ID == orderID && order.Status == domain.OrderPending {
			m.orders[i].Status = domain.OrderConfirmed
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAnonOrderRepo) Delete(_ context.Context, orderID primitive.ObjectID) (bool, error) {
	for i, order := range m.orders {
		if order.ID == orderID {
			m.orders = append(m.orders[:i], m.orders[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAnonOrderRepo) MarkDelivered(_ context.Context, orderID primitive.ObjectID) (bool, error) {
	for i, order := range m.orders {
		if order.ID == orderID && !order.DeliveryStatus {
			m.orders[i].DeliveryStatus = true
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAnonOrderRepo) List(_ context.Context) ([]domain.Order, error) {
	return m.orders, nil
}

type mockProductRepo struct {
	products []domain.Product

	listCalls int
}

func (m *mockProductRepo) Insert(_ context.Context, product *domain.Product) error {
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	product.CreatedAt = time.Now()
	m.products = append(m.products, *product)
	return nil
}

func (m *mockProductRepo) List(_ context.Context) ([]domain.Product, error) {
	m.listCalls++
	return m.products, nil
}

func (m *mockProductRepo) Delete(_ context.Context, productID primitive.ObjectID) (bool, error) {
	for i, product := range m.products {
		if product.ID == productID {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type mockProductCache struct {
	entries     []domain.Product
	populated   bool
	invalidated int
}

func (m *mockProductCache) Get(_ context.Context) ([]domain.Product, error) {
	if !m.populated {
		return nil, cache.ErrCacheMiss
	}
	return m.entries, nil
}

func (m *mockProductCache) Set(_ context.Context, products []domain.Product, _ time.Duration) error {
	m.entries = products
	m.populated = true
	return nil
}

func (m *mockProductCache) Invalidate(_ context.Context) error {
	m.entries = nil
	m.populated = false
	m.invalidated++
	return nil
}

type publishedEvent struct {
	subject string
	data    interface{}
}

type mockPublisher struct {
	events []publishedEvent
}

func (m *mockPublisher) Publish(_ context.Context, subject string, data interface{}) error {
	m.events = append(m.events, publishedEvent{subject: subject, data: data})
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) lastSubject() string {
	if len(m.events) == 0 {
		return ""
	}
	return m.events[len(m.events)-1].subject
}
