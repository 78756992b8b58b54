package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/naturalmart/shop-api/internal/domain"
	"github.com/naturalmart/shop-api/internal/http/handlers"
	"github.com/naturalmart/shop-api/internal/service"
	"github.com/naturalmart/shop-api/pkg/config"
)

// ---------- Mocks ----------

type mockUserRepo struct {
	users  map[string]*domain.User
	emails []string
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*domain.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *domain.User) error {
	if _, exists := m.users[user.Email]; exists {
		return domain.ErrEmailTaken
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	m.users[user.Email] = user
	m.emails = append(m.emails, user.Email)
	return nil
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	user, exists := m.users[email]
	if !exists {
		return nil, nil
	}
	return user, nil
}

func (m *mockUserRepo) AppendOrder(_ context.Context, email string, order domain.Order) error {
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
}

func (m *mockAnonOrderRepo) Insert(_ context.Context, order domain.Order) error {
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
}

func (m *mockProductRepo) Insert(_ context.Context, product *domain.Product) error {
	product.ID = primitive.NewObjectID()
	product.CreatedAt = time.Now()
	m.products = append(m.products, *product)
	return nil
}

func (m *mockProductRepo) List(_ context.Context) ([]domain.Product, error) {
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

// ---------- Test Setup ----------

func setupTestServer() (*httptest.Server, *mockUserRepo, *mockAnonOrderRepo) {
	userRepo := newMockUserRepo()
	anonRepo := &mockAnonOrderRepo{}
	productRepo := &mockProductRepo{}

	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret",
			SessionTokenTTL: time.Hour,
		},
	}

	h := handlers.New(
		service.NewAuthService(userRepo, nil, cfg),
		service.NewOrderService(userRepo, anonRepo, nil),
		service.NewProductService(productRepo, nil, time.Minute),
	)

	r := chi.NewRouter()
	r.Get("/", h.Home)
	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/products/post", h.CreateProduct)
		r.Get("/products", h.ListProducts)
		r.Delete("/products/{id}", h.DeleteProduct)
		r.Post("/orders/user", h.PlaceOrder)
		r.Get("/admin/orders", h.ListAllOrders)
		r.Get("/orders/{email}", h.ListUserOrders)
		r.Patch("/orders/{orderId}/confirm", h.ConfirmOrder)
		r.Delete("/orders/{orderId}", h.CancelOrder)
		r.Patch("/orders/deliver/{orderId}", h.DeliverOrder)
	})

	return httptest.NewServer(r), userRepo, anonRepo
}

func doJSON(t *testing.T, method, url string, body interface{}, wantStatus int) map[string]interface{} {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: expected status %d, got %d", method, url, wantStatus, resp.StatusCode)
	}

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil
	}
	return result
}

func registerUser(t *testing.T, serverURL, email string) {
	t.Helper()
	body := map[string]string{"name": "Jane Doe", "email": email, "password": "hunter2"}
	doJSON(t, http.MethodPost, serverURL+"/api/register", body, http.StatusCreated)
}

func placeOrder(t *testing.T, serverURL, email string, wantStatus int) string {
	t.Helper()
	body := map[string]interface{}{
		"email":           email,
		"product":         map[string]interface{}{"name": "Raw Honey", "price": 12.5},
		"customerDetails": map[string]interface{}{"city": "Austin"},
		"quantity":        2,
	}
	result := doJSON(t, http.MethodPost, serverURL+"/api/orders/user", body, wantStatus)

	order, ok := result["order"].(map[string]interface{})
	if !ok {
		t.Fatal("Expected order payload in response")
	}
	id, _ := order["_id"].(string)
	if id == "" {
		t.Fatal("Expected order ID in response")
	}
	return id
}

// ---------- Tests ----------

func TestHome(t *testing.T) {
	server, _, _ := setupTestServer()
	defer server.Close()

	resp, err := http.Get(server.URL + "/")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var status map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&status)
	if status["message"] != "Server is running smoothly" {
		t.Fatalf("Unexpected liveness message: %v", status["message"])
	}
}

func TestRegister_Success(t *testing.T) {
	server, userRepo, _ := setupTestServer()
	defer server.Close()

	body := map[string]string{"name": "Jane", "email": "Jane@Example.com", "password": "hunter2"}
	result := doJSON(t, http.MethodPost, server.URL+"/api/register", body, http.StatusCreated)

	if result["success"] != true || result["message"] != "User registered successfully" {
		t.Fatalf("Unexpected response: %v", result)
	}
	if userRepo.users["jane@example.com"] == nil {
		t.Fatal("Expected user stored under normalized email")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	server, _, _ := setupTestServer()
	defer server.Close()

	registerUser(t, server.URL, "jane@example.com")

	body := map[string]string{"name": "Jane", "email": "jane@example.com", "password": "other"}
	result := doJSON(t, http.MethodPost, server.URL+"/api/register", body, http.StatusBadRequest)

	if result["success"] != false || result["message"] != "User already exists" {
		t.Fatalf("Unexpected response: %v", result)
	}
}

func TestRegister_InvalidJSON(t *testing.T) {
	server, _, _ := setupTestServer()
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/register", "application/json", bytes.NewBufferString("{not json"))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", resp.StatusCode)
	}
}

func TestLogin(t *testing.T) {
	server, _, _ := setupTestServer()
	defer server.Close()

	registerUser(t, server.URL, "jane@example.com")

	login := map[string]string{"email": "jane@example.com", "password": "hunter2"}
	result := doJSON(t, http.MethodPost, server.URL+"/api/login", login, http.StatusOK)

	if result["success"] != true || result["message"] != "Login successful" {
		t.Fatalf("Unexpected response: %v", result)
	}
	if token, _ := result["token"].(string); token == "" {
		t.Fatal("Expected a session token")
	}

	wrong := map[string]string{"email": "jane@example.com", "password": "nope"}
	errResult := doJSON(t, http.MethodPost, server.URL+"/api/login", wrong, http.StatusUnauthorized)
	if errResult["message"] != "Invalid email or password" {
		t.Fatalf("Unexpected error message: %v", errResult["message"])
	}

	unknown := map[string]string{"email": "nobody@example.com", "password": "hunter2"}
	doJSON(t, http.MethodPost, server.URL+"/api/login", unknown, http.StatusUnauthorized)
}

func TestProducts_CreateListDelete(t *testing.T) {
	server, _, _ := setupTestServer()
	defer server.Close()

	product := map[string]interface{}{
		"name":    "Raw Honey",
		"price":   "12.50",
		"image":   "https://cdn.example.com/honey.jpg",
		"details": map[string]string{"origin": "Texas"},
	}
	created := doJSON(t, http.MethodPost, server.URL+"/api/products/post", product, http.StatusCreated)
	if created["message"] != "Product added successfully!" {
		t.Fatalf("Unexpected response: %v", created)
	}

	payload := created["product"].(map[string]interface{})
	productID, _ := payload["_id"].(string)
	if productID == "" {
		t.Fatal("Expected product ID in response")
	}
	if payload["price"] != 12.5 {
		t.Fatalf("Expected coerced numeric price, got %v", payload["price"])
	}

	resp, err := http.Get(server.URL + "/api/products")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	var listing []domain.Product
	json.NewDecoder(resp.Body).Decode(&listing)
	resp.Body.Close()
	if len(listing) != 1 || listing[0].Name != "Raw Honey" {
		t.Fatalf("Unexpected catalog: %+v", listing)
	}

	doJSON(t, http.MethodDelete, server.URL+"/api/products/"+productID, nil, http.StatusOK)
	doJSON(t, http.MethodDelete, server.URL+"/api/products/"+productID, nil, http.StatusNotFound)
	doJSON(t, http.MethodDelete, server.URL+"/api/products/bad-id", nil, http.StatusBadRequest)
}

func TestCreateProduct_MissingFields(t *testing.T) {
	server, _, _ := setupTestServer()
	defer server.Close()

	product := map[string]interface{}{"name": "Raw Honey", "price": 12.5}
	result := doJSON(t, http.MethodPost, server.URL+"/api/products/post", product, http.StatusBadRequest)
	if result["message"] != "All fields (name, price, image, details) are required." {
		t.Fatalf("Unexpected message: %v", result["message"])
	}
}

func TestPlaceOrder_RegisteredUserGets200(t *testing.T) {
	server, userRepo, anonRepo := setupTestServer()
	defer server.Close()

	registerUser(t, server.URL, "jane@example.com")

	placeOrder(t, server.URL, "jane@example.com", http.StatusOK)

	if len(userRepo.users["jane@example.com"].Orders) != 1 {
		t.Fatal("Expected the order embedded in the user document")
	}
	if len(anonRepo.orders) != 0 {
		t.Fatal("Anonymous store must stay empty")
	}
}

func TestPlaceOrder_UnknownEmailGets201(t *testing.T) {
	server, _, anonRepo := setupTestServer()
	defer server.Close()

	placeOrder(t, server.URL, "stranger@example.com", http.StatusCreated)

	if len(anonRepo.orders) != 1 {
		t.Fatal("Expected the order in the anonymous store")
	}
}

func TestOrderLifecycle_Embedded(t *testing.T) {
	server, _, _ := setupTestServer()
	defer server.Close()

	registerUser(t, server.URL, "jane@example.com")
	orderID := placeOrder(t, server.URL, "jane@example.com", http.StatusOK)

	confirmURL := fmt.Sprintf("%s/api/orders/%s/confirm", server.URL, orderID)
	result := doJSON(t, http.MethodPatch, confirmURL, nil, http.StatusOK)
	if result["message"] != "Order confirmed in user orders!" {
		t.Fatalf("Unexpected message: %v", result["message"])
	}

	// A repeat confirmation modifies nothing.
	repeat := doJSON(t, http.MethodPatch, confirmURL, nil, http.StatusBadRequest)
	if repeat["message"] != "Order not found or already confirmed." {
		t.Fatalf("Unexpected message: %v", repeat["message"])
	}

	deliverURL := fmt.Sprintf("%s/api/orders/deliver/%s", server.URL, orderID)
	result = doJSON(t, http.MethodPatch, deliverURL, nil, http.StatusOK)
	if result["message"] != "Delivery status updated in user orders!" {
		t.Fatalf("Unexpected message: %v", result["message"])
	}
	doJSON(t, http.MethodPatch, deliverURL, nil, http.StatusNotFound)

	cancelURL := fmt.Sprintf("%s/api/orders/%s", server.URL, orderID)
	result = doJSON(t, http.MethodDelete, cancelURL, nil, http.StatusOK)
	if result["message"] != "Order deleted from user orders!" {
		t.Fatalf("Unexpected message: %v", result["message"])
	}

	gone := doJSON(t, http.MethodDelete, cancelURL, nil, http.StatusNotFound)
	if gone["message"] != "Order not found in user orders or unknown orders." {
		t.Fatalf("Unexpected message: %v", gone["message"])
	}
}

func TestOrderLifecycle_Standalone(t *testing.T) {
	server, _, _ := setupTestServer()
	defer server.Close()

	orderID := placeOrder(t, server.URL, "stranger@example.com", http.StatusCreated)

	confirmURL := fmt.Sprintf("%s/api/orders/%s/confirm", server.URL, orderID)
	result := doJSON(t, http.MethodPatch, confirmURL, nil, http.StatusOK)
	if result["message"] != "Order confirmed in unknown orders!" {
		t.Fatalf("Unexpected message: %v", result["message"])
	}

	cancelURL := fmt.Sprintf("%s/api/orders/%s", server.URL, orderID)
	result = doJSON(t, http.MethodDelete, cancelURL, nil, http.StatusOK)
	if result["message"] != "Order deleted from unknown orders!" {
		t.Fatalf("Unexpected message: %v", result["message"])
	}
}

func TestOrderOperations_MalformedID(t *testing.T) {
	server, _, _ := setupTestServer()
	defer server.Close()

	// A malformed identifier is rejected before any store access.
	result := doJSON(t, http.MethodPatch, server.URL+"/api/orders/not-hex/confirm", nil, http.StatusBadRequest)
	if result["message"] != "Invalid order ID." {
		t.Fatalf("Unexpected message: %v", result["message"])
	}
	doJSON(t, http.MethodDelete, server.URL+"/api/orders/not-hex", nil, http.StatusBadRequest)
	doJSON(t, http.MethodPatch, server.URL+"/api/orders/deliver/not-hex", nil, http.StatusBadRequest)
}

func TestListUserOrders(t *testing.T) {
	server, _, _ := setupTestServer()
	defer server.Close()

	registerUser(t, server.URL, "jane@example.com")
	placeOrder(t, server.URL, "jane@example.com", http.StatusOK)

	resp, err := http.Get(server.URL + "/api/orders/jane@example.com")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var orders []domain.Order
	json.NewDecoder(resp.Body).Decode(&orders)
	if len(orders) != 1 {
		t.Fatalf("Expected 1 order, got %d", len(orders))
	}

	missing := doJSON(t, http.MethodGet, server.URL+"/api/orders/nobody@example.com", nil, http.StatusNotFound)
	if missing["message"] != "No orders found for this user." {
		t.Fatalf("Unexpected message: %v", missing["message"])
	}
}

func TestListAllOrders_CombinesBothStores(t *testing.T) {
	server, _, _ := setupTestServer()
	defer server.Close()

	registerUser(t, server.URL, "jane@example.com")
	embeddedID := placeOrder(t, server.URL, "jane@example.com", http.StatusOK)
	standaloneID := placeOrder(t, server.URL, "stranger@example.com", http.StatusCreated)

	result := doJSON(t, http.MethodGet, server.URL+"/api/admin/orders", nil, http.StatusOK)
	if result["success"] != true {
		t.Fatalf("Unexpected response: %v", result)
	}

	orders := result["orders"].([]interface{})
	if len(orders) != 2 {
		t.Fatalf("Expected 2 orders, got %d", len(orders))
	}

	first := orders[0].(map[string]interface{})
	second := orders[1].(map[string]interface{})
	if first["_id"] != embeddedID || second["_id"] != standaloneID {
		t.Fatal("Expected embedded orders listed before standalone orders")
	}
}
