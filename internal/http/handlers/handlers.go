package handlers

import (
	"net/http"
	"time"

	"github.com/naturalmart/shop-api/internal/http/response"
	"github.com/naturalmart/shop-api/internal/service"
)

type Handlers struct {
	authService    service.AuthService
	orderService   service.OrderService
	productService service.ProductService
}

func New(authService service.AuthService, orderService service.OrderService, productService service.ProductService) *Handlers {
	return &Handlers{
		authService:    authService,
		orderService:   orderService,
		productService: productService,
	}
}

type serverStatus struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Home is the liveness probe.
func (h *Handlers) Home(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, serverStatus{
		Message:   "Server is running smoothly",
		Timestamp: time.Now(),
	})
}
