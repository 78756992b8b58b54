package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/naturalmart/shop-api/internal/domain"
	"github.com/naturalmart/shop-api/internal/http/response"
	"github.com/naturalmart/shop-api/pkg/logger"
)

type productCreatedResponse struct {
	Message string          `json:"message"`
	Product *domain.Product `json:"product"`
}

// CreateProduct adds a product to the catalog
func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Message(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	product, err := h.productService.Create(r.Context(), &req)
	switch {
	case err == nil:
		response.WriteJSON(w, http.StatusCreated, productCreatedResponse{
			Message: "Product added successfully!",
			Product: product,
		})
	case errors.Is(err, domain.ErrValidation):
		response.Message(w, http.StatusBadRequest, "All fields (name, price, image, details) are required.")
	default:
		logger.ErrorContext(r.Context(), "Product creation failed", "error", err)
		response.Message(w, http.StatusInternalServerError, "Internal server error.")
	}
}

// ListProducts returns the full catalog
func (h *Handlers) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productService.List(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "Product listing failed", "error", err)
		response.Message(w, http.StatusInternalServerError, "Error fetching products")
		return
	}

	if products == nil {
		products = []domain.Product{}
	}
	response.WriteJSON(w, http.StatusOK, products)
}

// DeleteProduct removes a product by identifier
func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	err := h.productService.Delete(r.Context(), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		response.Message(w, http.StatusOK, "Product deleted successfully")
	case errors.Is(err, domain.ErrInvalidID):
		response.Message(w, http.StatusBadRequest, "Invalid product ID")
	case errors.Is(err, domain.ErrNotFound):
		response.Message(w, http.StatusNotFound, "Product not found")
	default:
		logger.ErrorContext(r.Context(), "Product deletion failed", "error", err)
		response.Message(w, http.StatusInternalServerError, "Error deleting product")
	}
}
