package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/naturalmart/shop-api/internal/domain"
	"github.com/naturalmart/shop-api/internal/http/response"
	"github.com/naturalmart/shop-api/internal/service"
	"github.com/naturalmart/shop-api/pkg/logger"
)

// PlaceOrder routes a purchase to the purchaser's user document or to the
// anonymous order store. The status code reports the destination: 200 for an
// embedded order, 201 for a standalone one.
func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req domain.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.OrderError(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	order, location, err := h.orderService.Place(r.Context(), &req)
	switch {
	case err == nil:
		if location == service.LocationEmbedded {
			response.WriteJSON(w, http.StatusOK, response.OrderResponse{
				Success: true,
				Message: "Order placed successfully for the user!",
				Order:   order,
			})
		} else {
			response.WriteJSON(w, http.StatusCreated, response.OrderResponse{
				Success: true,
				Message: "Order placed successfully in unknown orders!",
				Order:   order,
			})
		}
	case errors.Is(err, domain.ErrValidation):
		response.OrderError(w, http.StatusBadRequest, err.Error())
	default:
		// Store detail stays in the server log; the client gets a generic
		// failure.
		logger.ErrorContext(r.Context(), "Order placement failed", "error", err)
		response.OrderError(w, http.StatusInternalServerError, "Something went wrong.")
	}
}

type adminOrdersResponse struct {
	Success bool           `json:"success"`
	Orders  []domain.Order `json:"orders"`
}

// ListAllOrders returns every order across both stores, embedded first.
func (h *Handlers) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListAll(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "Order listing failed", "error", err)
		response.OrderError(w, http.StatusInternalServerError, "Failed to fetch all orders.")
		return
	}

	response.WriteJSON(w, http.StatusOK, adminOrdersResponse{
		Success: true,
		Orders:  orders,
	})
}

// ListUserOrders returns the embedded order list of one user.
func (h *Handlers) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.ListByEmail(r.Context(), chi.URLParam(r, "email"))
	switch {
	case err == nil:
		response.WriteJSON(w, http.StatusOK, orders)
	case errors.Is(err, domain.ErrNotFound):
		response.Message(w, http.StatusNotFound, "No orders found for this user.")
	default:
		logger.ErrorContext(r.Context(), "User order listing failed", "error", err)
		response.Message(w, http.StatusInternalServerError, "An error occurred while fetching orders.")
	}
}

// ConfirmOrder sets an order's status to confirmed. A repeat confirmation
// modifies nothing and reports the same miss as an unknown identifier.
func (h *Handlers) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	location, err := h.orderService.Confirm(r.Context(), chi.URLParam(r, "orderId"))
	switch {
	case err == nil:
		if location == service.LocationEmbedded {
			response.OrderOK(w, http.StatusOK, "Order confirmed in user orders!")
		} else {
			response.OrderOK(w, http.StatusOK, "Order confirmed in unknown orders!")
		}
	case errors.Is(err, domain.ErrInvalidID):
		response.OrderError(w, http.StatusBadRequest, "Invalid order ID.")
	case errors.Is(err, domain.ErrNotFound):
		response.OrderError(w, http.StatusBadRequest, "Order not found or already confirmed.")
	default:
		logger.ErrorContext(r.Context(), "Order confirmation failed", "error", err)
		response.OrderError(w, http.StatusInternalServerError, "Failed to confirm the order.")
	}
}

// CancelOrder removes an order entirely from whichever store holds it.
func (h *Handlers) CancelOrder(w http.ResponseWriter, r *http.Request) {
	location, err := h.orderService.Cancel(r.Context(), chi.URLParam(r, "orderId"))
	switch {
	case err == nil:
		if location == service.LocationEmbedded {
			response.OrderOK(w, http.StatusOK, "Order deleted from user orders!")
		} else {
			response.OrderOK(w, http.StatusOK, "Order deleted from unknown orders!")
		}
	case errors.Is(err, domain.ErrInvalidID):
		response.OrderError(w, http.StatusBadRequest, "Invalid order ID.")
	case errors.Is(err, domain.ErrNotFound):
		response.OrderError(w, http.StatusNotFound, "Order not found in user orders or unknown orders.")
	default:
		logger.ErrorContext(r.Context(), "Order cancellation failed", "error", err)
		response.OrderError(w, http.StatusInternalServerError, "Failed to cancel (delete) the order.")
	}
}

// DeliverOrder flips the delivery flag. An order already flagged delivered
// reports the same miss as an unknown identifier.
func (h *Handlers) DeliverOrder(w http.ResponseWriter, r *http.Request) {
	location, err := h.orderService.MarkDelivered(r.Context(), chi.URLParam(r, "orderId"))
	switch {
	case err == nil:
		if location == service.LocationEmbedded {
			response.OrderOK(w, http.StatusOK, "Delivery status updated in user orders!")
		} else {
			response.OrderOK(w, http.StatusOK, "Delivery status updated in unknown orders!")
		}
	case errors.Is(err, domain.ErrInvalidID):
		response.OrderError(w, http.StatusBadRequest, "Invalid order ID.")
	case errors.Is(err, domain.ErrNotFound):
		response.OrderError(w, http.StatusNotFound, "Order not found or delivery status already updated.")
	default:
		logger.ErrorContext(r.Context(), "Delivery status update failed", "error", err)
		response.OrderError(w, http.StatusInternalServerError, "Failed to update delivery status.")
	}
}
