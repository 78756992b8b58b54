package response

import (
	"encoding/json"
	"net/http"

	"github.com/naturalmart/shop-api/pkg/logger"
)

// MessageResponse is the plain error/status body used by the identity and
// catalog endpoints.
type MessageResponse struct {
	Message string `json:"message"`
}

// OrderResponse is the body shape for order operations: always a success
// boolean plus a human-readable message, optionally the order payload.
type OrderResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Order   interface{} `json:"order,omitempty"`
}

func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func Message(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, MessageResponse{Message: message})
}

func OrderError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, OrderResponse{Success: false, Message: message})
}

func OrderOK(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, OrderResponse{Success: true, Message: message})
}
