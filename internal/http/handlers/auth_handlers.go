package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/naturalmart/shop-api/internal/domain"
	"github.com/naturalmart/shop-api/internal/http/response"
	"github.com/naturalmart/shop-api/pkg/logger"
)

type registerResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Register handles user registration
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Message(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	err := h.authService.Register(r.Context(), &req)
	switch {
	case err == nil:
		response.WriteJSON(w, http.StatusCreated, registerResponse{
			Success: true,
			Message: "User registered successfully",
		})
	case errors.Is(err, domain.ErrEmailTaken):
		response.WriteJSON(w, http.StatusBadRequest, registerResponse{
			Success: false,
			Message: "User already exists",
		})
	case errors.Is(err, domain.ErrValidation):
		response.Message(w, http.StatusBadRequest, err.Error())
	default:
		logger.ErrorContext(r.Context(), "Registration failed", "error", err)
		response.Message(w, http.StatusInternalServerError, "Something went wrong")
	}
}

// Login verifies credentials and issues a session token
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Message(w, http.StatusBadRequest, "Invalid JSON format")
		return
	}

	res, err := h.authService.Login(r.Context(), &req)
	switch {
	case err == nil:
		response.WriteJSON(w, http.StatusOK, res)
	case errors.Is(err, domain.ErrValidation):
		response.Message(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		response.Message(w, http.StatusUnauthorized, "Invalid email or password")
	default:
		logger.ErrorContext(r.Context(), "Login failed", "error", err)
		response.Message(w, http.StatusInternalServerError, "Something went wrong")
	}
}
