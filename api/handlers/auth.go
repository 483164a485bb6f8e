package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/campusrag/campusrag/api"
	"github.com/campusrag/campusrag/auth"
	"github.com/campusrag/campusrag/types"
)

// AuthHandler serves the registration and login endpoints.
type AuthHandler struct {
	service *auth.Service
	logger  *zap.Logger
}

// NewAuthHandler creates the auth endpoint handler.
func NewAuthHandler(service *auth.Service, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{
		service: service,
		logger:  logger.With(zap.String("handler", "auth")),
	}
}

// Signup serves POST /v1/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req api.SignupRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}
	if strings.TrimSpace(req.RegID) == "" || strings.TrimSpace(req.Email) == "" {
		WriteError(w, types.NewError(types.ErrInvalidRequest, "reg_id and email are required"), h.logger)
		return
	}

	if err := h.service.Signup(r.Context(), req.RegID, req.Email); err != nil {
		WriteAnyError(w, err, h.logger)
		return
	}

	WriteSuccess(w, map[string]string{"message": fmt.Sprintf("OTP sent to %s", req.Email)})
}

// VerifyOTP serves POST /v1/auth/verify-otp.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req api.OTPVerifyRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	if err := h.service.VerifyOTP(r.Context(), req.RegID, req.OTP, req.Password, req.ConfirmPassword); err != nil {
		WriteAnyError(w, err, h.logger)
		return
	}

	WriteSuccess(w, map[string]string{"message": "Registration successful! You can now log in."})
}

// Login serves POST /v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req api.LoginRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	token, err := h.service.Login(r.Context(), req.RegID, req.Password)
	if err != nil {
		WriteAnyError(w, err, h.logger)
		return
	}

	WriteSuccess(w, api.LoginResponse{
		Message:     fmt.Sprintf("Login successful for %s", req.RegID),
		AccessToken: token,
	})
}
