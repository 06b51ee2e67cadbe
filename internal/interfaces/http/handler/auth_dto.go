package handler

import (
	"time"

	"github.com/storefront/backend/internal/application/identity"
)

// RegisterRequest represents the request body for customer registration
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255" example:"jane@example.com"`
	Password string `json:"password" binding:"required,min=6,max=72" example:"secret123"`
	Name     string `json:"name" binding:"max=200" example:"Jane Doe"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=255" example:"jane@example.com"`
	Password string `json:"password" binding:"required,max=72" example:"secret123"`
}

// AuthResponse is returned by register and login. The token itself travels in
// the session cookie only.
type AuthResponse struct {
	User      identity.UserInfo `json:"user"`
	ExpiresAt time.Time         `json:"expires_at"`
}
