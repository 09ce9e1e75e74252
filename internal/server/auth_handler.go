package server

import (
	"net/http"

	"github.com/go-playground/validator/v10"
)

// RefreshRequest is the body of POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// TokenResponse carries a fresh access token.
type TokenResponse struct {
	Token string `json:"token"`
}

// AuthHandler handles authentication-related HTTP requests.
type AuthHandler struct {
	server     *Server
	jwtService *JWTService
	validator  *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(s *Server, jwtService *JWTService) *AuthHandler {
	return &AuthHandler{
		server:     s,
		jwtService: jwtService,
		validator:  validator.New(),
	}
}

// Refresh exchanges a refresh token for a new access token. Every
// credential failure is a plain 401 so callers learn nothing about why.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.server.errorResponse(w, r, ErrUnauthorized)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.server.errorResponse(w, r, ErrUnauthorized)
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		h.server.logger.Info("refresh rejected", "error", err)
		h.server.errorResponse(w, r, ErrUnauthorized)
		return
	}

	token, err := h.jwtService.GenerateToken(claims.UserID)
	if err != nil {
		h.server.errorResponse(w, r, err)
		return
	}
	h.server.dataResponse(w, TokenResponse{Token: token})
}
