package httpdto

import "time"

type RegisterRequest struct {
	HexCode  string `json:"hex_code" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	HexCode  string `json:"hex_code" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token     string    `json:"token"`
	UserHex   string    `json:"user_hex"`
	ExpiresAt time.Time `json:"expires_at"`
}

type IdentityResponse struct {
	UserHex string `json:"user_hex"`
}
