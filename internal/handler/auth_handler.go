// Package handler provides HTTP handlers for API endpoints.
package handler

import (
	"net/http"
	"time"

	"hue-chat/internal/services"
	"hue-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// SessionCookie is the cookie carrying the session token for browser
// clients; API clients may use a bearer header instead.
const SessionCookie = "hue-session"

// AuthHandler handles authentication HTTP endpoints.
type AuthHandler struct {
	service *services.AuthService
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register handles sign-up.
func (h *AuthHandler) Register(c *gin.Context) {
	var req httpdto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	res, err := h.service.Register(c.Request.Context(), req.HexCode, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	setSessionCookie(c, res)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.AuthResponse{
		Token:     res.Token,
		UserHex:   res.UserHex,
		ExpiresAt: res.ExpiresAt,
	}))
}

// Login handles sign-in.
func (h *AuthHandler) Login(c *gin.Context) {
	var req httpdto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	res, err := h.service.Authenticate(c.Request.Context(), req.HexCode, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	setSessionCookie(c, res)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.AuthResponse{
		Token:     res.Token,
		UserHex:   res.UserHex,
		ExpiresAt: res.ExpiresAt,
	}))
}

// Me returns the identity behind the presented session.
func (h *AuthHandler) Me(c *gin.Context) {
	userHex, ok := services.UserHexFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.IdentityResponse{UserHex: userHex}))
}

// Logout invalidates the presented session.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, ok := services.SessionTokenFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if err := h.service.SignOut(c.Request.Context(), token); err != nil {
		writeError(c, err)
		return
	}

	clearSessionCookie(c)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

// DeleteAccount removes the caller's identity and cascades.
func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	userHex, ok := services.UserHexFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if err := h.service.DeleteIdentity(c.Request.Context(), userHex); err != nil {
		writeError(c, err)
		return
	}

	clearSessionCookie(c)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

// Users lists every registered identity in sign-up order.
func (h *AuthHandler) Users(c *gin.Context) {
	users, err := h.service.AllUsers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"users": users}))
}

func setSessionCookie(c *gin.Context, res services.AuthResponse) {
	maxAge := int(time.Until(res.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, res.Token, maxAge, "/", "", false, true)
}

func clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
}

func writeError(c *gin.Context, err error) {
	status := services.HTTPStatus(err)
	c.JSON(status, httpdto.NewErrorResponse(err.Error(), errorCode(status)))
}

func errorCode(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "INVALID_REQUEST"
	case http.StatusUnauthorized:
		return "UNAUTHORIZED"
	case http.StatusForbidden:
		return "FORBIDDEN"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "CONFLICT"
	case http.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		return "INTERNAL_ERROR"
	}
}
