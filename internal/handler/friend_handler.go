package handler

import (
	"net/http"

	"hue-chat/internal/services"
	"hue-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type FriendHandler struct {
	service *services.FriendService
}

func NewFriendHandler(service *services.FriendService) *FriendHandler {
	return &FriendHandler{service: service}
}

func (h *FriendHandler) SendRequest(c *gin.Context) {
	var req httpdto.FriendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	userHex, ok := services.UserHexFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if err := h.service.SendRequest(c.Request.Context(), userHex, req.ToHex); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *FriendHandler) Accept(c *gin.Context) {
	requestID, err := parseInt64(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request id", "INVALID_REQUEST"))
		return
	}

	userHex, ok := services.UserHexFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if err := h.service.Accept(c.Request.Context(), requestID, userHex); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *FriendHandler) Reject(c *gin.Context) {
	requestID, err := parseInt64(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request id", "INVALID_REQUEST"))
		return
	}

	userHex, ok := services.UserHexFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if err := h.service.Reject(c.Request.Context(), requestID, userHex); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *FriendHandler) Remove(c *gin.Context) {
	var req httpdto.RemoveFriendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	userHex, ok := services.UserHexFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if err := h.service.Remove(c.Request.Context(), userHex, req.FriendHex); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *FriendHandler) SetNickname(c *gin.Context) {
	var req httpdto.NicknameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	userHex, ok := services.UserHexFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if err := h.service.SetNickname(c.Request.Context(), userHex, req.FriendHex, req.Nickname); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *FriendHandler) List(c *gin.Context) {
	userHex, ok := services.UserHexFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	friends, err := h.service.ListFriends(c.Request.Context(), userHex)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"friends": friends}))
}

func (h *FriendHandler) PendingRequests(c *gin.Context) {
	userHex, ok := services.UserHexFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	requests, err := h.service.PendingRequests(c.Request.Context(), userHex)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"requests": requests}))
}
