package handler

import (
	"net/http"

	"hue-chat/internal/services"
	"hue-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// SyncHandler serves the combined poll read plus the auxiliary presence and
// typing endpoints.
type SyncHandler struct {
	sync     *services.SyncService
	presence *services.PresenceService
	typing   *services.TypingRegistry
}

func NewSyncHandler(sync *services.SyncService, presence *services.PresenceService, typing *services.TypingRegistry) *SyncHandler {
	return &SyncHandler{sync: sync, presence: presence, typing: typing}
}

// Poll returns the feed, online/active sets and typing users in one read.
func (h *SyncHandler) Poll(c *gin.Context) {
	userHex, ok := services.UserHexFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	snapshot, err := h.sync.Poll(c.Request.Context(), userHex)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(snapshot))
}

func (h *SyncHandler) OnlineUsers(c *gin.Context) {
	users, err := h.presence.OnlineUsers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"users": users}))
}

func (h *SyncHandler) ActiveUsers(c *gin.Context) {
	users, err := h.presence.ActiveUsers(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"users": users}))
}

func (h *SyncHandler) MarkTyping(c *gin.Context) {
	userHex, ok := services.UserHexFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	h.typing.Mark(userHex)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *SyncHandler) ClearTyping(c *gin.Context) {
	userHex, ok := services.UserHexFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	h.typing.Clear(userHex)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *SyncHandler) TypingUsers(c *gin.Context) {
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"users": h.typing.Typing()}))
}
