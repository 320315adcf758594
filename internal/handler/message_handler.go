package handler

import (
	"net/http"
	"strconv"

	"hue-chat/internal/services"
	"hue-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	service *services.MessageService
	preview *services.LinkPreviewService
}

func NewMessageHandler(service *services.MessageService, preview *services.LinkPreviewService) *MessageHandler {
	return &MessageHandler{service: service, preview: preview}
}

func (h *MessageHandler) Post(c *gin.Context) {
	var req httpdto.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	userHex, ok := services.UserHexFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	id, err := h.service.Post(c.Request.Context(), userHex, req.Body)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"id": id}))
}

func (h *MessageHandler) Edit(c *gin.Context) {
	messageID, err := parseInt64(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.EditMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	userHex, ok := services.UserHexFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if err := h.service.Edit(c.Request.Context(), messageID, userHex, req.Body); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *MessageHandler) Delete(c *gin.Context) {
	messageID, err := parseInt64(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_REQUEST"))
		return
	}

	userHex, ok := services.UserHexFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), messageID, userHex); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *MessageHandler) Search(c *gin.Context) {
	userHex, ok := services.UserHexFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	results, err := h.service.Search(c.Request.Context(), c.Query("q"), userHex)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"messages": results}))
}

func (h *MessageHandler) React(c *gin.Context) {
	messageID, err := parseInt64(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	userHex, ok := services.UserHexFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if err := h.service.React(c.Request.Context(), messageID, userHex, req.Emoji); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

func (h *MessageHandler) Unreact(c *gin.Context) {
	messageID, err := parseInt64(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid message id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	userHex, ok := services.UserHexFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	if err := h.service.Unreact(c.Request.Context(), messageID, userHex, req.Emoji); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse[any](nil))
}

// Preview resolves a best-effort page title for a URL. It never fails: bad
// URLs and timeouts fall back to the URL itself.
func (h *MessageHandler) Preview(c *gin.Context) {
	var req httpdto.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	preview := h.preview.Fetch(c.Request.Context(), req.URL)
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(preview))
}

func parseInt64(value string) (int64, error) {
	return strconv.ParseInt(value, 10, 64)
}
