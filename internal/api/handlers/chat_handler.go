package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/journai/internal/services"
)

type ChatHandler struct {
	svc services.ChatService
}

func NewChatHandler(svc services.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// Chat handles POST /chat.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req services.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "ChatHandler.Chat", "invalid request body", err)
		return
	}
	if !authorizeUID(c, req.UID) {
		return
	}

	reply, err := h.svc.Chat(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply, "success": true})
}
