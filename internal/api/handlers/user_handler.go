package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/journai/internal/models"
	"github.com/yoockh/journai/internal/services"
)

type UserHandler struct {
	svc services.UserService
}

func NewUserHandler(svc services.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// Touch handles POST /users/touch, called by the client after every sign-in.
func (h *UserHandler) Touch(c *gin.Context) {
	var req models.UserProfile
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "UserHandler.Touch", "invalid request body", err)
		return
	}
	if !authorizeUID(c, req.UID) {
		return
	}

	created, err := h.svc.Touch(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "uid": req.UID, "created": created})
}

// List handles GET /admin/users.
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}
