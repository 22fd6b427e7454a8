package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/journai/internal/services"
)

type GateHandler struct {
	gate services.GateService
}

func NewGateHandler(gate services.GateService) *GateHandler {
	return &GateHandler{gate: gate}
}

func requireUIDWeek(c *gin.Context, op string) (string, string, bool) {
	uid, weekID := c.Query("uid"), c.Query("weekId")
	if uid == "" || weekID == "" {
		badRequest(c, op, "Missing required query parameters: uid, weekId", nil)
		return "", "", false
	}
	return uid, weekID, authorizeUID(c, uid)
}

// MentorAvailability handles GET /mentor/availability?uid&weekId.
func (h *GateHandler) MentorAvailability(c *gin.Context) {
	uid, weekID, ok := requireUIDWeek(c, "GateHandler.MentorAvailability")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.gate.MentorAvailability(c.Request.Context(), uid, weekID))
}

// VentCooldown handles GET /vent/cooldown?uid&weekId.
func (h *GateHandler) VentCooldown(c *gin.Context) {
	uid, weekID, ok := requireUIDWeek(c, "GateHandler.VentCooldown")
	if !ok {
		return
	}
	cd := h.gate.VentCooldown(c.Request.Context(), uid, weekID)
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"canStart":       cd.CanStart,
		"hoursRemaining": cd.HoursRemaining,
		"lastSessionAt":  cd.LastSessionAt,
	})
}
