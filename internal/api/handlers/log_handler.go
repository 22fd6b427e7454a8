package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/journai/internal/services"
)

type LogHandler struct {
	svc services.LogService
}

func NewLogHandler(svc services.LogService) *LogHandler {
	return &LogHandler{svc: svc}
}

// Save handles POST /logs.
func (h *LogHandler) Save(c *gin.Context) {
	var req services.SaveLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "LogHandler.Save", "invalid request body", err)
		return
	}
	if !authorizeUID(c, req.UID) {
		return
	}

	created, err := h.svc.Save(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "entryId": req.EntryID, "created": created})
}

// List handles GET /logs?uid&weekId&type=vent|all.
func (h *LogHandler) List(c *gin.Context) {
	uid := c.Query("uid")
	if !authorizeUID(c, uid) {
		return
	}

	entries, err := h.svc.List(c.Request.Context(), uid, c.Query("weekId"), c.Query("type"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "entries": entries})
}

// MentorHistory handles GET /history/mentor?uid&weekId.
func (h *LogHandler) MentorHistory(c *gin.Context) {
	uid := c.Query("uid")
	if !authorizeUID(c, uid) {
		return
	}

	entries, err := h.svc.MentorEntries(c.Request.Context(), uid, c.Query("weekId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "entries": entries})
}
