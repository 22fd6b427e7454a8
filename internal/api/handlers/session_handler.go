package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/journai/internal/models"
	"github.com/yoockh/journai/internal/services"
)

type SessionHandler struct {
	svc services.SessionService
}

func NewSessionHandler(svc services.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

type PutDraftRequest struct {
	UID             string           `json:"uid"`
	WeekID          string           `json:"weekId"`
	EntryID         string           `json:"entryId"`
	Mode            models.Mode      `json:"mode"`
	Messages        []models.Message `json:"messages"`
	StartTime       int64            `json:"startTime"`
	DurationMinutes int              `json:"durationMinutes"`
}

// Start handles POST /sessions/start.
func (h *SessionHandler) Start(c *gin.Context) {
	var req services.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "SessionHandler.Start", "invalid request body", err)
		return
	}
	if !authorizeUID(c, req.UID) {
		return
	}

	res, err := h.svc.Start(c.Request.Context(), req)
	if err != nil {
		extra := gin.H{}
		if res != nil && res.Cooldown != nil {
			extra["canStart"] = res.Cooldown.CanStart
			extra["hoursRemaining"] = res.Cooldown.HoursRemaining
		}
		if res != nil && res.Availability != nil {
			extra["availability"] = res.Availability
		}
		writeErrorWith(c, err, extra)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"entryId":         res.EntryID,
		"weekId":          res.WeekID,
		"date":            res.Date,
		"mode":            res.Mode,
		"startTime":       res.StartTime,
		"durationMinutes": res.DurationMinutes,
	})
}

// GetDraft handles GET /sessions/draft?uid&weekId&entryId.
func (h *SessionHandler) GetDraft(c *gin.Context) {
	uid := c.Query("uid")
	if !authorizeUID(c, uid) {
		return
	}

	view, err := h.svc.GetDraft(c.Request.Context(), uid, c.Query("weekId"), c.Query("entryId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"draft":         view.Draft,
		"timeRemaining": view.TimeRemaining,
		"expired":       view.Expired,
	})
}

// PutDraft handles PUT /sessions/draft.
func (h *SessionHandler) PutDraft(c *gin.Context) {
	var req PutDraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "SessionHandler.PutDraft", "invalid request body", err)
		return
	}
	if !authorizeUID(c, req.UID) {
		return
	}

	view, err := h.svc.SaveDraft(c.Request.Context(), req.UID, req.WeekID, req.EntryID, models.Draft{
		Mode:            req.Mode,
		Messages:        req.Messages,
		StartTime:       req.StartTime,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"draft":         view.Draft,
		"timeRemaining": view.TimeRemaining,
		"expired":       view.Expired,
	})
}

// DeleteDraft handles DELETE /sessions/draft?uid&weekId&entryId.
func (h *SessionHandler) DeleteDraft(c *gin.Context) {
	uid := c.Query("uid")
	if !authorizeUID(c, uid) {
		return
	}

	if err := h.svc.DeleteDraft(c.Request.Context(), uid, c.Query("weekId"), c.Query("entryId")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
