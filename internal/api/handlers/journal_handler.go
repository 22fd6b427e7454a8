package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yoockh/journai/internal/services"
)

type JournalHandler struct {
	journal   services.JournalService
	summaries services.SummaryService
	conv      services.ConversationService
}

func NewJournalHandler(journal services.JournalService, summaries services.SummaryService, conv services.ConversationService) *JournalHandler {
	return &JournalHandler{journal: journal, summaries: summaries, conv: conv}
}

type saveEntryRequest struct {
	UID     string `json:"uid"`
	Date    string `json:"date"`
	Content string `json:"content"`
}

type contentRequest struct {
	Content string `json:"content"`
}

// SaveEntry handles POST /journal/entry and POST /journal/save.
func (h *JournalHandler) SaveEntry(c *gin.Context) {
	var req saveEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "JournalHandler.SaveEntry", "invalid request body", err)
		return
	}
	if !authorizeUID(c, req.UID) {
		return
	}

	if err := h.journal.Save(c.Request.Context(), req.UID, req.Date, req.Content); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uid": req.UID, "success": true})
}

// GetEntry handles GET /journal/entry?uid&date.
func (h *JournalHandler) GetEntry(c *gin.Context) {
	uid := c.Query("uid")
	if !authorizeUID(c, uid) {
		return
	}

	content, err := h.journal.Get(c.Request.Context(), uid, c.Query("date"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "content": content})
}

// Elaborate handles POST /journal/elaborate.
func (h *JournalHandler) Elaborate(c *gin.Context) {
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "JournalHandler.Elaborate", "invalid request body", err)
		return
	}

	resp, err := h.conv.Elaborate(c.Request.Context(), req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": resp, "success": true})
}

// WeeklyMentor handles POST /weekly/mentor; same contract as Elaborate, different envelope.
func (h *JournalHandler) WeeklyMentor(c *gin.Context) {
	var req contentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "JournalHandler.WeeklyMentor", "invalid request body", err)
		return
	}

	reply, err := h.conv.Elaborate(c.Request.Context(), req.Content)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reply": reply})
}

// Summary handles GET /journal/summary?uid&weekId.
func (h *JournalHandler) Summary(c *gin.Context) {
	uid := c.Query("uid")
	if !authorizeUID(c, uid) {
		return
	}

	summary, err := h.summaries.WeeklySummary(c.Request.Context(), uid, c.Query("weekId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "summary": summary})
}

// WeekEntries handles GET /journal/entries?uid&weekId.
func (h *JournalHandler) WeekEntries(c *gin.Context) {
	uid := c.Query("uid")
	if !authorizeUID(c, uid) {
		return
	}

	entries, err := h.journal.WeekEntries(c.Request.Context(), uid, c.Query("weekId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "entries": entries})
}

// History handles GET /history/journals?uid.
func (h *JournalHandler) History(c *gin.Context) {
	uid := c.Query("uid")
	if !authorizeUID(c, uid) {
		return
	}

	entries, err := h.journal.All(c.Request.Context(), uid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "entries": entries})
}
