package handlers

import (
	"context"
	"net/http"
	"time"

	"practice-service/internal/service"

	"github.com/gin-gonic/gin"
)

type PracticeHandler struct {
	Service *service.PracticeService
}

func NewPracticeHandler(s *service.PracticeService) *PracticeHandler {
	return &PracticeHandler{Service: s}
}

// StartSession opens a new practice session for the authenticated learner
func (h *PracticeHandler) StartSession(c *gin.Context) {
	var req struct {
		Grade int `json:"grade" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request format",
			"details": err.Error(),
		})
		return
	}

	learnerID := c.GetHeader("X-User-ID")
	if learnerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID is required"})
		return
	}

	session, err := h.Service.StartSession(context.Background(), learnerID, req.Grade)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"session":   session,
		"message":   "Session created successfully",
		"next_step": "Call /next endpoint to get the first item",
	})
}

// NextItem serves the next question or passage batch for the session
func (h *PracticeHandler) NextItem(c *gin.Context) {
	sessionID := c.Param("id")
	learnerID := c.GetHeader("X-User-ID")
	mood := c.Query("mood")

	next, err := h.Service.RequestNext(context.Background(), learnerID, sessionID, mood)
	if err != nil {
		respondError(c, err)
		return
	}

	response := gin.H{
		"mode":  next.Mode,
		"topic": next.Topic,
	}
	if next.Mode == service.ModeBatch {
		response["batch"] = next.Batch
		response["count"] = len(next.Batch)
	} else {
		response["item"] = next.Item
	}
	c.JSON(http.StatusOK, response)
}

// SubmitOutcome records an answered or abandoned item
func (h *PracticeHandler) SubmitOutcome(c *gin.Context) {
	sessionID := c.Param("id")
	learnerID := c.GetHeader("X-User-ID")

	var report service.OutcomeReport
	if err := c.ShouldBindJSON(&report); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid outcome format",
			"details": err.Error(),
		})
		return
	}

	ack, err := h.Service.ReportOutcome(context.Background(), learnerID, sessionID, report)
	if err != nil {
		respondError(c, err)
		return
	}

	response := gin.H{
		"outcome_recorded": true,
		"result":           ack.Result,
		"new_proficiency":  ack.NewProficiency,
		"phase":            ack.Phase,
	}
	if ack.CycleCompleted {
		response["cycle_completed"] = true
		response["message"] = "Full topic cycle completed, starting a new round"
	}
	if ack.SessionEnded {
		response["session_ended"] = true
	}
	c.JSON(http.StatusOK, response)
}

// EndSession closes the session and returns its summary
func (h *PracticeHandler) EndSession(c *gin.Context) {
	sessionID := c.Param("id")
	learnerID := c.GetHeader("X-User-ID")

	result, err := h.Service.EndSession(context.Background(), learnerID, sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"result":  result,
		"message": "Session ended successfully",
	})
}

// GetSession retrieves session information
func (h *PracticeHandler) GetSession(c *gin.Context) {
	sessionID := c.Param("id")
	learnerID := c.GetHeader("X-User-ID")

	session, err := h.Service.GetSession(context.Background(), learnerID, sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetSessionStatus returns the live flow position of a session
func (h *PracticeHandler) GetSessionStatus(c *gin.Context) {
	sessionID := c.Param("id")
	learnerID := c.GetHeader("X-User-ID")

	session, err := h.Service.GetSession(context.Background(), learnerID, sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id":         session.ID,
		"status":             session.Status,
		"phase":              session.Phase,
		"passages_completed": session.PassagesCompleted,
		"rotation_progress":  session.RotationProgress,
		"items_completed":    session.ItemsCompleted,
		"item_budget":        session.ItemBudget,
		"timestamp":          time.Now(),
	})
}
