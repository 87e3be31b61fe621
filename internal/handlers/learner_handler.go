package handlers

import (
	"context"
	"net/http"

	"practice-service/internal/service"

	"github.com/gin-gonic/gin"
)

type LearnerHandler struct {
	Service *service.LearnerService
}

func NewLearnerHandler(s *service.LearnerService) *LearnerHandler {
	return &LearnerHandler{Service: s}
}

// GetProfile returns a learner's grade and per-topic proficiency scores
func (h *LearnerHandler) GetProfile(c *gin.Context) {
	learner, err := h.Service.GetProfile(context.Background(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, learner)
}

// GetResults returns a learner's past session summaries, newest first
func (h *LearnerHandler) GetResults(c *gin.Context) {
	results, err := h.Service.GetResults(context.Background(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"count":   len(results),
	})
}
