package handlers

import (
	"context"
	"net/http"
	"strconv"

	"practice-service/internal/models"
	"practice-service/internal/service"

	"github.com/gin-gonic/gin"
)

type ContentHandler struct {
	Service *service.ContentService
}

func NewContentHandler(s *service.ContentService) *ContentHandler {
	return &ContentHandler{Service: s}
}

// CreateContent ingests one generated record
func (h *ContentHandler) CreateContent(c *gin.Context) {
	var input service.ContentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid content format",
			"details": err.Error(),
		})
		return
	}

	record, err := h.Service.Ingest(context.Background(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

// BulkCreateContent ingests a generator batch, reporting per-record problems
func (h *ContentHandler) BulkCreateContent(c *gin.Context) {
	var inputs []service.ContentInput
	if err := c.ShouldBindJSON(&inputs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid batch format",
			"details": err.Error(),
		})
		return
	}

	inserted, problems := h.Service.BulkIngest(context.Background(), inputs)
	c.JSON(http.StatusOK, gin.H{
		"inserted": inserted,
		"skipped":  len(problems),
		"problems": problems,
	})
}

// GetContent retrieves one record by ID
func (h *ContentHandler) GetContent(c *gin.Context) {
	record, err := h.Service.Get(context.Background(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// ListContent lists active records, optionally filtered by topic
func (h *ContentHandler) ListContent(c *gin.Context) {
	topic := models.Topic(c.Query("topic"))
	limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "50"), 10, 64)
	offset, _ := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)

	records, err := h.Service.List(context.Background(), topic, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"count":   len(records),
	})
}

// DeleteContent soft-deletes a record from the pool
func (h *ContentHandler) DeleteContent(c *gin.Context) {
	if err := h.Service.Delete(context.Background(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Content deleted successfully"})
}

// GetPoolInfo reports the pool distribution for generator monitoring
func (h *ContentHandler) GetPoolInfo(c *gin.Context) {
	info, err := h.Service.PoolInfo(context.Background())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pool_info": info})
}
