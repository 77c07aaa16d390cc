package handlers

import (
	"net/http"

	"lawlens-backend/models"
	"lawlens-backend/service"

	"github.com/gin-gonic/gin"
)

// MemoryHandler handles HTTP requests for user memories
type MemoryHandler struct {
	memoryStore *service.MemoryStore
}

// NewMemoryHandler creates a new memory handler
func NewMemoryHandler(memoryStore *service.MemoryStore) *MemoryHandler {
	return &MemoryHandler{memoryStore: memoryStore}
}

type createMemoryRequest struct {
	UserID     string `json:"user_id" binding:"required"`
	Content    string `json:"content" binding:"required"`
	MemoryType string `json:"memory_type"`
}

// Create handles POST /api/memory
func (h *MemoryHandler) Create(c *gin.Context) {
	var req createMemoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	memoryType := models.MemoryType(req.MemoryType)
	if req.MemoryType == "" {
		memoryType = models.MemoryFact
	}
	if !memoryType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "memory_type must be one of: preference, correction, fact",
			},
		})
		return
	}

	record, err := h.memoryStore.Write(c.Request.Context(), req.UserID, req.Content, memoryType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MEMORY_WRITE_FAILED",
				"message": "Failed to store memory",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    record,
	})
}
