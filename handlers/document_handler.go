package handlers

import (
	"net/http"

	"lawlens-backend/models"
	"lawlens-backend/repository"

	"github.com/gin-gonic/gin"
)

// DocumentHandler handles HTTP requests for saved documents
type DocumentHandler struct {
	documentRepo *repository.DocumentRepository
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentRepo *repository.DocumentRepository) *DocumentHandler {
	return &DocumentHandler{documentRepo: documentRepo}
}

type saveDocumentRequest struct {
	Title   string  `json:"title" binding:"required"`
	Content string  `json:"content" binding:"required"`
	UserID  *string `json:"user_id"`
}

// Save handles POST /api/save
func (h *DocumentHandler) Save(c *gin.Context) {
	var req saveDocumentRequest
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

	doc := &models.Document{
		Title:   req.Title,
		Content: req.Content,
		UserID:  req.UserID,
	}

	if err := h.documentRepo.Create(c.Request.Context(), doc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SAVE_FAILED",
				"message": "Failed to save document",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    doc,
	})
}

// History handles GET /api/history
func (h *DocumentHandler) History(c *gin.Context) {
	var userID *string
	if v := c.Query("user_id"); v != "" {
		userID = &v
	}

	docs, err := h.documentRepo.ListByUser(c.Request.Context(), userID, 20)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "HISTORY_FAILED",
				"message": "Failed to load document history",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    docs,
	})
}
