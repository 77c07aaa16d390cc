package handlers

import (
	"io"
	"log"
	"net/http"

	"lawlens-backend/models"
	"lawlens-backend/service"

	"github.com/gin-gonic/gin"
)

// AnalyzeHandler handles HTTP requests for AI analysis
type AnalyzeHandler struct {
	analyzeService *service.AnalyzeService
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(analyzeService *service.AnalyzeService) *AnalyzeHandler {
	return &AnalyzeHandler{analyzeService: analyzeService}
}

// Analyze handles POST /api/analyze. Streaming modes respond with an SSE
// stream of fragments; risk_score responds with a single JSON scorecard.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req models.AnalyzeRequest
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

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	log.Printf("Analyze request: mode=%s messages=%d user=%q", req.Mode, len(req.Messages), req.UserID)

	if !req.Mode.Streaming() {
		score, err := h.analyzeService.RiskScore(c.Request.Context(), req)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "GENERATION_FAILED",
					"message": err.Error(),
				},
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    score,
		})
		return
	}

	fragments, err := h.analyzeService.Analyze(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "GENERATION_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	// c.Stream returns false when the client disconnects; the request context
	// is then cancelled, which stops the producer goroutine upstream.
	c.Stream(func(w io.Writer) bool {
		fragment, ok := <-fragments
		if !ok {
			return false
		}
		c.SSEvent("message", fragment)
		return true
	})
}
