package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// Index describes the API surface at the root route.
func (h *HealthHandler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Video Annotation Pipeline API",
		"version": "1.0",
		"endpoints": gin.H{
			"POST /api/submit_video":  "Submit one video with nested queries and annotations",
			"POST /api/submit_videos": "Submit a batch of videos atomically",
			"GET /api/videos":         "List all videos",
			"GET /api/health":         "Health check",
		},
		"status": "running",
	})
}
