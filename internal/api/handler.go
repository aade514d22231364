package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/williampepple1/member-scraper/pkg/models"
)

// Batcher scrapes a list of URLs and returns one outcome per URL
type Batcher interface {
	ScrapeAll(ctx context.Context, urls []string) models.BatchResult
}

// ScrapeRequest is the payload for POST /scrape.
type ScrapeRequest struct {
	URLs []string `json:"urls" binding:"required,min=1,max=100,dive,required"`
}

// HealthResponse is the payload for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// Health returns a handler for GET /health.
func Health(startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status: "healthy",
			Uptime: time.Since(startTime).Round(time.Second).String(),
		})
	}
}

// ScrapeTargets returns a handler that scrapes a fixed list of URLs and
// responds with the batch result as is.
func ScrapeTargets(b Batcher, targets []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, runBatch(c, b, targets))
	}
}

// ScrapeURLs returns a handler for POST /scrape.
func ScrapeURLs(b Batcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ScrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.NewScrapeError(models.ErrCodeInvalidInput, "invalid request body", err).ToDetail(),
			})
			return
		}
		c.JSON(http.StatusOK, runBatch(c, b, req.URLs))
	}
}

// runBatch detaches the batch from the request so a client disconnect does
// not abort scrapes that are already running.
func runBatch(c *gin.Context, b Batcher, urls []string) models.BatchResult {
	return b.ScrapeAll(context.WithoutCancel(c.Request.Context()), urls)
}
