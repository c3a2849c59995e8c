package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"inpaint/utils"
)

// Version reported by GET /version
var Version = "v0.1.0"

// RegisterRoutes Attach the API, the static upload directory and the service endpoints
func RegisterRoutes(r *gin.Engine, store PairStore, writer PairWriter, uploadDir string, config *utils.Config) {
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": Version,
		})
	})

	r.GET("/healthz", func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "detail": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Currently no authentication is used
	api := r.Group("/api")
	{
		api.POST("/upload", UploadImages(store, writer, config))
		api.GET("/images", FindImages(store, config))
	}

	// Uploaded files are served read-only
	r.Static(config.Storage.URLPrefix, uploadDir)
}
