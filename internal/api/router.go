// router.go - Route and middleware setup

package api

import (
	"github.com/gin-gonic/gin"
)

// NewRouter wires the handlers into a gin engine with CORS enabled for allowedOrigins
func NewRouter(h *Handler, allowedOrigins string) *gin.Engine {
	router := gin.Default()

	router.Use(corsMiddleware(allowedOrigins))

	// Root endpoint for SSL verification
	router.GET("/", func(c *gin.Context) {
		c.String(200, "ok")
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "ghostwriter",
			"version": "1.0.0",
		})
	})

	router.GET("/info", h.InfoHandler)
	router.POST("/generate", h.GenerateHandler)
	router.GET("/generations", h.ListGenerationsHandler)

	return router
}

func corsMiddleware(allowedOrigins string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
