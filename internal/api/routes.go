package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes
func SetupRoutes(handlers *Handlers) *gin.Engine {
	router := gin.Default()

	// Add CORS middleware
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		reports := api.Group("/reports")
		{
			reports.POST("/generate", handlers.GenerateReportHandler)
			reports.GET("/status/:reportId", handlers.GetReportStatusHandler)
			reports.GET("/:reportId/pdf", handlers.GetReportPDFHandler)

			// Periodic report opt-in/opt-out
			schedule := reports.Group("/schedule")
			{
				schedule.POST("/opt-in", handlers.OptInScheduleHandler)
				schedule.POST("/opt-out", handlers.OptOutScheduleHandler)
			}
		}

		api.GET("/workflow/graph", handlers.GetWorkflowGraphHandler)
	}

	// Health check endpoint
	router.GET("/health", handlers.HealthHandler)

	return router
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
