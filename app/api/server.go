package api

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey, mediaDir string) *gin.Engine {
	// Set Gin mode (can be controlled via GIN_MODE environment variable)
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// Middleware
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware for API endpoints
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-API-Key, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Routes
	setupRoutes(r, handler, apiAccessKey, mediaDir)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey, mediaDir string) {
	// Command endpoint used by the external content source. Authorization
	// happens per command via the uuid in the request body.
	r.POST("/api/command", handler.HandleCommand)

	// Locally stored media files
	r.Static("/media", mediaDir)

	// Health endpoint
	r.GET("/health", handler.GetHealth)

	// Import endpoints (conditionally enabled with authentication)
	if apiAccessKey != "" {
		api := r.Group("/api/import")
		api.Use(authMiddleware(apiAccessKey))
		{
			api.GET("/post_ids", handler.GetImportPostIDs)
			api.POST("/process_batch", handler.ProcessImportBatch)
			api.POST("/start", handler.StartImport)
			api.GET("/status", handler.GetImportStatus)
		}
		log.Printf("Import endpoints enabled with authentication")
	} else {
		log.Printf("Import endpoints disabled (API_ACCESS_KEY not set)")
	}

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"command": "/api/command (POST)",
			"media":   "/media/<filename>",
			"health":  "/health",
		}

		if apiAccessKey != "" {
			endpoints["post_ids"] = "/api/import/post_ids (requires X-API-Key header)"
			endpoints["process_batch"] = "/api/import/process_batch (POST, requires X-API-Key header)"
			endpoints["start"] = "/api/import/start (POST, requires X-API-Key header)"
			endpoints["status"] = "/api/import/status (requires X-API-Key header)"
		}

		c.JSON(200, gin.H{
			"service":     "SyncPress",
			"description": "Content sync endpoint with external image import and local media hosting",
			"endpoints":   endpoints,
			"api_status": map[string]interface{}{
				"enabled":       apiAccessKey != "",
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// authMiddleware creates authentication middleware for import endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get API key from X-API-Key header
		providedKey := c.GetHeader("X-API-Key")

		// Also check Authorization header with Bearer prefix
		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		// Check if API key is provided and matches
		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		// Continue to next middleware/handler
		c.Next()
	}
}
