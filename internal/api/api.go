// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/andresuchdata/replenish/internal/api/handlers"
	"github.com/andresuchdata/replenish/internal/api/middleware"
	"github.com/andresuchdata/replenish/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(svc *service.ReplenishService, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1/replenishment")

	if svc != nil {
		replenishHandler := handlers.NewReplenishHandler(svc)
		alertHandler := handlers.NewAlertHandler(svc)

		apiGroup.GET("/products/:id/recommendation", replenishHandler.GetRecommendation)
		apiGroup.GET("/products/:id/sales_profile", replenishHandler.GetSalesProfile)
		apiGroup.GET("/suppliers/:id/lead_time", replenishHandler.GetLeadTimeProfile)
		apiGroup.POST("/scan", replenishHandler.Scan)

		alertGroup := apiGroup.Group("/alerts")
		{
			alertGroup.GET("", alertHandler.List)
			alertGroup.GET("/summary", alertHandler.Summary)
			alertGroup.POST("/:id/resolve", alertHandler.Resolve)
		}

		apiGroup.POST("/products/:id/ordered", alertHandler.ProductOrdered)
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
