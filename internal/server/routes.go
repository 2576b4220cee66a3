package server

import (
	"net/http"

	"gotube/internal/youtube"

	"github.com/gin-gonic/gin"
)

// AvailabilityMiddleware rejects gateway routes outright while the service
// switch is off, before any handler work happens.
func AvailabilityMiddleware(avail youtube.Availability) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !avail.Enabled(c.Request.Context()) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Service is disabled"})
			return
		}
		c.Next()
	}
}

// SetupRoutes registers the public gateway surface and the quota reporting
// endpoints.
func SetupRoutes(router *gin.Engine, handler *Handler, avail youtube.Availability) {
	apiGroup := router.Group("/youtube/api")
	apiGroup.Use(AvailabilityMiddleware(avail))
	{
		apiGroup.GET("/search", handler.SearchHandler)
		apiGroup.GET("/categories", handler.CategoriesHandler)
		apiGroup.GET("/video-by-id", handler.VideoByIDHandler)
		apiGroup.GET("/videos-by-ids", handler.VideosByIDsHandler)
		apiGroup.GET("/video-by-category-id", handler.VideoByCategoryIDHandler)
		apiGroup.GET("/video-by-channel-id", handler.VideoByChannelIDHandler)
		apiGroup.GET("/video-by-playlist-id", handler.VideoByPlaylistIDHandler)
		apiGroup.GET("/comments", handler.CommentsHandler)
		apiGroup.GET("/trends", handler.TrendsHandler)
		apiGroup.GET("/categories-with-videos", handler.CategoriesWithVideosHandler)
	}

	quotaGroup := router.Group("/quota-usage")
	{
		quotaGroup.GET("/today", handler.QuotaTodayHandler)
		quotaGroup.GET("/by-period", handler.QuotaByPeriodHandler)
	}

	router.GET("/apikeys/statistic", handler.StatisticHandler)
}
