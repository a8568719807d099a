package api

import "github.com/gin-gonic/gin"

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, handler *Handler) {
	router.GET("/", handler.Root)
	router.GET("/health", handler.Health)

	v1 := router.Group("/api/v1")
	tournaments := v1.Group("/tournaments")
	tournaments.GET("", handler.ListTournaments)
	tournaments.GET("/search", handler.SearchTournaments)
	tournaments.GET("/:id", handler.GetTournament)
	tournaments.POST("/discover", handler.Discover)

	v1.GET("/sports", handler.ListSports)
	v1.GET("/levels", handler.ListLevels)
	v1.GET("/statistics", handler.GetStatistics)
}
