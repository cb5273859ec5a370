package handler

import "github.com/gin-gonic/gin"

// Router bundles the handlers into a gin engine
type Router struct {
	Search   *SearchHandler
	Feedback *FeedbackHandler
	Health   *HealthHandler
}

// Register mounts every route on r
func (rt Router) Register(r gin.IRouter) {
	r.GET("/health", rt.Health.Health)
	r.GET("/version", rt.Health.Version)
	r.GET("/metrics", rt.Health.Metrics())

	r.POST("/api/search", rt.Search.Search)

	apiV1 := r.Group("/api/v1")
	{
		apiV1.POST("/search", rt.Search.Search)
		apiV1.POST("/feedback", rt.Feedback.Submit)
	}
}
