package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/NuralamMRH/soletradeproject-sub004/internal/handler"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	notificationHandler *handler.NotificationHandler,
	jwtSecret string,
) *Router {
	r := gin.Default()
	r.Use(MetricsMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Every notification route is scoped to the authenticated user.
	auth := r.Group("/")
	auth.Use(AuthMiddleware(jwtSecret))
	{
		auth.GET("/notifications", notificationHandler.List)
		auth.GET("/notifications/:id", notificationHandler.Get)
		auth.PATCH("/notifications/:id/seen", notificationHandler.MarkSeen)
		auth.DELETE("/notifications/:id", notificationHandler.Delete)
		auth.POST("/notifications/bulk-delete", notificationHandler.BulkDelete)
	}

	return &Router{Engine: r}
}
