package web

import (
	"github.com/gin-gonic/gin"

	"github.com/terrycain/dandidav/pkg/dav"
	"github.com/terrycain/dandidav/pkg/metrics"
)

// GetRouter builds the gin engine serving the WebDAV gateway: ambient
// middleware (recovery, access logging, metrics, X-Forwarded-Proto) plus
// davHandlers' routes.
func GetRouter(metricsListenAddress string, davHandlers *dav.Handlers, withMetrics bool) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), GinLogger())
	if withMetrics {
		router.Use(metrics.PromReqMiddleware())
		go metrics.Server(metricsListenAddress)
	}
	router.Use(XForwardedProto("http"))

	// gin cannot hold static routes beside the root-level catch-all that
	// Register installs, so /healthz and /ping are answered here instead.
	router.Use(func(c *gin.Context) {
		if c.Request.Method != "GET" {
			return
		}
		switch c.Request.URL.Path {
		case "/healthz":
			HealthCheckEndpoint(c)
			c.Abort()
		case "/ping":
			PingEndpoint(c)
			c.Abort()
		}
	})

	davHandlers.Register(router)

	return router
}
