package web

import (
	"github.com/gin-gonic/gin"
	"net/http"
)

func HealthCheckEndpoint(c *gin.Context) {
	c.Data(http.StatusNoContent, gin.MIMEJSON, nil)
}

// PingEndpoint is a liveness probe distinct from HealthCheckEndpoint's
// readiness semantics: it never depends on any upstream being reachable.
func PingEndpoint(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}
