package web

import "github.com/gin-gonic/gin"

// XForwardedProto records the client-facing scheme on c.Request.URL so
// that a dandidav gateway sitting behind a TLS-terminating reverse proxy
// reports its real scheme in the access log rather than the scheme the
// proxy used to reach the gateway's own listener.
func XForwardedProto(defaultScheme string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if hdr := c.GetHeader("X-Forwarded-Proto"); hdr != "" {
			c.Request.URL.Scheme = hdr
		} else {
			c.Request.URL.Scheme = defaultScheme
		}

		c.Next()
	}
}
