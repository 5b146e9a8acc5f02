package web

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func GinLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if path == "/healthz" || path == "/metrics" {
			return
		}

		latency := time.Since(t)
		clientIP := c.ClientIP()
		if raw != "" {
			path = path + "?" + raw
		}
		msg := c.Errors.String()
		if msg == "" {
			msg = "Request"
		}

		statusCode := c.Writer.Status()
		ua := c.Request.Header.Get("User-Agent")
		virtpathKind := c.GetString("virtpath_kind")

		event := log.Info()
		switch {
		case statusCode >= 400 && statusCode < 500:
			event = log.Warn()
		case statusCode >= 500:
			event = log.Error()
		}

		event = event.Str("logger", "access").Str("method", c.Request.Method).
			Str("scheme", c.Request.URL.Scheme).
			Str("path", path).Dur("resp_time", latency).Int("status", statusCode).
			Str("client_ip", clientIP).Str("user_agent", ua)
		if virtpathKind != "" {
			event = event.Str("virtpath_kind", virtpathKind)
		}
		event.Msg(msg)
	}
}
