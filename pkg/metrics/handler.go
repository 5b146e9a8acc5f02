package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Server runs the dandidav gateway's prometheus metrics endpoint on its
// own listener, separate from the WebDAV/HTTP router so scraping never
// competes with archive traffic for request-size buffers.
func Server(listenAddr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Info().Str("component", "metrics").Str("addr", listenAddr).Msg("serving dandidav metrics")
	if err := http.ListenAndServe(listenAddr, mux); err != nil {
		log.Error().Str("component", "metrics").Err(err).Msg("metrics listener failed")
	} else {
		log.Info().Str("component", "metrics").Msg("metrics listener stopped")
	}
}
