package logging

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupLogging parses level into a zerolog.Level, defaulting to info on a
// bad value, and aligns the global timestamp format with the RFC3339
// timestamps the archive and zarr-manifest APIs hand back, so a log line
// and the upstream Modified time it's reporting on read the same way.
func SetupLogging(level string) {
	zerologLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		zerologLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(zerologLevel)
	zerolog.TimeFieldFormat = time.RFC3339

	if err != nil {
		log.Warn().Err(err).Msg("Failed to parse log level, defaulting to info")
	}
}
