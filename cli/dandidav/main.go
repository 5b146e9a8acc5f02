package main

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"

	"github.com/terrycain/dandidav/pkg/archive"
	"github.com/terrycain/dandidav/pkg/dav"
	"github.com/terrycain/dandidav/pkg/httpx"
	"github.com/terrycain/dandidav/pkg/resolver"
	"github.com/terrycain/dandidav/pkg/s3client"
	"github.com/terrycain/dandidav/pkg/utils/logging"
	"github.com/terrycain/dandidav/pkg/web"
	"github.com/terrycain/dandidav/pkg/zarrman"
)

var cli struct {
	APIURL            string        `env:"API_URL" default:"https://api.dandiarchive.org/api" name:"api-url" help:"Base URL of the archive API"`
	IPAddr            string        `env:"IP_ADDR" default:"127.0.0.1" help:"Bind address"`
	Port              int           `env:"PORT" default:"8080" short:"p" help:"Bind port"`
	PreferS3Redirects bool          `env:"PREFER_S3_REDIRECTS" name:"prefer-s3-redirects" help:"Blob GET redirects to the S3 URL directly"`
	Title             string        `env:"TITLE" default:"dandidav" short:"T" help:"HTML view title"`
	ZarrmanCacheMB    int           `env:"ZARRMAN_CACHE_MB" default:"100" short:"Z" name:"zarrman-cache-mb" help:"Zarr-manifest cache size bound (MiB)"`
	S3CacheSize       int           `env:"S3_CACHE_SIZE" default:"8" help:"Number of per-bucket S3 clients kept cached"`
	RequestTimeout    time.Duration `env:"REQUEST_TIMEOUT" default:"30s" help:"Per-upstream-request timeout"`
	LogLevel          string        `env:"LOG_LEVEL" default:"info" enum:"debug,info,warn,error"`
	MetricsListenAddr string        `env:"METRICS_LISTEN_ADDR" default:"0.0.0.0:9102" help:"Listen address for prometheus metrics"`
	NoMetrics         bool          `env:"NO_METRICS" help:"Disable the prometheus metrics server"`
}

func main() {
	kong.Parse(&cli)

	if err := validateCLI(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logging.SetupLogging(cli.LogLevel)

	httpClient := httpx.New(cli.RequestTimeout, "dandidav")

	archiveClient := archive.New(cli.APIURL, httpClient)
	zarrmanClient := zarrman.New(httpClient, int64(cli.ZarrmanCacheMB)*1024*1024, zarrman.DefaultIdleExpiry)

	s3Pool, err := s3client.NewPool(cli.S3CacheSize)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create S3 client pool")
	}

	res := resolver.New(archiveClient, zarrmanClient, s3Pool, resolver.Config{
		PreferS3Redirects: cli.PreferS3Redirects,
	})

	handlers := dav.NewHandlers(res, cli.Title, "https://github.com/terrycain/dandidav", "", "")

	router := web.GetRouter(cli.MetricsListenAddr, handlers, !cli.NoMetrics)

	zarrmanClient.InstallPeriodicHousekeeping(context.Background())

	listenAddr := fmt.Sprintf("%s:%d", cli.IPAddr, cli.Port)
	log.Info().Msgf("Listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal().Err(err).Msg("failed HTTP server loop")
	}
}

// validateCLI checks the invariants kong's struct tags cannot express:
// the API URL must be an absolute http(s) URL, and the port must be in
// the valid TCP range.
func validateCLI() error {
	u, err := url.Parse(cli.APIURL)
	if err != nil {
		return fmt.Errorf("invalid API URL %q: %w", cli.APIURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("API URL %q must be http or https, got scheme %q", cli.APIURL, u.Scheme)
	}
	if cli.Port < 1 || cli.Port > 65535 {
		return fmt.Errorf("port %d out of range 1-65535", cli.Port)
	}
	return nil
}
