package zarrman

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/terrycain/dandidav/pkg/apperr"
	"github.com/terrycain/dandidav/pkg/httpx"
)

// Index is a directory listing under the manifest root: the names of
// plain files and subdirectories found there. Directory listings are not
// cached by design, since they change whenever a new manifest appears.
type Index struct {
	Files       []string `json:"files"`
	Directories []string `json:"directories"`
}

// Client fetches directory listings and manifests from the Zarr-manifest
// hierarchy, coalescing concurrent fetches of the same uncached manifest
// via a single-flight group and caching successfully fetched manifests.
type Client struct {
	http  *httpx.Client
	cache *manifestCache
	sf    singleflight.Group
	root  string
}

// New builds a Client with the given cache byte bound and idle TTL.
func New(http *httpx.Client, maxCacheBytes int64, idleExpiry time.Duration) *Client {
	return &Client{
		http:  http,
		cache: newManifestCache(maxCacheBytes, idleExpiry),
		root:  ManifestRootURL,
	}
}

// FetchIndex fetches the uncached directory listing at dirPath (relative
// to the manifest root, with a trailing slash, or "" for the root).
func (c *Client) FetchIndex(ctx context.Context, dirPath string) (*Index, error) {
	resp, err := c.http.Get(ctx, c.root+dirPath)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == 404 {
		return nil, apperr.New(apperr.NotFound, "manifest directory not found: "+dirPath)
	}
	if resp.StatusCode >= 400 {
		return nil, apperr.New(apperr.UpstreamUnavailable, fmt.Sprintf("manifest directory listing returned status %d", resp.StatusCode))
	}
	var idx Index
	if err := json.NewDecoder(resp.Body).Decode(&idx); err != nil {
		return nil, apperr.Wrap(apperr.UpstreamMalformed, "failed to decode manifest directory listing", err)
	}
	return &idx, nil
}

// FetchManifest returns the manifest identified by key, serving from
// cache when possible and coalescing concurrent fetches of the same
// uncached manifest into a single upstream request.
func (c *Client) FetchManifest(ctx context.Context, key ManifestPath) (*Manifest, error) {
	if m, ok := c.cache.get(key); ok {
		return m, nil
	}

	sfKey := key.UnderManifestRoot()
	v, err, _ := c.sf.Do(sfKey, func() (interface{}, error) {
		if m, ok := c.cache.get(key); ok {
			return m, nil
		}
		m, size, err := c.fetchManifestUncached(ctx, key)
		if err != nil {
			return nil, err
		}
		c.cache.insert(key, m, size)
		return m, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Manifest), nil
}

func (c *Client) fetchManifestUncached(ctx context.Context, key ManifestPath) (*Manifest, int64, error) {
	resp, err := c.http.Get(ctx, c.root+key.UnderManifestRoot())
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == 404 {
		return nil, 0, apperr.New(apperr.NotFound, "manifest not found: "+key.UnderManifestRoot())
	}
	if resp.StatusCode >= 400 {
		return nil, 0, apperr.New(apperr.UpstreamUnavailable, fmt.Sprintf("manifest fetch returned status %d", resp.StatusCode))
	}
	var m Manifest
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, 0, apperr.Wrap(apperr.UpstreamMalformed, "failed to decode manifest", err)
	}
	size, err := m.ApproxSize()
	if err != nil {
		return nil, 0, err
	}
	return &m, size, nil
}

// InstallPeriodicHousekeeping starts a goroutine that purges idle
// manifest cache entries and emits one cache-state log line every
// HousekeepingPeriod, until ctx is cancelled.
func (c *Client) InstallPeriodicHousekeeping(ctx context.Context) {
	ticker := time.NewTicker(HousekeepingPeriod)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				purged := c.cache.purgeIdle()
				count, totalBytes := c.cache.stateSnapshot()
				log.Debug().Int("entries", count).Int64("bytes", totalBytes).Int("purged", purged).Msg("zarr manifest cache housekeeping")
			}
		}
	}()
}
