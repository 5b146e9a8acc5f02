package zarrman

import "time"

// ManifestRootURL is the base URL under which manifest directory
// listings and manifest JSON documents are hosted.
const ManifestRootURL = "https://datasets.datalad.org/dandi/zarr-manifests/zarr-manifests-v2-sorted/"

// EntryDownloadPrefix is prepended to a Zarr's id and entry path to build
// a manifest entry's download URL.
const EntryDownloadPrefix = "https://dandiarchive.s3.amazonaws.com/zarr/"

// DefaultCacheSizeBytes is the default manifest cache byte-footprint
// bound (100 MiB, per the caches section).
const DefaultCacheSizeBytes = 100 * 1024 * 1024

// DefaultIdleExpiry is the default idle TTL for a cached manifest. The
// original implementation used 5 minutes; this gateway's default is the
// spec's explicitly stated 1 hour.
const DefaultIdleExpiry = time.Hour

// HousekeepingPeriod is the interval between periodic purges of idle
// manifest cache entries and the accompanying cache-state log line.
const HousekeepingPeriod = time.Hour
