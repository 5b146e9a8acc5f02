// Package archive is a typed client over the archive's JSON REST API:
// dandisets, versions, and the atpath resolver endpoint. Grounded on
// original_source/src/dandi/mod.rs and types.rs (the "newer", atpath-based
// client, not the older dandiapi one).
package archive

import (
	"time"

	"github.com/terrycain/dandidav/pkg/s3loc"
)

// Dandiset is the archive's summary of a single dandiset.
type Dandiset struct {
	ID                      string
	DraftVersion            VersionInfo
	MostRecentPublishedVersion *VersionInfo // nil if never published
}

// VersionInfo is the archive's summary of a single version of a dandiset.
type VersionInfo struct {
	VersionID string
	Size      int64
	Created   time.Time
	Modified  time.Time
	// AssetCount is informational only; not used by rendering.
	AssetCount int
}

// VersionMetadata is the raw JSON metadata document for a version, kept
// as a generic map so it can be re-serialized as YAML for the synthetic
// dandiset.yaml document without needing to model every archive schema
// field.
type VersionMetadata map[string]interface{}

// AssetDigests holds the subset of an asset's digest map this gateway
// cares about.
type AssetDigests struct {
	DandiEtag string
}

// AssetMetadata is the subset of an asset's metadata needed to compute
// content type, etag, and redirect targets.
type AssetMetadata struct {
	EncodingFormat string
	ContentURL     []string
	Digest         AssetDigests
}

// BlobAsset is a single-object asset backed by object storage.
type BlobAsset struct {
	AssetID     string
	BlobID      string
	Path        string
	Size        int64
	Created     time.Time
	Modified    time.Time
	Metadata    AssetMetadata
	MetadataURL string
}

// ContentType returns the asset's declared encoding format, or the
// gateway's default octet-stream type if unset.
func (b *BlobAsset) ContentType() string {
	if b.Metadata.EncodingFormat != "" {
		return b.Metadata.EncodingFormat
	}
	return "application/octet-stream"
}

// ETag returns the DANDI etag digest, quoted per RFC 7232, or "" if none
// was reported.
func (b *BlobAsset) ETag() string {
	if b.Metadata.Digest.DandiEtag == "" {
		return ""
	}
	return `"` + b.Metadata.Digest.DandiEtag + `"`
}

// ArchiveURL returns the first contentUrl entry that does NOT parse as an
// S3 URL — the archive's own /download/ endpoint.
func (b *BlobAsset) ArchiveURL() (string, bool) {
	for _, u := range b.Metadata.ContentURL {
		if _, err := s3loc.Parse(u); err != nil {
			return u, true
		}
	}
	return "", false
}

// S3URL returns the first contentUrl entry that DOES parse as an S3 URL.
func (b *BlobAsset) S3URL() (string, bool) {
	for _, u := range b.Metadata.ContentURL {
		if _, err := s3loc.Parse(u); err == nil {
			return u, true
		}
	}
	return "", false
}

// ZarrAsset is a Zarr asset: a chunked array exposed as a directory tree
// in object storage.
type ZarrAsset struct {
	AssetID     string
	ZarrID      string
	Path        string
	Size        int64
	Created     time.Time
	Modified    time.Time
	Metadata    AssetMetadata
	MetadataURL string
}

// S3Location parses the first contentUrl entry as an S3 location.
func (z *ZarrAsset) S3Location() (s3loc.Location, bool) {
	for _, u := range z.Metadata.ContentURL {
		if loc, err := s3loc.Parse(u); err == nil {
			return loc, true
		}
	}
	return s3loc.Location{}, false
}

// AssetFolder is a plain directory inside a version, with no asset of
// its own.
type AssetFolder struct {
	Path string
}

// AtPathKind discriminates the AtPathResult union.
type AtPathKind int

const (
	AtPathNotFound AtPathKind = iota
	AtPathBlob
	AtPathZarr
	AtPathFolder
)

// AtPathEntry is one child entry of a Folder result, as returned when
// children were requested.
type AtPathEntry struct {
	Name   string
	IsDir  bool
	Blob   *BlobAsset
	Zarr   *ZarrAsset
}

// AtPathResult is the tagged result of a single atpath call.
type AtPathResult struct {
	Kind     AtPathKind
	Blob     *BlobAsset
	Zarr     *ZarrAsset
	Children []AtPathEntry // Folder only, and only if children were requested
}
