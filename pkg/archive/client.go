package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/terrycain/dandidav/pkg/apperr"
	"github.com/terrycain/dandidav/pkg/httpx"
)

// Client is a typed client over the archive's JSON REST API.
type Client struct {
	apiURL string
	http   *httpx.Client
}

// New builds a Client against the given archive API base URL.
func New(apiURL string, http *httpx.Client) *Client {
	return &Client{apiURL: apiURL, http: http}
}

// --- wire types, mirroring original_source/src/dandi/types.rs -------------

type rawDandisetVersion struct {
	Version  string    `json:"version"`
	Size     int64     `json:"size"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

type rawDandiset struct {
	Identifier                 string               `json:"identifier"`
	Created                    time.Time            `json:"created"`
	Modified                   time.Time            `json:"modified"`
	DraftVersion               rawDandisetVersion   `json:"draft_version"`
	MostRecentPublishedVersion *rawDandisetVersion  `json:"most_recent_published_version"`
}

type rawVersionInfo struct {
	rawDandisetVersion
	Metadata json.RawMessage `json:"metadata"`
}

type rawAssetMetadata struct {
	EncodingFormat *string  `json:"encodingFormat"`
	ContentURL     []string `json:"contentUrl"`
	Digest         struct {
		DandiEtag *string `json:"dandi:dandi-etag"`
	} `json:"digest"`
}

type rawAsset struct {
	AssetID  string           `json:"asset_id"`
	Blob     *string          `json:"blob"`
	Zarr     *string          `json:"zarr"`
	Path     string           `json:"path"`
	Size     int64            `json:"size"`
	Created  time.Time        `json:"created"`
	Modified time.Time        `json:"modified"`
	Metadata rawAssetMetadata `json:"metadata"`
}

type rawAtPath struct {
	Type     string          `json:"type"` // "folder" | "asset"
	Resource json.RawMessage `json:"resource"`
}

type rawFolderResource struct {
	Path string `json:"path"`
}

type page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// --- helpers ---------------------------------------------------------------

func toAssetMetadata(m rawAssetMetadata) AssetMetadata {
	out := AssetMetadata{ContentURL: m.ContentURL}
	if m.EncodingFormat != nil {
		out.EncodingFormat = *m.EncodingFormat
	}
	if m.Digest.DandiEtag != nil {
		out.Digest.DandiEtag = *m.Digest.DandiEtag
	}
	return out
}

func (c *Client) assetMetadataURL(dandisetID, versionID, assetID string) string {
	return fmt.Sprintf("%s/dandisets/%s/versions/%s/assets/%s", c.apiURL, dandisetID, versionID, assetID)
}

// convertAsset turns a rawAsset into exactly one of BlobAsset or ZarrAsset,
// mirroring RawAsset::try_into_asset's "exactly one of blob/zarr" rule.
func (c *Client) convertAsset(a rawAsset, dandisetID, versionID string) (blob *BlobAsset, zarr *ZarrAsset, err error) {
	meta := toAssetMetadata(a.Metadata)
	metaURL := c.assetMetadataURL(dandisetID, versionID, a.AssetID)
	switch {
	case a.Blob != nil && a.Zarr == nil:
		return &BlobAsset{
			AssetID: a.AssetID, BlobID: *a.Blob, Path: a.Path, Size: a.Size,
			Created: a.Created, Modified: a.Modified, Metadata: meta, MetadataURL: metaURL,
		}, nil, nil
	case a.Zarr != nil && a.Blob == nil:
		return nil, &ZarrAsset{
			AssetID: a.AssetID, ZarrID: *a.Zarr, Path: a.Path, Size: a.Size,
			Created: a.Created, Modified: a.Modified, Metadata: meta, MetadataURL: metaURL,
		}, nil
	case a.Blob == nil && a.Zarr == nil:
		return nil, nil, apperr.New(apperr.UpstreamMalformed, fmt.Sprintf("asset %s has neither blob nor zarr set", a.AssetID))
	default:
		return nil, nil, apperr.New(apperr.UpstreamMalformed, fmt.Sprintf("asset %s has both blob and zarr set", a.AssetID))
	}
}

func (c *Client) convertAtPathEntry(raw rawAtPath, dandisetID, versionID string) (AtPathEntry, error) {
	switch raw.Type {
	case "folder":
		var f rawFolderResource
		if err := json.Unmarshal(raw.Resource, &f); err != nil {
			return AtPathEntry{}, apperr.Wrap(apperr.UpstreamMalformed, "malformed atpath folder resource", err)
		}
		return AtPathEntry{Name: lastPathComponent(f.Path), IsDir: true}, nil
	case "asset":
		var a rawAsset
		if err := json.Unmarshal(raw.Resource, &a); err != nil {
			return AtPathEntry{}, apperr.Wrap(apperr.UpstreamMalformed, "malformed atpath asset resource", err)
		}
		blob, zarr, err := c.convertAsset(a, dandisetID, versionID)
		if err != nil {
			return AtPathEntry{}, err
		}
		return AtPathEntry{Name: lastPathComponent(a.Path), Blob: blob, Zarr: zarr}, nil
	default:
		return AtPathEntry{}, apperr.New(apperr.UpstreamMalformed, "unrecognized atpath resource type: "+raw.Type)
	}
}

func lastPathComponent(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[i+1:]
		}
	}
	return p
}

// --- paginated GET -----------------------------------------------------

func (c *Client) fetchPage(ctx context.Context, rawurl string, out interface{}) error {
	resp, err := c.http.Get(ctx, rawurl)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == 404 {
		return apperr.New(apperr.NotFound, "resource not found")
	}
	if resp.StatusCode >= 400 {
		return apperr.New(apperr.UpstreamUnavailable, fmt.Sprintf("archive returned status %d", resp.StatusCode))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.Wrap(apperr.UpstreamMalformed, "failed to decode archive response", err)
	}
	return nil
}

// paginate walks every page of a paginated archive endpoint via its "next"
// link, collecting all results. Implemented eagerly rather than as a lazy
// stream since every caller consumes the full result set to build a
// children list or index.
func paginate[T any](ctx context.Context, c *Client, firstURL string) ([]T, error) {
	var out []T
	next := &firstURL
	for next != nil {
		var p page[T]
		if err := c.fetchPage(ctx, *next, &p); err != nil {
			return nil, err
		}
		out = append(out, p.Results...)
		next = p.Next
	}
	return out, nil
}

// --- public API --------------------------------------------------------

// ListDandisets returns every dandiset known to the archive.
func (c *Client) ListDandisets(ctx context.Context) ([]Dandiset, error) {
	raw, err := paginate[rawDandiset](ctx, c, c.apiURL+"/dandisets/")
	if err != nil {
		return nil, err
	}
	out := make([]Dandiset, len(raw))
	for i, d := range raw {
		out[i] = dandisetFromRaw(d)
	}
	return out, nil
}

func dandisetFromRaw(d rawDandiset) Dandiset {
	ds := Dandiset{
		ID: d.Identifier,
		DraftVersion: VersionInfo{
			VersionID: d.DraftVersion.Version,
			Size:      d.DraftVersion.Size,
			Created:   d.DraftVersion.Created,
			Modified:  d.DraftVersion.Modified,
		},
	}
	if d.MostRecentPublishedVersion != nil {
		v := d.MostRecentPublishedVersion
		ds.MostRecentPublishedVersion = &VersionInfo{
			VersionID: v.Version,
			Size:      v.Size,
			Created:   v.Created,
			Modified:  v.Modified,
		}
	}
	return ds
}

// GetDandiset fetches a single dandiset's summary, including its current
// draft and (if any) most recent published version.
func (c *Client) GetDandiset(ctx context.Context, dandisetID string) (Dandiset, error) {
	var raw rawDandiset
	url := c.apiURL + "/dandisets/" + dandisetID + "/"
	if err := c.fetchPage(ctx, url, &raw); err != nil {
		return Dandiset{}, err
	}
	return dandisetFromRaw(raw), nil
}

// ListVersions returns every version of a dandiset.
func (c *Client) ListVersions(ctx context.Context, dandisetID string) ([]VersionInfo, error) {
	raw, err := paginate[rawDandisetVersion](ctx, c, c.apiURL+"/dandisets/"+dandisetID+"/versions/")
	if err != nil {
		return nil, err
	}
	out := make([]VersionInfo, len(raw))
	for i, v := range raw {
		out[i] = VersionInfo{VersionID: v.Version, Size: v.Size, Created: v.Created, Modified: v.Modified}
	}
	return out, nil
}

// GetVersionInfo fetches a single version's summary.
func (c *Client) GetVersionInfo(ctx context.Context, dandisetID, versionID string) (VersionInfo, error) {
	var raw rawDandisetVersion
	url := c.apiURL + "/dandisets/" + dandisetID + "/versions/" + versionID + "/info/"
	if err := c.fetchPage(ctx, url, &raw); err != nil {
		return VersionInfo{}, err
	}
	return VersionInfo{VersionID: raw.Version, Size: raw.Size, Created: raw.Created, Modified: raw.Modified}, nil
}

// GetVersionMetadata fetches a version's raw metadata document, for
// serialization as YAML into the synthetic dandiset.yaml document.
func (c *Client) GetVersionMetadata(ctx context.Context, dandisetID, versionID string) (VersionMetadata, error) {
	var raw map[string]interface{}
	url := c.apiURL + "/dandisets/" + dandisetID + "/versions/" + versionID + "/"
	if err := c.fetchPage(ctx, url, &raw); err != nil {
		return nil, err
	}
	return VersionMetadata(raw), nil
}

// AtPath resolves a single version-relative path, without children.
func (c *Client) AtPath(ctx context.Context, dandisetID, versionID, path string) (AtPathResult, error) {
	return c.atpath(ctx, dandisetID, versionID, &path, false)
}

// AtPathWithChildren resolves a single version-relative path and, if it is
// a folder, its immediate children. If path is nil, resolves the root of
// the version's file hierarchy.
func (c *Client) AtPathWithChildren(ctx context.Context, dandisetID, versionID string, path *string) (AtPathResult, error) {
	return c.atpath(ctx, dandisetID, versionID, path, true)
}

func (c *Client) atpath(ctx context.Context, dandisetID, versionID string, path *string, children bool) (AtPathResult, error) {
	v := url.Values{}
	v.Set("dandiset_id", dandisetID)
	v.Set("version_id", versionID)
	if path != nil {
		v.Set("path", *path)
	}
	v.Set("metadata", "true")
	if children {
		v.Set("children", strconv.FormatBool(true))
	}
	rawurl := c.apiURL + "/webdav/assets/atpath?" + v.Encode()

	raw, err := paginate[rawAtPath](ctx, c, rawurl)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return AtPathResult{Kind: AtPathNotFound}, nil
		}
		return AtPathResult{}, err
	}
	if len(raw) == 0 {
		return AtPathResult{Kind: AtPathNotFound}, nil
	}

	self, err := c.convertAtPathEntry(raw[0], dandisetID, versionID)
	if err != nil {
		return AtPathResult{}, err
	}

	var result AtPathResult
	switch {
	case self.IsDir:
		result.Kind = AtPathFolder
	case self.Blob != nil:
		result.Kind = AtPathBlob
		result.Blob = self.Blob
	case self.Zarr != nil:
		result.Kind = AtPathZarr
		result.Zarr = self.Zarr
	}

	if children && result.Kind == AtPathFolder {
		for _, r := range raw[1:] {
			entry, err := c.convertAtPathEntry(r, dandisetID, versionID)
			if err != nil {
				return AtPathResult{}, err
			}
			result.Children = append(result.Children, entry)
		}
	}
	return result, nil
}
