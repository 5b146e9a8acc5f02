// Package virtpath parses a request URL path into a typed VirtPath
// descriptor, without resolving it against any backend.
package virtpath

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/terrycain/dandidav/pkg/paths"
)

var dandisetIDRe = regexp.MustCompile(`^\d{6}$`)
var publishedVersionIDRe = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// DandisetID is a validated six-digit dandiset identifier.
type DandisetID string

// ParseDandisetID validates s as a DandisetID.
func ParseDandisetID(s string) (DandisetID, bool) {
	if dandisetIDRe.MatchString(s) {
		return DandisetID(s), true
	}
	return "", false
}

// PublishedVersionID is a validated "N.N.N" published version identifier.
type PublishedVersionID string

// ParsePublishedVersionID validates s as a PublishedVersionID.
func ParsePublishedVersionID(s string) (PublishedVersionID, bool) {
	if publishedVersionIDRe.MatchString(s) {
		return PublishedVersionID(s), true
	}
	return "", false
}

// VersionSpecKind discriminates the VersionSpec union.
type VersionSpecKind int

const (
	Draft VersionSpecKind = iota
	Latest
	Published
)

// VersionSpec is Draft, Latest, or Published(id).
type VersionSpec struct {
	Kind VersionSpecKind
	ID   PublishedVersionID // only meaningful when Kind == Published
}

func (v VersionSpec) String() string {
	switch v.Kind {
	case Draft:
		return "draft"
	case Latest:
		return "latest"
	default:
		return string(v.ID)
	}
}

// Kind discriminates the VirtPath union.
type Kind int

const (
	Root Kind = iota
	DandisetIndex
	Dandiset
	DandisetReleases
	Version
	VersionMetadata
	AssetPath
	ZarrIndex
	ZarrManPath
)

func (k Kind) String() string {
	switch k {
	case Root:
		return "root"
	case DandisetIndex:
		return "dandiset_index"
	case Dandiset:
		return "dandiset"
	case DandisetReleases:
		return "dandiset_releases"
	case Version:
		return "version"
	case VersionMetadata:
		return "version_metadata"
	case AssetPath:
		return "asset_path"
	case ZarrIndex:
		return "zarr_index"
	case ZarrManPath:
		return "zarr_man_path"
	default:
		return "unknown"
	}
}

// VirtPath is a tagged value identifying what a request path refers to,
// before resolution against any backend.
type VirtPath struct {
	Kind       Kind
	DandisetID DandisetID
	Version    VersionSpec
	Path       paths.PurePath // AssetPath only
	Segments   []string       // ZarrManPath only
}

// FastNotExist is the fixed, case-insensitive set of base names that
// short-circuit to "not found" without any upstream call. Kept sorted
// (verified by a test) so IsFastNotExist can binary-search it.
var FastNotExist = []string{
	".bzr", ".dav", ".ds_store", ".git", ".hidden", ".nols", ".svn", "thumbs.db",
}

// IsFastNotExist reports whether name matches the fast-not-exist set,
// case-insensitively.
func IsFastNotExist(name string) bool {
	lower := strings.ToLower(name)
	i := sort.SearchStrings(FastNotExist, lower)
	return i < len(FastNotExist) && FastNotExist[i] == lower
}

// Parse parses a percent-decoded-or-not URL path into a VirtPath and
// reports whether the original request path was collection-hinted (had a
// trailing slash). ok is false if the path does not parse.
func Parse(rawPath string) (vp VirtPath, collectionHint bool, ok bool) {
	decoded, err := url.PathUnescape(rawPath)
	if err != nil {
		return VirtPath{}, false, false
	}
	parts := splitComponents(decoded)
	collectionHint = strings.HasSuffix(decoded, "/") || decoded == "" || decoded == "/"

	if len(parts) == 0 {
		return VirtPath{Kind: Root}, true, true
	}

	p1 := parts[0]
	switch {
	case strings.EqualFold(p1, "dandisets"):
		return parseDandisets(parts[1:], collectionHint)
	case strings.EqualFold(p1, "zarrs"):
		return parseZarrs(parts[1:], collectionHint)
	default:
		return VirtPath{}, false, false
	}
}

func parseDandisets(parts []string, collectionHint bool) (VirtPath, bool, bool) {
	if len(parts) == 0 {
		return VirtPath{Kind: DandisetIndex}, true, true
	}
	did, valid := ParseDandisetID(parts[0])
	if !valid {
		return VirtPath{}, false, false
	}
	if len(parts) == 1 {
		return VirtPath{Kind: Dandiset, DandisetID: did}, collectionHint, true
	}
	p3 := parts[1]
	var version VersionSpec
	rest := parts[2:]
	switch {
	case strings.EqualFold(p3, "releases"):
		if len(rest) == 0 {
			return VirtPath{Kind: DandisetReleases, DandisetID: did}, collectionHint, true
		}
		pv, valid := ParsePublishedVersionID(rest[0])
		if !valid {
			return VirtPath{}, false, false
		}
		version = VersionSpec{Kind: Published, ID: pv}
		rest = rest[1:]
	case strings.EqualFold(p3, "latest"):
		version = VersionSpec{Kind: Latest}
	case strings.EqualFold(p3, "draft"):
		version = VersionSpec{Kind: Draft}
	default:
		return VirtPath{}, false, false
	}

	if len(rest) == 0 {
		return VirtPath{Kind: Version, DandisetID: did, Version: version}, collectionHint, true
	}

	var sb strings.Builder
	for _, c := range rest {
		if c == "." {
			continue
		}
		if c == ".." || virtpathFastNotExistBlocks(c) {
			return VirtPath{}, false, false
		}
		if sb.Len() > 0 {
			sb.WriteByte('/')
		}
		sb.WriteString(c)
	}
	joined := sb.String()
	if joined == "" {
		return VirtPath{Kind: Version, DandisetID: did, Version: version}, collectionHint, true
	}
	if joined == "dandiset.yaml" {
		return VirtPath{Kind: VersionMetadata, DandisetID: did, Version: version}, collectionHint, true
	}
	pp, err := paths.ParsePurePath(joined)
	if err != nil {
		return VirtPath{}, false, false
	}
	return VirtPath{Kind: AssetPath, DandisetID: did, Version: version, Path: pp}, collectionHint, true
}

func parseZarrs(parts []string, collectionHint bool) (VirtPath, bool, bool) {
	if len(parts) == 0 {
		return VirtPath{Kind: ZarrIndex}, true, true
	}
	if virtpathFastNotExistBlocks(parts[len(parts)-1]) {
		return VirtPath{}, false, false
	}
	return VirtPath{Kind: ZarrManPath, Segments: parts}, collectionHint, true
}

// virtpathFastNotExistBlocks rejects any fast-not-exist component before
// it ever reaches an upstream call. A literal ".." is not checked here;
// parseDandisets rejects it separately.
func virtpathFastNotExistBlocks(c string) bool {
	return IsFastNotExist(c)
}

// splitComponents splits a path on '/', trimming leading and collapsing
// repeated slashes, without treating a trailing slash as an empty final
// component. Stray spaces around a component (a client artifact,
// not a legitimate path segment) is trimmed the same way.
func splitComponents(s string) []string {
	s = strings.TrimLeft(s, "/")
	if s == "" {
		return nil
	}
	return cleanComponents(strings.Split(s, "/"))
}

// cleanComponents trims spaces from each path component and drops
// any that end up empty, collapsing repeated or trailing slashes.
func cleanComponents(parts []string) []string {
	result := make([]string, 0, len(parts))
	for _, item := range parts {
		if cleaned := strings.Trim(item, " "); cleaned != "" {
			result = append(result, cleaned)
		}
	}
	return result
}
