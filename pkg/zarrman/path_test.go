package zarrman

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/terrycain/dandidav/pkg/paths"
)

func TestParseReqPathRoot(t *testing.T) {
	got, ok := ParseReqPath(nil)
	if !ok || got.Kind != ReqDir || got.Dir != "" {
		t.Errorf("ParseReqPath(nil) = (%+v, %v), want root ReqDir", got, ok)
	}
}

func TestParseReqPathShardDir(t *testing.T) {
	got, ok := ParseReqPath([]string{"abc"})
	if !ok || got.Kind != ReqDir || got.Dir != "abc/" {
		t.Errorf("ParseReqPath([abc]) = (%+v, %v), want ReqDir abc/", got, ok)
	}
}

func TestParseReqPathManifest(t *testing.T) {
	got, ok := ParseReqPath([]string{"abc", "def", "zarrid123", "checksum456.zarr"})
	want := ReqPath{
		Kind: ReqManifest,
		Manifest: ManifestPath{
			Prefix:   paths.PureDirPath("abc/def/"),
			ZarrID:   "zarrid123",
			Checksum: "checksum456",
		},
	}
	if !ok {
		t.Fatalf("ParseReqPath() ok = false, want true")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseReqPath() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseReqPathInManifest(t *testing.T) {
	got, ok := ParseReqPath([]string{"abc", "def", "zarrid123", "checksum456.ngff", "0", "0"})
	if !ok || got.Kind != ReqInManifest || got.EntryPath != "0/0" {
		t.Errorf("ParseReqPath() = (%+v, %v), want ReqInManifest with entry 0/0", got, ok)
	}
	if got.Manifest.ZarrID != "zarrid123" || got.Manifest.Checksum != "checksum456" {
		t.Errorf("ParseReqPath() manifest = %+v", got.Manifest)
	}
}

func TestParseReqPathRejectsBadShardPrefix(t *testing.T) {
	if _, ok := ParseReqPath([]string{"ab", "def", "zarrid", "checksum.zarr"}); ok {
		t.Errorf("ParseReqPath() accepted a 2-character shard prefix")
	}
}

func TestParseReqPathRejectsMissingExtension(t *testing.T) {
	if _, ok := ParseReqPath([]string{"abc", "def", "zarrid", "checksum"}); ok {
		t.Errorf("ParseReqPath() accepted a checksum component with no zarr extension")
	}
}

func TestParseReqPathRejectsDottedChecksum(t *testing.T) {
	if _, ok := ParseReqPath([]string{"abc", "def", "zarrid", "check.sum.zarr"}); ok {
		t.Errorf("ParseReqPath() accepted a checksum containing a stray dot")
	}
}

func TestManifestPathUnderManifestRootAndWebPath(t *testing.T) {
	mp := ManifestPath{Prefix: paths.PureDirPath("abc/def/"), ZarrID: "zarrid123", Checksum: "checksum456"}
	if got := mp.UnderManifestRoot(); got != "abc/def/zarrid123/checksum456.json" {
		t.Errorf("UnderManifestRoot() = %q", got)
	}
	if got := mp.ToWebPath(); got != "zarrs/abc/def/zarrid123/checksum456.zarr/" {
		t.Errorf("ToWebPath() = %q", got)
	}
}
