package virtpath

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/terrycain/dandidav/pkg/paths"
)

func TestFastNotExistIsSorted(t *testing.T) {
	if !sort.StringsAreSorted(FastNotExist) {
		t.Fatalf("FastNotExist must stay sorted for IsFastNotExist's binary search: %v", FastNotExist)
	}
}

func TestIsFastNotExist(t *testing.T) {
	if !IsFastNotExist(".git") {
		t.Errorf("IsFastNotExist(.git) = false, want true")
	}
	if !IsFastNotExist(".GIT") {
		t.Errorf("IsFastNotExist(.GIT) = false, want true (case-insensitive)")
	}
	if IsFastNotExist("data.zarr") {
		t.Errorf("IsFastNotExist(data.zarr) = true, want false")
	}
}

func TestParse(t *testing.T) {
	tables := []struct {
		name           string
		path           string
		want           VirtPath
		wantCollection bool
		wantOK         bool
	}{
		{"root", "/", VirtPath{Kind: Root}, true, true},
		{"empty", "", VirtPath{Kind: Root}, true, true},
		{"dandiset index", "/dandisets/", VirtPath{Kind: DandisetIndex}, true, true},
		{"dandiset", "/dandisets/000001/", VirtPath{Kind: Dandiset, DandisetID: "000001"}, true, true},
		{"invalid dandiset id", "/dandisets/abc/", VirtPath{}, false, false},
		{"dandiset releases", "/dandisets/000001/releases/", VirtPath{Kind: DandisetReleases, DandisetID: "000001"}, true, true},
		{
			"published release",
			"/dandisets/000001/releases/0.1.0/",
			VirtPath{Kind: Version, DandisetID: "000001", Version: VersionSpec{Kind: Published, ID: "0.1.0"}},
			true, true,
		},
		{
			"draft version",
			"/dandisets/000001/draft/",
			VirtPath{Kind: Version, DandisetID: "000001", Version: VersionSpec{Kind: Draft}},
			true, true,
		},
		{
			"latest version",
			"/dandisets/000001/latest/",
			VirtPath{Kind: Version, DandisetID: "000001", Version: VersionSpec{Kind: Latest}},
			true, true,
		},
		{
			"dandiset.yaml",
			"/dandisets/000001/draft/dandiset.yaml",
			VirtPath{Kind: VersionMetadata, DandisetID: "000001", Version: VersionSpec{Kind: Draft}},
			false, true,
		},
		{
			"asset path",
			"/dandisets/000001/draft/sub-01/a.nwb",
			VirtPath{Kind: AssetPath, DandisetID: "000001", Version: VersionSpec{Kind: Draft}, Path: paths.PurePath("sub-01/a.nwb")},
			false, true,
		},
		{
			"dotdot rejected",
			"/dandisets/000001/draft/../etc",
			VirtPath{}, false, false,
		},
		{
			"fast-not-exist component rejected",
			"/dandisets/000001/draft/.git",
			VirtPath{}, false, false,
		},
		{"zarr index", "/zarrs/", VirtPath{Kind: ZarrIndex}, true, true},
		{
			"zarr manifest path",
			"/zarrs/abc/def/zarrid/checksum.zarr/",
			VirtPath{Kind: ZarrManPath, Segments: []string{"abc", "def", "zarrid", "checksum.zarr"}},
			true, true,
		},
		{"unrelated top level", "/other/", VirtPath{}, false, false},
		{
			"zarr fast-not-exist component rejected",
			"/zarrs/.git",
			VirtPath{}, false, false,
		},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			got, collectionHint, ok := Parse(table.path)
			if ok != table.wantOK {
				t.Fatalf("Parse(%q) ok = %v, want %v", table.path, ok, table.wantOK)
			}
			if !ok {
				return
			}
			if diff := cmp.Diff(table.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", table.path, diff)
			}
			if collectionHint != table.wantCollection {
				t.Errorf("Parse(%q) collectionHint = %v, want %v", table.path, collectionHint, table.wantCollection)
			}
		})
	}
}

func TestCleanComponents(t *testing.T) {
	got := cleanComponents([]string{" a ", "", "b", "   ", "c "})
	want := []string{"a", "b", "c"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("cleanComponents() mismatch (-want +got):\n%s", diff)
	}
}

func TestCleanComponentsAllEmpty(t *testing.T) {
	got := cleanComponents([]string{"", "  "})
	if len(got) != 0 {
		t.Errorf("cleanComponents() = %v, want empty", got)
	}
}

func TestParseDandisetIDCaseInsensitivePrefix(t *testing.T) {
	got, _, ok := Parse("/DANDISETS/000001/")
	if !ok || got.Kind != Dandiset {
		t.Errorf("Parse() with uppercase prefix = (%+v, %v), want Dandiset", got, ok)
	}
}
