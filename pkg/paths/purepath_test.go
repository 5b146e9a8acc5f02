package paths

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParsePurePath(t *testing.T) {
	tables := []struct {
		name    string
		in      string
		wantErr error
	}{
		{"empty", "", ErrEmptyPath},
		{"leading slash", "/a/b", ErrPathStartsWithSlash},
		{"trailing slash", "a/b/", ErrPathEndsWithSlash},
		{"nul byte", "a/\x00/b", ErrNulInPath},
		{"dot component", "a/./b", ErrPathNotNormalized},
		{"dotdot component", "a/../b", ErrPathNotNormalized},
		{"doubled slash", "a//b", ErrPathNotNormalized},
		{"valid single component", "a.nwb", nil},
		{"valid nested", "sub/dir/a.nwb", nil},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			p, err := ParsePurePath(table.in)
			if table.wantErr != nil {
				if err != table.wantErr {
					t.Fatalf("ParsePurePath(%q) err = %v, want %v", table.in, err, table.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePurePath(%q) unexpected error: %v", table.in, err)
			}
			if string(p) != table.in {
				t.Errorf("ParsePurePath(%q) = %q", table.in, p)
			}
		})
	}
}

func TestPurePathNameStr(t *testing.T) {
	p := PurePath("a/b/c.nwb")
	if got := p.NameStr(); got != "c.nwb" {
		t.Errorf("NameStr() = %q, want c.nwb", got)
	}
	if got := PurePath("c.nwb").NameStr(); got != "c.nwb" {
		t.Errorf("NameStr() for single component = %q, want c.nwb", got)
	}
}

func TestPurePathRelativeTo(t *testing.T) {
	dir := PureDirPath("sub/dir/")
	p := PurePath("sub/dir/a.nwb")

	rel, ok := p.RelativeTo(dir)
	if !ok || rel != "a.nwb" {
		t.Errorf("RelativeTo() = (%q, %v), want (a.nwb, true)", rel, ok)
	}

	if _, ok := PurePath("other/a.nwb").RelativeTo(dir); ok {
		t.Errorf("RelativeTo() matched a path outside dir")
	}
}

func TestPurePathComponents(t *testing.T) {
	got := PurePath("a/b/c.zarr").Components()
	var names []string
	for _, c := range got {
		names = append(names, string(c))
	}
	want := []string{"a", "b", "c.zarr"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("Components() mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitZarrCandidates(t *testing.T) {
	tables := []struct {
		name string
		in   string
		want []ZarrCandidate
	}{
		{
			"no zarr component",
			"sub/dir/a.nwb",
			nil,
		},
		{
			"one zarr component mid-path",
			"sub/data.zarr/0/0",
			[]ZarrCandidate{{ZarrPath: "sub/data.zarr", EntryPath: "0/0"}},
		},
		{
			"final component ending in .zarr is not a split point",
			"sub/data.zarr",
			nil,
		},
		{
			"ngff extension",
			"a/b.ngff/c/d",
			[]ZarrCandidate{{ZarrPath: "a/b.ngff", EntryPath: "c/d"}},
		},
		{
			"nested zarr-like directories",
			"outer.zarr/inner.zarr/leaf",
			[]ZarrCandidate{
				{ZarrPath: "outer.zarr", EntryPath: "inner.zarr/leaf"},
				{ZarrPath: "outer.zarr/inner.zarr", EntryPath: "leaf"},
			},
		},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			got := PurePath(table.in).SplitZarrCandidates()
			if diff := cmp.Diff(table.want, got); diff != "" {
				t.Errorf("SplitZarrCandidates(%q) mismatch (-want +got):\n%s", table.in, diff)
			}
		})
	}
}

// TestSplitZarrCandidatesCaseSensitive pins down that the .zarr/.ngff
// suffix match is case sensitive, mirroring the ground-truth
// implementation's capital_zarr_ext and capital_ngff_ext cases: a
// capitalized extension is not a split point at all.
func TestSplitZarrCandidatesCaseSensitive(t *testing.T) {
	tables := []struct {
		name string
		in   string
	}{
		{"capital zarr ext", "foo/bar.Zarr/baz"},
		{"capital ngff ext", "foo/bar.Ngff/baz"},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			got := PurePath(table.in).SplitZarrCandidates()
			if got != nil {
				t.Errorf("SplitZarrCandidates(%q) = %v, want nil", table.in, got)
			}
		})
	}
}
