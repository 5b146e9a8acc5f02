package dav

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestFormatIECSize(t *testing.T) {
	tables := []struct {
		size int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.00 KiB"},
		{1536, "1.50 KiB"},
		{1 << 20, "1.00 MiB"},
		{1288490189, "1.20 GiB"},
	}
	for _, table := range tables {
		got := formatIECSize(table.size)
		if got != table.want {
			t.Errorf("formatIECSize(%d) = %q, want %q", table.size, got, table.want)
		}
	}
}

func TestFormatHTMLTime(t *testing.T) {
	ts := time.Date(2023, 5, 1, 12, 30, 0, 0, time.UTC)
	got := formatHTMLTime(ts)
	want := "2023-05-01 12:30:00Z"
	if got != want {
		t.Errorf("formatHTMLTime() = %q, want %q", got, want)
	}
}

func TestBuildBreadcrumbs(t *testing.T) {
	got := buildBreadcrumbs("/dandisets/000001/draft/")
	want := []Breadcrumb{
		{Text: "/", Href: "/"},
		{Text: "dandisets", Href: "/dandisets/"},
		{Text: "000001", Href: "/dandisets/000001/"},
		{Text: "draft", Href: "/dandisets/000001/draft/"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("buildBreadcrumbs() mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildBreadcrumbsRoot(t *testing.T) {
	got := buildBreadcrumbs("/")
	want := []Breadcrumb{{Text: "/", Href: "/"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("buildBreadcrumbs() mismatch (-want +got):\n%s", diff)
	}
}
