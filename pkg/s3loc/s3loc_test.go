package s3loc

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tables := []struct {
		name    string
		url     string
		want    Location
		wantErr bool
	}{
		{
			"virtual-hosted with region",
			"https://dandiarchive.s3.us-east-2.amazonaws.com/zarr/abc/0/0",
			Location{Bucket: "dandiarchive", Region: "us-east-2", Key: "zarr/abc/0/0"},
			false,
		},
		{
			"virtual-hosted without region",
			"https://dandiarchive.s3.amazonaws.com/blobs/1/2/3",
			Location{Bucket: "dandiarchive", Key: "blobs/1/2/3"},
			false,
		},
		{
			"path-style with region",
			"https://s3.us-west-2.amazonaws.com/dandiarchive/blobs/1/2/3",
			Location{Bucket: "dandiarchive", Region: "us-west-2", Key: "blobs/1/2/3"},
			false,
		},
		{
			"path-style without region",
			"https://s3.amazonaws.com/dandiarchive/blobs/1/2/3",
			Location{Bucket: "dandiarchive", Key: "blobs/1/2/3"},
			false,
		},
		{
			"bare s3 scheme",
			"s3://dandiarchive/blobs/1/2/3",
			Location{Bucket: "dandiarchive", Key: "blobs/1/2/3"},
			false,
		},
		{
			"path-style with no key",
			"https://s3.amazonaws.com/dandiarchive",
			Location{Bucket: "dandiarchive", Key: ""},
			false,
		},
		{"not an s3 url", "https://api.dandiarchive.org/api/dandisets/000001/", Location{}, true},
		{"unrelated scheme", "ftp://example.org/file", Location{}, true},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			got, err := Parse(table.url)
			if table.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) expected error, got nil", table.url)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) unexpected error: %v", table.url, err)
			}
			if diff := cmp.Diff(table.want, got); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", table.url, diff)
			}
		})
	}
}
