package dav

import (
	"strings"
	"testing"

	"github.com/terrycain/dandidav/pkg/resource"
)

func TestRenderMultistatus(t *testing.T) {
	responses := []DavResponse{
		{
			Href: "/dandisets/000001/",
			PropStats: []PropStat{
				{
					Props: []PropEntry{
						{Name: "resourcetype", Value: PropValue{Kind: PVCollection}},
						{Name: "displayname", Value: PropValue{Kind: PVString, Str: "000001"}},
					},
					Status: "HTTP/1.1 200 OK",
				},
			},
		},
	}

	got := RenderMultistatus(responses)

	for _, want := range []string{
		`<?xml version="1.0" encoding="utf-8"?>`,
		`<multistatus xmlns="DAV:">`,
		`<href>/dandisets/000001/</href>`,
		`<resourcetype>`,
		`<collection />`,
		`<displayname>000001</displayname>`,
		`<status>HTTP/1.1 200 OK</status>`,
		`</multistatus>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderMultistatus() missing %q in:\n%s", want, got)
		}
	}
}

func TestRenderMultistatusEscapesText(t *testing.T) {
	responses := []DavResponse{
		{
			Href: "/dandisets/<evil>/",
			PropStats: []PropStat{{Status: "HTTP/1.1 404 Not Found"}},
		},
	}
	got := RenderMultistatus(responses)
	if strings.Contains(got, "<evil>") {
		t.Errorf("RenderMultistatus() did not escape href text:\n%s", got)
	}
	if !strings.Contains(got, "&lt;evil&gt;") {
		t.Errorf("RenderMultistatus() expected escaped href, got:\n%s", got)
	}
}

func TestParsePropfindBody(t *testing.T) {
	tables := []struct {
		name     string
		body     string
		wantMode PropfindMode
		wantErr  bool
	}{
		{"empty body is allprop", "", ModeAllProp, false},
		{"explicit allprop", `<?xml version="1.0"?><propfind xmlns="DAV:"><allprop/></propfind>`, ModeAllProp, false},
		{"propname", `<propfind xmlns="DAV:"><propname/></propfind>`, ModePropName, false},
		{"prop with two properties", `<propfind xmlns="DAV:"><prop><displayname/><getcontentlength/></prop></propfind>`, ModeProp, false},
		{"malformed xml", `<propfind><`, ModeAllProp, true},
		{"empty propfind element", `<propfind xmlns="DAV:"></propfind>`, ModeAllProp, true},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			got, err := ParsePropfindBody([]byte(table.body))
			if table.wantErr {
				if err == nil {
					t.Fatalf("ParsePropfindBody() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePropfindBody() unexpected error: %v", err)
			}
			if got.Mode != table.wantMode {
				t.Errorf("ParsePropfindBody() mode = %v, want %v", got.Mode, table.wantMode)
			}
		})
	}
}

func TestParsePropfindBodyIncludeSiblingOfAllprop(t *testing.T) {
	body := `<propfind xmlns="DAV:"><allprop/><include><getetag/></include></propfind>`
	pf, err := ParsePropfindBody([]byte(body))
	if err != nil {
		t.Fatalf("ParsePropfindBody() unexpected error: %v", err)
	}
	if pf.Mode != ModeAllProp {
		t.Fatalf("mode = %v, want ModeAllProp", pf.Mode)
	}
	if len(pf.Include) != 1 || pf.Include[0].name != "getetag" {
		t.Fatalf("Include = %+v, want one entry named getetag", pf.Include)
	}
}

func TestBuildDavResponseUnknownPropertyIs404(t *testing.T) {
	res := resource.NewCollection("000001", "/dandisets/000001/")
	pf := PropfindRequest{
		Mode: ModeProp,
		Props: []requestedProp{
			{name: "resourcetype", known: ResourceType, isKnown: true},
			{name: "quota-used-bytes", isKnown: false},
		},
	}

	dr := BuildDavResponse(res, res.Href, pf)
	if len(dr.PropStats) != 2 {
		t.Fatalf("got %d propstats, want 2 (found + missing)", len(dr.PropStats))
	}

	var foundStatus, missingStatus string
	for _, ps := range dr.PropStats {
		for _, p := range ps.Props {
			if p.Name == "resourcetype" {
				foundStatus = ps.Status
			}
			if p.Name == "quota-used-bytes" {
				missingStatus = ps.Status
			}
		}
	}
	if foundStatus != "HTTP/1.1 200 OK" {
		t.Errorf("resourcetype status = %q, want 200", foundStatus)
	}
	if missingStatus != "HTTP/1.1 404 Not Found" {
		t.Errorf("quota-used-bytes status = %q, want 404", missingStatus)
	}
}

func TestBuildDavResponsePropName(t *testing.T) {
	res := resource.NewItem("bar.nwb", "/dandisets/000001/draft/bar.nwb", "https://example.org/x")
	pf := PropfindRequest{Mode: ModePropName}
	dr := BuildDavResponse(res, res.Href, pf)
	if len(dr.PropStats) != 1 {
		t.Fatalf("got %d propstats, want 1", len(dr.PropStats))
	}
	if len(dr.PropStats[0].Props) != len(standardProperties) {
		t.Errorf("got %d props, want %d", len(dr.PropStats[0].Props), len(standardProperties))
	}
	for _, p := range dr.PropStats[0].Props {
		if p.Value.Kind != PVEmpty {
			t.Errorf("propname response property %q has a value, want empty", p.Name)
		}
	}
}
