package dav

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/terrycain/dandidav/pkg/resource"
)

// Breadcrumb is one entry in a listing page's breadcrumb trail.
type Breadcrumb struct {
	Text string
	Href string
}

// Row is one rendered line of a collection listing.
type Row struct {
	Name        string
	Href        string
	IsDir       bool
	Kind        string
	Size        string
	Created     string
	Modified    string
	MetadataURL string
}

// ListingView is the full data contract a collection page renders from,
// per the external interfaces' HTML view data contract.
type ListingView struct {
	Title          string
	Breadcrumbs    []Breadcrumb
	Rows           []Row
	PackageURL     string
	PackageVersion string
	PackageCommit  string
}

// BuildListingView converts a resolved collection and its children into
// the page's view data. title is the configured CLI --title; breadcrumbs
// are derived by splitting self.Href on "/".
func BuildListingView(title string, self resource.Resource, children []resource.Resource, packageURL, packageVersion, packageCommit string) ListingView {
	view := ListingView{
		Title:          title,
		Breadcrumbs:    buildBreadcrumbs(self.Href),
		Rows:           make([]Row, 0, len(children)),
		PackageURL:     packageURL,
		PackageVersion: packageVersion,
		PackageCommit:  packageCommit,
	}
	for _, c := range children {
		view.Rows = append(view.Rows, rowFor(c))
	}
	return view
}

func buildBreadcrumbs(href string) []Breadcrumb {
	trimmed := strings.Trim(href, "/")
	crumbs := []Breadcrumb{{Text: "/", Href: "/"}}
	if trimmed == "" {
		return crumbs
	}
	parts := strings.Split(trimmed, "/")
	var acc strings.Builder
	for _, p := range parts {
		acc.WriteString(p)
		acc.WriteByte('/')
		crumbs = append(crumbs, Breadcrumb{Text: p, Href: "/" + EncodeHref(acc.String())})
	}
	return crumbs
}

func rowFor(res resource.Resource) Row {
	r := Row{
		Name:        res.Name,
		Href:        EncodeHref(res.Href),
		IsDir:       res.IsCollection(),
		MetadataURL: res.MetadataHref,
	}
	if res.IsCollection() {
		r.Kind = "folder"
	} else {
		r.Kind = "item"
	}
	if res.Size != nil {
		r.Size = formatIECSize(*res.Size)
	}
	if res.Created != nil {
		r.Created = formatHTMLTime(*res.Created)
	}
	if res.Modified != nil {
		r.Modified = formatHTMLTime(*res.Modified)
	}
	return r
}

// formatIECSize renders a byte count in IEC binary units, e.g. "1.23 MiB".
func formatIECSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	suffixes := []string{"KiB", "MiB", "GiB", "TiB", "PiB", "EiB"}
	return fmt.Sprintf("%.2f %s", float64(size)/float64(div), suffixes[exp])
}

// formatHTMLTime renders a UTC timestamp with a Z suffix and a
// non-breaking space between the date and time portions, for embedding
// in a <time> element's text content.
func formatHTMLTime(t time.Time) string {
	s := t.UTC().Format("2006-01-02T15:04:05Z")
	return strings.Replace(s, "T", " ", 1)
}

const listingTemplateSrc = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="/.static/styles.css">
</head>
<body>
<header>
<h1>{{.Title}}</h1>
<nav class="breadcrumbs">
{{range .Breadcrumbs}}<a href="{{.Href}}">{{.Text}}</a>{{end}}
</nav>
</header>
<table>
<thead><tr><th>Name</th><th>Size</th><th>Created</th><th>Modified</th></tr></thead>
<tbody>
{{range .Rows}}<tr class="{{.Kind}}">
<td><a href="{{.Href}}">{{.Name}}{{if .IsDir}}/{{end}}</a>{{if .MetadataURL}} <a href="{{.MetadataURL}}" class="metadata">(metadata)</a>{{end}}</td>
<td>{{.Size}}</td>
<td>{{if .Created}}<time datetime="{{.Created}}">{{.Created}}</time>{{end}}</td>
<td>{{if .Modified}}<time datetime="{{.Modified}}">{{.Modified}}</time>{{end}}</td>
</tr>
{{end}}</tbody>
</table>
<footer>
<p><a href="{{.PackageURL}}">{{.PackageURL}}</a> {{.PackageVersion}}{{if .PackageCommit}} ({{.PackageCommit}}){{end}}</p>
</footer>
</body>
</html>
`

var listingTemplate = template.Must(template.New("listing").Parse(listingTemplateSrc))

// RenderListing renders the full HTML page for a collection view.
func RenderListing(view ListingView) (string, error) {
	var buf bytes.Buffer
	if err := listingTemplate.Execute(&buf, view); err != nil {
		return "", err
	}
	return buf.String(), nil
}
