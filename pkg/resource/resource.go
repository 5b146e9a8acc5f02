// Package resource holds the uniform in-memory resource model the
// responder renders from, regardless of whether the resolver built it
// from the archive API, the Zarr-manifest client, or S3. Grounded on
// original_source/src/dav.rs's DavResource/DavCollection/DavItem split,
// collapsed per the design notes into one Resource type with an optional
// children list rather than parallel Collection/Item code paths.
package resource

import (
	"sort"
	"time"
)

// Kind discriminates a Resource as WebDAV collection or non-collection.
type Kind int

const (
	Collection Kind = iota
	Item
)

// Resource is the uniform value the responder renders, whether listing a
// collection's row, describing an item for a PROPFIND propstat, or
// building an HTML breadcrumb.
type Resource struct {
	Kind Kind
	Name string // "" for the root collection
	Href string // absolute path, always present

	MetadataHref string // "" if this resource has no separate metadata endpoint

	Size        *int64
	Created     *time.Time
	Modified    *time.Time
	ContentType string
	ETag        string
	Language    string

	// RedirectURL is the target of a 307 on direct GET. Always set for
	// items; unused for collections.
	RedirectURL string

	// InlineBody and InlineContentType carry the synthetic dandiset.yaml
	// document's bytes directly, instead of a redirect.
	InlineBody        []byte
	InlineContentType string

	// DavResourceType is the literal XML to place inside <resourcetype>:
	// "<collection/>" for a collection, "" otherwise.
	DavResourceType string
}

// IsCollection reports whether r is a WebDAV collection.
func (r Resource) IsCollection() bool {
	return r.Kind == Collection
}

// HasInlineBody reports whether GET on r should serve InlineBody directly
// rather than redirecting.
func (r Resource) HasInlineBody() bool {
	return r.InlineBody != nil
}

// WithChildren bundles a Resource with its immediate children, present
// only when the resource is a collection and children were requested.
// Per the design notes this single type replaces separate
// Collection{children} / Item variants: a shallow request simply leaves
// Children nil.
type WithChildren struct {
	Self     Resource
	Children []Resource
}

// SortChildren orders a child list the way every collection in this
// gateway is rendered: folders before items, each group lexicographic by
// name, case-sensitive. The input is sorted in place and also returned.
func SortChildren(children []Resource) []Resource {
	sort.SliceStable(children, func(i, j int) bool {
		a, b := children[i], children[j]
		if a.IsCollection() != b.IsCollection() {
			return a.IsCollection()
		}
		return a.Name < b.Name
	})
	return children
}

// NewCollection builds a bare collection Resource.
func NewCollection(name, href string) Resource {
	return Resource{
		Kind:            Collection,
		Name:            name,
		Href:            href,
		DavResourceType: "<collection/>",
	}
}

// NewItem builds a bare non-collection Resource.
func NewItem(name, href, redirectURL string) Resource {
	return Resource{
		Kind:        Item,
		Name:        name,
		Href:        href,
		RedirectURL: redirectURL,
	}
}
