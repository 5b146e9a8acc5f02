package dav

import (
	"time"

	"github.com/terrycain/dandidav/pkg/resource"
)

// Property identifies one of the WebDAV live properties this gateway
// supports, per "Supported live properties" in the external interfaces.
type Property int

const (
	CreationDate Property = iota
	DisplayName
	GetContentLanguage
	GetContentLength
	GetContentType
	GetETag
	GetLastModified
	ResourceType
)

// standardProperties is iterated for an allprop/propname request, in a
// fixed order so XML output is deterministic.
var standardProperties = []Property{
	CreationDate, DisplayName, GetContentLanguage, GetContentLength,
	GetContentType, GetETag, GetLastModified, ResourceType,
}

var propertyNames = map[Property]string{
	CreationDate:        "creationdate",
	DisplayName:         "displayname",
	GetContentLanguage:  "getcontentlanguage",
	GetContentLength:    "getcontentlength",
	GetContentType:      "getcontenttype",
	GetETag:             "getetag",
	GetLastModified:     "getlastmodified",
	ResourceType:        "resourcetype",
}

func (p Property) String() string {
	if n, ok := propertyNames[p]; ok {
		return n
	}
	return "unknown"
}

// ParsePropertyName matches a local XML element name (case-sensitively,
// per the RFC 4918 property names) against the supported live
// properties.
func ParsePropertyName(local string) (Property, bool) {
	for p, n := range propertyNames {
		if n == local {
			return p, true
		}
	}
	return 0, false
}

// PropEntry is one rendered or missing property in a propstat group,
// keyed by its wire-format element name rather than the Property enum
// directly, so an unrecognized <prop> child can still be echoed back
// inside a 404 propstat without widening Property itself.
type PropEntry struct {
	Name  string
	Value PropValue
}

// rfc1123GMT is getlastmodified's wire format: RFC 1123 with a literal
// GMT zone, always rendered in UTC.
const rfc1123GMT = "Mon, 02 Jan 2006 15:04:05 GMT"

// PropValueKind discriminates PropValue.
type PropValueKind int

const (
	PVEmpty PropValueKind = iota
	PVString
	PVInt
	PVCollection
)

// PropValue is the rendered value of one property on one resource.
type PropValue struct {
	Kind PropValueKind
	Str  string
	Int  int64
}

// PropertyValue returns the rendered value of prop on res, and whether
// res has that property at all (a collection has no getcontentlength,
// for instance).
func PropertyValue(res resource.Resource, prop Property) (PropValue, bool) {
	switch prop {
	case ResourceType:
		if res.IsCollection() {
			return PropValue{Kind: PVCollection}, true
		}
		return PropValue{Kind: PVEmpty}, true
	case DisplayName:
		if res.Name == "" {
			return PropValue{}, false
		}
		return PropValue{Kind: PVString, Str: res.Name}, true
	case CreationDate:
		if res.Created == nil {
			return PropValue{}, false
		}
		return PropValue{Kind: PVString, Str: res.Created.UTC().Format(time.RFC3339)}, true
	case GetLastModified:
		if res.Modified == nil {
			return PropValue{}, false
		}
		return PropValue{Kind: PVString, Str: res.Modified.UTC().Format(rfc1123GMT)}, true
	case GetContentLength:
		if res.Size == nil {
			return PropValue{}, false
		}
		return PropValue{Kind: PVInt, Int: *res.Size}, true
	case GetContentType:
		if res.IsCollection() || res.ContentType == "" {
			return PropValue{}, false
		}
		return PropValue{Kind: PVString, Str: res.ContentType}, true
	case GetETag:
		if res.ETag == "" {
			return PropValue{}, false
		}
		return PropValue{Kind: PVString, Str: res.ETag}, true
	case GetContentLanguage:
		if res.Language == "" {
			return PropValue{}, false
		}
		return PropValue{Kind: PVString, Str: res.Language}, true
	default:
		return PropValue{}, false
	}
}

