package dav

import (
	"encoding/xml"
	"strings"

	"github.com/terrycain/dandidav/pkg/apperr"
	"github.com/terrycain/dandidav/pkg/resource"
)

// PropfindMode discriminates the three request bodies RFC 4918 defines
// for a PROPFIND, per dav/xml/propfind.rs.
type PropfindMode int

const (
	ModeAllProp PropfindMode = iota
	ModeProp
	ModePropName
)

// PropfindRequest is a parsed PROPFIND request body.
type PropfindRequest struct {
	Mode PropfindMode
	// Props holds the requested element names for ModeProp, already
	// resolved against the known Property set where possible.
	Props []requestedProp
	// Include holds the <include> sibling of <allprop>, if any.
	Include []requestedProp
}

type requestedProp struct {
	name    string
	known   Property
	isKnown bool
}

type xmlAnyElem struct {
	XMLName xml.Name
}

type xmlPropList struct {
	Items []xmlAnyElem `xml:",any"`
}

type xmlPropfindBody struct {
	XMLName  xml.Name     `xml:"propfind"`
	AllProp  *xmlPropList `xml:"allprop"`
	PropName *xmlPropList `xml:"propname"`
	Prop     *xmlPropList `xml:"prop"`
	Include  *xmlPropList `xml:"include"`
}

// ParsePropfindBody parses a PROPFIND request body. An empty body is
// equivalent to an allprop request, per RFC 4918 section 9.1.
func ParsePropfindBody(body []byte) (PropfindRequest, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return PropfindRequest{Mode: ModeAllProp}, nil
	}

	var parsed xmlPropfindBody
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return PropfindRequest{}, apperr.Wrap(apperr.BadRequest, "malformed PROPFIND body", err)
	}

	switch {
	case parsed.PropName != nil:
		return PropfindRequest{Mode: ModePropName}, nil
	case parsed.AllProp != nil:
		return PropfindRequest{Mode: ModeAllProp, Include: toRequestedProps(parsed.Include)}, nil
	case parsed.Prop != nil:
		return PropfindRequest{Mode: ModeProp, Props: toRequestedProps(parsed.Prop)}, nil
	default:
		return PropfindRequest{}, apperr.New(apperr.BadRequest, "PROPFIND body has no allprop, prop, or propname element")
	}
}

func toRequestedProps(list *xmlPropList) []requestedProp {
	if list == nil {
		return nil
	}
	out := make([]requestedProp, 0, len(list.Items))
	for _, item := range list.Items {
		p, ok := ParsePropertyName(item.XMLName.Local)
		out = append(out, requestedProp{name: item.XMLName.Local, known: p, isKnown: ok})
	}
	return out
}

// BuildDavResponse evaluates a parsed PROPFIND request against one
// resolved resource, splitting found and missing properties into
// separate propstat groups, equivalent to the original's PropFind::find.
func BuildDavResponse(res resource.Resource, href string, pf PropfindRequest) DavResponse {
	var found, missing []PropEntry

	addKnown := func(name string, p Property) {
		if v, ok := PropertyValue(res, p); ok {
			found = append(found, PropEntry{Name: name, Value: v})
		} else {
			missing = append(missing, PropEntry{Name: name, Value: PropValue{Kind: PVEmpty}})
		}
	}

	switch pf.Mode {
	case ModePropName:
		for _, p := range standardProperties {
			found = append(found, PropEntry{Name: p.String(), Value: PropValue{Kind: PVEmpty}})
		}
	case ModeAllProp:
		for _, p := range standardProperties {
			if v, ok := PropertyValue(res, p); ok {
				found = append(found, PropEntry{Name: p.String(), Value: v})
			}
		}
		for _, rp := range pf.Include {
			if rp.isKnown {
				addKnown(rp.name, rp.known)
			} else {
				missing = append(missing, PropEntry{Name: rp.name, Value: PropValue{Kind: PVEmpty}})
			}
		}
	case ModeProp:
		for _, rp := range pf.Props {
			if rp.isKnown {
				addKnown(rp.name, rp.known)
			} else {
				missing = append(missing, PropEntry{Name: rp.name, Value: PropValue{Kind: PVEmpty}})
			}
		}
	}

	var propstats []PropStat
	if len(found) > 0 || len(missing) == 0 {
		propstats = append(propstats, PropStat{Props: found, Status: "HTTP/1.1 200 OK"})
	}
	if len(missing) > 0 {
		propstats = append(propstats, PropStat{Props: missing, Status: "HTTP/1.1 404 Not Found"})
	}

	return DavResponse{Href: href, PropStats: propstats}
}
