package dav

import (
	"bytes"
	"encoding/xml"
	"strconv"
	"strings"
)

// DavResponse is one <response> element inside a multistatus body,
// grounded on dav/xml/multistatus.rs's Response type.
type DavResponse struct {
	Href      string
	PropStats []PropStat
	// Location is set on a 3xx-style "this href actually lives over
	// there" response; rarely used here since resolved resources always
	// carry their own canonical href.
	Location string
}

// PropStat is one <propstat> group: a set of properties that all share
// the same status line.
type PropStat struct {
	Props  []PropEntry
	Status string
}

// RenderMultistatus writes the <multistatus> document wrapping responses,
// matching the declaration and root element dav/xml/multistatus.rs emits.
func RenderMultistatus(responses []DavResponse) string {
	var sb strings.Builder
	sb.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	sb.WriteString("<multistatus xmlns=\"DAV:\">\n")
	for _, r := range responses {
		r.render(&sb, 1)
	}
	sb.WriteString("</multistatus>\n")
	return sb.String()
}

func (r DavResponse) render(sb *strings.Builder, depth int) {
	ind := strings.Repeat("    ", depth)
	sb.WriteString(ind + "<response>\n")
	sb.WriteString(ind + "    <href>" + escapeXMLText(r.Href) + "</href>\n")
	for _, ps := range r.PropStats {
		ps.render(sb, depth+1)
	}
	if r.Location != "" {
		sb.WriteString(ind + "    <location><href>" + escapeXMLText(r.Location) + "</href></location>\n")
	}
	sb.WriteString(ind + "</response>\n")
}

func (ps PropStat) render(sb *strings.Builder, depth int) {
	ind := strings.Repeat("    ", depth)
	sb.WriteString(ind + "<propstat>\n")
	if len(ps.Props) == 0 {
		sb.WriteString(ind + "    <prop />\n")
	} else {
		sb.WriteString(ind + "    <prop>\n")
		for _, pe := range ps.Props {
			pe.render(sb, depth+2)
		}
		sb.WriteString(ind + "    </prop>\n")
	}
	sb.WriteString(ind + "    <status>" + ps.Status + "</status>\n")
	sb.WriteString(ind + "</propstat>\n")
}

func (pe PropEntry) render(sb *strings.Builder, depth int) {
	ind := strings.Repeat("    ", depth)
	name := pe.Name
	switch pe.Value.Kind {
	case PVCollection:
		sb.WriteString(ind + "<" + name + ">\n")
		sb.WriteString(ind + "    <collection />\n")
		sb.WriteString(ind + "</" + name + ">\n")
	case PVEmpty:
		sb.WriteString(ind + "<" + name + " />\n")
	case PVInt:
		sb.WriteString(ind + "<" + name + ">" + strconv.FormatInt(pe.Value.Int, 10) + "</" + name + ">\n")
	default:
		sb.WriteString(ind + "<" + name + ">" + escapeXMLText(pe.Value.Str) + "</" + name + ">\n")
	}
}

func escapeXMLText(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
