package dav

import "strings"

// hrefUnreserved is the set of ASCII bytes left unescaped in an href,
// grounded on dav/util.rs's PERCENT_ESCAPED set, itself modeled on
// Python's urllib.parse.quote(): alphanumerics plus "-._~/".
func isHrefUnreserved(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		return true
	case b == '-' || b == '.' || b == '_' || b == '~' || b == '/':
		return true
	default:
		return false
	}
}

// EncodeHref percent-encodes path for use as an href attribute in an
// HTML <a> tag or a <DAV:href> element.
func EncodeHref(path string) string {
	var needsEscape bool
	for i := 0; i < len(path); i++ {
		if !isHrefUnreserved(path[i]) {
			needsEscape = true
			break
		}
	}
	if !needsEscape {
		return path
	}

	var sb strings.Builder
	sb.Grow(len(path))
	const hex = "0123456789ABCDEF"
	for i := 0; i < len(path); i++ {
		b := path[i]
		if isHrefUnreserved(b) {
			sb.WriteByte(b)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(hex[b>>4])
		sb.WriteByte(hex[b&0xf])
	}
	return sb.String()
}
