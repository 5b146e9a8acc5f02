package dav

import "github.com/terrycain/dandidav/pkg/apperr"

// FiniteDepthBody is the response body for a PROPFIND whose Depth header
// is "infinity" or absent, per RFC 4918 and dav/util.rs's
// INFINITE_DEPTH_RESPONSE.
const FiniteDepthBody = "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n<error xmlns=\"DAV:\">\n    <propfind-finite-depth />\n</error>\n"

// ParseDepth interprets a request's Depth header, returning whether it
// asked for children (Depth: 1) or just itself (Depth: 0). A missing
// header or "infinity" is rejected with apperr.FiniteDepthRequired;
// anything else is apperr.BadRequest.
func ParseDepth(header string) (wantChildren bool, err error) {
	switch header {
	case "0":
		return false, nil
	case "1":
		return true, nil
	case "", "infinity":
		return false, apperr.New(apperr.FiniteDepthRequired, "PROPFIND requires a finite Depth")
	default:
		return false, apperr.New(apperr.BadRequest, "invalid Depth header: "+header)
	}
}
