package dav

import (
	"embed"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/terrycain/dandidav/pkg/apperr"
	"github.com/terrycain/dandidav/pkg/virtpath"

	"github.com/terrycain/dandidav/pkg/resolver"
)

//go:embed static/styles.css
var staticAssets embed.FS

// version is overridden at build time via -ldflags, per the teacher's
// build convention; it otherwise reports as "dev".
var version = "dev"

// Handlers holds everything a request needs to resolve a path and render
// a response, built once at startup.
type Handlers struct {
	Resolver       *resolver.Resolver
	Title          string
	PackageURL     string
	PackageVersion string
	PackageCommit  string
}

// NewHandlers builds a Handlers value. packageVersion defaults to the
// build-time version when empty.
func NewHandlers(r *resolver.Resolver, title, packageURL, packageVersion, packageCommit string) *Handlers {
	if packageVersion == "" {
		packageVersion = version
	}
	return &Handlers{
		Resolver:       r,
		Title:          title,
		PackageURL:     packageURL,
		PackageVersion: packageVersion,
		PackageCommit:  packageCommit,
	}
}

// Register wires every dandidav route onto router, including the static
// stylesheet, which is served without the universal DAV headers: it
// carries no DAV semantics. gin cannot hold a static route beside a
// root-level catch-all, so the stylesheet is picked out inside the
// catch-all handler before dispatch runs.
func (h *Handlers) Register(router gin.IRoutes) {
	handle := func(c *gin.Context) {
		if c.Request.Method == http.MethodGet && c.Param("path") == "/.static/styles.css" {
			h.serveStyles(c)
			return
		}
		h.dispatch(c)
	}
	router.Any("/*path", handle)
	// gin's Any() only covers the standard HTTP method set; PROPFIND is
	// not in it, so it needs its own registration.
	router.Handle("PROPFIND", "/*path", handle)
}

func (h *Handlers) serveStyles(c *gin.Context) {
	f, err := staticAssets.Open("static/styles.css")
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}
	defer f.Close()
	c.Header("Content-Type", "text/css; charset=utf-8")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, f)
}

// dispatch handles every non-static path, implementing the method
// dispatch table: OPTIONS, GET, PROPFIND, and a 405 for anything else.
func (h *Handlers) dispatch(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("DAV", "1, 3")
	c.Header("Server", "dandidav/"+h.PackageVersion)

	switch c.Request.Method {
	case http.MethodOptions:
		c.Header("Allow", "OPTIONS, GET, HEAD, PROPFIND")
		c.Status(http.StatusOK)
	case http.MethodGet, http.MethodHead:
		h.handleGet(c)
	case "PROPFIND":
		h.handlePropfind(c)
	default:
		c.Header("Allow", "OPTIONS, GET, HEAD, PROPFIND")
		writeError(c, apperr.New(apperr.MethodNotAllowed, "method not supported: "+c.Request.Method))
	}
}

// parsePath parses the request path and, on success, records the
// resolved VirtPath kind on the gin context so the access log and
// request metrics middleware can report WebDAV-shaped labels instead of
// the raw URL path.
func (h *Handlers) parsePath(c *gin.Context) (virtpath.VirtPath, bool, bool) {
	vp, collectionHint, ok := virtpath.Parse(c.Param("path"))
	if ok {
		c.Set("virtpath_kind", vp.Kind.String())
	}
	return vp, collectionHint, ok
}

func (h *Handlers) handleGet(c *gin.Context) {
	vp, _, ok := h.parsePath(c)
	if !ok {
		writeError(c, apperr.New(apperr.NotFound, "no such resource"))
		return
	}

	wc, err := h.Resolver.Resolve(c.Request.Context(), vp, true, true)
	if err != nil {
		writeError(c, err)
		return
	}

	res := wc.Self
	switch {
	case res.HasInlineBody():
		c.Data(http.StatusOK, res.InlineContentType, res.InlineBody)
	case res.IsCollection():
		view := BuildListingView(h.Title, res, wc.Children, h.PackageURL, h.PackageVersion, h.PackageCommit)
		body, err := RenderListing(view)
		if err != nil {
			writeError(c, apperr.Wrap(apperr.Internal, "failed to render listing", err))
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(body))
	default:
		if res.RedirectURL == "" {
			writeError(c, apperr.New(apperr.Internal, "item resource has no redirect target"))
			return
		}
		c.Redirect(http.StatusTemporaryRedirect, res.RedirectURL)
	}
}

func (h *Handlers) handlePropfind(c *gin.Context) {
	wantChildren, err := ParseDepth(c.GetHeader("Depth"))
	if err != nil {
		writeError(c, err)
		return
	}

	vp, _, ok := h.parsePath(c)
	if !ok {
		writeError(c, apperr.New(apperr.NotFound, "no such resource"))
		return
	}

	wc, err := h.Resolver.Resolve(c.Request.Context(), vp, wantChildren, false)
	if err != nil {
		writeError(c, err)
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		writeError(c, apperr.Wrap(apperr.BadRequest, "failed to read request body", err))
		return
	}
	pf, err := ParsePropfindBody(body)
	if err != nil {
		writeError(c, err)
		return
	}

	responses := make([]DavResponse, 0, len(wc.Children)+1)
	responses = append(responses, BuildDavResponse(wc.Self, wc.Self.Href, pf))
	if wantChildren {
		for _, child := range wc.Children {
			responses = append(responses, BuildDavResponse(child, child.Href, pf))
		}
	}

	xmlBody := RenderMultistatus(responses)
	c.Data(http.StatusMultiStatus, "application/xml; charset=utf-8", []byte(xmlBody))
}

// writeError maps an apperr.Error (or any other error, treated as
// Internal) to its HTTP status, logging at info for client-caused kinds
// and error otherwise, per the propagation policy.
func writeError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := kind.Status()

	logEvent := log.Error()
	if kind.ClientCaused() {
		logEvent = log.Info()
	}
	logEvent.Err(err).Str("kind", kind.String()).Str("path", c.Request.URL.Path).Msg("request failed")

	if kind == apperr.FiniteDepthRequired {
		c.Data(status, "application/xml; charset=utf-8", []byte(FiniteDepthBody))
		return
	}

	var appErr *apperr.Error
	msg := err.Error()
	if !errors.As(err, &appErr) {
		msg = "internal error"
	}
	c.String(status, msg)
}
