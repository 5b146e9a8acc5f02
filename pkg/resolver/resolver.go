// Package resolver turns a parsed VirtPath into the uniform resource
// model the responder renders, talking to the archive client, the
// Zarr-manifest client, and the S3 listing pool as needed. Grounded on
// original_source/src/dav.rs's DandiDav::resolve/resolve_with_children,
// generalized per the design notes into a single function parameterized
// by want_children instead of two parallel code paths.
package resolver

import (
	"context"
	"time"

	"github.com/terrycain/dandidav/pkg/apperr"
	"github.com/terrycain/dandidav/pkg/archive"
	"github.com/terrycain/dandidav/pkg/resource"
	"github.com/terrycain/dandidav/pkg/s3client"
	"github.com/terrycain/dandidav/pkg/virtpath"
	"github.com/terrycain/dandidav/pkg/zarrman"
)

// Config holds the resolver's immutable, server-lifetime settings.
type Config struct {
	PreferS3Redirects bool
}

// Resolver orchestrates the archive client, the Zarr-manifest client and
// the S3 pool into the single uniform resource model the responder
// consumes.
type Resolver struct {
	archive *archive.Client
	zarrman *zarrman.Client
	s3      *s3client.Pool
	cfg     Config
}

// New builds a Resolver over the given backend clients.
func New(archiveClient *archive.Client, zarrmanClient *zarrman.Client, s3Pool *s3client.Pool, cfg Config) *Resolver {
	return &Resolver{archive: archiveClient, zarrman: zarrmanClient, s3: s3Pool, cfg: cfg}
}

// Resolve produces the resource (and, if wantChildren, its children) that
// vp names. directGet distinguishes "this is the exact resource a client
// issued GET against" from "this is being rendered as a row in some
// ancestor's listing or propfind" — it governs blob redirect
// canonicalisation, which only ever prefers an S3 URL for the former.
func (r *Resolver) Resolve(ctx context.Context, vp virtpath.VirtPath, wantChildren, directGet bool) (resource.WithChildren, error) {
	switch vp.Kind {
	case virtpath.Root:
		return r.resolveRoot(wantChildren), nil
	case virtpath.DandisetIndex:
		return r.resolveDandisetIndex(ctx, wantChildren)
	case virtpath.Dandiset:
		return r.resolveDandiset(ctx, vp, wantChildren)
	case virtpath.DandisetReleases:
		return r.resolveDandisetReleases(ctx, vp, wantChildren)
	case virtpath.Version:
		return r.resolveVersion(ctx, vp, wantChildren)
	case virtpath.VersionMetadata:
		return r.resolveVersionMetadata(ctx, vp)
	case virtpath.AssetPath:
		return r.resolveAssetPath(ctx, vp, wantChildren, directGet)
	case virtpath.ZarrIndex:
		return r.resolveZarrIndex(ctx, wantChildren)
	case virtpath.ZarrManPath:
		return r.resolveZarrManPath(ctx, vp, wantChildren, directGet)
	default:
		return resource.WithChildren{}, apperr.New(apperr.Internal, "unhandled VirtPath kind")
	}
}

func (r *Resolver) resolveRoot(wantChildren bool) resource.WithChildren {
	self := resource.NewCollection("", "/")
	wc := resource.WithChildren{Self: self}
	if wantChildren {
		wc.Children = resource.SortChildren([]resource.Resource{
			resource.NewCollection("dandisets", "/dandisets/"),
			resource.NewCollection("zarrs", "/zarrs/"),
		})
	}
	return wc
}

func (r *Resolver) resolveDandisetIndex(ctx context.Context, wantChildren bool) (resource.WithChildren, error) {
	self := resource.NewCollection("dandisets", "/dandisets/")
	wc := resource.WithChildren{Self: self}
	if !wantChildren {
		return wc, nil
	}
	dandisets, err := r.archive.ListDandisets(ctx)
	if err != nil {
		return resource.WithChildren{}, err
	}
	children := make([]resource.Resource, 0, len(dandisets))
	for _, d := range dandisets {
		res := resource.NewCollection(d.ID, "/dandisets/"+d.ID+"/")
		res.Created = timePtr(d.DraftVersion.Created)
		res.Modified = timePtr(d.DraftVersion.Modified)
		children = append(children, res)
	}
	wc.Children = resource.SortChildren(children)
	return wc, nil
}

func (r *Resolver) resolveDandiset(ctx context.Context, vp virtpath.VirtPath, wantChildren bool) (resource.WithChildren, error) {
	did := string(vp.DandisetID)
	ds, err := r.archive.GetDandiset(ctx, did)
	if err != nil {
		return resource.WithChildren{}, err
	}
	self := resource.NewCollection(did, "/dandisets/"+did+"/")
	self.Created = timePtr(ds.DraftVersion.Created)
	self.Modified = timePtr(ds.DraftVersion.Modified)

	wc := resource.WithChildren{Self: self}
	if wantChildren {
		children := []resource.Resource{
			resource.NewCollection("draft", "/dandisets/"+did+"/draft/"),
			resource.NewCollection("releases", "/dandisets/"+did+"/releases/"),
		}
		if ds.MostRecentPublishedVersion != nil {
			children = append(children, resource.NewCollection("latest", "/dandisets/"+did+"/latest/"))
		}
		wc.Children = resource.SortChildren(children)
	}
	return wc, nil
}

func (r *Resolver) resolveDandisetReleases(ctx context.Context, vp virtpath.VirtPath, wantChildren bool) (resource.WithChildren, error) {
	did := string(vp.DandisetID)
	self := resource.NewCollection("releases", "/dandisets/"+did+"/releases/")
	wc := resource.WithChildren{Self: self}
	if !wantChildren {
		return wc, nil
	}
	versions, err := r.archive.ListVersions(ctx, did)
	if err != nil {
		return resource.WithChildren{}, err
	}
	children := make([]resource.Resource, 0, len(versions))
	for _, v := range versions {
		if v.VersionID == "draft" {
			continue
		}
		res := resource.NewCollection(v.VersionID, "/dandisets/"+did+"/releases/"+v.VersionID+"/")
		res.Created = timePtr(v.Created)
		res.Modified = timePtr(v.Modified)
		children = append(children, res)
	}
	wc.Children = resource.SortChildren(children)
	return wc, nil
}

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
