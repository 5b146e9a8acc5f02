package resolver

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/terrycain/dandidav/pkg/apperr"
	"github.com/terrycain/dandidav/pkg/archive"
	"github.com/terrycain/dandidav/pkg/paths"
	"github.com/terrycain/dandidav/pkg/resource"
	"github.com/terrycain/dandidav/pkg/s3client"
	"github.com/terrycain/dandidav/pkg/virtpath"
)

// versionEndpoint resolves a VersionSpec to the archive version id
// actually used for upstream calls, per "Version spec resolution":
// Draft -> "draft", Published(v) -> v, Latest -> one extra get_dandiset
// call substituting the resolved id. The href fragment used in the
// resource model keeps the caller's original spelling ("latest" stays
// "latest" in URLs).
func (r *Resolver) versionEndpoint(ctx context.Context, did string, spec virtpath.VersionSpec) (apiVersionID string, err error) {
	switch spec.Kind {
	case virtpath.Draft:
		return "draft", nil
	case virtpath.Published:
		return string(spec.ID), nil
	case virtpath.Latest:
		ds, err := r.archive.GetDandiset(ctx, did)
		if err != nil {
			return "", err
		}
		if ds.MostRecentPublishedVersion == nil {
			// Open question resolved: latest with no published version is 404.
			return "", apperr.New(apperr.NotFound, "dandiset "+did+" has no published version")
		}
		return ds.MostRecentPublishedVersion.VersionID, nil
	default:
		return "", apperr.New(apperr.Internal, "unhandled version spec kind")
	}
}

// hrefFragment returns the path segment(s) for spec as they appear in
// request URLs (the caller's own spelling, not the resolved id).
func hrefFragment(spec virtpath.VersionSpec) string {
	switch spec.Kind {
	case virtpath.Draft:
		return "draft"
	case virtpath.Latest:
		return "latest"
	default:
		return "releases/" + string(spec.ID)
	}
}

func versionHref(did string, spec virtpath.VersionSpec) string {
	return "/dandisets/" + did + "/" + hrefFragment(spec) + "/"
}

// dandisetYAML builds the synthetic dandiset.yaml item for a version.
func (r *Resolver) dandisetYAML(ctx context.Context, did, apiVersionID string, hrefPrefix string) (resource.Resource, error) {
	md, err := r.archive.GetVersionMetadata(ctx, did, apiVersionID)
	if err != nil {
		return resource.Resource{}, err
	}
	body, err := yaml.Marshal(map[string]interface{}(md))
	if err != nil {
		return resource.Resource{}, apperr.Wrap(apperr.Internal, "failed to marshal dandiset.yaml", err)
	}
	size := int64(len(body))
	return resource.Resource{
		Kind:              resource.Item,
		Name:              "dandiset.yaml",
		Href:              hrefPrefix + "dandiset.yaml",
		ContentType:       "application/yaml",
		InlineContentType: "application/yaml",
		InlineBody:        body,
		Size:              &size,
	}, nil
}

func (r *Resolver) resolveVersion(ctx context.Context, vp virtpath.VirtPath, wantChildren bool) (resource.WithChildren, error) {
	did := string(vp.DandisetID)
	apiVersionID, err := r.versionEndpoint(ctx, did, vp.Version)
	if err != nil {
		return resource.WithChildren{}, err
	}
	hrefPrefix := versionHref(did, vp.Version)

	info, err := r.archive.GetVersionInfo(ctx, did, apiVersionID)
	if err != nil {
		return resource.WithChildren{}, err
	}
	self := resource.NewCollection(hrefFragment(vp.Version), hrefPrefix)
	self.Created = timePtr(info.Created)
	self.Modified = timePtr(info.Modified)

	wc := resource.WithChildren{Self: self}
	if !wantChildren {
		return wc, nil
	}

	yamlItem, err := r.dandisetYAML(ctx, did, apiVersionID, hrefPrefix)
	if err != nil {
		return resource.WithChildren{}, err
	}
	children := []resource.Resource{yamlItem}

	atres, err := r.archive.AtPathWithChildren(ctx, did, apiVersionID, nil)
	if err != nil {
		return resource.WithChildren{}, err
	}
	for _, entry := range atres.Children {
		res, err := r.entryToResource(entry, did, apiVersionID, hrefPrefix, false)
		if err != nil {
			return resource.WithChildren{}, err
		}
		children = append(children, res)
	}
	// dandiset.yaml is always listed first, per "Virtual dandiset.yaml is
	// inserted as the first child of every version collection"; the rest
	// sort normally behind it.
	rest := resource.SortChildren(children[1:])
	wc.Children = append([]resource.Resource{children[0]}, rest...)
	return wc, nil
}

func (r *Resolver) resolveVersionMetadata(ctx context.Context, vp virtpath.VirtPath) (resource.WithChildren, error) {
	did := string(vp.DandisetID)
	apiVersionID, err := r.versionEndpoint(ctx, did, vp.Version)
	if err != nil {
		return resource.WithChildren{}, err
	}
	item, err := r.dandisetYAML(ctx, did, apiVersionID, versionHref(did, vp.Version))
	if err != nil {
		return resource.WithChildren{}, err
	}
	return resource.WithChildren{Self: item}, nil
}

// entryToResource converts a folder/blob/zarr atpath child entry into a
// listing row. final is true only when this entry is itself the exact
// resource a direct GET targeted (never true for a sibling in a
// listing), governing blob redirect canonicalisation.
func (r *Resolver) entryToResource(entry archive.AtPathEntry, did, apiVersionID, hrefPrefix string, final bool) (resource.Resource, error) {
	href := hrefPrefix + entry.Name
	switch {
	case entry.IsDir:
		return resource.NewCollection(entry.Name, href+"/"), nil
	case entry.Blob != nil:
		return r.blobToResource(entry.Blob, href, final)
	case entry.Zarr != nil:
		res := resource.NewCollection(entry.Name, href+"/")
		res.Created = timePtr(entry.Zarr.Created)
		res.Modified = timePtr(entry.Zarr.Modified)
		res.MetadataHref = entry.Zarr.MetadataURL
		return res, nil
	default:
		return resource.Resource{}, apperr.New(apperr.Internal, "atpath entry is neither folder, blob, nor zarr")
	}
}

// blobRedirect computes a blob's canonical redirect URL. HTML listings
// (final == false) use the archive URL, falling back to the S3 URL only
// when the blob has no archive URL; a direct GET honours
// --prefer-s3-redirects.
func (r *Resolver) blobRedirect(b *archive.BlobAsset, final bool) (string, error) {
	if final && r.cfg.PreferS3Redirects {
		if u, ok := b.S3URL(); ok {
			return u, nil
		}
	}
	if u, ok := b.ArchiveURL(); ok {
		return u, nil
	}
	if u, ok := b.S3URL(); ok {
		return u, nil
	}
	return "", apperr.New(apperr.UpstreamMalformed, "blob "+b.AssetID+" has no usable contentUrl")
}

func (r *Resolver) blobToResource(b *archive.BlobAsset, href string, final bool) (resource.Resource, error) {
	redirect, err := r.blobRedirect(b, final)
	if err != nil {
		return resource.Resource{}, err
	}
	res := resource.NewItem(b.Path[lastSlashIdx(b.Path)+1:], href, redirect)
	res.Size = &b.Size
	res.Created = timePtr(b.Created)
	res.Modified = timePtr(b.Modified)
	res.ContentType = b.ContentType()
	res.ETag = b.ETag()
	res.MetadataHref = b.MetadataURL
	return res, nil
}

func lastSlashIdx(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return i
		}
	}
	return -1
}

// resolveAssetPath implements the "atpath walk" state machine (component
// design §4.6): it splits rest at each non-final .zarr/.ngff component,
// issuing one atpath call per split point, until it lands on a blob, a
// Zarr (handing the remainder to S3), a folder at the end of the path, or
// a not-found.
func (r *Resolver) resolveAssetPath(ctx context.Context, vp virtpath.VirtPath, wantChildren, directGet bool) (resource.WithChildren, error) {
	did := string(vp.DandisetID)
	apiVersionID, err := r.versionEndpoint(ctx, did, vp.Version)
	if err != nil {
		return resource.WithChildren{}, err
	}
	hrefPrefix := versionHref(did, vp.Version)
	rest := vp.Path

	candidates := rest.SplitZarrCandidates()
	candidates = append(candidates, paths.ZarrCandidate{ZarrPath: rest, EntryPath: ""})

	for _, cand := range candidates {
		p := cand.ZarrPath
		atEnd := p == rest
		children := wantChildren && atEnd
		pathStr := string(p)

		var atres archive.AtPathResult
		if children {
			atres, err = r.archive.AtPathWithChildren(ctx, did, apiVersionID, &pathStr)
		} else {
			atres, err = r.archive.AtPath(ctx, did, apiVersionID, pathStr)
		}
		if err != nil {
			return resource.WithChildren{}, err
		}

		switch atres.Kind {
		case archive.AtPathNotFound:
			return resource.WithChildren{}, apperr.New(apperr.NotFound, "no asset at "+pathStr)
		case archive.AtPathBlob:
			if !atEnd {
				return resource.WithChildren{}, apperr.New(apperr.NotFound, "no asset at "+string(rest))
			}
			res, err := r.blobToResource(atres.Blob, hrefPrefix+string(rest), directGet)
			if err != nil {
				return resource.WithChildren{}, err
			}
			return resource.WithChildren{Self: res}, nil
		case archive.AtPathZarr:
			return r.resolveZarrRemainder(ctx, atres.Zarr, cand, hrefPrefix, wantChildren)
		case archive.AtPathFolder:
			if atEnd {
				self := resource.NewCollection(rest.NameStr(), hrefPrefix+string(rest)+"/")
				wc := resource.WithChildren{Self: self}
				if wantChildren {
					children := make([]resource.Resource, 0, len(atres.Children))
					for _, e := range atres.Children {
						res, err := r.entryToResource(e, did, apiVersionID, hrefPrefix+string(rest)+"/", false)
						if err != nil {
							return resource.WithChildren{}, err
						}
						children = append(children, res)
					}
					wc.Children = resource.SortChildren(children)
				}
				return wc, nil
			}
			// Folder but not yet at the end of rest: continue the walk at
			// the next split point.
			continue
		default:
			return resource.WithChildren{}, apperr.New(apperr.Internal, "unhandled atpath result kind")
		}
	}
	return resource.WithChildren{}, apperr.New(apperr.NotFound, "no asset at "+string(rest))
}

// resolveZarrRemainder handles the "Zarr" branch of the atpath walk:
// either the Zarr itself (remainder empty) or a path inside it, which is
// answered from S3 using the Zarr asset's content URL.
func (r *Resolver) resolveZarrRemainder(ctx context.Context, z *archive.ZarrAsset, cand paths.ZarrCandidate, hrefPrefix string, wantChildren bool) (resource.WithChildren, error) {
	href := hrefPrefix + string(cand.ZarrPath) + "/"
	remainder := cand.EntryPath

	if remainder == "" {
		self := resource.NewCollection(cand.ZarrPath.NameStr(), href)
		self.Created = timePtr(z.Created)
		self.Modified = timePtr(z.Modified)
		self.MetadataHref = z.MetadataURL
		wc := resource.WithChildren{Self: self}
		if !wantChildren {
			return wc, nil
		}
		loc, ok := z.S3Location()
		if !ok {
			// Per the component design, an unparseable contentUrl is only
			// a backend error when a path inside the Zarr was requested;
			// at this (Zarr-itself) level it is simply listed with no
			// children available.
			return wc, nil
		}
		listing, err := r.s3.ListOneLevel(ctx, loc.Bucket, loc.Key, loc.Region)
		if err != nil {
			return resource.WithChildren{}, err
		}
		wc.Children = resource.SortChildren(s3ListingToResources(listing, loc.Bucket, loc.Region, href))
		return wc, nil
	}

	loc, ok := z.S3Location()
	if !ok {
		return resource.WithChildren{}, apperr.New(apperr.UpstreamMalformed, "zarr "+z.ZarrID+" has no parseable contentUrl")
	}
	obj, folder, err := r.s3.GetPath(ctx, loc.Bucket, loc.Key, string(remainder), loc.Region)
	if err != nil {
		return resource.WithChildren{}, err
	}
	entryHref := href + string(remainder)
	switch {
	case folder != nil:
		self := resource.NewCollection(remainder.NameStr(), entryHref+"/")
		wc := resource.WithChildren{Self: self}
		if wantChildren {
			listing, err := r.s3.ListOneLevel(ctx, loc.Bucket, folder.Name, loc.Region)
			if err != nil {
				return resource.WithChildren{}, err
			}
			wc.Children = resource.SortChildren(s3ListingToResources(listing, loc.Bucket, loc.Region, entryHref+"/"))
		}
		return wc, nil
	case obj != nil:
		redirect := s3RedirectURL(loc.Bucket, loc.Region, obj.Name)
		res := resource.NewItem(remainder.NameStr(), entryHref, redirect)
		res.Size = &obj.Size
		res.Modified = timePtr(obj.LastModified)
		if obj.ETag != "" {
			res.ETag = obj.ETag
		}
		return resource.WithChildren{Self: res}, nil
	default:
		return resource.WithChildren{}, apperr.New(apperr.NotFound, "no entry at "+entryHref)
	}
}

func s3RedirectURL(bucket, region, key string) string {
	if region != "" {
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, key)
}

// s3ListingToResources converts a one-level S3 listing into listing rows
// under hrefPrefix. Folder.Name and Object.Name are full keys (S3 returns
// them that way under a prefix+delimiter listing); only the final
// component is used as the display name.
func s3ListingToResources(listing s3client.Listing, bucket, region, hrefPrefix string) []resource.Resource {
	out := make([]resource.Resource, 0, len(listing.Folders)+len(listing.Objects))
	for _, f := range listing.Folders {
		name := trimTrailingSlash(f.Name)
		name = name[lastSlashIdx(name)+1:]
		out = append(out, resource.NewCollection(name, hrefPrefix+name+"/"))
	}
	for _, o := range listing.Objects {
		name := o.Name[lastSlashIdx(o.Name)+1:]
		res := resource.NewItem(name, hrefPrefix+name, s3RedirectURL(bucket, region, o.Name))
		size := o.Size
		res.Size = &size
		res.Modified = timePtr(o.LastModified)
		res.ETag = o.ETag
		out = append(out, res)
	}
	return out
}

func trimTrailingSlash(s string) string {
	if len(s) > 0 && s[len(s)-1] == '/' {
		return s[:len(s)-1]
	}
	return s
}
