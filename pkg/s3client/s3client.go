// Package s3client provides a bucket-keyed, region-discovering S3 listing
// client, grounded on the teacher's pkg/storage/aws-s3 backend (session
// setup; regions are found with a HEAD request, see discoverRegion) and generalized from a
// single configured bucket to an LRU-cached pool of per-bucket clients.
package s3client

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"

	"github.com/terrycain/dandidav/pkg/apperr"
)

// DefaultCacheSize is the default bound on the number of per-bucket S3
// clients kept cached at once.
const DefaultCacheSize = 8

// Folder is a common-prefix entry from a ListObjectsV2 call.
type Folder struct {
	Name string
}

// Object is a single S3 object entry.
type Object struct {
	Name         string
	Size         int64
	LastModified time.Time
	ETag         string
}

// Listing is the result of a one-level listing under a key prefix.
type Listing struct {
	Folders []Folder
	Objects []Object
}

// Pool caches one *s3.S3 client per bucket, keyed by bucket name, with
// each entry's region memoised after a one-time discovery call. The LRU
// bound ensures region discovery happens at most once per bucket per
// process, modulo eviction.
type Pool struct {
	sess  *session.Session
	cache *lru.Cache
	hc    *http.Client
}

type poolEntry struct {
	region string
	svc    *s3.S3
}

// NewPool builds a Pool with the given cache size bound (DefaultCacheSize
// if size <= 0).
func NewPool(size int) (*Pool, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	sess, err := session.NewSession(aws.NewConfig().WithRegion("us-east-1"))
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to create AWS session", err)
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to create S3 client cache", err)
	}
	return &Pool{sess: sess, cache: c, hc: &http.Client{Timeout: 30 * time.Second}}, nil
}

// clientFor returns the cached *s3.S3 for bucket, performing region
// discovery and building a fresh client on first use.
func (p *Pool) clientFor(ctx context.Context, bucket, knownRegion string) (*s3.S3, error) {
	if v, ok := p.cache.Get(bucket); ok {
		return v.(*poolEntry).svc, nil
	}

	region := knownRegion
	if region == "" {
		var err error
		region, err = p.discoverRegion(ctx, bucket)
		if err != nil {
			return nil, err
		}
	}

	svc := s3.New(p.sess, aws.NewConfig().WithRegion(region))
	p.cache.Add(bucket, &poolEntry{region: region, svc: svc})
	return svc, nil
}

// discoverRegion issues a HEAD request against the bucket's default
// virtual-hosted endpoint and reads the x-amz-bucket-region header, since
// the SDK's own GetBucketLocation requires already knowing a usable
// region to sign the request with.
func (p *Pool) discoverRegion(ctx context.Context, bucket string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, "https://"+bucket+".s3.amazonaws.com/", nil)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "failed to build region discovery request", err)
	}
	resp, err := p.hc.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.UpstreamUnavailable, "bucket region discovery failed", err)
	}
	defer resp.Body.Close()

	region := resp.Header.Get("x-amz-bucket-region")
	if region == "" {
		return "", apperr.New(apperr.UpstreamMalformed, "bucket region discovery response missing x-amz-bucket-region")
	}
	log.Debug().Str("bucket", bucket).Str("region", region).Msg("discovered S3 bucket region")
	return region, nil
}

// ListOneLevel lists the immediate children of keyPrefix in bucket using
// delimiter "/". Folders and objects are returned in S3's own order; the
// resolver is responsible for any presentation sort. knownRegion, when
// non-empty, skips the region-discovery HEAD call for a bucket not yet in
// the pool.
func (p *Pool) ListOneLevel(ctx context.Context, bucket, keyPrefix, knownRegion string) (Listing, error) {
	svc, err := p.clientFor(ctx, bucket, knownRegion)
	if err != nil {
		return Listing{}, err
	}

	var out Listing
	in := &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucket),
		Prefix:    aws.String(keyPrefix),
		Delimiter: aws.String("/"),
	}
	err = svc.ListObjectsV2PagesWithContext(ctx, in, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, cp := range page.CommonPrefixes {
			out.Folders = append(out.Folders, Folder{Name: aws.StringValue(cp.Prefix)})
		}
		for _, obj := range page.Contents {
			out.Objects = append(out.Objects, Object{
				Name:         aws.StringValue(obj.Key),
				Size:         aws.Int64Value(obj.Size),
				LastModified: aws.TimeValue(obj.LastModified),
				ETag:         aws.StringValue(obj.ETag),
			})
		}
		return true
	})
	if err != nil {
		return Listing{}, apperr.Wrap(apperr.UpstreamUnavailable, "S3 ListObjectsV2 failed", err)
	}
	return out, nil
}

// HeadObject fetches the metadata of a single object.
func (p *Pool) HeadObject(ctx context.Context, bucket, key string) (Object, error) {
	svc, err := p.clientFor(ctx, bucket, "")
	if err != nil {
		return Object{}, err
	}
	out, err := svc.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return Object{}, apperr.Wrap(apperr.UpstreamUnavailable, "S3 HeadObject failed", err)
	}
	return Object{
		Name:         key,
		Size:         aws.Int64Value(out.ContentLength),
		LastModified: aws.TimeValue(out.LastModified),
		ETag:         aws.StringValue(out.ETag),
	}, nil
}

// GetPath finds the single object or common-prefix folder at exactly
// path within bucket/keyPrefix, by scanning the one-level listing of
// path's parent directory the way the original resolver's S3 get_path
// does an early-exit comparison against sorted results. knownRegion, when
// non-empty, skips region discovery the same way ListOneLevel's does.
func (p *Pool) GetPath(ctx context.Context, bucket, keyPrefix, path, knownRegion string) (*Object, *Folder, error) {
	parent := keyPrefix
	if i := lastSlash(path); i >= 0 {
		parent = keyPrefix + path[:i+1]
	}
	target := keyPrefix + path
	targetDir := target + "/"

	listing, err := p.ListOneLevel(ctx, bucket, parent, knownRegion)
	if err != nil {
		return nil, nil, err
	}
	for _, f := range listing.Folders {
		if f.Name == targetDir {
			return nil, &f, nil
		}
	}
	for _, o := range listing.Objects {
		if o.Name == target {
			return &o, nil, nil
		}
	}
	return nil, nil, nil
}

func lastSlash(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '/' {
			return i
		}
	}
	return -1
}
