// Package s3loc extracts (bucket, region, key) from the S3 URL shapes
// documented in the "S3 redirect targets" / S3 location parser component:
// virtual-hosted-style with and without a region, path-style, and the
// bare s3:// scheme.
package s3loc

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrNotS3URL is returned when a URL does not match any recognized S3
// URL shape.
var ErrNotS3URL = errors.New("not a recognized S3 URL")

// Location is the parsed (bucket, optional region, key) of an S3 URL.
type Location struct {
	Bucket string
	Region string // empty if not present in the URL
	Key    string
}

var virtualHostedWithRegion = regexp.MustCompile(`^([^.]+)\.s3\.([a-z0-9-]+)\.amazonaws\.com$`)
var virtualHostedNoRegion = regexp.MustCompile(`^([^.]+)\.s3\.amazonaws\.com$`)
var pathStyleWithRegion = regexp.MustCompile(`^s3\.([a-z0-9-]+)\.amazonaws\.com$`)
var pathStyleNoRegion = regexp.MustCompile(`^s3\.amazonaws\.com$`)

// Parse attempts to interpret rawurl as one of the recognized S3 URL
// shapes.
func Parse(rawurl string) (Location, error) {
	u, err := url.Parse(rawurl)
	if err != nil {
		return Location{}, ErrNotS3URL
	}

	if strings.EqualFold(u.Scheme, "s3") {
		bucket := u.Host
		if bucket == "" {
			return Location{}, ErrNotS3URL
		}
		key := strings.TrimPrefix(u.Path, "/")
		return Location{Bucket: bucket, Key: key}, nil
	}

	if !strings.EqualFold(u.Scheme, "http") && !strings.EqualFold(u.Scheme, "https") {
		return Location{}, ErrNotS3URL
	}

	host := u.Hostname()

	if m := virtualHostedWithRegion.FindStringSubmatch(host); m != nil {
		return Location{Bucket: m[1], Region: m[2], Key: strings.TrimPrefix(u.Path, "/")}, nil
	}
	if m := virtualHostedNoRegion.FindStringSubmatch(host); m != nil {
		return Location{Bucket: m[1], Key: strings.TrimPrefix(u.Path, "/")}, nil
	}

	if m := pathStyleWithRegion.FindStringSubmatch(host); m != nil {
		bucket, key, ok := splitBucketAndKey(u.Path)
		if !ok {
			return Location{}, ErrNotS3URL
		}
		return Location{Bucket: bucket, Region: m[1], Key: key}, nil
	}
	if pathStyleNoRegion.MatchString(host) {
		bucket, key, ok := splitBucketAndKey(u.Path)
		if !ok {
			return Location{}, ErrNotS3URL
		}
		return Location{Bucket: bucket, Key: key}, nil
	}

	return Location{}, ErrNotS3URL
}

func splitBucketAndKey(path string) (bucket, key string, ok bool) {
	trimmed := strings.TrimPrefix(path, "/")
	if trimmed == "" {
		return "", "", false
	}
	i := strings.IndexByte(trimmed, '/')
	if i < 0 {
		return trimmed, "", true
	}
	return trimmed[:i], trimmed[i+1:], true
}
