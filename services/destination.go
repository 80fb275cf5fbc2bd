package services

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

type Kind string

const (
	KindLocal Kind = "local"
	KindS3    Kind = "s3"
	KindGS    Kind = "gs"
)

// Destination is the classified output location. Bucket and Prefix are only
// set for cloud kinds, Path only for KindLocal.
type Destination struct {
	Kind   Kind
	Bucket string
	Prefix string
	Path   string
}

// IsURI reports whether location looks like scheme://...
func IsURI(location string) bool {
	scheme, _, ok := strings.Cut(location, "://")
	if !ok || scheme == "" {
		return false
	}
	for _, r := range scheme {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.') {
			return false
		}
	}
	return true
}

// ParseDestination classifies the output location once, before any image
// is processed. A cloud URI without a bucket is an error rather than a
// local path.
func ParseDestination(location string) (Destination, error) {
	if location == "" {
		return Destination{}, fmt.Errorf("%w: empty location", ErrInvalidDestination)
	}
	if !IsURI(location) {
		return Destination{Kind: KindLocal, Path: filepath.Clean(location)}, nil
	}

	scheme, rest, _ := strings.Cut(location, "://")
	var kind Kind
	switch strings.ToLower(scheme) {
	case "s3":
		kind = KindS3
	case "gs", "gcs":
		kind = KindGS
	default:
		return Destination{}, fmt.Errorf("%w: unsupported scheme %q in %s", ErrInvalidDestination, scheme, location)
	}

	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return Destination{}, fmt.Errorf("%w: no bucket in %s", ErrInvalidDestination, location)
	}

	return Destination{
		Kind:   kind,
		Bucket: bucket,
		Prefix: strings.Trim(prefix, "/"),
	}, nil
}

func (d Destination) IsCloud() bool {
	return d.Kind != KindLocal
}

// ObjectKey is <prefix>/<timestamp>/<basename>. The source directory layout
// is flattened away.
func (d Destination) ObjectKey(timestamp, basename string) string {
	return path.Join(d.Prefix, timestamp, basename)
}

func (d Destination) String() string {
	if d.Kind == KindLocal {
		return d.Path
	}
	if d.Prefix == "" {
		return fmt.Sprintf("%s://%s", d.Kind, d.Bucket)
	}
	return fmt.Sprintf("%s://%s/%s", d.Kind, d.Bucket, d.Prefix)
}
