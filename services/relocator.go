package services

import (
	"context"
	"fmt"
	"path/filepath"
)

// Uploader puts a local file at key in a bucket and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, localPath string, key string) (string, error)
}

// Relocator sends converted artifacts to the classified destination.
type Relocator struct {
	dest     Destination
	tmpPath  string
	uploader Uploader
	local    *LocalStorage
}

// NewRelocator returns a relocator for dest. uploader is required for cloud
// destinations and ignored for local ones.
func NewRelocator(dest Destination, tmpPath string, uploader Uploader) (*Relocator, error) {
	r := &Relocator{dest: dest, tmpPath: tmpPath}
	if dest.IsCloud() {
		if uploader == nil {
			return nil, fmt.Errorf("%w: no uploader for %s", ErrInvalidDestination, dest)
		}
		r.uploader = uploader
	} else {
		r.local = &LocalStorage{BasePath: dest.Path}
	}
	return r, nil
}

func (r *Relocator) Destination() Destination {
	return r.dest
}

// Relocate returns the final location of artifact: an object URL for cloud
// destinations, a file path otherwise.
func (r *Relocator) Relocate(ctx context.Context, artifact, timestamp string) (string, error) {
	if !r.dest.IsCloud() {
		return r.local.Move(artifact, r.tmpPath)
	}
	key := r.dest.ObjectKey(timestamp, filepath.Base(artifact))
	return r.uploader.Upload(ctx, artifact, key)
}
