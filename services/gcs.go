package services

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCSService struct {
	client    *storage.Client
	bucket    string
	chunkSize int
	newWriter func(ctx context.Context, bucket, key string, chunkSize int) io.WriteCloser
}

// NewGCSService opens a storage client for bucket. An existing keyPathname
// is used as the service account credentials file, otherwise application
// default credentials apply.
func NewGCSService(ctx context.Context, bucket string, chunkSize int, keyPathname string) (*GCSService, error) {
	var opts []option.ClientOption
	if fileExists(keyPathname) {
		opts = append(opts, option.WithCredentialsFile(keyPathname))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &GCSService{
		client:    client,
		bucket:    bucket,
		chunkSize: chunkSize,
		newWriter: func(ctx context.Context, bucket, key string, chunkSize int) io.WriteCloser {
			w := client.Bucket(bucket).Object(key).NewWriter(ctx)
			w.ChunkSize = chunkSize
			w.ContentType = cogContentType
			return w
		},
	}, nil
}

// Upload streams localPath to key in chunkSize segments.
func (g *GCSService) Upload(ctx context.Context, localPath string, key string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// cancelling the writer context is the only way to abort an upload
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := g.newWriter(ctx, g.bucket, key, g.chunkSize)
	if _, err := io.Copy(w, file); err != nil {
		cancel()
		w.Close()
		return "", fmt.Errorf("failed to upload to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to upload to GCS: %w", err)
	}

	return objectURL(g.bucket, key), nil
}

func (g *GCSService) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func objectURL(bucket, key string) string {
	u := url.URL{Scheme: "https", Host: "storage.googleapis.com", Path: "/" + bucket + "/" + key}
	return u.String()
}
