package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memWriter struct {
	bytes.Buffer
	closeErr error
	closed   bool
}

func (m *memWriter) Close() error {
	m.closed = true
	return m.closeErr
}

type gcsCall struct {
	bucket    string
	key       string
	chunkSize int
}

func fakeGCS(w *memWriter, calls *[]gcsCall) *GCSService {
	return &GCSService{
		bucket:    "mybucket",
		chunkSize: 5242880,
		newWriter: func(_ context.Context, bucket, key string, chunkSize int) io.WriteCloser {
			*calls = append(*calls, gcsCall{bucket: bucket, key: key, chunkSize: chunkSize})
			return w
		},
	}
}

func TestGCSService_Upload(t *testing.T) {
	local := filepath.Join(t.TempDir(), "scene_20230101_120000.tif")
	require.NoError(t, os.WriteFile(local, []byte("cog bytes"), 0644))

	w := &memWriter{}
	var calls []gcsCall
	svc := fakeGCS(w, &calls)

	u, err := svc.Upload(context.Background(), local, "imagery/20230101_120000/scene_20230101_120000.tif")
	require.NoError(t, err)

	assert.Equal(t, "https://storage.googleapis.com/mybucket/imagery/20230101_120000/scene_20230101_120000.tif", u)
	assert.Equal(t, []gcsCall{{bucket: "mybucket", key: "imagery/20230101_120000/scene_20230101_120000.tif", chunkSize: 5242880}}, calls)
	assert.Equal(t, "cog bytes", w.String())
	assert.True(t, w.closed)
}

func TestGCSService_UploadCloseError(t *testing.T) {
	local := filepath.Join(t.TempDir(), "a.tif")
	require.NoError(t, os.WriteFile(local, []byte("x"), 0644))

	w := &memWriter{closeErr: errors.New("googleapi: Error 403: forbidden")}
	var calls []gcsCall

	_, err := fakeGCS(w, &calls).Upload(context.Background(), local, "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestGCSService_UploadMissingFile(t *testing.T) {
	var calls []gcsCall
	_, err := fakeGCS(&memWriter{}, &calls).Upload(context.Background(), filepath.Join(t.TempDir(), "gone.tif"), "k")
	require.Error(t, err)
	assert.Empty(t, calls)
}

func TestGCSService_CloseWithoutClient(t *testing.T) {
	assert.NoError(t, (&GCSService{}).Close())
}
