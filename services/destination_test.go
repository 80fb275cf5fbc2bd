package services

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsURI(t *testing.T) {
	assert.True(t, IsURI("gs://bucket/imagery"))
	assert.True(t, IsURI("s3://bucket"))
	assert.True(t, IsURI("gs://"))
	assert.False(t, IsURI("/data/out"))
	assert.False(t, IsURI(`C:\data\out`))
	assert.False(t, IsURI("://bucket"))
	assert.False(t, IsURI("weird dir://x"))
}

func TestParseDestination(t *testing.T) {
	cases := []struct {
		in   string
		want Destination
	}{
		{"gs://mybucket/imagery", Destination{Kind: KindGS, Bucket: "mybucket", Prefix: "imagery"}},
		{"gcs://mybucket/a/b/", Destination{Kind: KindGS, Bucket: "mybucket", Prefix: "a/b"}},
		{"s3://mybucket", Destination{Kind: KindS3, Bucket: "mybucket"}},
		{"S3://mybucket//nested", Destination{Kind: KindS3, Bucket: "mybucket", Prefix: "nested"}},
		{"/data/out/", Destination{Kind: KindLocal, Path: filepath.Clean("/data/out")}},
	}
	for _, tc := range cases {
		got, err := ParseDestination(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestParseDestination_Invalid(t *testing.T) {
	for _, in := range []string{"", "gs://", "gs:///imagery", "ftp://host/path"} {
		_, err := ParseDestination(in)
		assert.ErrorIs(t, err, ErrInvalidDestination, in)
	}
}

func TestDestination_ObjectKey(t *testing.T) {
	d := Destination{Kind: KindGS, Bucket: "mybucket", Prefix: "imagery"}
	assert.Equal(t, "imagery/20230101_120000/scene_20230101_120000.tif", d.ObjectKey("20230101_120000", "scene_20230101_120000.tif"))

	d.Prefix = ""
	assert.Equal(t, "20230101_120000/scene.tif", d.ObjectKey("20230101_120000", "scene.tif"))
}

func TestDestination_String(t *testing.T) {
	assert.Equal(t, "gs://mybucket/imagery", Destination{Kind: KindGS, Bucket: "mybucket", Prefix: "imagery"}.String())
	assert.Equal(t, "s3://mybucket", Destination{Kind: KindS3, Bucket: "mybucket"}.String())
	assert.Equal(t, "/data/out", Destination{Kind: KindLocal, Path: "/data/out"}.String())
}
