package services

import (
	"context"
	"fmt"
	"os"

	"cogconverter/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

const cogContentType = "image/tiff; application=geotiff; profile=cloud-optimized"

type S3Service struct {
	session  *session.Session
	bucket   string
	uploader *s3manager.Uploader
}

// NewS3Service builds an uploader for bucket. An existing cfg.KeyPathname
// is read as an AWS shared credentials file; otherwise static keys from the
// environment or the SDK default chain are used.
func NewS3Service(cfg *config.Config, bucket string) (*S3Service, error) {
	awsCfg := &aws.Config{
		Region: aws.String(cfg.S3Region),
	}

	switch {
	case fileExists(cfg.KeyPathname):
		awsCfg.Credentials = credentials.NewSharedCredentials(cfg.KeyPathname, cfg.AWSProfile)
	case cfg.AWSS3AccessKey != "":
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.AWSS3AccessKey, cfg.AWSS3SecretKey, "")
	}

	if cfg.S3Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.S3Endpoint)
	}

	if cfg.S3UsePathStyle {
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create aws session: %w", err)
	}

	partSize := int64(cfg.ChunkSize)
	if partSize < s3manager.MinUploadPartSize {
		partSize = s3manager.MinUploadPartSize
	}

	return &S3Service{
		session: sess,
		bucket:  bucket,
		uploader: s3manager.NewUploader(sess, func(u *s3manager.Uploader) {
			u.PartSize = partSize
		}),
	}, nil
}

func (s *S3Service) PartSize() int64 {
	return s.uploader.PartSize
}

// Upload stores localPath at key and returns the object location.
func (s *S3Service) Upload(ctx context.Context, localPath string, key string) (string, error) {
	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	out, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(cogContentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return out.Location, nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
