package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

type S3Options struct {
	Bucket   string
	Region   string
	Endpoint string
	Expiry   time.Duration
}

type S3FileService struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	expiry  time.Duration
	now     func() time.Time
}

// NewS3FileService loads the default AWS configuration. A non-empty
// endpoint switches to path-style addressing for S3-compatible stores.
func NewS3FileService(ctx context.Context, opts S3Options, optFns ...func(*awsConfig.LoadOptions) error) (*S3FileService, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}
	loadOpts := append([]func(*awsConfig.LoadOptions) error{awsConfig.WithRegion(opts.Region)}, optFns...)
	cfg, err := awsConfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3FileServiceFromConfig(cfg, opts), nil
}

func NewS3FileServiceFromConfig(cfg aws.Config, opts S3Options) *S3FileService {
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	expiry := opts.Expiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	return &S3FileService{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  opts.Bucket,
		expiry:  expiry,
		now:     time.Now,
	}
}

// GetUploadURL presigns a PUT for a new object under prefix. The file name
// is reduced to its base name and prefixed with a random id.
func (s *S3FileService) GetUploadURL(ctx context.Context, fileName, prefix string) (PresignedUpload, error) {
	base := sanitizeFileName(fileName)
	if base == "" {
		return PresignedUpload{}, errors.New("file name is required")
	}
	key := path.Join(prefix, uuid.NewString()+"-"+base)

	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return PresignedUpload{}, fmt.Errorf("failed to generate upload presigned URL: %w", err)
	}

	url, err := s.GetURL(ctx, key)
	if err != nil {
		return PresignedUpload{}, err
	}

	return PresignedUpload{
		Key:       key,
		UploadURL: req.URL,
		URL:       url,
		ExpiresAt: s.now().Add(s.expiry),
	}, nil
}

func (s *S3FileService) GetURL(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.expiry))
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}
	return req.URL, nil
}

func (s *S3FileService) IsExists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) {
		return false, nil
	}
	return false, err
}

func (s *S3FileService) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file %s: %w", key, err)
	}
	return nil
}

func sanitizeFileName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.ReplaceAll(base, " ", "-")
}
