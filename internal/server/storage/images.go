// Package storage issues presigned S3 URLs for vehicle images.
package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ErrDisabled is returned when no bucket is configured.
var ErrDisabled = errors.New("image storage disabled")

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	now = time.Now
)

// Options configures an ImageStore.
type Options struct {
	AccessKey    string
	SecretKey    string
	Bucket       string
	Region       string
	BaseEndpoint string
	PresignTTL   time.Duration
}

// ImageStore hands out short-lived upload and download URLs. The server never
// proxies image bytes.
type ImageStore struct {
	opts Options
}

func NewImageStore(opts Options) *ImageStore {
	if opts.PresignTTL <= 0 {
		opts.PresignTTL = 15 * time.Minute
	}
	return &ImageStore{opts: opts}
}

// Enabled reports whether a bucket is configured.
func (s *ImageStore) Enabled() bool {
	return s != nil && s.opts.Bucket != ""
}

// Upload is a presigned PUT for one new object.
type Upload struct {
	Key       string `json:"key"`
	URL       string `json:"url"`
	PublicURL string `json:"public_url"`
}

// NewObjectKey builds vehicles/YYYY/MM/<uuid><ext> keeping only a known image
// extension from filename.
func NewObjectKey(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
	default:
		ext = ""
	}
	d := now()
	return fmt.Sprintf("vehicles/%d/%02d/%s%s", d.Year(), int(d.Month()), uuid.NewString(), ext)
}

func (s *ImageStore) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(s.opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.opts.AccessKey,
			s.opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.opts.BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// PresignUpload returns a PUT URL for a fresh key derived from filename.
func (s *ImageStore) PresignUpload(ctx context.Context, filename, contentType string) (*Upload, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}

	pc, err := s.getPresignClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("s3 config: %w", err)
	}

	key := NewObjectKey(filename)
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(key),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	req, err := presignPutObject(pc, ctx, in, s3.WithPresignExpires(s.opts.PresignTTL))
	if err != nil {
		return nil, fmt.Errorf("presign put: %w", err)
	}

	return &Upload{Key: key, URL: req.URL, PublicURL: s.PublicURL(key)}, nil
}

// PresignDownload returns a GET URL for key.
func (s *ImageStore) PresignDownload(ctx context.Context, key string) (string, error) {
	if !s.Enabled() {
		return "", ErrDisabled
	}

	pc, err := s.getPresignClient(ctx)
	if err != nil {
		return "", fmt.Errorf("s3 config: %w", err)
	}

	req, err := presignGetObject(pc, ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.opts.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.opts.PresignTTL))
	if err != nil {
		return "", fmt.Errorf("presign get: %w", err)
	}
	return req.URL, nil
}

// PublicURL is the path-style object URL stored as a vehicle image path.
func (s *ImageStore) PublicURL(key string) string {
	return strings.TrimRight(s.opts.BaseEndpoint, "/") + "/" + s.opts.Bucket + "/" + strings.TrimLeft(key, "/")
}
