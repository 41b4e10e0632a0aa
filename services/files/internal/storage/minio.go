package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/teammachinist/tiendaqr/internal/logger"
)

var ErrObjectNotFound = errors.New("object not found")

// ObjectStorage is the subset of an S3 API the files service needs.
type ObjectStorage interface {
	PutObject(ctx context.Context, bucket, name, contentType string, r io.Reader, size int64) error
	StatObject(ctx context.Context, bucket, name string) error
	RemoveObject(ctx context.Context, bucket, name string) error
	PresignedGetObject(ctx context.Context, bucket, name string, ttl time.Duration) (string, error)
	PublicURL(bucket, name string) string
	Ping(ctx context.Context) error
}

// Bucket is a bucket the service owns. Public buckets get an anonymous
// read policy.
type Bucket struct {
	Name   string
	Public bool
}

type MinIOConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	UseSSL        bool
	PublicBaseURL string
}

type MinIOStorage struct {
	client        *minio.Client
	publicBaseURL string
}

func NewMinIOStorage(cfg MinIOConfig) (*MinIOStorage, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	base := cfg.PublicBaseURL
	if base == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		base = scheme + "://" + cfg.Endpoint
	}

	return &MinIOStorage{client: client, publicBaseURL: strings.TrimRight(base, "/")}, nil
}

// EnsureBuckets creates missing buckets and applies the read policy of public ones.
func (m *MinIOStorage) EnsureBuckets(ctx context.Context, buckets []Bucket) error {
	for _, b := range buckets {
		exists, err := m.client.BucketExists(ctx, b.Name)
		if err != nil {
			return fmt.Errorf("failed to check bucket %s: %w", b.Name, err)
		}
		if !exists {
			if err := m.client.MakeBucket(ctx, b.Name, minio.MakeBucketOptions{}); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b.Name, err)
			}
			logger.InfoCtx(ctx, "Bucket created", "bucket", b.Name)
		}
		if b.Public {
			if err := m.client.SetBucketPolicy(ctx, b.Name, PublicReadPolicy(b.Name)); err != nil {
				return fmt.Errorf("failed to set policy on %s: %w", b.Name, err)
			}
		}
	}
	return nil
}

// PublicReadPolicy allows anonymous GetObject on every object in bucket.
func PublicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}

func (m *MinIOStorage) PutObject(ctx context.Context, bucket, name, contentType string, r io.Reader, size int64) error {
	_, err := m.client.PutObject(ctx, bucket, name, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

func (m *MinIOStorage) StatObject(ctx context.Context, bucket, name string) error {
	_, err := m.client.StatObject(ctx, bucket, name, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return ErrObjectNotFound
		}
		return fmt.Errorf("failed to stat object: %w", err)
	}
	return nil
}

func (m *MinIOStorage) RemoveObject(ctx context.Context, bucket, name string) error {
	if err := m.client.RemoveObject(ctx, bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove object: %w", err)
	}
	return nil
}

func (m *MinIOStorage) PresignedGetObject(ctx context.Context, bucket, name string, ttl time.Duration) (string, error) {
	u, err := m.client.PresignedGetObject(ctx, bucket, name, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign object: %w", err)
	}
	return u.String(), nil
}

func (m *MinIOStorage) PublicURL(bucket, name string) string {
	return m.publicBaseURL + "/" + bucket + "/" + url.PathEscape(name)
}

func (m *MinIOStorage) Ping(ctx context.Context) error {
	_, err := m.client.ListBuckets(ctx)
	return err
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" || resp.StatusCode == http.StatusNotFound
}
