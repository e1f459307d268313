package hosting

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Store implements Store using MinIO/S3-compatible storage. The bucket
// is expected to allow public reads; published sites and assets are served
// directly from it.
type S3Store struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// S3Config holds configuration for S3-compatible storage.
type S3Config struct {
	Endpoint  string // host:port (e.g., "localhost:9000")
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string // base URL objects are served from
	UseSSL    bool
}

// S3ConfigFromEnv reads the S3_* environment variables.
func S3ConfigFromEnv() S3Config {
	return S3Config{
		Endpoint:  os.Getenv("S3_ENDPOINT"),
		AccessKey: os.Getenv("S3_ACCESS_KEY"),
		SecretKey: os.Getenv("S3_SECRET_KEY"),
		Bucket:    os.Getenv("S3_BUCKET"),
		PublicURL: os.Getenv("S3_PUBLIC_URL"),
		UseSSL:    os.Getenv("S3_USE_SSL") == "true",
	}
}

func NewS3Store(cfg S3Config) (*S3Store, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, ErrNotConfigured
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, err
	}

	publicURL := cfg.PublicURL
	if publicURL == "" {
		scheme := "http"
		if cfg.UseSSL {
			scheme = "https"
		}
		publicURL = fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
	}

	return &S3Store{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// EnsureBucket creates the bucket if it does not exist yet.
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
}

func (s *S3Store) PutSite(ctx context.Context, userID int, html string) (string, error) {
	key := SiteKey(userID)
	reader := strings.NewReader(html)

	_, err := s.client.PutObject(ctx, s.bucket, key, reader, int64(len(html)), minio.PutObjectOptions{
		ContentType: "text/html; charset=utf-8",
	})
	if err != nil {
		return "", err
	}

	return s.objectURL(key), nil
}

func (s *S3Store) RemoveSite(ctx context.Context, userID int) error {
	err := s.client.RemoveObject(ctx, s.bucket, SiteKey(userID), minio.RemoveObjectOptions{})
	if err != nil {
		// missing object means there is nothing left to remove
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil
		}
		return err
	}
	return nil
}

func (s *S3Store) PutAsset(ctx context.Context, userID int, filename, contentType string, r io.Reader, size int64) (string, error) {
	key := assetKey(userID, filename)

	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}

	return s.objectURL(key), nil
}

func (s *S3Store) objectURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, key)
}

// assetKey builds a per-user asset key that cannot collide across uploads
// of the same filename.
func assetKey(userID int, filename string) string {
	ext := filepath.Ext(filename)
	hash := xxhash.Sum64String(fmt.Sprintf("%d:%s:%d", userID, filename, time.Now().UnixNano()))
	return fmt.Sprintf("assets/%d/%016x%s", userID, hash, ext)
}

// Ensure S3Store implements Store.
var _ Store = (*S3Store)(nil)
