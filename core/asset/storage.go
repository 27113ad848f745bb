package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/sirupsen/logrus"
)

// ObjectStore reads objects from a bucket.
type ObjectStore interface {
	// GetObject returns the object body and its declared content type.
	// A missing object yields an error wrapping ErrNotFound.
	GetObject(ctx context.Context, key string) ([]byte, string, error)
}

// StorageConfig configures an S3-compatible object store.
type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

// MinioStore provides S3-compatible object storage access.
type MinioStore struct {
	client   *minio.Client
	bucket   string
	maxBytes int64
	logger   logrus.FieldLogger
}

// NewMinioStore creates a MinIO/S3 storage client. Objects larger than
// maxBytes are refused when maxBytes is positive.
func NewMinioStore(cfg StorageConfig, maxBytes int64, logger logrus.FieldLogger) (*MinioStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating minio client: %w", err)
	}

	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &MinioStore{client: client, bucket: cfg.Bucket, maxBytes: maxBytes, logger: logger}, nil
}

// GetObject downloads key from the bucket.
func (s *MinioStore) GetObject(ctx context.Context, key string) ([]byte, string, error) {
	s.logger.WithFields(logrus.Fields{"bucket": s.bucket, "key": key}).Debug("downloading asset from storage")

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", fmt.Errorf("getting object %s: %w", key, err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, "", fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, "", fmt.Errorf("stat object %s: %w", key, err)
	}
	if s.maxBytes > 0 && info.Size > s.maxBytes {
		return nil, "", fmt.Errorf("object %s is %d bytes, limit is %d", key, info.Size, s.maxBytes)
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, "", fmt.Errorf("reading object %s: %w", key, err)
	}
	return data, info.ContentType, nil
}

// StorageResolver resolves storage keys against an object store.
type StorageResolver struct {
	store  ObjectStore
	prefix string
}

// NewStorageResolver creates a StorageResolver. Keys are looked up below
// prefix, which may be empty.
func NewStorageResolver(store ObjectStore, prefix string) *StorageResolver {
	return &StorageResolver{store: store, prefix: strings.Trim(prefix, "/")}
}

// Resolve downloads the object named by ref and returns it as a data URI.
func (r *StorageResolver) Resolve(ctx context.Context, ref string) (string, error) {
	if Classify(ref) != KindKey {
		return "", fmt.Errorf("%w: %s is not a storage key", ErrUnsupported, ref)
	}
	key := strings.TrimPrefix(ref, "/")
	if r.prefix != "" {
		key = r.prefix + "/" + key
	}
	data, contentType, err := r.store.GetObject(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("resolving %s from storage: %w", ref, err)
	}
	return EncodeDataURI(MediaType(ref, contentType, data), data), nil
}
