package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/abduss/photocat/internal/config"
	"github.com/abduss/photocat/internal/storeerr"
)

// NewMinIOClient establishes an S3-compatible client using the provided configuration.
func NewMinIOClient(cfg config.MinIOConfig) (*minio.Client, error) {
	endpoint := cfg.Endpoint
	if !strings.Contains(endpoint, ":") && !strings.HasSuffix(endpoint, "amazonaws.com") {
		// default to MinIO API port when not supplied explicitly
		endpoint = fmt.Sprintf("%s:9000", endpoint)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	return client, nil
}

// ClassifyMinIO maps an S3 error response onto a storeerr failure class.
func ClassifyMinIO(err error) error {
	var resp minio.ErrorResponse
	if !errors.As(err, &resp) {
		return storeerr.ErrProvider
	}

	switch resp.Code {
	case "NoSuchBucket", "NoSuchKey", "NotFound", "AllAccessDisabled":
		return storeerr.ErrNotFound
	case "BucketNotEmpty":
		return storeerr.ErrNonEmptyContainer
	case "BucketAlreadyExists", "BucketAlreadyOwnedByYou", "InvalidBucketName":
		return storeerr.ErrNamingConflict
	default:
		return storeerr.ErrProvider
	}
}
