// Package presigned hands out time-limited direct links to stored objects.
package presigned

import (
	"context"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"github.com/abduss/photocat/internal/metrics"
	"github.com/abduss/photocat/internal/storage"
	"github.com/abduss/photocat/internal/storeerr"
)

// MaxTTL is the longest expiry S3 accepts for a presigned request.
const MaxTTL = 7 * 24 * time.Hour

type presigner interface {
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expires time.Duration, reqParams url.Values) (*url.URL, error)
	PresignedPutObject(ctx context.Context, bucketName, objectName string, expires time.Duration) (*url.URL, error)
}

// Link is a presigned URL and the moment it stops working.
type Link struct {
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Service struct {
	client  presigner
	ttl     time.Duration
	nowFunc func() time.Time
	log     *zap.Logger
}

func NewService(client presigner, ttl time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		client:  client,
		ttl:     ttl,
		nowFunc: time.Now,
		log:     log.Named("presigned"),
	}
}

// DefaultTTL is the expiry used when the caller does not choose one.
func (s *Service) DefaultTTL() time.Duration {
	return s.ttl
}

// GenerateGetURL links to an existing object. Presigning itself never
// contacts the store, so the object is checked first.
func (s *Service) GenerateGetURL(ctx context.Context, bucket, object string, ttl time.Duration) (link Link, err error) {
	defer func() { metrics.ObserveOperation("blob", "presign get", err) }()

	ttl, err = s.resolveTTL(bucket, object, ttl)
	if err != nil {
		return Link{}, err
	}

	target := bucket + "/" + object
	if _, err := s.client.StatObject(ctx, bucket, object, minio.StatObjectOptions{}); err != nil {
		return Link{}, storeerr.New(storage.ClassifyMinIO(err), "presign get", target, err)
	}

	u, err := s.client.PresignedGetObject(ctx, bucket, object, ttl, make(url.Values))
	if err != nil {
		return Link{}, storeerr.New(storeerr.ErrProvider, "presign get", target, err)
	}

	s.log.Debug("issued get link", zap.String("bucket", bucket), zap.String("key", object), zap.Duration("ttl", ttl))
	return Link{URL: u.String(), Method: "GET", ExpiresAt: s.nowFunc().Add(ttl)}, nil
}

// GeneratePutURL links to an upload of (bucket, object).
func (s *Service) GeneratePutURL(ctx context.Context, bucket, object string, ttl time.Duration) (link Link, err error) {
	defer func() { metrics.ObserveOperation("blob", "presign put", err) }()

	ttl, err = s.resolveTTL(bucket, object, ttl)
	if err != nil {
		return Link{}, err
	}

	u, err := s.client.PresignedPutObject(ctx, bucket, object, ttl)
	if err != nil {
		return Link{}, storeerr.New(storeerr.ErrProvider, "presign put", bucket+"/"+object, err)
	}

	s.log.Debug("issued put link", zap.String("bucket", bucket), zap.String("key", object), zap.Duration("ttl", ttl))
	return Link{URL: u.String(), Method: "PUT", ExpiresAt: s.nowFunc().Add(ttl)}, nil
}

func (s *Service) resolveTTL(bucket, object string, ttl time.Duration) (time.Duration, error) {
	target := bucket + "/" + object
	if bucket == "" || object == "" {
		return 0, storeerr.Validation("presign", target, "bucket and key required")
	}
	if ttl == 0 {
		ttl = s.ttl
	}
	if ttl < time.Second || ttl > MaxTTL {
		return 0, storeerr.Validation("presign", target, "ttl must be between 1s and 168h")
	}
	return ttl, nil
}
