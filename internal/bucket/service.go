package bucket

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"github.com/abduss/photocat/internal/metrics"
	"github.com/abduss/photocat/internal/storage"
	"github.com/abduss/photocat/internal/storeerr"
)

const (
	opTimeout = 30 * time.Second

	suffixMin = 100000
	suffixMax = 999999
)

// objectStore is the bucket-level subset of *minio.Client.
type objectStore interface {
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	RemoveBucket(ctx context.Context, bucketName string) error
}

// Service manages buckets in the blob store.
type Service struct {
	store  objectStore
	region string
	suffix func() int
	log    *zap.Logger
}

// NewService constructs a bucket service creating buckets in region.
func NewService(store objectStore, region string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:  store,
		region: region,
		suffix: randomSuffix,
		log:    log.Named("bucket"),
	}
}

func randomSuffix() int {
	return suffixMin + rand.IntN(suffixMax-suffixMin+1)
}

// CreateBucket creates a bucket named base plus a random six-digit suffix and
// returns the generated name. A rejected name is reported, never retried
// under a different name.
func (s *Service) CreateBucket(ctx context.Context, base string) (b Bucket, err error) {
	defer func() { metrics.ObserveOperation("blob", "create bucket", err) }()

	base = strings.TrimSpace(base)
	if base == "" {
		return Bucket{}, storeerr.Validation("create bucket", "", "bucket name required")
	}

	name := fmt.Sprintf("%s-%06d", base, s.suffix())

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := s.store.MakeBucket(ctx, name, minio.MakeBucketOptions{Region: s.region}); err != nil {
		return Bucket{}, s.fail("create bucket", name, err)
	}

	s.log.Info("bucket created", zap.String("bucket", name))
	return Bucket{Name: name, CreatedAt: time.Now().UTC()}, nil
}

// ListBuckets returns every bucket visible to the client. No buckets is not an error.
func (s *Service) ListBuckets(ctx context.Context) (buckets []Bucket, err error) {
	defer func() { metrics.ObserveOperation("blob", "list buckets", err) }()

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	infos, err := s.store.ListBuckets(ctx)
	if err != nil {
		return nil, s.fail("list buckets", "", err)
	}

	buckets = make([]Bucket, 0, len(infos))
	for _, info := range infos {
		buckets = append(buckets, Bucket{Name: info.Name, CreatedAt: info.CreationDate})
	}
	return buckets, nil
}

// DeleteBucket removes an empty bucket. A bucket that still holds objects is
// left in place and reported with storeerr.ErrNonEmptyContainer.
func (s *Service) DeleteBucket(ctx context.Context, name string) (err error) {
	defer func() { metrics.ObserveOperation("blob", "delete bucket", err) }()

	name = strings.TrimSpace(name)
	if name == "" {
		return storeerr.Validation("delete bucket", "", "bucket name required")
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := s.store.RemoveBucket(ctx, name); err != nil {
		return s.fail("delete bucket", name, err)
	}

	s.log.Info("bucket deleted", zap.String("bucket", name))
	return nil
}

func (s *Service) fail(op, target string, err error) error {
	classified := storeerr.New(storage.ClassifyMinIO(err), op, target, err)
	s.log.Error("bucket operation failed",
		zap.String("op", op),
		zap.String("bucket", target),
		zap.String("kind", storeerr.Label(classified)),
		zap.Error(err),
	)
	return classified
}
