package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"github.com/abduss/photocat/internal/metrics"
	"github.com/abduss/photocat/internal/storage"
	"github.com/abduss/photocat/internal/storeerr"
)

const defaultContentType = "application/octet-stream"

type objectStore interface {
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	CopyObject(ctx context.Context, dst minio.CopyDestOptions, src minio.CopySrcOptions) (minio.UploadInfo, error)
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

// Service manages object lifecycle operations.
type Service struct {
	store objectStore
	log   *zap.Logger
}

// NewService constructs a file service.
func NewService(store objectStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log.Named("file")}
}

// Put stores src under (bucket, key), replacing any existing object. A path
// source is opened and checked before the provider is contacted, so an
// unreadable file never produces a partial object.
func (s *Service) Put(ctx context.Context, bucket, key string, src Source) (obj Object, err error) {
	defer func() { metrics.ObserveOperation("blob", "put object", err) }()

	target := objectTarget(bucket, key)
	if err := validateAddress("put object", bucket, key); err != nil {
		return Object{}, err
	}

	reader, size, closeSource, err := src.open()
	if err != nil {
		return Object{}, s.localFailure("put object", target, err)
	}
	defer closeSource()

	contentType := detectContentType(key)
	info, err := s.store.PutObject(ctx, bucket, key, reader, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return Object{}, s.providerFailure("put object", target, err)
	}

	if info.Size > 0 {
		size = info.Size
	}
	s.log.Info("object stored",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.Stringer("source", src),
		zap.Int64("size", size),
	)
	return Object{
		Bucket:       bucket,
		Key:          key,
		SizeBytes:    size,
		ContentType:  contentType,
		ETag:         info.ETag,
		LastModified: info.LastModified,
	}, nil
}

// Get streams (bucket, key) into destination. The remote object is resolved
// before the destination is created; a failed transfer removes the partial file.
func (s *Service) Get(ctx context.Context, bucket, key, destination string) (err error) {
	defer func() { metrics.ObserveOperation("blob", "get object", err) }()

	target := objectTarget(bucket, key)
	if err := validateAddress("get object", bucket, key); err != nil {
		return err
	}
	if strings.TrimSpace(destination) == "" {
		return storeerr.Validation("get object", target, "destination path required")
	}

	reader, err := s.store.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return s.providerFailure("get object", target, err)
	}
	defer reader.Close()

	out, err := os.Create(destination)
	if err != nil {
		return s.localFailure("get object", destination, err)
	}

	dst := &recordingWriter{w: out}
	_, copyErr := io.Copy(dst, reader)
	closeErr := out.Close()

	switch {
	case dst.err != nil:
		err = s.localFailure("get object", destination, dst.err)
	case copyErr != nil:
		err = s.providerFailure("get object", target, copyErr)
	case closeErr != nil:
		err = s.localFailure("get object", destination, closeErr)
	}
	if err != nil {
		if rmErr := os.Remove(destination); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			s.log.Warn("partial download left behind", zap.String("path", destination), zap.Error(rmErr))
		}
		return err
	}

	s.log.Info("object fetched",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.String("destination", destination),
	)
	return nil
}

// Delete removes (bucket, key). A missing object is reported as not found
// rather than silently succeeding.
func (s *Service) Delete(ctx context.Context, bucket, key string) (err error) {
	defer func() { metrics.ObserveOperation("blob", "delete object", err) }()

	target := objectTarget(bucket, key)
	if err := validateAddress("delete object", bucket, key); err != nil {
		return err
	}

	if _, err := s.store.StatObject(ctx, bucket, key, minio.StatObjectOptions{}); err != nil {
		return s.providerFailure("delete object", target, err)
	}
	if err := s.store.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return s.providerFailure("delete object", target, err)
	}

	s.log.Info("object deleted", zap.String("bucket", bucket), zap.String("key", key))
	return nil
}

// Copy duplicates (srcBucket, key) into dstBucket under the same key,
// overwriting an existing object there.
func (s *Service) Copy(ctx context.Context, srcBucket, key, dstBucket string) (err error) {
	defer func() { metrics.ObserveOperation("blob", "copy object", err) }()

	target := objectTarget(srcBucket, key) + " -> " + dstBucket
	if err := validateAddress("copy object", srcBucket, key); err != nil {
		return err
	}
	if strings.TrimSpace(dstBucket) == "" {
		return storeerr.Validation("copy object", target, "destination bucket required")
	}

	_, err = s.store.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: dstBucket, Object: key},
		minio.CopySrcOptions{Bucket: srcBucket, Object: key},
	)
	if err != nil {
		return s.providerFailure("copy object", target, err)
	}

	s.log.Info("object copied",
		zap.String("source_bucket", srcBucket),
		zap.String("destination_bucket", dstBucket),
		zap.String("key", key),
	)
	return nil
}

// List returns the objects in bucket. An empty bucket yields an empty slice;
// only an inaccessible or missing bucket is an error.
func (s *Service) List(ctx context.Context, bucket string) (objects []Object, err error) {
	defer func() { metrics.ObserveOperation("blob", "list objects", err) }()

	if strings.TrimSpace(bucket) == "" {
		return nil, storeerr.Validation("list objects", "", "bucket name required")
	}

	// cancelling stops the listing goroutine when we return early
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	objects = []Object{}
	for info := range s.store.ListObjects(ctx, bucket, minio.ListObjectsOptions{Recursive: true}) {
		if info.Err != nil {
			return nil, s.providerFailure("list objects", bucket, info.Err)
		}
		objects = append(objects, Object{
			Bucket:       bucket,
			Key:          info.Key,
			SizeBytes:    info.Size,
			ContentType:  info.ContentType,
			ETag:         info.ETag,
			LastModified: info.LastModified,
		})
	}
	return objects, nil
}

func (s *Service) localFailure(op, target string, err error) error {
	s.log.Error("local i/o failure", zap.String("op", op), zap.String("path", target), zap.Error(err))
	return storeerr.New(storeerr.ErrLocalIO, op, target, err)
}

func (s *Service) providerFailure(op, target string, err error) error {
	classified := storeerr.New(storage.ClassifyMinIO(err), op, target, err)
	s.log.Error("object operation failed",
		zap.String("op", op),
		zap.String("target", target),
		zap.String("kind", storeerr.Label(classified)),
		zap.Error(err),
	)
	return classified
}

// recordingWriter remembers the first write error so a failed copy can be
// attributed to the local side rather than the remote stream.
type recordingWriter struct {
	w   io.Writer
	err error
}

func (r *recordingWriter) Write(p []byte) (int, error) {
	n, err := r.w.Write(p)
	if err != nil && r.err == nil {
		r.err = err
	}
	return n, err
}

func validateAddress(op, bucket, key string) error {
	if strings.TrimSpace(bucket) == "" {
		return storeerr.Validation(op, objectTarget(bucket, key), "bucket name required")
	}
	if strings.TrimSpace(key) == "" {
		return storeerr.Validation(op, objectTarget(bucket, key), "object key required")
	}
	return nil
}

func objectTarget(bucket, key string) string {
	return fmt.Sprintf("%s/%s", bucket, key)
}

func detectContentType(key string) string {
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(key))); ct != "" {
		return ct
	}
	return defaultContentType
}
