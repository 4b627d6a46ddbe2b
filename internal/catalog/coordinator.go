// Package catalog composes the blob and metadata adapters into the operator
// use cases behind the menu and the HTTP command endpoint.
//
// The coordinator owns no state: every use case is a fresh sequence of
// adapter calls, issued one after another, and errors are returned exactly as
// the adapters produced them.
//
// Storing an object and upserting its metadata are independent calls against
// two services. When one succeeds and the other fails the blob and the
// metadata table disagree, and nothing here reconciles them.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abduss/photocat/internal/bucket"
	"github.com/abduss/photocat/internal/file"
	"github.com/abduss/photocat/internal/ingest"
	"github.com/abduss/photocat/internal/photo"
	"github.com/abduss/photocat/internal/storeerr"
)

// Buckets is the bucket side of the blob store.
type Buckets interface {
	CreateBucket(ctx context.Context, base string) (bucket.Bucket, error)
	ListBuckets(ctx context.Context) ([]bucket.Bucket, error)
	DeleteBucket(ctx context.Context, name string) error
}

// Objects is the object side of the blob store.
type Objects interface {
	Put(ctx context.Context, bucketName, key string, src file.Source) (file.Object, error)
	Get(ctx context.Context, bucketName, key, destination string) error
	Delete(ctx context.Context, bucketName, key string) error
	Copy(ctx context.Context, srcBucket, key, dstBucket string) error
	List(ctx context.Context, bucketName string) ([]file.Object, error)
}

// Ingester refreshes the metadata table from a description file.
type Ingester interface {
	RunFile(ctx context.Context, path string) (ingest.Report, error)
}

// Coordinator runs the operator use cases.
type Coordinator struct {
	buckets         Buckets
	objects         Objects
	records         photo.Repository
	ingester        Ingester
	descriptionFile string
	log             *zap.Logger
}

// New constructs a Coordinator. descriptionFile is the source used by
// RefreshMetadata.
func New(buckets Buckets, objects Objects, records photo.Repository, ingester Ingester, descriptionFile string, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		buckets:         buckets,
		objects:         objects,
		records:         records,
		ingester:        ingester,
		descriptionFile: descriptionFile,
		log:             log.Named("catalog"),
	}
}

// NewContainer creates a bucket and lists all buckets so the new one can be
// confirmed. The generated name is always reported.
func (c *Coordinator) NewContainer(ctx context.Context, p Prompter) error {
	base, err := p.Ask(ctx, FieldBaseName)
	if err != nil {
		return err
	}

	created, err := c.buckets.CreateBucket(ctx, base)
	if err != nil {
		return err
	}
	p.Notify(fmt.Sprintf("bucket %s created", created.Name))

	_, err = c.showBuckets(ctx, p)
	return err
}

// StoreObject uploads a local file into a chosen bucket.
func (c *Coordinator) StoreObject(ctx context.Context, p Prompter) error {
	if _, err := c.showBuckets(ctx, p); err != nil {
		return err
	}

	bucketName, err := p.Ask(ctx, FieldBucket)
	if err != nil {
		return err
	}
	key, err := p.Ask(ctx, FieldKey)
	if err != nil {
		return err
	}
	localPath, err := p.Ask(ctx, FieldLocalPath)
	if err != nil {
		return err
	}

	obj, err := c.objects.Put(ctx, bucketName, key, file.FromPath(localPath))
	if err != nil {
		c.log.Warn("store object failed", zap.String("bucket", bucketName), zap.String("key", key), zap.Error(err))
		return err
	}

	c.log.Info("object stored", zap.String("bucket", obj.Bucket), zap.String("key", obj.Key), zap.Int64("size", obj.SizeBytes))
	p.Notify(fmt.Sprintf("object %s placed in %s", obj.Key, obj.Bucket))
	return nil
}

// StorePayload uploads an in-memory payload.
func (c *Coordinator) StorePayload(ctx context.Context, bucketName, key string, data []byte) (file.Object, error) {
	obj, err := c.objects.Put(ctx, bucketName, key, file.FromBytes(data))
	if err != nil {
		c.log.Warn("store payload failed", zap.String("bucket", bucketName), zap.String("key", key), zap.Error(err))
		return file.Object{}, err
	}

	c.log.Info("payload stored", zap.String("bucket", obj.Bucket), zap.String("key", obj.Key), zap.Int64("size", obj.SizeBytes))
	return obj, nil
}

// RemoveObject lets the operator pick a bucket and one of its keys, then
// deletes that object.
func (c *Coordinator) RemoveObject(ctx context.Context, p Prompter) error {
	bucketName, err := c.pickBucket(ctx, p, FieldBucket)
	if err != nil {
		return err
	}
	if _, err := c.showObjects(ctx, p, bucketName); err != nil {
		return err
	}

	key, err := p.Ask(ctx, FieldKey)
	if err != nil {
		return err
	}
	if err := c.objects.Delete(ctx, bucketName, key); err != nil {
		return err
	}

	p.Notify(fmt.Sprintf("object %s deleted from %s", key, bucketName))
	return nil
}

// RemoveContainer deletes a bucket. A bucket that still holds objects is
// reported with its own notice before the error is returned.
func (c *Coordinator) RemoveContainer(ctx context.Context, p Prompter) error {
	bucketName, err := c.pickBucket(ctx, p, FieldBucket)
	if err != nil {
		return err
	}

	if err := c.buckets.DeleteBucket(ctx, bucketName); err != nil {
		if errors.Is(err, storeerr.ErrNonEmptyContainer) {
			p.Notify(fmt.Sprintf("bucket %s still holds objects; delete them first", bucketName))
		}
		return err
	}

	p.Notify(fmt.Sprintf("bucket %s deleted", bucketName))
	return nil
}

// DuplicateObject copies an object to another bucket under the same key.
func (c *Coordinator) DuplicateObject(ctx context.Context, p Prompter) error {
	source, err := c.pickBucket(ctx, p, FieldSourceBucket)
	if err != nil {
		return err
	}
	destination, err := p.Ask(ctx, FieldDestinationBucket)
	if err != nil {
		return err
	}
	if _, err := c.showObjects(ctx, p, source); err != nil {
		return err
	}

	key, err := p.Ask(ctx, FieldKey)
	if err != nil {
		return err
	}
	if err := c.objects.Copy(ctx, source, key, destination); err != nil {
		return err
	}

	p.Notify(fmt.Sprintf("object %s copied from %s to %s", key, source, destination))
	return nil
}

// FetchObject downloads an object to a local path.
func (c *Coordinator) FetchObject(ctx context.Context, p Prompter) error {
	bucketName, err := c.pickBucket(ctx, p, FieldBucket)
	if err != nil {
		return err
	}
	if _, err := c.showObjects(ctx, p, bucketName); err != nil {
		return err
	}

	key, err := p.Ask(ctx, FieldKey)
	if err != nil {
		return err
	}
	destination, err := p.Ask(ctx, FieldDestinationPath)
	if err != nil {
		return err
	}
	if err := c.objects.Get(ctx, bucketName, key, destination); err != nil {
		return err
	}

	p.Notify(fmt.Sprintf("object %s saved to %s", key, destination))
	return nil
}

// SearchMetadata looks up records by exact photo number. An empty number is
// rejected before the table is touched. No match and a match produce
// different notices.
func (c *Coordinator) SearchMetadata(ctx context.Context, p Prompter) error {
	number, err := p.Ask(ctx, FieldPhotoNumber)
	if err != nil {
		return err
	}

	records, err := c.FindRecords(ctx, number)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		p.Notify(fmt.Sprintf("no records found for photo number %s", number))
		return nil
	}
	p.Notify(fmt.Sprintf("found %d record(s) for photo number %s", len(records), number))
	p.ShowRecords(records)
	return nil
}

// FindRecords validates number and returns the matching records.
func (c *Coordinator) FindRecords(ctx context.Context, number string) ([]photo.Record, error) {
	if strings.TrimSpace(number) == "" {
		return nil, storeerr.Validation("search metadata", "", "you need to enter something to search")
	}
	return c.records.FindByPhotoNumber(ctx, number)
}

// RefreshMetadata re-ingests the configured description file. Individual
// entries that fail are listed in the report; they do not fail the command.
func (c *Coordinator) RefreshMetadata(ctx context.Context, p Prompter) error {
	report, err := c.ingester.RunFile(ctx, c.descriptionFile)
	if err != nil {
		return err
	}

	p.ShowReport(report)
	failed := report.Failed()
	if len(failed) > 0 {
		p.Notify(fmt.Sprintf("metadata updated with %d failed entries", len(failed)))
	} else {
		p.Notify("metadata updated")
	}

	c.log.Info("metadata refreshed",
		zap.String("run_id", report.RunID),
		zap.Int("succeeded", len(report.Succeeded())),
		zap.Int("failed", len(failed)),
	)
	return nil
}

func (c *Coordinator) showBuckets(ctx context.Context, p Prompter) ([]bucket.Bucket, error) {
	buckets, err := c.buckets.ListBuckets(ctx)
	if err != nil {
		return nil, err
	}
	p.ShowBuckets(buckets)
	return buckets, nil
}

func (c *Coordinator) showObjects(ctx context.Context, p Prompter, bucketName string) ([]file.Object, error) {
	objects, err := c.objects.List(ctx, bucketName)
	if err != nil {
		return nil, err
	}
	p.ShowObjects(bucketName, objects)
	return objects, nil
}

func (c *Coordinator) pickBucket(ctx context.Context, p Prompter, f Field) (string, error) {
	if _, err := c.showBuckets(ctx, p); err != nil {
		return "", err
	}
	return p.Ask(ctx, f)
}
