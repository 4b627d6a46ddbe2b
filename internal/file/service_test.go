package file

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abduss/photocat/internal/storeerr"
)

func TestPutBytesThenGet(t *testing.T) {
	store := newFakeObjectStore("photos-100000")
	service := NewService(store, nil)

	obj, err := service.Put(context.Background(), "photos-100000", "cat.jpg", FromBytes([]byte("meow")))
	require.NoError(t, err)
	assert.Equal(t, int64(4), obj.SizeBytes)
	assert.Equal(t, "image/jpeg", obj.ContentType)

	dest := filepath.Join(t.TempDir(), "cat.jpg")
	require.NoError(t, service.Get(context.Background(), "photos-100000", "cat.jpg", dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "meow", string(data))
}

func TestPutFromPathStreamsFile(t *testing.T) {
	store := newFakeObjectStore("photos-100000")
	service := NewService(store, nil)

	src := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(src, []byte("hello world"), 0o600))

	obj, err := service.Put(context.Background(), "photos-100000", "notes.txt", FromPath(src))
	require.NoError(t, err)
	assert.Equal(t, int64(11), obj.SizeBytes)
	assert.Equal(t, []byte("hello world"), store.buckets["photos-100000"]["notes.txt"])
}

func TestPutMissingLocalFileMakesNoProviderCall(t *testing.T) {
	store := newFakeObjectStore("photos-100000")
	service := NewService(store, nil)

	_, err := service.Put(context.Background(), "photos-100000", "a.jpg", FromPath(filepath.Join(t.TempDir(), "missing.jpg")))
	require.ErrorIs(t, err, storeerr.ErrLocalIO)
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Zero(t, store.putCalls)
	assert.Empty(t, store.buckets["photos-100000"])
}

func TestPutDirectoryIsLocalFailure(t *testing.T) {
	store := newFakeObjectStore("photos-100000")
	service := NewService(store, nil)

	_, err := service.Put(context.Background(), "photos-100000", "a.jpg", FromPath(t.TempDir()))
	require.ErrorIs(t, err, storeerr.ErrLocalIO)
	assert.Zero(t, store.putCalls)
}

func TestPutProviderFailureIsDistinctFromLocal(t *testing.T) {
	store := newFakeObjectStore()
	service := NewService(store, nil)

	_, err := service.Put(context.Background(), "ghost-000000", "a.jpg", FromBytes([]byte("x")))
	require.ErrorIs(t, err, storeerr.ErrNotFound)
	assert.NotErrorIs(t, err, storeerr.ErrLocalIO)
	assert.Contains(t, err.Error(), "ghost-000000/a.jpg")
}

func TestPutRejectsEmptyKey(t *testing.T) {
	store := newFakeObjectStore("photos-100000")
	service := NewService(store, nil)

	_, err := service.Put(context.Background(), "photos-100000", " ", FromBytes(nil))
	require.ErrorIs(t, err, storeerr.ErrValidation)
	assert.Zero(t, store.putCalls)
}

func TestGetMissingObjectCreatesNoFile(t *testing.T) {
	service := NewService(newFakeObjectStore("photos-100000"), nil)

	dest := filepath.Join(t.TempDir(), "out.jpg")
	err := service.Get(context.Background(), "photos-100000", "nope.jpg", dest)
	require.ErrorIs(t, err, storeerr.ErrNotFound)

	_, statErr := os.Stat(dest)
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestGetUnwritableDestination(t *testing.T) {
	store := newFakeObjectStore("photos-100000")
	store.buckets["photos-100000"]["cat.jpg"] = []byte("meow")
	service := NewService(store, nil)

	dest := filepath.Join(t.TempDir(), "no-such-dir", "cat.jpg")
	err := service.Get(context.Background(), "photos-100000", "cat.jpg", dest)
	require.ErrorIs(t, err, storeerr.ErrLocalIO)
	assert.Zero(t, store.openReaders)
}

func TestGetInterruptedStreamRemovesPartialFile(t *testing.T) {
	store := newFakeObjectStore("photos-100000")
	store.buckets["photos-100000"]["big.raw"] = []byte("partial")
	store.readErr = minio.ErrorResponse{Code: "InternalError", Message: "connection reset"}
	service := NewService(store, nil)

	dest := filepath.Join(t.TempDir(), "big.raw")
	err := service.Get(context.Background(), "photos-100000", "big.raw", dest)
	require.ErrorIs(t, err, storeerr.ErrProvider)

	_, statErr := os.Stat(dest)
	assert.ErrorIs(t, statErr, os.ErrNotExist)
	assert.Zero(t, store.openReaders)
}

func TestDeleteObject(t *testing.T) {
	store := newFakeObjectStore("photos-100000")
	store.buckets["photos-100000"]["cat.jpg"] = []byte("meow")
	service := NewService(store, nil)

	require.NoError(t, service.Delete(context.Background(), "photos-100000", "cat.jpg"))
	assert.NotContains(t, store.buckets["photos-100000"], "cat.jpg")

	err := service.Delete(context.Background(), "photos-100000", "cat.jpg")
	require.ErrorIs(t, err, storeerr.ErrNotFound)
}

func TestCopyOverwritesDestination(t *testing.T) {
	store := newFakeObjectStore("src-111111", "dst-222222")
	store.buckets["src-111111"]["cat.jpg"] = []byte("new")
	store.buckets["dst-222222"]["cat.jpg"] = []byte("old")
	service := NewService(store, nil)

	require.NoError(t, service.Copy(context.Background(), "src-111111", "cat.jpg", "dst-222222"))
	assert.Equal(t, []byte("new"), store.buckets["dst-222222"]["cat.jpg"])
	assert.Equal(t, []byte("new"), store.buckets["src-111111"]["cat.jpg"])
}

func TestCopyMissingSource(t *testing.T) {
	service := NewService(newFakeObjectStore("src-111111", "dst-222222"), nil)

	err := service.Copy(context.Background(), "src-111111", "nope.jpg", "dst-222222")
	require.ErrorIs(t, err, storeerr.ErrNotFound)
}

func TestListObjects(t *testing.T) {
	store := newFakeObjectStore("photos-100000", "empty-000001")
	store.buckets["photos-100000"]["b.jpg"] = []byte("b")
	store.buckets["photos-100000"]["a.jpg"] = []byte("aa")
	service := NewService(store, nil)

	objects, err := service.List(context.Background(), "photos-100000")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, Keys(objects))
	assert.Equal(t, int64(2), objects[0].SizeBytes)

	empty, err := service.List(context.Background(), "empty-000001")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestListMissingBucket(t *testing.T) {
	service := NewService(newFakeObjectStore(), nil)

	_, err := service.List(context.Background(), "ghost-000000")
	require.ErrorIs(t, err, storeerr.ErrNotFound)
}

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "image/png", detectContentType("x/y/photo.PNG"))
	assert.Equal(t, defaultContentType, detectContentType("README"))
}

// --- fakes ----

type fakeObjectStore struct {
	buckets     map[string]map[string][]byte
	putCalls    int
	openReaders int
	readErr     error
}

func newFakeObjectStore(buckets ...string) *fakeObjectStore {
	store := &fakeObjectStore{buckets: make(map[string]map[string][]byte)}
	for _, name := range buckets {
		store.buckets[name] = make(map[string][]byte)
	}
	return store
}

func noSuchBucket(name string) error {
	return minio.ErrorResponse{Code: "NoSuchBucket", BucketName: name}
}

func noSuchKey(bucket, key string) error {
	return minio.ErrorResponse{Code: "NoSuchKey", BucketName: bucket, Key: key}
}

func (f *fakeObjectStore) PutObject(_ context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	f.putCalls++
	objects, ok := f.buckets[bucketName]
	if !ok {
		return minio.UploadInfo{}, noSuchBucket(bucketName)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	objects[objectName] = data
	return minio.UploadInfo{Bucket: bucketName, Key: objectName, Size: int64(len(data)), ETag: "etag", LastModified: time.Now()}, nil
}

func (f *fakeObjectStore) GetObject(_ context.Context, bucketName, objectName string, _ minio.GetObjectOptions) (io.ReadCloser, error) {
	objects, ok := f.buckets[bucketName]
	if !ok {
		return nil, noSuchBucket(bucketName)
	}
	data, ok := objects[objectName]
	if !ok {
		return nil, noSuchKey(bucketName, objectName)
	}
	f.openReaders++
	var reader io.Reader = bytes.NewReader(data)
	if f.readErr != nil {
		reader = io.MultiReader(reader, &failingReader{err: f.readErr})
	}
	return &trackedReader{Reader: reader, store: f}, nil
}

func (f *fakeObjectStore) StatObject(_ context.Context, bucketName, objectName string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	objects, ok := f.buckets[bucketName]
	if !ok {
		return minio.ObjectInfo{}, noSuchBucket(bucketName)
	}
	data, ok := objects[objectName]
	if !ok {
		return minio.ObjectInfo{}, noSuchKey(bucketName, objectName)
	}
	return minio.ObjectInfo{Key: objectName, Size: int64(len(data))}, nil
}

func (f *fakeObjectStore) RemoveObject(_ context.Context, bucketName, objectName string, _ minio.RemoveObjectOptions) error {
	objects, ok := f.buckets[bucketName]
	if !ok {
		return noSuchBucket(bucketName)
	}
	delete(objects, objectName)
	return nil
}

func (f *fakeObjectStore) CopyObject(_ context.Context, dst minio.CopyDestOptions, src minio.CopySrcOptions) (minio.UploadInfo, error) {
	srcObjects, ok := f.buckets[src.Bucket]
	if !ok {
		return minio.UploadInfo{}, noSuchBucket(src.Bucket)
	}
	data, ok := srcObjects[src.Object]
	if !ok {
		return minio.UploadInfo{}, noSuchKey(src.Bucket, src.Object)
	}
	dstObjects, ok := f.buckets[dst.Bucket]
	if !ok {
		return minio.UploadInfo{}, noSuchBucket(dst.Bucket)
	}
	dstObjects[dst.Object] = append([]byte(nil), data...)
	return minio.UploadInfo{Bucket: dst.Bucket, Key: dst.Object, Size: int64(len(data))}, nil
}

func (f *fakeObjectStore) ListObjects(ctx context.Context, bucketName string, _ minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	ch := make(chan minio.ObjectInfo, 1)
	go func() {
		defer close(ch)
		objects, ok := f.buckets[bucketName]
		if !ok {
			ch <- minio.ObjectInfo{Err: noSuchBucket(bucketName)}
			return
		}
		keys := make([]string, 0, len(objects))
		for key := range objects {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			select {
			case ch <- minio.ObjectInfo{Key: key, Size: int64(len(objects[key]))}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

type trackedReader struct {
	io.Reader
	store *fakeObjectStore
}

func (r *trackedReader) Close() error {
	r.store.openReaders--
	return nil
}

type failingReader struct {
	err error
}

func (r *failingReader) Read([]byte) (int, error) {
	return 0, r.err
}
