package publish

import (
	"context"
	"errors"
	"testing"

	miniogo "github.com/minio/minio-go/v7"

	"github.com/five82/panostitch/internal/discovery"
	coreerrors "github.com/five82/panostitch/internal/errors"
)

type fakeStore struct {
	exists     bool
	existsErr  error
	made       []string
	puts       []string
	types      []string
	failOnPut  int
	putCounter int
}

func (f *fakeStore) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeStore) MakeBucket(_ context.Context, bucket string, _ miniogo.MakeBucketOptions) error {
	f.made = append(f.made, bucket)
	return nil
}

func (f *fakeStore) FPutObject(_ context.Context, bucket, key, _ string, opts miniogo.PutObjectOptions) (miniogo.UploadInfo, error) {
	f.putCounter++
	if f.failOnPut > 0 && f.putCounter == f.failOnPut {
		return miniogo.UploadInfo{}, errors.New("connection reset")
	}
	f.puts = append(f.puts, key)
	f.types = append(f.types, opts.ContentType)
	return miniogo.UploadInfo{Bucket: bucket, Key: key, Size: 100}, nil
}

func frames(names ...string) []discovery.Frame {
	out := make([]discovery.Frame, len(names))
	for i, n := range names {
		out[i] = discovery.Frame{Path: "/out/" + n, Size: 100}
	}
	return out
}

func TestObjectKey(t *testing.T) {
	tests := []struct {
		prefix string
		want   string
	}{
		{"", "frame_0001.jpg"},
		{"trip", "trip/frame_0001.jpg"},
		{"/trip/day1/", "trip/day1/frame_0001.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			u := NewUploaderWithStore(&fakeStore{}, StorageConfig{Bucket: "b", Prefix: tt.prefix}, nil)
			if got := u.ObjectKey("/out/frame_0001.jpg"); got != tt.want {
				t.Errorf("ObjectKey() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestUploadFramesCreatesBucket(t *testing.T) {
	store := &fakeStore{}
	u := NewUploaderWithStore(store, StorageConfig{Bucket: "frames", Prefix: "run1"}, nil)

	result, err := u.UploadFrames(context.Background(), frames("a.jpg", "b.png"))
	if err != nil {
		t.Fatalf("UploadFrames() error = %v", err)
	}
	if len(store.made) != 1 || store.made[0] != "frames" {
		t.Errorf("made buckets = %v", store.made)
	}
	if result.Objects != 2 || result.Bytes != 200 {
		t.Errorf("result = %+v", result)
	}
	if store.puts[0] != "run1/a.jpg" || store.puts[1] != "run1/b.png" {
		t.Errorf("keys = %v", store.puts)
	}
	if store.types[0] != "image/jpeg" || store.types[1] != "image/png" {
		t.Errorf("content types = %v", store.types)
	}
}

func TestUploadFramesExistingBucket(t *testing.T) {
	store := &fakeStore{exists: true}
	u := NewUploaderWithStore(store, StorageConfig{Bucket: "frames"}, nil)

	if _, err := u.UploadFrames(context.Background(), frames("a.jpg")); err != nil {
		t.Fatalf("UploadFrames() error = %v", err)
	}
	if len(store.made) != 0 {
		t.Errorf("bucket should not be recreated: %v", store.made)
	}
}

func TestUploadFramesErrors(t *testing.T) {
	t.Run("bucket check", func(t *testing.T) {
		u := NewUploaderWithStore(&fakeStore{existsErr: errors.New("denied")}, StorageConfig{Bucket: "b"}, nil)
		_, err := u.UploadFrames(context.Background(), frames("a.jpg"))
		if !coreerrors.IsKind(err, coreerrors.KindUpload) {
			t.Errorf("error = %v, want KindUpload", err)
		}
	})

	t.Run("put stops at first failure", func(t *testing.T) {
		store := &fakeStore{exists: true, failOnPut: 2}
		u := NewUploaderWithStore(store, StorageConfig{Bucket: "b"}, nil)
		result, err := u.UploadFrames(context.Background(), frames("a.jpg", "b.jpg", "c.jpg"))
		if !coreerrors.IsKind(err, coreerrors.KindUpload) {
			t.Errorf("error = %v, want KindUpload", err)
		}
		if result.Objects != 1 || store.putCounter != 2 {
			t.Errorf("objects = %d, attempts = %d", result.Objects, store.putCounter)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		u := NewUploaderWithStore(&fakeStore{exists: true}, StorageConfig{Bucket: "b"}, nil)
		_, err := u.UploadFrames(ctx, frames("a.jpg"))
		if !coreerrors.IsCancelled(err) {
			t.Errorf("error = %v, want cancelled", err)
		}
	})
}

func TestNewUploaderInvalidEndpoint(t *testing.T) {
	_, err := NewUploader(StorageConfig{Endpoint: ""}, nil)
	if !coreerrors.IsKind(err, coreerrors.KindUpload) {
		t.Errorf("error = %v, want KindUpload", err)
	}
}
