// Package publish copies stitched frames to S3-compatible object storage.
package publish

import (
	"context"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/five82/panostitch/internal/discovery"
	coreerrors "github.com/five82/panostitch/internal/errors"
)

// ObjectStore is the subset of the MinIO client the uploader needs.
type ObjectStore interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts miniogo.MakeBucketOptions) error
	FPutObject(ctx context.Context, bucket, objectName, filePath string, opts miniogo.PutObjectOptions) (miniogo.UploadInfo, error)
}

// StorageConfig describes the object storage target.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Prefix    string
}

// Uploader puts frames into a bucket under a key prefix.
type Uploader struct {
	store    ObjectStore
	endpoint string
	bucket   string
	prefix   string
	logger   *zap.Logger
}

// Result summarises an upload.
type Result struct {
	Objects  int
	Bytes    uint64
	Duration time.Duration
	Keys     []string
}

// NewUploader connects to the configured endpoint.
func NewUploader(cfg StorageConfig, logger *zap.Logger) (*Uploader, error) {
	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, coreerrors.NewUploadError(fmt.Sprintf("create object storage client for %s", cfg.Endpoint), err)
	}
	return NewUploaderWithStore(client, cfg, logger), nil
}

// NewUploaderWithStore builds an uploader over an existing store.
func NewUploaderWithStore(store ObjectStore, cfg StorageConfig, logger *zap.Logger) *Uploader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Uploader{
		store:    store,
		endpoint: cfg.Endpoint,
		bucket:   cfg.Bucket,
		prefix:   strings.Trim(cfg.Prefix, "/"),
		logger:   logger,
	}
}

// Endpoint returns the storage endpoint.
func (u *Uploader) Endpoint() string { return u.endpoint }

// Bucket returns the target bucket.
func (u *Uploader) Bucket() string { return u.bucket }

// Prefix returns the normalised key prefix.
func (u *Uploader) Prefix() string { return u.prefix }

// EnsureBucket creates the target bucket if it does not exist.
func (u *Uploader) EnsureBucket(ctx context.Context) error {
	exists, err := u.store.BucketExists(ctx, u.bucket)
	if err != nil {
		return coreerrors.NewUploadError(fmt.Sprintf("check bucket %s", u.bucket), err)
	}
	if exists {
		return nil
	}
	if err := u.store.MakeBucket(ctx, u.bucket, miniogo.MakeBucketOptions{}); err != nil {
		return coreerrors.NewUploadError(fmt.Sprintf("create bucket %s", u.bucket), err)
	}
	u.logger.Info("created bucket", zap.String("bucket", u.bucket))
	return nil
}

// ObjectKey returns the key a local frame is stored under.
func (u *Uploader) ObjectKey(framePath string) string {
	name := filepath.Base(framePath)
	if u.prefix == "" {
		return name
	}
	return path.Join(u.prefix, name)
}

// UploadFrames puts every frame into the bucket. It stops at the first failure.
func (u *Uploader) UploadFrames(ctx context.Context, frames []discovery.Frame) (*Result, error) {
	start := time.Now()
	if err := u.EnsureBucket(ctx); err != nil {
		return nil, err
	}

	result := &Result{}
	for _, frame := range frames {
		if err := ctx.Err(); err != nil {
			return result, coreerrors.NewCancelledError()
		}

		key := u.ObjectKey(frame.Path)
		info, err := u.store.FPutObject(ctx, u.bucket, key, frame.Path, miniogo.PutObjectOptions{
			ContentType: contentType(frame.Path),
		})
		if err != nil {
			u.logger.Error("frame upload failed", zap.String("key", key), zap.Error(err))
			return result, coreerrors.NewUploadError(fmt.Sprintf("upload %s", key), err)
		}

		result.Objects++
		result.Bytes += uint64(info.Size)
		result.Keys = append(result.Keys, key)
		u.logger.Debug("uploaded frame", zap.String("key", key), zap.Int64("size", info.Size))
	}

	result.Duration = time.Since(start)
	u.logger.Info("frames uploaded",
		zap.String("bucket", u.bucket),
		zap.Int("count", result.Objects),
		zap.Uint64("bytes", result.Bytes),
	)
	return result, nil
}

func contentType(name string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		return t
	}
	return "application/octet-stream"
}
