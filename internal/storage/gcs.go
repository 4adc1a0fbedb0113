package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"docvault/internal/config"
)

// gcsStorage implements Storage on a Google Cloud Storage bucket.
type gcsStorage struct {
	client *gcs.Client
	bucket string
}

// NewGCS creates a Google Cloud Storage backed store. When CredentialsFile is empty the
// application default credentials are used.
func NewGCS(ctx context.Context, cfg config.GCSConfig) (Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs bucket is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		if _, err := os.Stat(cfg.CredentialsFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("service account key not found at path: %s", cfg.CredentialsFile)
		}
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}

	return &gcsStorage{client: client, bucket: cfg.Bucket}, nil
}

func (g *gcsStorage) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	if key == "" {
		return ObjectInfo{}, ErrInvalidKey
	}

	w := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	w.ContentType = opt.ContentType
	w.Metadata = opt.Metadata

	n, err := io.Copy(w, r)
	if err != nil {
		w.Close()
		return ObjectInfo{}, fmt.Errorf("copy to gcs object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return ObjectInfo{}, fmt.Errorf("close gcs writer for %s: %w", key, err)
	}

	attrs := w.Attrs()
	info := ObjectInfo{
		Key:         key,
		Size:        n,
		ContentType: opt.ContentType,
		Metadata:    opt.Metadata,
	}
	if attrs != nil {
		info.ETag = attrs.Etag
		info.LastModified = attrs.Updated
	}
	return info, nil
}

func (g *gcsStorage) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	if key == "" {
		return nil, ObjectInfo{}, ErrInvalidKey
	}

	rd, err := g.client.Bucket(g.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, ObjectInfo{}, ErrNotFound
		}
		return nil, ObjectInfo{}, fmt.Errorf("open gcs object %s: %w", key, err)
	}

	return rd, ObjectInfo{
		Key:          key,
		Size:         rd.Attrs.Size,
		ContentType:  rd.Attrs.ContentType,
		LastModified: rd.Attrs.LastModified,
	}, nil
}

func (g *gcsStorage) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidKey
	}
	err := g.client.Bucket(g.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("delete gcs object %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying client.
func (g *gcsStorage) Close() error {
	return g.client.Close()
}
