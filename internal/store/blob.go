package store

import (
	"context"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// Blob is a Store over a gocloud.dev/blob bucket, supporting local
// directories, S3, GCS, Azure Blob Storage, and S3-compatible stores
type Blob struct {
	bucket *blob.Bucket
	prefix string
}

var _ Store = (*Blob)(nil)

// NewBlob opens the bucket at bucketURL
func NewBlob(ctx context.Context, bucketURL, prefix string) (*Blob, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, err
	}
	return &Blob{bucket: bucket, prefix: prefix}, nil
}

func (b *Blob) Get(ctx context.Context, key string) (string, error) {
	data, err := b.bucket.ReadAll(ctx, b.keyFor(key))
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return "", ErrNotFound
		}
		return "", err
	}
	return string(data), nil
}

func (b *Blob) Set(ctx context.Context, key, value string) error {
	return b.bucket.WriteAll(ctx, b.keyFor(key), []byte(value), nil)
}

func (b *Blob) Delete(ctx context.Context, key string) error {
	err := b.bucket.Delete(ctx, b.keyFor(key))
	if err != nil && gcerrors.Code(err) == gcerrors.NotFound {
		return nil
	}
	return err
}

func (b *Blob) Close() error {
	return b.bucket.Close()
}

func (b *Blob) keyFor(key string) string {
	return b.prefix + key
}
