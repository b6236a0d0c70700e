// Package storage persists listing photos in S3-compatible object storage
// (MinIO). Uploaded objects are keyed by listing id plus a random name so
// concurrent uploads never collide; the returned public URL is what gets
// appended to the listing's imageUrls.
package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// PhotoStore wraps a MinIO client bound to a single bucket.
type PhotoStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// NewPhotoStore connects to MinIO and ensures the bucket exists. When
// publicURL is empty the store derives URLs from the endpoint itself.
func NewPhotoStore(endpoint, accessKey, secretKey, bucket, publicURL string, useSSL bool) (*PhotoStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	ctx := context.Background()
	if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
		exists, existsErr := client.BucketExists(ctx, bucket)
		if existsErr != nil || !exists {
			return nil, fmt.Errorf("make bucket %s: %w", bucket, err)
		}
	}

	if publicURL == "" {
		publicURL = client.EndpointURL().String()
	}
	return &PhotoStore{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
	}, nil
}

// Upload stores one photo under the listing's prefix and returns its
// public URL. The original filename only contributes its extension.
func (s *PhotoStore) Upload(ctx context.Context, listingID, filename string, r io.Reader, size int64, contentType string) (string, error) {
	key := fmt.Sprintf("%s/%s%s", listingID, uuid.New().String(), path.Ext(filename))
	_, err := s.client.PutObject(ctx, s.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		log.Printf("storage: upload %s/%s failed: %v", s.bucket, key, err)
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s", s.publicURL, s.bucket, key), nil
}
