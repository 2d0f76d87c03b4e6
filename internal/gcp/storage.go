package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	"github.com/lumilearn/documentflow/internal/services"
)

// NewStorageClient creates a Cloud Storage client.
func NewStorageClient(ctx context.Context) (*storage.Client, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return client, nil
}

// GCSBlobs implements the blob store over a single GCS bucket.
type GCSBlobs struct {
	client *storage.Client
	bucket string
}

// NewGCSBlobs creates a GCSBlobs over an existing client and bucket name.
func NewGCSBlobs(client *storage.Client, bucket string) *GCSBlobs {
	return &GCSBlobs{client: client, bucket: bucket}
}

func (b *GCSBlobs) Write(ctx context.Context, objectPath, contentType string, content io.Reader) error {
	writer := b.client.Bucket(b.bucket).Object(objectPath).NewWriter(ctx)
	if contentType != "" {
		writer.ContentType = contentType
	}

	if _, err := io.Copy(writer, content); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write object %s: %w", objectPath, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize object %s: %w", objectPath, err)
	}
	return nil
}

func (b *GCSBlobs) Delete(ctx context.Context, objectPath string) error {
	err := b.client.Bucket(b.bucket).Object(objectPath).Delete(ctx)
	if err != nil {
		if isNotFound(err) {
			return services.ErrBlobNotFound
		}
		return fmt.Errorf("failed to delete object %s: %w", objectPath, err)
	}
	return nil
}

func (b *GCSBlobs) Exists(ctx context.Context, objectPath string) (bool, error) {
	_, err := b.client.Bucket(b.bucket).Object(objectPath).Attrs(ctx)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat object %s: %w", objectPath, err)
	}
	return true, nil
}

// isNotFound covers both the sentinel the storage package returns and raw
// googleapi 404s that surface from some code paths.
func isNotFound(err error) bool {
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return true
	}
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}
