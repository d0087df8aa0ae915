// Package storage wraps an S3-compatible object store for image assets.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"

	"github.com/potonglab/barbershop/config"
)

// ObjectStore is the gateway surface the rest of the application consumes.
type ObjectStore interface {
	Upload(ctx context.Context, folder, filename string, reader io.Reader, size int64, contentType string) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
}

type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

type Gateway struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func NewGateway(cfg config.StorageConfig) (*Gateway, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "storage client")
	}
	return &Gateway{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
	}, nil
}

// Upload stores the payload under folder/<uuid>.<ext> and returns the
// public URL plus the storage key needed for a later delete.
func (g *Gateway) Upload(ctx context.Context, folder, filename string, reader io.Reader, size int64, contentType string) (*UploadResult, error) {
	ext := strings.ToLower(path.Ext(filename))
	key := fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), ext)

	_, err := g.client.PutObject(ctx, g.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, errors.Wrap(err, "upload object")
	}

	return &UploadResult{
		URL: fmt.Sprintf("%s/%s", g.publicURL, key),
		Key: key,
	}, nil
}

func (g *Gateway) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	err := g.client.RemoveObject(ctx, g.bucket, key, minio.RemoveObjectOptions{})
	return errors.Wrap(err, "delete object")
}
