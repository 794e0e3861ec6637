package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/wattwise/bill-ingest-service/internal/models"
)

var Client *minio.Client
var BucketName string

// Init connects to MinIO and makes sure the bill bucket exists
func Init(cfg models.StorageConfig) error {
	if cfg.Endpoint == "" {
		return fmt.Errorf("no storage endpoint configured")
	}

	BucketName = cfg.Bucket
	if BucketName == "" {
		BucketName = "bills"
	}

	var err error
	Client, err = minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %w", err)
	}

	// Verify bucket exists
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := Client.BucketExists(ctx, BucketName)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := Client.MakeBucket(ctx, BucketName, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", BucketName, err)
		}
	}

	return nil
}

// Enabled reports whether Init succeeded
func Enabled() bool {
	return Client != nil
}

// UploadBillDocument stores the original upload so a failed call can be retried
// Path format: YYYY/MM/{filename}
func UploadBillDocument(ctx context.Context, filename string, reader io.Reader, size int64, contentType string) (string, error) {
	now := time.Now()
	objectName := fmt.Sprintf("%d/%02d/%s",
		now.Year(),
		now.Month(),
		filename,
	)

	_, err := Client.PutObject(ctx, BucketName, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload document: %w", err)
	}

	// The file ref handed back to clients for retries
	return fmt.Sprintf("%s/%s", BucketName, objectName), nil
}

// GetPresignedURL generates a presigned URL the vision model can read
func GetPresignedURL(ctx context.Context, objectPath string) (string, error) {
	url, err := Client.PresignedGetObject(ctx, BucketName, objectName(objectPath), 1*time.Hour, nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return url.String(), nil
}

func fetchObject(ctx context.Context, ref string) (*models.Document, error) {
	name := objectName(ref)
	obj, err := Client.GetObject(ctx, BucketName, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer obj.Close()

	info, err := obj.Stat()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", models.ErrFileNotFound, ref, err)
	}

	if info.Size > maxFetchBytes {
		return nil, fmt.Errorf("object %s exceeds %d bytes", ref, maxFetchBytes)
	}
	data, err := readLimited(obj, maxFetchBytes)
	if err != nil {
		return nil, err
	}

	return &models.Document{
		Name:        baseName(name),
		ContentType: ResolveContentType(info.ContentType, name),
		Data:        data,
	}, nil
}

// objectName removes the bucket prefix if present
func objectName(objectPath string) string {
	if len(objectPath) > len(BucketName)+1 && objectPath[:len(BucketName)+1] == BucketName+"/" {
		return objectPath[len(BucketName)+1:]
	}
	return objectPath
}
