package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"Blockbuster/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var (
	minioClient *minio.Client
	bucket      string
)

// InitMinio initializes the MinIO client and ensures the bucket exists.
func InitMinio(cfg *config.Config) error {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
		Region: cfg.MinioRegion,
	})
	if err != nil {
		return fmt.Errorf("failed to create MinIO client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{Region: cfg.MinioRegion}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
		log.Printf("Created bucket: %s", cfg.MinioBucket)
	}

	minioClient = client
	bucket = cfg.MinioBucket
	return nil
}

// UploadCover stores a cover-art image under the covers/ prefix and returns
// its object path.
func UploadCover(ctx context.Context, entryID string, reader io.Reader, size int64, contentType string) (string, error) {
	if minioClient == nil {
		return "", fmt.Errorf("minio client not initialized")
	}
	objectPath := fmt.Sprintf("covers/%s.jpg", entryID)
	_, err := minioClient.PutObject(ctx, bucket, objectPath, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload cover: %w", err)
	}
	return objectPath, nil
}

// FetchObject opens an object for reading.
func FetchObject(ctx context.Context, objectPath string) (*minio.Object, error) {
	if minioClient == nil {
		return nil, fmt.Errorf("minio client not initialized")
	}
	return minioClient.GetObject(ctx, bucket, objectPath, minio.GetObjectOptions{})
}
