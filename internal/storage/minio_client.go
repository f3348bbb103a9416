package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"postboard/internal/config"
)

// Storage keeps avatar images. References handed out by UploadAvatar are object
// names; AvatarURL turns them into URLs a client can fetch.
type Storage interface {
	UploadAvatar(ctx context.Context, userID, fileName string, file io.Reader, size int64) (string, error)
	AvatarURL(ctx context.Context, ref string) (string, error)
}

type MinIOClient struct {
	client *minio.Client
	bucket string
	region string
	expiry time.Duration
}

func NewMinIOClient(cfg config.MinIO) (*MinIOClient, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	expiry := cfg.URLExpiry
	if expiry <= 0 || expiry > 7*24*time.Hour {
		expiry = 7 * 24 * time.Hour
	}

	return &MinIOClient{
		client: client,
		bucket: cfg.BucketName,
		region: cfg.Region,
		expiry: expiry,
	}, nil
}

// EnsureBucket creates the avatar bucket when it does not exist yet.
func (m *MinIOClient) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", m.bucket, err)
	}
	if exists {
		return nil
	}

	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: m.region}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", m.bucket, err)
	}
	return nil
}

func (m *MinIOClient) UploadAvatar(ctx context.Context, userID, fileName string, file io.Reader, size int64) (string, error) {
	fileExt := strings.ToLower(filepath.Ext(fileName))
	if fileExt == "" {
		fileExt = ".png"
	}

	contentType := mime.TypeByExtension(fileExt)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectName := avatarObjectName(userID, fileExt)

	_, err := m.client.PutObject(ctx, m.bucket, objectName, file, size,
		minio.PutObjectOptions{
			ContentType: contentType,
			UserMetadata: map[string]string{
				"original-filename": fileName,
				"user-id":           userID,
			},
		})
	if err != nil {
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	return objectName, nil
}

// AvatarURL passes absolute http(s) references through untouched and presigns
// everything else as an object in the avatar bucket.
func (m *MinIOClient) AvatarURL(ctx context.Context, ref string) (string, error) {
	if ref == "" || IsExternalURL(ref) {
		return ref, nil
	}

	u, err := m.client.PresignedGetObject(ctx, m.bucket, ref, m.expiry, nil)
	if err != nil {
		return "", fmt.Errorf("failed to presign avatar %s: %w", ref, err)
	}
	return u.String(), nil
}

func IsExternalURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "//")
}

func avatarObjectName(userID, ext string) string {
	return fmt.Sprintf("avatars/%s/%s%s", userID, uuid.New().String(), ext)
}
