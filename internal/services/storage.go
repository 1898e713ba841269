package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/google/uuid"

	"github.com/Jen9x/TapRide/internal/config"
	"github.com/Jen9x/TapRide/pkg/logger"
)

// FileStorage stores images on S3 when AWS credentials are configured and on
// the local disk otherwise.
type FileStorage struct {
	s3Client *s3.S3
	uploader *s3manager.Uploader
	bucket   string
	region   string

	uploadDir string
	baseURL   string
}

// InitStorage picks S3 or local storage from cfg.
func InitStorage(cfg config.Config, log logger.ILogger) (*FileStorage, error) {
	if cfg.AWSRegion != "" && cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		if cfg.AWSS3Bucket == "" {
			return nil, fmt.Errorf("AWS_S3_BUCKET is required when AWS credentials are set")
		}
		sess, err := session.NewSession(&aws.Config{
			Region:      aws.String(cfg.AWSRegion),
			Credentials: credentials.NewStaticCredentials(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %w", err)
		}

		log.Info("using S3 image storage", logger.String("bucket", cfg.AWSS3Bucket))
		return &FileStorage{
			s3Client: s3.New(sess),
			uploader: s3manager.NewUploader(sess),
			bucket:   cfg.AWSS3Bucket,
			region:   cfg.AWSRegion,
		}, nil
	}

	store, err := NewLocalStorage(cfg.UploadDir, cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	log.Warning("AWS S3 not configured, using local file storage", logger.String("dir", cfg.UploadDir))
	return store, nil
}

// NewLocalStorage stores files under dir and serves them from
// baseURL/uploads.
func NewLocalStorage(dir, baseURL string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &FileStorage{uploadDir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *FileStorage) IsUsingS3() bool { return s.uploader != nil }

// UploadDir is the local directory served under /uploads, empty on S3.
func (s *FileStorage) UploadDir() string { return s.uploadDir }

// Upload stores file under folder and returns its public URL.
func (s *FileStorage) Upload(ctx context.Context, file *multipart.FileHeader, folder string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	if s.IsUsingS3() {
		return s.uploadToS3(ctx, src, folder, name)
	}
	return s.uploadLocally(src, folder, name)
}

func (s *FileStorage) uploadToS3(ctx context.Context, src io.Reader, folder, name string) (string, error) {
	buffer := bytes.NewBuffer(nil)
	if _, err := io.Copy(buffer, src); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	key := path.Join(folder, name)
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buffer.Bytes()),
		ContentType: aws.String(http.DetectContentType(buffer.Bytes())),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key), nil
}

func (s *FileStorage) uploadLocally(src io.Reader, folder, name string) (string, error) {
	dir := filepath.Join(s.uploadDir, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create folder directory: %w", err)
	}

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	return fmt.Sprintf("%s/uploads/%s/%s", s.baseURL, folder, name), nil
}

// Delete removes a file previously returned by Upload. Unknown URLs are
// ignored.
func (s *FileStorage) Delete(ctx context.Context, fileURL string) error {
	if s.IsUsingS3() {
		prefix := fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", s.bucket, s.region)
		key, ok := strings.CutPrefix(fileURL, prefix)
		if !ok {
			return nil
		}
		_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		return err
	}

	rel, ok := strings.CutPrefix(fileURL, s.baseURL+"/uploads/")
	if !ok || strings.Contains(rel, "..") {
		return nil
	}
	err := os.Remove(filepath.Join(s.uploadDir, filepath.FromSlash(rel)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
