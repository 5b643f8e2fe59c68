// Package s3service stores uploaded datasets and generated reports in S3
package s3service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	appConfig "hotel-comparables-engine/internal/config"
	"hotel-comparables-engine/internal/models"
	"hotel-comparables-engine/internal/utils"
)

// Service handles S3 operations
type Service struct {
	client       *s3.Client
	presigner    *s3.PresignClient
	bucketName   string
	reportPrefix string
}

// PresignedURLResult contains the presigned URL details
type PresignedURLResult struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewService creates a new S3 service
func NewService(ctx context.Context, appCfg *appConfig.Config) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(appCfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)

	return &Service{
		client:       client,
		presigner:    s3.NewPresignClient(client),
		bucketName:   appCfg.S3Bucket,
		reportPrefix: appCfg.ReportPrefix,
	}, nil
}

// Bucket returns the bucket the service writes to.
func (s *Service) Bucket() string {
	return s.bucketName
}

// ReportKey returns the object key a report is stored under.
func ReportKey(prefix, reportID string) string {
	return path.Join(prefix, reportID+".csv")
}

// GeneratePresignedUploadURL creates a presigned URL for uploading files
func (s *Service) GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiry time.Duration) (*PresignedURLResult, error) {
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}

	presignedReq, err := s.presigner.PresignPutObject(ctx, input, s3.WithPresignExpires(expiry))
	if err != nil {
		utils.GetLogger().Error("Failed to generate presigned URL",
			zap.String("bucket", s.bucketName),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return &PresignedURLResult{
		URL:       presignedReq.URL,
		Key:       key,
		ExpiresAt: time.Now().Add(expiry),
	}, nil
}

// GeneratePresignedDownloadURL creates a presigned URL for downloading files
func (s *Service) GeneratePresignedDownloadURL(ctx context.Context, key string, expiry time.Duration) (*PresignedURLResult, error) {
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}

	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}

	presignedReq, err := s.presigner.PresignGetObject(ctx, input, s3.WithPresignExpires(expiry))
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned download URL: %w", err)
	}

	return &PresignedURLResult{
		URL:       presignedReq.URL,
		Key:       key,
		ExpiresAt: time.Now().Add(expiry),
	}, nil
}

// DownloadFile downloads an object from the given bucket.
func (s *Service) DownloadFile(ctx context.Context, bucket, key string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		utils.GetLogger().Error("Failed to download file from S3",
			zap.String("bucket", bucket),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}

	utils.GetLogger().Info("Downloaded file from S3",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.Int("size", len(data)),
	)

	return data, nil
}

// DownloadDataset downloads and parses a property CSV. Row level problems
// are returned as warnings next to the dataset.
func (s *Service) DownloadDataset(ctx context.Context, bucket, key string) (*models.Dataset, []error, error) {
	data, err := s.DownloadFile(ctx, bucket, key)
	if err != nil {
		return nil, nil, err
	}

	dataset, parseErrors := utils.NewCSVParser().ParseDataset(string(data))
	if dataset == nil {
		if len(parseErrors) > 0 {
			return nil, parseErrors, fmt.Errorf("failed to parse %s: %w", key, parseErrors[0])
		}
		return nil, nil, fmt.Errorf("failed to parse %s", key)
	}

	return dataset, parseErrors, nil
}

// UploadFile uploads a file to S3
func (s *Service) UploadFile(ctx context.Context, key string, data []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}

	_, err := s.client.PutObject(ctx, input)
	if err != nil {
		utils.GetLogger().Error("Failed to upload file to S3",
			zap.String("bucket", s.bucketName),
			zap.String("key", key),
			zap.Error(err),
		)
		return fmt.Errorf("failed to upload file: %w", err)
	}

	utils.GetLogger().Info("Uploaded file to S3",
		zap.String("bucket", s.bucketName),
		zap.String("key", key),
		zap.Int("size", len(data)),
	)

	return nil
}

// UploadReport renders the report as CSV and stores it under the report prefix.
func (s *Service) UploadReport(ctx context.Context, report *models.Report) (string, error) {
	data, err := utils.ReportCSVBytes(report)
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	key := ReportKey(s.reportPrefix, report.ID)
	if err := s.UploadFile(ctx, key, data, "text/csv"); err != nil {
		return "", err
	}
	return key, nil
}

// ArchiveFile moves a processed upload under processed/ in its bucket.
func (s *Service) ArchiveFile(ctx context.Context, bucket, key string) error {
	archiveKey := path.Join("processed", key)

	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(bucket),
		CopySource: aws.String(fmt.Sprintf("%s/%s", bucket, key)),
		Key:        aws.String(archiveKey),
	})
	if err != nil {
		return fmt.Errorf("failed to copy to archive: %w", err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete original: %w", err)
	}

	utils.GetLogger().Info("Archived file in S3",
		zap.String("source", key),
		zap.String("destination", archiveKey),
	)

	return nil
}
