package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	appConfig "hotel-comparables-engine/internal/config"
	s3service "hotel-comparables-engine/internal/services/s3"
	"hotel-comparables-engine/internal/utils"
)

const presignExpiry = time.Hour

// URLSigner issues presigned S3 URLs.
type URLSigner interface {
	GeneratePresignedUploadURL(ctx context.Context, key, contentType string, expiry time.Duration) (*s3service.PresignedURLResult, error)
	GeneratePresignedDownloadURL(ctx context.Context, key string, expiry time.Duration) (*s3service.PresignedURLResult, error)
}

// PresignedURLHandler hands out upload URLs for property datasets and
// download URLs for generated reports.
type PresignedURLHandler struct {
	signer       URLSigner
	uploadPrefix string
	reportPrefix string
}

// NewPresignedURLHandler creates a new presigned URL handler.
func NewPresignedURLHandler(ctx context.Context) (*PresignedURLHandler, error) {
	cfg, err := appConfig.Load()
	if err != nil {
		return nil, err
	}

	svc, err := s3service.NewService(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return NewPresignedURLHandlerWithSigner(svc, cfg.UploadPrefix, cfg.ReportPrefix), nil
}

// NewPresignedURLHandlerWithSigner creates a handler around an existing signer.
func NewPresignedURLHandlerWithSigner(signer URLSigner, uploadPrefix, reportPrefix string) *PresignedURLHandler {
	return &PresignedURLHandler{
		signer:       signer,
		uploadPrefix: uploadPrefix,
		reportPrefix: reportPrefix,
	}
}

// PresignedURLResponse is the response structure for presigned URL requests.
type PresignedURLResponse struct {
	UploadURL   string `json:"uploadUrl,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	S3Key       string `json:"s3Key"`
	ExpiresIn   int    `json:"expiresIn"`
}

// Handle processes the API Gateway request for generating presigned URLs.
// With ?report=<id> it signs a report download, otherwise a dataset upload.
func (h *PresignedURLHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type,Authorization",
		"Access-Control-Allow-Methods": "GET,OPTIONS",
		"Content-Type":                 "application/json",
	}

	if request.HTTPMethod == http.MethodOptions {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    headers,
		}, nil
	}

	var (
		response *PresignedURLResponse
		status   int
		err      error
	)
	if reportID := request.QueryStringParameters["report"]; reportID != "" {
		response, status, err = h.DownloadURL(ctx, reportID)
	} else {
		response, status, err = h.UploadURL(ctx, request.QueryStringParameters["filename"])
	}
	if err != nil {
		return errorResponse(headers, status, err.Error())
	}

	body, _ := json.Marshal(response)

	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers,
		Body:       string(body),
	}, nil
}

// UploadURL signs a PUT for a new dataset upload.
func (h *PresignedURLHandler) UploadURL(ctx context.Context, filename string) (*PresignedURLResponse, int, error) {
	logger := utils.GetLogger()

	if filename == "" {
		filename = "properties_" + uuid.New().String()[:8] + ".csv"
	}
	if !strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return nil, http.StatusBadRequest, handlerError("Only CSV files are allowed")
	}

	s3Key := UploadKey(h.uploadPrefix, filename, time.Now())

	result, err := h.signer.GeneratePresignedUploadURL(ctx, s3Key, "text/csv", presignExpiry)
	if err != nil {
		logger.Error("Failed to generate presigned URL", utils.Error(err))
		return nil, http.StatusInternalServerError, handlerError("Failed to generate upload URL")
	}

	logger.Info("Generated presigned upload URL", utils.String("s3Key", s3Key))

	return &PresignedURLResponse{
		UploadURL: result.URL,
		S3Key:     s3Key,
		ExpiresIn: int(presignExpiry.Seconds()),
	}, http.StatusOK, nil
}

// DownloadURL signs a GET for a generated report.
func (h *PresignedURLHandler) DownloadURL(ctx context.Context, reportID string) (*PresignedURLResponse, int, error) {
	if _, err := uuid.Parse(reportID); err != nil {
		return nil, http.StatusBadRequest, handlerError("Invalid report ID")
	}

	s3Key := s3service.ReportKey(h.reportPrefix, reportID)

	result, err := h.signer.GeneratePresignedDownloadURL(ctx, s3Key, presignExpiry)
	if err != nil {
		utils.GetLogger().Error("Failed to generate download URL", utils.Error(err))
		return nil, http.StatusInternalServerError, handlerError("Failed to generate download URL")
	}

	return &PresignedURLResponse{
		DownloadURL: result.URL,
		S3Key:       s3Key,
		ExpiresIn:   int(presignExpiry.Seconds()),
	}, http.StatusOK, nil
}

// UploadKey builds a unique, date partitioned key for an uploaded dataset.
func UploadKey(prefix, filename string, now time.Time) string {
	return path.Join(prefix, now.UTC().Format("2006/01/02"), uuid.New().String()+"_"+sanitizeFilename(filename))
}

// sanitizeFilename removes unsafe characters from filename.
func sanitizeFilename(filename string) string {
	var b strings.Builder
	for _, r := range filename {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	safe := b.String()
	if len(safe) > 100 {
		safe = safe[len(safe)-100:]
	}
	return safe
}

type handlerError string

func (e handlerError) Error() string { return string(e) }

// errorResponse creates an error response.
func errorResponse(headers map[string]string, statusCode int, message string) (events.APIGatewayProxyResponse, error) {
	body, _ := json.Marshal(map[string]string{
		"error":   http.StatusText(statusCode),
		"message": message,
	})

	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    headers,
		Body:       string(body),
	}, nil
}
