package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/aws/aws-lambda-go/events"

	appConfig "hotel-comparables-engine/internal/config"
	"hotel-comparables-engine/internal/models"
	"hotel-comparables-engine/internal/services/matcher"
	s3service "hotel-comparables-engine/internal/services/s3"
	sesservice "hotel-comparables-engine/internal/services/ses"
	"hotel-comparables-engine/internal/utils"
)

const maxResponseErrors = 10

// ReportStore is the object storage used by the report processor.
type ReportStore interface {
	DownloadDataset(ctx context.Context, bucket, key string) (*models.Dataset, []error, error)
	UploadReport(ctx context.Context, report *models.Report) (string, error)
	ArchiveFile(ctx context.Context, bucket, key string) error
	GeneratePresignedDownloadURL(ctx context.Context, key string, expiry time.Duration) (*s3service.PresignedURLResult, error)
}

// ReportNotifier tells recipients that a report is available.
type ReportNotifier interface {
	SendReportReady(ctx context.Context, params sesservice.ReportReadyParams) (*sesservice.SendEmailResult, error)
}

// ReportProcessorHandler builds a comparables report for every dataset
// uploaded to S3.
type ReportProcessorHandler struct {
	store      ReportStore
	notifier   ReportNotifier
	matcher    *matcher.Matcher
	recipients []string
	webhookURL string
	httpClient *http.Client
}

// ReportProcessorOptions wires a ReportProcessorHandler.
type ReportProcessorOptions struct {
	Store      ReportStore
	Notifier   ReportNotifier
	Matcher    *matcher.Matcher
	Recipients []string
	WebhookURL string
}

// NewReportProcessorHandler creates a report processor from the environment.
func NewReportProcessorHandler(ctx context.Context) (*ReportProcessorHandler, error) {
	cfg, err := appConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load app config: %w", err)
	}

	opts, err := matcher.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	m, err := matcher.NewMatcher(opts)
	if err != nil {
		return nil, err
	}

	store, err := s3service.NewService(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var notifier ReportNotifier
	if cfg.SESSenderEmail != "" && len(cfg.ReportRecipients) > 0 {
		notifier, err = sesservice.NewService(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	return NewReportProcessor(ReportProcessorOptions{
		Store:      store,
		Notifier:   notifier,
		Matcher:    m,
		Recipients: cfg.ReportRecipients,
		WebhookURL: cfg.ReportWebhookURL,
	}), nil
}

// NewReportProcessor creates a report processor from explicit dependencies.
// Notifier and WebhookURL are optional.
func NewReportProcessor(opts ReportProcessorOptions) *ReportProcessorHandler {
	return &ReportProcessorHandler{
		store:      opts.Store,
		notifier:   opts.Notifier,
		matcher:    opts.Matcher,
		recipients: opts.Recipients,
		webhookURL: opts.WebhookURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// ReportProcessResult is the result of processing one uploaded dataset.
type ReportProcessResult struct {
	Message         string   `json:"message"`
	ReportID        string   `json:"report_id,omitempty"`
	ReportKey       string   `json:"report_key,omitempty"`
	TotalSubjects   int      `json:"total_subjects"`
	RowsEmitted     int      `json:"rows_emitted"`
	SubjectsSkipped int      `json:"subjects_skipped"`
	Errors          []string `json:"errors,omitempty"`
}

// Handle processes S3 events for uploaded property datasets.
func (h *ReportProcessorHandler) Handle(ctx context.Context, s3Event events.S3Event) (ReportProcessResult, error) {
	logger := utils.GetLogger()

	if len(s3Event.Records) == 0 {
		return ReportProcessResult{Message: "No records to process"}, nil
	}

	record := s3Event.Records[0]
	bucket := record.S3.Bucket.Name
	key, err := url.QueryUnescape(record.S3.Object.Key)
	if err != nil {
		return ReportProcessResult{}, fmt.Errorf("failed to decode S3 key: %w", err)
	}

	logger.Info("Processing property dataset",
		utils.String("bucket", bucket),
		utils.String("key", key))

	dataset, warnings, err := h.store.DownloadDataset(ctx, bucket, key)
	if err != nil {
		if errors.Is(err, utils.ErrEmptyCSV) || errors.Is(err, utils.ErrMissingColumns) || errors.Is(err, utils.ErrNoDataRows) {
			return ReportProcessResult{
				Message: "No usable properties found in CSV",
				Errors:  errorStrings(warnings),
			}, nil
		}
		return ReportProcessResult{}, fmt.Errorf("failed to load dataset: %w", err)
	}

	logger.Info("Parsed dataset",
		utils.Int("properties", dataset.Len()),
		utils.Int("warnings", len(warnings)))

	report, err := h.matcher.BuildReport(ctx, dataset)
	if err != nil {
		return ReportProcessResult{}, fmt.Errorf("failed to build report: %w", err)
	}

	reportKey, err := h.store.UploadReport(ctx, report)
	if err != nil {
		return ReportProcessResult{}, fmt.Errorf("failed to upload report: %w", err)
	}

	if err := h.store.ArchiveFile(ctx, bucket, key); err != nil {
		logger.Warn("Failed to archive file", utils.Error(err))
	}

	if h.webhookURL != "" {
		if err := h.triggerWebhook(ctx, report, reportKey); err != nil {
			logger.Warn("Failed to trigger report webhook", utils.Error(err))
		}
	}

	if h.notifier != nil && len(h.recipients) > 0 {
		if err := h.notify(ctx, report, key, reportKey); err != nil {
			logger.Warn("Failed to send report notification", utils.Error(err))
		}
	}

	allErrors := errorStrings(warnings)
	for _, s := range report.Skipped {
		allErrors = append(allErrors, fmt.Sprintf("subject %d (%s): %s", s.Index, s.Name, s.Reason))
	}
	if len(allErrors) > maxResponseErrors {
		allErrors = allErrors[:maxResponseErrors]
	}

	summary := report.Summary()
	return ReportProcessResult{
		Message:         "Report generated successfully",
		ReportID:        report.ID,
		ReportKey:       reportKey,
		TotalSubjects:   summary.TotalSubjects,
		RowsEmitted:     summary.RowsEmitted,
		SubjectsSkipped: summary.SubjectsSkipped,
		Errors:          allErrors,
	}, nil
}

// notify e-mails a presigned download link for the report.
func (h *ReportProcessorHandler) notify(ctx context.Context, report *models.Report, sourceKey, reportKey string) error {
	link, err := h.store.GeneratePresignedDownloadURL(ctx, reportKey, 24*time.Hour)
	if err != nil {
		return err
	}

	_, err = h.notifier.SendReportReady(ctx, sesservice.ReportReadyParams{
		Recipients:  h.recipients,
		SourceKey:   sourceKey,
		Summary:     report.Summary(),
		RatioBand:   report.RatioBand,
		Ordering:    report.Ordering,
		DownloadURL: link.URL,
		ExpiresAt:   link.ExpiresAt,
	})
	return err
}

// webhookPayload is posted to REPORT_WEBHOOK_URL once a report is stored.
type webhookPayload struct {
	Event     string               `json:"event"`
	ReportKey string               `json:"report_key"`
	Summary   models.ReportSummary `json:"summary"`
	Timestamp string               `json:"timestamp"`
}

// triggerWebhook posts the report summary to the configured webhook.
func (h *ReportProcessorHandler) triggerWebhook(ctx context.Context, report *models.Report, reportKey string) error {
	body, err := json.Marshal(webhookPayload{
		Event:     "report_ready",
		ReportKey: reportKey,
		Summary:   report.Summary(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}

func errorStrings(errs []error) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Error())
	}
	return out
}
