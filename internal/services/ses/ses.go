// Package ses provides email notification services via AWS SES
package ses

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	appConfig "hotel-comparables-engine/internal/config"
	"hotel-comparables-engine/internal/models"
	"hotel-comparables-engine/internal/utils"
)

// Service handles SES email operations
type Service struct {
	client    *ses.Client
	fromEmail string
}

// EmailParams represents parameters for sending an email
type EmailParams struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
	ReplyTo  string
}

// ReportReadyParams contains data for the report ready email
type ReportReadyParams struct {
	Recipients  []string
	SourceKey   string
	Summary     models.ReportSummary
	RatioBand   models.RatioBandPolicy
	Ordering    models.OrderingPolicy
	DownloadURL string
	ExpiresAt   time.Time
}

// SendEmailResult contains the result of sending an email
type SendEmailResult struct {
	MessageID string
	SentAt    time.Time
}

// NewService creates a new SES service
func NewService(ctx context.Context, appCfg *appConfig.Config) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(appCfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Service{
		client:    ses.NewFromConfig(cfg),
		fromEmail: appCfg.SESSenderEmail,
	}, nil
}

// SendEmail sends a basic email
func (s *Service) SendEmail(ctx context.Context, params EmailParams) (*SendEmailResult, error) {
	if s.fromEmail == "" {
		return nil, fmt.Errorf("SES_SENDER_EMAIL is not configured")
	}
	if len(params.To) == 0 {
		return nil, fmt.Errorf("no recipients")
	}

	input := &ses.SendEmailInput{
		Source: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: params.To,
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(params.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}

	if params.HTMLBody != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(params.HTMLBody),
			Charset: aws.String("UTF-8"),
		}
	}

	if params.TextBody != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(params.TextBody),
			Charset: aws.String("UTF-8"),
		}
	}

	if params.ReplyTo != "" {
		input.ReplyToAddresses = []string{params.ReplyTo}
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		utils.GetLogger().Error("Failed to send email",
			zap.Strings("to", params.To),
			zap.String("subject", params.Subject),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	utils.GetLogger().Info("Email sent successfully",
		zap.Strings("to", params.To),
		zap.String("subject", params.Subject),
		zap.String("messageId", aws.ToString(result.MessageId)),
	)

	return &SendEmailResult{
		MessageID: aws.ToString(result.MessageId),
		SentAt:    time.Now(),
	}, nil
}

// SendReportReady tells the recipients that a comparables report can be downloaded.
func (s *Service) SendReportReady(ctx context.Context, params ReportReadyParams) (*SendEmailResult, error) {
	htmlBody, err := RenderReportReadyHTML(params)
	if err != nil {
		return nil, fmt.Errorf("failed to render email template: %w", err)
	}

	return s.SendEmail(ctx, EmailParams{
		To:       params.Recipients,
		Subject:  ReportReadySubject(params),
		HTMLBody: htmlBody,
		TextBody: RenderReportReadyText(params),
	})
}

// ReportReadySubject returns the subject line of the report ready email.
func ReportReadySubject(params ReportReadyParams) string {
	return fmt.Sprintf("Comparables report ready: %d of %d subjects",
		params.Summary.RowsEmitted, params.Summary.TotalSubjects)
}

const reportReadyTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #2f4858; color: white; padding: 24px; border-radius: 10px 10px 0 0; }
        .content { background: #f9f9f9; padding: 24px; border-radius: 0 0 10px 10px; }
        table { border-collapse: collapse; width: 100%; }
        td { padding: 6px 0; border-bottom: 1px solid #e5e5e5; }
        td.label { color: #777; }
        .cta-button { display: inline-block; background: #2f4858; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin-top: 20px; }
        .footer { text-align: center; margin-top: 24px; color: #999; font-size: 12px; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Comparables report ready</h1>
        {{if .SourceKey}}<p>Source: {{.SourceKey}}</p>{{end}}
    </div>
    <div class="content">
        <table>
            <tr><td class="label">Report ID</td><td>{{.Summary.ReportID}}</td></tr>
            <tr><td class="label">Subjects</td><td>{{.Summary.TotalSubjects}}</td></tr>
            <tr><td class="label">Rows emitted</td><td>{{.Summary.RowsEmitted}}</td></tr>
            <tr><td class="label">Subjects skipped</td><td>{{.Summary.SubjectsSkipped}}</td></tr>
            <tr><td class="label">Without comparables</td><td>{{.Summary.SubjectsWithoutComparables}}</td></tr>
            <tr><td class="label">VPR band</td><td>{{.RatioBand}}</td></tr>
            <tr><td class="label">Ordering</td><td>{{.Ordering}}</td></tr>
        </table>
        {{if .DownloadURL}}
        <div style="text-align: center;">
            <a href="{{.DownloadURL}}" class="cta-button">Download report</a>
            <p style="font-size: 12px; color: #777;">Link expires {{.ExpiresAt.Format "2006-01-02 15:04 MST"}}</p>
        </div>
        {{end}}
    </div>
    <div class="footer">
        <p>This email was sent by Hotel Comparables Engine</p>
    </div>
</body>
</html>`

var reportReadyTmpl = template.Must(template.New("report_ready").Parse(reportReadyTemplate))

// RenderReportReadyHTML renders the HTML email body.
func RenderReportReadyHTML(params ReportReadyParams) (string, error) {
	var buf bytes.Buffer
	if err := reportReadyTmpl.Execute(&buf, params); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderReportReadyText renders the plain text email body.
func RenderReportReadyText(params ReportReadyParams) string {
	var buf bytes.Buffer

	buf.WriteString("Your comparables report is ready.\n\n")
	if params.SourceKey != "" {
		fmt.Fprintf(&buf, "Source: %s\n", params.SourceKey)
	}
	fmt.Fprintf(&buf, "Report ID: %s\n", params.Summary.ReportID)
	fmt.Fprintf(&buf, "Subjects: %d\n", params.Summary.TotalSubjects)
	fmt.Fprintf(&buf, "Rows emitted: %d\n", params.Summary.RowsEmitted)
	fmt.Fprintf(&buf, "Subjects skipped: %d\n", params.Summary.SubjectsSkipped)
	fmt.Fprintf(&buf, "Without comparables: %d\n", params.Summary.SubjectsWithoutComparables)
	fmt.Fprintf(&buf, "VPR band: %s, ordering: %s\n", params.RatioBand, params.Ordering)

	if params.DownloadURL != "" {
		fmt.Fprintf(&buf, "\nDownload: %s\n", params.DownloadURL)
	}

	buf.WriteString("\nHotel Comparables Engine\n")

	return buf.String()
}
