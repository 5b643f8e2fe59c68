package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"hotel-comparables-engine/internal/models"
	s3service "hotel-comparables-engine/internal/services/s3"
	"hotel-comparables-engine/internal/utils"
)

func newReportCmd() *cobra.Command {
	var (
		output string
		upload bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Build the comparables report for every property",
		Long: "Use every property of the dataset as the subject and write one flattened row per subject: " +
			"the subject's fields followed by up to five comparables. Rows that cannot be processed are skipped and listed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, output, upload)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the CSV report to this file instead of stdout")
	cmd.Flags().BoolVar(&upload, "upload", false, "also upload the CSV report to S3_BUCKET under REPORT_PREFIX")

	return cmd
}

func runReport(cmd *cobra.Command, output string, upload bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	m, err := newMatcher(cfg)
	if err != nil {
		return err
	}
	dataset, err := loadDataset(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	report, err := m.BuildReport(cmd.Context(), dataset)
	if err != nil {
		return err
	}

	if upload {
		svc, err := s3service.NewService(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		key, err := svc.UploadReport(cmd.Context(), report)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "uploaded s3://%s/%s\n", svc.Bucket(), key)
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), report)
	}

	if err := writeReport(cmd.OutOrStdout(), output, report); err != nil {
		return err
	}
	printReportSummary(cmd.ErrOrStderr(), report)
	return nil
}

// writeReport writes the CSV report to path, or to out when path is empty.
func writeReport(out io.Writer, path string, report *models.Report) error {
	if path == "" {
		return utils.WriteReportCSV(out, report)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	if err := utils.WriteReportCSV(f, report); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
