// Package cli defines the cobra command tree for the comps command.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hotel-comparables-engine/internal/config"
	"hotel-comparables-engine/internal/models"
	"hotel-comparables-engine/internal/services/database"
	"hotel-comparables-engine/internal/services/matcher"
	"hotel-comparables-engine/internal/utils"
)

const (
	sourceCSV      = "csv"
	sourcePostgres = "postgres"
)

var (
	flagFormat    string
	flagSource    string
	flagFile      string
	flagDataset   string
	flagRatioBand string
	flagOrdering  string
	flagWorkers   int
	flagLogLevel  string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "comps",
		Short: "Find comparable hotel properties",
		Long: "Find the closest comparable hotels for a subject property by market value and VPR, " +
			"inspect why a candidate was rejected, or build the flattened comparables report for a whole dataset.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return utils.InitLogger(flagLogLevel)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			utils.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&flagFormat, "format", "text", "output format (text|json)")
	flags.StringVar(&flagSource, "source", sourceCSV, "dataset source (csv|postgres)")
	flags.StringVarP(&flagFile, "file", "f", "", "CSV dataset path (for --source csv)")
	flags.StringVar(&flagDataset, "dataset", database.DefaultDatasetName, "dataset name (for --source postgres)")
	flags.StringVar(&flagRatioBand, "ratio-band", "", "VPR band policy (two_sided|upper_only), default from RATIO_BAND_POLICY")
	flags.StringVar(&flagOrdering, "ordering", "", "ordering policy (value_first|combined_first), default from ORDERING_POLICY")
	flags.IntVar(&flagWorkers, "workers", 0, "report workers (default REPORT_WORKERS)")
	flags.StringVar(&flagLogLevel, "log-level", "warn", "log level (debug|info|warn|error)")

	root.AddCommand(
		newFindCmd(),
		newExplainCmd(),
		newReportCmd(),
		newLoadCmd(),
		newDatasetsCmd(),
		newVersionCmd(),
	)

	return root
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// loadConfig reads the environment and applies the policy flags on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagRatioBand != "" {
		cfg.RatioBandPolicy = flagRatioBand
	}
	if flagOrdering != "" {
		cfg.OrderingPolicy = flagOrdering
	}
	if flagWorkers > 0 {
		cfg.ReportWorkers = flagWorkers
	}
	return cfg, nil
}

// newMatcher builds the matcher configured by the environment and flags.
func newMatcher(cfg *config.Config) (*matcher.Matcher, error) {
	opts, err := matcher.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	opts.Logger = utils.GetLogger()
	return matcher.NewMatcher(opts)
}

// loadDataset reads the dataset selected by --source.
func loadDataset(ctx context.Context, cfg *config.Config) (*models.Dataset, error) {
	switch flagSource {
	case sourceCSV:
		return loadCSV(flagFile)
	case sourcePostgres:
		db, err := database.New(cfg)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return database.NewPropertyRepository(db).GetDataset(ctx, flagDataset)
	default:
		return nil, fmt.Errorf("unknown source %q (want csv or postgres)", flagSource)
	}
}

// loadCSV parses a dataset file, printing row warnings to stderr.
func loadCSV(path string) (*models.Dataset, error) {
	if path == "" {
		return nil, fmt.Errorf("--file is required for --source csv")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	dataset, warnings := utils.NewCSVParser().Parse(f)
	if dataset == nil {
		if len(warnings) > 0 {
			return nil, fmt.Errorf("parsing %s: %w", path, warnings[0])
		}
		return nil, fmt.Errorf("parsing %s: no properties", path)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %v\n", w)
	}
	return dataset, nil
}
