package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"hotel-comparables-engine/internal/services/database"
)

func newDatasetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "datasets",
		Short: "List datasets stored in the properties table",
		Args:  cobra.NoArgs,
		RunE:  runDatasets,
	}
}

func runDatasets(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := database.New(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	datasets, err := database.NewPropertyRepository(db).ListDatasets(cmd.Context())
	if err != nil {
		return err
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), datasets)
	}

	if len(datasets) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No datasets found.")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATASET\tPROPERTIES")
	for _, d := range datasets {
		fmt.Fprintf(tw, "%s\t%d\n", d.Name, d.Properties)
	}
	return tw.Flush()
}
