package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"hotel-comparables-engine/internal/services/database"
)

func newLoadCmd() *cobra.Command {
	var replace bool

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load a CSV dataset into the properties table",
		Long: "Create the properties table if needed and append the rows of --file under the --dataset name. " +
			"With --replace the existing rows of that dataset are removed in the same transaction.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, replace)
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "replace the dataset instead of appending to it")

	return cmd
}

func runLoad(cmd *cobra.Command, replace bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dataset, err := loadCSV(flagFile)
	if err != nil {
		return err
	}

	db, err := database.New(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(cmd.Context(), database.PropertiesSchema); err != nil {
		return fmt.Errorf("creating properties table: %w", err)
	}

	repo := database.NewPropertyRepository(db)
	load := repo.BulkLoad
	if replace {
		load = repo.ReplaceDataset
	}
	n, err := load(cmd.Context(), flagDataset, dataset)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d properties into dataset %q.\n", n, flagDataset)
	return nil
}
