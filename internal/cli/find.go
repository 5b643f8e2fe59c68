package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"hotel-comparables-engine/internal/models"
	"hotel-comparables-engine/internal/services/matcher"
)

// findResult is the JSON shape of the find command.
type findResult struct {
	Index       int                      `json:"index"`
	Total       int                      `json:"total"`
	RatioBand   models.RatioBandPolicy   `json:"ratio_band"`
	Ordering    models.OrderingPolicy    `json:"ordering"`
	Subject     map[string]string        `json:"subject"`
	Comparables []matcher.MatchCandidate `json:"comparables"`
}

func newFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find <index>",
		Short: "Find comparables for one subject",
		Long:  "Rank the top comparables for the property at the given zero-based dataset index.",
		Args:  cobra.ExactArgs(1),
		RunE:  runFind,
	}
}

func runFind(cmd *cobra.Command, args []string) error {
	index, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid index: %s", args[0])
	}

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

	subject, err := dataset.At(index)
	if err != nil {
		return fmt.Errorf("index %d: %w (dataset has %d properties)", index, err, dataset.Len())
	}

	comparables, err := m.FindComparables(subject, dataset.Properties)
	if err != nil {
		return fmt.Errorf("subject %d: %w", index, err)
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), findResult{
			Index:       index,
			Total:       dataset.Len(),
			RatioBand:   m.RatioBand(),
			Ordering:    m.Ordering(),
			Subject:     propertyFields(subject),
			Comparables: comparables,
		})
	}

	out := cmd.OutOrStdout()
	printSubject(out, index, dataset.Len(), subject)
	fmt.Fprintln(out)
	if err := printComparablesTable(out, comparables); err != nil {
		return err
	}
	printNavigation(out, index, dataset.Len())
	return nil
}
