package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"hotel-comparables-engine/internal/services/matcher"
)

// explainResult is the JSON shape of the explain command.
type explainResult struct {
	Subject   map[string]string        `json:"subject"`
	Candidate map[string]string        `json:"candidate"`
	Checks    matcher.EligibilityCheck `json:"checks"`
	Eligible  bool                     `json:"eligible"`
}

func newExplainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explain <subject-index> <candidate-index>",
		Short: "Show which eligibility rules a candidate passes",
		Args:  cobra.ExactArgs(2),
		RunE:  runExplain,
	}
}

func runExplain(cmd *cobra.Command, args []string) error {
	indexes := make([]int, len(args))
	for i, a := range args {
		n, err := strconv.Atoi(a)
		if err != nil {
			return fmt.Errorf("invalid index: %s", a)
		}
		indexes[i] = n
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

	subject, err := dataset.At(indexes[0])
	if err != nil {
		return fmt.Errorf("subject index %d: %w", indexes[0], err)
	}
	candidate, err := dataset.At(indexes[1])
	if err != nil {
		return fmt.Errorf("candidate index %d: %w", indexes[1], err)
	}

	check := m.Explain(subject, candidate)

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), explainResult{
			Subject:   propertyFields(subject),
			Candidate: propertyFields(candidate),
			Checks:    check,
			Eligible:  check.Passed(),
		})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Subject #%d:   %s\n", indexes[0], subject.Name)
	fmt.Fprintf(out, "Candidate #%d: %s\n\n", indexes[1], candidate.Name)
	printCheck(out, "Identity distinct", check.IdentityDistinct)
	printCheck(out, "Class match", check.ClassMatch)
	printCheck(out, "Type is Hotel", check.TypeMatch)
	printCheck(out, "Market value in band", check.ValueInBand)
	printCheck(out, fmt.Sprintf("VPR in band (%s)", m.RatioBand()), check.VPRInBand)
	fmt.Fprintln(out)
	if check.Passed() {
		fmt.Fprintln(out, "Eligible.")
	} else {
		fmt.Fprintln(out, "Not eligible.")
	}
	return nil
}
