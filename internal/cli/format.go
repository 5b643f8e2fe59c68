package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"hotel-comparables-engine/internal/models"
	"hotel-comparables-engine/internal/services/matcher"
)

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// propertyFields renders every column of p by its label. Numbers are
// rendered as text so missing values stay blank instead of breaking JSON.
func propertyFields(p models.Property) map[string]string {
	fields := make(map[string]string, len(models.AllColumns()))
	for _, c := range models.AllColumns() {
		fields[string(c)] = p.Field(c)
	}
	return fields
}

// printSubject prints the subject property in text format.
func printSubject(w io.Writer, index, total int, p models.Property) {
	fmt.Fprintf(w, "Subject %d of %d\n", index+1, total)
	fmt.Fprintf(w, "  Name:         %s\n", p.Name)
	fmt.Fprintf(w, "  Address:      %s\n", p.Address)
	fmt.Fprintf(w, "  Class:        %s\n", p.Class)
	fmt.Fprintf(w, "  Type:         %s\n", p.Type)
	fmt.Fprintf(w, "  Market value: $%s\n", formatMoney(p.MarketValue))
	fmt.Fprintf(w, "  VPR:          %s\n", formatMoney(p.VPR))
	fmt.Fprintf(w, "  Owner:        %s\n", p.OwnerName)
	if p.AccountNumber != nil {
		fmt.Fprintf(w, "  Account:      %s\n", *p.AccountNumber)
	}
}

// printComparablesTable prints ranked comparables with their differences.
func printComparablesTable(w io.Writer, comparables []matcher.MatchCandidate) error {
	if len(comparables) == 0 {
		fmt.Fprintln(w, "No comparable properties found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "RANK\tNAME\tCLASS\tMARKET VALUE\tVPR\tVALUE DIFF\tVPR DIFF"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(tw, "----\t----\t-----\t------------\t---\t----------\t--------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, c := range comparables {
		if _, err := fmt.Fprintf(tw, "%d\t%s\t%s\t$%s\t%s\t%s\t%s\n",
			c.Rank, truncate(c.Name, 40), c.Class,
			formatMoney(c.MarketValue), formatMoney(c.VPR),
			formatMoney(c.ValueDiff), formatMoney(c.VPRDiff)); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Fprintf(w, "\nTotal: %d comparables\n", len(comparables))
	return nil
}

// printNavigation points at the neighbouring subjects.
func printNavigation(w io.Writer, index, total int) {
	var hints []string
	if index > 0 {
		hints = append(hints, fmt.Sprintf("previous: %d", index-1))
	}
	if index < total-1 {
		hints = append(hints, fmt.Sprintf("next: %d", index+1))
	}
	if len(hints) > 0 {
		fmt.Fprintf(w, "(%s)\n", strings.Join(hints, ", "))
	}
}

// printCheck prints one eligibility rule outcome.
func printCheck(w io.Writer, label string, ok bool) {
	mark := "FAIL"
	if ok {
		mark = "ok"
	}
	fmt.Fprintf(w, "  %-28s %s\n", label, mark)
}

// printReportSummary prints the report counters.
func printReportSummary(w io.Writer, report *models.Report) {
	s := report.Summary()
	fmt.Fprintf(w, "Report %s: %d rows from %d subjects, %d skipped, %d without comparables (%.2fs)\n",
		s.ReportID, s.RowsEmitted, s.TotalSubjects, s.SubjectsSkipped,
		s.SubjectsWithoutComparables, s.ProcessingTimeSeconds)
	for _, skipped := range report.Skipped {
		fmt.Fprintf(w, "  skipped #%d %s: %s\n", skipped.Index, skipped.Name, skipped.Reason)
	}
}

// formatMoney formats a number with thousands separators and at most two
// decimals. Missing values print as "-".
func formatMoney(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}

	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}

	s := fmt.Sprintf("%.2f", v)
	whole, frac := s[:len(s)-3], s[len(s)-2:]

	var parts []string
	for len(whole) > 3 {
		parts = append([]string{whole[len(whole)-3:]}, parts...)
		whole = whole[:len(whole)-3]
	}
	parts = append([]string{whole}, parts...)

	out := sign + strings.Join(parts, ",")
	if frac != "00" {
		out += "." + strings.TrimSuffix(frac, "0")
	}
	return out
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
