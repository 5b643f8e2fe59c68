package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-comparables-engine/internal/models"
)

const testDataset = `VPR,Hotel Name,Property Address,Market Value-2024,Hotel Class,Owner Name/ LLC Name,Owner Street Address,Type,account number
10,Alpha Inn,1 Main St,1000000,A,Alpha LLC,1 Owner Rd,Hotel,100
8,Bravo Suites,2 Main St,1050000,A,Bravo LLC,2 Owner Rd,Hotel,200
9,Charlie Lodge,3 Main St,980000,A,Charlie LLC,3 Owner Rd,Hotel,300
`

// executeCommand runs a command with the given args and captures output.
func executeCommand(args ...string) (string, error) {
	root := NewRootCmd()
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

// writeDataset writes the test dataset to a temporary CSV file.
func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hotels.csv")
	require.NoError(t, os.WriteFile(path, []byte(testDataset), 0o644))
	return path
}

func TestRootHelp(t *testing.T) {
	out, err := executeCommand("--help")
	require.NoError(t, err)
	assert.Contains(t, out, "comps")
	assert.Contains(t, out, "report")
	assert.Contains(t, out, "datasets")
}

func TestGlobalFlags(t *testing.T) {
	root := NewRootCmd()

	tests := []struct {
		name     string
		defValue string
	}{
		{"format", "text"},
		{"source", "csv"},
		{"file", ""},
		{"dataset", "default"},
		{"ratio-band", ""},
		{"ordering", ""},
		{"workers", "0"},
		{"log-level", "warn"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := root.PersistentFlags().Lookup(tt.name)
			require.NotNil(t, flag, "expected --%s flag to exist", tt.name)
			assert.Equal(t, tt.defValue, flag.DefValue)
		})
	}
}

func TestVersion(t *testing.T) {
	out, err := executeCommand("version")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)
}

func TestFindRequiresIndex(t *testing.T) {
	_, err := executeCommand("find")
	assert.Error(t, err)
}

func TestFindRejectsNonNumericIndex(t *testing.T) {
	_, err := executeCommand("find", "abc", "--file", writeDataset(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid index")
}

func TestFindRequiresFile(t *testing.T) {
	_, err := executeCommand("find", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--file")
}

func TestFindUnknownSource(t *testing.T) {
	_, err := executeCommand("find", "0", "--source", "excel")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source")
}

func TestFindText(t *testing.T) {
	out, err := executeCommand("find", "0", "--file", writeDataset(t))
	require.NoError(t, err)

	assert.Contains(t, out, "Subject 1 of 3")
	assert.Contains(t, out, "Alpha Inn")
	assert.Contains(t, out, "Total: 2 comparables")
	assert.Contains(t, out, "(next: 1)")
	assert.Less(t, strings.Index(out, "Charlie Lodge"), strings.Index(out, "Bravo Suites"),
		"the closer market value should rank first")
}

func TestFindNoComparables(t *testing.T) {
	out, err := executeCommand("find", "1", "--file", writeDataset(t))
	require.NoError(t, err)
	assert.Contains(t, out, "No comparable properties found.")
	assert.Contains(t, out, "(previous: 0, next: 2)")
}

func TestFindUpperOnlyBand(t *testing.T) {
	// With no lower bound and a 1.5x upper bound, Alpha (VPR 10) becomes
	// eligible for Bravo (VPR 8).
	out, err := executeCommand("find", "1", "--file", writeDataset(t), "--ratio-band", "upper_only", "--format", "json")
	require.NoError(t, err)

	var result findResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, models.RatioBandUpperOnly, result.RatioBand)
	require.Len(t, result.Comparables, 2)
	assert.Equal(t, "Alpha Inn", result.Comparables[0].Name)
}

func TestFindOutOfRange(t *testing.T) {
	_, err := executeCommand("find", "7", "--file", writeDataset(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrSubjectOutOfRange)
}

func TestFindInvalidPolicy(t *testing.T) {
	_, err := executeCommand("find", "0", "--file", writeDataset(t), "--ordering", "nearest")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrUnknownOrdering)
}

func TestExplain(t *testing.T) {
	path := writeDataset(t)

	out, err := executeCommand("explain", "0", "1", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Eligible.")

	out, err = executeCommand("explain", "1", "0", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Not eligible.")
	assert.Contains(t, out, "FAIL")
}

func TestExplainJSON(t *testing.T) {
	out, err := executeCommand("explain", "1", "0", "--file", writeDataset(t), "--format", "json")
	require.NoError(t, err)

	var result explainResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.Eligible)
	assert.True(t, result.Checks.IdentityDistinct)
	assert.False(t, result.Checks.VPRInBand)
	assert.Equal(t, "Bravo Suites", result.Subject[string(models.ColumnHotelName)])
}

func TestExplainRequiresTwoArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no args", []string{"explain"}},
		{"one arg", []string{"explain", "1"}},
		{"three args", []string{"explain", "1", "2", "3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestReportToFile(t *testing.T) {
	output := filepath.Join(t.TempDir(), "report.csv")

	out, err := executeCommand("report", "--file", writeDataset(t), "-o", output)
	require.NoError(t, err)
	assert.Contains(t, out, "3 rows from 3 subjects")

	content, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 4, "header plus one row per subject")
	assert.True(t, strings.HasPrefix(lines[0], "VPR,Hotel Name,"))
	assert.True(t, strings.HasPrefix(lines[1], "10,Alpha Inn,"))
}

func TestReportJSON(t *testing.T) {
	out, err := executeCommand("report", "--file", writeDataset(t), "--format", "json", "--workers", "2")
	require.NoError(t, err)

	var report models.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 3, report.TotalSubjects)
	assert.Len(t, report.Rows, 3)
	assert.Equal(t, 1, report.SubjectsWithoutComparables)
	assert.Equal(t, models.OrderingValueFirst, report.Ordering)
}

func TestLoadFlags(t *testing.T) {
	root := NewRootCmd()

	load, _, err := root.Find([]string{"load"})
	require.NoError(t, err)
	replace := load.Flags().Lookup("replace")
	require.NotNil(t, replace, "expected --replace flag to exist")
	assert.Equal(t, "false", replace.DefValue)
}

func TestLoadRequiresFile(t *testing.T) {
	_, err := executeCommand("load")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--file")
}
