package cli

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-comparables-engine/internal/models"
	"hotel-comparables-engine/internal/services/matcher"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected string
	}{
		{"zero", 0, "0"},
		{"small", 999, "999"},
		{"thousands", 250000, "250,000"},
		{"millions", 1250000, "1,250,000"},
		{"one decimal", 1234.5, "1,234.5"},
		{"two decimals", 0.25, "0.25"},
		{"rounds up", 999.999, "1,000"},
		{"negative", -50000, "-50,000"},
		{"missing", math.NaN(), "-"},
		{"infinite", math.Inf(1), "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatMoney(tt.value))
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxLen   int
		expected string
	}{
		{"short", "Inn", 10, "Inn"},
		{"exact", "Grand Inn", 9, "Grand Inn"},
		{"long", "The Grand Harbor Inn", 10, "The Gra..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, truncate(tt.input, tt.maxLen))
		})
	}
}

func TestPropertyFields(t *testing.T) {
	account := "ACC-1"
	fields := propertyFields(models.Property{
		Name:          "Harbor Inn",
		MarketValue:   1250000,
		VPR:           math.NaN(),
		AccountNumber: &account,
	})

	assert.Len(t, fields, len(models.AllColumns()))
	assert.Equal(t, "Harbor Inn", fields[string(models.ColumnHotelName)])
	assert.Equal(t, "1250000", fields[string(models.ColumnMarketValue)])
	assert.Equal(t, "", fields[string(models.ColumnVPR)])
	assert.Equal(t, "ACC-1", fields[string(models.ColumnAccountNumber)])
}

func TestPrintComparablesTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printComparablesTable(&buf, []matcher.MatchCandidate{
		{Property: models.Property{Name: "Harbor Inn", Class: "A", MarketValue: 1050000, VPR: 8}, Rank: 1, ValueDiff: 50000, VPRDiff: 2},
	}))

	out := buf.String()
	assert.Contains(t, out, "RANK")
	assert.Contains(t, out, "Harbor Inn")
	assert.Contains(t, out, "$1,050,000")
	assert.Contains(t, out, "50,000")
	assert.Contains(t, out, "Total: 1 comparables")
}

func TestPrintNavigation(t *testing.T) {
	tests := []struct {
		name     string
		index    int
		total    int
		expected string
	}{
		{"first", 0, 3, "(next: 1)\n"},
		{"middle", 1, 3, "(previous: 0, next: 2)\n"},
		{"last", 2, 3, "(previous: 1)\n"},
		{"only", 0, 1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printNavigation(&buf, tt.index, tt.total)
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}
