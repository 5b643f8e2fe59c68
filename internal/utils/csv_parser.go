package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"hotel-comparables-engine/internal/models"
)

// CSVParser errors
var (
	ErrEmptyCSV       = errors.New("CSV content is empty")
	ErrMissingColumns = errors.New("no recognised property columns")
	ErrNoDataRows     = errors.New("CSV file contains no data rows")
)

// ColumnAliases maps normalized header spellings to the canonical column.
// Keys are lower case with underscores and repeated spaces folded to one space.
var ColumnAliases = map[string]models.Column{
	"vpr":            models.ColumnVPR,
	"vpu":            models.ColumnVPR,
	"vpu/vpr":        models.ColumnVPR,
	"vpr/vpu":        models.ColumnVPR,
	"value per room": models.ColumnVPR,
	"value per unit": models.ColumnVPR,

	"hotel name":    models.ColumnHotelName,
	"name":          models.ColumnHotelName,
	"property name": models.ColumnHotelName,

	"property address": models.ColumnPropertyAddress,
	"address":          models.ColumnPropertyAddress,
	"situs address":    models.ColumnPropertyAddress,

	"market value-2024": models.ColumnMarketValue,
	"market value 2024": models.ColumnMarketValue,
	"market value":      models.ColumnMarketValue,
	"value":             models.ColumnMarketValue,

	"hotel class": models.ColumnHotelClass,
	"class":       models.ColumnHotelClass,

	"owner name/ llc name": models.ColumnOwnerName,
	"owner name/llc name":  models.ColumnOwnerName,
	"owner name":           models.ColumnOwnerName,
	"llc name":             models.ColumnOwnerName,
	"owner":                models.ColumnOwnerName,

	"owner street address": models.ColumnOwnerAddress,
	"owner address":        models.ColumnOwnerAddress,

	"type":          models.ColumnType,
	"property type": models.ColumnType,

	"account number": models.ColumnAccountNumber,
	"account":        models.ColumnAccountNumber,
	"account id":     models.ColumnAccountNumber,
	"account no":     models.ColumnAccountNumber,
}

// NormalizeHeader folds a header cell to the form used by ColumnAliases.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	h = strings.ReplaceAll(h, "_", " ")
	return strings.Join(strings.Fields(h), " ")
}

// ResolveColumn returns the canonical column for a header cell.
func ResolveColumn(header string) (models.Column, bool) {
	col, ok := ColumnAliases[NormalizeHeader(header)]
	return col, ok
}

// CSVParser reads a property table into a Dataset.
type CSVParser struct {
	columnMapping map[models.Column]int
}

// NewCSVParser creates a new CSV parser instance.
func NewCSVParser() *CSVParser {
	return &CSVParser{
		columnMapping: make(map[models.Column]int),
	}
}

// ParseDataset parses CSV content into a dataset.
//
// Every column is optional, but at least one must be recognised. A numeric
// cell that cannot be parsed becomes NaN and is reported as a warning; the row
// is kept so dataset positions match the source. Rows the CSV reader rejects
// are dropped and reported.
func (p *CSVParser) ParseDataset(content string) (*models.Dataset, []error) {
	if strings.TrimSpace(content) == "" {
		return nil, []error{ErrEmptyCSV}
	}
	return p.Parse(strings.NewReader(content))
}

// Parse reads CSV from r into a dataset. See ParseDataset.
func (p *CSVParser) Parse(r io.Reader) (*models.Dataset, []error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	header, err := reader.Read()
	if err == io.EOF {
		return nil, []error{ErrEmptyCSV}
	}
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read header: %w", err)}
	}

	columns, err := p.buildColumnMapping(header)
	if err != nil {
		return nil, []error{err}
	}

	var properties []models.Property
	var parseErrors []error
	lineNum := 1 // Header is line 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}
		if isBlankRecord(record) {
			continue
		}

		property, warnings := p.parseRow(record)
		for _, w := range warnings {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, w))
		}
		properties = append(properties, property)
	}

	if len(properties) == 0 {
		return nil, append([]error{ErrNoDataRows}, parseErrors...)
	}

	return models.NewDataset(properties, columns), parseErrors
}

// buildColumnMapping maps canonical columns to their indices. The first
// header resolving to a column wins.
func (p *CSVParser) buildColumnMapping(header []string) (models.ColumnSet, error) {
	p.columnMapping = make(map[models.Column]int)
	columns := models.NewColumnSet()

	for i, h := range header {
		col, ok := ResolveColumn(h)
		if !ok {
			continue
		}
		if _, seen := p.columnMapping[col]; seen {
			continue
		}
		p.columnMapping[col] = i
		columns[col] = true
	}

	if len(p.columnMapping) == 0 {
		return nil, fmt.Errorf("%w: header %q", ErrMissingColumns, strings.Join(header, ","))
	}

	return columns, nil
}

// parseRow parses a single CSV row. Absent columns yield zero strings, NaN
// numbers and a nil account number.
func (p *CSVParser) parseRow(record []string) (models.Property, []error) {
	getValue := func(column models.Column) (string, bool) {
		idx, ok := p.columnMapping[column]
		if !ok || idx >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[idx]), true
	}

	var warnings []error
	parseNumber := func(column models.Column) float64 {
		raw, ok := getValue(column)
		if !ok || raw == "" {
			return math.NaN()
		}
		f, err := parseFloat(raw)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("invalid %s %q: %w", column, raw, err))
			return math.NaN()
		}
		return f
	}

	name, _ := getValue(models.ColumnHotelName)
	address, _ := getValue(models.ColumnPropertyAddress)
	ownerName, _ := getValue(models.ColumnOwnerName)
	ownerAddress, _ := getValue(models.ColumnOwnerAddress)
	class, _ := getValue(models.ColumnHotelClass)
	propertyType, _ := getValue(models.ColumnType)

	property := models.Property{
		Name:         name,
		Address:      address,
		OwnerName:    ownerName,
		OwnerAddress: ownerAddress,
		Class:        class,
		Type:         models.PropertyType(propertyType),
		MarketValue:  parseNumber(models.ColumnMarketValue),
		VPR:          parseNumber(models.ColumnVPR),
	}

	if account, ok := getValue(models.ColumnAccountNumber); ok && account != "" {
		property.AccountNumber = &account
	}

	return property, warnings
}

// parseFloat parses a string to float64, handling common formats.
func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, errors.New("empty value")
	}

	// Remove commas and currency symbols
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimSpace(s)

	// Accounting negatives, e.g. "(1500)"
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}

	return strconv.ParseFloat(s, 64)
}

func isBlankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ValidateCSVStructure performs a quick validation of CSV structure without full parsing.
func ValidateCSVStructure(content string) (*CSVValidationResult, error) {
	result := &CSVValidationResult{
		Valid:          false,
		RowCount:       0,
		Columns:        []string{},
		MissingColumns: []string{},
		Errors:         []string{},
	}

	if strings.TrimSpace(content) == "" {
		result.Errors = append(result.Errors, "empty file")
		return result, nil
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to read header: %v", err))
		return result, nil
	}

	recognised := make(map[models.Column]bool)
	for _, col := range header {
		if c, ok := ResolveColumn(col); ok {
			recognised[c] = true
		}
		result.Columns = append(result.Columns, col)
	}

	// Absent columns are tolerated but reported, they render blank in reports.
	for _, col := range models.AllColumns() {
		if !recognised[col] {
			result.MissingColumns = append(result.MissingColumns, string(col))
		}
	}

	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row error: %v", err))
			continue
		}
		result.RowCount++
	}

	result.Valid = len(recognised) > 0 && result.RowCount > 0

	return result, nil
}

// CSVValidationResult contains the results of CSV validation.
type CSVValidationResult struct {
	Valid          bool     `json:"valid"`
	RowCount       int      `json:"row_count"`
	Columns        []string `json:"columns"`
	MissingColumns []string `json:"missing_columns"`
	Errors         []string `json:"errors"`
}
