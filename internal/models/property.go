// Package models defines the data structures for the hotel comparables engine.
package models

import (
	"math"
	"strconv"
)

// PropertyType is the business-type tag of a property (e.g. "Hotel").
type PropertyType string

const (
	// PropertyTypeHotel is the only type accepted for comparables.
	PropertyTypeHotel PropertyType = "Hotel"
)

// Column is the source label of a property attribute.
type Column string

// Report and ingestion column labels. Downstream consumers expect these exact strings.
const (
	ColumnVPR             Column = "VPR"
	ColumnHotelName       Column = "Hotel Name"
	ColumnPropertyAddress Column = "Property Address"
	ColumnMarketValue     Column = "Market Value-2024"
	ColumnHotelClass      Column = "Hotel Class"
	ColumnOwnerName       Column = "Owner Name/ LLC Name"
	ColumnOwnerAddress    Column = "Owner Street Address"
	ColumnType            Column = "Type"
	ColumnAccountNumber   Column = "account number"
)

// ReportFields returns the attribute columns of a report block, in output order.
func ReportFields() []Column {
	return []Column{
		ColumnVPR,
		ColumnHotelName,
		ColumnPropertyAddress,
		ColumnMarketValue,
		ColumnHotelClass,
		ColumnOwnerName,
		ColumnOwnerAddress,
		ColumnType,
		ColumnAccountNumber,
	}
}

// AllColumns returns every column the engine knows about.
func AllColumns() []Column {
	return ReportFields()
}

// ColumnSet records which columns were present in a source table.
type ColumnSet map[Column]bool

// NewColumnSet creates a set holding the given columns.
func NewColumnSet(cols ...Column) ColumnSet {
	set := make(ColumnSet, len(cols))
	for _, c := range cols {
		set[c] = true
	}
	return set
}

// Has reports whether the column is present.
func (s ColumnSet) Has(c Column) bool {
	return s[c]
}

// Property is one real-estate record. It is never mutated after ingestion.
type Property struct {
	Index         int          `json:"index"`
	Name          string       `json:"name"`
	Address       string       `json:"address"`
	OwnerName     string       `json:"owner_name"`
	OwnerAddress  string       `json:"owner_address"`
	Class         string       `json:"class"`
	Type          PropertyType `json:"type"`
	MarketValue   float64      `json:"market_value"`
	VPR           float64      `json:"vpr"`
	AccountNumber *string      `json:"account_number,omitempty"`
}

// HasValidMarketValue reports whether the market value is a finite number.
func (p *Property) HasValidMarketValue() bool {
	return isFinite(p.MarketValue)
}

// HasValidVPR reports whether the VPR is a finite number.
func (p *Property) HasValidVPR() bool {
	return isFinite(p.VPR)
}

// Field returns the display value of one column. Non-finite numbers and a
// missing account number render as blank.
func (p *Property) Field(c Column) string {
	switch c {
	case ColumnVPR:
		return formatNumber(p.VPR)
	case ColumnHotelName:
		return p.Name
	case ColumnPropertyAddress:
		return p.Address
	case ColumnMarketValue:
		return formatNumber(p.MarketValue)
	case ColumnHotelClass:
		return p.Class
	case ColumnOwnerName:
		return p.OwnerName
	case ColumnOwnerAddress:
		return p.OwnerAddress
	case ColumnType:
		return string(p.Type)
	case ColumnAccountNumber:
		if p.AccountNumber == nil {
			return ""
		}
		return *p.AccountNumber
	default:
		return ""
	}
}

// Dataset is an ordered, read-only set of properties together with the
// columns that were present in its source.
type Dataset struct {
	Properties []Property `json:"properties"`
	Columns    ColumnSet  `json:"-"`
}

// NewDataset builds a dataset and stamps each property with its position.
func NewDataset(properties []Property, columns ColumnSet) *Dataset {
	for i := range properties {
		properties[i].Index = i
	}
	if columns == nil {
		columns = NewColumnSet(AllColumns()...)
	}
	return &Dataset{Properties: properties, Columns: columns}
}

// Len returns the number of properties.
func (d *Dataset) Len() int {
	return len(d.Properties)
}

// HasColumn reports whether the source table carried the column.
func (d *Dataset) HasColumn(c Column) bool {
	return d.Columns.Has(c)
}

// At returns the property at index i.
func (d *Dataset) At(i int) (Property, error) {
	if i < 0 || i >= len(d.Properties) {
		return Property{}, ErrSubjectOutOfRange
	}
	return d.Properties[i], nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func formatNumber(f float64) string {
	if !isFinite(f) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
