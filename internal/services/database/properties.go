package database

import (
	"context"
	"fmt"
	"math"

	"github.com/jackc/pgx/v5"

	"hotel-comparables-engine/internal/models"
)

// PropertiesSchema creates the table a dataset can be loaded from.
const PropertiesSchema = `
CREATE TABLE IF NOT EXISTS properties (
	id                   BIGSERIAL PRIMARY KEY,
	dataset              TEXT NOT NULL DEFAULT 'default',
	hotel_name           TEXT,
	property_address     TEXT,
	owner_name           TEXT,
	owner_street_address TEXT,
	hotel_class          TEXT,
	property_type        TEXT,
	market_value         DOUBLE PRECISION,
	vpr                  DOUBLE PRECISION,
	account_number       TEXT
);
CREATE INDEX IF NOT EXISTS idx_properties_dataset ON properties (dataset, id);`

// DefaultDatasetName is used when no dataset name is given.
const DefaultDatasetName = "default"

var propertyColumns = []string{
	"dataset",
	"hotel_name",
	"property_address",
	"owner_name",
	"owner_street_address",
	"hotel_class",
	"property_type",
	"market_value",
	"vpr",
	"account_number",
}

// PropertyRepository reads property datasets.
type PropertyRepository struct {
	db *DB
}

// NewPropertyRepository creates a new property repository.
func NewPropertyRepository(db *DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

// GetDataset loads every property of the named dataset in insertion order.
func (r *PropertyRepository) GetDataset(ctx context.Context, name string) (*models.Dataset, error) {
	name = datasetName(name)

	query := `
		SELECT hotel_name, property_address, owner_name, owner_street_address,
		       hotel_class, property_type, market_value, vpr, account_number
		FROM properties
		WHERE dataset = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query properties: %w", err)
	}
	defer rows.Close()

	var properties []models.Property
	for rows.Next() {
		var (
			hotelName, address, ownerName, ownerAddress *string
			class, propertyType, account                *string
			marketValue, vpr                            *float64
		)

		if err := rows.Scan(
			&hotelName,
			&address,
			&ownerName,
			&ownerAddress,
			&class,
			&propertyType,
			&marketValue,
			&vpr,
			&account,
		); err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}

		p := models.Property{
			Name:          deref(hotelName),
			Address:       deref(address),
			OwnerName:     deref(ownerName),
			OwnerAddress:  deref(ownerAddress),
			Class:         deref(class),
			Type:          models.PropertyType(deref(propertyType)),
			MarketValue:   derefFloat(marketValue),
			VPR:           derefFloat(vpr),
			AccountNumber: account,
		}
		if p.AccountNumber != nil && *p.AccountNumber == "" {
			p.AccountNumber = nil
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read properties: %w", err)
	}

	return models.NewDataset(properties, models.NewColumnSet(models.AllColumns()...)), nil
}

// Count returns the number of properties in the named dataset.
func (r *PropertyRepository) Count(ctx context.Context, name string) (int, error) {
	name = datasetName(name)

	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM properties WHERE dataset = $1`, name).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count properties: %w", err)
	}
	return count, nil
}

// BulkLoad appends a dataset under the given name with COPY.
func (r *PropertyRepository) BulkLoad(ctx context.Context, name string, dataset *models.Dataset) (int64, error) {
	name = datasetName(name)

	n, err := r.db.CopyFrom(ctx, "properties", propertyColumns, copyRows(name, dataset))
	if err != nil {
		return 0, fmt.Errorf("failed to copy properties: %w", err)
	}
	return n, nil
}

// ReplaceDataset swaps the named dataset for the given rows in one transaction.
func (r *PropertyRepository) ReplaceDataset(ctx context.Context, name string, dataset *models.Dataset) (int64, error) {
	name = datasetName(name)

	var n int64
	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM properties WHERE dataset = $1`, name); err != nil {
			return fmt.Errorf("failed to clear dataset: %w", err)
		}

		var err error
		n, err = tx.CopyFrom(ctx, pgx.Identifier{"properties"}, propertyColumns, pgx.CopyFromRows(copyRows(name, dataset)))
		if err != nil {
			return fmt.Errorf("failed to copy properties: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// DatasetInfo is a stored dataset and its size.
type DatasetInfo struct {
	Name       string `json:"name"`
	Properties int    `json:"properties"`
}

// ListDatasets returns every stored dataset by name.
func (r *PropertyRepository) ListDatasets(ctx context.Context) ([]DatasetInfo, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT dataset, COUNT(*)
		FROM properties
		GROUP BY dataset
		ORDER BY dataset`)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	var datasets []DatasetInfo
	for rows.Next() {
		var info DatasetInfo
		if err := rows.Scan(&info.Name, &info.Properties); err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		datasets = append(datasets, info)
	}
	return datasets, rows.Err()
}

func copyRows(name string, dataset *models.Dataset) [][]interface{} {
	rows := make([][]interface{}, 0, dataset.Len())
	for _, p := range dataset.Properties {
		rows = append(rows, []interface{}{
			name,
			p.Name,
			p.Address,
			p.OwnerName,
			p.OwnerAddress,
			p.Class,
			string(p.Type),
			nullableFloat(p.MarketValue),
			nullableFloat(p.VPR),
			p.AccountNumber,
		})
	}
	return rows
}

func datasetName(name string) string {
	if name == "" {
		return DefaultDatasetName
	}
	return name
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// derefFloat maps SQL NULL to NaN, the in-memory marker for a missing number.
func derefFloat(f *float64) float64 {
	if f == nil {
		return math.NaN()
	}
	return *f
}

func nullableFloat(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
