package database_test

import (
	"context"
	"math"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-comparables-engine/internal/models"
	"hotel-comparables-engine/internal/services/database"
)

var testDB *database.DB

func TestMain(m *testing.M) {
	// Integration tests only run against a real database.
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		os.Exit(0)
	}

	var err error
	testDB, err = database.NewFromURL(url)
	if err != nil {
		panic("Failed to connect to test database: " + err.Error())
	}

	if _, err := testDB.ExecContext(context.Background(), database.PropertiesSchema); err != nil {
		panic("Failed to create schema: " + err.Error())
	}

	code := m.Run()

	testDB.Close()
	os.Exit(code)
}

func TestDatabaseConnection(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, testDB.HealthCheck(ctx))
}

func TestPropertyRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := database.NewPropertyRepository(testDB)
	name := "test-" + uuid.NewString()
	t.Cleanup(func() {
		_, _ = testDB.ExecContext(context.Background(), `DELETE FROM properties WHERE dataset = $1`, name)
	})

	account := "ACC-1"
	dataset := models.NewDataset([]models.Property{
		{
			Name: "Alpha Inn", Address: "1 Main St", OwnerName: "Alpha LLC", OwnerAddress: "1 Owner Rd",
			Class: "A", Type: models.PropertyTypeHotel, MarketValue: 1000000, VPR: 10, AccountNumber: &account,
		},
		{
			Name: "Bravo Suites", Address: "2 Main St", OwnerName: "Bravo LLC", OwnerAddress: "2 Owner Rd",
			Class: "A", Type: models.PropertyTypeHotel, MarketValue: 1050000, VPR: math.NaN(),
		},
	}, models.NewColumnSet(models.AllColumns()...))

	n, err := repo.BulkLoad(ctx, name, dataset)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	count, err := repo.Count(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	loaded, err := repo.GetDataset(ctx, name)
	require.NoError(t, err)
	require.Equal(t, 2, loaded.Len())

	first := loaded.Properties[0]
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, "Alpha Inn", first.Name)
	assert.Equal(t, models.PropertyTypeHotel, first.Type)
	assert.Equal(t, 1000000.0, first.MarketValue)
	require.NotNil(t, first.AccountNumber)
	assert.Equal(t, "ACC-1", *first.AccountNumber)

	second := loaded.Properties[1]
	assert.Equal(t, 1, second.Index, "insertion order is kept")
	assert.True(t, math.IsNaN(second.VPR), "NULL VPR should load as missing")
	assert.Nil(t, second.AccountNumber)
}

func TestPropertyRepository_ReplaceDataset(t *testing.T) {
	ctx := context.Background()
	repo := database.NewPropertyRepository(testDB)
	name := "test-" + uuid.NewString()
	t.Cleanup(func() {
		_, _ = testDB.ExecContext(context.Background(), `DELETE FROM properties WHERE dataset = $1`, name)
	})

	first := models.NewDataset([]models.Property{
		{Name: "Alpha Inn", Type: models.PropertyTypeHotel, MarketValue: 1000000, VPR: 10},
		{Name: "Bravo Suites", Type: models.PropertyTypeHotel, MarketValue: 1050000, VPR: 8},
	}, nil)
	second := models.NewDataset([]models.Property{
		{Name: "Charlie Lodge", Type: models.PropertyTypeHotel, MarketValue: 980000, VPR: 9},
	}, nil)

	_, err := repo.BulkLoad(ctx, name, first)
	require.NoError(t, err)

	n, err := repo.ReplaceDataset(ctx, name, second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	loaded, err := repo.GetDataset(ctx, name)
	require.NoError(t, err)
	require.Equal(t, 1, loaded.Len())
	assert.Equal(t, "Charlie Lodge", loaded.Properties[0].Name)

	datasets, err := repo.ListDatasets(ctx)
	require.NoError(t, err)
	assert.Contains(t, datasets, database.DatasetInfo{Name: name, Properties: 1})
}

func TestPropertyRepository_EmptyDataset(t *testing.T) {
	repo := database.NewPropertyRepository(testDB)

	loaded, err := repo.GetDataset(context.Background(), "missing-"+uuid.NewString())
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
}
