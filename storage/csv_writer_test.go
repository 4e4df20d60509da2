package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"carsome-scraper/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResultSet(t *testing.T) *models.ResultSet {
	t.Helper()
	scrapedAt := time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC)
	return &models.ResultSet{
		ScrapedAt: scrapedAt,
		Listings: []models.CarListing{
			{RowNumber: 1, Brand: "honda", Model: "civic", Year: 2019, Mileage: 42000, Price: 89800.00, URL: "https://www.carsome.my/buy-car/honda/civic/abc", ScrapedAt: scrapedAt},
			{RowNumber: 2, Brand: "honda", Model: "civic", Year: 2021, Mileage: 18500, Price: 112500.50, URL: "https://www.carsome.my/buy-car/honda/civic/def", ScrapedAt: scrapedAt},
		},
	}
}

func TestCSVRoundTrip(t *testing.T) {
	rs := sampleResultSet(t)

	data, err := EncodeCSV(rs)
	require.NoError(t, err)

	decoded, err := DecodeCSV(data)
	require.NoError(t, err)

	require.Len(t, decoded.Listings, len(rs.Listings))
	for i, want := range rs.Listings {
		assert.Equal(t, want, decoded.Listings[i], "listing %d", i)
	}
	assert.Equal(t, rs.ScrapedAt, decoded.ScrapedAt)
}

func TestCSVRoundTripKeepsFullPrecision(t *testing.T) {
	// run timestamps carry nanoseconds and prices can carry more than
	// two decimals; neither may be lost between Store and Lookup
	scrapedAt := time.Now().UTC()
	rs := &models.ResultSet{
		ScrapedAt: scrapedAt,
		Listings: []models.CarListing{
			{RowNumber: 1, Brand: "honda", Model: "civic", Year: 2019, Mileage: 42000, Price: 89800.125, URL: "https://www.carsome.my/buy-car/honda/civic/abc", ScrapedAt: scrapedAt},
		},
	}

	data, err := EncodeCSV(rs)
	require.NoError(t, err)

	decoded, err := DecodeCSV(data)
	require.NoError(t, err)

	require.Len(t, decoded.Listings, 1)
	assert.Equal(t, rs.Listings[0], decoded.Listings[0])
	assert.True(t, decoded.ScrapedAt.Equal(scrapedAt), "scraped_at must survive with nanosecond precision")
	assert.Equal(t, 89800.125, decoded.Listings[0].Price)
}

func TestDecodeCSVRejectsMalformedRows(t *testing.T) {
	_, err := DecodeCSV([]byte(""))
	assert.Error(t, err)

	_, err = DecodeCSV([]byte("row_number,brand,model,year,mileage,price,url,scraped_at\n1,honda,civic,notayear,42000,89800.00,u,2026-08-29T10:30:00Z\n"))
	assert.Error(t, err)
}

func TestCSVWriterWritesTimestampedFile(t *testing.T) {
	dir := t.TempDir()
	rs := sampleResultSet(t)

	path, err := NewCSVWriter(dir).Write(rs)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "car_listings_2026-08-29_10-30-00.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	decoded, err := DecodeCSV(data)
	require.NoError(t, err)
	assert.Len(t, decoded.Listings, 2)
}

func TestCSVWriterSkipsEmptyResultSet(t *testing.T) {
	path, err := NewCSVWriter(t.TempDir()).Write(&models.ResultSet{})
	require.NoError(t, err)
	assert.Empty(t, path)
}
