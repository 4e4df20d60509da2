package storage

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"carsome-scraper/models"
	"carsome-scraper/utils"
)

// csvHeader is the column layout of the exported dataset and of the
// cache blob. EncodeCSV and DecodeCSV must stay in lockstep with it.
var csvHeader = []string{"row_number", "brand", "model", "year", "mileage", "price", "url", "scraped_at"}

// EncodeCSV serializes a result set into CSV bytes. The same encoding
// is written to disk for the user and stored as the cache blob, so it
// must be lossless: prices keep full float precision and timestamps
// keep their nanoseconds, or a cached set would not read back equal.
func EncodeCSV(rs *models.ResultSet) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write(csvHeader)
	for _, l := range rs.Listings {
		w.Write([]string{
			strconv.Itoa(l.RowNumber),
			l.Brand,
			l.Model,
			strconv.Itoa(l.Year),
			strconv.Itoa(l.Mileage),
			strconv.FormatFloat(l.Price, 'f', -1, 64),
			l.URL,
			l.ScrapedAt.UTC().Format(time.RFC3339Nano),
		})
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv encode error: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeCSV restores a result set from cache-blob bytes. Failed-page
// information is not persisted; a decoded set carries listings only.
func DecodeCSV(data []byte) (*models.ResultSet, error) {
	r := csv.NewReader(bytes.NewReader(data))
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv decode error: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv decode error: missing header row")
	}

	rs := &models.ResultSet{}
	for i, row := range rows[1:] {
		if len(row) != len(csvHeader) {
			return nil, fmt.Errorf("csv decode error: row %d has %d fields, want %d", i+1, len(row), len(csvHeader))
		}

		rowNum, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, fmt.Errorf("csv decode error: row %d row_number: %w", i+1, err)
		}
		year, err := strconv.Atoi(row[3])
		if err != nil {
			return nil, fmt.Errorf("csv decode error: row %d year: %w", i+1, err)
		}
		mileage, err := strconv.Atoi(row[4])
		if err != nil {
			return nil, fmt.Errorf("csv decode error: row %d mileage: %w", i+1, err)
		}
		price, err := strconv.ParseFloat(row[5], 64)
		if err != nil {
			return nil, fmt.Errorf("csv decode error: row %d price: %w", i+1, err)
		}
		scrapedAt, err := time.Parse(time.RFC3339Nano, row[7])
		if err != nil {
			return nil, fmt.Errorf("csv decode error: row %d scraped_at: %w", i+1, err)
		}

		rs.Listings = append(rs.Listings, models.CarListing{
			RowNumber: rowNum,
			Brand:     row[1],
			Model:     row[2],
			Year:      year,
			Mileage:   mileage,
			Price:     price,
			URL:       row[6],
			ScrapedAt: scrapedAt,
		})
	}

	if len(rs.Listings) > 0 {
		rs.ScrapedAt = rs.Listings[0].ScrapedAt
	}
	return rs, nil
}

// CSVWriter exports result sets to timestamped files under one
// directory, so repeated downloads never collide.
type CSVWriter struct {
	dir string
}

func NewCSVWriter(dir string) *CSVWriter {
	return &CSVWriter{dir: dir}
}

// Write saves the result set and returns the path it was written to.
func (w *CSVWriter) Write(rs *models.ResultSet) (string, error) {
	if len(rs.Listings) == 0 {
		utils.Warn("No listings to write")
		return "", nil
	}

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("could not create output dir: %w", err)
	}

	data, err := EncodeCSV(rs)
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("car_listings_%s.csv", rs.ScrapedAt.UTC().Format("2006-01-02_15-04-05"))
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("could not write file: %w", err)
	}

	utils.Success("Saved %d listings → %s", len(rs.Listings), path)
	return path, nil
}
