package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"property-harvester/models"
)

// rawSnapshotSize is how many raw records the audit CSV keeps.
const rawSnapshotSize = 10

// CSVWriter writes a snapshot of raw (unnormalized) listings to a CSV file
// so upstream shape changes can be spotted. It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)

	if err := w.Write([]string{
		"property_id", "property_url", "status", "list_price", "street", "city", "zip_code",
		"latitude", "longitude", "primary_photo", "alt_photos", "list_date",
	}); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteRaw writes the first rawSnapshotSize raw listings.
func (c *CSVWriter) WriteRaw(listings []*models.RawListing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(listings) > rawSnapshotSize {
		listings = listings[:rawSnapshotSize]
	}

	for _, l := range listings {
		if l == nil {
			continue
		}
		addr := l.Address
		if addr == nil {
			addr = &models.RawAddress{}
		}
		primary := ""
		if l.PrimaryPhoto != nil {
			primary = l.PrimaryPhoto.Href
		}
		row := []string{
			l.PropertyID.String(),
			l.PropertyURL.String(),
			l.Status.String(),
			formatOptional(l.ListPrice),
			addr.Street.String(),
			addr.City.String(),
			addr.ZipCode.String(),
			formatOptional(l.Latitude),
			formatOptional(l.Longitude),
			primary,
			strconv.Itoa(len(l.AltPhotos)),
			l.ListDate.String(),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

func formatOptional(f models.FlexFloat) string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Value, 'f', -1, 64)
}
