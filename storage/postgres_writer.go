package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"property-harvester/models"
)

const pgColumnsPerRow = 10

// PostgresWriter persists cleaned listings to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	return NewPostgresWriterWithDB(db)
}

// NewPostgresWriterWithDB wraps an open database handle and migrates it.
func NewPostgresWriterWithDB(db *sql.DB) (*PostgresWriter, error) {
	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS properties (
			id                    TEXT             PRIMARY KEY,
			url                   TEXT             NOT NULL DEFAULT '',
			price                 NUMERIC(14,2)    NOT NULL,
			city                  TEXT             NOT NULL DEFAULT '',
			zip_code              TEXT             NOT NULL DEFAULT '',
			latitude              DOUBLE PRECISION NOT NULL,
			longitude             DOUBLE PRECISION NOT NULL,
			synthetic_coordinates BOOLEAN          NOT NULL DEFAULT FALSE,
			photos                TEXT[]           NOT NULL DEFAULT '{}',
			payload               JSONB            NOT NULL,
			updated_at            TIMESTAMPTZ      NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_properties_price ON properties(price);
		CREATE INDEX IF NOT EXISTS idx_properties_city  ON properties(city);
		CREATE INDEX IF NOT EXISTS idx_properties_zip   ON properties(zip_code);
	`)
	return err
}

// Write replaces the stored snapshot with listings in one transaction.
// An empty set clears the table. Listings without an id cannot be keyed
// and are skipped.
func (pw *PostgresWriter) Write(listings []*models.Listing) error {
	keyed := make([]*models.Listing, 0, len(listings))
	for _, l := range listings {
		if l != nil && l.ID != "" {
			keyed = append(keyed, l)
		}
	}

	tx, err := pw.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM properties"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}

	const batchSize = 50
	for i := 0; i < len(keyed); i += batchSize {
		end := i + batchSize
		if end > len(keyed) {
			end = len(keyed)
		}
		if err := insertBatch(tx, keyed[i:end]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func insertBatch(tx *sql.Tx, batch []*models.Listing) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*pgColumnsPerRow)

	for idx, l := range batch {
		payload, err := json.Marshal(l)
		if err != nil {
			return fmt.Errorf("postgres: encode listing %s: %w", l.ID, err)
		}

		placeholders := make([]string, pgColumnsPerRow)
		for c := range placeholders {
			placeholders[c] = fmt.Sprintf("$%d", idx*pgColumnsPerRow+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			l.ID, l.URL, l.Price, l.City, l.ZipCode, l.Latitude, l.Longitude,
			l.SyntheticCoordinates, pq.Array(l.Photos), payload)
	}

	query := fmt.Sprintf(`
		INSERT INTO properties (id, url, price, city, zip_code, latitude, longitude,
			synthetic_coordinates, photos, payload)
		VALUES %s
		ON CONFLICT (id) DO UPDATE SET
			url = EXCLUDED.url,
			price = EXCLUDED.price,
			city = EXCLUDED.city,
			zip_code = EXCLUDED.zip_code,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			synthetic_coordinates = EXCLUDED.synthetic_coordinates,
			photos = EXCLUDED.photos,
			payload = EXCLUDED.payload,
			updated_at = NOW()
	`, strings.Join(valueStrings, ","))

	if _, err := tx.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert batch: %w", err)
	}
	return nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// FetchAll retrieves all stored listings, most expensive first.
func (pw *PostgresWriter) FetchAll() ([]*models.Listing, error) {
	rows, err := pw.db.Query(`
		SELECT payload, synthetic_coordinates
		FROM properties
		ORDER BY price DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var listings []*models.Listing
	for rows.Next() {
		var payload []byte
		var synthetic bool
		if err := rows.Scan(&payload, &synthetic); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		l := &models.Listing{}
		if err := json.Unmarshal(payload, l); err != nil {
			return nil, fmt.Errorf("postgres: decode payload: %w", err)
		}
		l.SyntheticCoordinates = synthetic
		listings = append(listings, l)
	}
	return listings, rows.Err()
}
