package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"property-harvester/models"
)

// JSONWriter writes the cleaned listings as one pretty-printed JSON array.
// Each Write replaces the file. It is safe for concurrent use.
type JSONWriter struct {
	mu   sync.Mutex
	path string
}

// NewJSONWriter returns a writer for path. Intermediate directories are
// created on Write.
func NewJSONWriter(path string) *JSONWriter {
	return &JSONWriter{path: path}
}

// Path returns the output file path.
func (j *JSONWriter) Path() string { return j.path }

// Write encodes listings with 2-space indentation, leaving non-ASCII and
// HTML characters unescaped, and atomically replaces the output file. The
// positions of listings with generated coordinates go to a sidecar file
// (see MetaPath) since the dataset schema has no field for them.
func (j *JSONWriter) Write(listings []*models.Listing) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if listings == nil {
		listings = []*models.Listing{}
	}

	data, err := encodeIndented(listings)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(j.path, data); err != nil {
		return err
	}

	meta := datasetMeta{Count: len(listings), SyntheticCoordinates: []int{}}
	for i, l := range listings {
		if l != nil && l.SyntheticCoordinates {
			meta.SyntheticCoordinates = append(meta.SyntheticCoordinates, i)
		}
	}
	data, err = encodeIndented(meta)
	if err != nil {
		return err
	}
	return writeFileAtomic(MetaPath(j.path), data)
}

// datasetMeta is what the dataset itself cannot carry.
type datasetMeta struct {
	Count                int   `json:"count"`
	SyntheticCoordinates []int `json:"synthetic_coordinates"`
}

// MetaPath returns the sidecar path for a dataset: properties.json becomes
// properties.meta.json.
func MetaPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".meta.json"
}

func encodeIndented(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("json: encode: %w", err)
	}
	return buf.Bytes(), nil
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("json: create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".harvest-*.json")
	if err != nil {
		return fmt.Errorf("json: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("json: write %q: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("json: close %q: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("json: chmod %q: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("json: replace %q: %w", path, err)
	}
	return nil
}

func (j *JSONWriter) Close() error { return nil }

// JSONStore reads listings back from a file written by JSONWriter.
type JSONStore struct {
	path string
}

// NewJSONStore returns a store over path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Path returns the backing file path.
func (s *JSONStore) Path() string { return s.path }

// FetchAll decodes every listing in the file and restores the
// generated-coordinates flag from the sidecar. A missing sidecar, or one
// written for a different number of listings, is ignored.
func (s *JSONStore) FetchAll() ([]*models.Listing, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("json: read %q: %w", s.path, err)
	}
	var listings []*models.Listing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("json: decode %q: %w", s.path, err)
	}

	meta, err := s.readMeta()
	if err != nil {
		return nil, err
	}
	if meta != nil && meta.Count == len(listings) {
		for _, i := range meta.SyntheticCoordinates {
			if i >= 0 && i < len(listings) && listings[i] != nil {
				listings[i].SyntheticCoordinates = true
			}
		}
	}
	return listings, nil
}

func (s *JSONStore) readMeta() (*datasetMeta, error) {
	path := MetaPath(s.path)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("json: read %q: %w", path, err)
	}
	var meta datasetMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("json: decode %q: %w", path, err)
	}
	return &meta, nil
}
