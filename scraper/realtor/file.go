package realtor

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"property-harvester/models"
	"property-harvester/utils"
)

// FileFetcher replays a saved dump instead of hitting the network. It reads
// a JSON array of raw listings, NDJSON (one listing per line), or a saved
// search results page (.html).
type FileFetcher struct {
	path   string
	logger *utils.Logger
	now    func() time.Time
}

// NewFileFetcher creates a FileFetcher over path.
func NewFileFetcher(path string, logger *utils.Logger) *FileFetcher {
	return &FileFetcher{path: path, logger: logger, now: time.Now}
}

func (f *FileFetcher) Fetch(ctx context.Context, q Query) ([]*models.RawListing, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("realtor: read dump %q: %w", f.path, err)
	}

	var listings []*models.RawListing
	switch strings.ToLower(filepath.Ext(f.path)) {
	case ".ndjson", ".jsonl":
		listings, err = f.readNDJSON(data)
	case ".html", ".htm":
		listings, err = f.readPage(data)
	default:
		listings, err = f.readArray(data)
	}
	if err != nil {
		return nil, err
	}

	f.logger.Info("[realtor] Loaded %d raw listings from %s", len(listings), f.path)
	return finalize(listings, q), nil
}

func (f *FileFetcher) readArray(data []byte) ([]*models.RawListing, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("realtor: decode dump: %w", err)
	}
	listings := make([]*models.RawListing, 0, len(items))
	for i, item := range items {
		if l := f.decode(item, i+1); l != nil {
			listings = append(listings, l)
		}
	}
	return listings, nil
}

func (f *FileFetcher) readNDJSON(data []byte) ([]*models.RawListing, error) {
	var listings []*models.RawListing
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 {
			continue
		}
		if l := f.decode(text, line); l != nil {
			listings = append(listings, l)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("realtor: scan ndjson: %w", err)
	}
	return listings, nil
}

func (f *FileFetcher) readPage(data []byte) ([]*models.RawListing, error) {
	payload, err := ExtractNextData(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	listings, _, err := ParseSearchPage(payload, "", f.now())
	return listings, err
}

// decode parses one record, skipping (with a warning) any that is malformed.
func (f *FileFetcher) decode(item []byte, pos int) *models.RawListing {
	var l models.RawListing
	if err := json.Unmarshal(item, &l); err != nil {
		f.logger.Warn("[realtor] Skipping malformed record %d in %s: %v", pos, f.path, err)
		return nil
	}
	return &l
}
