package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"property-harvester/config"
	"property-harvester/coords"
	"property-harvester/storage"
	"property-harvester/utils"
)

func defaultConfig() *config.Config {
	return &config.Config{
		Location:      "Miami-Dade County, FL",
		ListingType:   "for_sale",
		Limit:         500,
		Source:        "http",
		CoordStrategy: "land",
		OutputPath:    "public/data/properties.json",
	}
}

func TestParseArgsDefaults(t *testing.T) {
	cfg := defaultConfig()
	if err := parseArgs(nil, cfg, io.Discard); err != nil {
		t.Fatal(err)
	}
	if cfg.Location != "Miami-Dade County, FL" || cfg.ListingType != "for_sale" || cfg.Limit != 500 {
		t.Errorf("defaults changed: %+v", cfg)
	}
}

func TestParseArgsPositionalAndFlags(t *testing.T) {
	cfg := defaultConfig()
	args := []string{"-source", "file", "-input", "dump.ndjson", "-coords", "bbox", "-seed", "42",
		"Austin, TX", "for_rent", "25"}
	if err := parseArgs(args, cfg, io.Discard); err != nil {
		t.Fatal(err)
	}
	if cfg.Location != "Austin, TX" || cfg.ListingType != "for_rent" || cfg.Limit != 25 {
		t.Errorf("positionals not applied: %+v", cfg)
	}
	if cfg.Source != "file" || cfg.InputPath != "dump.ndjson" || cfg.CoordStrategy != "bbox" || cfg.Seed != 42 {
		t.Errorf("flags not applied: %+v", cfg)
	}
}

func TestParseArgsBadLimit(t *testing.T) {
	if err := parseArgs([]string{"Miami, FL", "for_sale", "lots"}, defaultConfig(), io.Discard); err == nil {
		t.Error("expected error for non-integer limit")
	}
	if err := parseArgs([]string{"a", "b", "1", "extra"}, defaultConfig(), io.Discard); err == nil {
		t.Error("expected error for extra arguments")
	}
}

func TestParseArgsHelp(t *testing.T) {
	err := parseArgs([]string{"-h"}, defaultConfig(), io.Discard)
	if !errors.Is(err, flag.ErrHelp) {
		t.Errorf("err = %v; want flag.ErrHelp", err)
	}
}

func TestBuildFetcher(t *testing.T) {
	cfg := defaultConfig()
	cfg.Source = "file"
	if _, err := buildFetcher(cfg, nil); err == nil {
		t.Error("file source without input should fail")
	}
	cfg.Source = "carrier-pigeon"
	if _, err := buildFetcher(cfg, nil); err == nil {
		t.Error("unknown source should fail")
	}
}

func TestBuildGeneratorSeeded(t *testing.T) {
	cfg := defaultConfig()
	cfg.Seed = 7
	a, err := buildGenerator(cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := buildGenerator(cfg)
	if a.Generate() != b.Generate() {
		t.Error("same seed produced different points")
	}
}

func TestHarvestFromFileDump(t *testing.T) {
	dir := t.TempDir()

	photos := make([]string, 0, 9)
	for i := 0; i < 9; i++ {
		photos = append(photos, fmt.Sprintf(`"https://ap.rdcpix.com/p%ds.jpg"`, i))
	}
	records := []string{
		`{"property_id": "1", "list_price": 450000, "latitude": 25.77, "longitude": -80.19,
		  "address": {"street": "123 Main St", "city": "Miami", "state": "FL", "zip_code": "33101"},
		  "alt_photos": [` + strings.Join(photos, ",") + `]}`,
		`{"property_id": "2", "list_price": 0}`,
		`{"property_id": "3", "list_price": "725,000", "address": {"city": "Doral", "unit": 4}}`,
		`{"property_id": "1", "list_price": 99}`,
		`{"property_id": "4", "list_price": 310000, "latitude": null, "longitude": -80.3}`,
	}
	input := filepath.Join(dir, "dump.json")
	if err := os.WriteFile(input, []byte("["+strings.Join(records, ",")+"]"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := defaultConfig()
	cfg.Source = "file"
	cfg.InputPath = input
	cfg.OutputPath = filepath.Join(dir, "public", "data", "properties.json")
	cfg.Seed = 11

	code := harvest(context.Background(), cfg, utils.NewLoggerTo(io.Discard, "error"))
	if code != 0 {
		t.Fatalf("exit code = %d; want 0", code)
	}

	data, err := os.ReadFile(cfg.OutputPath)
	if err != nil {
		t.Fatal(err)
	}
	var out []map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("records = %d; want 3", len(out))
	}

	for _, rec := range out {
		id := rec["id"]
		if price, _ := rec["price"].(float64); price <= 0 {
			t.Errorf("%v: price = %v", id, rec["price"])
		}
		lat, latOK := rec["latitude"].(float64)
		lon, lonOK := rec["longitude"].(float64)
		if !latOK || !lonOK || lat == 0 || lon == 0 {
			t.Errorf("%v: coordinates = %v,%v", id, rec["latitude"], rec["longitude"])
		}
		photos, ok := rec["photos"].([]any)
		if !ok || len(photos) > 6 {
			t.Errorf("%v: photos = %v", id, rec["photos"])
		}
	}

	stored, err := storage.NewJSONStore(cfg.OutputPath).FetchAll()
	if err != nil {
		t.Fatal(err)
	}
	for _, l := range stored {
		switch l.ID {
		case "1":
			if l.Latitude != 25.77 || l.Longitude != -80.19 || l.SyntheticCoordinates || len(l.Photos) != 6 {
				t.Errorf("listing 1 changed: %+v", l)
			}
		case "3", "4":
			if !l.SyntheticCoordinates || !inLandZone(l.Latitude, l.Longitude) {
				t.Errorf("listing %s: synthetic %v at %v,%v", l.ID, l.SyntheticCoordinates, l.Latitude, l.Longitude)
			}
		default:
			t.Errorf("unexpected listing %s", l.ID)
		}
	}
}

func TestHarvestFetchFailure(t *testing.T) {
	cfg := defaultConfig()
	cfg.Source = "file"
	cfg.InputPath = filepath.Join(t.TempDir(), "missing.json")
	cfg.OutputPath = filepath.Join(t.TempDir(), "properties.json")

	if code := harvest(context.Background(), cfg, utils.NewLoggerTo(io.Discard, "error")); code != 1 {
		t.Errorf("exit code = %d; want 1", code)
	}
}

func inLandZone(lat, lon float64) bool {
	for _, z := range coords.MiamiDadeLandZones {
		if z.Contains(coords.Point{Lat: lat, Lon: lon}) {
			return true
		}
	}
	return false
}
