package coords

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestParseZones(t *testing.T) {
	data := []byte(`
zones:
  - name: Doral
    lat_min: 25.800
    lat_max: 25.830
    lon_min: -80.370
    lon_max: -80.330
  - name: Hialeah
    lat_min: 25.850
    lat_max: 25.880
    lon_min: -80.310
    lon_max: -80.270
`)
	zones, err := ParseZones(data)
	if err != nil {
		t.Fatalf("ParseZones: %v", err)
	}
	if len(zones) != 2 {
		t.Fatalf("zones: got %d, want 2", len(zones))
	}
	if zones[0].Name != "Doral" || zones[0].LatMax != 25.830 || zones[0].LonMin != -80.370 {
		t.Errorf("unexpected first zone: %+v", zones[0])
	}
}

func TestParseZonesRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", "zones: []"},
		{"unordered", "zones:\n  - {name: x, lat_min: 26, lat_max: 25, lon_min: -80.3, lon_max: -80.2}"},
		{"latitude", "zones:\n  - {name: x, lat_min: 89, lat_max: 91, lon_min: -80.3, lon_max: -80.2}"},
	}
	for _, tt := range tests {
		if _, err := ParseZones([]byte(tt.data)); !errors.Is(err, ErrInvalidZone) {
			t.Errorf("%s: got %v, want ErrInvalidZone", tt.name, err)
		}
	}
}

func TestLoadZonesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zones.yaml")
	body := "zones:\n  - {name: Pinecrest, lat_min: 25.655, lat_max: 25.680, lon_min: -80.310, lon_max: -80.280}\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	zones, err := LoadZones(path)
	if err != nil {
		t.Fatalf("LoadZones: %v", err)
	}
	if len(zones) != 1 || zones[0].Name != "Pinecrest" {
		t.Errorf("unexpected zones: %+v", zones)
	}

	if _, err := LoadZones(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
