package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"property-harvester/models"
	"property-harvester/storage"
	"property-harvester/utils"
)

type stubReader struct {
	listings []*models.Listing
	err      error
}

func (s stubReader) FetchAll() ([]*models.Listing, error) { return s.listings, s.err }

func testListings() []*models.Listing {
	return []*models.Listing{
		{ID: "1", Price: 450000, City: "Miami", PricePerSqft: 300, Photos: []string{}},
		{ID: "2", Price: 900000, City: "Coral Gables", PricePerSqft: 500, Photos: []string{}},
		{ID: "1", Price: 1, City: "Duplicate", Photos: []string{}},
		{ID: "3", Price: 250000, City: " miami ", PricePerSqft: 200, Photos: []string{}},
	}
}

func newTestServer(r stubReader, dataPath string) *Server {
	return NewServer(r, dataPath, utils.NewLoggerTo(io.Discard, "error"))
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decodeListings(t *testing.T, rec *httptest.ResponseRecorder) []*models.Listing {
	t.Helper()
	var out []*models.Listing
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return out
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(stubReader{}, ""), "/healthz")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestListDeduplicates(t *testing.T) {
	rec := get(t, newTestServer(stubReader{listings: testListings()}, ""), "/api/properties")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	out := decodeListings(t, rec)
	if len(out) != 3 {
		t.Fatalf("got %d listings; want 3", len(out))
	}
	if out[0].City != "Miami" {
		t.Errorf("first occurrence not kept: %+v", out[0])
	}
}

func TestListFilters(t *testing.T) {
	s := newTestServer(stubReader{listings: testListings()}, "")

	tests := []struct {
		query string
		want  []string
	}{
		{"?city=miami", []string{"1", "3"}},
		{"?min_price=400000", []string{"1", "2"}},
		{"?max_price=500000", []string{"1", "3"}},
		{"?min_price=300000&max_price=500000", []string{"1"}},
		{"?limit=2", []string{"1", "2"}},
	}

	for _, tt := range tests {
		out := decodeListings(t, get(t, s, "/api/properties"+tt.query))
		if len(out) != len(tt.want) {
			t.Errorf("%s: got %d listings; want %d", tt.query, len(out), len(tt.want))
			continue
		}
		for i, id := range tt.want {
			if out[i].ID != id {
				t.Errorf("%s: [%d] = %s; want %s", tt.query, i, out[i].ID, id)
			}
		}
	}
}

func TestListRejectsBadParams(t *testing.T) {
	s := newTestServer(stubReader{listings: testListings()}, "")
	for _, q := range []string{"?limit=abc", "?limit=-1", "?min_price=cheap", "?max_price=-5"} {
		if rec := get(t, s, "/api/properties"+q); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d; want 400", q, rec.Code)
		}
	}
}

func TestGetProperty(t *testing.T) {
	s := newTestServer(stubReader{listings: testListings()}, "")

	rec := get(t, s, "/api/properties/2")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var l models.Listing
	if err := json.NewDecoder(rec.Body).Decode(&l); err != nil {
		t.Fatal(err)
	}
	if l.City != "Coral Gables" {
		t.Errorf("City = %q", l.City)
	}

	if rec := get(t, s, "/api/properties/404"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d", rec.Code)
	}
}

func TestStats(t *testing.T) {
	rec := get(t, newTestServer(stubReader{listings: testListings()}, ""), "/api/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var report models.InsightReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.TotalListings != 3 || report.MaxPrice != 900000 || report.MedianPrice != 450000 {
		t.Errorf("unexpected report: %+v", report)
	}
	if report.ListingsByCity["Miami"] != 1 || report.ListingsByCity["Coral Gables"] != 1 {
		t.Errorf("ListingsByCity = %v", report.ListingsByCity)
	}
}

func TestReaderFailure(t *testing.T) {
	s := newTestServer(stubReader{err: errors.New("connection refused")}, "")
	for _, target := range []string{"/api/properties", "/api/properties/1", "/api/stats"} {
		if rec := get(t, s, target); rec.Code != http.StatusInternalServerError {
			t.Errorf("%s: status = %d; want 500", target, rec.Code)
		}
	}
}

func TestDataFilePassthrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "properties.json")
	if err := os.WriteFile(path, []byte(`[{"id":"1"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := get(t, newTestServer(stubReader{}, path), "/data/properties.json")
	if rec.Code != http.StatusOK || rec.Body.String() != `[{"id":"1"}]` {
		t.Errorf("status %d body %q", rec.Code, rec.Body.String())
	}

	if rec := get(t, newTestServer(stubReader{}, ""), "/data/properties.json"); rec.Code != http.StatusNotFound {
		t.Errorf("unconfigured: status = %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(stubReader{}, "").ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/properties", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d; want 405", rec.Code)
	}
}

func TestStatsOverJSONStoreSeparatesRealCoordinates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "properties.json")
	listings := []*models.Listing{
		{ID: "real", Price: 300000, Latitude: 25.77, Longitude: -80.19, Photos: []string{}},
		{ID: "generated", Price: 400000, Latitude: 25.761234, Longitude: -80.191234, Photos: []string{}, SyntheticCoordinates: true},
	}
	if err := storage.NewJSONWriter(path).Write(listings); err != nil {
		t.Fatal(err)
	}

	s := NewServer(storage.NewJSONStore(path), path, utils.NewLoggerTo(io.Discard, "error"))
	rec := get(t, s, "/api/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var report models.InsightReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.WithCoordinates != 2 || report.WithRealCoordinates != 1 {
		t.Errorf("with_coordinates=%d with_real_coordinates=%d; want 2 and 1",
			report.WithCoordinates, report.WithRealCoordinates)
	}
}
